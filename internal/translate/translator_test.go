package translate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

func testRegistry() *mapping.Registry {
	return mapping.New(mapping.Sections{
		Attributes: map[string]string{
			"attack-damage":  "ATTACK_DAMAGE",
			"movement-speed": "MOVEMENT_SPEED MULTIPLY_BASE",
			"armor":          "ARMOR",
		},
		Stats: map[string]string{
			"critical-strike-chance": "CriticalStrikeChance",
			"armor":                  "Defense",
			"max-mana":               "MaxMana",
		},
		Slots: map[string]string{
			"SWORD":      "MainHand",
			"ARMOR":      "Chest",
			"CONSUMABLE": "",
		},
		Percent: []string{"critical-strike-chance"},
	})
}

// testSchema is a small schema: display and lore handlers, a handler that
// panics when "boom" is set, and one that demands "enchants" be a section.
func testSchema() *translate.Schema {
	material := func(r *translate.Record) string { return r.String("material", "STONE") }
	return translate.NewSchema("test", material, []string{"material"},
		translate.NewHandler("display", []string{"name"}, func(c *translate.Context) error {
			name, _, err := c.ExpectScalar("name")
			c.Target.Display = name
			return err
		}),
		translate.NewHandler("lore", []string{"lore"}, func(c *translate.Context) error {
			lines, _, err := c.ExpectStrings("lore")
			c.Target.Lore = lines
			return err
		}),
		translate.NewHandler("explode", []string{"boom"}, func(c *translate.Context) error {
			if c.Fields.Has("boom") {
				panic("kaboom")
			}
			return nil
		}),
		translate.NewHandler("enchantments", []string{"enchants"}, func(c *translate.Context) error {
			ench, _, err := c.ExpectSection("enchants")
			for _, k := range ench.Keys() {
				c.Target.Enchantments = append(c.Target.Enchantments, strings.ToUpper(k))
			}
			return err
		}),
	)
}

func sourceItem(t testing.TB, id, typeName, body string) *translate.SourceItem {
	t.Helper()
	rec, err := translate.ParseRecord([]byte(body))
	require.NoError(t, err)
	return &translate.SourceItem{ID: id, SourceID: strings.ToLower(id), Type: typeName, Fields: rec}
}

func translateOK(t *testing.T, typeName, body string) *translate.Translation {
	t.Helper()
	tr, err := translate.NewTranslator(testSchema(), zap.NewNop()).
		Translate(testRegistry(), sourceItem(t, "ITEM", typeName, body))
	require.NoError(t, err)
	return tr
}

func messages(anns []translate.Annotation) []string {
	out := make([]string, len(anns))
	for i, a := range anns {
		out[i] = a.Message
	}
	return out
}

func TestTranslate_AttackDamageInMainHand(t *testing.T) {
	tr := translateOK(t, "SWORD", `
material: IRON_SWORD
attack-damage: 10
`)
	assert.Equal(t, "IRON_SWORD", tr.Item.Material)
	assert.Equal(t, []translate.Attribute{{Name: "ATTACK_DAMAGE", Value: 10}}, tr.Item.AttributesIn("MainHand"))
	assert.Contains(t, translate.RenderItem(tr), "  Attributes:\n    MainHand:\n      ATTACK_DAMAGE: 10\n")
}

func TestTranslate_PercentStat(t *testing.T) {
	tr := translateOK(t, "SWORD", `critical-strike-chance: 25`)
	assert.Equal(t, []translate.Stat{{Name: "CriticalStrikeChance", Value: 0.25}}, tr.Item.Stats)
	assert.Contains(t, translate.RenderItem(tr), "  Stats:\n  - CriticalStrikeChance 0.25\n")
}

func TestTranslate_AttributeWinsOverStat(t *testing.T) {
	tr := translateOK(t, "ARMOR", `armor: 6`)
	assert.Equal(t, []translate.Attribute{{Name: "ARMOR", Value: 6}}, tr.Item.AttributesIn("Chest"))
	assert.Empty(t, tr.Item.Stats)
	assert.Empty(t, tr.Annotations)
}

func TestTranslate_UnslottedConsumable(t *testing.T) {
	tr := translateOK(t, "consumable", `attack-damage: 10`)
	assert.True(t, tr.Item.Unslotted())
	assert.Empty(t, tr.Item.AttributesIn("MainHand"))
	text := translate.RenderItem(tr)
	assert.Contains(t, text, "  Attributes:\n    ATTACK_DAMAGE: 10\n")
	assert.NotContains(t, text, "MainHand")
}

func TestTranslate_UnknownTypeUsesDefaultSlot(t *testing.T) {
	tr := translateOK(t, "WAND", `attack-damage: 3`)
	assert.Len(t, tr.Item.AttributesIn(mapping.DefaultSlot), 1)
}

func TestTranslate_OperationSuffix(t *testing.T) {
	tr := translateOK(t, "SWORD", `movement-speed: 0.1`)
	assert.Equal(t, []translate.Attribute{{Name: "MOVEMENT_SPEED", Value: 0.1, Operation: "MULTIPLY_BASE"}},
		tr.Item.AttributesIn("MainHand"))
	assert.Contains(t, translate.RenderItem(tr), "      MOVEMENT_SPEED: 0.1 MULTIPLY_BASE\n")
}

func TestTranslate_KeysAreCaseInsensitive(t *testing.T) {
	tr := translateOK(t, "SWORD", `
Attack_Damage: 4
MAX_MANA: "20"
`)
	assert.Len(t, tr.Item.AttributesIn("MainHand"), 1)
	assert.Equal(t, []translate.Stat{{Name: "MaxMana", Value: 20}}, tr.Item.Stats)
}

func TestTranslate_ScaledBaseSection(t *testing.T) {
	tr := translateOK(t, "SWORD", `
attack-damage:
  base: 7
  scale: 1.5
`)
	assert.Equal(t, 7.0, tr.Item.AttributesIn("MainHand")[0].Value)
}

func TestTranslate_RarityIsAnnotatedNotEmitted(t *testing.T) {
	tr := translateOK(t, "SWORD", `
name: Blade
rarity: legendary
`)
	require.Len(t, tr.Annotations, 1)
	assert.Equal(t, translate.CategoryUnmappedString, tr.Annotations[0].Category)
	assert.Equal(t, "rarity", tr.Annotations[0].Key)
	assert.Equal(t, "legendary", tr.Annotations[0].Value)

	text := translate.RenderItem(tr)
	assert.Contains(t, text, "  # unmapped: rarity = legendary\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "rarity") {
			assert.True(t, strings.HasPrefix(line, "  # "), "rarity outside a comment: %q", line)
		}
	}
}

func TestTranslate_UnclassifiedShapes(t *testing.T) {
	tr := translateOK(t, "SWORD", `
mystery: 5
mystery-text: "12.5"
odd-section:
  a: 1
leveled:
  base: 4
disable-repair: true
soulbound: false
tags: [a, b]
blank:
zero: 0
zero-text: "0"
`)
	assert.Equal(t, []string{
		"unmapped-stat: mystery = 5 (STAT_KEY: MYSTERY)",
		"unmapped-stat: mystery-text = 12.5 (STAT_KEY: MYSTERY_TEXT)",
		"unmapped-section: odd-section",
		"unmapped-stat: leveled = 4 (STAT_KEY: LEVELED)",
		"disable-repair: true (check MythicCrucible Options or Hide flags)",
		"unmapped-flag: soulbound = false",
		"unmapped-list: tags = [a, b]",
		"unmapped: blank (empty)",
		"unmapped: zero-text = 0",
	}, messages(tr.Annotations))
}

func TestTranslate_MappedZeroAndNonNumericSkipped(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr, err := translate.NewTranslator(testSchema(), zap.New(core)).
		Translate(testRegistry(), sourceItem(t, "ITEM", "SWORD", `
attack-damage: 0
max-mana: lots
`))
	require.NoError(t, err)
	assert.Empty(t, tr.Item.Attributes)
	assert.Empty(t, tr.Item.Stats)
	assert.Empty(t, tr.Annotations)
	assert.Equal(t, 1, logs.FilterMessage("skipping non-numeric mapped field").Len())
}

func TestTranslate_PanickingHandlerIsReported(t *testing.T) {
	_, err := translate.NewTranslator(testSchema(), zap.NewNop()).
		Translate(testRegistry(), sourceItem(t, "ITEM", "SWORD", `boom: 1`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, translate.ErrHandlerPanic))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestTranslate_MalformedSectionFailsItem(t *testing.T) {
	_, err := translate.NewTranslator(testSchema(), zap.NewNop()).
		Translate(testRegistry(), sourceItem(t, "ITEM", "SWORD", `enchants: sharpness`))
	require.Error(t, err)
	assert.ErrorIs(t, err, translate.ErrMalformed)
	assert.True(t, strings.HasPrefix(err.Error(), "enchantments: "), err.Error())
}

type stubHook map[string]string

func (h stubHook) Classify(key string, _ translate.Value) (string, bool) {
	s, ok := h[key]
	return s, ok
}

func TestTranslate_HookClassifiesUnmappedNumbers(t *testing.T) {
	hook := stubHook{"mana-regen": "ManaRegen", "attack-damage": "Nope", "motto": "Nope"}
	tr, err := translate.NewTranslator(testSchema(), zap.NewNop(), translate.WithHook(hook)).
		Translate(testRegistry(), sourceItem(t, "ITEM", "SWORD", `
mana-regen: 3
attack-damage: 2
motto: hello
`))
	require.NoError(t, err)
	assert.Equal(t, []translate.Stat{{Name: "ManaRegen", Value: 3}}, tr.Item.Stats)
	assert.Len(t, tr.Item.AttributesIn("MainHand"), 1)
	assert.Equal(t, []string{"unmapped: motto = hello"}, messages(tr.Annotations))
}

func TestTranslate_Deterministic(t *testing.T) {
	body := `
name: "It's sharp"
lore: [one, "two: three"]
enchants:
  sharpness: 5
attack-damage: 10
critical-strike-chance: 12
rarity: epic
gem-count: 3
`
	a := translate.RenderItem(translateOK(t, "SWORD", body))
	b := translate.RenderItem(translateOK(t, "SWORD", body))
	assert.Equal(t, a, b)
}

// Every field no handler or mapping knows produces exactly one annotation,
// in declaration order.
func TestProperty_OneAnnotationPerUnmappedField(t *testing.T) {
	tr := translate.NewTranslator(testSchema(), zap.NewNop())
	reg := testRegistry()
	rapid.Check(t, func(rt *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`u[a-z]{3,8}`), 1, 12, rapid.ID[string]).Draw(rt, "keys")
		rec := translate.NewRecord()
		for i, k := range keys {
			switch rapid.IntRange(0, 3).Draw(rt, "shape") {
			case 0:
				n := rapid.IntRange(1, 1000).Draw(rt, "n")
				rec.Set(k, translate.NumberValue(float64(n)))
			case 1:
				rec.Set(k, translate.StringValue(rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "s")))
			case 2:
				rec.Set(k, translate.BoolValue(i%2 == 0))
			default:
				rec.Set(k, translate.SectionValue(translate.NewRecord().Set("x", translate.NumberValue(1))))
			}
		}
		out, err := tr.Translate(reg, &translate.SourceItem{ID: "P", Type: "SWORD", Fields: rec})
		if err != nil {
			rt.Fatalf("translate: %v", err)
		}
		if len(out.Annotations) != len(keys) {
			rt.Fatalf("want %d annotations, got %s", len(keys), spew.Sdump(out.Annotations))
		}
		for i, a := range out.Annotations {
			if a.Key != keys[i] {
				rt.Fatalf("annotation %d is for %q, want %q", i, a.Key, keys[i])
			}
		}
	})
}

// No key is ever emitted both as an attribute and as a stat.
func TestProperty_AttributeAndStatDisjoint(t *testing.T) {
	tr := translate.NewTranslator(testSchema(), zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		shared := rapid.StringMatching(`s[a-z]{2,6}`).Draw(rt, "shared")
		reg := mapping.New(mapping.Sections{
			Attributes: map[string]string{shared: "ATTR"},
			Stats:      map[string]string{shared: "Stat"},
		})
		n := rapid.IntRange(1, 500).Draw(rt, "n")
		rec := translate.NewRecord().Set(shared, translate.NumberValue(float64(n)))
		out, err := tr.Translate(reg, &translate.SourceItem{ID: "P", Fields: rec})
		if err != nil {
			rt.Fatalf("translate: %v", err)
		}
		if len(out.Item.Stats) != 0 || len(out.Item.AttributesIn(mapping.DefaultSlot)) != 1 {
			rt.Fatalf("attribute must win: %s", spew.Sdump(out.Item))
		}
	})
}
