package translate_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

func TestParseRecord_KeepsDeclarationOrder(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
zeta: 1
alpha: 2
mid: 3
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rec.Keys())
}

func TestParseRecord_EmptyDocument(t *testing.T) {
	rec, err := translate.ParseRecord(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Len())
}

func TestParseRecord_RootMustBeMapping(t *testing.T) {
	_, err := translate.ParseRecord([]byte(`- a
- b
`))
	assert.Error(t, err)
}

func TestParseRecord_AliasesAndMerges(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
defaults: &defaults
  material: IRON_SWORD
  attack-damage: 5
sword:
  <<: *defaults
  attack-damage: 9
copy: *defaults
`))
	require.NoError(t, err)

	sword := rec.Section("sword")
	require.NotNil(t, sword)
	assert.Equal(t, []string{"attack-damage", "material"}, sword.Keys())
	assert.Equal(t, 9, sword.Int("attack-damage", 0))
	assert.Equal(t, "IRON_SWORD", sword.String("material", ""))

	assert.Equal(t, "IRON_SWORD", rec.Section("copy").String("material", ""))
}

func TestRecord_FindNormalizesKeys(t *testing.T) {
	rec := translate.NewRecord().
		Set("Custom_Model_Data", translate.NumberValue(7))

	_, exact := rec.Get("custom-model-data")
	assert.False(t, exact)

	v, ok := rec.Find("custom-model-data")
	require.True(t, ok)
	assert.Equal(t, "7", v.Raw())
	assert.Equal(t, 7, rec.Int("custom-model-data", 0))
	assert.True(t, rec.Has("CUSTOM-MODEL-DATA"))
}

func TestRecord_FindPrefersExactKey(t *testing.T) {
	rec := translate.NewRecord().
		Set("max_durability", translate.NumberValue(1)).
		Set("max-durability", translate.NumberValue(2))
	assert.Equal(t, 2, rec.Int("max-durability", 0))
	assert.Equal(t, 1, rec.Int("max_durability", 0))
}

func TestRecord_SetReplacesInPlace(t *testing.T) {
	rec := translate.NewRecord().
		Set("a", translate.NumberValue(1)).
		Set("b", translate.NumberValue(2)).
		Set("a", translate.NumberValue(3))
	assert.Equal(t, []string{"a", "b"}, rec.Keys())
	assert.Equal(t, 3, rec.Int("a", 0))
}

func TestRecord_TypedAccessorDefaults(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
name: Blade
count: many
enabled: true
lore:
  - one
  - two
nested:
  x: 1
nothing: ~
`))
	require.NoError(t, err)

	assert.Equal(t, "Blade", rec.String("name", "x"))
	assert.Equal(t, "x", rec.String("nested", "x"))
	assert.Equal(t, "x", rec.String("nothing", "x"))
	assert.Equal(t, 4, rec.Int("count", 4))
	assert.True(t, rec.Bool("enabled", false))
	assert.True(t, rec.Bool("missing", true))
	assert.Equal(t, []string{"one", "two"}, rec.Strings("lore"))
	assert.Nil(t, rec.Strings("name"))
	assert.True(t, rec.IsSection("nested"))
	assert.True(t, rec.IsList("lore"))
	assert.Nil(t, rec.Section("lore"))

	v, ok := rec.Get("nothing")
	require.True(t, ok)
	assert.Equal(t, translate.KindNull, v.Kind())
}

func TestValue_String(t *testing.T) {
	v := translate.SectionValue(translate.NewRecord().
		Set("a", translate.NumberValue(1)).
		Set("b", translate.ListValue(translate.StringValue("x"), translate.BoolValue(true))))
	assert.Equal(t, "{a: 1, b: [x, true]}", v.String())
}

func TestRecord_Dump(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
gem-sockets:
  empty: [Red, Blue]
  filled: {}
level: 3
`))
	require.NoError(t, err)
	assert.Equal(t, "{gem-sockets: {empty: [Red, Blue], filled: {}}, level: 3}", rec.Dump())
	v, _ := rec.Get("gem-sockets")
	assert.Equal(t, "{empty: [Red, Blue], filled: {}}", v.String())
	assert.Equal(t, "{}", (*translate.Record)(nil).Dump())
}

func TestRecord_IntOutOfRange(t *testing.T) {
	rec, err := translate.ParseRecord([]byte("huge: 1e30\ntiny: -1e30\nok: 12.9\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Int("huge", 7))
	assert.Equal(t, 7, rec.Int("tiny", 7))
	assert.Equal(t, 12, rec.Int("ok", 7))
}

func TestParseRecord_SelfReferencingAlias(t *testing.T) {
	for _, doc := range []string{
		"sword: &a\n  base:\n    self: *a\n",
		"list: &l [1, *l]\n",
		"sword: &a\n  <<: *a\n  name: x\n",
	} {
		_, err := translate.ParseRecord([]byte(doc))
		assert.ErrorIs(t, err, translate.ErrMalformed, doc)
	}
}

func TestParseRecord_AliasExpansionLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}
	_, err := translate.ParseRecord([]byte(b.String()))
	require.Error(t, err)
	assert.ErrorIs(t, err, translate.ErrMalformed)
	assert.ErrorContains(t, err, "alias expansion")
}

func TestParseRecord_RepeatedAliasIsNotACycle(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
stats: &s
  damage: 4
a:
  one: *s
  two: *s
`))
	require.NoError(t, err)
	a := rec.Section("a")
	require.NotNil(t, a)
	assert.Equal(t, 4, a.Section("one").Int("damage", 0))
	assert.Equal(t, 4, a.Section("two").Int("damage", 0))
}
