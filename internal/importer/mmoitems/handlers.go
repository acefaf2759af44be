package mmoitems

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

const defaultMaterial = "STONE"

// triggers maps MMOItems ability casting modes to MythicMobs skill triggers.
var triggers = map[string]string{
	"RIGHT_CLICK":       "onInteract",
	"LEFT_CLICK":        "onAttack",
	"SHIFT_RIGHT_CLICK": "onInteract",
	"SHIFT_LEFT_CLICK":  "onAttack",
	"WHEN_HIT":          "onDamaged",
	"SNEAK":             "onCrouch",
	"TIMER":             "onTimer:20",
}

const defaultTrigger = "onInteract"

// SpecialKeys are MMOItems features with no MythicCrucible counterpart.
var SpecialKeys = []string{
	"soulbound-level",
	"soulbinding-chance",
	"success-rate",
	"gem-sockets",
	"item-level",
	"item-set",
	"item-tier",
	"upgrade",
	"two-handed",
}

// hideFlags maps the MMOItems hide toggles to target Hide entries.
var hideFlags = []struct {
	key  string
	flag string
}{
	{"hide-enchants", "ENCHANTS"},
	{"hide-potion-effects", "POTION_EFFECTS"},
	{"hide-dye", "DYE"},
	{"hide-armor-trim", "ARMOR_TRIM"},
}

var schema = translate.NewSchema("mmoitems", material, []string{"material"},
	translate.NewHandler("display", []string{"name"}, applyDisplay),
	translate.NewHandler("lore", []string{"lore"}, applyLore),
	translate.NewHandler("model", []string{"custom-model-data", "model", "item-model"}, applyModel),
	translate.NewHandler("tooltip", []string{"tooltip-style"}, applyTooltip),
	translate.NewHandler("enchantments", []string{"enchants"}, applyEnchantments),
	translate.NewHandler("unbreakable", []string{"unbreakable"}, applyUnbreakable),
	translate.NewHandler("dye-color", []string{"dye-color"}, applyDyeColor),
	translate.NewHandler("hide-flags", hideFlagKeys(), applyHideFlags),
	translate.NewHandler("skull-texture", []string{"skull-texture"}, applySkullTexture),
	translate.NewHandler("durability", []string{"max-durability"}, applyDurability),
	translate.NewHandler("required-level", []string{"required-level"}, applyRequiredLevel),
	translate.NewHandler("abilities", []string{"ability"}, applyAbilities),
	translate.NewHandler("perm-effects", []string{"perm-effects"}, applyPermEffects),
	translate.NewHandler("elements", []string{"element"}, applyElements),
	translate.NewHandler("special", SpecialKeys, applySpecial),
)

// Schema returns the MMOItems handler schema.
func Schema() *translate.Schema { return schema }

// Trigger maps an MMOItems casting mode to a MythicMobs skill trigger.
func Trigger(mode string) string {
	if t, ok := triggers[strings.ToUpper(strings.TrimSpace(mode))]; ok {
		return t
	}
	return defaultTrigger
}

func material(r *translate.Record) string {
	m := strings.ToUpper(strings.TrimSpace(r.String("material", "")))
	if m == "" {
		return defaultMaterial
	}
	return m
}

func hideFlagKeys() []string {
	keys := make([]string, len(hideFlags))
	for i, h := range hideFlags {
		keys[i] = h.key
	}
	return keys
}

func applyDisplay(c *translate.Context) error {
	name, _, err := c.ExpectScalar("name")
	if err != nil {
		return err
	}
	c.Target.Display = name
	return nil
}

func applyLore(c *translate.Context) error {
	lines, _, err := c.ExpectStrings("lore")
	if err != nil {
		return err
	}
	c.Target.Lore = lines
	return nil
}

func applyModel(c *translate.Context) error {
	if cmd := c.Fields.Int("custom-model-data", 0); cmd > 0 {
		c.Target.Model = strconv.Itoa(cmd)
	}
	model := c.Fields.String("model", c.Fields.String("item-model", ""))
	if model == "" {
		return nil
	}
	if n, err := strconv.Atoi(model); err == nil {
		// A numeric model is a legacy custom model data value.
		if c.Target.Model == "" && n > 0 {
			c.Target.Model = model
		}
		return nil
	}
	c.Target.ItemModel = model
	return nil
}

func applyTooltip(c *translate.Context) error {
	style, _, err := c.ExpectScalar("tooltip-style")
	if err != nil {
		return err
	}
	c.Target.TooltipStyle = style
	return nil
}

func applyEnchantments(c *translate.Context) error {
	ench, _, err := c.ExpectSection("enchants")
	if err != nil || ench == nil {
		return err
	}
	for _, key := range ench.Keys() {
		name := strings.ToUpper(key)
		if level := ench.Int(key, 0); level > 0 {
			name += ":" + strconv.Itoa(level)
		}
		c.Target.Enchantments = append(c.Target.Enchantments, name)
	}
	return nil
}

func applyUnbreakable(c *translate.Context) error {
	if c.Fields.Bool("unbreakable", false) {
		c.Target.SetOption("Unbreakable", "true")
	}
	return nil
}

func applyDyeColor(c *translate.Context) error {
	v, ok := c.Fields.Find("dye-color")
	if !ok {
		return nil
	}
	switch v.Kind() {
	case translate.KindSection:
		dye := v.Section()
		c.Target.SetOption("Color", fmt.Sprintf("%d,%d,%d",
			dye.Int("red", 0), dye.Int("green", 0), dye.Int("blue", 0)))
	case translate.KindScalar:
		c.Target.SetOption("Color", v.Raw())
	case translate.KindList:
		return fmt.Errorf("\"dye-color\" must be a section or a string, got %s: %w", v.String(), translate.ErrMalformed)
	}
	return nil
}

func applyHideFlags(c *translate.Context) error {
	for _, h := range hideFlags {
		if c.Fields.Bool(h.key, false) {
			c.Target.Hide = append(c.Target.Hide, h.flag)
		}
	}
	return nil
}

func applySkullTexture(c *translate.Context) error {
	v, ok := c.Fields.Find("skull-texture")
	if !ok {
		return nil
	}
	var texture string
	switch v.Kind() {
	case translate.KindSection:
		skull := v.Section()
		texture = skull.String("value", skull.String("url", ""))
	case translate.KindScalar:
		texture = v.Raw()
	}
	if texture != "" {
		c.Target.SetOption("SkinTexture", texture)
	}
	return nil
}

func applyDurability(c *translate.Context) error {
	if dur := c.Fields.Int("max-durability", 0); dur > 0 {
		c.Annotate(translate.Note(translate.CategoryDurability, "max-durability", strconv.Itoa(dur),
			fmt.Sprintf("max-durability: %d (MythicCrucible uses custom durability via Skills or ItemData)", dur)))
	}
	return nil
}

func applyRequiredLevel(c *translate.Context) error {
	if lvl := c.Fields.Int("required-level", 0); lvl > 0 {
		c.Target.EquipLevel = lvl
	}
	return nil
}

func applyAbilities(c *translate.Context) error {
	abilities, _, err := c.ExpectSection("ability")
	if err != nil || abilities == nil {
		return err
	}
	c.Annotate(translate.Note(translate.CategoryAbility, "ability", "",
		"--- Abilities (need manual conversion to MythicMobs Skills) ---"))
	for _, key := range abilities.Keys() {
		ab := abilities.Section(key)
		if ab == nil {
			v, _ := abilities.Get(key)
			c.Annotate(translate.Notef(translate.CategoryAbility, key, v, "Ability '%s': %s (not a section)", key, v.String()))
			continue
		}
		abType := ab.String("type", "UNKNOWN")
		mode := ab.String("mode", "RIGHT_CLICK")
		c.Annotate(translate.Note(translate.CategoryAbility, key, abType,
			fmt.Sprintf("Ability '%s': type=%s, trigger=%s -> Skills: skill{%s} ~%s", key, abType, mode, abType, Trigger(mode))))
		for _, mod := range ab.Keys() {
			if mod == "type" || mod == "mode" {
				continue
			}
			v, _ := ab.Get(mod)
			c.Annotate(translate.Notef(translate.CategoryAbility, key+"."+mod, v, "  %s: %s", mod, v.String()))
		}
	}
	return nil
}

func applyPermEffects(c *translate.Context) error {
	effects, _, err := c.ExpectSection("perm-effects")
	if err != nil || effects == nil {
		return err
	}
	c.Annotate(translate.Note(translate.CategoryPermEffect, "perm-effects", "",
		"--- Permanent Effects (use MythicMobs Skills ~onEquip) ---"))
	for _, key := range effects.Keys() {
		var amp int
		if eff := effects.Section(key); eff != nil {
			amp = eff.Int("amplifier", 0)
		} else {
			amp = effects.Int(key, 0)
		}
		c.Annotate(translate.Note(translate.CategoryPermEffect, key, strconv.Itoa(amp),
			fmt.Sprintf("perm-effect: %s amplifier %d", key, amp)))
	}
	return nil
}

func applyElements(c *translate.Context) error {
	elements, _, err := c.ExpectSection("element")
	if err != nil || elements == nil {
		return err
	}
	for _, elem := range elements.Keys() {
		data := elements.Section(elem)
		if data == nil {
			v, _ := elements.Get(elem)
			c.Annotate(translate.Notef(translate.CategoryManualReview, elem, v, "element %s: %s (not a section)", elem, v.String()))
			continue
		}
		for _, stat := range data.Keys() {
			v, _ := data.Get(stat)
			n, ok := translate.Coerce(v)
			if !ok || n == 0 {
				continue
			}
			c.Target.AddStat(strings.ToUpper(elem)+"_"+strings.ToUpper(stat), n)
		}
	}
	return nil
}

func applySpecial(c *translate.Context) error {
	for _, key := range SpecialKeys {
		v, ok := c.Fields.Find(key)
		if !ok {
			continue
		}
		c.Annotate(translate.Notef(translate.CategoryManualReview, key, v,
			"%s: %s (MMOItems-specific, needs manual conversion)", key, v.String()))
	}
	return nil
}
