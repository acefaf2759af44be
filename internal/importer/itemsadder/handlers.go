package itemsadder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

const (
	defaultMaterial  = "PAPER"
	defaultStackSize = 64
	noEquivalent     = " - No direct MythicCrucible equivalent."
)

// attributes maps lowercased ItemsAdder attribute names to vanilla
// attribute names. Names not listed are uppercased.
var attributes = map[string]string{
	"attackdamage":                 "ATTACK_DAMAGE",
	"attackspeed":                  "ATTACK_SPEED",
	"maxhealth":                    "MAX_HEALTH",
	"movementspeed":                "MOVEMENT_SPEED",
	"armor":                        "ARMOR",
	"armortoughness":               "ARMOR_TOUGHNESS",
	"attackknockback":              "ATTACK_KNOCKBACK",
	"knockbackresistance":          "KNOCKBACK_RESISTANCE",
	"luck":                         "LUCK",
	"flyingspeed":                  "FLYING_SPEED",
	"followrange":                  "FOLLOW_RANGE",
	"maxabsorption":                "MAX_ABSORPTION",
	"scale":                        "SCALE",
	"stepheight":                   "STEP_HEIGHT",
	"jumpstrength":                 "JUMP_HEIGHT",
	"gravity":                      "GRAVITY",
	"safefalldistance":             "SAFE_FALL_DISTANCE",
	"falldamagemultiplier":         "FALL_DAMAGE_MULTIPLIER",
	"burningtime":                  "BURNING_TIME",
	"explosionknockbackresistance": "EXPLOSION_KNOCKBACK_RESISTANCE",
	"miningefficiency":             "MINING_EFFICIENCY",
	"movementefficiency":           "MOVEMENT_EFFICIENCY",
	"oxygenbonus":                  "OXYGEN",
	"sneakingspeed":                "SNEAKING_SPEED",
	"submergedminingspeed":         "SUBMERGED_MINING_SPEED",
	"sweepingdamageratio":          "SWEEPING_DAMAGE_RATIO",
	"watermovementefficiency":      "WATER_MOVEMENT_EFFICIENCY",
	"blockbreakspeed":              "BLOCK_BREAK_SPEED",
	"blockinteractionrange":        "BLOCK_INTERACTION_RANGE",
	"entityinteractionrange":       "ENTITY_INTERACTION_RANGE",
}

// slots maps ItemsAdder slot names to target slot names. Names not listed
// pass through unchanged.
var slots = map[string]string{
	"mainhand": "MainHand",
	"offhand":  "OffHand",
	"head":     "Head",
	"chest":    "Chest",
	"legs":     "Legs",
	"feet":     "Feet",
}

// furnitureEntities maps ItemsAdder furniture entities to target furniture
// types.
var furnitureEntities = map[string]string{
	"armor_stand":  "ARMOR_STAND",
	"armorstand":   "ARMOR_STAND",
	"item_frame":   "ITEM_FRAME",
	"itemframe":    "ITEM_FRAME",
	"item_display": "DISPLAY",
	"display":      "DISPLAY",
}

// blockTypes maps ItemsAdder placed model types to target custom block types.
var blockTypes = map[string]string{
	"REAL_NOTE":        "NOTEBLOCK",
	"REAL":             "MUSHROOM",
	"REAL_WIRE":        "TRIPWIRE",
	"REAL_TRANSPARENT": "TRIPWIRE",
	"FIRE":             "CHORUS",
	"TILE":             "NOTEBLOCK",
}

var schema = translate.NewSchema("itemsadder", material, []string{"enabled"},
	translate.NewHandler("resource", []string{"resource"}, applyResource),
	translate.NewHandler("display", []string{"name", "display_name"}, applyDisplay),
	translate.NewHandler("lore", []string{"lore"}, applyLore),
	translate.NewHandler("enchants", []string{"enchants"}, applyEnchants),
	translate.NewHandler("attribute-modifiers", []string{"attribute_modifiers"}, applyAttributeModifiers),
	translate.NewHandler("slot-attribute-modifiers", []string{"slot_attribute_modifiers"}, applySlotAttributeModifiers),
	translate.NewHandler("glint", []string{"glint"}, applyGlint),
	translate.NewHandler("item-flags", []string{"item_flags"}, applyItemFlags),
	translate.NewHandler("durability", []string{"durability"}, applyDurability),
	translate.NewHandler("events", []string{"events"}, applyEvents),
	translate.NewHandler("behaviours", []string{"behaviours"}, applyBehaviours),
	translate.NewHandler("block", []string{"specific_properties"}, applyBlock),
	translate.NewHandler("equipment", []string{"equipment"}, applyEquipment),
	translate.NewHandler("blocked-enchants", []string{"blocked_enchants"}, applyBlockedEnchants),
	translate.NewHandler("max-stack-size", []string{"max_stack_size"}, applyMaxStackSize),
	translate.NewHandler("bow", nil, applyBowNotes),
	translate.NewHandler("source", nil, applySource),
)

// Schema returns the ItemsAdder handler schema.
func Schema() *translate.Schema { return schema }

// AttributeName maps an ItemsAdder attribute name to a vanilla attribute.
func AttributeName(key string) string {
	if a, ok := attributes[strings.ToLower(key)]; ok {
		return a
	}
	return strings.ToUpper(key)
}

// SlotName maps an ItemsAdder slot name to a target slot.
func SlotName(key string) string {
	if s, ok := slots[strings.ToLower(key)]; ok {
		return s
	}
	return key
}

// FurnitureEntity maps an ItemsAdder furniture entity to a target type.
func FurnitureEntity(entity string) string {
	if e, ok := furnitureEntities[strings.ToLower(entity)]; ok {
		return e
	}
	return "DISPLAY"
}

// BlockType maps an ItemsAdder placed model type to a custom block type.
func BlockType(placed string) string {
	if b, ok := blockTypes[strings.ToUpper(placed)]; ok {
		return b
	}
	return "NOTEBLOCK"
}

// SlotForMaterial infers the slot of slot-less attribute modifiers from the
// item material.
func SlotForMaterial(material string) string {
	m := strings.ToUpper(material)
	switch {
	case strings.Contains(m, "HELMET"), strings.Contains(m, "HEAD"), strings.Contains(m, "SKULL"):
		return "Head"
	case strings.Contains(m, "CHESTPLATE"), strings.Contains(m, "ELYTRA"):
		return "Chest"
	case strings.Contains(m, "LEGGINGS"):
		return "Legs"
	case strings.Contains(m, "BOOTS"):
		return "Feet"
	case strings.Contains(m, "SHIELD"):
		return "OffHand"
	default:
		return "MainHand"
	}
}

func material(r *translate.Record) string {
	res := r.Section("resource")
	if res == nil {
		return defaultMaterial
	}
	m := strings.ToUpper(strings.TrimSpace(res.String("material", "")))
	if m == "" {
		return defaultMaterial
	}
	return m
}

func applyResource(c *translate.Context) error {
	res, _, err := c.ExpectSection("resource")
	if err != nil || res == nil {
		return err
	}
	textures, _, err := translate.ExpectStringsIn(res, "textures")
	if err != nil {
		return fmt.Errorf("resource: %w", err)
	}

	var armorTexture, armorType string
	if armor := res.Section("generate_custom_armor"); armor != nil && armor.Bool("enabled", true) {
		armorTexture = armor.String("armor_texture_path", "")
		armorType = strings.ToUpper(armor.String("type", "TRIMS"))
	}

	if modelPath := res.String("model_path", ""); modelPath != "" {
		itemModel := modelPath
		if !strings.Contains(itemModel, ":") && c.Item.Namespace != "" {
			itemModel = c.Item.Namespace + ":" + itemModel
		}
		c.Target.ItemModel = itemModel
		if armorTexture == "" {
			c.Target.Model = modelPath
		}
	}

	if armorTexture == "" {
		return nil
	}
	if cmd := res.Int("model_id", res.Int("custom_model_data", 0)); cmd > 0 {
		c.Target.Model = strconv.Itoa(cmd)
	}
	if armorType == "" {
		armorType = "TRIMS"
	}
	gen := translate.NewBlock("Generation")
	if len(textures) > 0 && textures[0] != "" {
		gen.Set("Texture", textures[0])
	}
	gen.SetBlock(translate.NewBlock("Armor").
		Set("Texture", armorTexture).
		Set("Type", armorType))
	c.Target.AddExtension(gen)
	return nil
}

func applyDisplay(c *translate.Context) error {
	name, _, err := c.ExpectScalar("name")
	if err != nil {
		return err
	}
	if name == "" {
		if name, _, err = c.ExpectScalar("display_name"); err != nil {
			return err
		}
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

func applyEnchants(c *translate.Context) error {
	v, ok := c.Fields.Find("enchants")
	if !ok {
		return nil
	}
	switch v.Kind() {
	case translate.KindSection:
		ench := v.Section()
		for _, key := range ench.Keys() {
			c.Target.Enchantments = append(c.Target.Enchantments, enchantment(key, ench.String(key, "")))
		}
	case translate.KindList:
		entries, _, err := c.ExpectStrings("enchants")
		if err != nil {
			return err
		}
		for _, e := range entries {
			name, level, _ := strings.Cut(e, ":")
			c.Target.Enchantments = append(c.Target.Enchantments, enchantment(name, level))
		}
	case translate.KindScalar:
		return fmt.Errorf("\"enchants\" must be a list, got %s: %w", v.String(), translate.ErrMalformed)
	}
	return nil
}

func enchantment(name, level string) string {
	name = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if level = strings.TrimSpace(level); level != "" {
		return name + ":" + level
	}
	return name
}

func applyAttributeModifiers(c *translate.Context) error {
	mods, _, err := c.ExpectSection("attribute_modifiers")
	if err != nil || mods == nil {
		return err
	}
	for _, slotKey := range mods.Keys() {
		slot := mods.Section(slotKey)
		if slot == nil {
			continue
		}
		for _, attr := range slot.Keys() {
			v, _ := slot.Get(attr)
			n, _ := translate.Coerce(v)
			c.Target.SetAttribute(SlotName(slotKey), translate.Attribute{Name: AttributeName(attr), Value: n})
		}
	}
	return nil
}

func applySlotAttributeModifiers(c *translate.Context) error {
	mods, _, err := c.ExpectSection("slot_attribute_modifiers")
	if err != nil || mods == nil {
		return err
	}
	slot := SlotForMaterial(c.Target.Material)
	for _, attr := range mods.Keys() {
		v, _ := mods.Get(attr)
		n, _ := translate.Coerce(v)
		c.Target.SetAttribute(slot, translate.Attribute{Name: AttributeName(attr), Value: n})
	}
	return nil
}

func applyGlint(c *translate.Context) error {
	if c.Fields.Has("glint") {
		c.Target.SetOption("EnchantGlint", strconv.FormatBool(c.Fields.Bool("glint", false)))
	}
	return nil
}

func applyItemFlags(c *translate.Context) error {
	flags, _, err := c.ExpectStrings("item_flags")
	if err != nil {
		return err
	}
	for _, f := range flags {
		c.Target.Hide = append(c.Target.Hide, strings.ReplaceAll(strings.ToUpper(f), "HIDE_", ""))
	}
	return nil
}

func applyDurability(c *translate.Context) error {
	dur := c.Fields.Section("durability")
	if dur == nil {
		return nil
	}
	if limit := dur.Int("max_durability", 0); limit > 0 {
		c.Annotate(translate.Note(translate.CategoryDurability, "max_durability", strconv.Itoa(limit),
			fmt.Sprintf("max_durability: %d (MythicCrucible uses custom durability via Skills or ItemData)", limit)))
	}
	return nil
}

func applyEvents(c *translate.Context) error {
	events := c.Fields.Section("events")
	if events == nil {
		return nil
	}
	c.Annotate(translate.Note(translate.CategoryUnsupported, "events", "",
		"EVENTS: This item has ItemsAdder events. Recreate as MythicMobs Skills."))
	for _, ev := range events.Keys() {
		c.Annotate(translate.Note(translate.CategoryUnsupported, ev, "", "  - "+ev))
		for _, action := range events.Section(ev).Keys() {
			c.Annotate(translate.Note(translate.CategoryUnsupported, ev+"."+action, "", "    - "+action))
		}
	}
	return nil
}

func applyBehaviours(c *translate.Context) error {
	behaviours, _, err := c.ExpectSection("behaviours")
	if err != nil || behaviours == nil {
		return err
	}
	for _, key := range behaviours.Keys() {
		if key == "furniture" && behaviours.IsSection(key) {
			applyFurniture(c, behaviours.Section(key))
			continue
		}
		c.Annotate(translate.Note(translate.CategoryUnsupported, key, "", "BEHAVIOUR: "+key+noEquivalent))
	}
	return nil
}

func applyFurniture(c *translate.Context, f *translate.Record) {
	c.Target.Type = translate.TypeFurniture

	blk := translate.NewBlock("Furniture").
		Set("Type", FurnitureEntity(f.String("entity", "item_display"))).
		Set("Placement", strings.ToUpper(f.String("placement", "floor")))
	if f.Has("solid") {
		blk.Set("IsSolid", strconv.FormatBool(f.Bool("solid", true)))
	}
	if f.Has("fixed_rotation") {
		blk.Set("LockRotation", strconv.FormatBool(f.Bool("fixed_rotation", false)))
	}
	if hb := f.Section("hitbox"); hb != nil {
		height, ok := hb.Float("height")
		if !ok {
			if height, ok = hb.Float("length"); !ok {
				height = 1
			}
		}
		width, ok := hb.Float("width")
		if !ok {
			width = 1
		}
		blk.SetBlock(translate.NewBlock("Hitbox").
			Set("Height", translate.FormatNumber(height)).
			Set("Width", translate.FormatNumber(width)))
	}
	if light := f.Int("light_level", 0); light > 0 {
		blk.SetList("Lights", []string{"0,0,0 " + strconv.Itoa(light)})
	}
	blk.SetList("Barriers", f.Strings("barriers"))
	c.Target.AddExtension(blk)

	if f.IsList("seats") || f.IsSection("seats") {
		c.Annotate(translate.Note(translate.CategoryUnsupported, "seats", "",
			"SEATS: This furniture has seats. Configure using MythicCrucible FurnitureSkills ~onInteract."))
	}
	if f.Bool("opposite_direction", false) {
		c.Annotate(translate.Note(translate.CategoryManualReview, "opposite_direction", "true",
			"opposite_direction: true - Adjust model rotation in MythicCrucible."))
	}
	if f.Has("gravity") {
		g := strconv.FormatBool(f.Bool("gravity", false))
		c.Annotate(translate.Note(translate.CategoryManualReview, "gravity", g,
			"gravity: "+g+" - ArmorStand gravity; configure in MythicCrucible Furniture entity settings."))
	}
	if f.Bool("small", false) {
		c.Annotate(translate.Note(translate.CategoryManualReview, "small", "true",
			"small: true - Use small armor stand; configure in MythicCrucible Furniture.Small."))
	}
	if f.IsSection("sound") {
		c.Annotate(translate.Note(translate.CategoryUnsupported, "sound", "",
			"SOUNDS: Furniture has custom sounds. Configure via FurnitureSkills in MythicCrucible."))
	}
}

func applyBlock(c *translate.Context) error {
	props, _, err := c.ExpectSection("specific_properties")
	if err != nil || props == nil {
		return err
	}
	for _, key := range props.Keys() {
		if key == "block" && props.IsSection(key) {
			continue
		}
		v, _ := props.Get(key)
		c.Annotate(translate.Notef(translate.CategoryUnsupported, "specific_properties."+key, v,
			"specific_properties.%s: %s%s", key, v.String(), noEquivalent))
	}
	b := props.Section("block")
	if b == nil {
		return nil
	}
	if c.Target.Type == "" {
		c.Target.Type = translate.TypeBlock
	}

	placed := "NOTEBLOCK"
	if pm := b.Section("placed_model"); pm != nil {
		placed = BlockType(pm.String("type", "REAL_NOTE"))
	}
	blk := translate.NewBlock("CustomBlock").Set("Type", placed)
	if b.Has("hardness") {
		blk.Set("Hardness", strconv.Itoa(b.Int("hardness", 0)))
	}
	if b.Has("blast_resistance") {
		n, _ := b.Float("blast_resistance")
		blk.Set("BlastResistance", translate.FormatNumber(n))
	}
	tools := b.Strings("break_tools_whitelist")
	for i, t := range tools {
		tools[i] = strings.ToUpper(t)
	}
	blk.SetList("Tools", tools)
	c.Target.AddExtension(blk)

	if b.Has("drop_when_mined") && !b.Bool("drop_when_mined", true) {
		c.Annotate(translate.Note(translate.CategoryManualReview, "drop_when_mined", "false",
			"drop_when_mined: false - Configure CustomBlock.Drops to control drops."))
	}
	if light := b.Int("light_level", 0); light > 0 {
		c.Annotate(translate.Note(translate.CategoryUnsupported, "light_level", strconv.Itoa(light),
			fmt.Sprintf("light_level: %d - MythicCrucible blocks don't natively emit light. Use light blocks or furniture overlay.", light)))
	}
	if b.Has("break_particles") {
		p := b.String("break_particles", "")
		c.Annotate(translate.Note(translate.CategoryUnsupported, "break_particles", p,
			"break_particles: "+p+" - Configure via CustomBlockSkills in MythicCrucible."))
	}
	if b.IsSection("sound") {
		c.Annotate(translate.Note(translate.CategoryUnsupported, "sound", "",
			"SOUNDS: Block has custom sounds. Configure via CustomBlockSkills in MythicCrucible."))
	}
	if b.Bool("no_explosion", false) {
		c.Annotate(translate.Note(translate.CategoryManualReview, "no_explosion", "true",
			"no_explosion: true - Set a very high BlastResistance value."))
	}
	if b.IsList("break_tools_blacklist") {
		list := strings.Join(b.Strings("break_tools_blacklist"), ", ")
		c.Annotate(translate.Note(translate.CategoryUnsupported, "break_tools_blacklist", list,
			"BREAK TOOLS BLACKLIST: "+list+" - No direct MythicCrucible equivalent; use CustomBlockSkills."))
	}
	return nil
}

func applyEquipment(c *translate.Context) error {
	eq := c.Fields.Section("equipment")
	if eq == nil {
		return nil
	}
	if id := eq.String("id", ""); id != "" {
		c.Annotate(translate.Note(translate.CategoryManualReview, "equipment", id,
			"EQUIPMENT: "+id+" - Configure armor model in MythicCrucible Generation section."))
	}
	return nil
}

func applyBlockedEnchants(c *translate.Context) error {
	if !c.Fields.IsList("blocked_enchants") {
		return nil
	}
	list := strings.Join(c.Fields.Strings("blocked_enchants"), ", ")
	c.Annotate(translate.Note(translate.CategoryUnsupported, "blocked_enchants", list,
		"BLOCKED ENCHANTS: "+list+noEquivalent))
	return nil
}

func applyMaxStackSize(c *translate.Context) error {
	if !c.Fields.Has("max_stack_size") {
		return nil
	}
	if n := c.Fields.Int("max_stack_size", defaultStackSize); n != defaultStackSize {
		c.Annotate(translate.Note(translate.CategoryManualReview, "max_stack_size", strconv.Itoa(n),
			fmt.Sprintf("max_stack_size: %d", n)))
	}
	return nil
}

func applyBowNotes(c *translate.Context) error {
	var texture string
	if res := c.Fields.Section("resource"); res != nil {
		if t := res.Strings("textures"); len(t) > 0 {
			texture = t[0]
		}
	}
	note := func(msg string) {
		c.Annotate(translate.Note(translate.CategoryManualReview, "resource.textures", texture, msg))
	}
	switch c.Target.Material {
	case "BOW":
		note("BOW: Pull textures use suffixes _0, _1, _2 in ItemsAdder.")
		note("  MythicCrucible handles bow pull states via resource pack Generation.")
		if texture != "" {
			note("  Base texture: " + texture)
			note("  Expected pull textures: " + texture + "_0, _1, _2")
		}
	case "CROSSBOW":
		note("CROSSBOW: Pull textures use suffixes _0, _1, _2, _charged, _firework in ItemsAdder.")
		note("  MythicCrucible handles crossbow states via resource pack Generation.")
		if texture != "" {
			note("  Base texture: " + texture)
		}
	}
	return nil
}

func applySource(c *translate.Context) error {
	if ns := c.Item.Namespace; ns != "" {
		ref := ns + ":" + c.Item.SourceID
		c.Annotate(translate.Note(translate.CategorySource, "", ref, "Source: "+ref))
	}
	return nil
}
