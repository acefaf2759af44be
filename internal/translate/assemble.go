package translate

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

const indentUnit = "  "

// RenderItem renders one translated item. Sections appear in a fixed order:
// ID, Material, Type, Display, ItemModel, Model, TooltipStyle, EquipLevel,
// Lore, Enchantments, Attributes, Stats, Hide, Options, extension blocks,
// then one comment line per annotation. The item ends with a blank line.
//
// Precondition: tr.Item must be non-nil.
func RenderItem(tr *Translation) string {
	it := tr.Item
	var b strings.Builder

	b.WriteString(plainScalar(it.ID))
	b.WriteString(":\n")
	writeScalar(&b, 1, "Material", it.Material)
	writeScalar(&b, 1, "Type", it.Type)
	if it.Display != "" {
		writeRaw(&b, 1, "Display", quoted(it.Display))
	}
	writeScalar(&b, 1, "ItemModel", it.ItemModel)
	writeScalar(&b, 1, "Model", it.Model)
	writeScalar(&b, 1, "TooltipStyle", it.TooltipStyle)
	if it.EquipLevel > 0 {
		writeRaw(&b, 1, "EquipLevel", strconv.Itoa(it.EquipLevel))
	}

	if len(it.Lore) > 0 {
		lines := make([]string, len(it.Lore))
		for i, l := range it.Lore {
			lines[i] = quoted(l)
		}
		writeSeq(&b, 1, "Lore", lines)
	}
	writeSeq(&b, 1, "Enchantments", plainAll(it.Enchantments))
	writeAttributes(&b, it.Attributes)

	if len(it.Stats) > 0 {
		lines := make([]string, len(it.Stats))
		for i, s := range it.Stats {
			lines[i] = plainScalar(s.Name + " " + FormatNumber(s.Value))
		}
		writeSeq(&b, 1, "Stats", lines)
	}
	writeSeq(&b, 1, "Hide", plainAll(it.Hide))

	if hasOptions(it.Options) {
		writeHeader(&b, 1, "Options")
		for _, o := range it.Options {
			writeScalar(&b, 2, o.Key, o.Value)
		}
	}
	for _, blk := range it.Extensions {
		writeBlock(&b, 1, blk)
	}

	for _, a := range tr.Annotations {
		b.WriteString(indentUnit)
		b.WriteString("# ")
		b.WriteString(oneLine(a.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// RenderFailure renders the placeholder emitted in place of an item that
// could not be converted.
func RenderFailure(id string, err error) string {
	return "# " + oneLine(Failed(id, err).Message) + "\n\n"
}

// RenderDocument renders header comment lines followed by each item's text
// in order.
func RenderDocument(header []string, items []ItemResult) string {
	var b strings.Builder
	for _, h := range header {
		b.WriteString("# ")
		b.WriteString(oneLine(h))
		b.WriteString("\n")
	}
	if len(header) > 0 {
		b.WriteString("\n")
	}
	for _, it := range items {
		b.WriteString(it.Text)
	}
	return b.String()
}

func hasOptions(opts []Entry) bool {
	for _, o := range opts {
		if o.Value != "" {
			return true
		}
	}
	return false
}

func writeAttributes(b *strings.Builder, groups []AttributeGroup) {
	empty := true
	for _, g := range groups {
		if len(g.Attributes) > 0 {
			empty = false
		}
	}
	if empty {
		return
	}
	writeHeader(b, 1, "Attributes")
	for _, g := range groups {
		if len(g.Attributes) == 0 {
			continue
		}
		depth := 2
		if g.Slot != mapping.Unslotted {
			writeHeader(b, 2, plainScalar(g.Slot))
			depth = 3
		}
		for _, a := range g.Attributes {
			writeRaw(b, depth, plainScalar(a.Name), attributeValue(a))
		}
	}
}

func attributeValue(a Attribute) string {
	if a.Operation == "" {
		return FormatNumber(a.Value)
	}
	return FormatNumber(a.Value) + " " + a.Operation
}

// writeBlock writes a named extension block. Blocks with no renderable
// content are omitted.
func writeBlock(b *strings.Builder, depth int, blk *Block) {
	if blockEmpty(blk) {
		return
	}
	writeHeader(b, depth, plainScalar(blk.Name))
	for _, f := range blk.Fields {
		switch {
		case f.Block != nil:
			writeBlock(b, depth+1, f.Block)
		case f.List != nil:
			writeSeq(b, depth+1, f.Key, plainAll(f.List))
		default:
			writeScalar(b, depth+1, f.Key, f.Scalar)
		}
	}
}

func blockEmpty(blk *Block) bool {
	for _, f := range blk.Fields {
		switch {
		case f.Block != nil:
			if !blockEmpty(f.Block) {
				return false
			}
		case len(f.List) > 0, f.List == nil && f.Scalar != "":
			return false
		}
	}
	return true
}

func writeHeader(b *strings.Builder, depth int, key string) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(key)
	b.WriteString(":\n")
}

// writeScalar writes key: value, omitting empty values.
func writeScalar(b *strings.Builder, depth int, key, value string) {
	if value == "" {
		return
	}
	writeRaw(b, depth, plainScalar(key), plainScalar(value))
}

func writeRaw(b *strings.Builder, depth int, key, rendered string) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(rendered)
	b.WriteString("\n")
}

// writeSeq writes a block sequence whose items sit at the key's indentation.
func writeSeq(b *strings.Builder, depth int, key string, rendered []string) {
	if len(rendered) == 0 {
		return
	}
	writeHeader(b, depth, plainScalar(key))
	pad := strings.Repeat(indentUnit, depth)
	for _, r := range rendered {
		b.WriteString(pad)
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
}

func plainAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = plainScalar(s)
	}
	return out
}

// quoted renders s as a single-quoted scalar with embedded quotes doubled.
// Strings holding control characters use the double-quoted style instead.
func quoted(s string) string {
	if hasControl(s) {
		return strconv.Quote(s)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// plainScalar renders s unquoted unless a YAML reader would misread it or
// lose part of it.
func plainScalar(s string) string {
	if needsQuotes(s) {
		return quoted(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" || hasControl(s) {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	if strings.Contains(s, ": ") || strings.Contains(s, " #") || strings.HasSuffix(s, ":") {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`", rune(s[0]))
}

// hasControl reports whether s holds a control character or a rune YAML
// reads as a line break.
func hasControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || r == '\u2028' || r == '\u2029'
	}) >= 0
}
