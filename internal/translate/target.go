package translate

import "github.com/cory-johannsen/crucible-convert/internal/mapping"

// Type markers for non-item targets.
const (
	TypeFurniture = "FURNITURE"
	TypeBlock     = "BLOCK"
)

// Attribute is one vanilla attribute modifier. An empty Operation means the
// target default (ADD).
type Attribute struct {
	Name      string
	Value     float64
	Operation string
}

// AttributeGroup holds the attributes applied in one slot. Slot
// mapping.Unslotted groups attributes without a slot wrapper.
type AttributeGroup struct {
	Slot       string
	Attributes []Attribute
}

// Stat is one custom stat line.
type Stat struct {
	Name  string
	Value float64
}

// Entry is one key/value option.
type Entry struct {
	Key   string
	Value string
}

// Field is one entry of an extension Block. Exactly one of Scalar, List, or
// Block is meaningful: Block when non-nil, else List when non-nil, else
// Scalar.
type Field struct {
	Key    string
	Scalar string
	List   []string
	Block  *Block
}

// Block is an ordered, named extension section (Generation, Furniture,
// CustomBlock).
type Block struct {
	Name   string
	Fields []Field
}

// NewBlock returns an empty Block.
func NewBlock(name string) *Block { return &Block{Name: name} }

// Set appends a scalar field.
func (b *Block) Set(key, value string) *Block {
	b.Fields = append(b.Fields, Field{Key: key, Scalar: value})
	return b
}

// SetList appends a sequence field. Empty sequences are dropped.
func (b *Block) SetList(key string, items []string) *Block {
	if len(items) > 0 {
		b.Fields = append(b.Fields, Field{Key: key, List: items})
	}
	return b
}

// SetBlock appends a nested block under its own name.
func (b *Block) SetBlock(child *Block) *Block {
	b.Fields = append(b.Fields, Field{Key: child.Name, Block: child})
	return b
}

// Lookup returns the field stored under key.
func (b *Block) Lookup(key string) (Field, bool) {
	for _, f := range b.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// TargetItem is one translated item in the target schema.
type TargetItem struct {
	ID           string
	Material     string
	Type         string
	Display      string
	ItemModel    string
	Model        string
	TooltipStyle string
	EquipLevel   int
	Lore         []string
	Enchantments []string
	Attributes   []AttributeGroup
	Stats        []Stat
	Hide         []string
	Options      []Entry
	Extensions   []*Block
}

// SetAttribute stores a in the group for slot, replacing an attribute of the
// same name in that slot.
func (t *TargetItem) SetAttribute(slot string, a Attribute) {
	for gi := range t.Attributes {
		g := &t.Attributes[gi]
		if g.Slot != slot {
			continue
		}
		for ai := range g.Attributes {
			if g.Attributes[ai].Name == a.Name {
				g.Attributes[ai] = a
				return
			}
		}
		g.Attributes = append(g.Attributes, a)
		return
	}
	t.Attributes = append(t.Attributes, AttributeGroup{Slot: slot, Attributes: []Attribute{a}})
}

// AttributesIn returns the attributes of slot.
func (t *TargetItem) AttributesIn(slot string) []Attribute {
	for _, g := range t.Attributes {
		if g.Slot == slot {
			return g.Attributes
		}
	}
	return nil
}

// Unslotted reports whether every attribute group is unslotted.
func (t *TargetItem) Unslotted() bool {
	for _, g := range t.Attributes {
		if g.Slot != mapping.Unslotted {
			return false
		}
	}
	return len(t.Attributes) > 0
}

// AddStat appends a custom stat line.
func (t *TargetItem) AddStat(name string, v float64) {
	t.Stats = append(t.Stats, Stat{Name: name, Value: v})
}

// SetOption stores an option, replacing the value of an existing key in place.
func (t *TargetItem) SetOption(key, value string) {
	for i := range t.Options {
		if t.Options[i].Key == key {
			t.Options[i].Value = value
			return
		}
	}
	t.Options = append(t.Options, Entry{Key: key, Value: value})
}

// Option returns the value of an option.
func (t *TargetItem) Option(key string) (string, bool) {
	for _, e := range t.Options {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// AddExtension appends an extension block.
func (t *TargetItem) AddExtension(b *Block) {
	t.Extensions = append(t.Extensions, b)
}

// Extension returns the extension block named name, or nil.
func (t *TargetItem) Extension(name string) *Block {
	for _, b := range t.Extensions {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Translation is a TargetItem together with the annotations produced while
// translating it.
type Translation struct {
	Item        *TargetItem
	Annotations []Annotation
}
