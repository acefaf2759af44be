package translate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// Kind is the shape of a source Value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindSection
)

// YAML core-schema tags carried by scalar values.
const (
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
)

// Value is one node of a source item tree: a scalar, a sequence, or a nested
// Record.
type Value struct {
	kind    Kind
	tag     string
	raw     string
	list    []Value
	section *Record
}

// StringValue returns a string scalar.
func StringValue(s string) Value { return Value{kind: KindScalar, tag: tagStr, raw: s} }

// NumberValue returns a numeric scalar.
func NumberValue(f float64) Value {
	tag := tagFloat
	if f == float64(int64(f)) {
		tag = tagInt
	}
	return Value{kind: KindScalar, tag: tag, raw: FormatNumber(f)}
}

// BoolValue returns a boolean scalar.
func BoolValue(b bool) Value { return Value{kind: KindScalar, tag: tagBool, raw: strconv.FormatBool(b)} }

// ListValue returns a sequence.
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }

// SectionValue returns a nested record.
func SectionValue(r *Record) Value { return Value{kind: KindSection, section: r} }

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the scalar text of v, or "" for non-scalars.
func (v Value) Raw() string { return v.raw }

// IsString reports whether v is a string scalar.
func (v Value) IsString() bool { return v.kind == KindScalar && v.tag == tagStr }

// IsBool reports whether v is a boolean scalar.
func (v Value) IsBool() bool { return v.kind == KindScalar && v.tag == tagBool }

// IsNumber reports whether v is a native numeric scalar.
func (v Value) IsNumber() bool {
	return v.kind == KindScalar && (v.tag == tagInt || v.tag == tagFloat)
}

// Bool returns the boolean value of a bool scalar.
func (v Value) Bool() (bool, bool) {
	if !v.IsBool() {
		return false, false
	}
	b, err := strconv.ParseBool(strings.ToLower(v.raw))
	if err != nil {
		// yaml 1.1 spellings that yaml.v3 still tags as bool
		switch strings.ToLower(v.raw) {
		case "yes", "on", "y":
			return true, true
		case "no", "off", "n":
			return false, true
		}
		return false, false
	}
	return b, true
}

// List returns the items of a sequence, or nil.
func (v Value) List() []Value { return v.list }

// Section returns the nested record, or nil.
func (v Value) Section() *Record { return v.section }

// String renders v for human-readable annotations.
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return v.raw
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindSection:
		return v.section.Dump()
	default:
		return "null"
	}
}

// Record is an ordered mapping of field keys to Values. Keys keep their
// source declaration order. The typed accessors match keys as Find does.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set assigns key, appending it when new and replacing in place otherwise.
func (r *Record) Set(key string, v Value) *Record {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Keys returns the field keys in declaration order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Find returns the value under key, falling back to a case-insensitive
// match that treats '_' and '-' alike.
func (r *Record) Find(key string) (Value, bool) {
	if v, ok := r.Get(key); ok {
		return v, true
	}
	if r == nil {
		return Value{}, false
	}
	want := mapping.NormalizeKey(key)
	for _, k := range r.keys {
		if mapping.NormalizeKey(k) == want {
			return r.values[k], true
		}
	}
	return Value{}, false
}

// Has reports whether key is present, matching as Find does.
func (r *Record) Has(key string) bool {
	_, ok := r.Find(key)
	return ok
}

// String returns the scalar text under key, or def when absent, null, or not
// a scalar.
func (r *Record) String(key, def string) string {
	v, ok := r.Find(key)
	if !ok || v.kind != KindScalar {
		return def
	}
	return v.raw
}

// Float coerces the value under key to a number.
func (r *Record) Float(key string) (float64, bool) {
	v, ok := r.Find(key)
	if !ok {
		return 0, false
	}
	return Coerce(v)
}

// Int coerces the value under key to an integer, truncating fractions.
// Returns def when the value is absent, not numeric, or outside the int
// range.
func (r *Record) Int(key string, def int) int {
	f, ok := r.Float(key)
	if !ok || f < math.MinInt || f >= math.MaxInt {
		return def
	}
	return int(f)
}

// Bool returns the boolean under key, or def when absent or not a boolean.
func (r *Record) Bool(key string, def bool) bool {
	v, ok := r.Find(key)
	if !ok {
		return def
	}
	b, ok := v.Bool()
	if !ok {
		return def
	}
	return b
}

// Strings returns the scalar items of the sequence under key, or nil.
func (r *Record) Strings(key string) []string {
	v, ok := r.Find(key)
	if !ok || v.kind != KindList {
		return nil
	}
	out := make([]string, 0, len(v.list))
	for _, item := range v.list {
		if item.kind == KindScalar {
			out = append(out, item.raw)
		}
	}
	return out
}

// Section returns the nested record under key, or nil.
func (r *Record) Section(key string) *Record {
	v, ok := r.Find(key)
	if !ok {
		return nil
	}
	return v.section
}

// IsSection reports whether key holds a nested record.
func (r *Record) IsSection(key string) bool {
	v, ok := r.Find(key)
	return ok && v.kind == KindSection
}

// IsList reports whether key holds a sequence.
func (r *Record) IsList(key string) bool {
	v, ok := r.Find(key)
	return ok && v.kind == KindList
}

// Dump renders the record for human-readable annotations.
func (r *Record) Dump() string {
	if r == nil {
		return "{}"
	}
	parts := make([]string, len(r.keys))
	for i, k := range r.keys {
		parts[i] = k + ": " + r.values[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ParseRecord decodes a YAML document into a Record.
//
// Precondition: data is a YAML document whose root is a mapping (an empty
// document yields an empty Record).
// Postcondition: returns a non-nil Record or a non-nil error.
func ParseRecord(data []byte) (*Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewRecord(), nil
	}
	return RecordFromNode(&doc)
}

// RecordFromNode converts a decoded yaml.Node mapping into a Record.
//
// Precondition: n is a document or mapping node.
// Postcondition: returns a non-nil Record or a non-nil error.
func RecordFromNode(n *yaml.Node) (*Record, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return NewRecord(), nil
		}
		n = n.Content[0]
	}
	v, err := newNodeDecoder().value(n)
	if err != nil {
		return nil, err
	}
	switch v.kind {
	case KindSection:
		return v.section, nil
	case KindNull:
		return NewRecord(), nil
	default:
		return nil, fmt.Errorf("line %d: document root must be a mapping", n.Line)
	}
}

// maxAliasExpansion bounds the values produced by expanding aliases in one
// document.
const maxAliasExpansion = 100_000

// nodeDecoder builds Values from a yaml.Node tree. Aliases are expanded in
// place; an alias that refers to a node still being decoded is a cycle.
type nodeDecoder struct {
	open       map[*yaml.Node]struct{}
	aliasDepth int
	expanded   int
}

func newNodeDecoder() *nodeDecoder {
	return &nodeDecoder{open: make(map[*yaml.Node]struct{})}
}

func (d *nodeDecoder) value(n *yaml.Node) (Value, error) {
	if d.aliasDepth > 0 {
		d.expanded++
		if d.expanded > maxAliasExpansion {
			return Value{}, fmt.Errorf("line %d: alias expansion exceeds %d values: %w", n.Line, maxAliasExpansion, ErrMalformed)
		}
	}
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return Value{}, fmt.Errorf("line %d: dangling alias", n.Line)
		}
		if _, cyclic := d.open[n.Alias]; cyclic {
			return Value{}, fmt.Errorf("line %d: alias *%s refers to itself: %w", n.Line, n.Value, ErrMalformed)
		}
		d.aliasDepth++
		defer func() { d.aliasDepth-- }()
		return d.value(n.Alias)
	case yaml.ScalarNode:
		tag := n.ShortTag()
		if tag == tagNull {
			return Value{kind: KindNull, tag: tag}, nil
		}
		return Value{kind: KindScalar, tag: tag, raw: n.Value}, nil
	case yaml.SequenceNode:
		d.open[n] = struct{}{}
		defer delete(d.open, n)
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := d.value(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindList, list: items}, nil
	case yaml.MappingNode:
		d.open[n] = struct{}{}
		defer delete(d.open, n)
		rec := NewRecord()
		var merges []*Record
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if k.ShortTag() == "!!merge" {
				m, err := d.value(val)
				if err != nil {
					return Value{}, err
				}
				if m.kind == KindSection {
					merges = append(merges, m.section)
				}
				continue
			}
			item, err := d.value(val)
			if err != nil {
				return Value{}, err
			}
			rec.Set(k.Value, item)
		}
		for _, m := range merges {
			for _, key := range m.keys {
				if _, exists := rec.values[key]; !exists {
					rec.Set(key, m.values[key])
				}
			}
		}
		return Value{kind: KindSection, section: rec}, nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}
