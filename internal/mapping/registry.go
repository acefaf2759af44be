// Package mapping holds the lookup tables that translate source item keys into
// target attributes, custom stats, and equipment slots.
package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSlot is the slot used for item types with no slot mapping.
const DefaultSlot = "MainHand"

// Unslotted is the slot value meaning "attributes apply without a slot wrapper".
const Unslotted = ""

// Kind identifies which table a key resolved against.
type Kind int

const (
	// KindNone means the key is in neither the attribute nor the stat table.
	KindNone Kind = iota
	// KindAttribute means the key maps to a vanilla attribute.
	KindAttribute
	// KindStat means the key maps to a custom stat.
	KindStat
)

// Mapping is the resolved target of a source key.
type Mapping struct {
	Kind   Kind
	Target string
}

// Sections is the raw, un-normalized content of the four mapping sections.
type Sections struct {
	Attributes  map[string]string
	Stats       map[string]string
	Slots       map[string]string
	Percent     []string
	DefaultSlot string
}

// Counts reports the size of each table.
type Counts struct {
	Attributes int
	Stats      int
	Slots      int
	Percent    int
}

// Registry is an immutable set of mapping tables. All keys are normalized at
// construction so every lookup is case-insensitive.
//
// A key present in both the attribute and the stat table resolves to the
// attribute mapping.
type Registry struct {
	attributes  map[string]string
	stats       map[string]string
	slots       map[string]string
	percent     map[string]struct{}
	defaultSlot string
}

// New builds a Registry from raw sections.
//
// Postcondition: returns a non-nil Registry; attribute and stat entries with
// empty values are dropped, slot entries with empty values are kept.
func New(s Sections) *Registry {
	r := &Registry{
		attributes:  make(map[string]string, len(s.Attributes)),
		stats:       make(map[string]string, len(s.Stats)),
		slots:       make(map[string]string, len(s.Slots)),
		percent:     make(map[string]struct{}, len(s.Percent)),
		defaultSlot: strings.TrimSpace(s.DefaultSlot),
	}
	if r.defaultSlot == "" {
		r.defaultSlot = DefaultSlot
	}
	for k, v := range s.Attributes {
		if v = strings.TrimSpace(v); v != "" {
			r.attributes[NormalizeKey(k)] = v
		}
	}
	for k, v := range s.Stats {
		if v = strings.TrimSpace(v); v != "" {
			r.stats[NormalizeKey(k)] = v
		}
	}
	for k, v := range s.Slots {
		r.slots[NormalizeType(k)] = strings.TrimSpace(v)
	}
	for _, k := range s.Percent {
		if k = strings.TrimSpace(k); k != "" {
			r.percent[NormalizeKey(k)] = struct{}{}
		}
	}
	return r
}

// Empty returns a Registry with no mappings and the default slot.
func Empty() *Registry {
	return New(Sections{})
}

// NormalizeKey folds a stat or attribute key to its lookup form: lowercase,
// with underscores replaced by hyphens.
func NormalizeKey(key string) string {
	k := cases.Lower(language.Und).String(strings.TrimSpace(key))
	return strings.ReplaceAll(k, "_", "-")
}

// NormalizeType folds an item type name to its lookup form: uppercase.
func NormalizeType(typeName string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(typeName))
}

// SlotFor returns the equipment slot for the given item type.
//
// Postcondition: returns the mapped slot when the type is mapped (which may
// be Unslotted), otherwise the registry's default slot.
func (r *Registry) SlotFor(typeName string) string {
	if slot, ok := r.slots[NormalizeType(typeName)]; ok {
		return slot
	}
	return r.defaultSlot
}

// DefaultSlot returns the slot used for unmapped types.
func (r *Registry) DefaultSlot() string { return r.defaultSlot }

// IsPercent reports whether the key's values are whole percentages.
func (r *Registry) IsPercent(key string) bool {
	_, ok := r.percent[NormalizeKey(key)]
	return ok
}

// Attribute returns the raw attribute mapping ("NAME" or "NAME OPERATION").
func (r *Registry) Attribute(key string) (string, bool) {
	v, ok := r.attributes[NormalizeKey(key)]
	return v, ok
}

// Stat returns the custom stat name for key.
func (r *Registry) Stat(key string) (string, bool) {
	v, ok := r.stats[NormalizeKey(key)]
	return v, ok
}

// Resolve returns the winning mapping for key. Attribute mappings take
// precedence over stat mappings.
//
// Postcondition: ok is false iff Kind is KindNone.
func (r *Registry) Resolve(key string) (Mapping, bool) {
	if v, ok := r.Attribute(key); ok {
		return Mapping{Kind: KindAttribute, Target: v}, true
	}
	if v, ok := r.Stat(key); ok {
		return Mapping{Kind: KindStat, Target: v}, true
	}
	return Mapping{Kind: KindNone}, false
}

// Counts reports the number of entries in each table.
func (r *Registry) Counts() Counts {
	return Counts{
		Attributes: len(r.attributes),
		Stats:      len(r.stats),
		Slots:      len(r.slots),
		Percent:    len(r.percent),
	}
}
