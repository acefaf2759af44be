package translate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
)

// flagPrefixes mark boolean toggles that may correspond to target options or
// hide flags.
var flagPrefixes = []string{"disable-", "hide-"}

// FieldHook is consulted for numeric fields that neither mapping table knows.
// Classify returns the custom stat name the field should be emitted under.
type FieldHook interface {
	Classify(key string, v Value) (stat string, ok bool)
}

// classifyField routes one field not owned by a handler. Precedence:
// attribute mapping, stat mapping, hook, flag prefix, unclassified.
//
// Postcondition: the field contributes exactly one attribute, one stat line,
// or one annotation, unless it is a zero or non-numeric mapped value or a
// native zero, which are skipped.
func classifyField(c *Context, hook FieldHook, key string, v Value) {
	if m, ok := c.Registry.Resolve(key); ok {
		n, ok := mappedNumber(c, key, v)
		if !ok {
			return
		}
		switch m.Kind {
		case mapping.KindAttribute:
			name, op := SplitAttribute(m.Target)
			c.Target.SetAttribute(c.Slot, Attribute{Name: name, Value: n, Operation: op})
		case mapping.KindStat:
			c.Target.AddStat(m.Target, n)
		}
		return
	}

	if hook != nil && v.Kind() != KindSection {
		if n, ok := Coerce(v); ok && n != 0 {
			if stat, ok := hook.Classify(key, v); ok && stat != "" {
				if c.Registry.IsPercent(key) {
					n = ScalePercent(n)
				}
				c.Target.AddStat(stat, n)
				return
			}
		}
	}

	normalized := mapping.NormalizeKey(key)
	for _, p := range flagPrefixes {
		if strings.HasPrefix(normalized, p) {
			c.Annotate(OptionFlag(key, v))
			return
		}
	}

	if a, ok := unclassified(key, v); ok {
		c.Annotate(a)
	}
}

// mappedNumber coerces and scales a mapped field. Zero and non-numeric
// values are skipped.
func mappedNumber(c *Context, key string, v Value) (float64, bool) {
	n, ok := Coerce(v)
	if !ok {
		c.Logger.Debug("skipping non-numeric mapped field",
			zap.String("item", c.Item.ID),
			zap.String("key", key),
			zap.String("value", v.String()),
		)
		return 0, false
	}
	if n == 0 {
		return 0, false
	}
	if c.Registry.IsPercent(key) {
		n = ScalePercent(n)
	}
	return n, true
}

// unclassified builds the annotation for a field no table or handler knows.
// ok is false only for native zero numbers.
func unclassified(key string, v Value) (Annotation, bool) {
	switch v.Kind() {
	case KindScalar:
		if v.IsBool() {
			return UnmappedFlag(key, v), true
		}
		if n, ok := Coerce(v); ok {
			if n != 0 {
				return UnmappedNumeric(key, n), true
			}
			if v.IsNumber() {
				return Annotation{}, false
			}
		}
		return UnmappedString(key, v.Raw()), true
	case KindSection:
		if n, ok := Coerce(v); ok && n != 0 {
			return UnmappedNumeric(key, n), true
		}
		return UnmappedSection(key, v), true
	case KindList:
		return UnmappedList(key, v), true
	default:
		return Note(CategoryUnmappedString, key, "", "unmapped: "+key+" (empty)"), true
	}
}
