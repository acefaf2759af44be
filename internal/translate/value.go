package translate

import (
	"math"
	"strconv"
	"strings"
)

// baseKey is the sub-field holding the base amount of a scaled stat.
const baseKey = "base"

// maxExactWhole bounds the magnitudes printed through int64 formatting.
const maxExactWhole = 1 << 53

// Coerce converts v to a number. Native numbers, decimal strings, and
// sections carrying a numeric "base" field are accepted.
//
// Postcondition: ok is false when v has no finite numeric reading; the
// returned number is then 0.
func Coerce(v Value) (float64, bool) {
	switch v.kind {
	case KindScalar:
		switch v.tag {
		case tagBool:
			return 0, false
		case tagInt:
			// YAML integers may be written in hex, octal, or binary.
			if i, err := strconv.ParseInt(strings.ReplaceAll(v.raw, "_", ""), 0, 64); err == nil {
				return float64(i), true
			}
		}
		return parseNumber(v.raw)
	case KindSection:
		base, ok := v.section.Get(baseKey)
		if !ok {
			return 0, false
		}
		return Coerce(base)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Decimal notation only: ParseFloat also reads hex floats, Inf and NaN.
	if strings.IndexFunc(s, notDecimal) >= 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func notDecimal(r rune) bool {
	return !strings.ContainsRune("0123456789+-.eE", r)
}

// ScalePercent converts a whole percentage to a fraction.
func ScalePercent(v float64) float64 {
	return v / 100
}

// FormatNumber renders v without a fractional part when v is whole, and with
// its shortest exact decimal form otherwise.
//
// Postcondition: the result contains a '.' iff v is not a whole number.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) <= maxExactWhole {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SplitAttribute splits an attribute mapping of the form "NAME" or
// "NAME OPERATION". An absent operation is returned as "", meaning the
// target's default (ADD).
func SplitAttribute(mapping string) (name, operation string) {
	fields := strings.Fields(mapping)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// StatKey derives an upper-snake-case stat key suggestion from a source key.
func StatKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(key)))
}
