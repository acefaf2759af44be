package translate

import (
	"fmt"
	"strings"
)

// Category tags an Annotation with the reason it was produced.
type Category string

const (
	CategoryUnsupported     Category = "unsupported-feature"
	CategoryUnmappedNumeric Category = "unmapped-numeric-stat"
	CategoryUnmappedString  Category = "unmapped-string-field"
	CategoryUnmappedSection Category = "unmapped-section"
	CategoryUnmappedFlag    Category = "unmapped-flag"
	CategoryUnmappedList    Category = "unmapped-list"
	CategoryOptionFlag      Category = "option-flag"
	CategoryDurability      Category = "durability-note"
	CategoryAbility         Category = "ability"
	CategoryPermEffect      Category = "permanent-effect"
	CategoryManualReview    Category = "manual-review"
	CategorySource          Category = "source-reference"
	CategoryFailed          Category = "conversion-failed"
	// CategoryComment marks annotations read back from rendered output, where
	// only the message text survives.
	CategoryComment Category = "comment"
)

// Annotation documents a source feature with no direct target
// representation. Message is the exact text rendered after "# ".
type Annotation struct {
	Category Category
	Key      string
	Value    string
	Message  string
}

// Note builds an Annotation with a preformatted message.
func Note(cat Category, key, value, message string) Annotation {
	return Annotation{
		Category: cat,
		Key:      key,
		Value:    oneLine(value),
		Message:  oneLine(message),
	}
}

// Notef builds an Annotation whose message is formatted from format and args.
func Notef(cat Category, key string, value Value, format string, args ...any) Annotation {
	return Note(cat, key, value.String(), fmt.Sprintf(format, args...))
}

// UnmappedNumeric annotates a numeric field with no mapping, suggesting a
// stat key for it.
func UnmappedNumeric(key string, v float64) Annotation {
	return Note(CategoryUnmappedNumeric, key, FormatNumber(v),
		fmt.Sprintf("unmapped-stat: %s = %s (STAT_KEY: %s)", key, FormatNumber(v), StatKey(key)))
}

// UnmappedString annotates a string field with no mapping.
func UnmappedString(key, value string) Annotation {
	return Note(CategoryUnmappedString, key, value, fmt.Sprintf("unmapped: %s = %s", key, value))
}

// UnmappedSection annotates a nested section with no mapping.
func UnmappedSection(key string, v Value) Annotation {
	return Note(CategoryUnmappedSection, key, v.String(), "unmapped-section: "+key)
}

// UnmappedFlag annotates a boolean field with no mapping.
func UnmappedFlag(key string, v Value) Annotation {
	return Note(CategoryUnmappedFlag, key, v.String(), fmt.Sprintf("unmapped-flag: %s = %s", key, v.String()))
}

// UnmappedList annotates a sequence field with no mapping.
func UnmappedList(key string, v Value) Annotation {
	return Note(CategoryUnmappedList, key, v.String(), fmt.Sprintf("unmapped-list: %s = %s", key, v.String()))
}

// OptionFlag annotates a disable-/hide- flag that may correspond to a target
// option or hide flag.
func OptionFlag(key string, v Value) Annotation {
	return Note(CategoryOptionFlag, key, v.String(),
		fmt.Sprintf("%s: %s (check MythicCrucible Options or Hide flags)", key, v.String()))
}

// Failed annotates an item that could not be converted.
func Failed(id string, err error) Annotation {
	return Note(CategoryFailed, id, "", fmt.Sprintf("FAILED TO CONVERT: %s - %v", id, err))
}

func oneLine(s string) string {
	if !strings.ContainsAny(s, lineBreaks) {
		return s
	}
	return lineBreakEscaper.Replace(s)
}

// lineBreaks lists every rune YAML treats as a line break.
const lineBreaks = "\r\n\u0085\u2028\u2029"

var lineBreakEscaper = strings.NewReplacer(
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
	"\u0085", `\u0085`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)
