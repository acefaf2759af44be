package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

var idReplacer = strings.NewReplacer(" ", "_", "-", "_")

// InternalName joins an item type and a source entry key into a target
// identifier.
//
// Postcondition: the result contains no spaces or hyphens, and
// InternalName("", InternalName(t, id)) is stable under repeated application.
func InternalName(typeName, id string) string {
	if typeName == "" {
		return idReplacer.Replace(id)
	}
	return idReplacer.Replace(typeName + "_" + id)
}

// UpperID folds an entry key into the uppercase identifier convention of the
// target schema.
func UpperID(id string) string {
	return cases.Upper(language.Und).String(id)
}

// OutputName flattens a path relative to the source root into a single
// destination file name.
//
// Postcondition: the result contains no path separators and does not start
// with '_'.
func OutputName(rel string) string {
	name := strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
	return strings.TrimLeft(name, "_")
}

// TypeName derives the item type of a type file from its name: the base
// name without extension, uppercased.
func TypeName(path string) string {
	base := filepath.Base(path)
	return cases.Upper(language.Und).String(strings.TrimSuffix(base, filepath.Ext(base)))
}

// UniqueIDs renames items whose target identifier collides with an earlier
// item in the same document by appending a numeric suffix.
//
// Postcondition: all item IDs are distinct; one warning is returned per
// renamed item.
func UniqueIDs(items []*translate.SourceItem) []string {
	var warnings []string
	used := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := used[it.ID]; !dup {
			used[it.ID] = struct{}{}
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s_%d", it.ID, n)
			if _, dup := used[candidate]; !dup {
				warnings = append(warnings, fmt.Sprintf("item %q: id %s already used; emitted as %s", it.SourceID, it.ID, candidate))
				it.ID = candidate
				used[candidate] = struct{}{}
				break
			}
		}
	}
	return warnings
}
