// Package itemsadder reads ItemsAdder content files: YAML files anywhere
// below the contents directory, each with an "info" namespace and an
// "items" section.
package itemsadder

import (
	"fmt"

	"github.com/cory-johannsen/crucible-convert/internal/importer"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

// Header returns the comment lines opening a converted content file.
func Header(namespace string) []string {
	first := "MythicCrucible items converted from ItemsAdder"
	if namespace != "" {
		first += " namespace: " + namespace
	}
	return []string{first, "Generated by crucible-convert"}
}

// ParseDocument parses one ItemsAdder content file. Items with
// "enabled: false" are left out.
//
// Precondition: data must be valid YAML; name is the destination name.
// Postcondition: returns a non-nil Document (with no items when the file has
// no items section) and a (possibly empty) slice of warnings, or a non-nil
// error.
func ParseDocument(data []byte, name string) (*importer.Document, []string, error) {
	root, err := translate.ParseRecord(data)
	if err != nil {
		return nil, nil, err
	}

	namespace := ""
	if info := root.Section("info"); info != nil {
		namespace = info.String("namespace", "")
	}
	doc := &importer.Document{Name: name, Header: Header(namespace)}

	items := root.Section("items")
	if items == nil {
		return doc, nil, nil
	}

	var warnings []string
	for _, id := range items.Keys() {
		v, _ := items.Get(id)
		if v.Kind() != translate.KindSection {
			warnings = append(warnings, fmt.Sprintf("%s: entry %q is not an item section; skipped", name, id))
			continue
		}
		fields := v.Section()
		if !fields.Bool("enabled", true) {
			continue
		}
		doc.Items = append(doc.Items, &translate.SourceItem{
			ID:        importer.UpperID(id),
			SourceID:  id,
			Namespace: namespace,
			Fields:    fields,
		})
	}
	warnings = append(warnings, importer.UniqueIDs(doc.Items)...)
	return doc, warnings, nil
}
