// Package mmoitems reads MMOItems type files: one YAML file per item type,
// each top-level key an item whose stats sit under a "base" section.
package mmoitems

import (
	"fmt"

	"github.com/cory-johannsen/crucible-convert/internal/importer"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

const baseSection = "base"

// Header returns the comment lines opening a converted type file.
func Header(typeName, sourceName string) []string {
	return []string{
		"MythicCrucible items converted from MMOItems type: " + typeName,
		"Source: " + sourceName,
		"NOTE: Some MMOItems features have no direct MythicCrucible equivalent.",
		"Look for comments starting with '#' for items needing manual review.",
		"Abilities must be manually converted to MythicMobs Skills.",
		"Gem sockets, soulbound, and item sets need alternative implementations.",
	}
}

// ParseDocument parses one MMOItems type file.
//
// Precondition: data must be valid YAML; typeName is the item type the file
// defines (e.g. "SWORD").
// Postcondition: returns a non-nil Document and a (possibly empty) slice of
// warnings for entries that are not items, or a non-nil error.
func ParseDocument(data []byte, typeName, sourceName string) (*importer.Document, []string, error) {
	root, err := translate.ParseRecord(data)
	if err != nil {
		return nil, nil, err
	}

	doc := &importer.Document{
		Name:   typeName + ".yml",
		Header: Header(typeName, sourceName),
	}
	var warnings []string
	for _, id := range root.Keys() {
		v, _ := root.Get(id)
		if v.Kind() != translate.KindSection {
			warnings = append(warnings, fmt.Sprintf("%s: entry %q is not an item section; skipped", sourceName, id))
			continue
		}
		fields := v.Section()
		if base := fields.Section(baseSection); base != nil {
			fields = base
		}
		doc.Items = append(doc.Items, &translate.SourceItem{
			ID:       importer.InternalName(typeName, id),
			SourceID: id,
			Type:     typeName,
			Fields:   fields,
		})
	}
	warnings = append(warnings, importer.UniqueIDs(doc.Items)...)
	return doc, warnings, nil
}
