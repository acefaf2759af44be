package mmoitems

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/importer"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

var _ importer.Source = (*Source)(nil)

// Source implements importer.Source for an MMOItems item directory:
//
//	sourceDir/
//	  SWORD.yml   <- one YAML file per item type
//	  ARMOR.yml
type Source struct {
	logger *zap.Logger
}

// NewSource constructs a Source.
//
// Precondition: logger must be non-nil.
func NewSource(logger *zap.Logger) *Source { return &Source{logger: logger} }

// Schema returns the MMOItems handler schema.
func (s *Source) Schema() *translate.Schema { return Schema() }

// Load reads every type file in sourceDir. The item type of each file is its
// base name, uppercased.
//
// Precondition: sourceDir must contain at least one .yml or .yaml file.
// Postcondition: returns one Document per type file, or a non-nil error.
func (s *Source) Load(sourceDir string) ([]*importer.Document, error) {
	files, err := importer.YAMLFiles(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no type files found in %s", sourceDir)
	}

	docs := make([]*importer.Document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading type file %s: %w", path, err)
		}
		doc, warnings, err := ParseDocument(data, importer.TypeName(path), filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("parsing type file %s: %w", path, err)
		}
		for _, w := range warnings {
			s.logger.Warn(w)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
