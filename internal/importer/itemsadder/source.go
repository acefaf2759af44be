package itemsadder

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/importer"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

var _ importer.Source = (*Source)(nil)

// Source implements importer.Source for an ItemsAdder contents tree. Every
// YAML file below sourceDir is read; files without items yield empty
// documents. Output names flatten the relative path:
//
//	sourceDir/pack/configs/items.yml -> pack_configs_items.yml
type Source struct {
	logger *zap.Logger
}

// NewSource constructs a Source.
//
// Precondition: logger must be non-nil.
func NewSource(logger *zap.Logger) *Source { return &Source{logger: logger} }

// Schema returns the ItemsAdder handler schema.
func (s *Source) Schema() *translate.Schema { return Schema() }

// Load walks sourceDir and parses every content file.
//
// Precondition: sourceDir must exist and contain at least one YAML file.
// Postcondition: returns one Document per YAML file, or a non-nil error.
func (s *Source) Load(sourceDir string) ([]*importer.Document, error) {
	files, err := importer.WalkYAMLFiles(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no content files found in %s", sourceDir)
	}

	docs := make([]*importer.Document, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading content file %s: %w", path, err)
		}
		doc, warnings, err := ParseDocument(data, importer.OutputName(rel))
		if err != nil {
			return nil, fmt.Errorf("parsing content file %s: %w", path, err)
		}
		for _, w := range warnings {
			s.logger.Warn(w)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
