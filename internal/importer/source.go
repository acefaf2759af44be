package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

// Document is the common intermediate form produced by every Source: the
// items of one source file, in declaration order, plus the header comment
// lines of the target document written for it.
type Document struct {
	// Name is the destination name of the converted document.
	Name   string
	Header []string
	Items  []*translate.SourceItem
}

// Source loads source files of one schema from a directory.
//
// Precondition: sourceDir must exist and contain the layout the format expects.
// Postcondition: Load returns at least one Document, or a non-nil error.
type Source interface {
	Schema() *translate.Schema
	Load(sourceDir string) ([]*Document, error)
}

// IsYAML reports whether name has a .yml or .yaml extension.
func IsYAML(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

// YAMLFiles returns the YAML files directly inside dir, sorted by name.
func YAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsYAML(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// WalkYAMLFiles returns every YAML file below dir, sorted by path.
func WalkYAMLFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsYAML(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
