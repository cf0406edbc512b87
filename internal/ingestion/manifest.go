// Package ingestion turns book manifests and their table-of-contents files
// into enriched chapters ready for retrieval.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// manifestEntry is one book in books.yaml.
type manifestEntry struct {
	BookID       string `yaml:"book_id"`
	Title        string `yaml:"title"`
	ChaptersPath string `yaml:"chapters_path"`
	SectionsPath string `yaml:"sections_path"`
}

// LoadManifest reads a books.yaml file:
//
//   - book_id: spring-in-action
//     title: Spring in Action
//     chapters_path: spring_brief.txt
//     sections_path: spring_detailed.txt
//
// Relative paths resolve against the manifest's directory. Entries are
// returned as written; per-book problems surface when the book is loaded.
func LoadManifest(path string) ([]driven.BookSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var entries []manifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	specs := make([]driven.BookSpec, len(entries))
	for i, e := range entries {
		specs[i] = driven.BookSpec{
			ID:           e.BookID,
			Title:        e.Title,
			ChaptersPath: resolve(dir, e.ChaptersPath),
			SectionsPath: resolve(dir, e.SectionsPath),
		}
	}
	return specs, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
