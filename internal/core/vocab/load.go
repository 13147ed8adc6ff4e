package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed vocabularies.yaml
var embedded []byte

// Set bundles the two vocabularies used across the pipeline.
type Set struct {
	Spreadsheet   *Vocabulary
	Specification *Vocabulary
}

type document struct {
	Spreadsheet   []Entry `yaml:"spreadsheet"`
	Specification []Entry `yaml:"specification"`
}

// Parse decodes a vocabulary YAML document.
func Parse(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode vocabularies: %w", err)
	}
	if len(doc.Spreadsheet) == 0 || len(doc.Specification) == 0 {
		return nil, fmt.Errorf("decode vocabularies: both spreadsheet and specification tables are required")
	}
	for i, e := range append(doc.Spreadsheet, doc.Specification...) {
		if e.Term == "" || e.Part == "" {
			return nil, fmt.Errorf("decode vocabularies: entry %d has an empty term or part", i)
		}
	}
	return &Set{
		Spreadsheet:   New("spreadsheet", doc.Spreadsheet),
		Specification: New("specification", doc.Specification),
	}, nil
}

// Load reads a vocabulary file; an empty path yields the built-in tables.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabularies: %w", err)
	}
	return Parse(b)
}

var defaultSet = sync.OnceValue(func() *Set {
	s, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return s
})

// Default returns the built-in vocabularies, parsed once.
func Default() *Set { return defaultSet() }
