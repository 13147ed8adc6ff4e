package entity

import (
	"encoding/json"
)

// SpecEntry is one key/value pair of a specification document, classified
// as either a known part or free metadata. The two variants are exclusive.
type SpecEntry interface {
	EntryKey() string
	isSpecEntry()
}

// PartSpec is a specification row naming a known part.
type PartSpec struct {
	Part     string  `json:"-"`
	Raw      string  `json:"raw"`
	Material *string `json:"material"`
	Coating  bool    `json:"coating"`
}

func (p PartSpec) EntryKey() string { return p.Part }
func (PartSpec) isSpecEntry()       {}

// MetadataEntry is any specification row that does not name a part.
type MetadataEntry struct {
	Key   string
	Value string
}

func (m MetadataEntry) EntryKey() string { return m.Key }
func (MetadataEntry) isSpecEntry()       {}

// SpecDocument is the categorized view of a specification document.
type SpecDocument struct {
	Parts    map[string]PartSpec `json:"parts"`
	Metadata map[string]string   `json:"metadata"`
}

// NewSpecDocument returns an empty document with both maps allocated.
func NewSpecDocument() *SpecDocument {
	return &SpecDocument{Parts: map[string]PartSpec{}, Metadata: map[string]string{}}
}

// Add folds one classified entry into the document; later entries overwrite earlier ones.
func (d *SpecDocument) Add(e SpecEntry) {
	switch v := e.(type) {
	case PartSpec:
		d.Parts[v.Part] = v
	case MetadataEntry:
		d.Metadata[v.Key] = v.Value
	}
}

// Empty reports whether the document holds no entries.
func (d *SpecDocument) Empty() bool {
	return d == nil || (len(d.Parts) == 0 && len(d.Metadata) == 0)
}

// UnmarshalJSON restores the part name on every PartSpec from its map key.
func (d *SpecDocument) UnmarshalJSON(b []byte) error {
	type plain SpecDocument
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Parts == nil {
		p.Parts = map[string]PartSpec{}
	}
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	for name, part := range p.Parts {
		part.Part = name
		p.Parts[name] = part
	}
	*d = SpecDocument(p)
	return nil
}
