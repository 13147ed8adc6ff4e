// Package reconcile merges the per-source extraction artifacts of a folder
// into one comparison table keyed by canonical part.
package reconcile

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

// Engine canonicalizes records against both vocabularies. It holds no state
// between calls.
type Engine struct {
	vocabs *vocab.Set
}

func NewEngine(vocabs *vocab.Set) *Engine {
	if vocabs == nil {
		vocabs = vocab.Default()
	}
	return &Engine{vocabs: vocabs}
}

// Canonicalize resolves free text to a canonical part, trying the spreadsheet
// vocabulary before the specification vocabulary.
func (e *Engine) Canonicalize(text string) (vocab.Match, bool) {
	if m, ok := e.vocabs.Spreadsheet.Match(text); ok {
		return m, true
	}
	return e.vocabs.Specification.Match(text)
}

type hits struct {
	entry entity.ComparisonEntry
	bom   map[string]struct{}
	sap   map[string]struct{}
	cs    map[string]struct{}
}

type table map[string]*hits

func (t table) get(part string) *hits {
	h, ok := t[part]
	if !ok {
		h = &hits{
			entry: entity.ComparisonEntry{Component: part},
			bom:   map[string]struct{}{},
			sap:   map[string]struct{}{},
			cs:    map[string]struct{}{},
		}
		t[part] = h
	}
	return h
}

// Reconcile builds one entry per canonical part seen in any source, sorted by
// part name with sorted term lists.
func (e *Engine) Reconcile(bom []entity.SpreadsheetRecord, spec *entity.SpecDocument, cs []entity.DrawingRecord) []entity.ComparisonEntry {
	t := table{}

	for _, row := range bom {
		m, matched := e.Canonicalize(row.Description)
		part := m.Part
		if row.PartType != nil && *row.PartType != "" {
			// the stored type wins; the re-matched term is kept for display only
			part = *row.PartType
		} else if !matched {
			continue
		}
		h := t.get(part)
		h.entry.InBOM = true
		if matched {
			h.bom[m.Term] = struct{}{}
		}
	}

	if spec != nil {
		for name := range spec.Parts {
			term := name
			if m, ok := e.Canonicalize(name); ok {
				term = m.Term
			}
			h := t.get(name)
			h.entry.InSAP = true
			h.sap[term] = struct{}{}
		}
	}

	for _, row := range cs {
		desc := strings.TrimSpace(row.Description)
		m, ok := e.Canonicalize(desc)
		if !ok {
			continue
		}
		h := t.get(m.Part)
		h.entry.InCS = true
		h.cs[m.Term] = struct{}{}
	}

	out := make([]entity.ComparisonEntry, 0, len(t))
	for _, h := range t {
		h.entry.BOMTerms = sortedKeys(h.bom)
		h.entry.SAPTerms = sortedKeys(h.sap)
		h.entry.CSTerms = sortedKeys(h.cs)
		out = append(out, h.entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Component < out[j].Component })
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
