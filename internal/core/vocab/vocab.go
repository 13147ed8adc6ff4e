package vocab

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry maps a literal term to the canonical part it denotes.
type Entry struct {
	Term string `yaml:"term" json:"term"`
	Part string `yaml:"part" json:"part"`
}

// Match is the result of a successful vocabulary lookup.
type Match struct {
	Part string // canonical part
	Term string // literal vocabulary term that matched
}

type compiled struct {
	Entry
	norm string
}

// Vocabulary is an immutable term table. Matching order (longest term first,
// declaration order for ties) is fixed when the vocabulary is built.
type Vocabulary struct {
	name    string
	entries []Entry
	ordered []compiled
	exact   map[string]string
}

// New builds a Vocabulary from entries in declaration order.
func New(name string, entries []Entry) *Vocabulary {
	v := &Vocabulary{
		name:    name,
		entries: append([]Entry(nil), entries...),
		exact:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		v.exact[e.Term] = e.Part
		n := Normalize(e.Term)
		if n == "" {
			continue
		}
		v.ordered = append(v.ordered, compiled{Entry: e, norm: n})
	}
	sort.SliceStable(v.ordered, func(i, j int) bool {
		return utf8.RuneCountInString(v.ordered[i].Term) > utf8.RuneCountInString(v.ordered[j].Term)
	})
	return v
}

// Name returns the vocabulary label.
func (v *Vocabulary) Name() string { return v.name }

// Entries returns a copy of the entries in declaration order.
func (v *Vocabulary) Entries() []Entry { return append([]Entry(nil), v.entries...) }

// Lookup resolves an exact, case-sensitive term.
func (v *Vocabulary) Lookup(term string) (string, bool) {
	part, ok := v.exact[term]
	return part, ok
}

// Match returns the longest term that occurs in text as a whole token
// sequence after normalization.
func (v *Vocabulary) Match(text string) (Match, bool) {
	n := Normalize(text)
	if n == "" {
		return Match{}, false
	}
	padded := " " + n + " "
	for _, c := range v.ordered {
		if strings.Contains(padded, " "+c.norm+" ") {
			return Match{Part: c.Part, Term: c.Term}, true
		}
	}
	return Match{}, false
}

// MatchPrefix returns the longest term the normalized text starts with.
// Unlike Match it ignores token boundaries, so "GLD PACKING" resolves through
// "GLD PACK".
func (v *Vocabulary) MatchPrefix(text string) (Match, bool) {
	n := Normalize(text)
	if n == "" {
		return Match{}, false
	}
	for _, c := range v.ordered {
		if strings.HasPrefix(n, c.norm) {
			return Match{Part: c.Part, Term: c.Term}, true
		}
	}
	return Match{}, false
}
