package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"imp wear ring", "IMP WEAR RING"},
		{"  R.M.PIPE TAP  ", "R M PIPE TAP"},
		{"IMP N/CAP-SS410+COAT", "IMP N CAP SS410 COAT"},
		{"Delivery Bend / Tee", "DELIVERY BEND TEE"},
		{"***", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestMatchLongestFirst(t *testing.T) {
	v := Default().Spreadsheet

	m, ok := v.Match("IMP WEAR RING SS410+COAT")
	require.True(t, ok)
	assert.Equal(t, "Impeller Wear Ring", m.Part)
	assert.Equal(t, "IMP WEAR RING", m.Term)

	m, ok = v.Match("BRG BUSH CARR CI")
	require.True(t, ok)
	assert.Equal(t, "Bearing Bush Carrier", m.Part)
}

func TestMatchTokenBoundary(t *testing.T) {
	v := New("test", []Entry{{Term: "IMP", Part: "Impeller"}})

	_, ok := v.Match("IMPACT SLEEVE")
	assert.False(t, ok)

	m, ok := v.Match("ASSY IMP TOP")
	require.True(t, ok)
	assert.Equal(t, "Impeller", m.Part)

	_, ok = v.MatchPrefix("ASSY IMP TOP")
	assert.False(t, ok)

	m, ok = v.MatchPrefix("imp-ca6nm")
	require.True(t, ok)
	assert.Equal(t, "IMP", m.Term)
}

func TestMatchPrefixIsPlainStartsWith(t *testing.T) {
	v := Default().Spreadsheet

	tests := []struct {
		desc, part, term string
	}{
		{"BRG BUSH CARRIER CI", "Bearing Bush Carrier", "BRG BUSH CARR"},
		{"GLD PACKING", "Gland Packing", "GLD PACK"},
		{"SAND COLLAR SS410", "Sand Collar", "SAND COLL"},
		{"WATER DEFLECTOR", "Water Deflector", "WATER DEFL"},
		{"IMPELLER CF8M", "Impeller", "IMPELLER"},
		{"DIFFUSER GGG50", "Diffuser", "DIFFUSER"},
		{"IMP WEAR RING SS410+COAT", "Impeller Wear Ring", "IMP WEAR RING"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			m, ok := v.MatchPrefix(tt.desc)
			require.True(t, ok)
			assert.Equal(t, tt.part, m.Part)
			assert.Equal(t, tt.term, m.Term)
		})
	}

	// whole-token matching still applies to Match
	_, ok := v.Match("GLD PACKING")
	assert.False(t, ok)
}

func TestMatchNormalizesPunctuatedTerms(t *testing.T) {
	v := Default().Spreadsheet

	m, ok := v.MatchPrefix("R.M.PIPE TAP 150NB")
	require.True(t, ok)
	assert.Equal(t, "RM Pipe (Taper/Bottom)", m.Part)
	assert.Equal(t, "R.M.PIPE TAP", m.Term)

	m, ok = v.Match("DIFFUSER (STAGE)")
	require.True(t, ok)
	assert.Equal(t, "Diffuser", m.Part)
}

func TestMatchEqualLengthKeepsDeclarationOrder(t *testing.T) {
	v := New("test", []Entry{
		{Term: "AB CD", Part: "First"},
		{Term: "CD EF", Part: "Second"},
	})
	m, ok := v.Match("AB CD EF")
	require.True(t, ok)
	assert.Equal(t, "First", m.Part)
}

func TestLookupIsExact(t *testing.T) {
	v := Default().Specification

	part, ok := v.Lookup("Diffuser Moc")
	require.True(t, ok)
	assert.Equal(t, "Diffuser", part)

	_, ok = v.Lookup("diffuser moc")
	assert.False(t, ok)
}

func TestNoMatchOnEmptyText(t *testing.T) {
	_, ok := Default().Spreadsheet.Match("  -- ")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	set, err := Parse([]byte(`
spreadsheet:
  - {term: "FOO", part: "Foo"}
specification:
  - {term: "Bar", part: "Bar"}
`))
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet", set.Spreadsheet.Name())
	assert.Len(t, set.Specification.Entries(), 1)

	_, err = Parse([]byte("spreadsheet: []\n"))
	assert.Error(t, err)
}

func TestDefaultTables(t *testing.T) {
	set := Default()
	assert.Len(t, set.Spreadsheet.Entries(), 46)
	assert.Len(t, set.Specification.Entries(), 19)
}
