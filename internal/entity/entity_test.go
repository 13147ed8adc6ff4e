package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDrawingRecordDecodesMixedTypes(t *testing.T) {
	raw := `[
	  {"ref": 1030, "description": "DIFFUSER (STAGE)", "qty": 1, "material": "GGG50 + COATING"},
	  {"ref": "2040", "description": "GLAND PACKING", "qty": "AS REQD", "material": "PTFE"},
	  {"ref": null, "description": "NOTE", "qty": null, "material": ""}
	]`
	var rows []DrawingRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, FlexString("1030"), rows[0].Ref)
	require.NotNil(t, rows[0].Qty.Value)
	assert.Equal(t, 1.0, *rows[0].Qty.Value)
	assert.Equal(t, AsRequired, rows[1].Qty.Text)
	assert.Equal(t, "AS REQD", rows[1].Qty.String())
	assert.Nil(t, rows[2].Qty.Value)
	assert.Empty(t, rows[2].Qty.Text)
}

func TestArtifactRoundTrip(t *testing.T) {
	t.Run("drawing", func(t *testing.T) {
		in := []DrawingRecord{
			{Ref: "1", Description: "STRAINER", Qty: Number(2), Material: "SS304"},
			{Ref: "2", Description: "GLAND PACKING", Qty: Marker(AsRequired), Material: ""},
		}
		b, err := json.Marshal(in)
		require.NoError(t, err)
		var out []DrawingRecord
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in, out)
	})

	t.Run("spreadsheet", func(t *testing.T) {
		in := []SpreadsheetRecord{{
			ItemNumber: "0010", ComponentNumber: "4711", Description: "IMP WEAR RING SS410+COAT",
			PartType: ptr("Impeller Wear Ring"), Quantity: ptr(2.0), Unit: "NO",
			Material: ptr("SS410 + COATING"), Coating: true, Category: ptr("Bowl Assembly"),
		}}
		b, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"usage":null`)
		var out []SpreadsheetRecord
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in, out)
	})

	t.Run("spec", func(t *testing.T) {
		in := NewSpecDocument()
		in.Add(PartSpec{Part: "Diffuser", Raw: "GGG50", Material: ptr("GGG50")})
		in.Add(MetadataEntry{Key: "Order No", Value: "81351387"})
		b, err := json.Marshal(in)
		require.NoError(t, err)
		var out SpecDocument
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, *in, out)
	})

	t.Run("comparison", func(t *testing.T) {
		in := Comparison{SessionID: "s1", Entries: []ComparisonEntry{{
			Component: "Strainer", InBOM: true, InCS: true,
			BOMTerms: []string{"STRAINER"}, SAPTerms: []string{}, CSTerms: []string{"STRAINER"},
		}}}
		b, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"sap_terms":[]`)
		var out Comparison
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in, out)
	})
}

func TestSpecDocumentLastWriteWins(t *testing.T) {
	doc := NewSpecDocument()
	doc.Add(PartSpec{Part: "Impeller", Raw: "CF8M"})
	doc.Add(PartSpec{Part: "Impeller", Raw: "CA6NM"})
	assert.Equal(t, "CA6NM", doc.Parts["Impeller"].Raw)
	assert.False(t, doc.Empty())
	assert.True(t, NewSpecDocument().Empty())
}

func TestComparisonEntryMissing(t *testing.T) {
	e := ComparisonEntry{Component: "Strainer", InBOM: true}
	assert.Equal(t, []string{"sap", "cs"}, e.Missing())
}
