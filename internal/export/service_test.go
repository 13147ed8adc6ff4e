package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

func sample() *entity.Comparison {
	return &entity.Comparison{
		SessionID: "81351387",
		Entries: []entity.ComparisonEntry{
			{Component: "Diffuser", InBOM: true, InSAP: true, InCS: true,
				BOMTerms: []string{"DIFF"}, SAPTerms: []string{"DIFFUSER"}, CSTerms: []string{"DIFFUSER"}},
			{Component: "Strainer", InBOM: true, InCS: true,
				BOMTerms: []string{"STRAINER"}, SAPTerms: []string{}, CSTerms: []string{"STRAINER"}},
		},
	}
}

func TestComparisonXLSX(t *testing.T) {
	b, err := NewService(nil).ComparisonXLSX(sample())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Comparison")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 7)
	assert.Equal(t, []string{"Diffuser", "Yes", "Yes", "Yes", "DIFF", "DIFFUSER", "DIFFUSER"}, rows[1][:7])
	assert.Equal(t, "No", rows[2][2])
	assert.Equal(t, "sap", rows[2][7])
}

func TestComparisonPDF(t *testing.T) {
	b, err := NewService(nil).Render(sample(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}
