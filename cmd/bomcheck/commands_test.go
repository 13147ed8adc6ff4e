package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

func TestWriteComparisonTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeComparisonTable(&buf, &entity.Comparison{
		SessionID: "81351387",
		Entries: []entity.ComparisonEntry{
			{Component: "Diffuser", InBOM: true, InSAP: true, BOMTerms: []string{"DIFF"}, SAPTerms: []string{"DIFFUSER"}},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Diffuser")
	assert.Contains(t, out, "DIFFUSER")
	assert.Contains(t, out, "✗")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"process", "extract", "compare", "export", "serve", "watch", "dbhealth"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
