package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

var drawingRowsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return CompileSchema(BuildDrawingRowsSchema())
})

// StripCodeFence removes a surrounding ``` fence and an optional "json" tag.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		parts := strings.Split(raw, "```")
		raw = parts[1]
		raw = strings.TrimPrefix(raw, "json")
	}
	return strings.TrimSpace(raw)
}

// ParseDrawingRows decodes a vision response into drawing rows.
// It returns the cleaned text alongside any error for diagnostics.
func ParseDrawingRows(raw string) ([]entity.DrawingRecord, string, error) {
	cleaned := StripCodeFence(raw)
	schema, err := drawingRowsSchema()
	if err != nil {
		return nil, cleaned, err
	}
	if err := ValidateJSON(schema, []byte(cleaned)); err != nil {
		return nil, cleaned, err
	}
	var rows []entity.DrawingRecord
	if err := json.Unmarshal([]byte(cleaned), &rows); err != nil {
		return nil, cleaned, fmt.Errorf("decode rows: %w", err)
	}
	for i := range rows {
		rows[i].Description = strings.TrimSpace(rows[i].Description)
		rows[i].Material = entity.FlexString(strings.TrimSpace(string(rows[i].Material)))
	}
	return rows, cleaned, nil
}
