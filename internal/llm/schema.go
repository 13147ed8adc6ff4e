package llm

// BuildDrawingRowsSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is used locally to validate what the vision model returned.
func BuildDrawingRowsSchema() map[string]any {
	row := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ref":         map[string]any{"type": []string{"string", "number", "null"}},
			"description": map[string]any{"type": []string{"string", "null"}},
			"qty":         map[string]any{"type": []string{"number", "string", "null"}},
			"material":    map[string]any{"type": []string{"string", "number", "null"}},
		},
	}
	return map[string]any{
		"type":  "array",
		"items": row,
	}
}
