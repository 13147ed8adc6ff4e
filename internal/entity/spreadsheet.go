package entity

// SpreadsheetRecord is one BOM line item read from the spreadsheet.
type SpreadsheetRecord struct {
	ItemNumber      string   `json:"item_number"`
	ComponentNumber string   `json:"component_number"`
	Description     string   `json:"description"`
	PartType        *string  `json:"part_type"`
	Quantity        *float64 `json:"quantity"`
	Unit            string   `json:"unit"`
	Material        *string  `json:"material"`
	Coating         bool     `json:"coating"`
	Category        *string  `json:"category"`
	Usage           *string  `json:"usage"`
}
