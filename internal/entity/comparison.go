package entity

// ComparisonEntry reports where one canonical part was found and under which terms.
type ComparisonEntry struct {
	Component string   `json:"component"`
	InBOM     bool     `json:"in_bom"`
	InSAP     bool     `json:"in_sap"`
	InCS      bool     `json:"in_cs"`
	BOMTerms  []string `json:"bom_terms"`
	SAPTerms  []string `json:"sap_terms"`
	CSTerms   []string `json:"cs_terms"`
}

// Comparison is the persisted reconciliation result for one folder.
type Comparison struct {
	SessionID string            `json:"session_id"`
	Entries   []ComparisonEntry `json:"comparison"`
}

// Missing lists the sources that do not mention the component.
func (e ComparisonEntry) Missing() []string {
	var out []string
	if !e.InBOM {
		out = append(out, "bom")
	}
	if !e.InSAP {
		out = append(out, "sap")
	}
	if !e.InCS {
		out = append(out, "cs")
	}
	return out
}
