package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

// Format is a report file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" or "pdf", case-insensitively; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var headers = []string{"Component", "In BOM", "In SAP", "In CS", "BOM Terms", "SAP Terms", "CS Terms", "Missing From"}

// Service renders comparison reports.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, now: time.Now}
}

// Render produces the report of cmp in the requested format.
func (s *Service) Render(cmp *entity.Comparison, format Format) ([]byte, error) {
	if format == FormatPDF {
		return s.ComparisonPDF(cmp)
	}
	return s.ComparisonXLSX(cmp)
}

// ComparisonXLSX returns the comparison as an XLSX workbook.
func (s *Service) ComparisonXLSX(cmp *entity.Comparison) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Comparison"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}
	missing, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FCE4D6"}},
	})

	for i, e := range cmp.Entries {
		row := i + 2
		values := []any{
			e.Component,
			yesNo(e.InBOM), yesNo(e.InSAP), yesNo(e.InCS),
			strings.Join(e.BOMTerms, ", "),
			strings.Join(e.SAPTerms, ", "),
			strings.Join(e.CSTerms, ", "),
			strings.Join(e.Missing(), ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if len(e.Missing()) > 0 && missing != 0 {
			last, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheet, cell, last, missing)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 30) // component
	_ = f.SetColWidth(sheet, "B", "D", 9)  // flags
	_ = f.SetColWidth(sheet, "E", "G", 28) // terms
	_ = f.SetColWidth(sheet, "H", "H", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"session_id", cmp.SessionID,
		"rows", len(cmp.Entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ComparisonPDF returns the comparison as a landscape A4 table.
func (s *Service) ComparisonPDF(cmp *entity.Comparison) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Component comparison "+cmp.SessionID, false)
	pdf.SetAuthor("bom-validator", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Component comparison: "+cmp.SessionID)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d components", s.now().Format("2006-01-02 15:04"), len(cmp.Entries)))
	pdf.Ln(10)

	widths := []float64{55, 16, 16, 16, 48, 48, 48, 30}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, e := range cmp.Entries {
		cells := []string{
			e.Component,
			yesNo(e.InBOM), yesNo(e.InSAP), yesNo(e.InCS),
			strings.Join(e.BOMTerms, ", "),
			strings.Join(e.SAPTerms, ", "),
			strings.Join(e.CSTerms, ", "),
			strings.Join(e.Missing(), ", "),
		}
		fill := len(e.Missing()) > 0
		pdf.SetFillColor(252, 228, 214)
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, truncate(tr(c), 40), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	s.logger.Info("export.pdf.ok", "session_id", cmp.SessionID, "rows", len(cmp.Entries))
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
