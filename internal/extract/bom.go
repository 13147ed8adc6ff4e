package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// Spreadsheet columns, 0-based.
const (
	colItemNumber = iota
	colComponentNumber
	colDescription
	colQuantity
	colUnit
	colText1
	colText2
	colSortString
	bomColumns
)

// BOMExtractor reads the BOM spreadsheet of a folder.
type BOMExtractor struct {
	base
	vocab *vocab.Vocabulary
}

// NewBOMExtractor returns a spreadsheet extractor using the given spreadsheet vocabulary.
func NewBOMExtractor(layout *storage.Layout, v *vocab.Vocabulary, logger *slog.Logger) *BOMExtractor {
	return &BOMExtractor{base: newBase(layout, logger), vocab: v}
}

func (e *BOMExtractor) Source() constants.Source { return constants.SourceBOM }

// Extract parses every data row of the first sheet and persists bom_excel.json.
func (e *BOMExtractor) Extract(ctx context.Context, folderID string) (Output, error) {
	rawDir, processedDir, err := e.folders(folderID)
	if err != nil {
		return nil, err
	}
	path, ok, err := e.layout.Locate(rawDir, constants.SourceBOM)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.logger.Error("extract.bom.missing_input", "folder_id", folderID, "dir", rawDir)
		return SpreadsheetRows{}, nil
	}

	rows, err := readSheetRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		e.logger.Warn("extract.bom.empty", "folder_id", folderID, "file", filepath.Base(path))
		return SpreadsheetRows{}, nil
	}

	records := make(SpreadsheetRows, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, e.parseRow(folderID, i+2, row))
	}

	if err := storage.WriteJSON(filepath.Join(processedDir, constants.ArtifactBOM), records); err != nil {
		return nil, err
	}
	e.logger.Info("extract.bom.done", "folder_id", folderID, "records", len(records))
	return records, nil
}

// readSheetRows returns the data rows of the first sheet, header and blank rows removed,
// each padded to the expected column count.
func readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	it, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	defer it.Close()

	var out [][]string
	for first := true; it.Next(); first = false {
		cols, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if first || blankRow(cols) {
			continue
		}
		for len(cols) < bomColumns {
			cols = append(cols, "")
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		out = append(out, cols)
	}
	return out, it.Error()
}

func blankRow(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (e *BOMExtractor) parseRow(folderID string, line int, row []string) entity.SpreadsheetRecord {
	description := row[colDescription]
	rec := entity.SpreadsheetRecord{
		ItemNumber:      row[colItemNumber],
		ComponentNumber: row[colComponentNumber],
		Description:     description,
		Unit:            row[colUnit],
		Coating:         hasCoatMarker(description),
	}
	if m, ok := e.vocab.MatchPrefix(description); ok {
		rec.PartType = &m.Part
	}
	if mat, ok := BOMMaterial(description); ok {
		rec.Material = &mat
	}
	if cat, ok := constants.CategoryForSort(row[colSortString]); ok {
		rec.Category = &cat
	}

	var usage []string
	for _, t := range []string{row[colText1], row[colText2]} {
		if t != "" {
			usage = append(usage, t)
		}
	}
	if len(usage) > 0 {
		u := strings.Join(usage, "; ")
		rec.Usage = &u
	}

	if q := row[colQuantity]; q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			e.logger.Warn("extract.bom.bad_quantity", "folder_id", folderID, "row", line, "value", q)
		} else {
			rec.Quantity = &v
		}
	}
	return rec
}
