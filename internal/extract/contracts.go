package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// Extractor turns the source documents of one folder into a structured result.
// A missing input file is not an error: it yields an empty Output.
type Extractor interface {
	Source() constants.Source
	Extract(ctx context.Context, folderID string) (Output, error)
}

// Output is the result of one extractor run.
type Output interface {
	Records() int
}

// SpreadsheetRows is the output of the spreadsheet extractor.
type SpreadsheetRows []entity.SpreadsheetRecord

func (r SpreadsheetRows) Records() int { return len(r) }

// DrawingRows is the output of the drawing extractor. A nil value means
// the vision response could not be used.
type DrawingRows []entity.DrawingRecord

func (r DrawingRows) Records() int { return len(r) }

// SpecResult is the output of the specification-document extractor.
type SpecResult struct {
	Document *entity.SpecDocument
	Raw      map[string]string
}

func (r SpecResult) Records() int {
	if r.Document == nil {
		return 0
	}
	return len(r.Document.Parts) + len(r.Document.Metadata)
}

type base struct {
	layout *storage.Layout
	logger *slog.Logger
}

func newBase(layout *storage.Layout, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{layout: layout, logger: logger}
}

// folders resolves the raw and processed directories, creating the processed one.
func (b base) folders(folderID string) (string, string, error) {
	processed := b.layout.ProcessedFolder(folderID)
	if err := b.layout.EnsureFolder(folderID); err != nil {
		return "", "", fmt.Errorf("prepare folder %s: %w", folderID, err)
	}
	return b.layout.RawFolder(folderID), processed, nil
}
