package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/core/pdftools"
	"github.com/joseph-ayodele/bom-validator/internal/llm"
	"github.com/joseph-ayodele/bom-validator/internal/metrics"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// Renderer rasterizes the first page of a PDF to a PNG file.
type Renderer interface {
	RenderFirstPage(ctx context.Context, path, outPNG string) error
}

// CSExtractor reads the parts table of a cross-section drawing through a vision model.
type CSExtractor struct {
	base
	renderer Renderer
	reader   llm.TableReader
	region   pdftools.Region
}

// NewCSExtractor returns a drawing extractor. A nil reader leaves the extractor
// able to render and crop but never to return rows.
func NewCSExtractor(layout *storage.Layout, renderer Renderer, reader llm.TableReader, logger *slog.Logger) *CSExtractor {
	return &CSExtractor{
		base:     newBase(layout, logger),
		renderer: renderer,
		reader:   reader,
		region:   pdftools.PartsTableRegion,
	}
}

func (e *CSExtractor) Source() constants.Source { return constants.SourceCS }

// Extract renders, crops and reads the drawing, then persists cs_bom.json.
// An unusable vision response yields nil rows and no error.
func (e *CSExtractor) Extract(ctx context.Context, folderID string) (Output, error) {
	rawDir, processedDir, err := e.folders(folderID)
	if err != nil {
		return nil, err
	}
	path, ok, err := e.layout.Locate(rawDir, constants.SourceCS)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.logger.Error("extract.cs.missing_input", "folder_id", folderID, "dir", rawDir)
		return DrawingRows{}, nil
	}

	rendered := filepath.Join(processedDir, constants.ArtifactRendered)
	if err := e.renderer.RenderFirstPage(ctx, path, rendered); err != nil {
		return nil, fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	e.logger.Info("extract.cs.rendered", "folder_id", folderID, "path", rendered)

	table := filepath.Join(processedDir, constants.ArtifactCSTable)
	if err := pdftools.CropRotateFile(rendered, table, e.region); err != nil {
		return nil, fmt.Errorf("crop table: %w", err)
	}
	e.logger.Info("extract.cs.cropped", "folder_id", folderID, "path", table)

	rows := e.readTable(ctx, folderID, table)
	if rows == nil {
		return DrawingRows(nil), nil
	}
	if err := storage.WriteJSON(filepath.Join(processedDir, constants.ArtifactCS), rows); err != nil {
		return nil, err
	}
	e.logger.Info("extract.cs.done", "folder_id", folderID, "records", len(rows))
	return rows, nil
}

// readTable asks the vision model for the table rows; nil means no usable data.
func (e *CSExtractor) readTable(ctx context.Context, folderID, imagePath string) DrawingRows {
	if e.reader == nil {
		e.logger.Error("extract.cs.no_vision_client", "folder_id", folderID)
		return nil
	}
	img, err := os.ReadFile(imagePath)
	if err != nil {
		e.logger.Error("extract.cs.read_image_failed", "folder_id", folderID, "error", err)
		return nil
	}

	raw, err := e.reader.ReadTable(ctx, llm.TableRequest{
		Image:    img,
		MIMEType: "image/png",
		Prompt:   llm.DrawingTablePrompt,
	})
	if err != nil {
		metrics.RecordVisionCall(e.reader.Name(), "error")
		e.logger.Error("extract.cs.vision_failed", "folder_id", folderID, "provider", e.reader.Name(), "error", err)
		return nil
	}

	rows, cleaned, err := llm.ParseDrawingRows(raw)
	if err != nil {
		metrics.RecordVisionCall(e.reader.Name(), "parse_error")
		e.logger.Error("extract.cs.parse_failed", "folder_id", folderID, "provider", e.reader.Name(), "error", err)
		e.logger.Debug("extract.cs.raw_response", "folder_id", folderID, "raw", cleaned)
		return nil
	}
	metrics.RecordVisionCall(e.reader.Name(), "ok")
	if rows == nil {
		return DrawingRows{}
	}
	return DrawingRows(rows)
}
