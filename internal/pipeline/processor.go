package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/extract"
	"github.com/joseph-ayodele/bom-validator/internal/metrics"
	"github.com/joseph-ayodele/bom-validator/internal/repository"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// Results maps each extractor to its output. A nil output means the extractor failed.
type Results map[constants.Source]extract.Output

// Summary reports list outputs by length and anything else by whether it holds data.
func (r Results) Summary() map[string]any {
	out := make(map[string]any, len(r))
	for src, res := range r {
		switch v := res.(type) {
		case extract.SpreadsheetRows:
			out[string(src)] = len(v)
		case extract.DrawingRows:
			out[string(src)] = len(v)
		case nil:
			out[string(src)] = false
		default:
			out[string(src)] = v.Records() > 0
		}
	}
	return out
}

// Processor runs every extractor of a folder concurrently.
type Processor struct {
	layout     *storage.Layout
	extractors []extract.Extractor
	runs       repository.ExtractRunRepository
	logger     *slog.Logger
}

// NewProcessor wires the extractors; runs may be nil when no ledger is configured.
func NewProcessor(layout *storage.Layout, extractors []extract.Extractor, runs repository.ExtractRunRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{layout: layout, extractors: extractors, runs: runs, logger: logger}
}

// Extractor returns the registered extractor for src.
func (p *Processor) Extractor(src constants.Source) (extract.Extractor, bool) {
	for _, e := range p.extractors {
		if e.Source() == src {
			return e, true
		}
	}
	return nil, false
}

// ProcessFolder runs all extractors against folderID and waits for every one of them.
// A failing extractor is logged and reported as nil without affecting the others.
// The only error returned is a missing raw folder.
func (p *Processor) ProcessFolder(ctx context.Context, folderID string) (Results, error) {
	if !p.layout.RawExists(folderID) {
		return nil, common.FolderNotFound(folderID)
	}
	p.logger.Info("pipeline.process.start", "folder_id", folderID, "extractors", len(p.extractors))
	start := time.Now()

	outputs := make([]extract.Output, len(p.extractors))
	var g errgroup.Group
	g.SetLimit(len(p.extractors))
	for i, ex := range p.extractors {
		g.Go(func() error {
			outputs[i] = p.run(ctx, ex, folderID)
			return nil
		})
	}
	_ = g.Wait()

	results := make(Results, len(p.extractors))
	for i, ex := range p.extractors {
		results[ex.Source()] = outputs[i]
	}
	p.logger.Info("pipeline.process.done", "folder_id", folderID,
		"elapsed", time.Since(start).String(), "summary", results.Summary())
	return results, nil
}

// RunOne runs a single extractor with the same bookkeeping as ProcessFolder,
// but returns its error instead of swallowing it.
func (p *Processor) RunOne(ctx context.Context, src constants.Source, folderID string) (extract.Output, error) {
	ex, ok := p.Extractor(src)
	if !ok {
		return nil, common.InvalidArgument("unknown extractor: " + string(src))
	}
	return p.execute(ctx, ex, folderID)
}

// run executes one extractor, converting any error or panic into a nil output.
func (p *Processor) run(ctx context.Context, ex extract.Extractor, folderID string) extract.Output {
	out, err := p.execute(ctx, ex, folderID)
	if err != nil {
		p.logger.Error("pipeline.extractor.failed", "extractor", ex.Source(), "folder_id", folderID, "error", err)
		return nil
	}
	p.logger.Info("pipeline.extractor.ok", "extractor", ex.Source(), "folder_id", folderID, "records", out.Records())
	return out
}

func (p *Processor) execute(ctx context.Context, ex extract.Extractor, folderID string) (out extract.Output, err error) {
	name := string(ex.Source())
	runID := p.startRun(ctx, folderID, name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("pipeline.extractor.panic_stack", "extractor", name, "stack", string(debug.Stack()))
			out, err = nil, fmt.Errorf("%s extractor panicked: %v", name, r)
		}
		if err == nil && out == nil {
			err = errors.New(name + " extractor returned no output")
		}

		status := constants.RunStatusOK
		records := 0
		switch {
		case err != nil:
			status = constants.RunStatusFailed
		case out.Records() == 0:
			status = constants.RunStatusEmpty
		default:
			records = out.Records()
		}
		metrics.RecordExtractorRun(name, string(status), records, time.Since(start))
		p.finishRun(ctx, runID, status, records, err)
	}()

	return ex.Extract(ctx, folderID)
}

func (p *Processor) startRun(ctx context.Context, folderID, extractor string) uuid.UUID {
	if p.runs == nil {
		return uuid.Nil
	}
	run, err := p.runs.Start(ctx, folderID, extractor)
	if err != nil {
		p.logger.Warn("pipeline.ledger.start_failed", "folder_id", folderID, "extractor", extractor, "error", err)
		return uuid.Nil
	}
	return run.ID
}

func (p *Processor) finishRun(ctx context.Context, runID uuid.UUID, status constants.RunStatus, records int, runErr error) {
	if p.runs == nil || runID == uuid.Nil {
		return
	}
	outcome := repository.RunOutcome{Status: status, Records: records}
	if runErr != nil {
		outcome.ErrorMessage = runErr.Error()
	}
	// the ledger row is written even when the run was cancelled
	if err := p.runs.Finish(context.WithoutCancel(ctx), runID, outcome); err != nil {
		p.logger.Warn("pipeline.ledger.finish_failed", "run_id", runID, "error", err)
	}
}
