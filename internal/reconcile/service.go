package reconcile

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
	"github.com/joseph-ayodele/bom-validator/internal/metrics"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// Inputs are the extraction artifacts of one folder.
type Inputs struct {
	BOM  []entity.SpreadsheetRecord
	Spec *entity.SpecDocument
	CS   []entity.DrawingRecord
}

// Empty reports whether no source produced anything.
func (in Inputs) Empty() bool {
	return len(in.BOM) == 0 && len(in.CS) == 0 && in.Spec.Empty()
}

// Service loads artifacts, reconciles them and persists the comparison.
type Service struct {
	layout *storage.Layout
	engine *Engine
	logger *slog.Logger
}

func NewService(layout *storage.Layout, engine *Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{layout: layout, engine: engine, logger: logger}
}

// Load reads the three artifacts of sessionID. Missing artifacts are empty.
func (s *Service) Load(sessionID string) (Inputs, error) {
	if !s.layout.ProcessedExists(sessionID) {
		return Inputs{}, common.ProcessedNotFound(sessionID)
	}
	dir := s.layout.ProcessedFolder(sessionID)

	var in Inputs
	if _, err := storage.ReadJSON(filepath.Join(dir, constants.ArtifactBOM), &in.BOM); err != nil {
		return Inputs{}, err
	}
	if _, err := storage.ReadJSON(filepath.Join(dir, constants.ArtifactSAPData), &in.Spec); err != nil {
		return Inputs{}, err
	}
	if _, err := storage.ReadJSON(filepath.Join(dir, constants.ArtifactCS), &in.CS); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Compare rebuilds the comparison of sessionID and overwrites abbrev_comparison.json.
func (s *Service) Compare(ctx context.Context, sessionID string) (*entity.Comparison, error) {
	log := common.LoggerFrom(ctx, s.logger)

	in, err := s.Load(sessionID)
	if err != nil {
		metrics.RecordComparison("not_found", 0)
		return nil, err
	}
	if in.Empty() {
		metrics.RecordComparison("no_data", 0)
		return nil, common.NoExtractedData(sessionID)
	}

	cmp := &entity.Comparison{
		SessionID: sessionID,
		Entries:   s.engine.Reconcile(in.BOM, in.Spec, in.CS),
	}
	path := filepath.Join(s.layout.ProcessedFolder(sessionID), constants.ArtifactComparison)
	if err := storage.WriteJSON(path, cmp); err != nil {
		metrics.RecordComparison("error", 0)
		return nil, err
	}
	metrics.RecordComparison("ok", len(cmp.Entries))
	log.Info("reconcile.compare.done", "session_id", sessionID,
		"components", len(cmp.Entries), "bom_rows", len(in.BOM), "cs_rows", len(in.CS))
	return cmp, nil
}

// Latest returns the last persisted comparison, or nil when none exists.
func (s *Service) Latest(sessionID string) (*entity.Comparison, error) {
	if !s.layout.ProcessedExists(sessionID) {
		return nil, common.ProcessedNotFound(sessionID)
	}
	var cmp entity.Comparison
	ok, err := storage.ReadJSON(filepath.Join(s.layout.ProcessedFolder(sessionID), constants.ArtifactComparison), &cmp)
	if err != nil || !ok {
		return nil, err
	}
	return &cmp, nil
}
