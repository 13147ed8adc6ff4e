package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/entity"
)

// ExtractRunRepository records one row per extractor execution.
type ExtractRunRepository interface {
	Start(ctx context.Context, folderID, extractor string) (*entity.ExtractRun, error)
	Finish(ctx context.Context, runID uuid.UUID, outcome RunOutcome) error
	ListByFolder(ctx context.Context, folderID string) ([]*entity.ExtractRun, error)
}

// RunOutcome is the final state of a run.
type RunOutcome struct {
	Status       constants.RunStatus
	Records      int
	ErrorMessage string
}

type extractRunRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractRunRepository(db *DB, log *slog.Logger) ExtractRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractRunRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *extractRunRepo) Start(ctx context.Context, folderID, extractor string) (*entity.ExtractRun, error) {
	run := &entity.ExtractRun{
		ID:        uuid.New(),
		FolderID:  folderID,
		Extractor: extractor,
		Status:    string(constants.RunStatusRunning),
		StartedAt: r.now(),
	}
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extract_run (id, folder_id, extractor, status, records, started_at) VALUES (?, ?, ?, ?, 0, ?)`),
		run.ID.String(), run.FolderID, run.Extractor, run.Status, run.StartedAt)
	if err != nil {
		r.log.Error("extract_run.start.failed", "folder_id", folderID, "extractor", extractor, "err", err)
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrDatabase, err), "start extract_run")
	}
	r.log.Debug("extract_run.started", "run_id", run.ID, "folder_id", folderID, "extractor", extractor)
	return run, nil
}

func (r *extractRunRepo) Finish(ctx context.Context, runID uuid.UUID, outcome RunOutcome) error {
	var msg sql.NullString
	if outcome.ErrorMessage != "" {
		msg = sql.NullString{String: outcome.ErrorMessage, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE extract_run SET status = ?, records = ?, error_message = ?, finished_at = ? WHERE id = ?`),
		string(outcome.Status), outcome.Records, msg, r.now(), runID.String())
	if err != nil {
		r.log.Error("extract_run.finish.failed", "run_id", runID, "err", err)
		return common.WrapError(fmt.Errorf("%w: %v", common.ErrDatabase, err), "finish extract_run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("RUN_NOT_FOUND", "extract_run not found: "+runID.String(), common.ErrNotFound)
	}
	r.log.Debug("extract_run.finished", "run_id", runID, "status", outcome.Status, "records", outcome.Records)
	return nil
}

func (r *extractRunRepo) ListByFolder(ctx context.Context, folderID string) ([]*entity.ExtractRun, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT id, folder_id, extractor, status, records, error_message, started_at, finished_at
		 FROM extract_run WHERE folder_id = ? ORDER BY started_at DESC, extractor ASC`), folderID)
	if err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %v", common.ErrDatabase, err), "list extract_run")
	}
	defer rows.Close()

	var out []*entity.ExtractRun
	for rows.Next() {
		var (
			run      entity.ExtractRun
			id       string
			msg      sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(&id, &run.FolderID, &run.Extractor, &run.Status, &run.Records, &msg, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan extract_run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan extract_run id: %w", err)
		}
		if msg.Valid {
			run.ErrorMessage = &msg.String
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}
