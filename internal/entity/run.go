package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractRun represents one extractor execution for data transfer between layers.
type ExtractRun struct {
	ID           uuid.UUID  `json:"id"`
	FolderID     string     `json:"folder_id"`
	Extractor    string     `json:"extractor"`
	Status       string     `json:"status"`
	Records      int        `json:"records"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
