package constants

// RunStatus is the canonical status for rows in extract_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusOK      RunStatus = "OK"
	RunStatusEmpty   RunStatus = "EMPTY" // extractor ran but found no input or no data
	RunStatusFailed  RunStatus = "FAILED"
)
