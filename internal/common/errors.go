package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoData       = errors.New("no extracted data")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// FolderNotFound reports a raw folder that does not exist.
func FolderNotFound(folderID string) error {
	return NewAppError("FOLDER_NOT_FOUND", "Folder not found: "+folderID, ErrNotFound)
}

// ProcessedNotFound reports a folder with no processed artifacts.
func ProcessedNotFound(folderID string) error {
	return NewAppError("PROCESSED_NOT_FOUND", "No processed data found for: "+folderID, ErrNotFound)
}

// NoExtractedData reports a folder whose three artifacts are all empty.
func NoExtractedData(folderID string) error {
	return NewAppError("NO_DATA", "No extracted outputs found for "+folderID+". Run extraction first.", ErrNoData)
}

// InvalidArgument reports a rejected request parameter.
func InvalidArgument(message string) error {
	return NewAppError("INVALID_ARGUMENT", message, ErrInvalidInput)
}

// HTTPStatus maps an error chain onto a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Message
	}
	return err.Error()
}
