package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyFolderID  contextKey = "folder_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithFolderID adds a folder ID to the context
func WithFolderID(ctx context.Context, folderID string) context.Context {
	return context.WithValue(ctx, ContextKeyFolderID, folderID)
}

// FolderIDFromContext extracts the folder ID from context
func FolderIDFromContext(ctx context.Context) string {
	if folderID, ok := ctx.Value(ContextKeyFolderID).(string); ok {
		return folderID
	}
	return ""
}

// LoggerFrom decorates logger with the request and folder IDs found in ctx.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With("req_id", id)
	}
	if id := FolderIDFromContext(ctx); id != "" {
		logger = logger.With("folder_id", id)
	}
	return logger
}
