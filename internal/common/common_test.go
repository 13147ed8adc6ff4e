package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DOCUMENTS_DIR", "/data/docs")
	t.Setenv("PDF_RENDER_DPI", "")
	t.Setenv("VISION_PROVIDER", "")
	t.Setenv("RAW_DIR", "")
	t.Setenv("PROCESSED_DIR", "")

	cfg := LoadConfig()
	assert.Equal(t, "/data/docs/raw", cfg.Documents.RawDir)
	assert.Equal(t, "/data/docs/processed", cfg.Documents.ProcessedDir)
	assert.Equal(t, 500, cfg.PDF.RenderDPI)
	assert.Equal(t, "gemini", cfg.Vision.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Vision.GeminiModel)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("VISION_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VISION_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PDF_RENDER_DPI", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "openai", cfg.Vision.Provider)
	assert.Equal(t, "sk-test", cfg.VisionAPIKey())
	assert.Equal(t, 5*time.Second, cfg.Vision.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 500, cfg.PDF.RenderDPI)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := LoadConfig()
	cfg.Vision.Provider = "claude"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(FolderNotFound("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrap: %w", ProcessedNotFound("x"))))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NoExtractedData("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("bad")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, "No processed data found for: 42", Message(ProcessedNotFound("42")))
}

func TestValidateFolderID(t *testing.T) {
	assert.NoError(t, ValidateFolderID("81351387"))
	assert.NoError(t, ValidateFolderID("pump_A-1.rev2"))

	for _, bad := range []string{"", "../etc", "a/b", ".hidden", `a\b`} {
		err := ValidateFolderID(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithFolderID(WithRequestID(context.Background(), "r1"), "f1")
	assert.Equal(t, "r1", RequestIDFromContext(ctx))
	assert.Equal(t, "f1", FolderIDFromContext(ctx))
	assert.NotNil(t, LoggerFrom(ctx, nil))
}
