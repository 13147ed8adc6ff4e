package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
	"github.com/joseph-ayodele/bom-validator/internal/export"
	"github.com/joseph-ayodele/bom-validator/internal/extract"
	"github.com/joseph-ayodele/bom-validator/internal/pipeline"
	"github.com/joseph-ayodele/bom-validator/internal/reconcile"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

func setupTestServer(t *testing.T) (http.Handler, *storage.Layout) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	layout, err := storage.NewLayout(filepath.Join(dir, "raw"), filepath.Join(dir, "processed"), 1<<20, nil)
	require.NoError(t, err)

	vocabs := vocab.Default()
	processor := pipeline.NewProcessor(layout, []extract.Extractor{
		extract.NewBOMExtractor(layout, vocabs.Spreadsheet, nil),
	}, nil, nil)
	api := NewAPI(layout, processor, reconcile.NewService(layout, reconcile.NewEngine(vocabs), nil), export.NewService(nil), nil)

	srv := NewServer(Config{MaxUploadBytes: 1 << 20}, api, nil)
	return srv.Handler(), layout
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Item", "Component", "Description", "Qty", "Unit", "Text 1", "Text 2", "Sort"},
		{"0010", "4000123", "STRAINER MS", 1, "NO", "", "", "PL ACC"},
		{"0020", "4000124", "IMP WEAR RING SS410+COAT", 2, "NO", "", "", "PL BOWL"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthHandler(t *testing.T) {
	h, _ := setupTestServer(t)
	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestExtractCompareAndExport(t *testing.T) {
	h, layout := setupTestServer(t)

	rec, body := do(t, h, uploadRequest(t, "/api/extract/bom/S1", "upload.xlsx", workbook(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "S1_BOM.xlsx", body["file"])
	assert.EqualValues(t, 2, body["rows_extracted"])
	assert.FileExists(t, filepath.Join(layout.ProcessedFolder("S1"), constants.ArtifactBOM))

	rec, body = do(t, h, httptest.NewRequest(http.MethodPost, "/api/compare/S1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "S1", body["session_id"])
	entries := body["comparison"].([]any)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Impeller Wear Ring", first["component"])
	assert.Equal(t, true, first["in_bom"])
	assert.Equal(t, []any{}, first["sap_terms"])

	rec, body = do(t, h, httptest.NewRequest(http.MethodGet, "/api/results/S1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["cs_bom"])
	assert.Len(t, body["bom"], 2)
	assert.NotNil(t, body["comparison"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/api/export/S1?format=pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "S1_comparison.pdf")

	rec, body = do(t, h, httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	folders := body["folders"].([]any)
	require.Len(t, folders, 1)
	assert.Equal(t, true, folders[0].(map[string]any)["processed"])
}

func TestExtractRejectsBadUploads(t *testing.T) {
	h, _ := setupTestServer(t)

	rec, body := do(t, h, uploadRequest(t, "/api/extract/bom/S1", "bom.csv", []byte("a,b")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["detail"], "BOM file must be one of")

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPost, "/api/extract/bom/S1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, uploadRequest(t, "/api/extract/xyz/S1", "a.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, uploadRequest(t, "/api/extract/bom/-bad", "a.xlsx", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorsMapToStatus(t *testing.T) {
	h, layout := setupTestServer(t)

	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/api/process/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Folder not found: nope", body["detail"])

	rec, _ = do(t, h, httptest.NewRequest(http.MethodPost, "/api/compare/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, layout.EnsureFolder("empty"))
	rec, _ = do(t, h, httptest.NewRequest(http.MethodPost, "/api/compare/empty", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/api/export/empty?format=csv", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessAndRuns(t *testing.T) {
	h, layout := setupTestServer(t)
	require.NoError(t, layout.EnsureFolder("F1"))

	rec, body := do(t, h, httptest.NewRequest(http.MethodPost, "/api/process/F1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"bom": float64(0)}, body["result"])

	rec, body = do(t, h, httptest.NewRequest(http.MethodGet, "/api/runs/F1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["runs"])
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := setupTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
