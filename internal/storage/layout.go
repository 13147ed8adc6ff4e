package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/bom-validator/constants"
	"github.com/joseph-ayodele/bom-validator/internal/common"
)

// Layout resolves folder ids to their raw and processed directories.
type Layout struct {
	rawDir         string
	processedDir   string
	maxUploadBytes int64
	logger         *slog.Logger
}

// FolderInfo summarizes one raw folder.
type FolderInfo struct {
	FolderID  string   `json:"folder_id"`
	Processed bool     `json:"processed"`
	Files     []string `json:"files"`
}

// NewLayout creates both roots if needed.
func NewLayout(rawDir, processedDir string, maxUploadBytes int64, logger *slog.Logger) (*Layout, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{rawDir, processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return &Layout{rawDir: rawDir, processedDir: processedDir, maxUploadBytes: maxUploadBytes, logger: logger}, nil
}

func (l *Layout) RawDir() string       { return l.rawDir }
func (l *Layout) ProcessedDir() string { return l.processedDir }

// RawFolder returns the raw directory of a folder id.
func (l *Layout) RawFolder(id string) string { return filepath.Join(l.rawDir, id) }

// ProcessedFolder returns the processed directory of a folder id.
func (l *Layout) ProcessedFolder(id string) string { return filepath.Join(l.processedDir, id) }

// RawExists reports whether the raw folder exists.
func (l *Layout) RawExists(id string) bool { return isDir(l.RawFolder(id)) }

// ProcessedExists reports whether the processed folder exists.
func (l *Layout) ProcessedExists(id string) bool { return isDir(l.ProcessedFolder(id)) }

// EnsureFolder creates the raw and processed directories of id.
func (l *Layout) EnsureFolder(id string) error {
	for _, dir := range []string{l.RawFolder(id), l.ProcessedFolder(id)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// ListFolderIDs returns the raw folder ids in name order.
func (l *Layout) ListFolderIDs() ([]string, error) {
	entries, err := os.ReadDir(l.rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// ListFolders describes every raw folder and its JSON artifacts.
func (l *Layout) ListFolders() ([]FolderInfo, error) {
	ids, err := l.ListFolderIDs()
	if err != nil {
		return nil, err
	}
	out := make([]FolderInfo, 0, len(ids))
	for _, id := range ids {
		info := FolderInfo{FolderID: id, Files: []string{}}
		if l.ProcessedExists(id) {
			info.Processed = true
			matches, _ := filepath.Glob(filepath.Join(l.ProcessedFolder(id), "*.json"))
			for _, m := range matches {
				info.Files = append(info.Files, filepath.Base(m))
			}
			sort.Strings(info.Files)
		}
		out = append(out, info)
	}
	return out, nil
}

// Locate finds the input file of src in dir. The first pattern with a hit wins;
// within a pattern the lexically first name wins and extra candidates are logged.
func (l *Layout) Locate(dir string, src constants.Source) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, pattern := range constants.SourceGlobs[src] {
		var hits []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(pattern, e.Name()); ok {
				hits = append(hits, e.Name())
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.Strings(hits)
		if len(hits) > 1 {
			l.logger.Warn("storage.locate.ambiguous",
				"dir", dir, "source", string(src), "chosen", hits[0], "candidates", hits)
		}
		return filepath.Join(dir, hits[0]), true, nil
	}
	return "", false, nil
}

// SaveUpload streams an uploaded source document into the raw folder under its canonical name.
func (l *Layout) SaveUpload(id string, src constants.Source, filename string, r io.Reader) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.UploadExtensions[src][ext]; !ok {
		allowed := make([]string, 0, len(constants.UploadExtensions[src]))
		for e := range constants.UploadExtensions[src] {
			allowed = append(allowed, "."+e)
		}
		sort.Strings(allowed)
		return "", common.InvalidArgument(fmt.Sprintf("%s file must be one of %s", strings.ToUpper(string(src)), strings.Join(allowed, ", ")))
	}
	if err := l.EnsureFolder(id); err != nil {
		return "", err
	}
	path := filepath.Join(l.RawFolder(id), constants.UploadName(id, src, ext))
	if err := writeStream(path, r, l.maxUploadBytes); err != nil {
		return "", err
	}
	l.logger.Info("storage.upload.saved", "folder_id", id, "source", string(src), "path", path)
	return path, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
