// Package ingest watches the raw documents root and reports folders whose
// source documents changed.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/bom-validator/constants"
)

type WatchConfig struct {
	Root        string        // raw documents root; each direct child is a folder
	InitialScan bool          // emit every existing folder holding a source document
	Debounce    time.Duration // coalesce bursts of writes per folder
	Logger      *slog.Logger
}

// StartWatcher emits folder ids under cfg.Root when one of their source
// documents is created, written or renamed. Both channels close when ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("no root provided")
	}
	root := filepath.Clean(cfg.Root)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watcher.create_failed", "error", err)
		return nil, nil, err
	}
	if err := w.Add(root); err != nil {
		_ = w.Close()
		return nil, nil, err
	}

	evCh := make(chan string, 64)
	errCh := make(chan error, 1)

	var initial []string
	entries, err := os.ReadDir(root)
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := w.Add(dir); err != nil {
			logger.Warn("ingest.watcher.add_failed", "path", dir, "error", err)
			continue
		}
		if cfg.InitialScan && hasSourceDocument(dir) {
			initial = append(initial, e.Name())
		}
	}
	logger.Info("ingest.watcher.started", "root", root, "folders", len(entries), "debounce", cfg.Debounce)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watcher.close_failed", "error", err)
			}
		}()

		emit := func(id string) {
			select {
			case evCh <- id:
			case <-ctx.Done():
			}
		}
		for _, id := range initial {
			emit(id)
		}

		var mu sync.Mutex
		timers := map[string]*time.Timer{}
		defer func() {
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
		}()
		fire := make(chan string, 64)
		schedule := func(id string) {
			if cfg.Debounce <= 0 {
				emit(id)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if t, ok := timers[id]; ok {
				t.Reset(cfg.Debounce)
				return
			}
			timers[id] = time.AfterFunc(cfg.Debounce, func() {
				mu.Lock()
				delete(timers, id)
				mu.Unlock()
				select {
				case fire <- id:
				case <-ctx.Done():
				}
			})
		}

		for {
			select {
			case <-ctx.Done():
				return
			case id := <-fire:
				emit(id)
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				id, isFolder := folderOf(root, e.Name)
				if id == "" {
					continue
				}
				if isFolder {
					if e.Op&fsnotify.Create != 0 {
						if err := w.Add(e.Name); err != nil {
							logger.Debug("ingest.watcher.add_failed", "path", e.Name, "error", err)
						}
					}
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && IsSourceDocument(filepath.Base(e.Name)) {
					logger.Debug("ingest.watcher.event", "folder_id", id, "path", e.Name, "op", e.Op.String())
					schedule(id)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// folderOf maps a path under root to its folder id. isFolder is true when
// path is the folder directory itself.
func folderOf(root, path string) (id string, isFolder bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) == 1 {
		// loose files in the root belong to no folder
		if st, err := os.Stat(path); err != nil || !st.IsDir() {
			return "", false
		}
		return parts[0], true
	}
	return parts[0], false
}

// IsSourceDocument reports whether name matches any source file pattern.
func IsSourceDocument(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, src := range constants.AllSources {
		for _, pattern := range constants.SourceGlobs[src] {
			if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
		}
	}
	return false
}

func hasSourceDocument(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && IsSourceDocument(e.Name()) {
			return true
		}
	}
	return false
}
