package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/bom-validator/internal/common"
)

// WriteJSON writes v as 2-space indented JSON, replacing path atomically.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, append(b, '\n'))
}

// WriteFile replaces path with data via a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	return writeStream(path, bytes.NewReader(data), 0)
}

// ReadJSON decodes path into v. A missing file reports false with no error.
func ReadJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// ReadRawJSON returns the file content for pass-through responses, or nil when absent.
func ReadRawJSON(path string) (json.RawMessage, error) {
	var raw json.RawMessage
	ok, err := ReadJSON(path, &raw)
	if err != nil || !ok {
		return nil, err
	}
	return raw, nil
}

func writeStream(path string, r io.Reader, limit int64) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		return cleanup(fmt.Errorf("write %s: %w", filepath.Base(path), err))
	}
	if limit > 0 && n > limit {
		return cleanup(common.InvalidArgument(fmt.Sprintf("file exceeds maximum size of %d bytes", limit)))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
