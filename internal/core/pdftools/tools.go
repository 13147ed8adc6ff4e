package pdftools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Config names the poppler binaries and the render resolution.
type Config struct {
	Pdftotext string
	Pdftoppm  string
	DPI       int
}

// Tools wraps the PDF operations used by the extractors.
type Tools struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// New returns Tools; a nil runner uses ExecRunner.
func New(cfg Config, runner Runner, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 500
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Tools{cfg: cfg, runner: runner, logger: logger}
}

// DPI returns the render resolution.
func (t *Tools) DPI() int { return t.cfg.DPI }

// Text returns the text of every page, one slice element per page.
// pdftotext is preferred; the in-process reader is used when it fails.
func (t *Tools) Text(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := t.runner.Run(ctx, t.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil {
		// A form-feed \f is used as page separator by default
		pages := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
		return pages, nil
	}
	t.logger.Warn("pdftools.text.pdftotext_failed",
		"path", path, "error", err, "stderr", truncate(string(errb), 512))

	pages, ferr := readText(path)
	if ferr != nil {
		return nil, fmt.Errorf("extract text from %s: %w", filepath.Base(path), errors.Join(err, ferr))
	}
	t.logger.Info("pdftools.text.fallback_ok", "path", path, "pages", len(pages))
	return pages, nil
}

// RenderFirstPage rasterizes page 1 of path into outPNG at the configured DPI.
func (t *Tools) RenderFirstPage(ctx context.Context, path, outPNG string) error {
	if err := os.MkdirAll(filepath.Dir(outPNG), 0o755); err != nil {
		return err
	}
	prefix := strings.TrimSuffix(outPNG, filepath.Ext(outPNG))
	// pdftoppm -r 500 -f 1 -l 1 -singlefile -png <in.pdf> <out>
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm,
		"-r", strconv.Itoa(t.cfg.DPI), "-f", "1", "-l", "1", "-singlefile", "-png", path, prefix)
	if err != nil {
		return fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}
	if _, err := os.Stat(prefix + ".png"); err != nil {
		return fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	if prefix+".png" != outPNG {
		return os.Rename(prefix+".png", outPNG)
	}
	return nil
}

func readText(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(joinRow(row.Content))
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

// joinRow separates the text runs of one row with two spaces so that a
// column break still reads as a wide gap, as it does in pdftotext -layout.
// The reader does not report real spacing, so a key that spans several runs
// is split at its first run.
func joinRow(texts []pdf.Text) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.TrimSpace(t.S); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "  ")
}
