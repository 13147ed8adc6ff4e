package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/bom-validator/internal/common"
	"github.com/joseph-ayodele/bom-validator/internal/core/pdftools"
	"github.com/joseph-ayodele/bom-validator/internal/core/vocab"
	"github.com/joseph-ayodele/bom-validator/internal/export"
	"github.com/joseph-ayodele/bom-validator/internal/extract"
	"github.com/joseph-ayodele/bom-validator/internal/llm"
	"github.com/joseph-ayodele/bom-validator/internal/llm/gemini"
	"github.com/joseph-ayodele/bom-validator/internal/llm/openai"
	"github.com/joseph-ayodele/bom-validator/internal/pipeline"
	"github.com/joseph-ayodele/bom-validator/internal/reconcile"
	"github.com/joseph-ayodele/bom-validator/internal/repository"
	"github.com/joseph-ayodele/bom-validator/internal/storage"
)

// app holds the wired services shared by every command.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	layout    *storage.Layout
	processor *pipeline.Processor
	compare   *reconcile.Service
	exporter  *export.Service
	runs      repository.ExtractRunRepository
	db        *repository.DB
}

func loadConfig(logLevel string) (*common.Config, *slog.Logger, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	vocabs, err := vocab.Load(cfg.VocabFile)
	if err != nil {
		return nil, fmt.Errorf("load vocabularies: %w", err)
	}

	layout, err := storage.NewLayout(cfg.Documents.RawDir, cfg.Documents.ProcessedDir, cfg.Server.MaxUploadBytes, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, layout: layout}

	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    int32(cfg.Database.MaxConns),
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Warn("db.unavailable", "error", err, "dialect", string(repository.DialectFor(cfg.Database.DSN)))
	} else {
		a.db = db
		a.runs = repository.NewExtractRunRepository(db, logger)
	}

	pdf := pdftools.New(pdftools.Config{
		Pdftotext: cfg.PDF.Pdftotext,
		Pdftoppm:  cfg.PDF.Pdftoppm,
		DPI:       cfg.PDF.RenderDPI,
	}, nil, logger)

	reader, err := newTableReader(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.processor = pipeline.NewProcessor(layout, []extract.Extractor{
		extract.NewCSExtractor(layout, pdf, reader, logger),
		extract.NewBOMExtractor(layout, vocabs.Spreadsheet, logger),
		extract.NewSAPExtractor(layout, pdf, vocabs.Specification, logger),
	}, a.runs, logger)
	a.compare = reconcile.NewService(layout, reconcile.NewEngine(vocabs), logger)
	a.exporter = export.NewService(logger)
	return a, nil
}

// newTableReader picks the vision provider. Without an API key drawings are
// rendered and cropped but never read.
func newTableReader(cfg *common.Config, logger *slog.Logger) (llm.TableReader, error) {
	if cfg.VisionAPIKey() == "" {
		logger.Warn("vision.disabled", "provider", cfg.Vision.Provider, "reason", "no api key")
		return nil, nil
	}

	var reader llm.TableReader
	switch cfg.Vision.Provider {
	case "openai":
		reader = openai.NewClient(openai.Config{
			APIKey:  cfg.Vision.OpenAIAPIKey,
			BaseURL: cfg.Vision.OpenAIBaseURL,
			Model:   cfg.Vision.OpenAIModel,
			Timeout: cfg.Vision.Timeout,
		}, logger)
	default:
		client, err := gemini.NewClient(gemini.Config{
			APIKey:  cfg.Vision.GeminiAPIKey,
			Model:   cfg.Vision.GeminiModel,
			Timeout: cfg.Vision.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		reader = client
	}
	logger.Info("vision.enabled", "provider", reader.Name(), "rps", cfg.Vision.RatePerSecond)
	return llm.RateLimited(reader, cfg.Vision.RatePerSecond), nil
}

func (a *app) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("db.close_failed", "error", err)
	}
}
