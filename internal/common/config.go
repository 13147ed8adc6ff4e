package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Documents DocumentsConfig
	PDF       PDFConfig
	Vision    VisionConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Watch     WatchConfig
	VocabFile string
	LogLevel  slog.Level
}

// DocumentsConfig holds the raw and processed folder roots
type DocumentsConfig struct {
	RawDir       string
	ProcessedDir string
}

// PDFConfig holds the external PDF tool settings
type PDFConfig struct {
	Pdftotext string
	Pdftoppm  string
	RenderDPI int
}

// VisionConfig holds settings for the drawing table reader
type VisionConfig struct {
	Provider      string // "gemini" or "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
	RatePerSecond float64
}

// DatabaseConfig holds run ledger settings
type DatabaseConfig struct {
	DSN         string
	MaxConns    int
	DialTimeout time.Duration
}

// ServerConfig holds listener settings
type ServerConfig struct {
	HTTPAddr       string
	GRPCAddr       string
	MaxUploadBytes int64
}

// WatchConfig holds folder watch settings
type WatchConfig struct {
	Debounce       time.Duration
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	docs := getEnv("DOCUMENTS_DIR", "./documents")
	return &Config{
		Documents: DocumentsConfig{
			RawDir:       getEnv("RAW_DIR", filepath.Join(docs, "raw")),
			ProcessedDir: getEnv("PROCESSED_DIR", filepath.Join(docs, "processed")),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			RenderDPI: getEnvAsInt("PDF_RENDER_DPI", 500),
		},
		Vision: VisionConfig{
			Provider:      strings.ToLower(getEnv("VISION_PROVIDER", "gemini")),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout:       getEnvAsDuration("VISION_TIMEOUT", 90*time.Second),
			RatePerSecond: getEnvAsFloat64("VISION_RPS", 1),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", "file:"+filepath.Join(docs, "runs.db")),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 4),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:       getEnv("GRPC_ADDR", ""),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) << 20,
		},
		Watch: WatchConfig{
			Debounce:       getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			Workers:        getEnvAsInt("WORKERS", 2),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
		},
		VocabFile: getEnv("VOCAB_FILE", ""),
		LogLevel:  getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Documents.RawDir == "" || c.Documents.ProcessedDir == "" {
		return NewAppError("CONFIG_ERROR", "RAW_DIR and PROCESSED_DIR are required", ErrInvalidInput)
	}
	if c.PDF.RenderDPI <= 0 {
		return NewAppError("CONFIG_ERROR", "PDF_RENDER_DPI must be positive", ErrInvalidInput)
	}
	switch c.Vision.Provider {
	case "gemini", "openai":
	default:
		return NewAppError("CONFIG_ERROR", "VISION_PROVIDER must be gemini or openai", ErrInvalidInput)
	}
	if c.Vision.RatePerSecond <= 0 {
		return NewAppError("CONFIG_ERROR", "VISION_RPS must be positive", ErrInvalidInput)
	}
	return nil
}

// VisionAPIKey returns the key for the selected provider.
func (c *Config) VisionAPIKey() string {
	if c.Vision.Provider == "openai" {
		return c.Vision.OpenAIAPIKey
	}
	return c.Vision.GeminiAPIKey
}
