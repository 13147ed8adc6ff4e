package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/bom-validator/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string
	Model   string        // default "gemini-2.5-flash-lite"
	BaseURL string        // optional endpoint override
	Timeout time.Duration // http client timeout
}

// Client implements llm.TableReader on the Gemini API.
type Client struct {
	cfg Config
	log *slog.Logger

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-lite"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, log: logger}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) getOrCreate(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	config := &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     c.cfg.APIKey,
		HTTPClient: &http.Client{Timeout: c.cfg.Timeout},
	}
	if c.cfg.BaseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.client = client
	return client, nil
}

// ReadTable sends the image and prompt in one user turn and returns the response text.
func (c *Client) ReadTable(ctx context.Context, req llm.TableRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	client, err := c.getOrCreate(ctx)
	if err != nil {
		return "", err
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	c.log.Info("llm.table.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"image_bytes", len(req.Image),
	)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.Image, mimeType),
		}, genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		c.log.Error("llm.table.generate_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.Error("llm.table.empty_response",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", errors.New("gemini returned no text")
	}
	c.log.Info("llm.table.ok",
		"req_id", rid,
		"content_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
