package reason

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-pro-latest"

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 60 * time.Second

// Gemini is the production reasoning client.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	// APIKey is required; NewGemini fails without it.
	APIKey string
	// Model is the model name (default DefaultModel).
	Model string
	// Timeout bounds each call (default DefaultTimeout).
	Timeout time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// NewGemini creates a Gemini-backed reasoning client. A missing API key is
// a startup error, not a per-turn one.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("reasoning API key is required (set GOOGLE_API_KEY or reasoning.api_key)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Gemini{client: client, model: model, timeout: timeout, logger: logger}, nil
}

// Infer sends a prompt and returns the reply text. The call is bounded by
// the configured timeout and is never retried; a failure here surfaces as a
// turn-level error.
func (g *Gemini) Infer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", &core.ReasoningServiceError{Op: "infer", Err: err}
	}

	text := resp.Text()
	g.logger.Debug("inference completed", "model", g.model, "elapsed", time.Since(start).Round(time.Millisecond), "reply_chars", len(text))
	if text == "" {
		return "", &core.ReasoningServiceError{Op: "infer", Err: fmt.Errorf("empty reply from model %s", g.model)}
	}
	return text, nil
}
