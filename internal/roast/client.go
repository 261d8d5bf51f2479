package roast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"StockRoaster/internal/model"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 25 * time.Second
	MinTimeout     = 20 * time.Second
	MaxTimeout     = 30 * time.Second
)

// systemPersona frames every request; the per-call prompt carries the data.
const systemPersona = `You are a stand-up comedian who roasts publicly traded stocks.
You only joke about the numbers and facts you are given. You never invent figures.
You never give investment advice and never tell anyone to buy, sell or hold.`

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures a GeminiClient. BaseURL and HTTPClient are optional.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient sends roast prompts to the Gemini generateContent endpoint.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient builds a client. The API key is required; a timeout outside
// 20s..30s is clamped into that window.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, model.NewError(model.KindAuth, "gemini API key is required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	timeout := cfg.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < MinTimeout:
		timeout = MinTimeout
	case timeout > MaxTimeout:
		timeout = MaxTimeout
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model, timeout: timeout}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Generate sends one prompt and returns the trimmed text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPersona}}},
	})
	if err != nil {
		slog.WarnContext(ctx, "gemini call failed", "model", c.model, "elapsed", time.Since(start), "error", err)
		return "", classify(err)
	}

	text, ok := firstCandidateText(resp)
	if !ok {
		return "", model.NewError(model.KindTransport, "gemini response carried no generated text", nil)
	}
	slog.DebugContext(ctx, "gemini call done", "model", c.model, "elapsed", time.Since(start), "chars", len(text))
	return text, nil
}

// firstCandidateText reads candidates[0].content.parts[0].text, trimmed.
// Later parts are ignored.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", false
	}
	text := strings.TrimSpace(cand.Content.Parts[0].Text)
	return text, text != ""
}

// classify maps a genai failure onto the error taxonomy.
func classify(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fromStatus(apiErr.Code, err)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		return fromStatus(apiErrPtr.Code, err)
	case errors.Is(err, context.DeadlineExceeded):
		return model.NewError(model.KindTransport, "gemini request timed out", err)
	default:
		return model.NewError(model.KindTransport, "could not reach gemini", err)
	}
}

// fromStatus keeps err as the cause so the upstream body reaches the user.
func fromStatus(code int, err error) error {
	var e *model.Error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e = model.NewError(model.KindAuth, "gemini rejected the API key", err)
		e.Hint = "Check GEMINI_API_KEY"
	case code == http.StatusTooManyRequests || code >= 500:
		e = model.NewError(model.KindRateLimit, "gemini is rate limiting or unavailable", err)
		e.Hint = "Try again in a minute"
	default:
		e = model.NewError(model.KindAPI, "gemini returned an error", err)
	}
	e.Status = code
	return e
}
