package roast

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockRoaster/internal/model"
)

func ptr[T any](v T) *T { return &v }

func sampleSnapshot() *model.MarketSnapshot {
	return &model.MarketSnapshot{
		Symbol:          "AAPL",
		Period:          model.Period1mo,
		LatestClose:     165,
		FirstClose:      150,
		PeriodChangePct: 10,
		AverageVolume:   ptr(int64(1_000_011)),
		LatestDate:      "2025-06-03",
		PeriodHigh:      166,
		PeriodLow:       149,
		Bars:            22,
		Currency:        "USD",
		CompanyName:     "Apple Inc.",
		Sector:          "Technology",
		Industry:        "Unknown",
	}
}

func TestBuildPrompt(t *testing.T) {
	req := model.RoastRequest{Snapshot: sampleSnapshot(), Tone: model.ToneSavage, Lines: 4}
	p := BuildPrompt(req)

	for _, want := range []string{
		"Symbol: AAPL\n",
		"Company: Apple Inc.\n",
		"Sector: Technology\n",
		"Latest close: 165.00 USD\n",
		"Period change: +10.00%\n",
		"Average volume: 1000011\n",
		"Latest date: 2025-06-03\n",
		"Write exactly 4 one-line roasts",
		StyleNote(model.ToneSavage),
		"financial advice",
		"No preamble",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	for _, absent := range []string{"Industry:", "Market cap:", "RSI(14):", "Intensity:"} {
		if strings.Contains(p, absent) {
			t.Errorf("prompt should omit %q:\n%s", absent, p)
		}
	}
	if strings.Index(p, "Symbol:") > strings.Index(p, "Latest close:") {
		t.Error("expected fixed field order")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := model.RoastRequest{Snapshot: sampleSnapshot(), Tone: model.ToneDry, Lines: 1, Intensity: 7}
	a, b := BuildPrompt(req), BuildPrompt(req)
	if a != b {
		t.Error("expected identical prompts for identical input")
	}
	if !strings.Contains(a, "Write exactly 1 one-line roast of") || !strings.Contains(a, "Intensity: 7/10") {
		t.Errorf("unexpected prompt:\n%s", a)
	}
}

func TestBuildPrompt_NegativeChange(t *testing.T) {
	s := sampleSnapshot()
	s.PeriodChangePct = -3.456
	p := BuildPrompt(model.RoastRequest{Snapshot: s, Tone: model.TonePlayful, Lines: 3})
	if !strings.Contains(p, "Period change: -3.46%") {
		t.Errorf("expected signed change, got:\n%s", p)
	}
}

func TestStyleNote_UnknownTonePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown tone")
		}
	}()
	StyleNote(model.Tone("Gentle"))
}

// geminiServer answers generateContent with the given status and body and
// records the last request payload.
func geminiServer(t *testing.T, status int, body string, got *map[string]any) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGenerate_Success(t *testing.T) {
	var payload map[string]any
	c := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"  1. Up 10%, still not your ex.\n2. Line two  \n"}]}}]}`,
		&payload)

	text, err := c.Generate(context.Background(), "roast AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasPrefix(text, " ") || strings.HasSuffix(text, "\n") {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if _, ok := payload["systemInstruction"]; !ok {
		t.Errorf("expected system persona in request, got %v", payload)
	}
}

func TestGenerate_FirstPartOnly(t *testing.T) {
	c := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":" Roast A\nRoast B "},{"text":"trailing part"}]}}]}`,
		nil)

	text, err := c.Generate(context.Background(), "roast AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Roast A\nRoast B" {
		t.Errorf("expected first part only, got %q", text)
	}
}

func TestGenerate_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   model.ErrorKind
	}{
		{"unauthorized", 401, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`, model.KindAuth},
		{"forbidden", 403, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, model.KindAuth},
		{"rate limited", 429, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, model.KindRateLimit},
		{"server error", 503, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`, model.KindRateLimit},
		{"bad request", 400, `{"error":{"code":400,"message":"bad model","status":"INVALID_ARGUMENT"}}`, model.KindAPI},
		{"no candidates", 200, `{"candidates":[]}`, model.KindTransport},
		{"no parts", 200, `{"candidates":[{"content":{"role":"model","parts":[]}}]}`, model.KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := geminiServer(t, tt.status, tt.body, nil)
			_, err := c.Generate(context.Background(), "roast")
			if kind := model.KindOf(err); kind != tt.kind {
				t.Errorf("expected %s, got %s (%v)", tt.kind, kind, err)
			}
		})
	}
}

func TestGenerate_ApiErrorCarriesStatusAndBody(t *testing.T) {
	c := geminiServer(t, 400, `{"error":{"code":400,"message":"model not found","status":"INVALID_ARGUMENT"}}`, nil)
	_, err := c.Generate(context.Background(), "roast")
	e, ok := err.(*model.Error)
	if !ok {
		t.Fatalf("expected *model.Error, got %T", err)
	}
	if e.Status != 400 || !strings.Contains(e.UserMessage(), "model not found") {
		t.Errorf("expected status and body in message, got %q", e.UserMessage())
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Generate(context.Background(), "roast")
	if kind := model.KindOf(err); kind != model.KindTransport {
		t.Errorf("expected TransportError, got %v", err)
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), GeminiConfig{}); model.KindOf(err) != model.KindAuth {
		t.Errorf("expected AuthError for missing key, got %v", err)
	}
}

func TestNewGeminiClient_ClampsTimeout(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "k", Timeout: 90e9})
	if err != nil {
		t.Fatal(err)
	}
	if c.timeout != MaxTimeout {
		t.Errorf("expected timeout clamped to %s, got %s", MaxTimeout, c.timeout)
	}
}
