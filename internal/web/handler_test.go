package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"StockRoaster/internal/collector"
	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
)

type fakeLLM struct {
	text   string
	err    error
	prompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func newTestRouter(m *collector.MockFetcher, llm *fakeLLM) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := pipeline.New(collector.NewResolver(m), collector.NewSnapshotBuilder(m, m), llm, pipeline.DefaultDefaults)
	return NewRouter(NewRoastHandler(svc), nil)
}

func TestIndex_RendersForm(t *testing.T) {
	r := newTestRouter(&collector.MockFetcher{}, &fakeLLM{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, `<form method="post" action="/roast">`))
	assert.Equal(t, true, strings.Contains(body, `<option value="1mo" selected>1 month</option>`))
	assert.Equal(t, false, strings.Contains(body, `id="error"`))
	assert.Equal(t, true, strings.Contains(body, `<input name="intensity" type="number" min="1" max="10">`))
}

func TestRoastForm_Success(t *testing.T) {
	llm := &fakeLLM{text: "Roast A\nRoast B\nRoast C"}
	r := newTestRouter(&collector.MockFetcher{Price: 150}, llm)
	form := url.Values{"q": {"AAPL"}, "period": {"1mo"}, "tone": {"Savage"}, "intensity": {"7"}}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/roast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, "<svg"))
	assert.Equal(t, true, strings.Contains(body, "<li>Roast B</li>"))
	assert.Equal(t, false, strings.Contains(body, `id="error"`))
	assert.Equal(t, true, strings.Contains(body, `name="intensity" type="number" min="1" max="10" value="7"`))
	assert.Equal(t, true, strings.Contains(llm.prompt, "Intensity: 7/10"))
}

func TestRoastForm_FailureShowsOnlyError(t *testing.T) {
	r := newTestRouter(&collector.MockFetcher{DailyData: []model.OHLCV{}}, &fakeLLM{text: "never"})
	form := url.Values{"q": {"ZZZZINVALID"}}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/roast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, `id="error"`))
	assert.Equal(t, false, strings.Contains(body, "<svg"))
	assert.Equal(t, false, strings.Contains(body, `id="stats"`))
}

func TestRoastForm_EmptyQuery(t *testing.T) {
	r := newTestRouter(&collector.MockFetcher{}, &fakeLLM{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/roast", strings.NewReader("q=+++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "enter a ticker or company name"))
}

func TestRoastJSON_Success(t *testing.T) {
	m := &collector.MockFetcher{Price: 100, Matches: []model.SymbolMatch{{Symbol: "AAPL"}}}
	r := newTestRouter(m, &fakeLLM{text: "  Roast A\nRoast B  "})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/roast?q=Apple&period=5d&tone=dry", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp roastResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, model.Period5d, resp.Snapshot.Period)
	assert.Equal(t, 5, len(resp.Closes))
	assert.Equal(t, []string{"Roast A", "Roast B"}, resp.RoastLines)
	assert.Equal(t, pipeline.StateSuccess, resp.Trace[len(resp.Trace)-1])
}

func TestRoastJSON_ErrorStatuses(t *testing.T) {
	rateLimited := model.NewError(model.KindRateLimit, "gemini is rate limiting or unavailable", nil)
	rateLimited.Status = 429
	tests := []struct {
		name   string
		query  string
		m      *collector.MockFetcher
		llm    *fakeLLM
		status int
		kind   model.ErrorKind
	}{
		{"empty query", "", &collector.MockFetcher{}, &fakeLLM{}, http.StatusBadRequest, model.KindInputInvalid},
		{"bad period", "AAPL&period=7y", &collector.MockFetcher{}, &fakeLLM{}, http.StatusBadRequest, model.KindInputInvalid},
		{"no match", "Nonexistent%20Widgets", &collector.MockFetcher{}, &fakeLLM{}, http.StatusNotFound, model.KindSymbolNotFound},
		{"empty history", "ZZZZINVALID", &collector.MockFetcher{DailyData: []model.OHLCV{}}, &fakeLLM{}, http.StatusNotFound, model.KindDataUnavailable},
		{"rate limited", "AAPL", &collector.MockFetcher{Price: 1}, &fakeLLM{err: rateLimited}, http.StatusServiceUnavailable, model.KindRateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.m, tt.llm)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/api/roast?q="+tt.query, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var resp roastResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			assert.NotEqual(t, nil, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.Equal(t, (*model.MarketSnapshot)(nil), resp.Snapshot)
		})
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&collector.MockFetcher{}, &fakeLLM{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"status":"ok"`))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, StatusFor(model.KindAuth))
	assert.Equal(t, http.StatusBadGateway, StatusFor(model.KindTransport))
	assert.Equal(t, http.StatusBadGateway, StatusFor(model.KindFetch))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(model.KindRateLimit))
}
