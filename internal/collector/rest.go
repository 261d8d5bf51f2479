package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockRoaster/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted market data REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey string, opts ClientOptions) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(opts),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of a daily bar.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	Volume    *float64 `json:"volume"`
}

type restMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

type restProfile struct {
	Name      string   `json:"name"`
	Sector    string   `json:"sector"`
	Industry  string   `json:"industry"`
	MarketCap *float64 `json:"market_cap"`
}

// errNotFound is returned by do for a 404 so history can treat it as empty.
var errNotFound = errors.New("not found")

func (f *RESTFetcher) do(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("rest fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("rest fetch: status %d, body: %s", resp.StatusCode, truncate(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest decode: %w", err)
	}
	return nil
}

func (f *RESTFetcher) SearchSymbol(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	endpoint := fmt.Sprintf("%s/api/v1/search?q=%s", f.BaseURL, url.QueryEscape(query))
	var found []restMatch
	if err := f.do(ctx, endpoint, &found); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	matches := make([]model.SymbolMatch, 0, len(found))
	for _, m := range found {
		if m.Symbol == "" {
			continue
		}
		matches = append(matches, model.SymbolMatch{Symbol: m.Symbol, Name: m.Name, Exchange: m.Exchange, Type: m.Type})
	}
	return matches, nil
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&range=%s", f.BaseURL, url.QueryEscape(symbol), period)
	series := &model.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}

	var raw []restBar
	if err := f.do(ctx, endpoint, &raw); err != nil {
		if errors.Is(err, errNotFound) {
			return series, nil
		}
		return nil, err
	}

	bars := make([]model.OHLCV, len(raw))
	volumeSeen := false
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:          time.Unix(rb.Timestamp, 0).UTC(),
			Open:          rb.Open,
			High:          rb.High,
			Low:           rb.Low,
			Close:         rb.Close,
			VolumeMissing: rb.Volume == nil,
		}
		if rb.Volume != nil {
			bars[i].Volume = *rb.Volume
			volumeSeen = true
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	series.Bars = bars
	series.NoVolume = !volumeSeen
	return series, nil
}

func (f *RESTFetcher) FetchProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	endpoint := fmt.Sprintf("%s/api/v1/profile?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var p restProfile
	if err := f.do(ctx, endpoint, &p); err != nil {
		return nil, err
	}
	return &model.CompanyProfile{
		Name:      p.Name,
		Sector:    p.Sector,
		Industry:  p.Industry,
		MarketCap: p.MarketCap,
	}, nil
}
