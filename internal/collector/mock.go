package collector

import (
	"context"
	"strings"
	"time"

	"StockRoaster/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Every call is counted so tests can assert which endpoints were touched.
type MockFetcher struct {
	Price      float64
	DailyData  []model.OHLCV
	Matches    []model.SymbolMatch
	Profile    *model.CompanyProfile
	NoVolume   bool
	SearchErr  error
	HistoryErr error
	ProfileErr error

	SearchCalls  []string
	HistoryCalls []string
	ProfileCalls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) SearchSymbol(_ context.Context, query string) ([]model.SymbolMatch, error) {
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Matches, nil
}

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	m.HistoryCalls = append(m.HistoryCalls, symbol)
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	series := &model.PriceSeries{Symbol: symbol, Period: period, NoVolume: m.NoVolume, FetchedAt: time.Now()}
	switch {
	case m.DailyData != nil:
		series.Bars = append([]model.OHLCV(nil), m.DailyData...)
	case m.Price > 0:
		series.Bars = generateMockBars(m.Price, tradingDays(period))
	}
	return series, nil
}

func (m *MockFetcher) FetchProfile(_ context.Context, symbol string) (*model.CompanyProfile, error) {
	m.ProfileCalls = append(m.ProfileCalls, symbol)
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.Profile == nil {
		return &model.CompanyProfile{Name: strings.ToUpper(symbol) + " Corp"}, nil
	}
	p := *m.Profile
	return &p, nil
}

func tradingDays(p model.Period) int {
	switch p {
	case model.Period5d:
		return 5
	case model.Period3mo:
		return 63
	case model.Period6mo:
		return 126
	case model.Period1y:
		return 252
	default:
		return 22
	}
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
