package collector

import (
	"context"

	"StockRoaster/internal/model"
)

// SymbolSearcher looks up candidate symbols for a free-text company name.
type SymbolSearcher interface {
	SearchSymbol(ctx context.Context, query string) ([]model.SymbolMatch, error)
}

// HistoryFetcher returns daily bars for a symbol, oldest first. An unknown or
// delisted symbol yields an empty series and a nil error.
type HistoryFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error)
}

// ProfileFetcher returns descriptive company metadata.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
}

// Fetcher is a complete market-data provider.
type Fetcher interface {
	SymbolSearcher
	HistoryFetcher
	ProfileFetcher
	Name() string
}
