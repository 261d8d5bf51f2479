package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"StockRoaster/internal/calculator"
	"StockRoaster/internal/model"
)

const (
	DefaultHistoryTimeout = 15 * time.Second
	DefaultProfileTimeout = 10 * time.Second

	// UnknownField is the placeholder for missing sector or industry.
	UnknownField = "Unknown"

	suffixHint = "Try adding an exchange suffix such as .NS, .L or .TO"
)

// SnapshotBuilder fetches a price series and derives the snapshot statistics.
type SnapshotBuilder struct {
	History        HistoryFetcher
	Profiles       ProfileFetcher
	HistoryTimeout time.Duration
	ProfileTimeout time.Duration
}

// NewSnapshotBuilder creates a builder with default timeouts.
func NewSnapshotBuilder(history HistoryFetcher, profiles ProfileFetcher) *SnapshotBuilder {
	return &SnapshotBuilder{
		History:        history,
		Profiles:       profiles,
		HistoryTimeout: DefaultHistoryTimeout,
		ProfileTimeout: DefaultProfileTimeout,
	}
}

// Build fetches fresh history for symbol and computes the snapshot. The
// returned series is the one every statistic was derived from.
func (b *SnapshotBuilder) Build(ctx context.Context, symbol string, period model.Period) (*model.MarketSnapshot, *model.PriceSeries, error) {
	series, err := b.fetchHistory(ctx, symbol, period)
	if err != nil {
		return nil, nil, err
	}

	snap, err := Summarize(series)
	if err != nil {
		return nil, nil, err
	}

	b.applyProfile(ctx, snap)
	return snap, series, nil
}

func (b *SnapshotBuilder) fetchHistory(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	timeout := b.HistoryTimeout
	if timeout <= 0 {
		timeout = DefaultHistoryTimeout
	}
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	series, err := b.History.FetchDailyBars(hctx, symbol, period)
	if err != nil {
		return nil, &model.Error{
			Kind:    model.KindFetch,
			Message: fmt.Sprintf("failed to fetch price history for %s", symbol),
			Err:     err,
		}
	}
	if series == nil || len(series.Bars) == 0 {
		return nil, &model.Error{
			Kind:    model.KindDataUnavailable,
			Message: fmt.Sprintf("no price data for %s over %s", symbol, period.Label()),
			Hint:    suffixHint,
		}
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	if series.Period == "" {
		series.Period = period
	}
	return series, nil
}

// Summarize derives the snapshot statistics from one series. Company fields
// start at their placeholder values.
func Summarize(series *model.PriceSeries) (*model.MarketSnapshot, error) {
	bars := series.Bars
	pct, first, last, err := calculator.PeriodChangePct(bars)
	if err != nil {
		if errors.Is(err, calculator.ErrZeroBase) {
			return nil, &model.Error{
				Kind:    model.KindDataUnavailable,
				Message: fmt.Sprintf("price data for %s starts at zero, percentage change is undefined", series.Symbol),
			}
		}
		return nil, &model.Error{
			Kind:    model.KindDataUnavailable,
			Message: fmt.Sprintf("no price data for %s", series.Symbol),
			Hint:    suffixHint,
		}
	}

	loc := series.Location
	if loc == nil {
		loc = time.UTC
	}

	snap := &model.MarketSnapshot{
		Symbol:          series.Symbol,
		Period:          series.Period,
		LatestClose:     last,
		FirstClose:      first,
		PeriodChangePct: pct,
		LatestDate:      bars[len(bars)-1].Time.In(loc).Format("2006-01-02"),
		Bars:            len(bars),
		Currency:        series.Currency,
		Exchange:        series.Exchange,
		CompanyName:     series.Symbol,
		Sector:          UnknownField,
		Industry:        UnknownField,
	}

	if !series.NoVolume {
		if avg, err := calculator.AverageVolume(bars); err == nil {
			snap.AverageVolume = &avg
		}
	}
	if high, low, err := calculator.PeriodRange(bars); err == nil {
		snap.PeriodHigh = high
		snap.PeriodLow = low
	}
	if rsi, err := calculator.CalculateRSI(bars, calculator.RSIPeriod); err == nil {
		snap.RSI14 = &rsi
	}
	return snap, nil
}

// applyProfile overlays company metadata. Any failure keeps the placeholders.
func (b *SnapshotBuilder) applyProfile(ctx context.Context, snap *model.MarketSnapshot) {
	if b.Profiles == nil {
		return
	}
	timeout := b.ProfileTimeout
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	profile, err := b.Profiles.FetchProfile(pctx, snap.Symbol)
	if err != nil || profile == nil {
		slog.WarnContext(ctx, "company profile unavailable, using defaults", "symbol", snap.Symbol, "error", err)
		return
	}
	if profile.Name != "" {
		snap.CompanyName = profile.Name
	}
	if profile.Sector != "" {
		snap.Sector = profile.Sector
	}
	if profile.Industry != "" {
		snap.Industry = profile.Industry
	}
	if profile.MarketCap != nil && *profile.MarketCap > 0 {
		mc := *profile.MarketCap
		snap.MarketCap = &mc
	}
}
