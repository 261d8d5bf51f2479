package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockRoaster/internal/model"
)

func linearBars(n int, first, last float64) []model.OHLCV {
	start := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		c := first + (last-first)*float64(i)/float64(n-1)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1_000_000 + i),
		}
	}
	return bars
}

func TestBuild_Success(t *testing.T) {
	m := &MockFetcher{
		DailyData: linearBars(22, 150, 165),
		Profile:   &model.CompanyProfile{Name: "Apple Inc.", Sector: "Technology"},
	}
	b := NewSnapshotBuilder(m, m)

	snap, series, err := b.Build(context.Background(), "AAPL", model.Period1mo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(snap.PeriodChangePct-10.0) > 1e-9 {
		t.Errorf("expected +10.00%%, got %.4f", snap.PeriodChangePct)
	}
	if snap.LatestClose != 165 || snap.FirstClose != 150 {
		t.Errorf("unexpected closes %.2f / %.2f", snap.FirstClose, snap.LatestClose)
	}
	last := series.Bars[len(series.Bars)-1]
	if snap.LatestDate != last.Time.Format("2006-01-02") {
		t.Errorf("latest date %s does not match last bar %s", snap.LatestDate, last.Time)
	}
	if snap.AverageVolume == nil || *snap.AverageVolume != 1_000_011 {
		t.Errorf("unexpected average volume %v", snap.AverageVolume)
	}
	if snap.RSI14 == nil {
		t.Error("expected RSI for 22 bars")
	}
	if snap.CompanyName != "Apple Inc." || snap.Sector != "Technology" || snap.Industry != UnknownField {
		t.Errorf("unexpected company fields %q %q %q", snap.CompanyName, snap.Sector, snap.Industry)
	}
	if !snap.Up() {
		t.Error("expected up indicator for positive change")
	}
}

func TestBuild_ProfileFailureDegrades(t *testing.T) {
	m := &MockFetcher{DailyData: linearBars(5, 10, 9), ProfileErr: errors.New("crumb rejected")}
	snap, _, err := NewSnapshotBuilder(m, m).Build(context.Background(), "TCS.NS", model.Period5d)
	if err != nil {
		t.Fatalf("profile failure must not fail the snapshot: %v", err)
	}
	if snap.CompanyName != "TCS.NS" || snap.Sector != UnknownField || snap.Industry != UnknownField || snap.MarketCap != nil {
		t.Errorf("expected placeholder company fields, got %+v", snap)
	}
	if snap.Up() {
		t.Error("expected down indicator for negative change")
	}
	if snap.RSI14 != nil {
		t.Error("expected no RSI for 5 bars")
	}
}

func TestBuild_EmptySeriesIsDataUnavailable(t *testing.T) {
	m := &MockFetcher{DailyData: []model.OHLCV{}}
	_, _, err := NewSnapshotBuilder(m, m).Build(context.Background(), "ZZZZINVALID", model.Period1mo)
	if kind := model.KindOf(err); kind != model.KindDataUnavailable {
		t.Fatalf("expected DataUnavailable, got %v", err)
	}
	var e *model.Error
	if errors.As(err, &e) && e.Hint == "" {
		t.Error("expected a corrective hint")
	}
	if len(m.ProfileCalls) != 0 {
		t.Error("profile must not be fetched when history is empty")
	}
}

func TestBuild_ZeroFirstCloseIsDataUnavailable(t *testing.T) {
	bars := linearBars(3, 0, 5)
	m := &MockFetcher{DailyData: bars}
	_, _, err := NewSnapshotBuilder(m, m).Build(context.Background(), "PENNY", model.Period5d)
	if kind := model.KindOf(err); kind != model.KindDataUnavailable {
		t.Fatalf("expected DataUnavailable, got %v", err)
	}
}

func TestBuild_TransportFailureIsFetchError(t *testing.T) {
	m := &MockFetcher{HistoryErr: errors.New("connection reset")}
	_, _, err := NewSnapshotBuilder(m, m).Build(context.Background(), "AAPL", model.Period1mo)
	if kind := model.KindOf(err); kind != model.KindFetch {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestBuild_NoVolume(t *testing.T) {
	m := &MockFetcher{DailyData: linearBars(3, 1, 2), NoVolume: true}
	snap, _, err := NewSnapshotBuilder(m, m).Build(context.Background(), "FX", model.Period5d)
	if err != nil {
		t.Fatal(err)
	}
	if snap.AverageVolume != nil {
		t.Errorf("expected nil average volume, got %d", *snap.AverageVolume)
	}
}

func TestBuild_RefetchesEveryCall(t *testing.T) {
	m := &MockFetcher{Price: 100}
	b := NewSnapshotBuilder(m, m)
	for i := 0; i < 2; i++ {
		if _, _, err := b.Build(context.Background(), "AAPL", model.Period1mo); err != nil {
			t.Fatal(err)
		}
	}
	if len(m.HistoryCalls) != 2 {
		t.Errorf("expected 2 history fetches, got %d", len(m.HistoryCalls))
	}
}

func TestSummarize_LatestDateUsesExchangeLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	series := &model.PriceSeries{
		Symbol:   "TCS.NS",
		Period:   model.Period5d,
		Location: loc,
		Bars: []model.OHLCV{
			{Time: time.Date(2025, 6, 2, 3, 45, 0, 0, time.UTC), Close: 10},
			{Time: time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC), Close: 11},
		},
	}
	snap, err := Summarize(series)
	if err != nil {
		t.Fatal(err)
	}
	if snap.LatestDate != "2025-06-03" {
		t.Errorf("expected exchange-local date 2025-06-03, got %s", snap.LatestDate)
	}
}
