package model

import (
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// VolumeMissing marks a bar whose provider reported no volume.
	VolumeMissing bool
}

// Period is the trailing window of daily history to request.
type Period string

const (
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
)

// Periods lists the accepted lookback periods in display order.
var Periods = []Period{Period5d, Period1mo, Period3mo, Period6mo, Period1y}

// ParsePeriod accepts a period name in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Label is the human form of the period, e.g. "1 month".
func (p Period) Label() string {
	switch p {
	case Period5d:
		return "5 days"
	case Period1mo:
		return "1 month"
	case Period3mo:
		return "3 months"
	case Period6mo:
		return "6 months"
	case Period1y:
		return "1 year"
	}
	return string(p)
}

// PriceSeries holds the daily bars for one symbol, oldest first.
type PriceSeries struct {
	Symbol   string
	Period   Period
	Bars     []OHLCV
	Currency string
	Exchange string
	// NoVolume is set when the provider omitted the volume column.
	NoVolume  bool
	Location  *time.Location
	FetchedAt time.Time
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// SymbolMatch is one candidate returned by a symbol search.
type SymbolMatch struct {
	Symbol   string
	Name     string
	Exchange string
	Type     string
}

// CompanyProfile is optional descriptive metadata. Empty strings and a nil
// MarketCap mean unknown.
type CompanyProfile struct {
	Name      string
	Sector    string
	Industry  string
	MarketCap *float64
}

// MarketSnapshot is the statistics block derived from a single PriceSeries.
type MarketSnapshot struct {
	Symbol          string   `json:"symbol"`
	Period          Period   `json:"period"`
	LatestClose     float64  `json:"latest_close"`
	FirstClose      float64  `json:"first_close"`
	PeriodChangePct float64  `json:"period_change_pct"`
	AverageVolume   *int64   `json:"average_volume,omitempty"`
	LatestDate      string   `json:"latest_date"`
	PeriodHigh      float64  `json:"period_high"`
	PeriodLow       float64  `json:"period_low"`
	RSI14           *float64 `json:"rsi14,omitempty"`
	Bars            int      `json:"bars"`
	Currency        string   `json:"currency,omitempty"`
	Exchange        string   `json:"exchange,omitempty"`

	CompanyName string   `json:"company_name"`
	Sector      string   `json:"sector"`
	Industry    string   `json:"industry"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
}

// Up reports whether the period change renders as an "up" indicator.
func (s *MarketSnapshot) Up() bool {
	return s.PeriodChangePct >= 0
}
