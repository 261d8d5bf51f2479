package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockRoaster/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	// SymbolMap rewrites common index aliases to Yahoo tickers.
	SymbolMap map[string]string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts ClientOptions) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(opts),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				ExchangeName string `json:"exchangeName"`
				GMTOffset    int    `json:"gmtoffset"`
				Timezone     string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			Price *struct {
				LongName  string    `json:"longName"`
				ShortName string    `json:"shortName"`
				MarketCap *yahooRaw `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func (f *YahooFetcher) get(ctx context.Context, u string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("yahoo read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// SearchSymbol queries the Yahoo search endpoint and returns its quotes in order.
func (f *YahooFetcher) SearchSymbol(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=5&newsCount=0", f.BaseURL, url.QueryEscape(query))
	status, body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo search: status %d, body: %s", status, truncate(body))
	}

	var res yahooSearch
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("yahoo search decode: %w", err)
	}
	matches := make([]model.SymbolMatch, 0, len(res.Quotes))
	for _, q := range res.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		matches = append(matches, model.SymbolMatch{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
	}
	return matches, nil
}

// FetchDailyBars fetches the 1d-interval chart for the period's range.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), period)

	status, body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}

	series := &model.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", status, truncate(body))
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		// Unknown and delisted tickers come back as 404 "Not Found".
		if chart.Chart.Error.Code == "Not Found" {
			return series, nil
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", status, truncate(body))
	}
	if len(chart.Chart.Result) == 0 {
		return series, nil
	}

	result := chart.Chart.Result[0]
	series.Currency = result.Meta.Currency
	series.Exchange = result.Meta.ExchangeName
	series.Location = exchangeLocation(result.Meta.Timezone, series.Exchange, result.Meta.GMTOffset)
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return series, nil
	}

	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	volumeSeen := false

	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // skip null bars (holidays etc.)
		}
		o, _ := at(quote.Open, i)
		h, _ := at(quote.High, i)
		l, _ := at(quote.Low, i)
		v, hasVolume := at(quote.Volume, i)
		if hasVolume {
			volumeSeen = true
		}
		bars = append(bars, model.OHLCV{
			Time:          time.Unix(ts, 0).UTC(),
			Open:          o,
			High:          h,
			Low:           l,
			Close:         c,
			Volume:        v,
			VolumeMissing: !hasVolume,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	series.Bars = bars
	series.NoVolume = !volumeSeen
	return series, nil
}

// FetchProfile reads the assetProfile and price modules of quoteSummary.
func (f *YahooFetcher) FetchProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,price",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)))
	status, body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo profile: status %d, body: %s", status, truncate(body))
	}

	var summary yahooSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("yahoo profile decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo profile error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo profile: no result")
	}

	r := summary.QuoteSummary.Result[0]
	profile := &model.CompanyProfile{}
	if r.AssetProfile != nil {
		profile.Sector = r.AssetProfile.Sector
		profile.Industry = r.AssetProfile.Industry
	}
	if r.Price != nil {
		profile.Name = r.Price.LongName
		if profile.Name == "" {
			profile.Name = r.Price.ShortName
		}
		if r.Price.MarketCap != nil && r.Price.MarketCap.Raw != nil && *r.Price.MarketCap.Raw > 0 {
			mc := *r.Price.MarketCap.Raw
			profile.MarketCap = &mc
		}
	}
	return profile, nil
}

func exchangeLocation(tz, exchange string, gmtOffset int) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if gmtOffset != 0 {
		return time.FixedZone(exchange, gmtOffset)
	}
	return nil
}

func truncate(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
