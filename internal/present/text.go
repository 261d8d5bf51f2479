package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"StockRoaster/internal/model"
)

// PlainText drops any markup from s and keeps its text content. LLM output
// occasionally arrives with HTML tags or markdown emphasis.
func PlainText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.TrimSpace(s)
			}
			out := strings.NewReplacer("**", "", "__", "", "`", "").Replace(b.String())
			return strings.TrimSpace(out)
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

// Price formats a price with thousands separators and two decimals.
func Price(v float64, currency string) string {
	s := humanize.FormatFloat("#,###.##", v)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// Volume formats an integer volume with separators.
func Volume(v int64) string {
	return humanize.Comma(v)
}

// MarketCap formats a capitalization with an SI suffix, e.g. "2.85 T".
func MarketCap(v float64) string {
	return humanize.SIWithDigits(v, 2, "")
}

// Change formats a signed percentage.
func Change(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// statRows lists label/value pairs for a snapshot in display order, skipping
// absent optional values.
func statRows(s *model.MarketSnapshot) [][2]string {
	rows := [][2]string{
		{"Company", s.CompanyName},
		{"Latest close", Price(s.LatestClose, s.Currency)},
		{"Change (" + s.Period.Label() + ")", Indicator(s) + " " + Change(s.PeriodChangePct)},
		{"Latest date", s.LatestDate},
	}
	if s.PeriodHigh > 0 {
		rows = append(rows, [2]string{"Range", Price(s.PeriodLow, "") + " – " + Price(s.PeriodHigh, "")})
	}
	if s.AverageVolume != nil {
		rows = append(rows, [2]string{"Avg volume", Volume(*s.AverageVolume)})
	}
	if s.RSI14 != nil {
		rows = append(rows, [2]string{"RSI(14)", fmt.Sprintf("%.1f", *s.RSI14)})
	}
	rows = append(rows,
		[2]string{"Sector", s.Sector},
		[2]string{"Industry", s.Industry},
	)
	if s.MarketCap != nil {
		rows = append(rows, [2]string{"Market cap", MarketCap(*s.MarketCap)})
	}
	return rows
}
