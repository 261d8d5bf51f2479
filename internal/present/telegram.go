package present

import (
	"fmt"
	"html"
	"math"
	"strings"

	"StockRoaster/internal/model"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// TelegramPresenter renders messages for Telegram's HTML parse mode.
type TelegramPresenter struct {
	// SparkWidth caps the sparkline length; long series are sampled down.
	SparkWidth int
}

// RenderChart draws a one-line sparkline of closes.
func (p TelegramPresenter) RenderChart(series *model.PriceSeries) string {
	if series == nil || len(series.Bars) == 0 {
		return ""
	}
	width := p.SparkWidth
	if width <= 0 {
		width = 30
	}
	return fmt.Sprintf("<code>%s</code>", Sparkline(series.Closes(), width))
}

// Sparkline maps values onto eight block heights, sampling to at most width points.
func Sparkline(values []float64, width int) string {
	width = max(width, 2)
	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[i*(len(values)-1)/(width-1)]
		}
		values = sampled
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func (TelegramPresenter) RenderStats(snap *model.MarketSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>%s</b>", html.EscapeString(snap.Symbol))
	if snap.CompanyName != "" && snap.CompanyName != snap.Symbol {
		fmt.Fprintf(&b, " · %s", html.EscapeString(snap.CompanyName))
	}
	b.WriteString("\n")
	for _, row := range statRows(snap) {
		if row[0] == "Company" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", row[0], html.EscapeString(row[1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (TelegramPresenter) RenderRoast(text string) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Roast</b>\n")
	b.WriteString(html.EscapeString(PlainText(text)))
	return b.String()
}

func (TelegramPresenter) RenderError(err *model.Error) string {
	return "⚠️ " + html.EscapeString(err.UserMessage())
}
