package present

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"

	"StockRoaster/internal/calculator"
	"StockRoaster/internal/model"
)

const (
	chartWidth  = 640
	chartHeight = 240
	chartPad    = 8
)

// HTMLPresenter renders fragments for the web page. Every dynamic value is
// escaped by html/template.
type HTMLPresenter struct{}

var htmlTemplates = template.Must(template.New("").Parse(`
{{define "chart"}}<svg class="chart" viewBox="0 0 {{.W}} {{.H}}" role="img" aria-label="{{.Label}}">
<polyline class="close" fill="none" stroke-width="2" points="{{.Close}}"/>
{{- if .SMA}}
<polyline class="sma" fill="none" stroke-width="1" stroke-dasharray="4 3" points="{{.SMA}}"/>
{{- end}}
</svg>{{end}}
{{define "stats"}}<dl class="stats {{.Dir}}">
{{- range .Rows}}
<dt>{{index . 0}}</dt><dd>{{index . 1}}</dd>
{{- end}}
</dl>{{end}}
{{define "roast"}}<ol class="roast">
{{- range .}}
<li>{{.}}</li>
{{- end}}
</ol>{{end}}
{{define "error"}}<p class="error">{{.}}</p>{{end}}
`))

func execute(name string, data any) string {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Sprintf(`<p class="error">render %s: %s</p>`, name, template.HTMLEscapeString(err.Error()))
	}
	return buf.String()
}

// RenderChart draws the close series with the 20-day SMA overlay as inline SVG.
func (HTMLPresenter) RenderChart(series *model.PriceSeries) string {
	if series == nil || len(series.Bars) == 0 {
		return ""
	}
	closes := series.Closes()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range closes {
		lo, hi = math.Min(lo, c), math.Max(hi, c)
	}
	sma := calculator.OverlaySMA(series.Bars)
	for _, v := range sma {
		if !math.IsNaN(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	data := struct {
		W, H       int
		Label      string
		Close, SMA string
	}{
		W:     chartWidth,
		H:     chartHeight,
		Label: fmt.Sprintf("%s closing prices, %s", series.Symbol, series.Period.Label()),
		Close: points(closes, lo, hi),
		SMA:   points(sma, lo, hi),
	}
	return execute("chart", data)
}

// points scales values into SVG coordinates, skipping NaN entries.
func points(values []float64, lo, hi float64) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	step := 0.0
	if n > 1 {
		step = float64(chartWidth-2*chartPad) / float64(n-1)
	}
	var b strings.Builder
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		x := chartPad + step*float64(i)
		y := chartPad + (hi-v)/span*float64(chartHeight-2*chartPad)
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	return b.String()
}

func (HTMLPresenter) RenderStats(snap *model.MarketSnapshot) string {
	dir := "down"
	if snap.Up() {
		dir = "up"
	}
	return execute("stats", struct {
		Dir  string
		Rows [][2]string
	}{dir, statRows(snap)})
}

func (HTMLPresenter) RenderRoast(text string) string {
	return execute("roast", RoastLines(PlainText(text)))
}

func (HTMLPresenter) RenderError(err *model.Error) string {
	return execute("error", err.UserMessage())
}
