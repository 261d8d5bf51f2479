// Package present turns pipeline results into user-facing output.
package present

import (
	"strings"

	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
)

// Presenter renders the four parts of a roast response.
type Presenter interface {
	RenderChart(series *model.PriceSeries) string
	RenderStats(snap *model.MarketSnapshot) string
	RenderRoast(text string) string
	RenderError(err *model.Error) string
}

// View holds the rendered parts of one result. Error excludes all the others.
type View struct {
	Chart string
	Stats string
	Roast string
	Error string
}

// Compose renders res atomically: a failed run yields only the error, a
// successful one never carries an error.
func Compose(p Presenter, res *pipeline.Result) View {
	if !res.OK() {
		return View{Error: p.RenderError(res.Err)}
	}
	return View{
		Chart: p.RenderChart(res.Series),
		Stats: p.RenderStats(res.Snapshot),
		Roast: p.RenderRoast(res.Roast),
	}
}

// Render joins the non-empty parts of Compose with blank lines.
func Render(p Presenter, res *pipeline.Result) string {
	v := Compose(p, res)
	if v.Error != "" {
		return v.Error
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{v.Chart, v.Stats, v.Roast} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Indicator is the up/down marker for a period change.
func Indicator(snap *model.MarketSnapshot) string {
	if snap.Up() {
		return "▲"
	}
	return "▼"
}

// RoastLines splits generated text into non-empty lines.
func RoastLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
