package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
	"StockRoaster/internal/present"
)

// HelpText lists the bot commands.
func HelpText() string {
	var b strings.Builder
	b.WriteString("🔥 <b>Stock Roaster</b>\n\n")
	b.WriteString("/roast &lt;ticker or company&gt; [period] [tone]\n")
	fmt.Fprintf(&b, "  period: %s\n", joinPeriods())
	fmt.Fprintf(&b, "  tone: %s\n", joinTones())
	b.WriteString("  e.g. <code>/roast TCS.NS 3mo dry</code>\n")
	b.WriteString("/help  show this message")
	return b.String()
}

func joinPeriods() string {
	s := make([]string, len(model.Periods))
	for i, p := range model.Periods {
		s[i] = string(p)
	}
	return strings.Join(s, ", ")
}

func joinTones() string {
	s := make([]string, len(model.Tones))
	for i, t := range model.Tones {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}

// FormatDigestHeader opens a digest run in Telegram.
func FormatDigestHeader(now time.Time, symbols int) string {
	return fmt.Sprintf("📣 <b>Roast digest</b> | %s | %d symbols", now.Format("2006-01-02"), symbols)
}

// FormatDigestEmail renders all digest results into one HTML email.
func FormatDigestEmail(now time.Time, results []*pipeline.Result) (subject, body string) {
	subject = fmt.Sprintf("Roast digest %s", now.Format("2006-01-02"))

	var p present.HTMLPresenter
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(subject))
	for _, res := range results {
		title := res.Symbol
		if title == "" {
			title = res.Request.Query
		}
		fmt.Fprintf(&b, "<section>\n<h2>%s</h2>\n", html.EscapeString(title))
		v := present.Compose(p, res)
		for _, part := range []string{v.Error, v.Stats, v.Chart, v.Roast} {
			if part != "" {
				b.WriteString(part)
				b.WriteString("\n")
			}
		}
		b.WriteString("</section>\n")
	}
	return subject, b.String()
}
