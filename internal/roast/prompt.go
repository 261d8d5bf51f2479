package roast

import (
	"fmt"
	"strconv"
	"strings"

	"StockRoaster/internal/model"
)

// styleNotes maps each tone to the instruction embedded in the prompt.
var styleNotes = map[model.Tone]string{
	model.ToneSavage:  "Savage: merciless and cutting. Go for the jugular, but keep every line clever rather than crude.",
	model.TonePlayful: "Playful: light-hearted teasing with puns and affectionate mockery, like ribbing a friend.",
	model.ToneDry:     "Dry: deadpan and understated. Deliver the sarcasm with a perfectly straight face.",
}

// StyleNote returns the style instruction for tone. An unknown tone is a
// programming error; callers validate input with model.ParseTone first.
func StyleNote(tone model.Tone) string {
	note, ok := styleNotes[tone]
	if !ok {
		panic(fmt.Sprintf("roast: no style note for tone %q", tone))
	}
	return note
}

// BuildPrompt renders the roast prompt. It is pure: identical requests give
// byte-identical prompts.
func BuildPrompt(req model.RoastRequest) string {
	note := StyleNote(req.Tone)
	lines := req.Lines
	if lines < model.MinLines || lines > model.MaxLines {
		lines = model.DefaultLines
	}

	var b strings.Builder
	b.WriteString("Stock snapshot:\n")
	writeSnapshot(&b, req.Snapshot)

	b.WriteString("\nInstructions:\n")
	if lines == 1 {
		b.WriteString("Write exactly 1 one-line roast of this stock.\n")
	} else {
		fmt.Fprintf(&b, "Write exactly %d one-line roasts of this stock.\n", lines)
	}
	fmt.Fprintf(&b, "Tone: %s\n", note)
	if req.Intensity > 0 {
		fmt.Fprintf(&b, "Intensity: %d/%d\n", min(req.Intensity, model.MaxIntensity), model.MaxIntensity)
	}
	b.WriteString("Use the numbers above as material.\n")
	b.WriteString("Do not give financial advice: no buy, sell or hold calls, no price targets, no predictions.\n")
	b.WriteString("Output only the roasts, one per line, numbered or plain. No preamble, no closing remarks.\n")
	return b.String()
}

// writeSnapshot emits one "Key: value" line per known field in fixed order.
func writeSnapshot(b *strings.Builder, s *model.MarketSnapshot) {
	line := func(key, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(b, "%s: %s\n", key, value)
	}
	known := func(v string) string {
		if v == "Unknown" {
			return ""
		}
		return v
	}

	line("Symbol", s.Symbol)
	line("Company", s.CompanyName)
	line("Sector", known(s.Sector))
	line("Industry", known(s.Industry))
	if s.MarketCap != nil {
		line("Market cap", strconv.FormatFloat(*s.MarketCap, 'f', 0, 64))
	}
	line("Exchange", s.Exchange)
	line("Period", fmt.Sprintf("%s (%d trading days)", s.Period.Label(), s.Bars))
	close := fmt.Sprintf("%.2f", s.LatestClose)
	if s.Currency != "" {
		close += " " + s.Currency
	}
	line("Latest close", close)
	line("Period change", fmt.Sprintf("%+.2f%%", s.PeriodChangePct))
	if s.PeriodHigh > 0 {
		line("Period high", fmt.Sprintf("%.2f", s.PeriodHigh))
		line("Period low", fmt.Sprintf("%.2f", s.PeriodLow))
	}
	if s.AverageVolume != nil {
		line("Average volume", strconv.FormatInt(*s.AverageVolume, 10))
	}
	if s.RSI14 != nil {
		line("RSI(14)", fmt.Sprintf("%.1f", *s.RSI14))
	}
	line("Latest date", s.LatestDate)
}
