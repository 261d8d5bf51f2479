package pipeline

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"StockRoaster/internal/model"
)

// Defaults fill in optional request fields.
type Defaults struct {
	Period model.Period
	Tone   model.Tone
	Lines  int
}

// DefaultDefaults matches the form's initial selection.
var DefaultDefaults = Defaults{Period: model.Period1mo, Tone: model.ToneSavage, Lines: model.DefaultLines}

// Request is one user action: the three form inputs plus optional knobs.
type Request struct {
	Query     string
	Period    model.Period
	Tone      model.Tone
	Lines     int
	Intensity int // 0 means unspecified
}

// ParseRequest builds a Request from raw text inputs, as submitted by the web
// form, the JSON API or a chat command. Empty optional fields take defaults.
func ParseRequest(query, period, tone, lines, intensity string, d Defaults) (Request, error) {
	req := Request{Query: strings.TrimSpace(query)}
	if req.Query == "" {
		return req, invalid("enter a ticker or company name")
	}

	req.Period = d.Period
	if p := strings.TrimSpace(period); p != "" {
		parsed, err := model.ParsePeriod(p)
		if err != nil {
			return req, invalid(err.Error())
		}
		req.Period = parsed
	}

	req.Tone = d.Tone
	if t := strings.TrimSpace(tone); t != "" {
		parsed, err := model.ParseTone(t)
		if err != nil {
			return req, invalid(err.Error())
		}
		req.Tone = parsed
	}

	req.Lines = d.Lines
	if l := strings.TrimSpace(lines); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return req, invalid(fmt.Sprintf("lines must be a number, got %q", l))
		}
		req.Lines = n
	}

	if i := strings.TrimSpace(intensity); i != "" {
		n, err := strconv.Atoi(i)
		if err != nil {
			return req, invalid(fmt.Sprintf("intensity must be a number, got %q", i))
		}
		req.Intensity = n
	}

	return req, req.Validate()
}

// Validate checks a fully populated request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return invalid("enter a ticker or company name")
	}
	// Exact members only: ParseRequest canonicalises, direct callers must too.
	if !slices.Contains(model.Periods, r.Period) {
		return invalid(fmt.Sprintf("unknown period %q", r.Period))
	}
	if !slices.Contains(model.Tones, r.Tone) {
		return invalid(fmt.Sprintf("unknown tone %q", r.Tone))
	}
	if r.Lines < model.MinLines || r.Lines > model.MaxLines {
		return invalid(fmt.Sprintf("lines must be between %d and %d", model.MinLines, model.MaxLines))
	}
	if r.Intensity < 0 || r.Intensity > model.MaxIntensity {
		return invalid(fmt.Sprintf("intensity must be between 1 and %d", model.MaxIntensity))
	}
	return nil
}

func invalid(msg string) error {
	return model.NewError(model.KindInputInvalid, msg, nil)
}
