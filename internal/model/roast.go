package model

import (
	"fmt"
	"strings"
)

// Tone selects the phrasing style of a roast.
type Tone string

const (
	ToneSavage  Tone = "Savage"
	TonePlayful Tone = "Playful"
	ToneDry     Tone = "Dry"
)

// Tones lists the accepted tones in display order.
var Tones = []Tone{ToneSavage, TonePlayful, ToneDry}

// ParseTone accepts a tone name in any case.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, t := range Tones {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

const (
	MinLines     = 1
	MaxLines     = 10
	DefaultLines = 4
	MaxIntensity = 10
)

// RoastRequest is the formatting input for a prompt.
type RoastRequest struct {
	Snapshot  *MarketSnapshot
	Tone      Tone
	Lines     int
	Intensity int // 0 means unspecified
}
