package calculator

import (
	"errors"
	"math"

	"StockRoaster/internal/model"
)

// PeriodRange scans every bar and returns the highest high and lowest low.
// Bars with a zero high or low fall back to their close.
func PeriodRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		h, l := b.High, b.Low
		if h == 0 {
			h = b.Close
		}
		if l == 0 {
			l = b.Close
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low, nil
}
