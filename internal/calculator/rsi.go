package calculator

import (
	"errors"

	"StockRoaster/internal/model"
)

// RSIPeriod is the lookback used for the snapshot RSI.
const RSIPeriod = 14

// CalculateRSI returns the relative strength index of the closes.
//
// The first average is a plain mean over period changes; every later bar
// folds in with Wilder's 1/period weight. That is the RSI(14) charting sites
// and Yahoo quote pages show, so the "RSI(14)" line handed to the model
// matches the number a reader would look up. Needs at least period+1 bars.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) <= period {
		return 0, ErrInsufficientData
	}

	n := float64(period)
	var up, down float64
	for i := 1; i < len(bars); i++ {
		gain, loss := split(bars[i].Close - bars[i-1].Close)
		if i <= period {
			up += gain / n
			down += loss / n
			continue
		}
		up += (gain - up) / n
		down += (loss - down) / n
	}

	if down == 0 {
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

// split returns a close-to-close change as non-negative gain and loss.
func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}
