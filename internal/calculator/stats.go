package calculator

import (
	"errors"
	"math"

	"StockRoaster/internal/model"
)

var (
	// ErrInsufficientData means the series is too short for the statistic.
	ErrInsufficientData = errors.New("not enough data")
	// ErrZeroBase means the first close is zero and a percentage is undefined.
	ErrZeroBase = errors.New("first close is zero")
)

// PeriodChangePct returns (last.Close - first.Close) / first.Close * 100
// together with the two anchoring closes.
func PeriodChangePct(bars []model.OHLCV) (pct, first, last float64, err error) {
	if len(bars) == 0 {
		return 0, 0, 0, ErrInsufficientData
	}
	first = bars[0].Close
	last = bars[len(bars)-1].Close
	if first == 0 {
		return 0, first, last, ErrZeroBase
	}
	pct = (last - first) / first * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, first, last, ErrZeroBase
	}
	return pct, first, last, nil
}

// AverageVolume is the arithmetic mean of the volume column rounded to an
// integer. Bars with VolumeMissing are left out of both sum and count.
func AverageVolume(bars []model.OHLCV) (int64, error) {
	sum, n := 0.0, 0
	for _, b := range bars {
		if b.VolumeMissing {
			continue
		}
		sum += b.Volume
		n++
	}
	if n == 0 {
		return 0, ErrInsufficientData
	}
	return int64(math.Round(sum / float64(n))), nil
}
