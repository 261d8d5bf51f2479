package calculator

import (
	"math"

	"StockRoaster/internal/model"
)

// OverlayPeriod is the moving-average window drawn over the price chart.
const OverlayPeriod = 20

// SMASeries returns a rolling simple moving average aligned with prices.
// Entries before the first full window are NaN.
func SMASeries(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if period <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// OverlaySMA is the 20-period close SMA for the chart overlay.
func OverlaySMA(bars []model.OHLCV) []float64 {
	return SMASeries(extractCloses(bars), OverlayPeriod)
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
