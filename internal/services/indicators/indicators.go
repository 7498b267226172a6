// Package indicators computes the technical indicators the strategy consumes:
// a Wilder ADX trend-strength value and a tailed moving average of closes.
// Smoothing is done with the cinar/indicator library over channels.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/mbocharov/trendtrader/internal/domain"
)

// DefaultADXPeriod is the standard Wilder smoothing period.
const DefaultADXPeriod = 14

var (
	// ErrInsufficientData is returned when the bar series is shorter than
	// the indicator's minimum lookback. The cycle must be skipped, not crashed.
	ErrInsufficientData = errors.New("not enough bars for trend strength")

	// ErrEmptySeries is returned by TailedAverage on an empty bar series.
	ErrEmptySeries = errors.New("empty bar series")
)

// TrendStrength returns the latest ADX value for the series, a bounded
// nonnegative measure of how strongly price is trending regardless of
// direction. Deterministic for identical input.
func TrendStrength(bars []domain.Bar) (float64, error) {
	return trendStrengthWithPeriod(bars, DefaultADXPeriod)
}

func trendStrengthWithPeriod(bars []domain.Bar, period int) (float64, error) {
	// two smoothing passes each eat period-1 values, plus one bar for deltas
	if len(bars) < 2*period+1 {
		return 0, ErrInsufficientData
	}

	n := len(bars) - 1
	trueRange := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < len(bars); i++ {
		cur, prev := bars[i], bars[i-1]

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}

		trueRange[i-1] = math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
	}

	smoothTR := wilderSmooth(trueRange, period)
	smoothPlus := wilderSmooth(plusDM, period)
	smoothMinus := wilderSmooth(minusDM, period)

	dx := make([]float64, len(smoothTR))
	for i := range smoothTR {
		if smoothTR[i] == 0 {
			continue
		}
		plusDI := 100 * smoothPlus[i] / smoothTR[i]
		minusDI := 100 * smoothMinus[i] / smoothTR[i]
		if sum := plusDI + minusDI; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}

	adx := wilderSmooth(dx, period)
	if len(adx) == 0 {
		return 0, ErrInsufficientData
	}
	return adx[len(adx)-1], nil
}

// wilderSmooth applies an RMA (Wilder's smoothing) over the values.
// The warmup period is dropped, so output is len(values)-period+1 long.
func wilderSmooth(values []float64, period int) []float64 {
	rma := trend.NewRmaWithPeriod[float64](period)
	return helper.ChanToSlice(rma.Compute(helper.SliceToChan(values)))
}

// TailedAverage returns the mean close of the last interval bars, falling
// back to the mean of all bars when fewer exist.
func TailedAverage(bars []domain.Bar, interval int) (decimal.Decimal, error) {
	if len(bars) == 0 {
		return decimal.Decimal{}, ErrEmptySeries
	}
	if interval < 1 {
		return decimal.Decimal{}, errors.Errorf("interval must be positive, got %d", interval)
	}
	if interval > len(bars) {
		interval = len(bars)
	}

	sum := decimal.Zero
	for _, bar := range bars[len(bars)-interval:] {
		sum = sum.Add(decimal.NewFromFloat(bar.Close))
	}
	return sum.Div(decimal.NewFromInt(int64(interval))), nil
}
