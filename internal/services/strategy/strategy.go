// Package strategy holds the pure trading decision function. It has no side
// effects: the scheduler applies the resulting order and position update.
package strategy

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/mbocharov/trendtrader/internal/domain"
)

// Evaluator turns market state into a trade decision.
type Evaluator struct {
	entryThreshold float64
	maxPosition    int
}

// NewEvaluator validates thresholds and returns an evaluator.
func NewEvaluator(entryThreshold float64, maxPosition int) (*Evaluator, error) {
	if entryThreshold <= 0 {
		return nil, errors.Errorf("entry threshold must be positive, got %f", entryThreshold)
	}
	if maxPosition < 1 {
		return nil, errors.Errorf("max position must be at least 1, got %d", maxPosition)
	}
	return &Evaluator{entryThreshold: entryThreshold, maxPosition: maxPosition}, nil
}

// Decide evaluates the rules in order, first match wins:
//
//	buy  when price > MA, trend strength above threshold and room to go long
//	sell when price < MA, trend strength above threshold and room to go short
//	hold otherwise; a price exactly on the MA always holds
//
// A decision is never offered when the position bound would be crossed.
func (e *Evaluator) Decide(price, movingAverage decimal.Decimal, trendStrength float64, position int) domain.Action {
	if trendStrength <= e.entryThreshold {
		return domain.ActionHold
	}

	switch {
	case price.GreaterThan(movingAverage) && position < e.maxPosition:
		return domain.ActionBuy
	case price.LessThan(movingAverage) && position > -e.maxPosition:
		return domain.ActionSell
	default:
		return domain.ActionHold
	}
}
