package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbocharov/trendtrader/internal/domain"
)

func TestNewEvaluator(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		_, err := NewEvaluator(35, 1)
		assert.NoError(t, err)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		_, err := NewEvaluator(0, 1)
		assert.Error(t, err)
	})

	t.Run("invalid max position", func(t *testing.T) {
		_, err := NewEvaluator(35, 0)
		assert.Error(t, err)
	})
}

func TestDecide(t *testing.T) {
	e, err := NewEvaluator(35, 1)
	require.NoError(t, err)

	tests := []struct {
		name          string
		price         float64
		movingAverage float64
		trendStrength float64
		position      int
		expected      domain.Action
	}{
		{name: "buy above MA in strong trend from flat", price: 52, movingAverage: 50, trendStrength: 40, position: 0, expected: domain.ActionBuy},
		{name: "sell below MA in strong trend from long", price: 48, movingAverage: 50, trendStrength: 40, position: 1, expected: domain.ActionSell},
		{name: "hold when trend too weak", price: 52, movingAverage: 50, trendStrength: 20, position: 0, expected: domain.ActionHold},
		{name: "hold when trend at threshold", price: 52, movingAverage: 50, trendStrength: 35, position: 0, expected: domain.ActionHold},
		{name: "hold on tie with MA", price: 50, movingAverage: 50, trendStrength: 40, position: 0, expected: domain.ActionHold},
		{name: "no buy at max position", price: 52, movingAverage: 50, trendStrength: 40, position: 1, expected: domain.ActionHold},
		{name: "no sell at max short", price: 48, movingAverage: 50, trendStrength: 40, position: -1, expected: domain.ActionHold},
		{name: "sell from flat", price: 48, movingAverage: 50, trendStrength: 40, position: 0, expected: domain.ActionSell},
		{name: "buy from short", price: 52, movingAverage: 50, trendStrength: 40, position: -1, expected: domain.ActionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := e.Decide(
				decimal.NewFromFloat(tt.price),
				decimal.NewFromFloat(tt.movingAverage),
				tt.trendStrength,
				tt.position,
			)
			assert.Equal(t, tt.expected, action)
		})
	}
}

// decide never offers an action that would cross the position bound.
func TestDecideRespectsBoundEverywhere(t *testing.T) {
	for _, max := range []int{1, 2, 5} {
		e, err := NewEvaluator(35, max)
		require.NoError(t, err)

		for p := -max - 2; p <= max+2; p++ {
			buyAction := e.Decide(decimal.NewFromInt(52), decimal.NewFromInt(50), 40, p)
			if p >= max {
				assert.NotEqual(t, domain.ActionBuy, buyAction, "position %d bound %d", p, max)
			} else {
				assert.Equal(t, domain.ActionBuy, buyAction, "position %d bound %d", p, max)
			}

			sellAction := e.Decide(decimal.NewFromInt(48), decimal.NewFromInt(50), 40, p)
			if p <= -max {
				assert.NotEqual(t, domain.ActionSell, sellAction, "position %d bound %d", p, max)
			} else {
				assert.Equal(t, domain.ActionSell, sellAction, "position %d bound %d", p, max)
			}
		}
	}
}
