package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Position is a signed counter of open directional units tracked in memory.
// Positive means long, negative means short, zero means flat. Magnitude is
// bounded by the configured maximum. Only the scheduling loop mutates it.
type Position struct {
	value int
	max   int
}

// NewPosition creates a flat position with the given magnitude bound.
func NewPosition(maxPosition int) (*Position, error) {
	if maxPosition < 1 {
		return nil, errors.Errorf("max position must be at least 1, got %d", maxPosition)
	}
	return &Position{max: maxPosition}, nil
}

// Apply mutates the counter according to the accepted decision and returns
// the new value. Crossing the bound is refused: the evaluator never offers
// such a decision, so hitting this is a programming error worth surfacing.
func (p *Position) Apply(action Action) (int, error) {
	switch action {
	case ActionBuy:
		if p.value >= p.max {
			return p.value, errors.Errorf("buy would exceed max position %d", p.max)
		}
		p.value++
	case ActionSell:
		if p.value <= -p.max {
			return p.value, errors.Errorf("sell would exceed max short position %d", p.max)
		}
		p.value--
	case ActionHold:
	}
	return p.value, nil
}

// Reset flattens the counter at end-of-day liquidation.
func (p *Position) Reset() {
	p.value = 0
}

// Value returns the current signed position.
func (p *Position) Value() int {
	return p.value
}

// Max returns the configured magnitude bound.
func (p *Position) Max() int {
	return p.max
}

// Status renders the position for reports.
func (p *Position) Status() string {
	switch {
	case p.value > 0:
		return fmt.Sprintf("long %d", p.value)
	case p.value < 0:
		return fmt.Sprintf("short %d", -p.value)
	default:
		return "flat"
	}
}
