package domain

// Action represents the type of trading action to be performed.
type Action int

const (
	// ActionHold means no order should be placed this cycle.
	ActionHold Action = iota
	// ActionBuy opens or extends a long position.
	ActionBuy
	// ActionSell opens or extends a short position.
	ActionSell
)

// String returns the string representation.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "hold"
	}
}
