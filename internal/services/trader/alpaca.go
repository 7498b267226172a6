// Package trader submits orders to the brokerage. Submission is treated as
// fire-and-forget by the scheduler; this package only reports the submit
// attempt outcome and never tracks fills.
package trader

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbocharov/trendtrader/internal/domain"
)

// AlpacaTrader places market day orders for a single symbol.
type AlpacaTrader struct {
	client     *alpaca.Client
	symbol     string
	allocation decimal.Decimal
	logger     *zap.Logger
}

// NewAlpacaTrader validates the allocation fraction and returns a trader.
func NewAlpacaTrader(client *alpaca.Client, symbol string, allocation decimal.Decimal, logger *zap.Logger) (*AlpacaTrader, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if allocation.LessThanOrEqual(decimal.Zero) || allocation.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.Errorf("allocation must be in (0,1], got %s", allocation.String())
	}
	return &AlpacaTrader{
		client:     client,
		symbol:     symbol,
		allocation: allocation,
		logger:     logger,
	}, nil
}

// SubmitOrder places a market day order for qty units in the given direction.
// No fill confirmation is awaited.
func (t *AlpacaTrader) SubmitOrder(_ context.Context, action domain.Action, qty int64) error {
	side, err := sideForAction(action)
	if err != nil {
		return err
	}

	amount := decimal.NewFromInt(qty)
	order, err := t.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        t.symbol,
		Qty:           &amount,
		Side:          side,
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		ClientOrderID: uuid.New().String(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to submit %s order for %s", action, t.symbol)
	}

	t.logger.Info("order submitted",
		zap.String("symbol", t.symbol),
		zap.String("side", string(side)),
		zap.Int64("qty", qty),
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)))
	return nil
}

// LiquidateAll closes every open position for the account, cancelling open
// orders first so a pending submission cannot fill after the close.
func (t *AlpacaTrader) LiquidateAll(_ context.Context) error {
	orders, err := t.client.CloseAllPositions(alpaca.CloseAllPositionsRequest{CancelOrders: true})
	if err != nil {
		return errors.Wrap(err, "failed to liquidate positions")
	}
	t.logger.Info("all positions liquidated",
		zap.String("symbol", t.symbol),
		zap.Int("closing_orders", len(orders)))
	return nil
}

// IdealQuantity sizes an order as the configured fraction of current equity
// at the given price, rounded up to a whole number of units.
func (t *AlpacaTrader) IdealQuantity(_ context.Context, price decimal.Decimal) (int64, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return 0, errors.Errorf("price must be positive, got %s", price.String())
	}

	acct, err := t.client.GetAccount()
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch account for sizing")
	}

	qty := acct.Equity.Mul(t.allocation).Div(price).Ceil().IntPart()
	return qty, nil
}

func sideForAction(action domain.Action) (alpaca.Side, error) {
	switch action {
	case domain.ActionBuy:
		return alpaca.Buy, nil
	case domain.ActionSell:
		return alpaca.Sell, nil
	default:
		return "", errors.Errorf("no order side for action %s", action)
	}
}
