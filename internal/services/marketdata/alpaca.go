// Package marketdata adapts the Alpaca data and trading APIs to the types the
// trading loop consumes: latest trade price, minute bars, account equity and
// the market calendar check.
package marketdata

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/mbocharov/trendtrader/internal/domain"
)

// AlpacaProvider fetches quotes, bars and account state from Alpaca.
type AlpacaProvider struct {
	trading *alpaca.Client
	data    *md.Client
	feed    md.Feed
	loc     *time.Location
}

// NewAlpacaProvider wires the Alpaca clients. loc is the exchange timezone
// used to bound the intraday bar window.
func NewAlpacaProvider(trading *alpaca.Client, data *md.Client, feed string, loc *time.Location) *AlpacaProvider {
	f := md.IEX
	if feed == "sip" {
		f = md.SIP
	}
	return &AlpacaProvider{trading: trading, data: data, feed: f, loc: loc}
}

// LatestPrice returns the price of the most recent trade for the symbol.
func (p *AlpacaProvider) LatestPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	trade, err := p.data.GetLatestTrade(symbol, md.GetLatestTradeRequest{Feed: p.feed})
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "failed to fetch latest trade for %s", symbol)
	}
	return decimal.NewFromFloat(trade.Price), nil
}

// MinuteBars returns today's minute bars for the symbol, oldest first.
// The series is refetched in full on every cycle, never cached.
func (p *AlpacaProvider) MinuteBars(_ context.Context, symbol string) ([]domain.Bar, error) {
	now := time.Now().In(p.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)

	raw, err := p.data.GetBars(symbol, md.GetBarsRequest{
		TimeFrame: md.OneMin,
		Start:     dayStart,
		Feed:      p.feed,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch minute bars for %s", symbol)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, domain.Bar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	return bars, nil
}

// EquitySnapshot returns current equity and the prior close equity.
func (p *AlpacaProvider) EquitySnapshot(_ context.Context) (domain.EquitySnapshot, error) {
	acct, err := p.trading.GetAccount()
	if err != nil {
		return domain.EquitySnapshot{}, errors.Wrap(err, "failed to fetch account")
	}
	return domain.EquitySnapshot{
		Equity:     acct.Equity,
		LastEquity: acct.LastEquity,
	}, nil
}

// MarketOpenToday reports whether the exchange trades today: either the
// market is open right now, or its next open falls on the current date.
func (p *AlpacaProvider) MarketOpenToday(_ context.Context) (bool, error) {
	clock, err := p.trading.GetClock()
	if err != nil {
		return false, errors.Wrap(err, "failed to fetch market clock")
	}
	if clock.IsOpen {
		return true, nil
	}
	now := clock.Timestamp.In(p.loc)
	nextOpen := clock.NextOpen.In(p.loc)
	return now.Year() == nextOpen.Year() && now.YearDay() == nextOpen.YearDay(), nil
}
