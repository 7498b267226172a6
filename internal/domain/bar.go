// Package domain defines core data structures used throughout the trading bot.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single OHLC candle fetched from the market data feed.
// Series are ordered chronologically and refetched on every poll cycle.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    uint64
}

// EquitySnapshot holds current account equity together with the equity
// recorded at the prior session close.
type EquitySnapshot struct {
	Equity     decimal.Decimal
	LastEquity decimal.Decimal
}
