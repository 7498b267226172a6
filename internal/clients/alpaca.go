// Package clients constructs external API clients from environment credentials.
package clients

import (
	"os"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/pkg/errors"
)

const defaultBaseURL = "https://paper-api.alpaca.markets"

// AlpacaCreds holds brokerage API credentials.
type AlpacaCreds struct {
	Key     string
	Secret  string
	BaseURL string
}

// AlpacaCredsFromEnv reads APCA_API_KEY_ID, APCA_API_SECRET_KEY and the
// optional APCA_API_BASE_URL. Missing credentials are fatal at startup.
func AlpacaCredsFromEnv() (AlpacaCreds, error) {
	creds := AlpacaCreds{
		Key:     os.Getenv("APCA_API_KEY_ID"),
		Secret:  os.Getenv("APCA_API_SECRET_KEY"),
		BaseURL: os.Getenv("APCA_API_BASE_URL"),
	}
	if creds.Key == "" || creds.Secret == "" {
		return AlpacaCreds{}, errors.New("APCA_API_KEY_ID and APCA_API_SECRET_KEY environment variables must be set")
	}
	if creds.BaseURL == "" {
		creds.BaseURL = defaultBaseURL
	}
	return creds, nil
}

// NewAlpacaClients builds the trading and market data clients.
func NewAlpacaClients(creds AlpacaCreds) (*alpaca.Client, *marketdata.Client) {
	trading := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    creds.Key,
		APISecret: creds.Secret,
		BaseURL:   creds.BaseURL,
	})
	md := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    creds.Key,
		APISecret: creds.Secret,
	})
	return trading, md
}
