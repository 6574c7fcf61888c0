package clients

import (
	"github.com/adshao/go-binance/v2"
)

// SimulateClient trades against an in-memory wallet and prices with the
// Binance public API.
type SimulateClient struct {
	binanceClient *binance.Client
}

// NewSimulateClient creates a client without API keys, public data only.
func NewSimulateClient() *SimulateClient {
	return &SimulateClient{
		binanceClient: binance.NewClient("", ""),
	}
}

// GetBinanceClient returns the underlying Binance client.
func (c *SimulateClient) GetBinanceClient() *binance.Client {
	return c.binanceClient
}
