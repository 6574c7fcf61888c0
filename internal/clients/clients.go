// Package clients builds exchange SDK clients from credentials in the environment.
package clients

import (
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
)

const (
	EnvBinanceAPIKey         = "BINANCE_API_KEY"
	EnvBinanceAPISecret      = "BINANCE_API_SECRET"
	EnvBybitAPIKey           = "BYBIT_API_KEY"
	EnvBybitAPISecret        = "BYBIT_API_SECRET"
	EnvHyperliquidPrivateKey = "HYPERLIQUID_PRIVATE_KEY"
	EnvHyperliquidBaseURL    = "HYPERLIQUID_BASE_URL"
)

func NewBinanceClient(apiKey, apiSecret string) *binance.Client {
	return binance.NewClient(apiKey, apiSecret)
}

func NewBybitClient(apiKey, apiSecret string) *bybit.Client {
	return bybit.NewClient().WithAuth(apiKey, apiSecret)
}

// FromEnv returns the SDK client for platform, reading credentials through getenv.
// The result is one of *binance.Client, *bybit.Client, *HyperliquidClient or *SimulateClient.
func FromEnv(platform string, getenv func(string) string) (any, error) {
	switch platform {
	case "binance":
		apiKey, apiSecret := getenv(EnvBinanceAPIKey), getenv(EnvBinanceAPISecret)
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("%s and %s environment variables must be set", EnvBinanceAPIKey, EnvBinanceAPISecret)
		}
		return NewBinanceClient(apiKey, apiSecret), nil
	case "bybit":
		apiKey, apiSecret := getenv(EnvBybitAPIKey), getenv(EnvBybitAPISecret)
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("%s and %s environment variables must be set", EnvBybitAPIKey, EnvBybitAPISecret)
		}
		return NewBybitClient(apiKey, apiSecret), nil
	case "hyperliquid":
		key := getenv(EnvHyperliquidPrivateKey)
		if key == "" {
			return nil, fmt.Errorf("%s environment variable must be set", EnvHyperliquidPrivateKey)
		}
		// empty base URL selects mainnet
		return NewHyperliquidClient(key, getenv(EnvHyperliquidBaseURL))
	case "simulate":
		return NewSimulateClient(), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}
