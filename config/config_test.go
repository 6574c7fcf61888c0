package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/twap/internal/domain"
)

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGet_Defaults(t *testing.T) {
	configs, err := Get(nil)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	assert.Equal(t, Config{
		Platform:            PlatformSimulate,
		Pair:                domain.Pair{From: "BTC", To: "USDT"},
		PollInterval:        time.Second,
		TradeInterval:       180,
		TradeIntervalJitter: 60,
		QuoteAmount:         10,
		QuoteAmountJitter:   5,
		InitialBuys:         5,
	}, configs[0])
}

func TestGet_DefaultPairIsBinanceSymbol(t *testing.T) {
	configs, err := Get(nil)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	// the simulate platform asks the Binance book ticker for this symbol
	assert.Equal(t, PlatformSimulate, configs[0].Platform)
	assert.Equal(t, "BTCUSDT", configs[0].Pair.Symbol())
}

func TestGet_ExampleConfig(t *testing.T) {
	configs, err := Get([]string{"--config", filepath.Join("..", "config.example.yaml")})
	require.NoError(t, err)
	require.NotEmpty(t, configs)

	for _, c := range configs {
		require.NoError(t, c.Validate())
		if c.Platform == PlatformSimulate {
			assert.Equal(t, "BTCUSDT", c.Pair.Symbol())
		}
	}
}

func TestGet_Flags(t *testing.T) {
	configs, err := Get([]string{
		"--platform", "binance",
		"--pair", "BTC_USDT",
		"--pollinterval", "5s",
		"--tradeinterval", "12",
		"--tradeintervaljitter", "2",
		"--quoteamount", "50",
		"--quoteamountjitter", "10",
		"--initialbuys", "0",
	})
	require.NoError(t, err)
	require.Len(t, configs, 1)

	c := configs[0]
	assert.Equal(t, PlatformBinance, c.Platform)
	assert.Equal(t, domain.Pair{From: "BTC", To: "USDT"}, c.Pair)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, 12, c.TradeInterval)
	assert.Equal(t, 2, c.TradeIntervalJitter)
	assert.Equal(t, 50, c.QuoteAmount)
	assert.Equal(t, 10, c.QuoteAmountJitter)
	assert.Equal(t, 0, c.InitialBuys)
}

func TestGet_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"bad pair", []string{"--pair", "BTCUSDT"}, "invalid --pair"},
		{"unknown platform", []string{"--platform", "kraken"}, "unsupported platform: kraken"},
		{"zero interval jitter", []string{"--tradeintervaljitter", "0"}, "trade interval jitter"},
		{"jitter above interval", []string{"--tradeinterval", "10", "--tradeintervaljitter", "11"}, "must not be less than its jitter"},
		{"zero quote jitter", []string{"--quoteamountjitter", "0"}, "quote amount jitter"},
		{"quote range reaches zero", []string{"--quoteamount", "5", "--quoteamountjitter", "5"}, "must exceed its jitter"},
		{"non-positive poll", []string{"--pollinterval", "0s"}, "poll interval"},
		{"negative initial buys", []string{"--initialbuys", "-1"}, "initial buys"},
		{"unknown flag", []string{"--usebalance", "100"}, "usebalance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Get(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestGet_Yaml(t *testing.T) {
	path := writeYaml(t, `
- platform: bybit
  pair: ETH_USDT
  poll_interval: 2s
  trade_interval: "60"
  trade_interval_jitter: "20"
  quote_amount: "25"
  quote_amount_jitter: "5"
  initial_buys: "3"
- pair: SOL_USDT
`)

	configs, err := Get([]string{"--config", path, "--pair", "IGNORED_PAIR"})
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, Config{
		Platform:            PlatformBybit,
		Pair:                domain.Pair{From: "ETH", To: "USDT"},
		PollInterval:        2 * time.Second,
		TradeInterval:       60,
		TradeIntervalJitter: 20,
		QuoteAmount:         25,
		QuoteAmountJitter:   5,
		InitialBuys:         3,
	}, configs[0])

	// omitted fields take defaults
	assert.Equal(t, Config{
		Platform:            PlatformSimulate,
		Pair:                domain.Pair{From: "SOL", To: "USDT"},
		PollInterval:        time.Second,
		TradeInterval:       180,
		TradeIntervalJitter: 60,
		QuoteAmount:         10,
		QuoteAmountJitter:   5,
		InitialBuys:         5,
	}, configs[1])
}

func TestGet_InvalidYaml(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"bad pair", "- pair: BTCUSDT\n", "incorrect 'pair' param"},
		{"non-integer", "- pair: BTC_USDT\n  quote_amount: ten\n", "incorrect 'quote_amount' param"},
		{"invalid range", "- pair: BTC_USDT\n  trade_interval: \"10\"\n  trade_interval_jitter: \"30\"\n", "must not be less than its jitter"},
		{"empty list", "[]\n", "no bots configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Get([]string{"--config", writeYaml(t, tt.content)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := Get([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
