// Package config loads bot configurations from a yaml file or command line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/twap/internal/domain"
)

const (
	PlatformBinance     = "binance"
	PlatformBybit       = "bybit"
	PlatformHyperliquid = "hyperliquid"
	PlatformSimulate    = "simulate"
)

// simulate prices through the Binance book ticker, so its pair must be listed there.
// hyperliquid trades the base coin's perpetual; sells are reduce-only and cannot open a short.
const platformUsage = "exchange: binance, bybit, hyperliquid (perpetuals, sells reduce-only) or simulate (Binance prices)"

const (
	defaultPlatform            = PlatformSimulate
	defaultPair                = "BTC_USDT"
	defaultPollInterval        = time.Second
	defaultTradeInterval       = 180
	defaultTradeIntervalJitter = 60
	defaultQuoteAmount         = 10
	defaultQuoteAmountJitter   = 5
	defaultInitialBuys         = 5
)

// Config describes one TWAP bot.
type Config struct {
	Platform string
	Pair     domain.Pair
	// PollInterval how often the bot ticks the strategy and refreshes order states.
	PollInterval time.Duration
	// TradeInterval and TradeIntervalJitter are in seconds.
	TradeInterval       int
	TradeIntervalJitter int
	// QuoteAmount and QuoteAmountJitter are in quote currency units.
	QuoteAmount       int
	QuoteAmountJitter int
	InitialBuys       int
}

// ConfigTmp is the yaml representation of Config. Empty fields take defaults.
type ConfigTmp struct {
	Platform               string        `yaml:"platform"`
	Pair                   string        `yaml:"pair"`
	PollInterval           time.Duration `yaml:"poll_interval,omitempty"`
	TradeIntervalStr       string        `yaml:"trade_interval,omitempty"`
	TradeIntervalJitterStr string        `yaml:"trade_interval_jitter,omitempty"`
	QuoteAmountStr         string        `yaml:"quote_amount,omitempty"`
	QuoteAmountJitterStr   string        `yaml:"quote_amount_jitter,omitempty"`
	InitialBuysStr         string        `yaml:"initial_buys,omitempty"`
}

// Get parses args (without the program name). A --config path takes precedence
// over every other flag.
func Get(args []string) ([]Config, error) {
	fs := flag.NewFlagSet("twap", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	platform := fs.String("platform", defaultPlatform, platformUsage)
	pair := fs.String("pair", defaultPair, "trade pair, example: BTC_USDT")
	poll := fs.Duration("pollinterval", defaultPollInterval, "strategy tick interval")
	interval := fs.Int("tradeinterval", defaultTradeInterval, "mean seconds between orders")
	intervalJitter := fs.Int("tradeintervaljitter", defaultTradeIntervalJitter, "max deviation from tradeinterval, seconds")
	quote := fs.Int("quoteamount", defaultQuoteAmount, "mean order size in quote currency")
	quoteJitter := fs.Int("quoteamountjitter", defaultQuoteAmountJitter, "max deviation from quoteamount")
	initialBuys := fs.Int("initialbuys", defaultInitialBuys, "buy orders placed before the first random run")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *path != "" {
		return getYaml(*path)
	}

	p, err := domain.ParsePair(*pair)
	if err != nil {
		return nil, fmt.Errorf("invalid --pair provided, --pair=%s", *pair)
	}

	c := Config{
		Platform:            *platform,
		Pair:                p,
		PollInterval:        *poll,
		TradeInterval:       *interval,
		TradeIntervalJitter: *intervalJitter,
		QuoteAmount:         *quote,
		QuoteAmountJitter:   *quoteJitter,
		InitialBuys:         *initialBuys,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return []Config{c}, nil
}

// Validate checks the platform and that every random range is usable.
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformBinance, PlatformBybit, PlatformHyperliquid, PlatformSimulate:
	default:
		return fmt.Errorf("unsupported platform: %s", c.Platform)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.TradeIntervalJitter < 1 {
		return fmt.Errorf("trade interval jitter must be at least 1, got %d", c.TradeIntervalJitter)
	}
	if c.TradeInterval-c.TradeIntervalJitter < 0 {
		return fmt.Errorf("trade interval %d must not be less than its jitter %d", c.TradeInterval, c.TradeIntervalJitter)
	}
	if c.QuoteAmountJitter < 1 {
		return fmt.Errorf("quote amount jitter must be at least 1, got %d", c.QuoteAmountJitter)
	}
	if c.QuoteAmount-c.QuoteAmountJitter < 1 {
		return fmt.Errorf("quote amount %d must exceed its jitter %d", c.QuoteAmount, c.QuoteAmountJitter)
	}
	if c.InitialBuys < 0 {
		return fmt.Errorf("initial buys must not be negative, got %d", c.InitialBuys)
	}
	return nil
}

func getYaml(path string) ([]Config, error) {
	var configsTmp []ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(configsTmp) == 0 {
		return nil, fmt.Errorf("no bots configured in %s", path)
	}

	configs := make([]Config, 0, len(configsTmp))
	for i, c := range configsTmp {
		conf, err := c.toConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "bot #%d", i+1)
		}
		configs = append(configs, conf)
	}
	return configs, nil
}

func (c ConfigTmp) toConfig() (Config, error) {
	pair, err := domain.ParsePair(c.Pair)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", c.Pair, err)
	}

	conf := Config{
		Platform:     c.Platform,
		Pair:         pair,
		PollInterval: c.PollInterval,
	}
	if conf.Platform == "" {
		conf.Platform = defaultPlatform
	}
	if conf.PollInterval == 0 {
		conf.PollInterval = defaultPollInterval
	}

	ints := []struct {
		name string
		raw  string
		def  int
		dst  *int
	}{
		{"trade_interval", c.TradeIntervalStr, defaultTradeInterval, &conf.TradeInterval},
		{"trade_interval_jitter", c.TradeIntervalJitterStr, defaultTradeIntervalJitter, &conf.TradeIntervalJitter},
		{"quote_amount", c.QuoteAmountStr, defaultQuoteAmount, &conf.QuoteAmount},
		{"quote_amount_jitter", c.QuoteAmountJitterStr, defaultQuoteAmountJitter, &conf.QuoteAmountJitter},
		{"initial_buys", c.InitialBuysStr, defaultInitialBuys, &conf.InitialBuys},
	}
	for _, p := range ints {
		if p.raw == "" {
			*p.dst = p.def
			continue
		}
		v, err := strconv.Atoi(p.raw)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect '%s' param in yaml config (must be an integer), error: %w", p.name, err)
		}
		*p.dst = v
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}
