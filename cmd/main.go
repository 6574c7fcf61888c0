// Command twap runs randomized TWAP trading bots.
// It supports Binance, Bybit, Hyperliquid and a simulated exchange, and can be
// configured via YAML configuration files or command-line arguments.
//
// Usage:
//
//	twap --config config.yaml
//	twap --setup (interactive wizard, writes config.gen.yaml)
//	twap --platform binance --pair BTC_USDT --quoteamount 20 --quoteamountjitter 5
//
// Required environment variables (a .env file in the working directory is loaded):
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For Hyperliquid: HYPERLIQUID_PRIVATE_KEY, optional HYPERLIQUID_BASE_URL
//
// Hyperliquid bots trade the base coin's perpetual; sells are reduce-only and
// never open a short. The simulate platform prices through Binance, so its pair
// must be listed there.
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/twap/config"
	"github.com/vadiminshakov/twap/internal"
	"github.com/vadiminshakov/twap/internal/clients"
	"github.com/vadiminshakov/twap/internal/setup"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logger.Warn("failed to load .env", zap.Error(err))
		}
	}

	args := os.Args[1:]
	if slices.Contains(args, "--setup") {
		if err := setup.RunTUI(); err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		args = []string{"--config", setup.GeneratedConfigFile}
	}

	configs, err := config.Get(args)
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, conf := range configs {
		client, err := clients.FromEnv(conf.Platform, os.Getenv)
		if err != nil {
			logger.Fatal("failed to create exchange client", zap.String("platform", conf.Platform), zap.Error(err))
		}

		bot, err := internal.NewTradingBot(conf, client, logger)
		if err != nil {
			logger.Fatal("failed to create trading bot", zap.String("pair", conf.Pair.String()), zap.Error(err))
		}

		g.Go(func() error {
			defer bot.Close()
			return bot.Run(ctx)
		})
		logger.Info("started", zap.String("platform", conf.Platform), zap.String("pair", conf.Pair.String()))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("trading bot stopped", zap.Error(err))
	}
}
