package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/config"
	"github.com/vadiminshakov/twap/internal/domain"
	"github.com/vadiminshakov/twap/internal/events"
	"github.com/vadiminshakov/twap/internal/services/strategy/twap"
	"github.com/vadiminshakov/twap/internal/services/tracker"
)

// must hold every order event of a single tick
const orderEventsBuffer = 256

type TradingStrategy interface {
	Initialize(ctx context.Context) error
	Trade(ctx context.Context) (*domain.TradeEvent, error)
	OnOrderEvent(event domain.OrderEvent)
	Close() error
}

type orderPoller interface {
	Poll(ctx context.Context) error
}

// TradingBot represents a single trading instance
type TradingBot struct {
	Config          config.Config
	tradingStrategy TradingStrategy
	poller          orderPoller
	orderEvents     *events.OrderBroadcaster
	logger          *zap.Logger
}

// NewTradingBot creates a new trading bot instance
func NewTradingBot(conf config.Config, client any, logger *zap.Logger) (*TradingBot, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("exchange", conf.Platform), zap.String("pair", conf.Pair.String()))

	provider, err := newServiceProvider(client, logger)
	if err != nil {
		return nil, err
	}
	exchange, err := provider.Trader(conf.Pair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trader")
	}
	prices, err := provider.Pricer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pricer")
	}

	orderEvents := events.NewOrderBroadcaster(orderEventsBuffer)
	orders := tracker.New(conf.Pair, exchange, orderEvents, logger)

	tradingStrategy, err := twap.NewTWAPStrategy(
		logger,
		conf.Platform,
		conf.Pair,
		twap.Params{
			TradeInterval:       conf.TradeInterval,
			TradeIntervalJitter: conf.TradeIntervalJitter,
			QuoteAmount:         conf.QuoteAmount,
			QuoteAmountJitter:   conf.QuoteAmountJitter,
			InitialBuys:         conf.InitialBuys,
		},
		prices,
		orders,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create TWAP strategy")
	}

	return &TradingBot{
		Config:          conf,
		tradingStrategy: tradingStrategy,
		poller:          orders,
		orderEvents:     orderEvents,
		logger:          logger,
	}, nil
}

// Close closes the trading bot
func (b *TradingBot) Close() {
	if err := b.tradingStrategy.Close(); err != nil {
		b.logger.Warn("Failed to close trading strategy", zap.Error(err))
	}
}

// Run drives the strategy until ctx is done. Ticks and order events are handled
// on this goroutine only.
func (b *TradingBot) Run(ctx context.Context) error {
	if err := b.tradingStrategy.Initialize(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize trading strategy")
	}

	sub := b.orderEvents.Subscribe()
	defer b.orderEvents.Unsubscribe(sub)

	ticker := time.NewTicker(b.Config.PollInterval)
	defer ticker.Stop()

	b.logger.Info("Starting trading loop", zap.Duration("poll_interval", b.Config.PollInterval))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context done, stopping trading bot run loop.")
			return ctx.Err()
		case event := <-sub:
			b.tradingStrategy.OnOrderEvent(event)
		case <-ticker.C:
			b.tick(ctx)
			b.deliverPending(sub)
		}
	}
}

func (b *TradingBot) tick(ctx context.Context) {
	b.logger.Debug("Trade service tick")

	if err := b.poller.Poll(ctx); err != nil {
		b.logger.Warn("Failed to refresh order states", zap.Error(err))
	}

	tradeEvent, err := b.tradingStrategy.Trade(ctx)
	if err != nil {
		b.logger.Error("Trading strategy failed", zap.Error(err))
		return
	}
	if tradeEvent != nil {
		b.logger.Info("Trade event occurred", zap.Stringer("event", tradeEvent))
	}
}

func (b *TradingBot) deliverPending(sub <-chan domain.OrderEvent) {
	for {
		select {
		case event := <-sub:
			b.tradingStrategy.OnOrderEvent(event)
		default:
			return
		}
	}
}
