package internal

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/twap/internal/clients"
	"github.com/vadiminshakov/twap/internal/domain"
	"github.com/vadiminshakov/twap/internal/services/pricer"
	"github.com/vadiminshakov/twap/internal/services/trader"
	"github.com/vadiminshakov/twap/pkg/retrier"
)

// REST request budgets per second, kept well under the exchanges' published limits.
const (
	binanceRequestsPerSecond     = 10
	bybitRequestsPerSecond       = 10
	hyperliquidRequestsPerSecond = 5
)

type exchangeService interface {
	Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	OpenOrders(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, clientOrderID string) error
	OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error)
}

type priceService interface {
	GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error)
}

// serviceProvider defines a factory interface for creating platform-specific services.
type serviceProvider interface {
	Trader(pair domain.Pair) (exchangeService, error)
	Pricer() (priceService, error)
}

// newServiceProvider creates a new service provider based on the client type.
// This is the single point of truth for dispatching to platform-specific implementations.
func newServiceProvider(client any, logger *zap.Logger) (serviceProvider, error) {
	switch c := client.(type) {
	case *binance.Client:
		return &binanceProvider{client: c, logger: logger}, nil
	case *bybit.Client:
		return &bybitProvider{client: c, logger: logger}, nil
	case *clients.SimulateClient:
		return &simulateProvider{client: c, logger: logger}, nil
	case *clients.HyperliquidClient:
		return &hyperliquidProvider{client: c, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

func limited(t trader.Trader, perSecond int) exchangeService {
	return trader.NewRateLimited(t, rate.NewLimiter(rate.Limit(perSecond), 1))
}

func retrying(p pricer.Pricer, logger *zap.Logger) priceService {
	return pricer.NewRetrying(p, retrier.New(
		retrier.WithMaxRetries(2),
		retrier.WithInitialInterval(500*time.Millisecond),
		retrier.WithMaxInterval(2*time.Second),
	), logger)
}

type binanceProvider struct {
	client *binance.Client
	logger *zap.Logger
}

func (p *binanceProvider) Trader(pair domain.Pair) (exchangeService, error) {
	t, err := trader.NewBinanceTrader(p.client, pair)
	if err != nil {
		return nil, err
	}
	return limited(t, binanceRequestsPerSecond), nil
}
func (p *binanceProvider) Pricer() (priceService, error) {
	return retrying(pricer.NewBinancePricer(p.client), p.logger), nil
}

type bybitProvider struct {
	client *bybit.Client
	logger *zap.Logger
}

func (p *bybitProvider) Trader(pair domain.Pair) (exchangeService, error) {
	t, err := trader.NewBybitTrader(p.client, pair)
	if err != nil {
		return nil, err
	}
	return limited(t, bybitRequestsPerSecond), nil
}
func (p *bybitProvider) Pricer() (priceService, error) {
	return retrying(pricer.NewBybitPricer(p.client), p.logger), nil
}

type simulateProvider struct {
	client *clients.SimulateClient
	logger *zap.Logger
}

func (p *simulateProvider) Trader(pair domain.Pair) (exchangeService, error) {
	t, err := trader.NewSimulateTrader(pair, p.logger, pricer.NewBinancePricer(p.client.GetBinanceClient()))
	if err != nil {
		return nil, err
	}
	return t, nil
}
func (p *simulateProvider) Pricer() (priceService, error) {
	return retrying(pricer.NewBinancePricer(p.client.GetBinanceClient()), p.logger), nil
}

type hyperliquidProvider struct {
	client *clients.HyperliquidClient
	logger *zap.Logger
}

func (p *hyperliquidProvider) Trader(pair domain.Pair) (exchangeService, error) {
	// one limiter for the wrapper and the per-order queries inside OpenOrders
	limiter := rate.NewLimiter(rate.Limit(hyperliquidRequestsPerSecond), 1)
	t, err := trader.NewHyperliquidTrader(p.client.Exchange(), p.client.AccountAddress(), pair, limiter)
	if err != nil {
		return nil, err
	}
	return trader.NewRateLimited(t, limiter), nil
}
func (p *hyperliquidProvider) Pricer() (priceService, error) {
	return retrying(pricer.NewHyperliquidPricer(p.client.Exchange().Info()), p.logger), nil
}
