package internal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/config"
	"github.com/vadiminshakov/twap/internal/clients"
	"github.com/vadiminshakov/twap/internal/domain"
	"github.com/vadiminshakov/twap/internal/events"
)

func testConfig(platform string) config.Config {
	return config.Config{
		Platform:            platform,
		Pair:                domain.Pair{From: "BTC", To: "USDT"},
		PollInterval:        time.Millisecond,
		TradeInterval:       180,
		TradeIntervalJitter: 60,
		QuoteAmount:         10,
		QuoteAmountJitter:   5,
		InitialBuys:         5,
	}
}

func TestNewTradingBot(t *testing.T) {
	tests := []struct {
		name             string
		conf             config.Config
		client           any
		expectedErrorMsg string
	}{
		{
			name:             "Unsupported Client",
			conf:             testConfig(config.PlatformBinance),
			client:           nil,
			expectedErrorMsg: "unsupported client type",
		},
		{
			name: "Invalid Config",
			conf: func() config.Config {
				c := testConfig(config.PlatformSimulate)
				c.QuoteAmountJitter = 0
				return c
			}(),
			client:           clients.NewSimulateClient(),
			expectedErrorMsg: "invalid config",
		},
		{
			name:   "Valid Binance Platform",
			conf:   testConfig(config.PlatformBinance),
			client: &binance.Client{},
		},
		{
			name:   "Valid Bybit Platform",
			conf:   testConfig(config.PlatformBybit),
			client: &bybit.Client{},
		},
		{
			name:   "Valid Simulate Platform",
			conf:   testConfig(config.PlatformSimulate),
			client: clients.NewSimulateClient(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, err := NewTradingBot(tt.conf, tt.client, zap.NewNop())

			if tt.expectedErrorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErrorMsg)
				assert.Nil(t, bot)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, bot)
			assert.Equal(t, tt.conf, bot.Config)
		})
	}
}

// fakeStrategy publishes one order event from every Trade call.
type fakeStrategy struct {
	mu          sync.Mutex
	publisher   *events.OrderBroadcaster
	initialized bool
	trades      int
	received    []domain.OrderEvent
	tradeErr    error
	closed      bool
}

func (s *fakeStrategy) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}

func (s *fakeStrategy) Trade(ctx context.Context) (*domain.TradeEvent, error) {
	s.mu.Lock()
	s.trades++
	s.mu.Unlock()

	s.publisher.Publish(domain.OrderEvent{Kind: domain.EventBuyOrderCreated, OrderID: "twap-1"})
	if s.tradeErr != nil {
		return nil, s.tradeErr
	}
	return &domain.TradeEvent{OrderID: "twap-1", Side: domain.SideBuy}, nil
}

func (s *fakeStrategy) OnOrderEvent(event domain.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, event)
}

func (s *fakeStrategy) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStrategy) snapshot() (trades, received int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades, len(s.received)
}

type countingPoller struct {
	mu    sync.Mutex
	polls int
	err   error
}

func (p *countingPoller) Poll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	return p.err
}

func newTestBot(strategy *fakeStrategy, poller *countingPoller, broadcaster *events.OrderBroadcaster) *TradingBot {
	return &TradingBot{
		Config:          testConfig(config.PlatformSimulate),
		tradingStrategy: strategy,
		poller:          poller,
		orderEvents:     broadcaster,
		logger:          zap.NewNop(),
	}
}

func TestTradingBot_RunDeliversTicksAndEvents(t *testing.T) {
	broadcaster := events.NewOrderBroadcaster(16)
	strategy := &fakeStrategy{publisher: broadcaster}
	poller := &countingPoller{}
	bot := newTestBot(strategy, poller, broadcaster)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		trades, received := strategy.snapshot()
		return trades >= 3 && received >= 3
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop after context cancellation")
	}

	assert.True(t, strategy.initialized)
	poller.mu.Lock()
	assert.GreaterOrEqual(t, poller.polls, 3)
	poller.mu.Unlock()

	bot.Close()
	assert.True(t, strategy.closed)
}

func TestTradingBot_RunSurvivesErrors(t *testing.T) {
	broadcaster := events.NewOrderBroadcaster(16)
	strategy := &fakeStrategy{publisher: broadcaster, tradeErr: errors.New("price lookup failed")}
	poller := &countingPoller{err: errors.New("status lookup failed")}
	bot := newTestBot(strategy, poller, broadcaster)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		trades, _ := strategy.snapshot()
		return trades >= 3
	}, 2*time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
