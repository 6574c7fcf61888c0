// Package twap implements a randomized time-weighted average price strategy.
//
// Every tick the strategy either waits or, once the randomized trade interval has
// elapsed, cancels its open orders and places one limit order of randomized quote
// size at the touch. Order sides come in homogeneous runs drawn at random.
package twap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/internal/domain"
)

const (
	minSequenceCount = 15
	maxSequenceCount = 30
)

// ErrNonPositivePrice is returned when the exchange quotes a zero or negative price.
var ErrNonPositivePrice = errors.New("non-positive price")

type tradersvc interface {
	// ActiveOrders returns open orders placed by this bot.
	ActiveOrders(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, pair domain.Pair, clientOrderID string) error
	// Buy and Sell place an order and return its client order ID.
	// amount is in BASE currency.
	Buy(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error)
	Sell(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error)
}

type pricer interface {
	// GetPrice returns the ask for buys and the bid for sells.
	GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error)
}

// randSource is satisfied by *rand.Rand from math/rand/v2.
type randSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Params holds the fixed strategy configuration.
type Params struct {
	// TradeInterval mean seconds between orders.
	TradeInterval int
	// TradeIntervalJitter seconds; intervals are drawn from [TradeInterval-jitter, TradeInterval+jitter).
	TradeIntervalJitter int
	// QuoteAmount mean order size in quote currency.
	QuoteAmount int
	// QuoteAmountJitter quote units; sizes are drawn from [QuoteAmount-jitter, QuoteAmount+jitter).
	QuoteAmountJitter int
	// InitialBuys number of buys queued before the first random run.
	InitialBuys int
}

// Validate checks that every random range is non-empty and non-negative.
func (p Params) Validate() error {
	if p.TradeIntervalJitter < 1 {
		return fmt.Errorf("trade interval jitter must be at least 1, got %d", p.TradeIntervalJitter)
	}
	if p.TradeInterval-p.TradeIntervalJitter < 0 {
		return fmt.Errorf("trade interval %d must not be less than its jitter %d", p.TradeInterval, p.TradeIntervalJitter)
	}
	if p.QuoteAmountJitter < 1 {
		return fmt.Errorf("quote amount jitter must be at least 1, got %d", p.QuoteAmountJitter)
	}
	if p.QuoteAmount-p.QuoteAmountJitter < 1 {
		return fmt.Errorf("quote amount %d must exceed its jitter %d", p.QuoteAmount, p.QuoteAmountJitter)
	}
	if p.InitialBuys < 0 {
		return fmt.Errorf("initial buys must not be negative, got %d", p.InitialBuys)
	}
	return nil
}

// TWAPStrategy executes randomized TWAP trades for one pair on one exchange.
// It is not safe for concurrent use; the bot calls it from a single goroutine.
type TWAPStrategy struct {
	exchange string
	pair     domain.Pair
	params   Params
	pricer   pricer
	trader   tradersvc
	l        *zap.Logger
	rnd      randSource

	lastOrderedAt     time.Time
	nextTradeInterval time.Duration
	// tradeSequence is a stack, the last element is traded first.
	tradeSequence []bool
	discarded     int

	// clock (can be overridden for testing)
	now func() time.Time
}

// NewTWAPStrategy returns a configured TWAP strategy.
func NewTWAPStrategy(l *zap.Logger, exchange string, pair domain.Pair, params Params, pricer pricer, trader tradersvc) (*TWAPStrategy, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid TWAP params")
	}
	if pricer == nil || trader == nil {
		return nil, errors.New("pricer and trader are required")
	}
	if l == nil {
		l = zap.NewNop()
	}

	sequence := make([]bool, params.InitialBuys)
	for i := range sequence {
		sequence[i] = true
	}

	return &TWAPStrategy{
		exchange:          exchange,
		pair:              pair,
		params:            params,
		pricer:            pricer,
		trader:            trader,
		l:                 l,
		rnd:               globalRand{},
		lastOrderedAt:     time.Unix(0, 0),
		nextTradeInterval: time.Duration(params.TradeInterval) * time.Second,
		tradeSequence:     sequence,
		now:               time.Now,
	}, nil
}

// Initialize logs the starting configuration. TWAP keeps no state between runs.
func (s *TWAPStrategy) Initialize(ctx context.Context) error {
	s.l.Info("TWAP strategy initialized",
		zap.String("exchange", s.exchange),
		zap.String("pair", s.pair.String()),
		zap.Int("trade_interval", s.params.TradeInterval),
		zap.Int("trade_interval_jitter", s.params.TradeIntervalJitter),
		zap.Int("quote_amount", s.params.QuoteAmount),
		zap.Int("quote_amount_jitter", s.params.QuoteAmountJitter),
		zap.Int("queued_buys", len(s.tradeSequence)))
	return nil
}

// Trade performs one tick: it refills the side sequence if needed and places an
// order once the current trade interval has elapsed.
// It returns a nil event while waiting and when placement was discarded.
func (s *TWAPStrategy) Trade(ctx context.Context) (*domain.TradeEvent, error) {
	if len(s.tradeSequence) == 0 {
		s.refillSequence()
	}

	now := s.now()
	if now.Sub(s.lastOrderedAt) <= s.nextTradeInterval {
		return nil, nil
	}

	if err := s.cancelAllOrders(ctx); err != nil {
		return nil, err
	}

	isBuy := s.popSide()

	price, err := s.pricer.GetPrice(ctx, s.pair, isBuy)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s price", s.pair.String())
	}
	if !price.IsPositive() {
		return nil, errors.Wrapf(ErrNonPositivePrice, "%s price %s", s.pair.String(), price.String())
	}

	quoteAmount := decimal.NewFromInt(int64(s.randRange(
		s.params.QuoteAmount-s.params.QuoteAmountJitter,
		s.params.QuoteAmount+s.params.QuoteAmountJitter,
	)))
	amount := quoteAmount.Div(price)

	orderID, err := s.place(ctx, isBuy, amount, price)
	if err != nil {
		s.discardPlacement(isBuy, amount, price, err)
		return nil, nil
	}

	s.lastOrderedAt = now
	s.nextTradeInterval = time.Duration(s.randRange(
		s.params.TradeInterval-s.params.TradeIntervalJitter,
		s.params.TradeInterval+s.params.TradeIntervalJitter,
	)) * time.Second

	s.l.Debug("Next TWAP order scheduled",
		zap.Time("last_ordered_at", s.lastOrderedAt),
		zap.Duration("next_trade_interval", s.nextTradeInterval),
		zap.Int("remaining_in_run", len(s.tradeSequence)))

	return &domain.TradeEvent{
		OrderID:     orderID,
		Side:        domain.SideFromBool(isBuy),
		Pair:        s.pair,
		Amount:      amount,
		QuoteAmount: quoteAmount,
		Price:       price,
	}, nil
}

// Discarded returns how many order placements failed and were dropped.
func (s *TWAPStrategy) Discarded() int {
	return s.discarded
}

// Close releases nothing; present to satisfy the bot's strategy contract.
func (s *TWAPStrategy) Close() error {
	return nil
}

func (s *TWAPStrategy) place(ctx context.Context, isBuy bool, amount, price decimal.Decimal) (string, error) {
	if isBuy {
		return s.trader.Buy(ctx, s.pair, amount, domain.OrderTypeLimit, price)
	}
	return s.trader.Sell(ctx, s.pair, amount, domain.OrderTypeLimit, price)
}

// discardPlacement drops a failed placement without retrying or touching the schedule.
func (s *TWAPStrategy) discardPlacement(isBuy bool, amount, price decimal.Decimal, cause error) {
	s.discarded++
	s.l.Warn("Order placement failed, skipping this tick",
		zap.String("exchange", s.exchange),
		zap.String("pair", s.pair.String()),
		zap.String("side", domain.SideFromBool(isBuy).String()),
		zap.String("amount", amount.String()),
		zap.String("price", price.String()),
		zap.Int("discarded_total", s.discarded),
		zap.Error(cause))
}

// cancelAllOrders cancels every open order owned by the strategy.
// Cancels are fire-and-forget: a failed cancel is logged and the rest still go out.
func (s *TWAPStrategy) cancelAllOrders(ctx context.Context) error {
	orders, err := s.trader.ActiveOrders(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to list active orders on %s", s.exchange)
	}

	for _, order := range orders {
		if err := s.trader.Cancel(ctx, order.Pair, order.ClientOrderID); err != nil {
			s.l.Warn("Failed to cancel order",
				zap.String("exchange", s.exchange),
				zap.String("pair", order.Pair.String()),
				zap.String("order_id", order.ClientOrderID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *TWAPStrategy) refillSequence() {
	count := s.randRange(minSequenceCount, maxSequenceCount)
	isBuy := s.rnd.IntN(2) == 0

	sequence := make([]bool, count)
	for i := range sequence {
		sequence[i] = isBuy
	}
	s.tradeSequence = sequence

	s.l.Info("New trade run drawn",
		zap.String("side", domain.SideFromBool(isBuy).String()),
		zap.Int("orders", count))
}

func (s *TWAPStrategy) popSide() bool {
	last := len(s.tradeSequence) - 1
	isBuy := s.tradeSequence[last]
	s.tradeSequence = s.tradeSequence[:last]
	return isBuy
}

// randRange returns an integer uniformly drawn from [lo, hi).
func (s *TWAPStrategy) randRange(lo, hi int) int {
	return lo + s.rnd.IntN(hi-lo)
}
