// Package tracker places orders on behalf of a strategy and turns exchange order
// state into lifecycle events.
package tracker

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/internal/domain"
)

// an order the exchange stops reporting is dropped after this many polls
const maxUnknownPolls = 3

type exchange interface {
	Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	OpenOrders(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, clientOrderID string) error
	OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error)
}

type publisher interface {
	Publish(e domain.OrderEvent)
}

type trackedOrder struct {
	order    domain.Order
	executed decimal.Decimal
	unknown  int
}

// Tracker wraps an exchange connector for one pair.
type Tracker struct {
	pair      domain.Pair
	exchange  exchange
	publisher publisher
	l         *zap.Logger

	mu      sync.Mutex
	tracked map[string]*trackedOrder

	newID func() string
	now   func() time.Time
}

func New(pair domain.Pair, ex exchange, pub publisher, l *zap.Logger) *Tracker {
	if l == nil {
		l = zap.NewNop()
	}
	return &Tracker{
		pair:      pair,
		exchange:  ex,
		publisher: pub,
		l:         l,
		tracked:   make(map[string]*trackedOrder),
		newID:     domain.NewClientOrderID,
		now:       time.Now,
	}
}

// ActiveOrders returns open orders of the pair carrying this bot's client order prefix.
func (t *Tracker) ActiveOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := t.exchange.OpenOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list open orders")
	}

	own := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if domain.IsOwnOrder(o.ClientOrderID) && o.Pair == t.pair {
			own = append(own, o)
		}
	}
	return own, nil
}

func (t *Tracker) Cancel(ctx context.Context, pair domain.Pair, clientOrderID string) error {
	if err := t.checkPair(pair); err != nil {
		return err
	}
	return t.exchange.Cancel(ctx, clientOrderID)
}

func (t *Tracker) Buy(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error) {
	return t.place(ctx, domain.SideBuy, pair, amount, orderType, price)
}

func (t *Tracker) Sell(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error) {
	return t.place(ctx, domain.SideSell, pair, amount, orderType, price)
}

func (t *Tracker) place(ctx context.Context, side domain.Side, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error) {
	if err := t.checkPair(pair); err != nil {
		return "", err
	}

	order := domain.Order{
		Pair:          pair,
		ClientOrderID: t.newID(),
		Side:          side,
		Type:          orderType,
		Amount:        amount,
		Price:         price,
	}

	var err error
	if side.IsBuy() {
		err = t.exchange.Buy(ctx, amount, price, orderType, order.ClientOrderID)
	} else {
		err = t.exchange.Sell(ctx, amount, price, orderType, order.ClientOrderID)
	}
	if err != nil {
		t.publish(domain.EventOrderFailed, order, amount, err.Error())
		return "", errors.Wrapf(err, "failed to place %s order", side.String())
	}

	t.mu.Lock()
	t.tracked[order.ClientOrderID] = &trackedOrder{order: order, executed: decimal.Zero}
	t.mu.Unlock()

	t.publish(domain.CreatedEventKind(side), order, amount, "")
	return order.ClientOrderID, nil
}

// Poll refreshes the status of every tracked order and publishes what changed.
// Orders that reached a terminal state are no longer tracked.
func (t *Tracker) Poll(ctx context.Context) error {
	t.mu.Lock()
	ids := make([]string, 0, len(t.tracked))
	for id := range t.tracked {
		ids = append(ids, id)
	}
	t.mu.Unlock()
	slices.Sort(ids)

	var firstErr error
	for _, id := range ids {
		status, err := t.exchange.OrderStatus(ctx, id)
		if err != nil {
			t.l.Warn("Failed to get order status", zap.String("order_id", id), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to get status of order %s", id)
			}
			continue
		}
		t.apply(id, status)
	}
	return firstErr
}

// Tracked returns the number of orders awaiting a terminal state.
func (t *Tracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracked)
}

func (t *Tracker) apply(id string, status domain.OrderStatus) {
	t.mu.Lock()
	tracked, ok := t.tracked[id]
	if !ok {
		t.mu.Unlock()
		return
	}

	var fill decimal.Decimal
	if status.Executed.GreaterThan(tracked.executed) {
		fill = status.Executed.Sub(tracked.executed)
		tracked.executed = status.Executed
	}

	if status.State == domain.OrderStateUnknown {
		tracked.unknown++
	} else {
		tracked.unknown = 0
	}

	drop := status.State.Terminal() || tracked.unknown >= maxUnknownPolls
	if drop {
		delete(t.tracked, id)
	}
	order := tracked.order
	t.mu.Unlock()

	if fill.IsPositive() {
		t.publish(domain.EventOrderFilled, order, fill, "")
	}

	switch status.State {
	case domain.OrderStateFilled:
		t.publish(domain.CompletedEventKind(order.Side), order, status.Executed, "")
	case domain.OrderStateCancelled:
		t.publish(domain.EventOrderCancelled, order, status.Executed, "")
	case domain.OrderStateRejected:
		t.publish(domain.EventOrderFailed, order, order.Amount, "rejected by exchange")
	case domain.OrderStateUnknown:
		if drop {
			t.l.Warn("Order is unknown to the exchange, no longer tracking it", zap.String("order_id", id))
		}
	}
}

func (t *Tracker) publish(kind domain.EventKind, order domain.Order, amount decimal.Decimal, reason string) {
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(domain.OrderEvent{
		Kind:      kind,
		OrderID:   order.ClientOrderID,
		Pair:      order.Pair,
		Side:      order.Side,
		Amount:    amount,
		Price:     order.Price,
		Timestamp: t.now(),
		Reason:    reason,
	})
}

func (t *Tracker) checkPair(pair domain.Pair) error {
	if pair != t.pair {
		return errors.Errorf("pair %s is not traded here, expected %s", pair.String(), t.pair.String())
	}
	return nil
}
