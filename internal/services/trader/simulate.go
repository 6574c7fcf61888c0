package trader

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/internal/domain"
)

var defaultSimulateQuoteBalance = decimal.NewFromInt(10000)

// SimulateTrader is an in-memory spot exchange priced by a live pricer.
// Limit orders reserve funds when placed and fill at their limit price once the
// market touches it: buys when the ask is at or below the limit, sells when the bid
// is at or above it. Matching happens lazily whenever an order's status is queried.
type SimulateTrader struct {
	mu     sync.Mutex
	pair   domain.Pair
	logger *zap.Logger
	wallet map[string]decimal.Decimal
	orders map[string]*simOrder
	pricer Pricer
}

type simOrder struct {
	order    domain.Order
	state    domain.OrderState
	executed decimal.Decimal
	// reserved funds locked by the order: quote for buys, base for sells
	reserved decimal.Decimal
}

// NewSimulateTrader creates a new SimulateTrader with an empty base balance and
// 10000 units of the quote currency.
func NewSimulateTrader(pair domain.Pair, logger *zap.Logger, pricer Pricer) (*SimulateTrader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricer == nil {
		return nil, errors.New("pricer is required for SimulateTrader")
	}

	t := &SimulateTrader{
		pair:   pair,
		logger: logger,
		wallet: map[string]decimal.Decimal{pair.From: decimal.Zero, pair.To: defaultSimulateQuoteBalance},
		orders: make(map[string]*simOrder),
		pricer: pricer,
	}
	logger.Info("simulate init",
		zap.String("pair", pair.String()),
		zap.String("base", t.wallet[pair.From].String()),
		zap.String("quote", t.wallet[pair.To].String()))
	return t, nil
}

func (t *SimulateTrader) Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, domain.SideBuy, amount, price, orderType, clientOrderID)
}

func (t *SimulateTrader) Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, domain.SideSell, amount, price, orderType, clientOrderID)
}

func (t *SimulateTrader) place(ctx context.Context, side domain.Side, amount, price decimal.Decimal, orderType domain.OrderType, id string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%s amount must be positive, got %s", side.String(), amount.String())
	}

	if orderType == domain.OrderTypeMarket {
		marketPrice, err := t.pricer.GetPrice(ctx, t.pair, side.IsBuy())
		if err != nil {
			return errors.Wrapf(err, "failed to get price for simulated %s", side.String())
		}
		price = marketPrice
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%s price must be positive, got %s", side.String(), price.String())
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.orders[id]; exists {
		return fmt.Errorf("duplicate client order id %s", id)
	}

	currency, reserve := t.pair.To, amount.Mul(price)
	if side == domain.SideSell {
		currency, reserve = t.pair.From, amount
	}
	if t.wallet[currency].LessThan(reserve) {
		return fmt.Errorf("insufficient %s balance: have %s need %s",
			currency,
			t.wallet[currency].String(),
			reserve.String())
	}
	t.wallet[currency] = t.wallet[currency].Sub(reserve)

	o := &simOrder{
		order: domain.Order{
			Pair:          t.pair,
			ClientOrderID: id,
			Side:          side,
			Type:          orderType,
			Amount:        amount,
			Price:         price,
		},
		state:    domain.OrderStateOpen,
		executed: decimal.Zero,
		reserved: reserve,
	}
	t.orders[id] = o

	if orderType == domain.OrderTypeMarket {
		t.fill(o)
	}

	t.logger.Info("Simulated order placed",
		zap.String("id", id),
		zap.String("side", side.String()),
		zap.String("amount", amount.String()),
		zap.String("price", price.String()))
	return nil
}

func (t *SimulateTrader) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	open := make([]domain.Order, 0, len(t.orders))
	for _, o := range t.orders {
		if o.state == domain.OrderStateOpen {
			open = append(open, o.order)
		}
	}
	return open, nil
}

func (t *SimulateTrader) Cancel(ctx context.Context, clientOrderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.orders[clientOrderID]
	if !ok {
		return fmt.Errorf("order %s not found", clientOrderID)
	}
	if o.state != domain.OrderStateOpen {
		return fmt.Errorf("order %s is %s", clientOrderID, o.state.String())
	}

	currency := t.pair.To
	if o.order.Side == domain.SideSell {
		currency = t.pair.From
	}
	t.wallet[currency] = t.wallet[currency].Add(o.reserved)
	o.reserved = decimal.Zero
	o.state = domain.OrderStateCancelled

	t.logger.Info("Simulated order cancelled", zap.String("id", clientOrderID))
	return nil
}

// OrderStatus matches the order against the current market before reporting it.
func (t *SimulateTrader) OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error) {
	t.mu.Lock()
	o, ok := t.orders[clientOrderID]
	if !ok {
		t.mu.Unlock()
		return domain.OrderStatus{State: domain.OrderStateUnknown, Executed: decimal.Zero}, nil
	}
	open, side := o.state == domain.OrderStateOpen, o.order.Side
	t.mu.Unlock()

	if open {
		price, err := t.pricer.GetPrice(ctx, t.pair, side.IsBuy())
		if err != nil {
			return domain.OrderStatus{}, errors.Wrap(err, "failed to get price for simulated matching")
		}

		t.mu.Lock()
		if o.state == domain.OrderStateOpen && crosses(o.order, price) {
			t.fill(o)
		}
		t.mu.Unlock()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.OrderStatus{State: o.state, Executed: o.executed}, nil
}

// GetBalance returns the free balance of the currency.
func (t *SimulateTrader) GetBalance(ctx context.Context, currency string) (decimal.Decimal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wallet[currency], nil
}

// crosses reports whether a resting limit order is marketable at price.
func crosses(o domain.Order, price decimal.Decimal) bool {
	if o.Side == domain.SideBuy {
		return price.LessThanOrEqual(o.Price)
	}
	return price.GreaterThanOrEqual(o.Price)
}

// fill executes the order at its price. Caller holds t.mu.
func (t *SimulateTrader) fill(o *simOrder) {
	if o.order.Side == domain.SideBuy {
		t.wallet[t.pair.From] = t.wallet[t.pair.From].Add(o.order.Amount)
	} else {
		t.wallet[t.pair.To] = t.wallet[t.pair.To].Add(o.order.Amount.Mul(o.order.Price))
	}
	o.reserved = decimal.Zero
	o.executed = o.order.Amount
	o.state = domain.OrderStateFilled

	t.logger.Info("Simulated order filled",
		zap.String("id", o.order.ClientOrderID),
		zap.String("side", o.order.Side.String()),
		zap.String("amount", o.order.Amount.String()),
		zap.String("price", o.order.Price.String()))
}
