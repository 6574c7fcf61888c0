// Package trader holds a testify mock of the order surface used by the strategy.
package trader

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/vadiminshakov/twap/internal/domain"
)

type Trader struct {
	mock.Mock
}

func (m *Trader) ActiveOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *Trader) Cancel(ctx context.Context, pair domain.Pair, clientOrderID string) error {
	args := m.Called(ctx, pair, clientOrderID)
	return args.Error(0)
}

func (m *Trader) Buy(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error) {
	args := m.Called(ctx, pair, amount, orderType, price)
	return args.String(0), args.Error(1)
}

func (m *Trader) Sell(ctx context.Context, pair domain.Pair, amount decimal.Decimal, orderType domain.OrderType, price decimal.Decimal) (string, error) {
	args := m.Called(ctx, pair, amount, orderType, price)
	return args.String(0), args.Error(1)
}

// NewTrader returns a mock whose expectations are asserted when the test ends.
func NewTrader(t interface {
	mock.TestingT
	Cleanup(func())
}) *Trader {
	m := &Trader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
