// Package pricer holds a testify mock of the strategy's price source.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/vadiminshakov/twap/internal/domain"
)

type Pricer struct {
	mock.Mock
}

func (m *Pricer) GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error) {
	args := m.Called(ctx, pair, isBuy)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// NewPricer returns a mock whose expectations are asserted when the test ends.
func NewPricer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Pricer {
	m := &Pricer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
