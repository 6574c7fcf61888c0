package trader

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/twap/internal/domain"
)

// RateLimited throttles every call to the wrapped Trader through one limiter,
// keeping a bot under the exchange's REST request weight.
type RateLimited struct {
	next    Trader
	limiter *rate.Limiter
}

func NewRateLimited(next Trader, limiter *rate.Limiter) *RateLimited {
	return &RateLimited{next: next, limiter: limiter}
}

func (r *RateLimited) Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Buy(ctx, amount, price, orderType, clientOrderID)
}

func (r *RateLimited) Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Sell(ctx, amount, price, orderType, clientOrderID)
}

func (r *RateLimited) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.OpenOrders(ctx)
}

func (r *RateLimited) Cancel(ctx context.Context, clientOrderID string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Cancel(ctx, clientOrderID)
}

func (r *RateLimited) OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.OrderStatus{}, err
	}
	return r.next.OrderStatus(ctx, clientOrderID)
}
