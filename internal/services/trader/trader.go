// Package trader places, inspects and cancels orders on a single exchange pair.
package trader

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/twap/internal/domain"
)

const (
	// base amounts are rounded down to this many decimals before submission
	amountPrecision = 4
	pricePrecision  = 8
)

// Trader is an exchange connector bound to one trading pair.
type Trader interface {
	// Buy and Sell submit an order under the given client order ID.
	// amount is in BASE currency, price is ignored for market orders.
	Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error
	// OpenOrders lists open orders for the pair that were placed by this bot.
	OpenOrders(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, clientOrderID string) error
	OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error)
}

// Pricer defines an interface for getting the price of a trading pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error)
}

func parseDecimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
