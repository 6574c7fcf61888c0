package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientOrderPrefix marks orders placed by this bot. Open orders without it are
// never touched.
const ClientOrderPrefix = "twap-"

// clientOrderIDLength keeps IDs under the 36 char limit of Binance and Bybit.
const clientOrderIDLength = 24

// NewClientOrderID returns a fresh client order ID owned by this bot.
func NewClientOrderID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return ClientOrderPrefix + id[:clientOrderIDLength]
}

// IsOwnOrder reports whether the client order ID was issued by NewClientOrderID.
func IsOwnOrder(clientOrderID string) bool {
	return strings.HasPrefix(clientOrderID, ClientOrderPrefix)
}

// Order is an order as seen by the strategy.
type Order struct {
	Pair          Pair
	ClientOrderID string
	Side          Side
	Type          OrderType
	// Amount quantity of the base currency.
	Amount decimal.Decimal
	Price  decimal.Decimal
}

// OrderState is the exchange-side lifecycle state of an order.
type OrderState int

const (
	OrderStateOpen OrderState = iota
	OrderStatePartiallyFilled
	OrderStateFilled
	OrderStateCancelled
	OrderStateRejected
	// OrderStateUnknown means the exchange does not know the order (yet).
	OrderStateUnknown
)

// Terminal reports whether no further updates are expected for the order.
func (s OrderState) Terminal() bool {
	switch s {
	case OrderStateFilled, OrderStateCancelled, OrderStateRejected:
		return true
	}
	return false
}

func (s OrderState) String() string {
	switch s {
	case OrderStateOpen:
		return "open"
	case OrderStatePartiallyFilled:
		return "partially_filled"
	case OrderStateFilled:
		return "filled"
	case OrderStateCancelled:
		return "cancelled"
	case OrderStateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// OrderStatus is a point-in-time snapshot of an order on the exchange.
type OrderStatus struct {
	State OrderState
	// Executed cumulative filled quantity in base currency.
	Executed decimal.Decimal
}
