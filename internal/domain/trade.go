package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeEvent trading event.
type TradeEvent struct {
	// OrderID client order ID of the placed order.
	OrderID string
	// Side buy or sell trade.
	Side Side
	// Pair trading pair.
	Pair Pair
	// Amount quantity of the base currency.
	Amount decimal.Decimal
	// QuoteAmount quote currency spent or received at Price.
	QuoteAmount decimal.Decimal
	// Price limit price of the order.
	Price decimal.Decimal
}

// String returns a human-readable string representation.
func (t *TradeEvent) String() string {
	return fmt.Sprintf("%s side: %s amount: %s price: %s", t.Pair.String(), t.Side.String(), t.Amount.String(), t.Price.String())
}
