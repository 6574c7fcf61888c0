package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind enumerates the order lifecycle notifications a strategy receives.
type EventKind int

const (
	EventBuyOrderCreated EventKind = iota
	EventSellOrderCreated
	EventOrderFilled
	EventOrderFailed
	EventOrderCancelled
	EventBuyOrderCompleted
	EventSellOrderCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventBuyOrderCreated:
		return "buy_order_created"
	case EventSellOrderCreated:
		return "sell_order_created"
	case EventOrderFilled:
		return "order_filled"
	case EventOrderFailed:
		return "order_failed"
	case EventOrderCancelled:
		return "order_cancelled"
	case EventBuyOrderCompleted:
		return "buy_order_completed"
	case EventSellOrderCompleted:
		return "sell_order_completed"
	default:
		return "unknown"
	}
}

// CreatedEventKind returns the created notification for the side.
func CreatedEventKind(side Side) EventKind {
	if side.IsBuy() {
		return EventBuyOrderCreated
	}
	return EventSellOrderCreated
}

// CompletedEventKind returns the completed notification for the side.
func CompletedEventKind(side Side) EventKind {
	if side.IsBuy() {
		return EventBuyOrderCompleted
	}
	return EventSellOrderCompleted
}

// OrderEvent is a single order lifecycle notification.
type OrderEvent struct {
	Kind      EventKind
	OrderID   string
	Pair      Pair
	Side      Side
	Amount    decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
	// Reason is set for failed orders.
	Reason string
}

// String returns a human-readable string representation.
func (e OrderEvent) String() string {
	return fmt.Sprintf("%s order: %s kind: %s", e.Pair.String(), e.OrderID, e.Kind.String())
}
