package twap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/internal/domain"
)

// OnOrderEvent logs an order lifecycle notification. It never changes strategy state.
func (s *TWAPStrategy) OnOrderEvent(event domain.OrderEvent) {
	fields := []zap.Field{
		zap.String("exchange", s.exchange),
		zap.String("pair", event.Pair.String()),
		zap.String("order_id", event.OrderID),
		zap.String("event", event.Kind.String()),
	}

	switch event.Kind {
	case domain.EventBuyOrderCreated:
		s.l.Info(fmt.Sprintf("The buy order %s has been created", event.OrderID), fields...)
	case domain.EventSellOrderCreated:
		s.l.Info(fmt.Sprintf("The sell order %s has been created", event.OrderID), fields...)
	case domain.EventOrderFilled:
		fields = append(fields, zap.String("amount", event.Amount.String()), zap.String("price", event.Price.String()))
		s.l.Info(fmt.Sprintf("The order %s has been filled", event.OrderID), fields...)
	case domain.EventOrderFailed:
		fields = append(fields, zap.String("reason", event.Reason))
		s.l.Info(fmt.Sprintf("The order %s failed", event.OrderID), fields...)
	case domain.EventOrderCancelled:
		s.l.Info(fmt.Sprintf("The order %s has been cancelled", event.OrderID), fields...)
	case domain.EventBuyOrderCompleted:
		s.l.Info(fmt.Sprintf("The buy order %s has been completed", event.OrderID), fields...)
	case domain.EventSellOrderCompleted:
		s.l.Info(fmt.Sprintf("The sell order %s has been completed", event.OrderID), fields...)
	default:
		s.l.Warn("Unknown order event", fields...)
	}
}
