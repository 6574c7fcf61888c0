package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientOrderID(t *testing.T) {
	a := NewClientOrderID()
	b := NewClientOrderID()

	assert.NotEqual(t, a, b)
	assert.True(t, IsOwnOrder(a))
	assert.Len(t, a, len(ClientOrderPrefix)+clientOrderIDLength)
	assert.LessOrEqual(t, len(a), 36, "exchanges reject client order ids longer than 36 chars")
	assert.False(t, IsOwnOrder("web_12345"))
}

func TestOrderState_Terminal(t *testing.T) {
	assert.False(t, OrderStateOpen.Terminal())
	assert.False(t, OrderStatePartiallyFilled.Terminal())
	assert.False(t, OrderStateUnknown.Terminal())
	assert.True(t, OrderStateFilled.Terminal())
	assert.True(t, OrderStateCancelled.Terminal())
	assert.True(t, OrderStateRejected.Terminal())
}

func TestEventKindBySide(t *testing.T) {
	assert.Equal(t, EventBuyOrderCreated, CreatedEventKind(SideBuy))
	assert.Equal(t, EventSellOrderCreated, CreatedEventKind(SideSell))
	assert.Equal(t, EventBuyOrderCompleted, CompletedEventKind(SideBuy))
	assert.Equal(t, EventSellOrderCompleted, CompletedEventKind(SideSell))
	assert.Equal(t, SideBuy, SideFromBool(true))
	assert.Equal(t, SideSell, SideFromBool(false))
	assert.Equal(t, "order_cancelled", EventOrderCancelled.String())
}
