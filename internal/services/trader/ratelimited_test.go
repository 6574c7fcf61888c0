package trader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/twap/internal/domain"
)

func TestRateLimited_DelegatesToTrader(t *testing.T) {
	sim, _ := newTestSimulateTrader(t, 100, 100)
	limited := NewRateLimited(sim, rate.NewLimiter(rate.Inf, 1))
	ctx := context.Background()

	require.NoError(t, limited.Buy(ctx, decimal.NewFromInt(1), decimal.NewFromInt(90), domain.OrderTypeLimit, "twap-1"))

	open, err := limited.OpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	status, err := limited.OrderStatus(ctx, "twap-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateOpen, status.State)

	require.NoError(t, limited.Cancel(ctx, "twap-1"))
	assert.Error(t, limited.Sell(ctx, decimal.NewFromInt(1), decimal.NewFromInt(90), domain.OrderTypeLimit, "twap-2"))
}

func TestRateLimited_StopsOnCancelledContext(t *testing.T) {
	sim, _ := newTestSimulateTrader(t, 100, 100)
	// one token per hour, already spent by the first call
	limited := NewRateLimited(sim, rate.NewLimiter(rate.Every(time.Hour), 1))

	_, err := limited.OpenOrders(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = limited.Buy(ctx, decimal.NewFromInt(1), decimal.NewFromInt(90), domain.OrderTypeLimit, "twap-1")
	assert.Error(t, err)

	open, err := sim.OpenOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)
}
