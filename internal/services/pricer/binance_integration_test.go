//go:build integration

package pricer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/twap/internal/clients"
	"github.com/vadiminshakov/twap/internal/domain"
)

// TestBinancePricer_GetPrice_Integration calls the real Binance public API.
// To run this test, use: go test -tags=integration -v ./...
func TestBinancePricer_GetPrice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pricer := NewBinancePricer(clients.NewSimulateClient().GetBinanceClient())
	pair := domain.Pair{From: "BTC", To: "USDT"}

	ask, err := pricer.GetPrice(context.Background(), pair, true)
	require.NoError(t, err)
	bid, err := pricer.GetPrice(context.Background(), pair, false)
	require.NoError(t, err)

	require.True(t, bid.GreaterThan(decimal.Zero), "Expected bid > 0 for %s, got %s", pair.String(), bid.String())
	assert.True(t, ask.GreaterThanOrEqual(bid), "Expected ask %s >= bid %s", ask.String(), bid.String())
	t.Logf("%s ask %s bid %s", pair.String(), ask.String(), bid.String())

	_, err = pricer.GetPrice(context.Background(), domain.Pair{From: "INVALID", To: "PAIR"}, true)
	assert.Error(t, err, "Expected error for invalid pair")
}
