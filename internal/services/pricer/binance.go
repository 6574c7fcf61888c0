package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/twap/internal/domain"
)

// BinancePricer reads the book ticker from Binance public API.
// It needs no credentials, so the simulator uses it too.
type BinancePricer struct {
	client *binance.Client
}

func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error) {
	tickers, err := p.client.NewListBookTickersService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(tickers) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty book ticker for %s", pair.String())
	}

	return touch(isBuy, tickers[0].AskPrice, tickers[0].BidPrice)
}
