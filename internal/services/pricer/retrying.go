package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/twap/internal/domain"
	"github.com/vadiminshakov/twap/pkg/retrier"
)

// Retrying retries transient price lookup failures with exponential backoff.
type Retrying struct {
	next    Pricer
	retrier *retrier.Retrier
	logger  *zap.Logger
}

func NewRetrying(next Pricer, r *retrier.Retrier, logger *zap.Logger) *Retrying {
	if r == nil {
		r = retrier.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, retrier: r, logger: logger}
}

func (p *Retrying) GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error) {
	attempt := 0
	return retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		attempt++
		price, err := p.next.GetPrice(ctx, pair, isBuy)
		if err != nil {
			p.logger.Debug("price lookup failed",
				zap.String("pair", pair.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return price, err
	})
}
