// Package pricer quotes the top of the book for a trading pair.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/twap/internal/domain"
)

// Pricer returns the ask when isBuy is true and the bid otherwise.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair, isBuy bool) (decimal.Decimal, error)
}

// touch picks the side of the book a taker would hit.
func touch(isBuy bool, ask, bid string) (decimal.Decimal, error) {
	raw := bid
	if isBuy {
		raw = ask
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to parse price %q", raw)
	}
	return price, nil
}
