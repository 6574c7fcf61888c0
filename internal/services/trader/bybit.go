package trader

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/twap/internal/domain"
)

const bybitCategorySpot = "spot"

type BybitTrader struct {
	client *bybit.Client
	pair   domain.Pair
}

func NewBybitTrader(client *bybit.Client, pair domain.Pair) (*BybitTrader, error) {
	if client == nil {
		return nil, errors.New("bybit client is nil")
	}
	return &BybitTrader{pair: pair, client: client}, nil
}

func (t *BybitTrader) Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(bybit.SideBuy, amount, price, orderType, clientOrderID)
}

func (t *BybitTrader) Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(bybit.SideSell, amount, price, orderType, clientOrderID)
}

func (t *BybitTrader) place(side bybit.Side, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	amount = amount.RoundFloor(amountPrecision)
	if !amount.IsPositive() {
		return errors.Errorf("order amount rounds down to zero for %s", t.pair.String())
	}

	param := bybit.V5CreateOrderParam{
		Category:    bybitCategorySpot,
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		Side:        side,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         amount.String(),
		OrderLinkID: &clientOrderID,
	}
	if orderType == domain.OrderTypeLimit {
		limitPrice := price.Round(pricePrecision).String()
		param.OrderType = bybit.OrderTypeLimit
		param.Price = &limitPrice
	}

	if _, err := t.client.V5().Order().CreateOrder(param); err != nil {
		return errors.Wrapf(err, "failed to create bybit %s order", side)
	}
	return nil
}

func (t *BybitTrader) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	symbol := bybit.SymbolV5(t.pair.Symbol())
	res, err := t.client.V5().Order().GetOpenOrders(bybit.V5GetOpenOrdersParam{
		Category: bybitCategorySpot,
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bybit open orders")
	}

	result := make([]domain.Order, 0, len(res.Result.List))
	for _, o := range res.Result.List {
		if !domain.IsOwnOrder(o.OrderLinkID) {
			continue
		}
		side := domain.SideBuy
		if o.Side == bybit.SideSell {
			side = domain.SideSell
		}
		orderType := domain.OrderTypeLimit
		if o.OrderType == bybit.OrderTypeMarket {
			orderType = domain.OrderTypeMarket
		}
		result = append(result, domain.Order{
			Pair:          t.pair,
			ClientOrderID: o.OrderLinkID,
			Side:          side,
			Type:          orderType,
			Amount:        parseDecimalOrZero(o.Qty),
			Price:         parseDecimalOrZero(o.Price),
		})
	}
	return result, nil
}

func (t *BybitTrader) Cancel(ctx context.Context, clientOrderID string) error {
	_, err := t.client.V5().Order().CancelOrder(bybit.V5CancelOrderParam{
		Category:    bybitCategorySpot,
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to cancel bybit order %s", clientOrderID)
	}
	return nil
}

// OrderStatus looks the order up by its link ID; bybit keeps recently closed
// orders visible through the realtime endpoint.
func (t *BybitTrader) OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error) {
	symbol := bybit.SymbolV5(t.pair.Symbol())
	res, err := t.client.V5().Order().GetOpenOrders(bybit.V5GetOpenOrdersParam{
		Category:    bybitCategorySpot,
		Symbol:      &symbol,
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return domain.OrderStatus{}, errors.Wrap(err, "failed to query bybit order status")
	}
	if len(res.Result.List) == 0 {
		return domain.OrderStatus{State: domain.OrderStateUnknown, Executed: decimal.Zero}, nil
	}

	o := res.Result.List[0]
	return domain.OrderStatus{
		State:    bybitOrderState(string(o.OrderStatus)),
		Executed: parseDecimalOrZero(o.CumExecQty),
	}, nil
}

func bybitOrderState(status string) domain.OrderState {
	switch status {
	case "New", "Created", "Untriggered":
		return domain.OrderStateOpen
	case "PartiallyFilled":
		return domain.OrderStatePartiallyFilled
	case "Filled":
		return domain.OrderStateFilled
	case "Cancelled", "PartiallyFilledCanceled", "Deactivated":
		return domain.OrderStateCancelled
	case "Rejected":
		return domain.OrderStateRejected
	default:
		return domain.OrderStateUnknown
	}
}
