package trader

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/twap/internal/domain"
)

// binance error code for "Order does not exist."
const binanceUnknownOrderCode = -2013

type BinanceTrader struct {
	client *binance.Client
	pair   domain.Pair
}

func NewBinanceTrader(client *binance.Client, pair domain.Pair) (*BinanceTrader, error) {
	if client == nil {
		return nil, errors.New("binance client is nil")
	}
	return &BinanceTrader{client: client, pair: pair}, nil
}

func (t *BinanceTrader) Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, binance.SideTypeBuy, amount, price, orderType, clientOrderID)
}

func (t *BinanceTrader) Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, binance.SideTypeSell, amount, price, orderType, clientOrderID)
}

func (t *BinanceTrader) place(ctx context.Context, side binance.SideType, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	amount = amount.RoundFloor(amountPrecision)
	if !amount.IsPositive() {
		return errors.Errorf("order amount rounds down to zero for %s", t.pair.String())
	}

	svc := t.client.NewCreateOrderService().Symbol(t.pair.Symbol()).
		Side(side).
		Quantity(amount.String()).
		NewClientOrderID(clientOrderID)

	if orderType == domain.OrderTypeLimit {
		svc = svc.Type(binance.OrderTypeLimit).
			TimeInForce(binance.TimeInForceTypeGTC).
			Price(price.Round(pricePrecision).String())
	} else {
		svc = svc.Type(binance.OrderTypeMarket)
	}

	if _, err := svc.Do(ctx); err != nil {
		return errors.Wrapf(err, "failed to create binance %s order", side)
	}
	return nil
}

func (t *BinanceTrader) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := t.client.NewListOpenOrdersService().Symbol(t.pair.Symbol()).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list binance open orders")
	}

	result := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if !domain.IsOwnOrder(o.ClientOrderID) {
			continue
		}
		side := domain.SideBuy
		if o.Side == binance.SideTypeSell {
			side = domain.SideSell
		}
		orderType := domain.OrderTypeLimit
		if o.Type == binance.OrderTypeMarket {
			orderType = domain.OrderTypeMarket
		}
		result = append(result, domain.Order{
			Pair:          t.pair,
			ClientOrderID: o.ClientOrderID,
			Side:          side,
			Type:          orderType,
			Amount:        parseDecimalOrZero(o.OrigQuantity),
			Price:         parseDecimalOrZero(o.Price),
		})
	}
	return result, nil
}

func (t *BinanceTrader) Cancel(ctx context.Context, clientOrderID string) error {
	_, err := t.client.NewCancelOrderService().
		Symbol(t.pair.Symbol()).
		OrigClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to cancel binance order %s", clientOrderID)
	}
	return nil
}

func (t *BinanceTrader) OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error) {
	order, err := t.client.NewGetOrderService().
		Symbol(t.pair.Symbol()).
		OrigClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		if apiErr, ok := err.(*common.APIError); ok && apiErr.Code == binanceUnknownOrderCode {
			return domain.OrderStatus{State: domain.OrderStateUnknown, Executed: decimal.Zero}, nil
		}
		return domain.OrderStatus{}, errors.Wrap(err, "failed to query binance order status")
	}

	executedQty, err := decimal.NewFromString(order.ExecutedQuantity)
	if err != nil {
		return domain.OrderStatus{}, errors.Wrap(err, "failed to parse executed quantity")
	}

	return domain.OrderStatus{State: binanceOrderState(order.Status), Executed: executedQty}, nil
}

func binanceOrderState(status binance.OrderStatusType) domain.OrderState {
	switch status {
	case binance.OrderStatusTypeNew:
		return domain.OrderStateOpen
	case binance.OrderStatusTypePartiallyFilled:
		return domain.OrderStatePartiallyFilled
	case binance.OrderStatusTypeFilled:
		return domain.OrderStateFilled
	case binance.OrderStatusTypeCanceled:
		return domain.OrderStateCancelled
	case binance.OrderStatusTypeRejected, binance.OrderStatusTypeExpired:
		return domain.OrderStateRejected
	default:
		return domain.OrderStateUnknown
	}
}
