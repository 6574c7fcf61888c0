package trader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"
	"golang.org/x/time/rate"

	"github.com/vadiminshakov/twap/internal/domain"
)

// market orders are emulated by an IOC limit this far through the mid
const hyperliquidMarketSlippage = 0.005

// HyperliquidTrader trades the perpetual market of the pair's base coin.
// Sells are reduce-only: they close a long built by earlier buys and are rejected
// when there is nothing to close, the way a spot sell fails without holdings.
// Hyperliquid only knows orders by hashed cloid, so open orders are tracked by
// the client order IDs submitted from this process.
type HyperliquidTrader struct {
	ex          *hyperliquid.Exchange
	info        *hyperliquid.Info
	accountAddr string
	pair        domain.Pair
	// limiter is shared with the RateLimited wrapper; it throttles the requests
	// one wrapped call fans out into.
	limiter *rate.Limiter

	mu         sync.Mutex
	placed     map[string]domain.Order
	szDecimals *int32
}

func NewHyperliquidTrader(ex *hyperliquid.Exchange, accountAddr string, pair domain.Pair, limiter *rate.Limiter) (*HyperliquidTrader, error) {
	if ex == nil {
		return nil, errors.New("hyperliquid exchange is nil")
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &HyperliquidTrader{
		ex:          ex,
		info:        ex.Info(),
		accountAddr: accountAddr,
		pair:        pair,
		limiter:     limiter,
		placed:      make(map[string]domain.Order),
	}, nil
}

// cloidFromID converts a free-form client ID into a valid Hyperliquid cloid (0x + 32 hex chars).
func cloidFromID(id string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(id)))
	return "0x" + hex.EncodeToString(sum[:16])
}

func (t *HyperliquidTrader) Buy(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, domain.SideBuy, amount, price, orderType, clientOrderID)
}

func (t *HyperliquidTrader) Sell(ctx context.Context, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	return t.place(ctx, domain.SideSell, amount, price, orderType, clientOrderID)
}

// assetSzDecimals returns the size precision of coin from the perp universe.
func assetSzDecimals(meta *hyperliquid.Meta, coin string) (int32, error) {
	if meta == nil {
		return 0, errors.New("empty hyperliquid meta")
	}
	for _, asset := range meta.Universe {
		if asset.Name == coin {
			return int32(asset.SzDecimals), nil
		}
	}
	return 0, errors.Errorf("coin %s is not listed on hyperliquid", coin)
}

// orderSize floors amount to the asset's size step, exchanges reject finer sizes.
func orderSize(amount decimal.Decimal, szDecimals int32) (float64, error) {
	size := amount.RoundFloor(szDecimals)
	if size.LessThanOrEqual(decimal.Zero) {
		return 0, errors.Errorf("order amount %s is below the %d-decimal size step", amount.String(), szDecimals)
	}
	f, _ := size.Float64()
	return f, nil
}

func (t *HyperliquidTrader) sizeDecimals(ctx context.Context) (int32, error) {
	t.mu.Lock()
	cached := t.szDecimals
	t.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	meta, err := t.info.Meta(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "get hyperliquid meta")
	}
	dec, err := assetSzDecimals(meta, t.pair.From)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	t.szDecimals = &dec
	t.mu.Unlock()
	return dec, nil
}

func (t *HyperliquidTrader) orderRequest(side domain.Side, px, size float64, tif hyperliquid.Tif, cloid string) hyperliquid.CreateOrderRequest {
	return hyperliquid.CreateOrderRequest{
		Coin:          t.pair.From,
		IsBuy:         side.IsBuy(),
		Price:         px,
		Size:          size,
		ReduceOnly:    side == domain.SideSell,
		ClientOrderID: &cloid,
		OrderType: hyperliquid.OrderType{
			Limit: &hyperliquid.LimitOrderType{Tif: tif},
		},
	}
}

func (t *HyperliquidTrader) place(ctx context.Context, side domain.Side, amount, price decimal.Decimal, orderType domain.OrderType, clientOrderID string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("order amount must be positive, got %s", amount.String())
	}
	szDecimals, err := t.sizeDecimals(ctx)
	if err != nil {
		return err
	}
	size, err := orderSize(amount, szDecimals)
	if err != nil {
		return err
	}

	px, _ := price.Float64()
	tif := hyperliquid.TifGtc
	if orderType == domain.OrderTypeMarket {
		slippagePx, err := t.ex.SlippagePrice(ctx, t.pair.From, side.IsBuy(), hyperliquidMarketSlippage, nil)
		if err != nil {
			return errors.Wrap(err, "slippage price")
		}
		px = slippagePx
		tif = hyperliquid.TifIoc
	}

	req := t.orderRequest(side, px, size, tif, cloidFromID(clientOrderID))
	if _, err := t.ex.Order(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "failed to create hyperliquid %s order", side.String())
	}

	t.mu.Lock()
	t.placed[clientOrderID] = domain.Order{
		Pair:          t.pair,
		ClientOrderID: clientOrderID,
		Side:          side,
		Type:          orderType,
		Amount:        decimal.NewFromFloat(size),
		Price:         price,
	}
	t.mu.Unlock()
	return nil
}

func (t *HyperliquidTrader) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	return t.openAmongPlaced(ctx, t.OrderStatus)
}

// openAmongPlaced asks status for each placed order, one limiter token per query,
// and forgets the ones that reached a terminal state.
func (t *HyperliquidTrader) openAmongPlaced(ctx context.Context, queryStatus func(context.Context, string) (domain.OrderStatus, error)) ([]domain.Order, error) {
	t.mu.Lock()
	candidates := make([]domain.Order, 0, len(t.placed))
	for _, o := range t.placed {
		candidates = append(candidates, o)
	}
	t.mu.Unlock()

	open := make([]domain.Order, 0, len(candidates))
	for _, o := range candidates {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		status, err := queryStatus(ctx, o.ClientOrderID)
		if err != nil {
			return nil, err
		}
		switch {
		case status.State == domain.OrderStateOpen || status.State == domain.OrderStatePartiallyFilled:
			open = append(open, o)
		case status.State.Terminal():
			t.forget(o.ClientOrderID)
		}
	}
	return open, nil
}

func (t *HyperliquidTrader) Cancel(ctx context.Context, clientOrderID string) error {
	res, err := t.info.QueryOrderByCloid(ctx, t.accountAddr, cloidFromID(clientOrderID))
	if err != nil {
		return errors.Wrap(err, "query order by cloid")
	}
	if res == nil || res.Status != hyperliquid.OrderQueryStatusSuccess {
		return errors.Errorf("hyperliquid order %s not found", clientOrderID)
	}

	cancels := []hyperliquid.CancelOrderRequest{{Coin: t.pair.From, OrderID: res.Order.Order.Oid}}
	if _, err := t.ex.BulkCancel(ctx, cancels); err != nil {
		return errors.Wrapf(err, "failed to cancel hyperliquid order %s", clientOrderID)
	}
	return nil
}

func (t *HyperliquidTrader) OrderStatus(ctx context.Context, clientOrderID string) (domain.OrderStatus, error) {
	res, err := t.info.QueryOrderByCloid(ctx, t.accountAddr, cloidFromID(clientOrderID))
	if err != nil {
		return domain.OrderStatus{}, errors.Wrap(err, "query order by cloid")
	}
	if res == nil || res.Status != hyperliquid.OrderQueryStatusSuccess {
		return domain.OrderStatus{State: domain.OrderStateUnknown, Executed: decimal.Zero}, nil
	}

	switch res.Order.Status {
	case hyperliquid.OrderStatusValueFilled:
		// best-effort: use original size as filled amount when filled
		return domain.OrderStatus{State: domain.OrderStateFilled, Executed: parseDecimalOrZero(res.Order.Order.OrigSz)}, nil
	case hyperliquid.OrderStatusValueOpen:
		return domain.OrderStatus{State: domain.OrderStateOpen, Executed: decimal.Zero}, nil
	case hyperliquid.OrderStatusValueCanceled,
		hyperliquid.OrderStatusValueReduceOnlyCanceled,
		hyperliquid.OrderStatusValueScheduledCancel,
		hyperliquid.OrderStatusValueOpenInterestCapCanceled,
		hyperliquid.OrderStatusValueSelfTradeCanceled:
		return domain.OrderStatus{State: domain.OrderStateCancelled, Executed: decimal.Zero}, nil
	case hyperliquid.OrderStatusValueRejected,
		hyperliquid.OrderStatusValueReduceOnlyRejected:
		return domain.OrderStatus{State: domain.OrderStateRejected, Executed: decimal.Zero}, nil
	default:
		return domain.OrderStatus{State: domain.OrderStateUnknown, Executed: decimal.Zero}, nil
	}
}

func (t *HyperliquidTrader) forget(clientOrderID string) {
	t.mu.Lock()
	delete(t.placed, clientOrderID)
	t.mu.Unlock()
}
