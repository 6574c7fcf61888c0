package domain

// Side is the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// SideFromBool maps the strategy's isBuy flag to a Side.
func SideFromBool(isBuy bool) Side {
	if isBuy {
		return SideBuy
	}
	return SideSell
}

// IsBuy reports whether s is SideBuy.
func (s Side) IsBuy() bool {
	return s == SideBuy
}

// String returns the string representation of the side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// OrderType is the execution type of an order.
type OrderType int

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeMarket:
		return "market"
	default:
		return "unknown"
	}
}
