package orderbook

import (
	"fmt"
	"math"
	"time"
)

// MaxPrice is reported as the best ask of a book with no resting asks.
// Callers must read it as "no market", never as a tradable price.
const MaxPrice int64 = math.MaxInt64

type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "BUY":
		*s = Buy
	case "SELL":
		*s = Sell
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Opposite returns the side an order of this side trades against
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderType uint8

const (
	Limit OrderType = iota
	Market
	Stop      // stop-loss: becomes Market on activation
	StopLimit // becomes Limit on activation
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case Stop:
		return "STOP"
	case StopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// IsStop reports whether orders of this type wait in a stop pool
func (t OrderType) IsStop() bool {
	return t == Stop || t == StopLimit
}

// ParseOrderType accepts the names produced by OrderType.String
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "LIMIT":
		return Limit, nil
	case "MARKET":
		return Market, nil
	case "STOP":
		return Stop, nil
	case "STOP_LIMIT":
		return StopLimit, nil
	}
	return 0, fmt.Errorf("unknown order type %q", s)
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *OrderType) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Order is one order-entry instruction. The book mutates Qty as the order
// fills and rewrites Type (and Quote for stops) when a stop activates.
type Order struct {
	ID        uint64
	OwnerID   uint64
	Qty       int64 // remaining lots
	Quote     int64 // limit price in ticks; 0 for a pure market order
	StopPrice int64 // trigger for Stop / StopLimit
	Side      Side
	Type      OrderType
	AllOrNone bool
	Timestamp time.Time // FIFO tie-break only
}

func (o *Order) IsBuy() bool { return o.Side == Buy }

func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%d side=%s type=%s qty=%d quote=%d stop=%d aon=%t}",
		o.ID, o.Side, o.Type, o.Qty, o.Quote, o.StopPrice, o.AllOrNone)
}

// Transaction is a single execution between a resting and an aggressing order
type Transaction struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       int64 // always the resting order's price
	Qty         int64
}

func newTransaction(aggressor, resting *Order, price, qty int64) Transaction {
	if aggressor.IsBuy() {
		return Transaction{BuyOrderID: aggressor.ID, SellOrderID: resting.ID, Price: price, Qty: qty}
	}
	return Transaction{BuyOrderID: resting.ID, SellOrderID: aggressor.ID, Price: price, Qty: qty}
}

// OrderInfo locates a resting order without scanning the pools
type OrderInfo struct {
	Side  Side
	Price int64 // level the order sits at: quote for live orders, trigger for stops
	Type  OrderType
}

// PriceLevel is one aggregated depth row
type PriceLevel struct {
	Price  int64
	Qty    int64 // total qty at this price level
	Orders int
}

// Result is what AddOrder hands back to the caller
type Result struct {
	Status       Status
	Transactions []Transaction
	// Activated lists the stop orders triggered while processing the call,
	// in activation order
	Activated []uint64
}
