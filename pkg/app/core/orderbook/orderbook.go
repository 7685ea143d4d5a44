package orderbook

// OrderBook holds all resting interest for one symbol: live limit orders on
// each side, pending stop orders on each side, and an id index over both.
//
// An OrderBook is not safe for concurrent use. The market registry owns one
// lock per book and serialises every call.
type OrderBook struct {
	symbol string

	// Live pools (best price first)
	bids *ladder
	asks *ladder

	// Pending stop pools, ordered most-eligible trigger first
	stopBuys  *ladder
	stopSells *ladder

	// Order index for O(1) cancellation
	index map[uint64]OrderInfo

	// Last execution price per aggressor side (market reference fallback)
	lastBuyPrice  int64
	lastSellPrice int64
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol:        symbol,
		bids:          newLadder(true),
		asks:          newLadder(false),
		stopBuys:      newLadder(true),
		stopSells:     newLadder(false),
		index:         make(map[uint64]OrderInfo),
		lastBuyPrice:  0,
		lastSellPrice: MaxPrice,
	}
}

func (ob *OrderBook) Symbol() string { return ob.symbol }

// Len is the number of resting orders, live and pending stop
func (ob *OrderBook) Len() int { return len(ob.index) }

// Contains reports whether id currently rests in any pool of this book
func (ob *OrderBook) Contains(id uint64) bool {
	_, ok := ob.index[id]
	return ok
}

// AddOrder runs an order through the book. The book takes ownership of o
// and mutates it in place; callers must not reuse it.
func (ob *OrderBook) AddOrder(o *Order) Result {
	if _, exists := ob.index[o.ID]; exists {
		return Result{Status: OrderExists}
	}

	res := Result{Status: OK}
	switch o.Type {
	case Limit, Market:
		res.Transactions = ob.place(o)
		ob.executeStopOrders(&res)
	case Stop, StopLimit:
		ob.addStopOrder(o, &res)
	}
	return res
}

// DeleteOrder cancels a resting order, live or pending stop
func (ob *OrderBook) DeleteOrder(id uint64) Status {
	info, ok := ob.index[id]
	if !ok {
		return OrderNotExists
	}
	delete(ob.index, id)
	ob.poolOf(info).remove(id, info.Price)
	return OK
}

// GetOrder returns a snapshot of a resting order
func (ob *OrderBook) GetOrder(id uint64) (Order, bool) {
	info, ok := ob.index[id]
	if !ok {
		return Order{}, false
	}
	o, ok := ob.poolOf(info).find(id, info.Price)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// OrderInfo returns the index entry for a resting order
func (ob *OrderBook) OrderInfo(id uint64) (OrderInfo, bool) {
	info, ok := ob.index[id]
	return info, ok
}

// BestBid returns the highest resting bid, or 0 when there are no bids
func (ob *OrderBook) BestBid() int64 {
	if p, ok := ob.bids.best(); ok {
		return p
	}
	return 0
}

// BestAsk returns the lowest resting ask, or MaxPrice when there are no asks
func (ob *OrderBook) BestAsk() int64 {
	if p, ok := ob.asks.best(); ok {
		return p
	}
	return MaxPrice
}

// MarketPrice is the stop activation reference for a side. It is never used
// to price a trade.
//
//	Buy:  max(best bid or 0, last buy-aggressor price)
//	Sell: min(best ask or MaxPrice, last sell-aggressor price)
func (ob *OrderBook) MarketPrice(side Side) int64 {
	if side == Buy {
		return max(ob.BestBid(), ob.lastBuyPrice)
	}
	return min(ob.BestAsk(), ob.lastSellPrice)
}

// BidLevels returns live bid levels sorted high to low (best bid first)
func (ob *OrderBook) BidLevels() []PriceLevel { return ob.bids.levels() }

// AskLevels returns live ask levels sorted low to high (best ask first)
func (ob *OrderBook) AskLevels() []PriceLevel { return ob.asks.levels() }

// StopLevels returns pending stop levels of a side, most eligible first
func (ob *OrderBook) StopLevels(side Side) []PriceLevel {
	return ob.stopPool(side).levels()
}

func (ob *OrderBook) livePool(side Side) *ladder {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) stopPool(side Side) *ladder {
	if side == Buy {
		return ob.stopBuys
	}
	return ob.stopSells
}

func (ob *OrderBook) poolOf(info OrderInfo) *ladder {
	if info.Type.IsStop() {
		return ob.stopPool(info.Side)
	}
	return ob.livePool(info.Side)
}

// rest stores o on its live side at its quote and indexes it
func (ob *OrderBook) rest(o *Order) {
	ob.livePool(o.Side).push(o.Quote, o)
	ob.index[o.ID] = OrderInfo{Side: o.Side, Price: o.Quote, Type: o.Type}
}

func (ob *OrderBook) setLastPrice(side Side, price int64) {
	if side == Buy {
		ob.lastBuyPrice = price
	} else {
		ob.lastSellPrice = price
	}
}
