package orderbook

// Stop lifecycle: PENDING (in a stop pool, keyed by trigger) -> ACTIVATED
// (type rewritten, matched) -> filled, resting in the live pool, or dropped.
//
// A stop buy is eligible once the sell market price is at or below its
// trigger; a stop sell once the buy market price is at or above it.

func (ob *OrderBook) stopEligible(side Side, trigger int64) bool {
	if side == Buy {
		return ob.MarketPrice(Sell) <= trigger
	}
	return ob.MarketPrice(Buy) >= trigger
}

// addStopOrder activates o at once when it is already eligible, otherwise
// parks it in the stop pool of its side
func (ob *OrderBook) addStopOrder(o *Order, res *Result) {
	if ob.stopEligible(o.Side, o.StopPrice) {
		res.Activated = append(res.Activated, o.ID)
		res.Transactions = append(res.Transactions, ob.activate(o)...)
		ob.executeStopOrders(res)
		return
	}
	ob.stopPool(o.Side).push(o.StopPrice, o)
	ob.index[o.ID] = OrderInfo{Side: o.Side, Price: o.StopPrice, Type: o.Type}
}

// activate converts a triggered stop into a limit (StopLimit) or market
// (Stop) order and sends it through matching
func (ob *OrderBook) activate(o *Order) []Transaction {
	if o.Type == StopLimit {
		o.Type = Limit
	} else {
		o.Type = Market
		o.Quote = 0
	}
	return ob.place(o)
}

// executeStopOrders activates pending stops one at a time, most eligible
// first, re-reading the market price after every activation so that stops
// triggered by an earlier activation fire within the same call
func (ob *OrderBook) executeStopOrders(res *Result) {
	for {
		o := ob.nextTriggered()
		if o == nil {
			return
		}
		res.Activated = append(res.Activated, o.ID)
		res.Transactions = append(res.Transactions, ob.activate(o)...)
	}
}

// nextTriggered detaches the head of the most eligible stop level, buys
// before sells, or returns nil when nothing is eligible
func (ob *OrderBook) nextTriggered() *Order {
	for _, side := range [...]Side{Buy, Sell} {
		pool := ob.stopPool(side)
		trigger, ok := pool.best()
		if !ok || !ob.stopEligible(side, trigger) {
			continue
		}
		o := pool.front(trigger)
		pool.popFront(trigger)
		delete(ob.index, o.ID)
		return o
	}
	return nil
}
