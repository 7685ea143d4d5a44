package orderbook

// place matches a limit or market order and rests whatever may rest
func (ob *OrderBook) place(o *Order) []Transaction {
	var txs []Transaction
	if o.Type == Market {
		txs = ob.matchMarket(o)
	} else {
		txs = ob.match(o, false)
	}
	if o.Qty > 0 && canRest(o) {
		ob.rest(o)
	}
	return txs
}

// canRest decides the fate of an unfilled remainder. A market order rests at
// the opposing best price it captured on entry; without one it is dropped,
// as is an all-or-none market order that found no counterparty.
func canRest(o *Order) bool {
	if o.Type == Market {
		return o.Quote > 0 && !o.AllOrNone
	}
	return true
}

// crosses reports whether the aggressor's quote reaches an opposing level
func crosses(o *Order, level int64) bool {
	if o.IsBuy() {
		return o.Quote >= level
	}
	return o.Quote <= level
}

// matchMarket pins a market order's quote to the opposing best price, then
// runs the common walk. With no opposing interest the book is left untouched.
func (ob *OrderBook) matchMarket(o *Order) []Transaction {
	price, ok := ob.livePool(o.Side.Opposite()).best()
	if !ok {
		return nil
	}
	o.Quote = price
	return ob.match(o, true)
}

// match walks the opposing side by price-time priority. Every exit path
// returns all transactions executed so far.
func (ob *OrderBook) match(o *Order, market bool) []Transaction {
	if o.AllOrNone {
		return ob.matchAllOrNone(o, market)
	}

	opp := ob.livePool(o.Side.Opposite())
	var txs []Transaction
	for o.Qty > 0 {
		price, ok := opp.best()
		if !ok {
			break
		}
		if !market && !crosses(o, price) {
			break
		}
		for o.Qty > 0 {
			resting := opp.front(price)
			if resting == nil {
				break // level drained
			}
			if resting.AllOrNone && resting.Qty > o.Qty {
				// an all-or-none order at the head blocks the walk
				return txs
			}
			qty := min(resting.Qty, o.Qty)
			resting.Qty -= qty
			o.Qty -= qty
			txs = append(txs, newTransaction(o, resting, price, qty))
			ob.setLastPrice(o.Side, price)

			if resting.Qty == 0 {
				opp.popFront(price)
				delete(ob.index, resting.ID)
			}
		}
	}
	return txs
}

// matchAllOrNone fills an all-or-none aggressor in one execution against the
// first resting order, in price-time order over the crossing levels, that can
// absorb all of it. A resting all-or-none order qualifies only on an exact
// size match. When nothing qualifies the book is left untouched.
func (ob *OrderBook) matchAllOrNone(o *Order, market bool) []Transaction {
	opp := ob.livePool(o.Side.Opposite())

	var (
		target *Order
		at     int64
	)
	opp.walk(func(price int64, queue []*Order) bool {
		if !market && !crosses(o, price) {
			return false
		}
		for _, r := range queue {
			if r.Qty < o.Qty || (r.AllOrNone && r.Qty != o.Qty) {
				continue
			}
			target, at = r, price
			return false
		}
		return true
	})
	if target == nil {
		return nil
	}

	qty := o.Qty
	target.Qty -= qty
	o.Qty = 0
	if target.Qty == 0 {
		opp.remove(target.ID, at)
		delete(ob.index, target.ID)
	}
	ob.setLastPrice(o.Side, at)
	return []Transaction{newTransaction(o, target, at, qty)}
}
