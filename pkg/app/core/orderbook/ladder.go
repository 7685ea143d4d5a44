package orderbook

import (
	"github.com/google/btree"
)

const ladderDegree = 32

// ladder is one price-ordered pool: a B-tree of level prices kept in
// priority order (best first) plus the FIFO queue resting at each price.
// A price is in the tree iff its queue is non-empty.
type ladder struct {
	prices *btree.BTreeG[int64]
	queues map[int64][]*Order // price -> FIFO slice
}

// newLadder builds a pool whose best level is the highest price
// (descending) or the lowest price (ascending)
func newLadder(descending bool) *ladder {
	less := func(a, b int64) bool { return a < b }
	if descending {
		less = func(a, b int64) bool { return a > b }
	}
	return &ladder{
		prices: btree.NewG[int64](ladderDegree, less),
		queues: make(map[int64][]*Order),
	}
}

func (l *ladder) empty() bool { return l.prices.Len() == 0 }

func (l *ladder) depth() int { return l.prices.Len() }

// best returns the first price in priority order
func (l *ladder) best() (int64, bool) {
	return l.prices.Min()
}

func (l *ladder) push(price int64, o *Order) {
	if len(l.queues[price]) == 0 {
		// New price level - add to index
		l.prices.ReplaceOrInsert(price)
	}
	l.queues[price] = append(l.queues[price], o)
}

func (l *ladder) front(price int64) *Order {
	q := l.queues[price]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// popFront drops the head of the queue at price, and the level with it
// once the queue drains
func (l *ladder) popFront(price int64) {
	q := l.queues[price]
	if len(q) == 0 {
		return
	}
	q[0] = nil
	q = q[1:]
	if len(q) == 0 {
		l.dropLevel(price)
		return
	}
	l.queues[price] = q
}

// remove takes id out of the queue at exactly price. Unknown ids are ignored.
func (l *ladder) remove(id uint64, price int64) (*Order, bool) {
	q := l.queues[price]
	for i, o := range q {
		if o.ID != id {
			continue
		}
		copy(q[i:], q[i+1:])
		q[len(q)-1] = nil
		q = q[:len(q)-1]
		if len(q) == 0 {
			l.dropLevel(price)
		} else {
			l.queues[price] = q
		}
		return o, true
	}
	return nil, false
}

// find returns the resting order with id at price without removing it
func (l *ladder) find(id uint64, price int64) (*Order, bool) {
	for _, o := range l.queues[price] {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// takeLevel removes a whole level and hands back its queue in FIFO order
func (l *ladder) takeLevel(price int64) []*Order {
	q := l.queues[price]
	l.dropLevel(price)
	return q
}

func (l *ladder) dropLevel(price int64) {
	delete(l.queues, price)
	l.prices.Delete(price)
}

// walk visits levels best first until fn returns false
func (l *ladder) walk(fn func(price int64, queue []*Order) bool) {
	l.prices.Ascend(func(price int64) bool {
		return fn(price, l.queues[price])
	})
}

// levels aggregates the pool into depth rows, best first
func (l *ladder) levels() []PriceLevel {
	out := make([]PriceLevel, 0, l.prices.Len())
	l.walk(func(price int64, queue []*Order) bool {
		var totalQty int64
		for _, o := range queue {
			totalQty += o.Qty
		}
		out = append(out, PriceLevel{Price: price, Qty: totalQty, Orders: len(queue)})
		return true
	})
	return out
}
