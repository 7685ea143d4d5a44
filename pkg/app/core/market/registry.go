package market

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/app/core/orderbook"
)

// bookEntry pairs a symbol's book with the lock that serialises it.
// Mutations take the write lock; queries take the read lock.
type bookEntry struct {
	mu   sync.RWMutex
	book *orderbook.OrderBook
}

// CentralOrderBook routes order-entry calls to one OrderBook per symbol and
// keeps a global order id -> symbol table so cancels need no symbol.
//
// Operations on different symbols run in parallel; operations on one symbol
// are totally ordered by that symbol's lock. No call touches two books.
type CentralOrderBook struct {
	mu    sync.RWMutex
	books map[string]*bookEntry // symbol -> book

	routesMu sync.RWMutex
	routes   map[uint64]string // order id -> symbol, iff the order rests there

	logger *zap.SugaredLogger
}

// NewCentralOrderBook creates an empty registry. A nil logger disables logging.
func NewCentralOrderBook(logger *zap.Logger) *CentralOrderBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CentralOrderBook{
		books:  make(map[string]*bookEntry),
		routes: make(map[uint64]string),
		logger: logger.Sugar(),
	}
}

// AddSymbol creates an empty book for symbol
func (c *CentralOrderBook) AddSymbol(symbol string) orderbook.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.books[symbol]; exists {
		return orderbook.SymbolExists
	}
	c.books[symbol] = &bookEntry{book: orderbook.NewOrderBook(symbol)}
	c.logger.Debugw("symbol_added", "symbol", symbol)
	return orderbook.OK
}

// bookFor returns the entry for symbol, creating it if needed. The check and
// the insert happen under one write lock so concurrent first adds agree on
// a single book.
func (c *CentralOrderBook) bookFor(symbol string) *bookEntry {
	c.mu.RLock()
	e, ok := c.books[symbol]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.books[symbol]; ok {
		return e
	}
	e = &bookEntry{book: orderbook.NewOrderBook(symbol)}
	c.books[symbol] = e
	c.logger.Debugw("symbol_added", "symbol", symbol, "auto", true)
	return e
}

func (c *CentralOrderBook) lookup(symbol string) (*bookEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.books[symbol]
	return e, ok
}

// AddOrder sends o to the book for symbol, provisioning the book on first
// use. An id that already rests anywhere in the registry is rejected with
// ORDER_EXISTS. The id is claimed in the routing table before the book sees
// the order, so two symbols racing on one id admit exactly one of them.
func (c *CentralOrderBook) AddOrder(symbol string, o *orderbook.Order) orderbook.Result {
	e := c.bookFor(symbol)

	e.mu.Lock()
	defer e.mu.Unlock()

	c.routesMu.Lock()
	if _, taken := c.routes[o.ID]; taken {
		c.routesMu.Unlock()
		return orderbook.Result{Status: orderbook.OrderExists}
	}
	c.routes[o.ID] = symbol
	c.routesMu.Unlock()

	res := e.book.AddOrder(o)
	if res.Status != orderbook.OK {
		c.routesMu.Lock()
		delete(c.routes, o.ID)
		c.routesMu.Unlock()
		return res
	}
	c.reroute(symbol, e.book, touched(o.ID, res))
	return res
}

// touched lists every id whose residency may have changed during an add
func touched(id uint64, res orderbook.Result) []uint64 {
	ids := make([]uint64, 0, 1+2*len(res.Transactions)+len(res.Activated))
	ids = append(ids, id)
	for _, tx := range res.Transactions {
		ids = append(ids, tx.BuyOrderID, tx.SellOrderID)
	}
	return append(ids, res.Activated...)
}

// reroute brings the routing table in line with the book for ids.
// Must be called with the book's write lock held.
func (c *CentralOrderBook) reroute(symbol string, book *orderbook.OrderBook, ids []uint64) {
	c.routesMu.Lock()
	defer c.routesMu.Unlock()
	for _, id := range ids {
		if book.Contains(id) {
			c.routes[id] = symbol
		} else {
			delete(c.routes, id)
		}
	}
}

// DeleteOrder cancels a resting order wherever it lives
func (c *CentralOrderBook) DeleteOrder(id uint64) orderbook.Status {
	symbol, ok := c.SymbolOf(id)
	if !ok {
		return orderbook.OrderNotExists
	}
	e, ok := c.lookup(symbol)
	if !ok {
		// books are never removed, so a route to a missing book is a bug
		c.logger.Errorw("route_to_missing_book", "order_id", id, "symbol", symbol)
		return orderbook.SymbolNotExists
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.book.DeleteOrder(id)

	c.routesMu.Lock()
	delete(c.routes, id)
	c.routesMu.Unlock()
	return st
}

// SymbolOf returns the symbol an order rests under
func (c *CentralOrderBook) SymbolOf(id uint64) (string, bool) {
	c.routesMu.RLock()
	defer c.routesMu.RUnlock()
	symbol, ok := c.routes[id]
	return symbol, ok
}

// GetOrder returns a snapshot of a resting order in symbol's book
func (c *CentralOrderBook) GetOrder(symbol string, id uint64) (orderbook.Order, bool) {
	e, ok := c.lookup(symbol)
	if !ok {
		return orderbook.Order{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.GetOrder(id)
}

// Lookup finds a resting order by id alone, through the routing table
func (c *CentralOrderBook) Lookup(id uint64) (orderbook.Order, bool) {
	symbol, ok := c.SymbolOf(id)
	if !ok {
		return orderbook.Order{}, false
	}
	return c.GetOrder(symbol, id)
}

// BestAsk returns the lowest ask of symbol, or MaxPrice when there is none
func (c *CentralOrderBook) BestAsk(symbol string) (orderbook.Status, int64) {
	e, ok := c.lookup(symbol)
	if !ok {
		return orderbook.SymbolNotExists, orderbook.MaxPrice
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return orderbook.OK, e.book.BestAsk()
}

// BestBid returns the highest bid of symbol, or 0 when there is none
func (c *CentralOrderBook) BestBid(symbol string) (orderbook.Status, int64) {
	e, ok := c.lookup(symbol)
	if !ok {
		return orderbook.SymbolNotExists, 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return orderbook.OK, e.book.BestBid()
}

// Depth returns aggregated bid and ask levels, best first
func (c *CentralOrderBook) Depth(symbol string) (bids, asks []orderbook.PriceLevel, st orderbook.Status) {
	st = c.View(symbol, func(ob *orderbook.OrderBook) {
		bids, asks = ob.BidLevels(), ob.AskLevels()
	})
	return bids, asks, st
}

// View runs fn with shared access to symbol's book. fn must not mutate the
// book or retain it.
func (c *CentralOrderBook) View(symbol string, fn func(*orderbook.OrderBook)) orderbook.Status {
	e, ok := c.lookup(symbol)
	if !ok {
		return orderbook.SymbolNotExists
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.book)
	return orderbook.OK
}

// Symbols returns all provisioned symbols, sorted
func (c *CentralOrderBook) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	symbols := make([]string, 0, len(c.books))
	for s := range c.books {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Count returns the number of provisioned symbols
func (c *CentralOrderBook) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// Exists checks if a symbol has a book
func (c *CentralOrderBook) Exists(symbol string) bool {
	_, ok := c.lookup(symbol)
	return ok
}

// Routed returns the number of ids in the routing table
func (c *CentralOrderBook) Routed() int {
	c.routesMu.RLock()
	defer c.routesMu.RUnlock()
	return len(c.routes)
}
