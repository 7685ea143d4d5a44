// Package engine drives the central order book from a stream of order-entry
// events and fans executed trades out to sinks.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/app/core"
	"github.com/uhyunpark/matchbook/pkg/metrics"
	"github.com/uhyunpark/matchbook/pkg/storage"
	"github.com/uhyunpark/matchbook/pkg/util"
)

// Outcome is what one Apply call did to the books
type Outcome struct {
	Status    core.Status
	Trades    []core.Trade
	Activated []uint64
}

type App struct {
	books  *core.CentralOrderBook
	clock  util.Clock
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	sinks   []storage.TradeSink
	onTrade func([]core.Trade)
}

func NewApp(logger *zap.Logger, clock util.Clock, sinks ...storage.TradeSink) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = util.RealClock{}
	}
	return &App{
		books:  core.NewCentralOrderBook(logger),
		clock:  clock,
		logger: logger.Sugar(),
		sinks:  sinks,
	}
}

// Books exposes the registry for read-only queries
func (a *App) Books() *core.CentralOrderBook { return a.books }

// AddSink registers another trade sink
func (a *App) AddSink(s storage.TradeSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, s)
}

// OnTrade sets a hook called after the sinks for every non-empty batch
func (a *App) OnTrade(fn func([]core.Trade)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTrade = fn
}

// Close closes every sink, returning the first error
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var first error
	for _, s := range a.sinks {
		if err := s.Close(); err != nil {
			a.logger.Warnw("sink_close_failed", "sink", s.Name(), "err", err)
			if first == nil {
				first = err
			}
		}
	}
	a.sinks = nil
	return first
}

// Apply executes one event. Non-OK statuses are reported in the outcome and
// counted; they never stop the caller.
func (a *App) Apply(ctx context.Context, ev Event) Outcome {
	start := time.Now()
	defer func() { metrics.ApplyLatency.Observe(time.Since(start).Seconds()) }()

	switch ev.Kind {
	case EventAdd:
		return a.add(ctx, ev.Symbol, ev.Order)
	case EventDelete:
		return Outcome{Status: a.cancel(ev.TargetID)}
	case EventReplace:
		return a.replace(ctx, ev)
	}
	a.logger.Warnw("unknown_event", "kind", ev.Kind)
	return Outcome{Status: core.OrderNotExists}
}

func (a *App) add(ctx context.Context, symbol string, o core.Order) Outcome {
	o.Timestamp = a.clock.Now()
	typ := o.Type.String()

	res := a.books.AddOrder(symbol, &o)
	metrics.Orders.WithLabelValues(symbol, typ, res.Status.String()).Inc()
	if res.Status != core.OK {
		a.logger.Debugw("order_rejected", "symbol", symbol, "order_id", o.ID, "status", res.Status)
		return Outcome{Status: res.Status}
	}
	if n := len(res.Activated); n > 0 {
		metrics.StopActivations.WithLabelValues(symbol).Add(float64(n))
	}

	trades := core.NewTrades(symbol, &o, res, o.Timestamp)
	a.publish(ctx, symbol, trades)
	return Outcome{Status: core.OK, Trades: trades, Activated: res.Activated}
}

func (a *App) cancel(id uint64) core.Status {
	st := a.books.DeleteOrder(id)
	metrics.Cancels.WithLabelValues(st.String()).Inc()
	if st != core.OK {
		a.logger.Debugw("cancel_rejected", "order_id", id, "status", st)
	}
	return st
}

// replace cancels TargetID and adds the new order on the old order's symbol
// and side. The new order loses the old one's time priority.
func (a *App) replace(ctx context.Context, ev Event) Outcome {
	old, ok := a.books.Lookup(ev.TargetID)
	if !ok {
		metrics.Cancels.WithLabelValues(core.OrderNotExists.String()).Inc()
		a.logger.Debugw("replace_miss", "order_id", ev.TargetID)
		return Outcome{Status: core.OrderNotExists}
	}
	symbol, _ := a.books.SymbolOf(ev.TargetID)
	if st := a.cancel(ev.TargetID); st != core.OK {
		return Outcome{Status: st}
	}

	o := ev.Order
	o.Side = old.Side
	o.OwnerID = old.OwnerID
	o.AllOrNone = old.AllOrNone
	return a.add(ctx, symbol, o)
}

func (a *App) publish(ctx context.Context, symbol string, trades []core.Trade) {
	if len(trades) == 0 {
		return
	}
	var qty int64
	for _, t := range trades {
		qty += t.Qty
	}
	metrics.Trades.WithLabelValues(symbol).Add(float64(len(trades)))
	metrics.TradedQty.WithLabelValues(symbol).Add(float64(qty))

	a.mu.RLock()
	sinks, hook := a.sinks, a.onTrade
	a.mu.RUnlock()

	for _, s := range sinks {
		if err := s.Record(ctx, trades); err != nil {
			metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			a.logger.Warnw("sink_failed", "sink", s.Name(), "symbol", symbol, "trades", len(trades), "err", err)
		}
	}
	if hook != nil {
		hook(trades)
	}
}
