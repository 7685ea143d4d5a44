package engine

import (
	"math/rand"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

const (
	ModeLimit = "limit" // limit adds, cancels and replaces; encodable as ITCH
	ModeMixed = "mixed" // every order type, all-or-none included

	recentCap = 100
)

type recentOrder struct {
	id     uint64
	symbol string
}

// Generator creates random order-entry events around a base price for load
// testing and synthetic feeds. Not safe for concurrent use.
type Generator struct {
	symbols   []string
	basePrice int64
	mode      string
	rng       *rand.Rand
	nextID    uint64
	recent    []recentOrder // candidates for cancel and replace
	fresh     []recentOrder // added by the batch in progress
	batching  bool

	stats GenStats
}

type GenStats struct {
	Orders   int
	Cancels  int
	Replaces int
}

func NewGenerator(symbols []string, basePrice int64, mode string, seed int64) *Generator {
	if len(symbols) == 0 {
		symbols = []string{"TEST"}
	}
	if basePrice <= 0 {
		basePrice = 1_000_000
	}
	if mode != ModeLimit {
		mode = ModeMixed
	}
	return &Generator{
		symbols:   symbols,
		basePrice: basePrice,
		mode:      mode,
		rng:       rand.New(rand.NewSource(seed)),
		nextID:    1,
	}
}

// Next creates a random event: mostly adds, with cancels and replaces of
// recently added orders
func (g *Generator) Next() Event {
	if len(g.recent) > 0 {
		switch r := g.rng.Intn(100); {
		case r < 8:
			return g.cancel()
		case r < 12:
			return g.replace()
		}
	}
	return g.NextOrder()
}

// Batch creates n events. Cancels and replaces in a batch only target
// orders from earlier batches, so the batch stays valid when an Inbox
// drains its cancels ahead of its adds.
func (g *Generator) Batch(n int) []Event {
	g.batching = true
	batch := make([]Event, n)
	for i := range batch {
		batch[i] = g.Next()
	}
	g.batching = false

	for _, r := range g.fresh {
		g.remember(r.id, r.symbol)
	}
	g.fresh = g.fresh[:0]
	return batch
}

func (g *Generator) Stats() GenStats { return g.stats }

func (g *Generator) spread() int64 {
	return max(g.basePrice/40, 1) // ±2.5%
}

func (g *Generator) price() int64 {
	s := g.spread()
	return max(g.basePrice+g.rng.Int63n(2*s+1)-s, 1)
}

func (g *Generator) id() uint64 {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Generator) remember(id uint64, symbol string) {
	if g.batching {
		g.fresh = append(g.fresh, recentOrder{id, symbol})
		return
	}
	if len(g.recent) < recentCap {
		g.recent = append(g.recent, recentOrder{id, symbol})
		return
	}
	g.recent[g.rng.Intn(recentCap)] = recentOrder{id, symbol}
}

// NextOrder creates a random add
func (g *Generator) NextOrder() Event {
	symbol := g.symbols[g.rng.Intn(len(g.symbols))]
	side := core.Buy
	if g.rng.Intn(2) == 1 {
		side = core.Sell
	}
	o := core.Order{
		ID:      g.id(),
		OwnerID: uint64(g.rng.Intn(50) + 1),
		Side:    side,
		Type:    core.Limit,
		Quote:   g.price(),
		Qty:     int64(g.rng.Intn(100) + 1),
	}

	if g.mode == ModeMixed {
		offset := g.spread() / 4
		if side == core.Sell {
			offset = -offset
		}
		switch r := g.rng.Intn(100); {
		case r < 70:
			o.AllOrNone = g.rng.Intn(20) == 0
		case r < 80:
			o.Type, o.Quote = core.Market, 0
		case r < 90:
			o.Type, o.StopPrice, o.Quote = core.Stop, o.Quote+offset, 0
		default:
			o.Type, o.StopPrice = core.StopLimit, o.Quote+offset
		}
	}

	g.remember(o.ID, symbol)
	g.stats.Orders++
	return Event{Kind: EventAdd, Symbol: symbol, Order: o}
}

// take removes and returns a random recent order
func (g *Generator) take() recentOrder {
	i := g.rng.Intn(len(g.recent))
	target := g.recent[i]
	g.recent[i] = g.recent[len(g.recent)-1]
	g.recent = g.recent[:len(g.recent)-1]
	return target
}

func (g *Generator) cancel() Event {
	target := g.take()
	g.stats.Cancels++
	return Event{Kind: EventDelete, Symbol: target.symbol, TargetID: target.id}
}

func (g *Generator) replace() Event {
	target := g.take()
	id := g.id()
	g.remember(id, target.symbol)

	g.stats.Replaces++
	return Event{
		Kind:     EventReplace,
		Symbol:   target.symbol,
		TargetID: target.id,
		Order: core.Order{
			ID:    id,
			Type:  core.Limit,
			Quote: g.price(),
			Qty:   int64(g.rng.Intn(100) + 1),
		},
	}
}
