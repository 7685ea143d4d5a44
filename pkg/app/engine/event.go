package engine

import (
	"github.com/uhyunpark/matchbook/pkg/app/core"
	"github.com/uhyunpark/matchbook/pkg/feed/itch"
)

type EventKind uint8

const (
	EventAdd EventKind = iota
	EventDelete
	EventReplace
)

func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "ADD"
	case EventDelete:
		return "DELETE"
	case EventReplace:
		return "REPLACE"
	default:
		return "UNKNOWN"
	}
}

// Event is one order-entry instruction.
//
//   - Add: Order goes to Symbol's book.
//   - Delete: TargetID is cancelled wherever it rests.
//   - Replace: TargetID is cancelled and Order takes its place on the same
//     symbol and side.
type Event struct {
	Kind     EventKind
	Symbol   string
	Order    core.Order
	TargetID uint64
}

func sideOf(b byte) core.Side {
	if b == 'B' {
		return core.Buy
	}
	return core.Sell
}

func sideByte(s core.Side) byte {
	if s == core.Buy {
		return 'B'
	}
	return 'S'
}

// FromITCH converts a decoded feed message. Directory, system and execution
// messages carry nothing for the books and report false.
func FromITCH(m itch.Message) (Event, bool) {
	switch m.Kind {
	case itch.KindAdd:
		return Event{
			Kind:   EventAdd,
			Symbol: m.Ticker,
			Order: core.Order{
				ID:    m.ID,
				Side:  sideOf(m.Side),
				Type:  core.Limit,
				Quote: m.Price,
				Qty:   m.Shares,
			},
		}, true
	case itch.KindDelete:
		return Event{Kind: EventDelete, Symbol: m.Ticker, TargetID: m.ID}, true
	case itch.KindReplace:
		return Event{
			Kind:     EventReplace,
			Symbol:   m.Ticker,
			TargetID: m.OldID,
			Order: core.Order{
				ID:    m.ID,
				Type:  core.Limit,
				Quote: m.Price,
				Qty:   m.Shares,
			},
		}, true
	}
	return Event{}, false
}

// ToITCH encodes an event as a feed message. Only plain limit flow has an
// ITCH form; other order types report false.
func ToITCH(ev Event) (itch.Message, bool) {
	switch ev.Kind {
	case EventAdd:
		o := ev.Order
		if o.Type != core.Limit || o.AllOrNone {
			return itch.Message{}, false
		}
		return itch.Message{
			Kind:   itch.KindAdd,
			ID:     o.ID,
			Side:   sideByte(o.Side),
			Shares: o.Qty,
			Price:  o.Quote,
			Ticker: ev.Symbol,
		}, true
	case EventDelete:
		return itch.Message{Kind: itch.KindDelete, ID: ev.TargetID, Ticker: ev.Symbol}, true
	case EventReplace:
		return itch.Message{
			Kind:   itch.KindReplace,
			OldID:  ev.TargetID,
			ID:     ev.Order.ID,
			Shares: ev.Order.Qty,
			Price:  ev.Order.Quote,
			Ticker: ev.Symbol,
		}, true
	}
	return itch.Message{}, false
}
