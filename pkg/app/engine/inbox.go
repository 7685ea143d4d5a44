package engine

import (
	"sync"
)

// Inbox buffers events between producers and the matcher. Drain hands out
// deletes first, then adds and replaces, each bucket FIFO by admission.
type Inbox struct {
	mu      sync.Mutex
	cancels []Event
	orders  []Event // adds and replaces together; replace ordering matters
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// Push enqueues events in admission order
func (in *Inbox) Push(evs ...Event) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, ev := range evs {
		if ev.Kind == EventDelete {
			in.cancels = append(in.cancels, ev)
		} else {
			in.orders = append(in.orders, ev)
		}
	}
}

// Drain removes and returns up to max events, cancels first. max <= 0
// drains everything.
func (in *Inbox) Drain(max int) []Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	var out []Event
	pull := func(q *[]Event) {
		n := len(*q)
		if max > 0 && n > max-len(out) {
			n = max - len(out)
		}
		out = append(out, (*q)[:n]...)
		*q = (*q)[n:]
	}

	pull(&in.cancels)
	pull(&in.orders)
	return out
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.cancels) + len(in.orders)
}
