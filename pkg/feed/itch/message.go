// Package itch decodes Nasdaq TotalView-ITCH 5.0 files into order-entry
// messages for the matching engine.
package itch

import (
	"strconv"
	"strings"
)

// Kind is the normalised message kind the engine acts on. Adds with and
// without attribution collapse to Add; deletes and partial cancels to Delete.
type Kind byte

const (
	KindSystem    Kind = 'S'
	KindDirectory Kind = 'Y'
	KindAdd       Kind = 'A'
	KindDelete    Kind = 'D'
	KindReplace   Kind = 'R'
	KindExecute   Kind = 'E'
	KindExecPrice Kind = 'C'
	KindTrade     Kind = 'P'
)

func (k Kind) String() string { return string(k) }

// normalise maps a raw ITCH type byte onto a Kind
func normalise(raw byte) (Kind, bool) {
	switch raw {
	case 'S':
		return KindSystem, true
	case 'R':
		return KindDirectory, true
	case 'A', 'F':
		return KindAdd, true
	case 'D', 'X':
		return KindDelete, true
	case 'U':
		return KindReplace, true
	case 'E':
		return KindExecute, true
	case 'C':
		return KindExecPrice, true
	case 'P':
		return KindTrade, true
	}
	return 0, false
}

// Message is one decoded feed record. Fields a message type does not carry
// are left zero.
type Message struct {
	Kind    Kind
	RawType byte
	Locate  uint16
	// Timestamp is nanoseconds since midnight
	Timestamp uint64

	// ID is the order reference; for a replace it is the new reference
	ID    uint64
	OldID uint64
	// Side is 'B' or 'S'
	Side   byte
	Ticker string
	// Price carries four implied decimals
	Price int64
	// Shares is the displayed size of an add, replace or trade
	Shares      int64
	CancelSize  int64
	ExecSize    int64
	MatchNumber uint64
	MPID        string
	EventCode   byte
}

// CSVHeader names the columns of Message.CSV
var CSVHeader = []string{
	"timestamp", "type", "id", "side", "shares", "price",
	"cancel_size", "exec_size", "old_id", "ticker", "mpid",
}

// CSV renders the message as one log row. Absent numeric fields are blank.
func (m Message) CSV() []string {
	num := func(v int64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	}
	unum := func(v uint64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatUint(v, 10)
	}
	side := ""
	if m.Side != 0 {
		side = string(m.Side)
	}
	return []string{
		strconv.FormatUint(m.Timestamp, 10),
		m.Kind.String(),
		unum(m.ID),
		side,
		num(m.Shares),
		num(m.Price),
		num(m.CancelSize),
		num(m.ExecSize),
		unum(m.OldID),
		m.Ticker,
		m.MPID,
	}
}

// IsPartialCancel reports an X message: a delete of only part of the order
func (m Message) IsPartialCancel() bool {
	return m.RawType == 'X'
}

func trimTicker(b []byte) string {
	return strings.TrimSpace(string(b))
}
