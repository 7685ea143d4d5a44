package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key schema for the trade journal:
//
//   trade:<symbol>:<unix nanos, 20 digits>:<trade uuid> → Trade (JSON)
//   seq:<symbol>                                       → trade count (8 bytes)

const (
	prefixTrade = "trade:"
	prefixSeq   = "seq:"
)

// tradeKey returns the key for a trade
// Timestamp is zero-padded (20 digits) for lexicographic sorting
func tradeKey(symbol string, ts time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixTrade, symbol, ts.UnixNano(), id))
}

// tradePrefix returns the prefix for all trades of a symbol
func tradePrefix(symbol string) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixTrade, symbol))
}

func seqKey(symbol string) []byte {
	return []byte(prefixSeq + symbol)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
