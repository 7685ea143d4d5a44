package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade is a Transaction enriched with what a downstream consumer needs:
// a unique id, the symbol, which side was the aggressor, and when it printed.
type Trade struct {
	ID          uuid.UUID `json:"id"`
	Symbol      string    `json:"symbol"`
	BuyOrderID  uint64    `json:"buyOrderId"`
	SellOrderID uint64    `json:"sellOrderId"`
	Price       int64     `json:"price"`
	Qty         int64     `json:"qty"`
	Aggressor   Side      `json:"aggressor"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTrades converts the transactions of one AddOrder call. Of the two
// orders in a transaction, the one that entered the book later aggressed:
// resting orders predate the call, the incoming order comes next, and stops
// follow in activation order.
func NewTrades(symbol string, incoming *Order, res Result, ts time.Time) []Trade {
	if len(res.Transactions) == 0 {
		return nil
	}
	rank := make(map[uint64]int, 1+len(res.Activated))
	rank[incoming.ID] = 1
	for i, id := range res.Activated {
		rank[id] = i + 2
	}

	trades := make([]Trade, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		aggressor := Sell
		if rank[tx.BuyOrderID] > rank[tx.SellOrderID] {
			aggressor = Buy
		}
		trades = append(trades, Trade{
			ID:          uuid.New(),
			Symbol:      symbol,
			BuyOrderID:  tx.BuyOrderID,
			SellOrderID: tx.SellOrderID,
			Price:       tx.Price,
			Qty:         tx.Qty,
			Aggressor:   aggressor,
			Timestamp:   ts,
		})
	}
	return trades
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s buy=%d sell=%d px=%d qty=%d", t.Symbol, t.Aggressor, t.BuyOrderID, t.SellOrderID, t.Price, t.Qty)
}
