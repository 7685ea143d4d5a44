package storage

import (
	"context"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

// TradeSink receives every batch of trades produced by one order-entry call
type TradeSink interface {
	Name() string
	Record(ctx context.Context, trades []core.Trade) error
	Close() error
}

// TradeReader serves journaled trades back to the API
type TradeReader interface {
	LoadRecentTrades(symbol string, limit int) ([]core.Trade, error)
}

var (
	_ TradeSink   = (*PebbleStore)(nil)
	_ TradeSink   = (*CSVTradeLog)(nil)
	_ TradeReader = (*PebbleStore)(nil)
)
