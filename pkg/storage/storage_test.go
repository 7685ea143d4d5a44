package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

func trade(symbol string, ts int64, price int64) core.Trade {
	return core.Trade{
		ID:          uuid.New(),
		Symbol:      symbol,
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       price,
		Qty:         10,
		Aggressor:   core.Sell,
		Timestamp:   time.Unix(0, ts),
	}
}

func TestPebbleTradeJournal(t *testing.T) {
	s, err := NewPebbleStore(filepath.Join(t.TempDir(), "trades"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Record(ctx, []core.Trade{
		trade("AAPL", 100, 1),
		trade("AAPL", 300, 3),
		trade("MSFT", 200, 9),
	}))
	require.NoError(t, s.SaveTrades([]core.Trade{trade("AAPL", 200, 2)}))
	require.NoError(t, s.SaveTrades(nil))

	got, err := s.LoadRecentTrades("AAPL", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Price, "newest first")
	assert.Equal(t, int64(2), got[1].Price)
	assert.Equal(t, core.Sell, got[0].Aggressor)

	all, err := s.LoadRecentTrades("AAPL", 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := s.TradeCount("AAPL")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	n, err = s.TradeCount("NOPE")
	require.NoError(t, err)
	assert.Zero(t, n)

	// prefix scan must not bleed into symbols sharing a prefix
	require.NoError(t, s.SaveTrades([]core.Trade{trade("AAPLX", 400, 7)}))
	all, err = s.LoadRecentTrades("AAPL", 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCSVTradeLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")

	l, err := NewCSVTradeLog(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), []core.Trade{trade("AAPL", 5, 100)}))
	require.NoError(t, l.Close())

	// reopening appends without a second header
	l, err = NewCSVTradeLog(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), []core.Trade{trade("MSFT", 6, 200)}))
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, tradeHeader, rows[0])
	assert.Equal(t, []string{"5", "AAPL", "1", "2", "100", "10", "SELL"}, rows[1][1:])
	assert.Equal(t, "MSFT", rows[2][2])
}
