package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

// CSVLog appends rows to a CSV file, writing header once when the file is new
type CSVLog struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

func NewCSVLog(path string, header []string) (*CSVLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create csv directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open csv log %s", path)
	}
	l := &CSVLog{f: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat csv log")
	}
	if info.Size() == 0 && len(header) > 0 {
		if err := l.Append(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

func (l *CSVLog) Append(rows ...[]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv rows")
	}
	return nil
}

func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return errors.Wrap(err, "flush csv log")
	}
	return l.f.Close()
}

var tradeHeader = []string{"trade_id", "timestamp", "symbol", "buy_order_id", "sell_order_id", "price", "qty", "aggressor"}

// CSVTradeLog is the execution log: one row per transaction
type CSVTradeLog struct {
	log *CSVLog
}

func NewCSVTradeLog(path string) (*CSVTradeLog, error) {
	l, err := NewCSVLog(path, tradeHeader)
	if err != nil {
		return nil, err
	}
	return &CSVTradeLog{log: l}, nil
}

func (l *CSVTradeLog) Name() string { return "csv" }

// Record implements TradeSink
func (l *CSVTradeLog) Record(_ context.Context, trades []core.Trade) error {
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			t.ID.String(),
			strconv.FormatInt(t.Timestamp.UnixNano(), 10),
			t.Symbol,
			strconv.FormatUint(t.BuyOrderID, 10),
			strconv.FormatUint(t.SellOrderID, 10),
			strconv.FormatInt(t.Price, 10),
			strconv.FormatInt(t.Qty, 10),
			t.Aggressor.String(),
		})
	}
	return l.log.Append(rows...)
}

func (l *CSVTradeLog) Close() error { return l.log.Close() }
