package storage

import (
	"context"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/uhyunpark/matchbook/pkg/app/core"
)

// PebbleStore is an append-only journal of executed trades. It records what
// the engine printed; it never holds book state.
type PebbleStore struct {
	db *pebble.DB
	mu sync.Mutex // serialises count read-modify-write across batches
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open trade journal %s", path)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Name() string { return "pebble" }

func (s *PebbleStore) Close() error { return s.db.Close() }

// Record implements TradeSink
func (s *PebbleStore) Record(_ context.Context, trades []core.Trade) error {
	return s.SaveTrades(trades)
}

// SaveTrades writes trades and bumps per-symbol counts in one batch
func (s *PebbleStore) SaveTrades(trades []core.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	counts := make(map[string]uint64)
	for _, t := range trades {
		data, err := encodeTrade(t)
		if err != nil {
			return errors.Wrap(err, "failed to marshal trade")
		}
		if err := batch.Set(tradeKey(t.Symbol, t.Timestamp, t.ID), data, nil); err != nil {
			return errors.Wrap(err, "failed to stage trade")
		}
		counts[t.Symbol]++
	}
	for sym, n := range counts {
		prev, err := s.TradeCount(sym)
		if err != nil {
			return err
		}
		if err := batch.Set(seqKey(sym), encodeCount(prev+n), nil); err != nil {
			return errors.Wrap(err, "failed to stage trade count")
		}
	}

	if err := batch.Commit(pebble.NoSync); err != nil {
		return errors.Wrap(err, "failed to save trades")
	}
	return nil
}

// TradeCount returns how many trades were journaled for symbol
func (s *PebbleStore) TradeCount(symbol string) (uint64, error) {
	val, closer, err := s.db.Get(seqKey(symbol))
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to get trade count")
	}
	defer closer.Close()
	return decodeCount(val), nil
}

// LoadRecentTrades loads the most recent N trades for a symbol, newest first
func (s *PebbleStore) LoadRecentTrades(symbol string, limit int) ([]core.Trade, error) {
	prefix := tradePrefix(symbol)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trade iterator")
	}
	defer iter.Close()

	var trades []core.Trade
	for iter.Last(); iter.Valid() && len(trades) < limit; iter.Prev() {
		var trade core.Trade
		if err := decodeTrade(iter.Value(), &trade); err != nil {
			continue // Skip invalid entries
		}
		trades = append(trades, trade)
	}

	return trades, errors.Wrap(iter.Error(), "trade iterator")
}
