package market

import (
	"encoding/binary"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/uhyunpark/matchbook/pkg/app/core/orderbook"
)

// Digest computes a deterministic Keccak-256 of one symbol's book.
// Ethereum-style: 0x-prefixed 32-byte hex output.
//
// Components hashed, in order:
//  1. Symbol name
//  2. Bid levels (price, qty, order count; high to low)
//  3. Ask levels (low to high)
//  4. Pending stop-buy then stop-sell levels, in activation order
//  5. Buy and sell market prices
//
// Two books that went through the same order-entry calls hash equal.
func (c *CentralOrderBook) Digest(symbol string) (string, orderbook.Status) {
	h := sha3.NewLegacyKeccak256()
	st := c.View(symbol, func(ob *orderbook.OrderBook) {
		hashBook(h, ob)
	})
	if st != orderbook.OK {
		return "", st
	}
	return hexutil.Encode(h.Sum(nil)), orderbook.OK
}

// StateDigest hashes every book in symbol order into one Keccak-256
func (c *CentralOrderBook) StateDigest() string {
	h := sha3.NewLegacyKeccak256()
	for _, sym := range c.Symbols() {
		c.View(sym, func(ob *orderbook.OrderBook) {
			hashBook(h, ob)
		})
	}
	return hexutil.Encode(h.Sum(nil))
}

func hashBook(h hash.Hash, ob *orderbook.OrderBook) {
	var buf [8]byte
	put := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	levels := func(ls []orderbook.PriceLevel) {
		put(int64(len(ls)))
		for _, l := range ls {
			put(l.Price)
			put(l.Qty)
			put(int64(l.Orders))
		}
	}

	h.Write([]byte(ob.Symbol()))
	levels(ob.BidLevels())
	levels(ob.AskLevels())
	levels(ob.StopLevels(orderbook.Buy))
	levels(ob.StopLevels(orderbook.Sell))
	put(ob.MarketPrice(orderbook.Buy))
	put(ob.MarketPrice(orderbook.Sell))
}
