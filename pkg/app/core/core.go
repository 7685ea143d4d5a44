// Package core re-exports the matching types from its subpackages so callers
// outside the engine need a single import.
package core

import (
	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/app/core/market"
	"github.com/uhyunpark/matchbook/pkg/app/core/orderbook"
)

// From orderbook package
type (
	Side        = orderbook.Side
	OrderType   = orderbook.OrderType
	Status      = orderbook.Status
	Order       = orderbook.Order
	Transaction = orderbook.Transaction
	PriceLevel  = orderbook.PriceLevel
	Result      = orderbook.Result
	OrderBook   = orderbook.OrderBook
)

const (
	Buy  = orderbook.Buy
	Sell = orderbook.Sell

	Limit     = orderbook.Limit
	Market    = orderbook.Market
	Stop      = orderbook.Stop
	StopLimit = orderbook.StopLimit

	OK              = orderbook.OK
	SymbolExists    = orderbook.SymbolExists
	SymbolNotExists = orderbook.SymbolNotExists
	OrderExists     = orderbook.OrderExists
	OrderNotExists  = orderbook.OrderNotExists

	MaxPrice = orderbook.MaxPrice
)

func NewOrderBook(symbol string) *OrderBook {
	return orderbook.NewOrderBook(symbol)
}

// From market package
type CentralOrderBook = market.CentralOrderBook

func NewCentralOrderBook(logger *zap.Logger) *CentralOrderBook {
	return market.NewCentralOrderBook(logger)
}

// Digest returns the Keccak-256 of every book in the registry, 0x-hex encoded
func Digest(c *CentralOrderBook) string {
	return c.StateDigest()
}
