package orderbook

import (
	"testing"
)

// BenchmarkAddOrderCrossing measures a crossing limit order against a book
// holding 100 levels a side
func BenchmarkAddOrderCrossing(b *testing.B) {
	ob := NewOrderBook("BENCH")

	// Pre-fill orderbook with 100 price levels (realistic depth)
	var id uint64
	for i := 0; i < 100; i++ {
		id++
		ob.AddOrder(limit(id, Buy, int64(1000-i), 1_000_000))
		id++
		ob.AddOrder(limit(id, Sell, int64(1100+i), 1_000_000))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id++
		side, price := Buy, int64(1100)
		if i%2 == 0 {
			side, price = Sell, 1000
		}
		ob.AddOrder(limit(id, side, price, 1))
	}
}

// BenchmarkDeleteOrder measures cancellation: O(1) index lookup plus a scan
// of one level's queue
func BenchmarkDeleteOrder(b *testing.B) {
	ob := NewOrderBook("BENCH")
	for i := 0; i < b.N; i++ {
		ob.AddOrder(limit(uint64(i+1), Buy, int64(1000+i%1000), 10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ob.DeleteOrder(uint64(i + 1))
	}
}

// BenchmarkStopActivation measures a limit order that triggers a full level
// of pending stops
func BenchmarkStopActivation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		ob := NewOrderBook("BENCH")
		ob.AddOrder(limit(1, Buy, 100, 1_000))
		for j := 0; j < 50; j++ {
			ob.AddOrder(&Order{ID: uint64(j + 10), Side: Sell, Type: StopLimit, StopPrice: 120, Quote: 100, Qty: 1})
		}
		b.StartTimer()

		ob.AddOrder(limit(2, Buy, 125, 1))
	}
}
