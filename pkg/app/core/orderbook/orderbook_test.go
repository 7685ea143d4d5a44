package orderbook

import (
	"reflect"
	"testing"
)

func limit(id uint64, side Side, price, qty int64) *Order {
	return &Order{ID: id, Side: side, Type: Limit, Quote: price, Qty: qty}
}

func TestLimitCrossFullFill(t *testing.T) {
	ob := NewOrderBook("AAPL")

	if res := ob.AddOrder(limit(1, Buy, 100, 10)); res.Status != OK || len(res.Transactions) != 0 {
		t.Fatalf("resting buy: got %+v", res)
	}
	res := ob.AddOrder(limit(2, Sell, 100, 10))
	want := []Transaction{{BuyOrderID: 1, SellOrderID: 2, Price: 100, Qty: 10}}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
	}
	if ob.Contains(1) || ob.Contains(2) {
		t.Errorf("both orders should be gone after a full fill")
	}
	if ob.Len() != 0 {
		t.Errorf("Len = %d, want 0", ob.Len())
	}
}

func TestPartialFillRestsRemainderAtOwnPrice(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Buy, 100, 5))

	res := ob.AddOrder(limit(2, Sell, 99, 10))
	if len(res.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %+v", res.Transactions)
	}
	tx := res.Transactions[0]
	// resting order gives the price
	if tx.Price != 100 || tx.Qty != 5 || tx.BuyOrderID != 1 || tx.SellOrderID != 2 {
		t.Errorf("unexpected transaction %+v", tx)
	}

	o, ok := ob.GetOrder(2)
	if !ok {
		t.Fatalf("order 2 should rest")
	}
	if o.Qty != 5 || o.Quote != 99 {
		t.Errorf("order 2 = %+v, want qty=5 quote=99", o)
	}
	if got := ob.BestAsk(); got != 99 {
		t.Errorf("BestAsk = %d, want 99", got)
	}
	if _, ok := ob.GetOrder(1); ok {
		t.Errorf("order 1 should be filled")
	}
}

func TestPriceTimePriority(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Sell, 101, 5))
	ob.AddOrder(limit(2, Sell, 100, 5))
	ob.AddOrder(limit(3, Sell, 100, 5))

	res := ob.AddOrder(limit(4, Buy, 101, 12))
	want := []Transaction{
		{BuyOrderID: 4, SellOrderID: 2, Price: 100, Qty: 5},
		{BuyOrderID: 4, SellOrderID: 3, Price: 100, Qty: 5},
		{BuyOrderID: 4, SellOrderID: 1, Price: 101, Qty: 2},
	}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v\nwant %+v", res.Transactions, want)
	}
	o, ok := ob.GetOrder(1)
	if !ok || o.Qty != 3 {
		t.Errorf("order 1 should rest with qty 3, got %+v ok=%t", o, ok)
	}
}

func TestLimitDoesNotCross(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Sell, 105, 5))
	res := ob.AddOrder(limit(2, Buy, 104, 5))
	if len(res.Transactions) != 0 {
		t.Fatalf("no trade expected, got %+v", res.Transactions)
	}
	if ob.BestBid() != 104 || ob.BestAsk() != 105 {
		t.Errorf("bbo = %d/%d, want 104/105", ob.BestBid(), ob.BestAsk())
	}
}

func TestDuplicateOrderID(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Buy, 100, 5))
	if res := ob.AddOrder(limit(1, Buy, 101, 5)); res.Status != OrderExists {
		t.Fatalf("status = %s, want ORDER_EXISTS", res.Status)
	}
	if ob.BestBid() != 100 {
		t.Errorf("rejected order changed the book")
	}
}

func TestDeleteOrder(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Buy, 100, 5))
	ob.AddOrder(limit(2, Buy, 100, 5))
	ob.AddOrder(limit(3, Buy, 99, 5))

	if st := ob.DeleteOrder(1); st != OK {
		t.Fatalf("delete: %s", st)
	}
	if st := ob.DeleteOrder(1); st != OrderNotExists {
		t.Fatalf("second delete: %s, want ORDER_NOT_EXISTS", st)
	}
	levels := ob.BidLevels()
	want := []PriceLevel{{Price: 100, Qty: 5, Orders: 1}, {Price: 99, Qty: 5, Orders: 1}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %+v, want %+v", levels, want)
	}

	ob.DeleteOrder(2)
	if ob.BestBid() != 99 {
		t.Errorf("empty level should be dropped, best bid = %d", ob.BestBid())
	}
}

func TestEmptyBookSentinels(t *testing.T) {
	ob := NewOrderBook("AAPL")
	if ob.BestBid() != 0 {
		t.Errorf("BestBid = %d, want 0", ob.BestBid())
	}
	if ob.BestAsk() != MaxPrice {
		t.Errorf("BestAsk = %d, want MaxPrice", ob.BestAsk())
	}
	if ob.MarketPrice(Sell) != MaxPrice || ob.MarketPrice(Buy) != 0 {
		t.Errorf("market prices = %d/%d", ob.MarketPrice(Buy), ob.MarketPrice(Sell))
	}
}

func TestMarketOrder(t *testing.T) {
	tests := []struct {
		name      string
		resting   []*Order
		order     *Order
		wantTxs   []Transaction
		wantRests bool
	}{
		{
			name:    "no opposing interest leaves book untouched",
			order:   &Order{ID: 9, Side: Buy, Type: Market, Qty: 5},
			wantTxs: nil,
		},
		{
			name:    "sweeps several levels",
			resting: []*Order{limit(1, Sell, 100, 3), limit(2, Sell, 102, 3)},
			order:   &Order{ID: 9, Side: Buy, Type: Market, Qty: 5},
			wantTxs: []Transaction{
				{BuyOrderID: 9, SellOrderID: 1, Price: 100, Qty: 3},
				{BuyOrderID: 9, SellOrderID: 2, Price: 102, Qty: 2},
			},
		},
		{
			name:    "remainder rests at captured best price",
			resting: []*Order{limit(1, Buy, 100, 3)},
			order:   &Order{ID: 9, Side: Sell, Type: Market, Qty: 5},
			wantTxs: []Transaction{
				{BuyOrderID: 1, SellOrderID: 9, Price: 100, Qty: 3},
			},
			wantRests: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ob := NewOrderBook("AAPL")
			for _, o := range tt.resting {
				ob.AddOrder(o)
			}
			res := ob.AddOrder(tt.order)
			if res.Status != OK {
				t.Fatalf("status = %s", res.Status)
			}
			if !reflect.DeepEqual(res.Transactions, tt.wantTxs) {
				t.Errorf("transactions = %+v, want %+v", res.Transactions, tt.wantTxs)
			}
			if got := ob.Contains(9); got != tt.wantRests {
				t.Errorf("market remainder resting = %t, want %t", got, tt.wantRests)
			}
		})
	}
}

func TestAllOrNoneRestingBlocksPartial(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(&Order{ID: 1, Side: Sell, Type: Limit, Quote: 100, Qty: 10, AllOrNone: true})
	ob.AddOrder(limit(2, Sell, 100, 5))

	res := ob.AddOrder(limit(3, Buy, 100, 5))
	if len(res.Transactions) != 0 {
		t.Fatalf("AON head must block a smaller aggressor, got %+v", res.Transactions)
	}
	o, _ := ob.GetOrder(1)
	if o.Qty != 10 {
		t.Errorf("AON resting qty = %d, want 10", o.Qty)
	}

	res = ob.AddOrder(limit(4, Sell, 99, 10))
	if len(res.Transactions) != 1 || res.Transactions[0].Qty != 5 {
		t.Fatalf("expected sell 4 to hit bid 3, got %+v", res.Transactions)
	}

	res = ob.AddOrder(limit(5, Buy, 100, 20))
	// 4 rests 5@99, then AON 10@100, then 5@100
	want := []Transaction{
		{BuyOrderID: 5, SellOrderID: 4, Price: 99, Qty: 5},
		{BuyOrderID: 5, SellOrderID: 1, Price: 100, Qty: 10},
		{BuyOrderID: 5, SellOrderID: 2, Price: 100, Qty: 5},
	}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v\nwant %+v", res.Transactions, want)
	}
}

func TestAllOrNoneAggressor(t *testing.T) {
	t.Run("fills against a single large enough order", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.AddOrder(limit(1, Sell, 100, 3))
		ob.AddOrder(limit(2, Sell, 101, 8))

		res := ob.AddOrder(&Order{ID: 3, Side: Buy, Type: Limit, Quote: 101, Qty: 6, AllOrNone: true})
		want := []Transaction{{BuyOrderID: 3, SellOrderID: 2, Price: 101, Qty: 6}}
		if !reflect.DeepEqual(res.Transactions, want) {
			t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
		}
		if o, _ := ob.GetOrder(1); o.Qty != 3 {
			t.Errorf("skipped order must be untouched, got qty %d", o.Qty)
		}
		if o, _ := ob.GetOrder(2); o.Qty != 2 {
			t.Errorf("order 2 qty = %d, want 2", o.Qty)
		}
	})

	t.Run("rests whole when no counterparty can absorb it", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.AddOrder(limit(1, Sell, 100, 3))
		ob.AddOrder(limit(2, Sell, 100, 3))

		res := ob.AddOrder(&Order{ID: 3, Side: Buy, Type: Limit, Quote: 100, Qty: 6, AllOrNone: true})
		if len(res.Transactions) != 0 {
			t.Fatalf("no partial fills for AON, got %+v", res.Transactions)
		}
		o, ok := ob.GetOrder(3)
		if !ok || o.Qty != 6 || !o.AllOrNone {
			t.Errorf("AON order should rest whole, got %+v ok=%t", o, ok)
		}
	})

	t.Run("market AON without counterparty is dropped", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.AddOrder(limit(1, Sell, 100, 3))

		res := ob.AddOrder(&Order{ID: 3, Side: Buy, Type: Market, Qty: 6, AllOrNone: true})
		if len(res.Transactions) != 0 || ob.Contains(3) {
			t.Fatalf("market AON should neither trade nor rest: %+v", res)
		}
	})

	t.Run("resting AON needs exact size", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.AddOrder(&Order{ID: 1, Side: Sell, Type: Limit, Quote: 100, Qty: 8, AllOrNone: true})
		ob.AddOrder(&Order{ID: 2, Side: Sell, Type: Limit, Quote: 100, Qty: 6, AllOrNone: true})

		res := ob.AddOrder(&Order{ID: 3, Side: Buy, Type: Limit, Quote: 100, Qty: 6, AllOrNone: true})
		want := []Transaction{{BuyOrderID: 3, SellOrderID: 2, Price: 100, Qty: 6}}
		if !reflect.DeepEqual(res.Transactions, want) {
			t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
		}
		if ob.Contains(2) {
			t.Errorf("exact AON match should remove order 2")
		}
	})
}

func TestLastPriceTracking(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Sell, 100, 5))
	ob.AddOrder(limit(2, Buy, 100, 5))

	if got := ob.MarketPrice(Buy); got != 100 {
		t.Errorf("buy market price = %d, want 100 from last buy execution", got)
	}
	if got := ob.MarketPrice(Sell); got != MaxPrice {
		t.Errorf("sell market price = %d, want MaxPrice", got)
	}
}

func TestSideAndOrderTypeText(t *testing.T) {
	for _, s := range []Side{Buy, Sell} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", s, err)
		}
		var got Side
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Errorf("side %q round-tripped to %v (err %v)", b, got, err)
		}
	}

	types := []struct {
		typ  OrderType
		name string
	}{
		{Limit, "LIMIT"},
		{Market, "MARKET"},
		{Stop, "STOP"},
		{StopLimit, "STOP_LIMIT"},
	}
	for _, tc := range types {
		if tc.typ.String() != tc.name {
			t.Errorf("%d.String() = %q, want %q", tc.typ, tc.typ.String(), tc.name)
		}
		parsed, err := ParseOrderType(tc.name)
		if err != nil || parsed != tc.typ {
			t.Errorf("ParseOrderType(%q) = %v, %v", tc.name, parsed, err)
		}
		b, _ := tc.typ.MarshalText()
		var got OrderType
		if err := got.UnmarshalText(b); err != nil || got != tc.typ {
			t.Errorf("type %q round-tripped to %v (err %v)", b, got, err)
		}
	}

	var s Side
	if err := s.UnmarshalText([]byte("HOLD")); err == nil {
		t.Error("unknown side accepted")
	}
	for _, bad := range []string{"", "limit", "STOPLIMIT"} {
		if _, err := ParseOrderType(bad); err == nil {
			t.Errorf("ParseOrderType(%q) accepted", bad)
		}
	}
}
