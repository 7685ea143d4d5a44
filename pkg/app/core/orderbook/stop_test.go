package orderbook

import (
	"reflect"
	"testing"
)

func TestStopSellPendsThenActivates(t *testing.T) {
	ob := NewOrderBook("AAPL")

	res := ob.AddOrder(&Order{ID: 3, Side: Sell, Type: Stop, StopPrice: 90, Qty: 5})
	if res.Status != OK || len(res.Activated) != 0 {
		t.Fatalf("stop should pend on an empty book, got %+v", res)
	}
	info, ok := ob.OrderInfo(3)
	if !ok || info.Type != Stop || info.Price != 90 {
		t.Fatalf("pending stop index entry = %+v ok=%t", info, ok)
	}
	if levels := ob.StopLevels(Sell); len(levels) != 1 || levels[0].Price != 90 {
		t.Errorf("stop levels = %+v", levels)
	}

	// a bid at 100 lifts the buy market price above the trigger
	res = ob.AddOrder(limit(1, Buy, 100, 10))
	if !reflect.DeepEqual(res.Activated, []uint64{3}) {
		t.Fatalf("activated = %v, want [3]", res.Activated)
	}
	want := []Transaction{{BuyOrderID: 1, SellOrderID: 3, Price: 100, Qty: 5}}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
	}
	if ob.Contains(3) {
		t.Errorf("filled stop must leave the index")
	}
	if o, _ := ob.GetOrder(1); o.Qty != 5 {
		t.Errorf("bid qty = %d, want 5", o.Qty)
	}
}

func TestStopImmediateActivation(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(1, Sell, 100, 10))

	// sell market price is 100, at or below the 105 trigger
	res := ob.AddOrder(&Order{ID: 2, Side: Buy, Type: Stop, StopPrice: 105, Qty: 4})
	if !reflect.DeepEqual(res.Activated, []uint64{2}) {
		t.Fatalf("activated = %v, want [2]", res.Activated)
	}
	want := []Transaction{{BuyOrderID: 2, SellOrderID: 1, Price: 100, Qty: 4}}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
	}
}

func TestStopLimitRestsRemainderAsLimit(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(&Order{ID: 5, Side: Sell, Type: StopLimit, StopPrice: 95, Quote: 97, Qty: 8})

	res := ob.AddOrder(limit(1, Buy, 98, 3))
	if !reflect.DeepEqual(res.Activated, []uint64{5}) {
		t.Fatalf("activated = %v", res.Activated)
	}
	want := []Transaction{{BuyOrderID: 1, SellOrderID: 5, Price: 98, Qty: 3}}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v, want %+v", res.Transactions, want)
	}
	o, ok := ob.GetOrder(5)
	if !ok {
		t.Fatalf("stop-limit remainder should rest")
	}
	if o.Type != Limit || o.Qty != 5 || o.Quote != 97 {
		t.Errorf("remainder = %+v, want LIMIT 5@97", o)
	}
	if info, _ := ob.OrderInfo(5); info.Type != Limit || info.Price != 97 {
		t.Errorf("index entry = %+v", info)
	}
	if ob.BestAsk() != 97 {
		t.Errorf("BestAsk = %d, want 97", ob.BestAsk())
	}
}

func TestStopMarketRemainder(t *testing.T) {
	t.Run("rests at the captured best price", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.AddOrder(&Order{ID: 4, Side: Sell, Type: Stop, StopPrice: 50, Qty: 5})
		// bid at 60 triggers the stop, which then takes the whole bid
		res := ob.AddOrder(limit(1, Buy, 60, 2))

		if !reflect.DeepEqual(res.Activated, []uint64{4}) {
			t.Fatalf("activated = %v", res.Activated)
		}
		if len(res.Transactions) != 1 || res.Transactions[0].Qty != 2 {
			t.Fatalf("transactions = %+v", res.Transactions)
		}
		o, ok := ob.GetOrder(4)
		if !ok || o.Qty != 3 || o.Quote != 60 || o.Type != Market {
			t.Errorf("remainder = %+v ok=%t", o, ok)
		}
	})

	t.Run("dropped without opposing interest", func(t *testing.T) {
		ob := NewOrderBook("AAPL")
		ob.lastSellPrice = 150
		res := ob.AddOrder(&Order{ID: 7, Side: Buy, Type: Stop, StopPrice: 300, Qty: 1})
		if !reflect.DeepEqual(res.Activated, []uint64{7}) {
			t.Fatalf("activated = %v", res.Activated)
		}
		if len(res.Transactions) != 0 || ob.Contains(7) {
			t.Errorf("stop market with no asks must be dropped, got %+v", res)
		}
	})
}

func TestStopCascadeWithinOneCall(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(limit(2, Buy, 50, 1))
	ob.AddOrder(&Order{ID: 10, Side: Sell, Type: Stop, StopPrice: 100, Qty: 1})
	ob.AddOrder(&Order{ID: 11, Side: Buy, Type: StopLimit, StopPrice: 101, Quote: 120, Qty: 2})

	// the ask at 101 triggers 11; its execution moves the buy market price
	// to 101, which in turn triggers 10 against the bid at 50
	res := ob.AddOrder(limit(1, Sell, 101, 2))

	if !reflect.DeepEqual(res.Activated, []uint64{11, 10}) {
		t.Fatalf("activated = %v, want [11 10]", res.Activated)
	}
	want := []Transaction{
		{BuyOrderID: 11, SellOrderID: 1, Price: 101, Qty: 2},
		{BuyOrderID: 2, SellOrderID: 10, Price: 50, Qty: 1},
	}
	if !reflect.DeepEqual(res.Transactions, want) {
		t.Fatalf("transactions = %+v\nwant %+v", res.Transactions, want)
	}
	if ob.Len() != 0 {
		t.Errorf("book should be empty, Len = %d", ob.Len())
	}
}

func TestDeletePendingStop(t *testing.T) {
	ob := NewOrderBook("AAPL")
	ob.AddOrder(&Order{ID: 1, Side: Buy, Type: Stop, StopPrice: 110, Qty: 3})
	ob.AddOrder(&Order{ID: 2, Side: Buy, Type: Stop, StopPrice: 110, Qty: 3})

	if st := ob.DeleteOrder(1); st != OK {
		t.Fatalf("delete pending stop: %s", st)
	}
	levels := ob.StopLevels(Buy)
	if len(levels) != 1 || levels[0].Orders != 1 {
		t.Errorf("stop levels = %+v", levels)
	}
	ob.DeleteOrder(2)
	if len(ob.StopLevels(Buy)) != 0 {
		t.Errorf("empty stop level should be dropped")
	}
}

func TestStopLevelOrdering(t *testing.T) {
	ob := NewOrderBook("AAPL")
	for i, p := range []int64{105, 120, 110} {
		ob.AddOrder(&Order{ID: uint64(i + 1), Side: Buy, Type: Stop, StopPrice: p, Qty: 1})
		ob.AddOrder(&Order{ID: uint64(i + 10), Side: Sell, Type: Stop, StopPrice: p, Qty: 1})
	}
	var buys, sells []int64
	for _, l := range ob.StopLevels(Buy) {
		buys = append(buys, l.Price)
	}
	for _, l := range ob.StopLevels(Sell) {
		sells = append(sells, l.Price)
	}
	if !reflect.DeepEqual(buys, []int64{120, 110, 105}) {
		t.Errorf("stop buy order = %v", buys)
	}
	if !reflect.DeepEqual(sells, []int64{105, 110, 120}) {
		t.Errorf("stop sell order = %v", sells)
	}
}
