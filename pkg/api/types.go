package api

// API response types for REST endpoints and WebSocket messages.
// Prices are decimal strings at the feed's price scale; sizes are lots.

// ==============================
// REST Response Types
// ==============================

// MarketInfo summarises one symbol's book
type MarketInfo struct {
	Symbol       string  `json:"symbol"`
	BestBid      *string `json:"bestBid"` // null when there are no bids
	BestAsk      *string `json:"bestAsk"` // null when there are no asks
	BidLevels    int     `json:"bidLevels"`
	AskLevels    int     `json:"askLevels"`
	PendingStops int     `json:"pendingStops"`
}

// OrderbookSnapshot represents current orderbook state
type OrderbookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`      // Sorted high to low
	Asks      []PriceLevel `json:"asks"`      // Sorted low to high
	StopBuys  []PriceLevel `json:"stopBuys"`  // Activation order
	StopSells []PriceLevel `json:"stopSells"` // Activation order
	Timestamp int64        `json:"timestamp"` // Unix milliseconds
}

// PriceLevel is one aggregated level
type PriceLevel struct {
	Price  string `json:"price"`
	Size   int64  `json:"size"`
	Orders int    `json:"orders"`
}

// BBO is the best bid and offer of a symbol
type BBO struct {
	Symbol string  `json:"symbol"`
	Bid    *string `json:"bid"`
	Ask    *string `json:"ask"`
}

// OrderInfo is a resting order snapshot
type OrderInfo struct {
	ID        uint64  `json:"id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Price     *string `json:"price"`     // null for a market remainder without a quote
	StopPrice *string `json:"stopPrice"` // set only for pending stops
	Size      int64   `json:"size"`
	AllOrNone bool    `json:"allOrNone"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
}

// TradeInfo represents a recent trade
type TradeInfo struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Price       string `json:"price"`
	Size        int64  `json:"size"`
	Side        string `json:"side"`      // aggressor, "buy" or "sell"
	Timestamp   int64  `json:"timestamp"` // Unix milliseconds
}

// DigestInfo is a book fingerprint; equal digests mean equal books
type DigestInfo struct {
	Symbol string `json:"symbol,omitempty"`
	Digest string `json:"digest"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by clients: {"op":"subscribe","channels":["trades:AAPL"]}
type WSSubscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}

// WSAck confirms a subscription change
type WSAck struct {
	Type     string   `json:"type"` // "subscribed" or "unsubscribed"
	Channels []string `json:"channels"`
}

// OrderbookUpdate is pushed on "orderbook:<symbol>" after trades print
type OrderbookUpdate struct {
	Type      string       `json:"type"` // "orderbook"
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp int64        `json:"timestamp"`
}

// TradesUpdate is pushed on "trades:<symbol>"
type TradesUpdate struct {
	Type   string      `json:"type"` // "trades"
	Symbol string      `json:"symbol"`
	Trades []TradeInfo `json:"trades"`
}
