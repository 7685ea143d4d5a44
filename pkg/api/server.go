package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/pkg/app/core"
	"github.com/uhyunpark/matchbook/pkg/feed/itch"
	"github.com/uhyunpark/matchbook/pkg/metrics"
	"github.com/uhyunpark/matchbook/pkg/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTradeLimit = 50
	maxTradeLimit     = 1000
)

// Server serves read-only market data over REST and WebSocket. Orders only
// enter through the engine.
type Server struct {
	books  *core.CentralOrderBook
	trades storage.TradeReader // nil disables /trades history
	scale  int32
	router *mux.Router
	hub    *Hub
	logger *zap.SugaredLogger
	http   *http.Server
}

// NewServer creates the server and starts its WebSocket hub
func NewServer(books *core.CentralOrderBook, trades storage.TradeReader, priceScale int32, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	sugar := logger.Sugar()
	s := &Server{
		books:  books,
		trades: trades,
		scale:  priceScale,
		router: mux.NewRouter(),
		hub:    NewHub(sugar),
		logger: sugar,
	}
	s.setupRoutes()
	go s.hub.Run()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{symbol}/orderbook", s.handleGetOrderbook).Methods("GET")
	api.HandleFunc("/markets/{symbol}/bbo", s.handleGetBBO).Methods("GET")
	api.HandleFunc("/markets/{symbol}/orders/{id:[0-9]+}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/markets/{symbol}/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/markets/{symbol}/digest", s.handleGetDigest).Methods("GET")
	api.HandleFunc("/digest", s.handleGetStateDigest).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Infow("api_listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) price(p int64) string {
	return itch.FormatPrice(p, s.scale)
}

// quote renders a price, or nil for the empty-side sentinels
func (s *Server) quote(p int64) *string {
	if p <= 0 || p == core.MaxPrice {
		return nil
	}
	v := s.price(p)
	return &v
}

func (s *Server) levels(ls []core.PriceLevel) []PriceLevel {
	out := make([]PriceLevel, len(ls))
	for i, l := range ls {
		out[i] = PriceLevel{Price: s.price(l.Price), Size: l.Qty, Orders: l.Orders}
	}
	return out
}

func countOrders(ls []core.PriceLevel) int {
	n := 0
	for _, l := range ls {
		n += l.Orders
	}
	return n
}

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	symbols := s.books.Symbols()
	response := make([]MarketInfo, 0, len(symbols))
	for _, sym := range symbols {
		info := MarketInfo{Symbol: sym}
		st := s.books.View(sym, func(ob *core.OrderBook) {
			bids, asks := ob.BidLevels(), ob.AskLevels()
			info.BestBid = s.quote(ob.BestBid())
			info.BestAsk = s.quote(ob.BestAsk())
			info.BidLevels, info.AskLevels = len(bids), len(asks)
			info.PendingStops = countOrders(ob.StopLevels(core.Buy)) + countOrders(ob.StopLevels(core.Sell))
		})
		if st == core.OK {
			response = append(response, info)
		}
	}
	respondJSON(w, response)
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var snap OrderbookSnapshot
	st := s.books.View(symbol, func(ob *core.OrderBook) {
		snap = OrderbookSnapshot{
			Symbol:    symbol,
			Bids:      s.levels(ob.BidLevels()),
			Asks:      s.levels(ob.AskLevels()),
			StopBuys:  s.levels(ob.StopLevels(core.Buy)),
			StopSells: s.levels(ob.StopLevels(core.Sell)),
			Timestamp: time.Now().UnixMilli(),
		}
	})
	if st != core.OK {
		respondError(w, http.StatusNotFound, "market not found", st.String())
		return
	}
	respondJSON(w, snap)
}

func (s *Server) handleGetBBO(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	st, bid := s.books.BestBid(symbol)
	if st != core.OK {
		respondError(w, http.StatusNotFound, "market not found", st.String())
		return
	}
	_, ask := s.books.BestAsk(symbol)
	respondJSON(w, BBO{Symbol: symbol, Bid: s.quote(bid), Ask: s.quote(ask)})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id", err.Error())
		return
	}

	o, ok := s.books.GetOrder(symbol, id)
	if !ok {
		respondError(w, http.StatusNotFound, "order not found", core.OrderNotExists.String())
		return
	}

	info := OrderInfo{
		ID:        o.ID,
		Symbol:    symbol,
		Side:      o.Side.String(),
		Type:      o.Type.String(),
		Price:     s.quote(o.Quote),
		Size:      o.Qty,
		AllOrNone: o.AllOrNone,
		Timestamp: o.Timestamp.UnixMilli(),
	}
	if o.Type.IsStop() {
		info.StopPrice = s.quote(o.StopPrice)
	}
	respondJSON(w, info)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if !s.books.Exists(symbol) {
		respondError(w, http.StatusNotFound, "market not found", core.SymbolNotExists.String())
		return
	}

	limit := defaultTradeLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", q)
			return
		}
		limit = min(n, maxTradeLimit)
	}

	if s.trades == nil {
		respondJSON(w, []TradeInfo{})
		return
	}
	trades, err := s.trades.LoadRecentTrades(symbol, limit)
	if err != nil {
		s.logger.Warnw("trade_history_failed", "symbol", symbol, "err", err)
		respondError(w, http.StatusInternalServerError, "trade history unavailable", err.Error())
		return
	}
	respondJSON(w, s.tradeInfos(trades))
}

func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	digest, st := s.books.Digest(symbol)
	if st != core.OK {
		respondError(w, http.StatusNotFound, "market not found", st.String())
		return
	}
	respondJSON(w, DigestInfo{Symbol: symbol, Digest: digest})
}

func (s *Server) handleGetStateDigest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, DigestInfo{Digest: core.Digest(s.books)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status":  "ok",
		"symbols": s.books.Count(),
		"clients": s.hub.Clients(),
	})
}

func (s *Server) tradeInfos(trades []core.Trade) []TradeInfo {
	out := make([]TradeInfo, len(trades))
	for i, t := range trades {
		out[i] = TradeInfo{
			ID:          t.ID.String(),
			Symbol:      t.Symbol,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Price:       s.price(t.Price),
			Size:        t.Qty,
			Side:        strings.ToLower(t.Aggressor.String()),
			Timestamp:   t.Timestamp.UnixMilli(),
		}
	}
	return out
}

// ==============================
// Broadcast Methods (called from the engine)
// ==============================

// PublishTrades pushes a batch of trades on "trades:<symbol>" and the
// refreshed book on "orderbook:<symbol>". It has the signature of the
// engine's OnTrade hook.
func (s *Server) PublishTrades(trades []core.Trade) {
	bySymbol := make(map[string][]core.Trade)
	var order []string
	for _, t := range trades {
		if _, seen := bySymbol[t.Symbol]; !seen {
			order = append(order, t.Symbol)
		}
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}
	for _, sym := range order {
		s.hub.BroadcastToChannel("trades:"+sym, TradesUpdate{
			Type:   "trades",
			Symbol: sym,
			Trades: s.tradeInfos(bySymbol[sym]),
		})
		s.BroadcastOrderbook(sym)
	}
}

// BroadcastOrderbook broadcasts orderbook update to WebSocket clients
func (s *Server) BroadcastOrderbook(symbol string) {
	var update OrderbookUpdate
	st := s.books.View(symbol, func(ob *core.OrderBook) {
		update = OrderbookUpdate{
			Type:      "orderbook",
			Symbol:    symbol,
			Bids:      s.levels(ob.BidLevels()),
			Asks:      s.levels(ob.AskLevels()),
			Timestamp: time.Now().UnixMilli(),
		}
	})
	if st != core.OK {
		return
	}
	s.hub.BroadcastToChannel("orderbook:"+symbol, update)
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
