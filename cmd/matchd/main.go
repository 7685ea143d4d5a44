package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uhyunpark/matchbook/params"
	"github.com/uhyunpark/matchbook/pkg/api"
	"github.com/uhyunpark/matchbook/pkg/app/core"
	"github.com/uhyunpark/matchbook/pkg/app/engine"
	"github.com/uhyunpark/matchbook/pkg/feed/itch"
	"github.com/uhyunpark/matchbook/pkg/publish"
	"github.com/uhyunpark/matchbook/pkg/storage"
	"github.com/uhyunpark/matchbook/pkg/util"
	"go.uber.org/zap"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.File, cfg.Log.Verbose)
	} else {
		logger, err = util.NewLogger(cfg.Log.Verbose)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Log.File, "verbose", cfg.Log.Verbose)

	// ---- Trade sinks ----
	app := engine.NewApp(logger, util.RealClock{})
	defer func() {
		if err := app.Close(); err != nil {
			sugar.Warnw("close_failed", "err", err)
		}
	}()

	var history storage.TradeReader
	if cfg.Sinks.TradeDBPath != "" {
		store, err := storage.NewPebbleStore(cfg.Sinks.TradeDBPath)
		if err != nil {
			sugar.Fatalw("trade_db_open_failed", "path", cfg.Sinks.TradeDBPath, "err", err)
		}
		app.AddSink(store)
		history = store
		sugar.Infow("sink_enabled", "sink", store.Name(), "path", cfg.Sinks.TradeDBPath)
	}
	if cfg.Sinks.TradeCSVPath != "" {
		csvLog, err := storage.NewCSVTradeLog(cfg.Sinks.TradeCSVPath)
		if err != nil {
			sugar.Fatalw("trade_csv_open_failed", "path", cfg.Sinks.TradeCSVPath, "err", err)
		}
		app.AddSink(csvLog)
		sugar.Infow("sink_enabled", "sink", csvLog.Name(), "path", cfg.Sinks.TradeCSVPath)
	}
	if len(cfg.Sinks.KafkaBrokers) > 0 {
		pub := publish.NewKafkaPublisher(cfg.Sinks.KafkaBrokers, cfg.Sinks.KafkaTopic)
		app.AddSink(pub)
		sugar.Infow("sink_enabled", "sink", pub.Name(), "brokers", cfg.Sinks.KafkaBrokers, "topic", cfg.Sinks.KafkaTopic)
	}

	for _, sym := range cfg.Symbols {
		if st := app.Books().AddSymbol(sym); st != core.OK {
			sugar.Warnw("add_symbol_failed", "symbol", sym, "status", st)
		}
	}
	sugar.Infow("books_ready", "symbols", app.Books().Symbols())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	var apiServer *api.Server
	if cfg.Server.APIAddr != "" {
		apiServer = api.NewServer(app.Books(), history, cfg.Feed.PriceScale, logger)
		app.OnTrade(apiServer.PublishTrades)

		go func() {
			if err := apiServer.Start(cfg.Server.APIAddr); err != nil {
				sugar.Fatalw("api_server_failed", "err", err)
			}
		}()
	}

	switch {
	case cfg.Feed.Path != "":
		replay(ctx, app, cfg, sugar)

	case cfg.Generator.Enabled:
		feederCfg := engine.DefaultFeederConfig()
		feederCfg.Symbols = cfg.Symbols
		feederCfg.Mode = cfg.Generator.Mode
		feederCfg.Interval = cfg.Generator.Interval
		feederCfg.BasePrice = cfg.Generator.BasePrice

		cancelFeeder, done := engine.StartFeeder(ctx, app, feederCfg)
		<-ctx.Done()
		cancelFeeder()
		<-done

	default:
		sugar.Info("no feed configured - serving the books until interrupted")
		<-ctx.Done()
	}

	for _, sym := range app.Books().Symbols() {
		digest, _ := app.Books().Digest(sym)
		sugar.Infow("final_book", "symbol", sym, "digest", digest)
	}
	sugar.Infow("final_state", "digest", core.Digest(app.Books()))

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			sugar.Warnw("api_shutdown_failed", "err", err)
		}
	}
}

// replay runs the configured ITCH file through the engine once
func replay(ctx context.Context, app *engine.App, cfg params.Config, sugar *zap.SugaredLogger) {
	f, err := os.Open(cfg.Feed.Path)
	if err != nil {
		sugar.Fatalw("feed_open_failed", "path", cfg.Feed.Path, "err", err)
	}
	defer f.Close()

	opts := engine.RunOptions{ProgressEvery: cfg.Feed.ProgressEvery}
	if cfg.Feed.MessageLogPath != "" {
		msgLog, err := storage.NewCSVLog(cfg.Feed.MessageLogPath, itch.CSVHeader)
		if err != nil {
			sugar.Fatalw("message_log_open_failed", "path", cfg.Feed.MessageLogPath, "err", err)
		}
		defer msgLog.Close()
		opts.MessageLog = msgLog
	}

	stats, err := app.Run(ctx, itch.NewReader(f), opts)
	if err != nil && ctx.Err() == nil {
		sugar.Errorw("feed_failed", "path", cfg.Feed.Path, "messages", stats.Messages, "err", err)
	}
}
