package engine

import (
	"context"
	"time"
)

// FeederConfig controls synthetic order flow
type FeederConfig struct {
	BatchSize int           // events per tick
	Interval  time.Duration // tick period
	Symbols   []string
	Mode      string
	BasePrice int64
	Seed      int64
	// StatsEvery logs a stats line every N ticks (0 disables)
	StatsEvery int
}

// DefaultFeederConfig returns reasonable defaults for a local demo
func DefaultFeederConfig() FeederConfig {
	return FeederConfig{
		BatchSize:  10,
		Interval:   100 * time.Millisecond,
		Symbols:    []string{"AAPL"},
		Mode:       ModeMixed,
		BasePrice:  1_000_000,
		Seed:       time.Now().UnixNano(),
		StatsEvery: 100,
	}
}

// StartFeeder applies a generated batch to app every cfg.Interval, as
// measured by the app's clock, until ctx ends or the returned cancel is
// called. Each batch passes through an Inbox, so its cancels are applied
// before its orders. done is closed once the loop has exited.
func StartFeeder(ctx context.Context, app *App, cfg FeederConfig) (cancel context.CancelFunc, done <-chan struct{}) {
	if cfg.Interval <= 0 {
		cfg.Interval = 100 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	gen := NewGenerator(cfg.Symbols, cfg.BasePrice, cfg.Mode, cfg.Seed)
	inbox := NewInbox()

	feedCtx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		start := time.Now()
		var ticks, events, trades int

		app.logger.Infow("feeder_started", "batch", cfg.BatchSize, "interval", cfg.Interval, "mode", cfg.Mode, "symbols", cfg.Symbols)

		for {
			select {
			case <-feedCtx.Done():
				elapsed := time.Since(start)
				app.logger.Infow("feeder_stopped",
					"events", events,
					"trades", trades,
					"elapsed", elapsed.Round(time.Millisecond),
					"events_per_sec", float64(events)/elapsed.Seconds(),
				)
				return

			case <-app.clock.After(cfg.Interval):
				inbox.Push(gen.Batch(cfg.BatchSize)...)
				for _, ev := range inbox.Drain(0) {
					out := app.Apply(feedCtx, ev)
					trades += len(out.Trades)
				}
				events += cfg.BatchSize
				ticks++

				if cfg.StatsEvery > 0 && ticks%cfg.StatsEvery == 0 {
					stats := gen.Stats()
					app.logger.Infow("feeder_stats",
						"orders", stats.Orders,
						"cancels", stats.Cancels,
						"replaces", stats.Replaces,
						"trades", trades,
					)
				}
			}
		}
	}()

	return cancel, finished
}
