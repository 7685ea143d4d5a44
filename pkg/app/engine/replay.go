package engine

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/uhyunpark/matchbook/pkg/feed/itch"
	"github.com/uhyunpark/matchbook/pkg/metrics"
)

// MessageLog receives one CSV row per decoded feed message
type MessageLog interface {
	Append(rows ...[]string) error
}

type RunOptions struct {
	// ProgressEvery logs a progress line every N messages (0 disables)
	ProgressEvery int
	// MessageLog, when set, records every decoded message
	MessageLog MessageLog
}

type RunStats struct {
	Messages uint64
	Events   uint64
	Rejected uint64
	Trades   uint64
	Elapsed  time.Duration
}

// Run replays a feed until EOF or until ctx is cancelled. Cancellation is
// checked between messages, so no event is ever half applied.
func (a *App) Run(ctx context.Context, r *itch.Reader, opts RunOptions) (RunStats, error) {
	var stats RunStats
	start := time.Now()

	a.logger.Infow("feed_started", "progress_every", opts.ProgressEvery)

	for {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			a.logger.Infow("feed_cancelled", "messages", stats.Messages, "trades", stats.Trades)
			return stats, err
		}

		m, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, errors.Wrapf(err, "feed message %d", stats.Messages+1)
		}
		stats.Messages++
		metrics.FeedMessages.WithLabelValues(m.Kind.String()).Inc()

		if opts.MessageLog != nil {
			if err := opts.MessageLog.Append(m.CSV()); err != nil {
				stats.Elapsed = time.Since(start)
				return stats, errors.Wrap(err, "message log")
			}
		}

		if ev, ok := FromITCH(m); ok {
			out := a.Apply(ctx, ev)
			stats.Events++
			stats.Trades += uint64(len(out.Trades))
			if out.Status.Err() != nil {
				stats.Rejected++
			}
		}

		if opts.ProgressEvery > 0 && stats.Messages%uint64(opts.ProgressEvery) == 0 {
			elapsed := time.Since(start)
			a.logger.Infow("feed_progress",
				"messages", stats.Messages,
				"events", stats.Events,
				"trades", stats.Trades,
				"elapsed", elapsed.Round(time.Millisecond),
				"msg_per_sec", float64(stats.Messages)/elapsed.Seconds(),
			)
		}
	}

	stats.Elapsed = time.Since(start)
	a.logger.Infow("feed_done",
		"messages", stats.Messages,
		"skipped", r.Skipped(),
		"events", stats.Events,
		"rejected", stats.Rejected,
		"trades", stats.Trades,
		"elapsed", stats.Elapsed.Round(time.Millisecond),
	)
	return stats, nil
}
