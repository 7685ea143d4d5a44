package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/uhyunpark/matchbook/pkg/app/engine"
	"github.com/uhyunpark/matchbook/pkg/feed/itch"
)

// gen-feed writes a synthetic ITCH 5.0 file that matchd can replay:
//
//	go run ./cmd/gen-feed -out data/sample.itch -symbols AAPL,MSFT -n 100000
//	FEED_PATH=data/sample.itch go run ./cmd/matchd
func main() {
	out := flag.String("out", "data/sample.itch", "output path")
	symbols := flag.String("symbols", "AAPL,MSFT", "comma-separated tickers")
	count := flag.Int("n", 10_000, "number of order events")
	seed := flag.Int64("seed", 1, "generator seed")
	base := flag.Int64("base", 1_000_000, "base price in 1/10000ths")
	flag.Parse()

	var syms []string
	for _, s := range strings.Split(*symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			syms = append(syms, s)
		}
	}

	if err := generate(*out, syms, *count, *seed, *base); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d events for %s to %s\n", *count, strings.Join(syms, ","), *out)
}

func generate(path string, symbols []string, count int, seed, base int64) error {
	if len(symbols) == 0 {
		return errors.New("no symbols")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := itch.NewWriter(f)

	// Timestamps are nanoseconds since midnight, starting at 09:30
	ts := uint64(9*time.Hour + 30*time.Minute)
	next := func() uint64 {
		ts += uint64(time.Microsecond)
		return ts
	}

	// Step 1: start of messages and the stock directory
	if err := w.Write(itch.Message{Kind: itch.KindSystem, Timestamp: next(), EventCode: 'O'}); err != nil {
		return err
	}
	locates := make(map[string]uint16, len(symbols))
	for i, sym := range symbols {
		locates[sym] = uint16(i + 1)
		if err := w.Write(itch.Message{
			Kind:      itch.KindDirectory,
			Locate:    locates[sym],
			Timestamp: next(),
			Ticker:    sym,
		}); err != nil {
			return err
		}
	}

	// Step 2: limit flow, which always has an ITCH encoding
	gen := engine.NewGenerator(symbols, base, engine.ModeLimit, seed)
	for written := 0; written < count; {
		ev := gen.Next()
		m, ok := engine.ToITCH(ev)
		if !ok {
			continue
		}
		m.Locate = locates[ev.Symbol]
		m.Timestamp = next()
		if err := w.Write(m); err != nil {
			return err
		}
		written++
	}

	// Step 3: end of messages
	if err := w.Write(itch.Message{Kind: itch.KindSystem, Timestamp: next(), EventCode: 'C'}); err != nil {
		return err
	}
	return w.Flush()
}
