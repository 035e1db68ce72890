package search

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// coordinator is the single aggregation point of a run. All mutation of the
// result log and the progress counter happens on its goroutine; workers only
// reach it through channel sends, so the hot per-candidate loop takes no
// locks.
type coordinator struct {
	deriveCtxSummary summaryContext
	output           string
	interval         time.Duration
	log              *slog.Logger

	// results is owned by the run goroutine; it may only be read by others
	// after run has returned.
	results []MatchRecord

	// attempts and matches are atomics so Stats can be read concurrently
	// while the search is running.
	attempts atomic.Uint64
	matches  atomic.Uint64
	start    time.Time
}

// summaryContext is the fixed header of every RunSummary snapshot.
type summaryContext struct {
	deployer string
	codeHash string
}

func newCoordinator(sc summaryContext, output string, interval time.Duration, log *slog.Logger) *coordinator {
	return &coordinator{
		deriveCtxSummary: sc,
		output:           output,
		interval:         interval,
		log:              log,
		start:            time.Now(),
	}
}

// run multiplexes the two worker channels and the checkpoint timer until both
// channels are closed (all workers joined, driver dropped its senders) or
// cancellation is asserted via ctx. There is no priority between sources
// beyond whichever is ready.
func (c *coordinator) run(ctx context.Context, matchC <-chan MatchRecord, progressC <-chan uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-matchC:
			if !ok {
				matchC = nil
				if progressC == nil {
					return
				}
				continue
			}
			c.results = append(c.results, rec)
			c.matches.Add(1)
			c.log.Info("match found",
				"address", rec.Address, "pattern", rec.Pattern, "total", len(c.results))

		case n, ok := <-progressC:
			if !ok {
				progressC = nil
				if matchC == nil {
					return
				}
				continue
			}
			c.attempts.Add(n)

		case <-ticker.C:
			c.checkpoint()

		case <-ctx.Done():
			return
		}
	}
}

// checkpoint persists the current result log. A write failure is logged and
// retried at the next tick; the in-memory log is unaffected either way.
func (c *coordinator) checkpoint() {
	if len(c.results) == 0 {
		return
	}
	summary := c.snapshot()
	if err := WriteSummary(c.output, summary); err != nil {
		c.log.Warn("checkpoint write failed, will retry", "path", c.output, "err", err)
		return
	}
	c.log.Info("checkpoint written", "path", c.output, "results", len(summary.Results))
}

// snapshot builds a fresh, complete RunSummary from the current result log.
func (c *coordinator) snapshot() RunSummary {
	results := make([]MatchRecord, len(c.results))
	copy(results, c.results)
	return RunSummary{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Deployer:  c.deriveCtxSummary.deployer,
		CodeHash:  c.deriveCtxSummary.codeHash,
		Results:   results,
	}
}

// stats reports progress so far. Safe to call from any goroutine.
func (c *coordinator) stats() Stats {
	attempts := c.attempts.Load()
	elapsed := time.Since(c.start).Seconds()

	var rate float64
	if elapsed > 0 {
		rate = float64(attempts) / elapsed
	}
	return Stats{
		Attempts:    attempts,
		Matches:     c.matches.Load(),
		HashRate:    rate,
		ElapsedSecs: elapsed,
	}
}
