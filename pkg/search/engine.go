package search

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"
)

// Engine drives one search run: it partitions the attempt budget, spawns the
// worker pool and the coordinator, joins everything, and guarantees a final
// checkpoint write on both the normal and the interrupted exit path.
type Engine struct {
	cfg   Config
	coord *coordinator
	log   *slog.Logger
}

// New prepares an engine for the given configuration, applying defaults for
// worker count, checkpoint interval and shutdown grace period.
func New(cfg Config) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	sc := summaryContext{
		deployer: hexutil.Encode(cfg.Context.Deployer.Bytes()),
		codeHash: hexutil.Encode(cfg.Context.CodeHash.Bytes()),
	}
	return &Engine{
		cfg:   cfg,
		coord: newCoordinator(sc, cfg.Output, cfg.CheckpointInterval, cfg.Logger),
		log:   cfg.Logger,
	}
}

// Stats reports live progress. Safe to call concurrently with Run.
func (e *Engine) Stats() Stats {
	return e.coord.stats()
}

// Run executes the search until the budget is exhausted or ctx is cancelled.
// The run moves through three phases:
//
//	running    workers and coordinator active
//	draining   workers joined, channels closing, coordinator winding down
//	finalizing one last summary write when any matches exist
//
// Cancelling ctx is the interrupt path: the coordinator stops immediately,
// workers get a bounded grace period to finish their slices and are abandoned
// afterwards, and the final write still happens. Run never returns without
// attempting at least one persistence write if the result log is non-empty;
// with an empty log no write is attempted.
func (e *Engine) Run(ctx context.Context) (RunSummary, error) {
	matchC := make(chan MatchRecord, channelCapacity)
	progressC := make(chan uint64, channelCapacity)

	// Cancelled only when an interrupted run gives up on its workers; the
	// interrupt itself does not touch the workers.
	workerCtx, abandon := context.WithCancel(context.Background())
	defer abandon()

	slices := PartitionBudget(e.cfg.Budget, e.cfg.Workers)
	e.log.Info("search starting",
		"budget", e.cfg.Budget, "workers", len(slices), "patterns", len(e.cfg.Patterns))

	var g errgroup.Group
	for i, n := range slices {
		w := newWorker(i, e.cfg.Context, e.cfg.Patterns, e.log)
		trials := n
		g.Go(func() error {
			return w.run(workerCtx, trials, matchC, progressC)
		})
	}

	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		e.coord.run(ctx, matchC, progressC)
	}()

	joined := make(chan error, 1)
	go func() {
		joined <- g.Wait()
	}()

	var runErr error
	select {
	case runErr = <-joined:
		// Normal completion: close the channels so the coordinator drains
		// whatever is buffered and stops.
		close(matchC)
		close(progressC)
		<-coordDone

	case <-ctx.Done():
		e.log.Info("interrupt received, stopping search")
		select {
		case runErr = <-joined:
		case <-time.After(e.cfg.GracePeriod):
			e.log.Warn("grace period expired, abandoning workers",
				"grace", e.cfg.GracePeriod)
			abandon()
		}
		<-coordDone
		if runErr == nil {
			runErr = ctx.Err()
		}
	}

	// Finalizing: the coordinator goroutine has stopped, its result log is
	// safe to read from here.
	summary := e.coord.snapshot()
	if len(summary.Results) > 0 {
		if err := WriteSummary(e.cfg.Output, summary); err != nil {
			e.log.Error("final summary write failed", "path", e.cfg.Output, "err", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			e.log.Info("final summary written",
				"path", e.cfg.Output, "results", len(summary.Results))
		}
	}
	return summary, runErr
}
