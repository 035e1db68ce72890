package search

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vaultedge/salthunter/pkg/create2"
)

// worker owns one contiguous slice of the attempt budget. Its loop is pure
// CPU work; the only blocking points are the match and progress channel
// sends, which a full channel turns into backpressure.
type worker struct {
	id        int
	deriveCtx create2.Context
	patterns  PatternSet
	batch     uint64
	log       *slog.Logger
}

func newWorker(id int, deriveCtx create2.Context, patterns PatternSet, log *slog.Logger) *worker {
	return &worker{
		id:        id,
		deriveCtx: deriveCtx,
		patterns:  patterns,
		batch:     ProgressBatch,
		log:       log,
	}
}

// run performs exactly trials independent attempts: sample 11 bytes of
// entropy, build a guarded salt, derive the address, test the patterns. A
// match is emitted and the loop continues; exhausting the slice is the only
// normal way out.
//
// Progress deltas are sent every batch trials plus once for the remainder at
// exit, so their sum equals trials exactly. ctx is only cancelled when the
// run abandons its workers; a cancellation observed at a send point means
// nobody is reading anymore, so the worker logs it and stops early. In that
// case the delta sum covers everything reported before the failure.
func (w *worker) run(ctx context.Context, trials uint64, matches chan<- MatchRecord, progress chan<- uint64) error {
	var entropy [create2.EntropySize]byte
	var sinceReport uint64

	for attempt := uint64(0); attempt < trials; attempt++ {
		if _, err := rand.Read(entropy[:]); err != nil {
			return fmt.Errorf("worker %d: entropy source failed: %w", w.id, err)
		}

		salt := w.deriveCtx.GuardedSalt(entropy)
		address := w.deriveCtx.DeriveAddress(salt)
		text := hexutil.Encode(address.Bytes())

		if desc, ok := w.patterns.MatchFirst(text); ok {
			rec := MatchRecord{
				Salt:    hexutil.Encode(salt.Bytes()),
				Address: text,
				Pattern: desc,
				Attempt: attempt,
			}
			select {
			case matches <- rec:
			case <-ctx.Done():
				w.log.Warn("match receiver gone, stopping early",
					"worker", w.id, "attempt", attempt)
				return fmt.Errorf("worker %d: %w", w.id, ctx.Err())
			}
		}

		sinceReport++
		if sinceReport == w.batch {
			select {
			case progress <- sinceReport:
				sinceReport = 0
			case <-ctx.Done():
				w.log.Warn("progress receiver gone, stopping early",
					"worker", w.id, "attempt", attempt)
				return fmt.Errorf("worker %d: %w", w.id, ctx.Err())
			}
		}
	}

	if sinceReport > 0 {
		select {
		case progress <- sinceReport:
		case <-ctx.Done():
			return fmt.Errorf("worker %d: %w", w.id, ctx.Err())
		}
	}
	return nil
}
