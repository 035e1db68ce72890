// Package search implements the parallel brute-force salt search: a pool of
// CPU workers sampling random salts, a pattern matcher over the derived
// addresses, and a single coordinator that aggregates matches, tracks
// progress, and checkpoints results to disk.
package search

import (
	"log/slog"
	"time"

	"github.com/vaultedge/salthunter/pkg/create2"
)

const (
	// ProgressBatch is how many trials a worker completes between progress
	// reports. Large enough to keep channel traffic off the hot loop.
	ProgressBatch = 50_000

	// channelCapacity bounds the match and progress channels. A full channel
	// applies natural backpressure on workers instead of growing memory.
	channelCapacity = 1000

	// DefaultCheckpointInterval is how often the coordinator persists the
	// result log while the search is running.
	DefaultCheckpointInterval = 30 * time.Second

	// DefaultGracePeriod is how long an interrupted run waits for workers to
	// finish before abandoning them.
	DefaultGracePeriod = 2 * time.Second
)

// Config holds everything the engine needs for one run. The context, matchers
// and budget arrive already validated; the engine does no input parsing.
type Config struct {
	Context  create2.Context // Fixed derivation inputs
	Patterns PatternSet      // Compiled matchers, declaration order preserved
	Budget   uint64          // Total number of trials across all workers
	Workers  int             // Worker count; 0 means one per CPU core
	Output   string          // Checkpoint file path

	CheckpointInterval time.Duration // 0 means DefaultCheckpointInterval
	GracePeriod        time.Duration // 0 means DefaultGracePeriod

	Logger *slog.Logger // nil means slog.Default()
}

// MatchRecord is one found salt. Salt and Address are 0x-prefixed lowercase
// hex. Attempt is the worker-local trial index at which the match occurred;
// it is informational only and cannot be used to replay the search, because
// each trial consumes fresh randomness rather than deriving the salt from the
// index.
type MatchRecord struct {
	Salt    string `json:"salt"`
	Address string `json:"address"`
	Pattern string `json:"pattern"`
	Attempt uint64 `json:"attempt"`
}

// RunSummary is the persisted artifact: a complete snapshot of all matches
// found so far. A fresh summary is built for every checkpoint write; it is
// never mutated afterwards.
type RunSummary struct {
	Timestamp string        `json:"timestamp"`
	Deployer  string        `json:"deployer"`
	CodeHash  string        `json:"codeHash"`
	Results   []MatchRecord `json:"results"`
}

// Stats holds real-time performance statistics. Safe to read concurrently
// while the search is running.
type Stats struct {
	Attempts    uint64  // Trials completed so far across all workers
	Matches     uint64  // Matches recorded so far
	HashRate    float64 // Trials per second
	ElapsedSecs float64 // Time elapsed since start
}
