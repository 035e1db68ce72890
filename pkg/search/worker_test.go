package search

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultedge/salthunter/pkg/create2"
)

func testDeriveContext() create2.Context {
	return create2.NewContext(
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
	)
}

func matchEverything(t *testing.T) PatternSet {
	t.Helper()
	set, err := CompileMatchers([]PatternSpec{{Kind: "contains", Value: ""}})
	require.NoError(t, err)
	return set
}

func matchNothing(t *testing.T) PatternSet {
	t.Helper()
	// Addresses are hex text; "zz" can never appear.
	set, err := CompileMatchers([]PatternSpec{{Kind: "contains", Value: "zz"}})
	require.NoError(t, err)
	return set
}

func TestWorkerProgressConservation(t *testing.T) {
	const trials = 25

	w := newWorker(0, testDeriveContext(), matchNothing(t), slog.Default())
	w.batch = 10

	matchC := make(chan MatchRecord, trials)
	progressC := make(chan uint64, trials)

	require.NoError(t, w.run(context.Background(), trials, matchC, progressC))
	close(progressC)

	var sum uint64
	var deltas []uint64
	for n := range progressC {
		sum += n
		deltas = append(deltas, n)
	}
	assert.Equal(t, uint64(trials), sum, "progress deltas must sum to the trial count")
	assert.Equal(t, []uint64{10, 10, 5}, deltas)
}

func TestWorkerProgressConservationOnBatchBoundary(t *testing.T) {
	const trials = 30

	w := newWorker(0, testDeriveContext(), matchNothing(t), slog.Default())
	w.batch = 10

	progressC := make(chan uint64, trials)
	require.NoError(t, w.run(context.Background(), trials, make(chan MatchRecord, 1), progressC))
	close(progressC)

	var sum uint64
	count := 0
	for n := range progressC {
		sum += n
		count++
	}
	assert.Equal(t, uint64(trials), sum)
	assert.Equal(t, 3, count, "no extra delta when the last batch ends exactly at the boundary")
}

func TestWorkerEmitsEveryMatchAndKeepsGoing(t *testing.T) {
	const trials = 5

	w := newWorker(0, testDeriveContext(), matchEverything(t), slog.Default())

	matchC := make(chan MatchRecord, trials)
	progressC := make(chan uint64, trials)
	require.NoError(t, w.run(context.Background(), trials, matchC, progressC))
	close(matchC)

	deployerHex := "0x1111111111111111111111111111111111111111"
	var attempts []uint64
	for rec := range matchC {
		attempts = append(attempts, rec.Attempt)
		assert.True(t, strings.HasPrefix(rec.Salt, strings.ToLower(deployerHex)[:42]),
			"salt must start with the deployer bytes")
		assert.Len(t, rec.Salt, 2+64)
		assert.Len(t, rec.Address, 2+40)
		assert.Equal(t, strings.ToLower(rec.Address), rec.Address)
		assert.Equal(t, "contains ", rec.Pattern)
	}
	// A match never stops the worker; there is one record per trial.
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, attempts)
}

func TestWorkerStopsWhenReceiverGone(t *testing.T) {
	w := newWorker(0, testDeriveContext(), matchEverything(t), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel with no reader: the first match send can only take
	// the cancellation branch.
	err := w.run(ctx, 100, make(chan MatchRecord), make(chan uint64))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
