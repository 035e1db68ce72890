package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummaryContext() summaryContext {
	return summaryContext{
		deployer: "0x1111111111111111111111111111111111111111",
		codeHash: "0x2222222222222222222222222222222222222222222222222222222222222222",
	}
}

func startCoordinator(ctx context.Context, c *coordinator, matchC chan MatchRecord, progressC chan uint64) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.run(ctx, matchC, progressC)
	}()
	return &wg
}

func TestCoordinatorAppendsInArrivalOrder(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")
	c := newCoordinator(testSummaryContext(), output, time.Hour, slog.Default())

	matchC := make(chan MatchRecord, 8)
	progressC := make(chan uint64, 8)
	wg := startCoordinator(context.Background(), c, matchC, progressC)

	matchC <- MatchRecord{Salt: "0x01", Address: "0xaa", Pattern: "first", Attempt: 7}
	matchC <- MatchRecord{Salt: "0x02", Address: "0xbb", Pattern: "second", Attempt: 3}
	progressC <- 50_000
	progressC <- 25_000
	close(matchC)
	close(progressC)
	wg.Wait()

	require.Len(t, c.results, 2)
	assert.Equal(t, "first", c.results[0].Pattern)
	assert.Equal(t, "second", c.results[1].Pattern)

	stats := c.stats()
	assert.Equal(t, uint64(75_000), stats.Attempts)
	assert.Equal(t, uint64(2), stats.Matches)
}

func TestCoordinatorCheckpointsOnTimer(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")
	c := newCoordinator(testSummaryContext(), output, 20*time.Millisecond, slog.Default())

	matchC := make(chan MatchRecord, 1)
	progressC := make(chan uint64, 1)
	wg := startCoordinator(context.Background(), c, matchC, progressC)

	matchC <- MatchRecord{Salt: "0x01", Address: "0xaa", Pattern: "p", Attempt: 1}

	require.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil
	}, time.Second, 10*time.Millisecond, "timer checkpoint should persist the log")

	close(matchC)
	close(progressC)
	wg.Wait()

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "0x1111111111111111111111111111111111111111", summary.Deployer)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "p", summary.Results[0].Pattern)
}

func TestCoordinatorSkipsCheckpointWhenEmpty(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")
	c := newCoordinator(testSummaryContext(), output, 10*time.Millisecond, slog.Default())

	matchC := make(chan MatchRecord)
	progressC := make(chan uint64)
	wg := startCoordinator(context.Background(), c, matchC, progressC)

	time.Sleep(50 * time.Millisecond)
	close(matchC)
	close(progressC)
	wg.Wait()

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err), "empty result log must never be written")
}

func TestCoordinatorSurvivesWriteFailure(t *testing.T) {
	// Unwritable path: the checkpoint fails, the run keeps going and the
	// in-memory log is untouched.
	output := filepath.Join(t.TempDir(), "missing", "nested", "out.json")
	c := newCoordinator(testSummaryContext(), output, 10*time.Millisecond, slog.Default())

	matchC := make(chan MatchRecord, 1)
	progressC := make(chan uint64, 1)
	wg := startCoordinator(context.Background(), c, matchC, progressC)

	matchC <- MatchRecord{Salt: "0x01", Address: "0xaa", Pattern: "p", Attempt: 1}
	time.Sleep(50 * time.Millisecond)
	close(matchC)
	close(progressC)
	wg.Wait()

	require.Len(t, c.results, 1)
}

func TestCoordinatorStopsOnCancellation(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.json")
	c := newCoordinator(testSummaryContext(), output, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	matchC := make(chan MatchRecord)
	progressC := make(chan uint64)
	wg := startCoordinator(ctx, c, matchC, progressC)

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("coordinator did not stop on cancellation")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := newCoordinator(testSummaryContext(), "unused", time.Hour, slog.Default())
	c.results = []MatchRecord{{Salt: "0x01", Address: "0xaa", Pattern: "p"}}

	snap := c.snapshot()
	c.results[0].Pattern = "mutated"
	assert.Equal(t, "p", snap.Results[0].Pattern, "snapshot must not alias the live log")
}
