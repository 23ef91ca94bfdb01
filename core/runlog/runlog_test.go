package runlog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/events"
)

func sampleRecords(now time.Time) []Record {
	return []Record{
		FromRun(events.RunEvent{RunID: "a", Status: events.RunStarted, Time: now}),
		FromIteration(events.IterationEvent{RunID: "a", Iteration: 1, LowerBound: 10, UpperBound: math.Inf(1), Time: now.Add(time.Second)}),
		FromScenario(events.ScenarioEvent{RunID: "a", Iteration: 1, Scenario: 2, Objective: 35, Passes: 3, Time: now.Add(2 * time.Second)}),
		FromRun(events.RunEvent{RunID: "b", Status: events.RunFailed, Err: errors.New("boom"), Time: now.Add(3 * time.Second)}),
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	for _, r := range sampleRecords(now) {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	runA, err := store.Query(ctx, Query{RunID: "a"})
	require.NoError(t, err)
	assert.Len(t, runA, 3)

	iters, err := store.Query(ctx, Query{Kind: KindIteration})
	require.NoError(t, err)
	require.Len(t, iters, 1)
	assert.Equal(t, 10.0, iters[0].LowerBound)
	assert.Zero(t, iters[0].UpperBound)

	late, err := store.Query(ctx, Query{Start: now.Add(2 * time.Second)})
	require.NoError(t, err)
	require.Len(t, late, 2)
	assert.Equal(t, "boom", late[1].Error)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "run", "log.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_QueryAcrossBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 3, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	recs := sampleRecords(time.Unix(1_700_000_000, 0))
	require.NoError(t, store.Append(ctx, recs[0]))
	require.NoError(t, store.Append(ctx, recs[1]))
	require.NoError(t, store.logger.Rotate())
	require.NoError(t, store.Append(ctx, recs[2]))

	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "log*.jsonl"))
	assert.Len(t, files, 2)

	out, err := store.Query(ctx, Query{RunID: "a"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "none", c.Backend)
	require.NoError(t, c.Validate())
	s, err := Open(c)
	require.NoError(t, err)
	assert.Nil(t, s)

	c = Config{Backend: "jsonl"}
	c.SetDefaults()
	assert.Equal(t, "benders.log", c.Path)

	assert.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	assert.Error(t, Config{Backend: "sqlite"}.Validate())
	assert.Error(t, Config{Backend: "jsonl", Path: "x", MaxBackups: -1}.Validate())

	s, err = Open(Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "r.jsonl"), MaxSizeMB: 5})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	require.NoError(t, s.Close())
}
