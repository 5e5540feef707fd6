package main

import (
	"testing"
	"time"

	"aistore/bench"

	"github.com/stretchr/testify/require"
)

func TestRunWorkerRecordsOperations(t *testing.T) {
	dir := t.TempDir()
	collector := bench.NewCollector()

	err := runWorker(0, dir, "insert", 100, 1, 0, 50*time.Millisecond, collector)
	require.NoError(t, err)

	result := collector.Finalize("insert", 1, 50*time.Millisecond)
	require.Greater(t, result.Operations, int64(0))
}

func TestRunWorkerUnknownScenarioFails(t *testing.T) {
	dir := t.TempDir()
	collector := bench.NewCollector()

	err := runWorker(0, dir, "not_a_scenario", 100, 1, 0, 10*time.Millisecond, collector)
	require.Error(t, err)
}

func TestRunWorkerRespectsWarmupWindow(t *testing.T) {
	dir := t.TempDir()
	collector := bench.NewCollector()

	err := runWorker(0, dir, "point_select", 50, 1, 30*time.Millisecond, 30*time.Millisecond, collector)
	require.NoError(t, err)
	// operations during warmup aren't recorded; some measured
	// operations should still land in the shorter remaining window.
	result := collector.Finalize("point_select", 1, 30*time.Millisecond)
	require.Greater(t, result.Operations, int64(0))
}
