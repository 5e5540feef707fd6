package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectorSummarizeComputesThroughputAndLatency(t *testing.T) {
	c := NewCollector()
	c.Record(10*time.Millisecond, nil)
	c.Record(20*time.Millisecond, nil)
	c.Record(30*time.Millisecond, nil)

	res := c.Finalize("point_select", 4, time.Second)
	require.Equal(t, "point_select", res.Scenario)
	require.EqualValues(t, 3, res.Operations)
	require.EqualValues(t, 0, res.Errors)
	require.Equal(t, 20*time.Millisecond, res.AvgLatency)
	require.Equal(t, 30*time.Millisecond, res.MaxLatency)
	require.InDelta(t, 3.0, res.Throughput, 0.001)
}

func TestCollectorCountsErrorsSeparately(t *testing.T) {
	c := NewCollector()
	c.Record(5*time.Millisecond, nil)
	c.Record(0, errors.New("boom"))

	res := c.Finalize("insert", 1, time.Second)
	require.EqualValues(t, 2, res.Operations)
	require.EqualValues(t, 1, res.Errors)
	require.Equal(t, 5*time.Millisecond, res.AvgLatency)
}

func TestCollectorEmptyLatenciesYieldsZeroValues(t *testing.T) {
	c := NewCollector()
	res := c.Finalize("delete", 1, time.Second)
	require.EqualValues(t, 0, res.Operations)
	require.EqualValues(t, 0, res.AvgLatency)
}
