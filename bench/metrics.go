// Package bench implements the synthetic load generator's scenario table
// and the Collector that records latency samples; the worker loop that
// drives each scenario lives in cmd/aistore-bench.
package bench

import (
	"sort"
	"sync"
	"time"
)

// Result aggregates one scenario run's throughput and latency.
type Result struct {
	Scenario    string
	Threads     int
	Duration    time.Duration
	Operations  int64
	Errors      int64
	Throughput  float64 // ops/sec
	AvgLatency  time.Duration
	MaxLatency  time.Duration
	P99Latency  time.Duration
}

// Collector accumulates latency samples and counters from every worker
// goroutine behind a single mutex; contention here is negligible next
// to the storage-layer work being measured.
type Collector struct {
	mu         sync.Mutex
	operations int64
	errors     int64
	latencies  []time.Duration
}

// NewCollector builds an empty Collector shared by every worker thread.
func NewCollector() *Collector {
	return &Collector{}
}

// Record adds one operation's outcome. A non-nil err counts as a
// failure and is excluded from latency statistics.
func (c *Collector) Record(d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations++
	if err != nil {
		c.errors++
		return
	}
	c.latencies = append(c.latencies, d)
}

// Finalize computes the summary Result for a completed run.
func (c *Collector) Finalize(scenario string, threads int, elapsed time.Duration) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result{
		Scenario:   scenario,
		Threads:    threads,
		Duration:   elapsed,
		Operations: c.operations,
		Errors:     c.errors,
	}
	if elapsed > 0 {
		res.Throughput = float64(c.operations) / elapsed.Seconds()
	}
	if len(c.latencies) == 0 {
		return res
	}

	sorted := append([]time.Duration(nil), c.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	res.AvgLatency = sum / time.Duration(len(sorted))
	res.MaxLatency = sorted[len(sorted)-1]
	p99idx := int(float64(len(sorted)) * 0.99)
	if p99idx >= len(sorted) {
		p99idx = len(sorted) - 1
	}
	res.P99Latency = sorted[p99idx]
	return res
}
