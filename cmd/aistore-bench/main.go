// Command aistore-bench drives a synthetic sysbench-style workload
// against the storage engine: each worker thread owns its own executor
// and hammers one of the named scenarios for the configured duration.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"aistore/bench"
	"aistore/buffer"
	"aistore/catalog"
	"aistore/config"
	"aistore/executor"
	"aistore/segment"
	"aistore/tablespace"
	"aistore/vfs"

	"github.com/sirupsen/logrus"
)

func main() {
	threads := flag.Int("threads", 4, "number of concurrent worker threads")
	duration := flag.Duration("duration", 10*time.Second, "how long to run the workload")
	scenario := flag.String("scenario", "point_select", "workload: point_select|read_only|read_write|write_only|update_index|update_non_index|insert|delete|bulk_insert")
	tables := flag.Int("tables", 1, "number of tables (accepted but unused; each thread uses one table in its own catalog instance)")
	rows := flag.Int("rows", 10000, "id range the scenarios draw row ids from (no rows are pre-populated)")
	warmup := flag.Duration("warmup", 0, "warmup period before measurement starts")
	seed := flag.Int64("seed", 42, "base RNG seed")
	dataDir := flag.String("data-dir", "./aistore-bench-data", "base directory for per-thread data directories")
	flag.Parse()

	_ = *tables

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if _, err := bench.NewScenario(*scenario, *rows); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("aistore-bench: scenario=%s threads=%d duration=%s rows=%d\n", *scenario, *threads, *duration, *rows)

	var wg sync.WaitGroup
	collector := bench.NewCollector()

	for tid := 0; tid < *threads; tid++ {
		wg.Add(1)
		go func(threadID int) {
			defer wg.Done()
			if err := runWorker(threadID, *dataDir, *scenario, *rows, *seed, *warmup, *duration, collector); err != nil {
				logrus.WithField("thread", threadID).WithError(err).Error("worker failed")
			}
		}(tid)
	}
	wg.Wait()

	result := collector.Finalize(*scenario, *threads, *duration)
	printReport(result)
}

// runWorker builds its own catalog, segment manager, buffer pool and
// executor — one full storage stack per thread rather than a shared
// executor, avoiding any need to share scenario or executor state
// across goroutines.
func runWorker(threadID int, baseDir, scenarioName string, rows int, seed int64, warmup, duration time.Duration, collector *bench.Collector) error {
	dataDir := fmt.Sprintf("%s/thread-%d", baseDir, threadID)

	v := vfs.NewLocalFS()
	cfg := config.NewConfig(dataDir)

	tsMgr := tablespace.NewManager(v, cfg.DataDir)
	tablespaceID, err := tsMgr.CreateTablespace("main", tablespace.Config{
		InitialFileSize: cfg.InitialTablespaceSize(),
		AutoExtendSize:  cfg.AutoExtendSize(),
	})
	if err != nil {
		return err
	}

	segMgr := segment.NewManager(tsMgr)
	pool := buffer.New(cfg.BufferPoolSize, v, cfg.DataDir)
	defer pool.FlushAll()

	cat, err := catalog.New(cfg.DataDir)
	if err != nil {
		return err
	}

	exec := executor.New(cat, segMgr, pool, tablespaceID)

	scn, err := bench.NewScenario(scenarioName, rows)
	if err != nil {
		return err
	}
	if err := scn.Prepare(exec); err != nil {
		return err
	}

	// golden-ratio-style seed spread keeps each thread's stream
	// decorrelated from the others without needing shared state.
	rng := rand.New(rand.NewSource(seed + int64(threadID)*2654435761))

	deadline := time.Now().Add(warmup + duration)
	measureFrom := time.Now().Add(warmup)

	for time.Now().Before(deadline) {
		start := time.Now()
		err := scn.Execute(exec, rng)
		elapsed := time.Since(start)
		if start.After(measureFrom) || start.Equal(measureFrom) {
			collector.Record(elapsed, err)
		}
	}
	return nil
}

func printReport(r bench.Result) {
	fmt.Println("=== SQL statistics ===")
	fmt.Printf("scenario:          %s\n", r.Scenario)
	fmt.Printf("threads:           %d\n", r.Threads)
	fmt.Printf("duration:          %s\n", r.Duration)
	fmt.Printf("operations:        %d\n", r.Operations)
	fmt.Printf("errors:            %d\n", r.Errors)
	fmt.Printf("throughput:        %.2f ops/sec\n", r.Throughput)
	fmt.Printf("avg latency:       %s\n", r.AvgLatency)
	fmt.Printf("p99 latency:       %s\n", r.P99Latency)
	fmt.Printf("max latency:       %s\n", r.MaxLatency)
}
