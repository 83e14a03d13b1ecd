// Package main provides a performance benchmarking tool for bizcache offline mode.
// It seeds every catalog entity through the cache, then measures cold startup
// across several worker counts, running each configuration multiple times and
// generating CSV output for performance analysis and documentation.
//
// Usage: go run ./benchmark [records-per-entity]
//
//	records-per-entity: Records created per entity before timing startup (default 200)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/huangsam/bizcache/core"
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/internal/iocache"
	"github.com/huangsam/bizcache/schema"
)

// BenchmarkResult holds the result of one benchmark phase.
type BenchmarkResult struct {
	Phase   string
	Workers int
	Records int
	AvgTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Records     int
	StartupRuns int
	WorkerSets  []int
}

func main() {
	config := BenchmarkConfig{
		Records:     200,
		StartupRuns: 3,
		WorkerSets:  []int{1, 4, 8},
	}
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [records-per-entity]\n", os.Args[0])
			os.Exit(1)
		}
		config.Records = n
	}

	dir, err := os.MkdirTemp("", "bizcache-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	store, err := iocache.NewEntityStore("entity_store", schema.SQLiteBackend, filepath.Join(dir, "bench.db"))
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	results, err := runBenchmarks(context.Background(), config, store)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// newRegistry builds a fresh offline registry, as a new process would.
func newRegistry(store contract.KVStore) (*core.Registry, error) {
	cfg := &contract.Config{Mode: schema.OfflineMode}
	return core.NewRegistry(cfg, store, nil, contract.StderrReporter{}, schema.Catalog)
}

// runBenchmarks seeds the store and then times cold startups.
func runBenchmarks(ctx context.Context, config BenchmarkConfig, store contract.KVStore) ([]BenchmarkResult, error) {
	fmt.Printf("Starting benchmark: %d entities, %d records each, startup: %d runs\n",
		len(schema.Catalog), config.Records, config.StartupRuns)

	seed, err := runSeed(ctx, config, store)
	if err != nil {
		return nil, err
	}
	results := []BenchmarkResult{seed}

	for _, workers := range config.WorkerSets {
		result, err := runStartup(ctx, config, store, workers)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// runSeed creates config.Records records in every entity and reports the average create time.
func runSeed(ctx context.Context, config BenchmarkConfig, store contract.KVStore) (BenchmarkResult, error) {
	reg, err := newRegistry(store)
	if err != nil {
		return BenchmarkResult{}, err
	}
	fmt.Printf("Seeding %d records per entity\n", config.Records)

	var total time.Duration
	var count int
	for _, cache := range reg.Caches() {
		if err := cache.FetchAll(ctx); err != nil {
			return BenchmarkResult{}, err
		}
		for i := range config.Records {
			start := time.Now()
			if _, err := cache.Create(ctx, schema.Record{"name": fmt.Sprintf("%s %d", cache.Name(), i)}); err != nil {
				return BenchmarkResult{}, err
			}
			total += time.Since(start)
			count++
		}
	}

	avg := total / time.Duration(max(count, 1))
	fmt.Printf("  Create average: %s\n", avg)
	return BenchmarkResult{Phase: "create", Workers: 1, Records: count, AvgTime: avg.String()}, nil
}

// runStartup times full startups with the given worker count.
func runStartup(ctx context.Context, config BenchmarkConfig, store contract.KVStore, workers int) (BenchmarkResult, error) {
	fmt.Printf("Running startup with %d workers\n", workers)

	var total time.Duration
	var records int
	for range config.StartupRuns {
		reg, err := newRegistry(store)
		if err != nil {
			return BenchmarkResult{}, err
		}
		agg := reg.Aggregator(workers)
		start := time.Now()
		if err := agg.Run(ctx); err != nil {
			return BenchmarkResult{}, err
		}
		total += time.Since(start)

		records = 0
		for _, s := range agg.Statuses() {
			if s.State != schema.LoadedState {
				return BenchmarkResult{}, fmt.Errorf("%s did not load: %s", s.Name, s.Error)
			}
			records += s.Count
		}
	}

	avg := total / time.Duration(max(config.StartupRuns, 1))
	fmt.Printf("  Startup average: %s\n", avg)
	return BenchmarkResult{Phase: "startup", Workers: workers, Records: records, AvgTime: avg.String()}, nil
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/bizcache_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"phase", "workers", "records", "avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		row := []string{result.Phase, strconv.Itoa(result.Workers), strconv.Itoa(result.Records), result.AvgTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s workers=%-2d records=%-6d avg=%s\n", result.Phase, result.Workers, result.Records, result.AvgTime)
	}
}
