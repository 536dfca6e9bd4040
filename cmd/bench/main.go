// curvebench-bench: builds a convolutional baseline plus one pruned
// variant per requested ratio, then benchmarks latency and model size
// across all of them on identical inputs.
//
// Usage:
//
//	bench --batches=20 --bs=8 --ratios="0.25,0.5" --importance=l2
//	bench --db=results.db
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Eugene-Bulog/dl-general-messaround/bench"
	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/prune"
	"github.com/Eugene-Bulog/dl-general-messaround/results"
	"github.com/Eugene-Bulog/dl-general-messaround/utils"
)

var (
	batchCount = flag.Int("batches", 20, "Inference batches per variant")
	batchSize  = flag.Int("bs", 8, "Samples per batch")
	channels   = flag.Int("channels", 1, "Input channels")
	size       = flag.Int("size", 32, "Spatial input size")
	classes    = flag.Int("classes", 10, "Output classes")
	ratioStr   = flag.String("ratios", "0.25,0.5", "Comma-separated prune ratios")
	impName    = flag.String("importance", "l1", "Channel importance: l1, l2")
	seed       = flag.Uint64("seed", 42, "Model init seed")
	inputSeed  = flag.Int64("input-seed", 7, "Benchmark input seed")
	dbPath     = flag.String("db", "", "SQLite file to persist the report to")
	verbose    = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	ratios, err := utils.ParseFloats(*ratioStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid ratios: %v\n", err)
		os.Exit(1)
	}
	imp, err := pickImportance(*impName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	inShape := []int{*channels, *size, *size}
	reg := bench.NewRegistry()

	baseline, err := bench.BuildConvNet(*channels, *size, *classes, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Model build failed: %v\n", err)
		os.Exit(1)
	}
	reg.Register("baseline", baseline)
	printStats("baseline", baseline, inShape)

	for _, ratio := range ratios {
		// Same seed as the baseline so pruning is the only difference.
		model, err := bench.BuildConvNet(*channels, *size, *classes, *seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Model build failed: %v\n", err)
			os.Exit(1)
		}
		pruner, err := prune.New(model, inShape, imp, ratio, prune.PruneAll)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pruner setup failed (ratio %.2f): %v\n", ratio, err)
			os.Exit(1)
		}
		if err := pruner.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "Pruning failed (ratio %.2f): %v\n", ratio, err)
			os.Exit(1)
		}
		label := fmt.Sprintf("pruned@%.2f", ratio)
		reg.Register(label, model)
		printStats(label, model, inShape)
	}

	fmt.Printf("\nRunning %d batches x %d samples per variant...\n\n", *batchCount, *batchSize)
	report, err := bench.Compare(reg, bench.Options{
		Batches:   *batchCount,
		BatchSize: *batchSize,
		Channels:  *channels,
		Size:      *size,
		Seed:      *inputSeed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(1)
	}
	report.WriteLatencyTable(os.Stdout)
	fmt.Println()
	report.WriteSizeReport(os.Stdout)

	if *dbPath != "" {
		store, err := results.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Opening results store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		runID, err := store.SaveReport(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Saving report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nSaved run %s to %s\n", runID, *dbPath)
	}
}

func pickImportance(name string) (prune.Importance, error) {
	switch name {
	case "l1":
		return prune.L1Norm, nil
	case "l2":
		return prune.L2Norm, nil
	default:
		return nil, fmt.Errorf("unknown importance %q (want l1 or l2)", name)
	}
}

func printStats(label string, model *nn.Sequential, inShape []int) {
	stats, err := prune.Measure(model, inShape)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Measuring %s: %v\n", label, err)
		os.Exit(1)
	}
	fmt.Printf("%-14s params=%d  MACs=%d\n", label, stats.Params, stats.MACs)
}
