// curvebench-prune: prunes a convolutional model in place and prints
// the structure and cost before and after, so the effect of a ratio
// can be inspected without running a full benchmark.
//
// Usage:
//
//	prune --ratio=0.5 --importance=l2 --size=32
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Eugene-Bulog/dl-general-messaround/bench"
	"github.com/Eugene-Bulog/dl-general-messaround/prune"
)

var (
	channels = flag.Int("channels", 1, "Input channels")
	size     = flag.Int("size", 32, "Spatial input size")
	classes  = flag.Int("classes", 10, "Output classes")
	ratio    = flag.Float64("ratio", 0.5, "Fraction of channels to drop per layer")
	impName  = flag.String("importance", "l1", "Channel importance: l1, l2")
	seed     = flag.Uint64("seed", 42, "Model init seed")
	steps    = flag.Int("steps", 1, "Number of pruning steps to apply")
)

func main() {
	flag.Parse()

	var imp prune.Importance
	switch *impName {
	case "l1":
		imp = prune.L1Norm
	case "l2":
		imp = prune.L2Norm
	default:
		fmt.Fprintf(os.Stderr, "Unknown importance %q (want l1 or l2)\n", *impName)
		os.Exit(1)
	}

	model, err := bench.BuildConvNet(*channels, *size, *classes, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Model build failed: %v\n", err)
		os.Exit(1)
	}
	inShape := []int{*channels, *size, *size}

	before, err := prune.Measure(model, inShape)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Measuring model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Before:")
	fmt.Print(model.Describe())
	fmt.Printf("  params=%d  MACs=%d\n\n", before.Params, before.MACs)

	pruner, err := prune.New(model, inShape, imp, *ratio, prune.PruneAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pruner setup failed: %v\n", err)
		os.Exit(1)
	}
	for i := 0; i < *steps; i++ {
		if err := pruner.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "Pruning step %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
	}

	after, err := prune.Measure(model, inShape)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Measuring pruned model: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("After:")
	fmt.Print(model.Describe())
	fmt.Printf("  params=%d  MACs=%d\n\n", after.Params, after.MACs)

	fmt.Printf("Reduction: params %.1f%%, MACs %.1f%%\n",
		100*(1-float64(after.Params)/float64(before.Params)),
		100*(1-float64(after.MACs)/float64(before.MACs)))
}
