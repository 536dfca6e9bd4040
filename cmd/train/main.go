// curvebench-train: trains an MLP on a synthetic blob task, optionally
// projecting inputs onto a Poincaré ball first, and compares manifolds
// side by side.
//
// Usage:
//
//	train --arch="8 16 4" --epochs=10 --lr=0.05 --manifold=poincare --curvature=1.0
//	train --compare --epochs=10
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Eugene-Bulog/dl-general-messaround/bench"
	"github.com/Eugene-Bulog/dl-general-messaround/data"
	"github.com/Eugene-Bulog/dl-general-messaround/manifold"
	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/optim"
	"github.com/Eugene-Bulog/dl-general-messaround/train"
	"github.com/Eugene-Bulog/dl-general-messaround/utils"
)

var (
	archStr      = flag.String("arch", "8 16 4", "Layer widths, input first")
	epochs       = flag.Int("epochs", 10, "Number of training epochs")
	learningRate = flag.Float64("lr", 0.05, "Learning rate")
	momentum     = flag.Float64("momentum", 0.9, "SGD momentum")
	manifoldName = flag.String("manifold", "euclidean", "Input manifold: euclidean, poincare")
	curvature    = flag.Float64("curvature", 1.0, "Poincaré ball curvature")
	compare      = flag.Bool("compare", false, "Train both manifold variants and compare")
	seed         = flag.Uint64("seed", 42, "Random seed")
	samples      = flag.Int("samples", 200, "Number of synthetic samples")
	spread       = flag.Float64("spread", 0.5, "Blob noise standard deviation")
	reportEvery  = flag.Int("report-every", 50, "Steps between loss reports (0 disables)")
	verbose      = flag.Bool("verbose", true, "Verbose output")
	outputFile   = flag.String("output", "", "Output weights file (JSON)")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	arch, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid architecture: %v\n", err)
		os.Exit(1)
	}
	cfg := &utils.Config{
		Architecture: arch,
		Epochs:       *epochs,
		BatchSize:    1,
		ReportEvery:  *reportEvery,
		Manifold:     *manifoldName,
		Curvature:    *curvature,
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	features, classes := arch[0], arch[len(arch)-1]
	dataStart := time.Now()
	batches, err := data.Blobs(data.BlobsConfig{
		Samples:  *samples,
		Features: features,
		Classes:  classes,
		Spread:   *spread,
		Seed:     *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Data generation failed: %v\n", err)
		os.Exit(1)
	}
	dataGenTime := time.Since(dataStart)

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Architecture:  %v\n", arch)
	fmt.Printf("  Epochs:        %d\n", *epochs)
	fmt.Printf("  Learning Rate: %.4f\n", *learningRate)
	fmt.Printf("  Samples:       %d\n", *samples)
	fmt.Println()

	if *compare {
		names := []string{"euclidean", "poincare"}
		for _, name := range names {
			report, _, err := runOne(name, arch, batches)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s run failed: %v\n", name, err)
				os.Exit(1)
			}
			fmt.Printf("%-12s | final loss %.6f | %v\n", name, report.FinalLoss, report.Elapsed)
		}
		return
	}

	report, model, err := runOne(*manifoldName, arch, batches)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nTraining complete! Final loss: %.6f (%v)\n", report.FinalLoss, report.Elapsed)
	if *verbose {
		report.Timing.DataGenTime = dataGenTime
		utils.PrintTimingStats(report.Timing, report.Steps)
	}

	if *outputFile != "" {
		fmt.Printf("\nSaving weights to %s...\n", *outputFile)
		if err := saveWeights(model, *outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done!")
	}
}

func buildManifold(name string) (manifold.Manifold, error) {
	switch name {
	case "euclidean":
		return manifold.Euclidean{}, nil
	case "poincare":
		ball, err := manifold.NewPoincareBall(*curvature)
		if err != nil {
			return nil, err
		}
		return ball, nil
	default:
		return nil, fmt.Errorf("unknown manifold %q", name)
	}
}

func runOne(name string, arch []int, batches []train.Batch) (*train.Report, nn.Module, error) {
	m, err := buildManifold(name)
	if err != nil {
		return nil, nil, err
	}
	initStart := time.Now()
	model, err := bench.BuildMLP(arch, *seed)
	if err != nil {
		return nil, nil, err
	}
	initTime := time.Since(initStart)
	opt, err := optim.NewSGD(model.Params(), optim.SGDConfig{
		LearningRate: *learningRate,
		Momentum:     *momentum,
	})
	if err != nil {
		return nil, nil, err
	}
	report, err := train.Run(model, m, opt, batches, train.Config{
		Epochs:      *epochs,
		ReportEvery: *reportEvery,
	})
	if err != nil {
		return nil, nil, err
	}
	report.Timing.ModelInitTime = initTime
	return report, model, nil
}

func saveWeights(model nn.Module, filepath string) error {
	weights := &utils.ModelWeights{Version: "1.0"}
	for _, p := range model.Params() {
		weights.Weights = append(weights.Weights, utils.TensorToWeightData(p.Name, p.Value))
	}
	return utils.SaveWeights(filepath, weights)
}
