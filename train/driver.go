// Package train runs a fixed number of optimization passes over a
// labeled dataset, optionally projecting inputs onto a manifold before
// every forward pass.
package train

import (
	"fmt"
	"time"

	"github.com/Eugene-Bulog/dl-general-messaround/manifold"
	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/optim"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
	"github.com/Eugene-Bulog/dl-general-messaround/utils"
)

// Batch is one (input, one-hot label) pair.
type Batch struct {
	Input *tensor.Tensor
	Label *tensor.Tensor
}

// Config controls one training run.
type Config struct {
	Epochs      int
	ReportEvery int // steps between progress lines; 0 disables reporting
}

// Report summarizes a finished run.
type Report struct {
	Steps      int
	EpochLoss  []float64 // mean loss per epoch
	FinalLoss  float64   // mean loss of the last epoch
	Reported   []float64 // mean losses emitted by periodic progress reports
	Elapsed    time.Duration
	Timing     *utils.TimingStats
}

// Run trains model on the given batches. proj may be nil for no
// projection; manifold.Euclidean{} behaves identically. Any failure in
// the forward or backward pass aborts the run.
func Run(model nn.Module, proj manifold.Manifold, opt *optim.SGD, batches []Batch, cfg Config) (*Report, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if opt == nil {
		return nil, fmt.Errorf("optimizer is required")
	}
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epoch count must be positive: %d", cfg.Epochs)
	}
	if cfg.ReportEvery < 0 {
		return nil, fmt.Errorf("report interval cannot be negative: %d", cfg.ReportEvery)
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("no training batches")
	}

	loss := &nn.CrossEntropyLoss{}
	stats := &utils.TimingStats{}
	report := &Report{Timing: stats}
	start := time.Now()

	step := 0
	running := 0.0 // accumulator for periodic reports only
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		epochSum := 0.0
		for _, b := range batches {
			opt.ZeroGrad()

			x := b.Input
			if proj != nil {
				t0 := time.Now()
				px, err := proj.Project(x)
				if err != nil {
					return nil, fmt.Errorf("step %d: project: %w", step, err)
				}
				stats.ProjectionTime += time.Since(t0)
				x = px
			}

			t0 := time.Now()
			out, err := model.Forward(x)
			if err != nil {
				return nil, fmt.Errorf("step %d: forward: %w", step, err)
			}
			stats.ForwardPassTime += time.Since(t0)

			t0 = time.Now()
			probs := nn.Softmax(out)
			stepLoss := loss.Forward(probs, b.Label)
			grad := loss.Backward(probs, b.Label)
			stats.LossComputationTime += time.Since(t0)

			t0 = time.Now()
			if _, err := model.Backward(grad); err != nil {
				return nil, fmt.Errorf("step %d: backward: %w", step, err)
			}
			stats.BackwardPassTime += time.Since(t0)

			t0 = time.Now()
			opt.Step()
			stats.UpdateTime += time.Since(t0)

			step++
			running += stepLoss
			epochSum += stepLoss

			if cfg.ReportEvery > 0 && step%cfg.ReportEvery == 0 {
				mean := running / float64(cfg.ReportEvery)
				report.Reported = append(report.Reported, mean)
				if utils.Verbose {
					fmt.Fprintf(utils.Output, "step %d | loss %.6f\n", step, mean)
				}
				running = 0
			}
		}
		report.EpochLoss = append(report.EpochLoss, epochSum/float64(len(batches)))
	}

	report.Steps = step
	report.FinalLoss = report.EpochLoss[len(report.EpochLoss)-1]
	report.Elapsed = time.Since(start)
	stats.TotalTime = report.Elapsed
	return report, nil
}
