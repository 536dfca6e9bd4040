package bench

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Options configures one comparison pass.
type Options struct {
	Batches   int   // inference batches per variant
	BatchSize int   // samples per batch
	Channels  int   // input channels
	Size      int   // spatial input size (Size×Size)
	Seed      int64 // input generation seed
}

func (o Options) validate() error {
	if o.Batches <= 0 {
		return fmt.Errorf("batch count must be positive: %d", o.Batches)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive: %d", o.BatchSize)
	}
	if o.Channels <= 0 || o.Size <= 0 {
		return fmt.Errorf("input shape must be positive: [%d %d %d]", o.Channels, o.Size, o.Size)
	}
	return nil
}

// LatencyRecord holds the wall-clock latency distribution of one
// variant over all batches.
type LatencyRecord struct {
	Label   string
	Samples []time.Duration // one entry per batch

	Mean, Std, Min, P50, P95, Max time.Duration
}

// SizeRecord holds the static memory footprint of one variant.
type SizeRecord struct {
	Label       string
	ParamBytes  int64
	BufferBytes int64
}

// TotalMB returns the combined footprint in megabytes.
func (s SizeRecord) TotalMB() float64 {
	return float64(s.ParamBytes+s.BufferBytes) / (1024 * 1024)
}

// Report is the outcome of one comparison pass: exactly one latency
// record and one size record per registered variant, label-aligned.
type Report struct {
	Config    Options
	Latencies []LatencyRecord
	Sizes     []SizeRecord
}

// generateInputs builds all benchmark inputs up front so every variant
// sees the exact same tensor per (batch, sample) index.
func generateInputs(opts Options) [][]*tensor.Tensor {
	rng := rand.New(rand.NewSource(opts.Seed))
	batches := make([][]*tensor.Tensor, opts.Batches)
	for b := range batches {
		batch := make([]*tensor.Tensor, opts.BatchSize)
		for s := range batch {
			in := tensor.New(opts.Channels, opts.Size, opts.Size)
			for i := range in.Data {
				in.Data[i] = rng.NormFloat64()
			}
			batch[s] = in
		}
		batches[b] = batch
	}
	return batches
}

// Compare runs every registered variant over the same generated inputs
// and collects latency and size records. A variant that cannot process
// the inputs aborts the whole comparison.
func Compare(reg *Registry, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	inputs := generateInputs(opts)

	report := &Report{Config: opts}
	for _, v := range reg.Variants() {
		rec := LatencyRecord{Label: v.Label, Samples: make([]time.Duration, 0, opts.Batches)}
		for b, batch := range inputs {
			start := time.Now()
			for _, in := range batch {
				if _, err := v.Model.Forward(in); err != nil {
					return nil, fmt.Errorf("variant %q, batch %d: %w", v.Label, b, err)
				}
			}
			rec.Samples = append(rec.Samples, time.Since(start))
		}
		summarize(&rec)
		report.Latencies = append(report.Latencies, rec)
		report.Sizes = append(report.Sizes, measureSize(v))
	}
	return report, nil
}

// summarize fills the distribution fields from the raw samples.
func summarize(rec *LatencyRecord) {
	secs := make([]float64, len(rec.Samples))
	for i, d := range rec.Samples {
		secs[i] = d.Seconds()
	}
	sort.Float64s(secs)

	toDur := func(s float64) time.Duration {
		return time.Duration(s * float64(time.Second))
	}
	rec.Mean = toDur(stat.Mean(secs, nil))
	if len(secs) > 1 {
		rec.Std = toDur(stat.StdDev(secs, nil))
	}
	rec.Min = toDur(secs[0])
	rec.Max = toDur(secs[len(secs)-1])
	rec.P50 = toDur(stat.Quantile(0.5, stat.Empirical, secs, nil))
	rec.P95 = toDur(stat.Quantile(0.95, stat.Empirical, secs, nil))
}

// measureSize sums parameter and buffer byte sizes of a variant.
func measureSize(v Variant) SizeRecord {
	rec := SizeRecord{Label: v.Label}
	for _, p := range v.Model.Params() {
		rec.ParamBytes += p.Value.NumBytes()
	}
	if b, ok := v.Model.(nn.Bufferer); ok {
		for _, buf := range b.Buffers() {
			rec.BufferBytes += buf.NumBytes()
		}
	}
	return rec
}
