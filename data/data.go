// Package data generates synthetic labeled datasets for the training
// harness.
package data

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Eugene-Bulog/dl-general-messaround/train"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"

	xrand "golang.org/x/exp/rand"
)

// BlobsConfig describes a Gaussian-blob classification task: one blob
// per class, centered on a distinct axis, with configurable spread.
type BlobsConfig struct {
	Samples  int
	Features int
	Classes  int
	Spread   float64 // noise standard deviation
	Seed     uint64
}

func (c BlobsConfig) validate() error {
	if c.Samples <= 0 || c.Features <= 0 || c.Classes <= 0 {
		return fmt.Errorf("samples, features and classes must be positive: %+v", c)
	}
	if c.Classes > c.Features {
		return fmt.Errorf("need at least one feature per class: %d classes, %d features", c.Classes, c.Features)
	}
	if c.Spread <= 0 {
		return fmt.Errorf("spread must be positive: %f", c.Spread)
	}
	return nil
}

// Blobs samples one batch per example, classes assigned round-robin
// so the dataset is balanced. Fixed seed gives identical data.
func Blobs(cfg BlobsConfig) ([]train.Batch, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	noise := distuv.Normal{Mu: 0, Sigma: cfg.Spread, Src: xrand.NewSource(cfg.Seed)}

	const separation = 3.0
	batches := make([]train.Batch, cfg.Samples)
	for i := range batches {
		class := i % cfg.Classes

		in := tensor.New(cfg.Features)
		for j := range in.Data {
			in.Data[j] = noise.Rand()
		}
		in.Data[class] += separation

		label := tensor.New(cfg.Classes)
		label.Data[class] = 1

		batches[i] = train.Batch{Input: in, Label: label}
	}
	return batches, nil
}
