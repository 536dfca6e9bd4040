// Package prune implements structured channel pruning for sequential
// feed-forward models. Channels are ranked by a caller-supplied
// importance function and removed in place, together with the matching
// input channels of the downstream consumer.
package prune

import "gonum.org/v1/gonum/floats"

// Importance scores one structural unit (an output channel) by its
// flattened weights. Higher means more important.
type Importance func(weights []float64) float64

// L1Norm ranks channels by the L1 norm of their weights.
func L1Norm(weights []float64) float64 {
	return floats.Norm(weights, 1)
}

// L2Norm ranks channels by the L2 norm of their weights.
func L2Norm(weights []float64) float64 {
	return floats.Norm(weights, 2)
}
