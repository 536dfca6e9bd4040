package prune

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
)

// Stats summarizes a model's static cost.
type Stats struct {
	Params int64 // learnable parameter count
	MACs   int64 // multiply-accumulates for one forward pass
}

type macCounter interface {
	MACs(in []int) (int64, error)
}

// CountParams sums the learnable parameter elements of a model.
func CountParams(m nn.Module) int64 {
	var total int64
	for _, p := range m.Params() {
		total += int64(len(p.Value.Data))
	}
	return total
}

// Measure computes parameter and MAC counts for the given input shape.
func Measure(model *nn.Sequential, inShape []int) (Stats, error) {
	stats := Stats{Params: CountParams(model)}

	cur := append([]int(nil), inShape...)
	for i, layer := range model.Layers {
		if mc, ok := layer.(macCounter); ok {
			macs, err := mc.MACs(cur)
			if err != nil {
				return Stats{}, fmt.Errorf("layer %d: %w", i, err)
			}
			stats.MACs += macs
		}
		sh, ok := layer.(nn.Shaper)
		if !ok {
			return Stats{}, fmt.Errorf("layer %d (%T) cannot report an output shape", i, layer)
		}
		next, err := sh.OutputShape(cur)
		if err != nil {
			return Stats{}, fmt.Errorf("layer %d: %w", i, err)
		}
		cur = next
	}
	return stats, nil
}
