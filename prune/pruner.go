package prune

import (
	"fmt"
	"sort"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
)

// OutputPrunable is implemented by layers whose output channels can be
// removed.
type OutputPrunable interface {
	OutChannels() int
	ChannelWeights(i int) []float64
	PruneOutputChannels(keep []int) error
}

// InputPrunable is implemented by layers whose input channels can be
// removed to match an upstream pruning. group is the number of
// consecutive inputs fed by one upstream channel.
type InputPrunable interface {
	PruneInputChannels(keep []int, group int) error
}

// channelPassthrough marks layers that neither produce nor consume
// channels (activations, pooling).
type channelPassthrough interface {
	ChannelsUnchanged() bool
}

// flattenBoundary marks layers that collapse per-channel blocks into a
// flat vector.
type flattenBoundary interface {
	Flattens() bool
}

// Predicate decides whether a layer's output channels may be pruned.
type Predicate func(m nn.Module) bool

// PruneAll permits pruning every structurally prunable layer.
func PruneAll(nn.Module) bool { return true }

// Pruner removes the least important output channels of every prunable
// layer, at a fixed ratio, in a single mutating Step.
type Pruner struct {
	model    *nn.Sequential
	inShape  []int
	imp      Importance
	ratio    float64
	prunable Predicate
}

// New validates the configuration and builds a Pruner. inShape is an
// example input shape used to trace channel groups through the model.
func New(model *nn.Sequential, inShape []int, imp Importance, ratio float64, prunable Predicate) (*Pruner, error) {
	if model == nil || len(model.Layers) == 0 {
		return nil, fmt.Errorf("empty model")
	}
	if imp == nil {
		return nil, fmt.Errorf("importance function is required")
	}
	if ratio < 0 || ratio >= 1 {
		return nil, fmt.Errorf("pruning ratio must be in [0,1): %f", ratio)
	}
	if prunable == nil {
		prunable = PruneAll
	}
	if _, err := model.OutputShape(inShape); err != nil {
		return nil, fmt.Errorf("model does not accept input shape %v: %w", inShape, err)
	}
	return &Pruner{model: model, inShape: inShape, imp: imp, ratio: ratio, prunable: prunable}, nil
}

// Step prunes the model in place. Producers whose channels feed no
// downstream consumer (the classifier head) are left untouched.
func (p *Pruner) Step() error {
	shapes, err := p.inputShapes()
	if err != nil {
		return err
	}

	for i, layer := range p.model.Layers {
		producer, ok := layer.(OutputPrunable)
		if !ok || !p.prunable(layer) {
			continue
		}
		consumer, group, err := p.findConsumer(i, shapes)
		if err != nil {
			return err
		}
		if consumer == nil {
			continue
		}

		keep := p.selectChannels(producer)
		if keep == nil {
			continue
		}
		if err := producer.PruneOutputChannels(keep); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if err := consumer.PruneInputChannels(keep, group); err != nil {
			return fmt.Errorf("consumer of layer %d: %w", i, err)
		}
	}

	// The pruned model must still accept the example input.
	if _, err := p.model.OutputShape(p.inShape); err != nil {
		return fmt.Errorf("pruned model inconsistent: %w", err)
	}
	return nil
}

// inputShapes returns the input shape of every layer for the example
// input.
func (p *Pruner) inputShapes() ([][]int, error) {
	shapes := make([][]int, len(p.model.Layers))
	cur := append([]int(nil), p.inShape...)
	for i, layer := range p.model.Layers {
		shapes[i] = cur
		sh, ok := layer.(nn.Shaper)
		if !ok {
			return nil, fmt.Errorf("layer %d (%T) cannot report an output shape", i, layer)
		}
		next, err := sh.OutputShape(cur)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		cur = next
	}
	return shapes, nil
}

// findConsumer walks forward from layer i to the layer consuming its
// output channels, returning it with the flat group size per channel.
// A nil consumer means the producer feeds the model output directly.
func (p *Pruner) findConsumer(i int, shapes [][]int) (InputPrunable, int, error) {
	group := 1
	for j := i + 1; j < len(p.model.Layers); j++ {
		m := p.model.Layers[j]
		if c, ok := m.(InputPrunable); ok {
			return c, group, nil
		}
		if _, ok := m.(channelPassthrough); ok {
			continue
		}
		if _, ok := m.(flattenBoundary); ok {
			// After flattening [C, ...] each channel owns a contiguous
			// block of product(spatial dims) flat indices.
			in := shapes[j]
			group = 1
			for _, d := range in[1:] {
				group *= d
			}
			continue
		}
		// Residual connections, attention blocks and other structures
		// are not traceable by this pruner.
		return nil, 0, fmt.Errorf("unsupported module %T between layer %d and its consumer", m, i)
	}
	return nil, 0, nil
}

// selectChannels ranks the producer's channels and returns the kept
// indices in their original order, or nil when nothing is pruned.
func (p *Pruner) selectChannels(producer OutputPrunable) []int {
	n := producer.OutChannels()
	drop := int(p.ratio * float64(n))
	if drop == 0 {
		return nil
	}
	if drop >= n {
		drop = n - 1
	}

	idx := make([]int, n)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		idx[i] = i
		scores[i] = p.imp(producer.ChannelWeights(i))
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	keep := append([]int(nil), idx[drop:]...)
	sort.Ints(keep)
	return keep
}
