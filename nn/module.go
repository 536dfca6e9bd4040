package nn

import (
	"fmt"
	"strings"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Param is a learnable tensor paired with its accumulated gradient.
// Grad has the same shape as Value and is owned by the layer.
type Param struct {
	Name  string
	Value *tensor.Tensor
	Grad  *tensor.Tensor
}

// Module defines a single layer/unit in the network.
type Module interface {
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)
	// Backward computes gradients and propagates them.
	// It takes the gradient of the loss with respect to the module's output,
	// and returns the gradient of the loss with respect to the module's input.
	// Parameter gradients are accumulated into the module's Params.
	Backward(grad *tensor.Tensor) (*tensor.Tensor, error)
	Params() []Param
}

// Shaper is implemented by modules that can report their output shape
// for a given input shape without running a forward pass.
type Shaper interface {
	OutputShape(in []int) ([]int, error)
}

// Bufferer is implemented by modules that carry non-learnable state
// (counted toward a model's static memory footprint).
type Bufferer interface {
	Buffers() []*tensor.Tensor
}

// Sequential chains multiple Modules in order.
type Sequential struct {
	Layers []Module
}

// Forward applies each layer in sequence.
func (s *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := x
	for i, layer := range s.Layers {
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Backward applies Backward in reverse order.
func (s *Sequential) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	var err error
	out := grad
	for i := len(s.Layers) - 1; i >= 0; i-- {
		out, err = s.Layers[i].Backward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Params collects the learnable parameters of all layers.
func (s *Sequential) Params() []Param {
	var out []Param
	for i, layer := range s.Layers {
		for _, p := range layer.Params() {
			p.Name = fmt.Sprintf("%d.%s", i, p.Name)
			out = append(out, p)
		}
	}
	return out
}

// Buffers collects non-learnable state of all layers that carry any.
func (s *Sequential) Buffers() []*tensor.Tensor {
	var out []*tensor.Tensor
	for _, layer := range s.Layers {
		if b, ok := layer.(Bufferer); ok {
			out = append(out, b.Buffers()...)
		}
	}
	return out
}

// OutputShape threads an input shape through every layer.
// Returns an error if any layer cannot report its shape statically.
func (s *Sequential) OutputShape(in []int) ([]int, error) {
	shape := append([]int(nil), in...)
	var err error
	for i, layer := range s.Layers {
		sh, ok := layer.(Shaper)
		if !ok {
			return nil, fmt.Errorf("layer %d (%T) cannot report an output shape", i, layer)
		}
		shape, err = sh.OutputShape(shape)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return shape, nil
}

// Describe returns a one-line-per-layer summary of the model structure.
func (s *Sequential) Describe() string {
	var b strings.Builder
	for i, layer := range s.Layers {
		if str, ok := layer.(fmt.Stringer); ok {
			fmt.Fprintf(&b, "%d: %s\n", i, str.String())
		} else {
			fmt.Fprintf(&b, "%d: %T\n", i, layer)
		}
	}
	return b.String()
}
