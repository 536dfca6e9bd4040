package layers

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Residual wraps an inner module and adds its input to its output.
// The inner module must preserve shape.
type Residual struct {
	Inner nn.Module
}

func NewResidual(inner nn.Module) *Residual {
	return &Residual{Inner: inner}
}

func (r *Residual) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := r.Inner.Forward(x)
	if err != nil {
		return nil, err
	}
	sum, err := tensor.Add(out, x)
	if err != nil {
		return nil, fmt.Errorf("residual add: %w", err)
	}
	return sum, nil
}

func (r *Residual) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	inner, err := r.Inner.Backward(grad)
	if err != nil {
		return nil, err
	}
	return tensor.Add(inner, grad)
}

func (r *Residual) Params() []nn.Param { return r.Inner.Params() }

// OutputShape is the identity (the inner module must preserve shape).
func (r *Residual) OutputShape(in []int) ([]int, error) {
	sh, ok := r.Inner.(nn.Shaper)
	if !ok {
		return nil, fmt.Errorf("inner module %T cannot report an output shape", r.Inner)
	}
	out, err := sh.OutputShape(in)
	if err != nil {
		return nil, err
	}
	for i := range in {
		if i >= len(out) || out[i] != in[i] {
			return nil, fmt.Errorf("residual inner module changes shape %v to %v", in, out)
		}
	}
	return out, nil
}

func (r *Residual) String() string {
	if str, ok := r.Inner.(fmt.Stringer); ok {
		return fmt.Sprintf("Residual(%s)", str.String())
	}
	return fmt.Sprintf("Residual(%T)", r.Inner)
}
