package layers

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// ReLU is an element-wise rectifier.
type ReLU struct {
	lastInput *tensor.Tensor
}

func NewReLU() *ReLU {
	return &ReLU{}
}

func (r *ReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	r.lastInput = x.Clone()
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		if v > 0 {
			out.Data[i] = v
		}
	}
	return out, nil
}

// Backward gates the gradient by the sign of the forward input.
func (r *ReLU) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if r.lastInput == nil {
		return nil, fmt.Errorf("ReLU backward called before forward")
	}
	if !tensor.SameShape(grad, r.lastInput) {
		return nil, fmt.Errorf("gradient shape %v does not match input shape %v", grad.Shape, r.lastInput.Shape)
	}
	out := tensor.New(grad.Shape...)
	for i, v := range r.lastInput.Data {
		if v > 0 {
			out.Data[i] = grad.Data[i]
		}
	}
	return out, nil
}

func (r *ReLU) Params() []nn.Param { return nil }

// OutputShape is the identity.
func (r *ReLU) OutputShape(in []int) ([]int, error) {
	return append([]int(nil), in...), nil
}

// ChannelsUnchanged marks the layer as channel-preserving for pruning.
func (r *ReLU) ChannelsUnchanged() bool { return true }

func (r *ReLU) String() string { return "ReLU" }
