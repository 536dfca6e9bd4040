package layers

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Flatten reshapes any input into a 1-D tensor.
type Flatten struct {
	lastShape []int
}

func NewFlatten() *Flatten {
	return &Flatten{}
}

func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	f.lastShape = append([]int(nil), x.Shape...)
	out := tensor.New(len(x.Data))
	copy(out.Data, x.Data)
	return out, nil
}

// Backward restores the pre-flatten shape.
func (f *Flatten) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if f.lastShape == nil {
		return nil, fmt.Errorf("Flatten backward called before forward")
	}
	out := tensor.New(f.lastShape...)
	if len(grad.Data) != len(out.Data) {
		return nil, fmt.Errorf("gradient size %d does not match input size %d", len(grad.Data), len(out.Data))
	}
	copy(out.Data, grad.Data)
	return out, nil
}

func (f *Flatten) Params() []nn.Param { return nil }

// OutputShape maps any shape to its flat length.
func (f *Flatten) OutputShape(in []int) ([]int, error) {
	total := 1
	for _, d := range in {
		total *= d
	}
	return []int{total}, nil
}

// Flattens marks the layer as a channel-grouping boundary for pruning:
// each upstream channel becomes a contiguous group of flat indices.
func (f *Flatten) Flattens() bool { return true }

func (f *Flatten) String() string { return "Flatten" }
