package layers

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// AvgPool2D averages non-overlapping p×p windows per channel.
type AvgPool2D struct {
	P int

	lastShape []int
}

func NewAvgPool2D(p int) *AvgPool2D {
	return &AvgPool2D{P: p}
}

func (a *AvgPool2D) checkInput(shape []int) error {
	if len(shape) != 3 {
		return fmt.Errorf("AvgPool2D expects input shape [C H W], got %v", shape)
	}
	if shape[1]%a.P != 0 || shape[2]%a.P != 0 {
		return fmt.Errorf("input %v not divisible by pool size %d", shape, a.P)
	}
	return nil
}

// Forward pools a [C, H, W] input into [C, H/p, W/p].
func (a *AvgPool2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := a.checkInput(x.Shape); err != nil {
		return nil, err
	}
	a.lastShape = append([]int(nil), x.Shape...)

	ch, oh, ow := x.Shape[0], x.Shape[1]/a.P, x.Shape[2]/a.P
	out := tensor.New(ch, oh, ow)
	norm := 1.0 / float64(a.P*a.P)
	for c := 0; c < ch; c++ {
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				sum := 0.0
				for i := 0; i < a.P; i++ {
					for j := 0; j < a.P; j++ {
						sum += x.At(c, y*a.P+i, xx*a.P+j)
					}
				}
				out.Set(sum*norm, c, y, xx)
			}
		}
	}
	return out, nil
}

// Backward spreads each output gradient evenly over its window.
func (a *AvgPool2D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if a.lastShape == nil {
		return nil, fmt.Errorf("AvgPool2D backward called before forward")
	}
	ch, oh, ow := a.lastShape[0], a.lastShape[1]/a.P, a.lastShape[2]/a.P
	if len(grad.Shape) != 3 || grad.Shape[0] != ch || grad.Shape[1] != oh || grad.Shape[2] != ow {
		return nil, fmt.Errorf("AvgPool2D expects gradient shape [%d %d %d], got %v", ch, oh, ow, grad.Shape)
	}
	out := tensor.New(a.lastShape...)
	norm := 1.0 / float64(a.P*a.P)
	for c := 0; c < ch; c++ {
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				g := grad.At(c, y, xx) * norm
				for i := 0; i < a.P; i++ {
					for j := 0; j < a.P; j++ {
						out.Set(g, c, y*a.P+i, xx*a.P+j)
					}
				}
			}
		}
	}
	return out, nil
}

func (a *AvgPool2D) Params() []nn.Param { return nil }

// OutputShape maps [C, H, W] to [C, H/p, W/p].
func (a *AvgPool2D) OutputShape(in []int) ([]int, error) {
	if err := a.checkInput(in); err != nil {
		return nil, err
	}
	return []int{in[0], in[1] / a.P, in[2] / a.P}, nil
}

// ChannelsUnchanged marks the layer as channel-preserving for pruning.
func (a *AvgPool2D) ChannelsUnchanged() bool { return true }

func (a *AvgPool2D) String() string {
	return fmt.Sprintf("AvgPool2D(%d)", a.P)
}
