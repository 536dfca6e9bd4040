package layers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"

	xrand "golang.org/x/exp/rand"
)

// Conv2D is a 2D convolutional layer (valid padding, stride 1).
type Conv2D struct {
	inChan, outChan int
	kh, kw          int

	W *tensor.Tensor // weights: [outChan, inChan, kh, kw]
	B *tensor.Tensor // bias: [outChan]

	gradW *tensor.Tensor
	gradB *tensor.Tensor

	lastInput *tensor.Tensor
}

// NewConv2D creates a new Conv2D layer.
func NewConv2D(inChan, outChan, kh, kw int) *Conv2D {
	return &Conv2D{
		inChan:  inChan,
		outChan: outChan,
		kh:      kh,
		kw:      kw,
		W:       tensor.New(outChan, inChan, kh, kw),
		B:       tensor.New(outChan),
		gradW:   tensor.New(outChan, inChan, kh, kw),
		gradB:   tensor.New(outChan),
	}
}

// InitWeights fills W with Glorot-uniform values drawn from src.
func (c *Conv2D) InitWeights(src xrand.Source) {
	fanIn := c.inChan * c.kh * c.kw
	fanOut := c.outChan * c.kh * c.kw
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
	for i := range c.W.Data {
		c.W.Data[i] = dist.Rand()
	}
}

// Forward convolves a [inChan, H, W] input into [outChan, H-kh+1, W-kw+1].
func (c *Conv2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := c.checkInput(x.Shape); err != nil {
		return nil, err
	}
	c.lastInput = x.Clone()

	h, w := x.Shape[1], x.Shape[2]
	oh, ow := h-c.kh+1, w-c.kw+1
	out := tensor.New(c.outChan, oh, ow)

	for oc := 0; oc < c.outChan; oc++ {
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				sum := c.B.Data[oc]
				for ic := 0; ic < c.inChan; ic++ {
					for i := 0; i < c.kh; i++ {
						for j := 0; j < c.kw; j++ {
							sum += c.W.At(oc, ic, i, j) * x.At(ic, y+i, xx+j)
						}
					}
				}
				out.Set(sum, oc, y, xx)
			}
		}
	}
	return out, nil
}

// Backward accumulates dL/dW and dL/dB and returns dL/dx.
func (c *Conv2D) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	if c.lastInput == nil {
		return nil, fmt.Errorf("Conv2D backward called before forward")
	}
	x := c.lastInput
	h, w := x.Shape[1], x.Shape[2]
	oh, ow := h-c.kh+1, w-c.kw+1
	if len(grad.Shape) != 3 || grad.Shape[0] != c.outChan || grad.Shape[1] != oh || grad.Shape[2] != ow {
		return nil, fmt.Errorf("Conv2D expects gradient shape [%d %d %d], got %v", c.outChan, oh, ow, grad.Shape)
	}

	gradIn := tensor.New(c.inChan, h, w)
	for oc := 0; oc < c.outChan; oc++ {
		for y := 0; y < oh; y++ {
			for xx := 0; xx < ow; xx++ {
				g := grad.At(oc, y, xx)
				c.gradB.Data[oc] += g
				for ic := 0; ic < c.inChan; ic++ {
					for i := 0; i < c.kh; i++ {
						for j := 0; j < c.kw; j++ {
							gw := c.gradW.At(oc, ic, i, j) + g*x.At(ic, y+i, xx+j)
							c.gradW.Set(gw, oc, ic, i, j)
							gi := gradIn.At(ic, y+i, xx+j) + g*c.W.At(oc, ic, i, j)
							gradIn.Set(gi, ic, y+i, xx+j)
						}
					}
				}
			}
		}
	}
	return gradIn, nil
}

func (c *Conv2D) Params() []nn.Param {
	return []nn.Param{
		{Name: "weight", Value: c.W, Grad: c.gradW},
		{Name: "bias", Value: c.B, Grad: c.gradB},
	}
}

func (c *Conv2D) checkInput(shape []int) error {
	if len(shape) != 3 || shape[0] != c.inChan {
		return fmt.Errorf("Conv2D expects input shape [%d H W], got %v", c.inChan, shape)
	}
	if shape[1] < c.kh || shape[2] < c.kw {
		return fmt.Errorf("input %v smaller than kernel %dx%d", shape, c.kh, c.kw)
	}
	return nil
}

// OutputShape maps [C, H, W] to [outChan, H-kh+1, W-kw+1].
func (c *Conv2D) OutputShape(in []int) ([]int, error) {
	if err := c.checkInput(in); err != nil {
		return nil, err
	}
	return []int{c.outChan, in[1] - c.kh + 1, in[2] - c.kw + 1}, nil
}

// MACs returns the multiply-accumulate count of one forward pass.
func (c *Conv2D) MACs(in []int) (int64, error) {
	out, err := c.OutputShape(in)
	if err != nil {
		return 0, err
	}
	perOutput := int64(c.inChan) * int64(c.kh) * int64(c.kw)
	return perOutput * int64(c.outChan) * int64(out[1]) * int64(out[2]), nil
}

// OutChannels returns the number of output channels.
func (c *Conv2D) OutChannels() int { return c.outChan }

// ChannelWeights returns the flattened kernel weights of output channel i.
func (c *Conv2D) ChannelWeights(i int) []float64 {
	span := c.inChan * c.kh * c.kw
	return c.W.Data[i*span : (i+1)*span]
}

// PruneOutputChannels shrinks the layer to the given output channels.
func (c *Conv2D) PruneOutputChannels(keep []int) error {
	if len(keep) == 0 || len(keep) > c.outChan {
		return fmt.Errorf("invalid keep set of size %d for %d channels", len(keep), c.outChan)
	}
	span := c.inChan * c.kh * c.kw
	w := tensor.New(len(keep), c.inChan, c.kh, c.kw)
	b := tensor.New(len(keep))
	for n, i := range keep {
		if i < 0 || i >= c.outChan {
			return fmt.Errorf("output channel %d out of range [0,%d)", i, c.outChan)
		}
		copy(w.Data[n*span:(n+1)*span], c.W.Data[i*span:(i+1)*span])
		b.Data[n] = c.B.Data[i]
	}
	c.outChan = len(keep)
	c.W, c.B = w, b
	c.gradW = tensor.New(c.outChan, c.inChan, c.kh, c.kw)
	c.gradB = tensor.New(c.outChan)
	c.lastInput = nil
	return nil
}

// PruneInputChannels shrinks the layer's input channels to the kept set.
// Convolution inputs are not grouped, so group must be 1.
func (c *Conv2D) PruneInputChannels(keep []int, group int) error {
	if group != 1 {
		return fmt.Errorf("Conv2D input channels are ungrouped, got group %d", group)
	}
	if len(keep) == 0 || len(keep) > c.inChan {
		return fmt.Errorf("invalid keep set of size %d for %d channels", len(keep), c.inChan)
	}
	span := c.kh * c.kw
	w := tensor.New(c.outChan, len(keep), c.kh, c.kw)
	for oc := 0; oc < c.outChan; oc++ {
		for n, ic := range keep {
			if ic < 0 || ic >= c.inChan {
				return fmt.Errorf("input channel %d out of range [0,%d)", ic, c.inChan)
			}
			srcOff := (oc*c.inChan + ic) * span
			dstOff := (oc*len(keep) + n) * span
			copy(w.Data[dstOff:dstOff+span], c.W.Data[srcOff:srcOff+span])
		}
	}
	c.inChan = len(keep)
	c.W = w
	c.gradW = tensor.New(c.outChan, c.inChan, c.kh, c.kw)
	c.lastInput = nil
	return nil
}

func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(%d,%d,k=%dx%d)", c.inChan, c.outChan, c.kh, c.kw)
}
