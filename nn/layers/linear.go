package layers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"

	xrand "golang.org/x/exp/rand"
)

// Linear is a fully-connected layer: y = W·x + b.
type Linear struct {
	W, B *tensor.Tensor // W: [outDim, inDim], B: [outDim]

	gradW *tensor.Tensor
	gradB *tensor.Tensor

	lastInput *tensor.Tensor
}

// NewLinear(inDim→outDim) sets up W, B and their gradient storage.
func NewLinear(inDim, outDim int) *Linear {
	return &Linear{
		W:     tensor.New(outDim, inDim),
		B:     tensor.New(outDim),
		gradW: tensor.New(outDim, inDim),
		gradB: tensor.New(outDim),
	}
}

// InitWeights fills W with Glorot-uniform values drawn from src.
func (l *Linear) InitWeights(src xrand.Source) {
	outDim, inDim := l.W.Shape[0], l.W.Shape[1]
	limit := math.Sqrt(6.0 / float64(inDim+outDim))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
	for i := range l.W.Data {
		l.W.Data[i] = dist.Rand()
	}
}

// Forward computes W·x + b for a 1-D input of length inDim.
func (l *Linear) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	outDim, inDim := l.W.Shape[0], l.W.Shape[1]
	if len(x.Shape) != 1 || x.Shape[0] != inDim {
		return nil, fmt.Errorf("Linear expects input shape [%d], got %v", inDim, x.Shape)
	}
	l.lastInput = x.Clone()

	w := mat.NewDense(outDim, inDim, l.W.Data)
	xv := mat.NewVecDense(inDim, x.Data)
	var y mat.VecDense
	y.MulVec(w, xv)

	out := tensor.New(outDim)
	copy(out.Data, y.RawVector().Data)
	for i := 0; i < outDim; i++ {
		out.Data[i] += l.B.Data[i]
	}
	return out, nil
}

// Backward accumulates dL/dW and dL/dB and returns dL/dx.
func (l *Linear) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	outDim, inDim := l.W.Shape[0], l.W.Shape[1]
	if len(grad.Shape) != 1 || grad.Shape[0] != outDim {
		return nil, fmt.Errorf("Linear expects gradient shape [%d], got %v", outDim, grad.Shape)
	}
	if l.lastInput == nil {
		return nil, fmt.Errorf("Linear backward called before forward")
	}

	// dL/dW += outer(grad, x), dL/dB += grad
	for i := 0; i < outDim; i++ {
		g := grad.Data[i]
		l.gradB.Data[i] += g
		row := l.gradW.Data[i*inDim : (i+1)*inDim]
		for j := 0; j < inDim; j++ {
			row[j] += g * l.lastInput.Data[j]
		}
	}

	// dL/dx = Wᵀ·grad
	w := mat.NewDense(outDim, inDim, l.W.Data)
	gv := mat.NewVecDense(outDim, grad.Data)
	var gx mat.VecDense
	gx.MulVec(w.T(), gv)

	out := tensor.New(inDim)
	copy(out.Data, gx.RawVector().Data)
	return out, nil
}

func (l *Linear) Params() []nn.Param {
	return []nn.Param{
		{Name: "weight", Value: l.W, Grad: l.gradW},
		{Name: "bias", Value: l.B, Grad: l.gradB},
	}
}

// OutputShape maps [inDim] to [outDim].
func (l *Linear) OutputShape(in []int) ([]int, error) {
	if len(in) != 1 || in[0] != l.W.Shape[1] {
		return nil, fmt.Errorf("Linear expects input shape [%d], got %v", l.W.Shape[1], in)
	}
	return []int{l.W.Shape[0]}, nil
}

// MACs returns the multiply-accumulate count of one forward pass.
func (l *Linear) MACs(in []int) (int64, error) {
	if _, err := l.OutputShape(in); err != nil {
		return 0, err
	}
	return int64(l.W.Shape[0]) * int64(l.W.Shape[1]), nil
}

// OutChannels returns the number of output units.
func (l *Linear) OutChannels() int { return l.W.Shape[0] }

// ChannelWeights returns the weight row feeding output unit i.
func (l *Linear) ChannelWeights(i int) []float64 {
	inDim := l.W.Shape[1]
	return l.W.Data[i*inDim : (i+1)*inDim]
}

// PruneOutputChannels shrinks the layer to the given output units,
// in the given order. Gradient storage is reallocated.
func (l *Linear) PruneOutputChannels(keep []int) error {
	outDim, inDim := l.W.Shape[0], l.W.Shape[1]
	if len(keep) == 0 || len(keep) > outDim {
		return fmt.Errorf("invalid keep set of size %d for %d outputs", len(keep), outDim)
	}
	w := tensor.New(len(keep), inDim)
	b := tensor.New(len(keep))
	for n, i := range keep {
		if i < 0 || i >= outDim {
			return fmt.Errorf("output index %d out of range [0,%d)", i, outDim)
		}
		copy(w.Data[n*inDim:(n+1)*inDim], l.W.Data[i*inDim:(i+1)*inDim])
		b.Data[n] = l.B.Data[i]
	}
	l.W, l.B = w, b
	l.gradW = tensor.New(len(keep), inDim)
	l.gradB = tensor.New(len(keep))
	l.lastInput = nil
	return nil
}

// PruneInputChannels shrinks the layer's input dimension to the kept
// channels. group is the number of consecutive input columns fed by one
// upstream channel (>1 after a Flatten over spatial dims).
func (l *Linear) PruneInputChannels(keep []int, group int) error {
	outDim, inDim := l.W.Shape[0], l.W.Shape[1]
	if group <= 0 || inDim%group != 0 {
		return fmt.Errorf("input dim %d not divisible by channel group %d", inDim, group)
	}
	channels := inDim / group
	newIn := len(keep) * group
	w := tensor.New(outDim, newIn)
	for i := 0; i < outDim; i++ {
		src := l.W.Data[i*inDim : (i+1)*inDim]
		dst := w.Data[i*newIn : (i+1)*newIn]
		for n, c := range keep {
			if c < 0 || c >= channels {
				return fmt.Errorf("input channel %d out of range [0,%d)", c, channels)
			}
			copy(dst[n*group:(n+1)*group], src[c*group:(c+1)*group])
		}
	}
	l.W = w
	l.gradW = tensor.New(outDim, newIn)
	l.lastInput = nil
	return nil
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(%d,%d)", l.W.Shape[1], l.W.Shape[0])
}
