package manifold

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Layer wraps a flat layer so that its input is projected onto a
// manifold first. It is a drop-in replacement for the wrapped layer;
// the projection is treated as input preprocessing, so gradients pass
// through it unchanged.
type Layer struct {
	M     Manifold
	Inner nn.Module
}

// Wrap returns inner preceded by a projection onto m.
func Wrap(m Manifold, inner nn.Module) *Layer {
	return &Layer{M: m, Inner: inner}
}

func (l *Layer) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	proj, err := l.M.Project(x)
	if err != nil {
		return nil, fmt.Errorf("project onto %s: %w", l.M.Name(), err)
	}
	return l.Inner.Forward(proj)
}

func (l *Layer) Backward(grad *tensor.Tensor) (*tensor.Tensor, error) {
	return l.Inner.Backward(grad)
}

func (l *Layer) Params() []nn.Param { return l.Inner.Params() }

// OutputShape delegates to the inner layer (projection preserves shape).
func (l *Layer) OutputShape(in []int) ([]int, error) {
	sh, ok := l.Inner.(nn.Shaper)
	if !ok {
		return nil, fmt.Errorf("inner module %T cannot report an output shape", l.Inner)
	}
	return sh.OutputShape(in)
}

func (l *Layer) String() string {
	if str, ok := l.Inner.(fmt.Stringer); ok {
		return fmt.Sprintf("%s@%s", str.String(), l.M.Name())
	}
	return fmt.Sprintf("%T@%s", l.Inner, l.M.Name())
}
