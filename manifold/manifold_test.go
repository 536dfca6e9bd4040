package manifold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"

	"github.com/Eugene-Bulog/dl-general-messaround/nn/layers"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

func TestEuclideanIsIdentity(t *testing.T) {
	x := tensor.NewWithData([]float64{1.5, -2.25, 0, 1e9})
	out, err := Euclidean{}.Project(x)
	require.NoError(t, err)
	assert.True(t, tensor.Equal(x, out), "euclidean projection must leave inputs unchanged")
	// and must not alias the input
	out.Data[0] = 0
	assert.Equal(t, 1.5, x.Data[0])
}

func TestPoincareBallStaysInBall(t *testing.T) {
	ball, err := NewPoincareBall(1.0)
	require.NoError(t, err)

	for _, scale := range []float64{0.1, 1, 10, 1000} {
		x := tensor.NewWithData([]float64{scale, scale, scale})
		out, err := ball.Project(x)
		require.NoError(t, err)
		norm := floats.Norm(out.Data, 2)
		assert.Less(t, norm, 1.0, "projection must land inside the unit ball")
	}
}

func TestPoincareBallClampsSaturatedNorms(t *testing.T) {
	// tanh(√c·‖x‖) rounds to exactly 1.0 once its argument passes ~19;
	// the clamp must keep such inputs strictly inside the ball.
	for _, c := range []float64{1.0, 4.0} {
		ball, err := NewPoincareBall(c)
		require.NoError(t, err)
		boundary := 1 / math.Sqrt(c)

		x := tensor.NewWithData([]float64{1000, 1000, 1000})
		out, err := ball.Project(x)
		require.NoError(t, err)
		norm := floats.Norm(out.Data, 2)
		assert.Less(t, norm, boundary, "curvature %g: saturated input must stay inside the open ball", c)
		assert.InDelta(t, boundary, norm, boundary*1e-4, "curvature %g: clamp should land just inside the boundary", c)
	}
}

func TestPoincareBallZeroVector(t *testing.T) {
	ball, err := NewPoincareBall(0.5)
	require.NoError(t, err)
	out, err := ball.Project(tensor.New(4))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, out.Data)
}

func TestPoincareBallSmallVectorsNearIdentity(t *testing.T) {
	ball, err := NewPoincareBall(1.0)
	require.NoError(t, err)
	x := tensor.NewWithData([]float64{1e-8, 0})
	out, err := ball.Project(x)
	require.NoError(t, err)
	assert.InDelta(t, x.Data[0], out.Data[0], 1e-12)
}

func TestPoincareBallDirectionPreserved(t *testing.T) {
	ball, err := NewPoincareBall(2.0)
	require.NoError(t, err)
	x := tensor.NewWithData([]float64{3, 4})
	out, err := ball.Project(x)
	require.NoError(t, err)
	// projection only rescales
	ratio := out.Data[0] / x.Data[0]
	assert.InDelta(t, ratio, out.Data[1]/x.Data[1], 1e-12)
	assert.Greater(t, ratio, 0.0)
	assert.Less(t, ratio, 1.0)
}

func TestPoincareBallRejectsNonPositiveCurvature(t *testing.T) {
	_, err := NewPoincareBall(0)
	assert.Error(t, err)
	_, err = NewPoincareBall(-1)
	assert.Error(t, err)
}

func TestWrapProjectsBeforeInner(t *testing.T) {
	lin := layers.NewLinear(2, 1)
	lin.W.Data = []float64{1, 1}

	ball, err := NewPoincareBall(1.0)
	require.NoError(t, err)
	wrapped := Wrap(ball, lin)

	// far outside the ball: the projection must compress the input,
	// so the wrapped output is bounded even for huge inputs
	big := tensor.NewWithData([]float64{100, 100})
	out, err := wrapped.Forward(big)
	require.NoError(t, err)
	assert.Less(t, math.Abs(out.Data[0]), 2.0)

	shape, err := wrapped.OutputShape([]int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, shape)
}
