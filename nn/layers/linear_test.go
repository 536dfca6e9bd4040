package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"

	xrand "golang.org/x/exp/rand"
)

func newTestSource(seed uint64) xrand.Source {
	return xrand.NewSource(seed)
}

func TestLinear_Forward(t *testing.T) {
	lin := NewLinear(2, 2)
	lin.W.Data = []float64{1, 2, 3, 4}
	lin.B.Data = []float64{0.5, -0.5}

	out, err := lin.Forward(tensor.NewWithData([]float64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, 6.5}, out.Data)
}

func TestLinear_Backward(t *testing.T) {
	lin := NewLinear(2, 2)
	lin.W.Data = []float64{1, 2, 3, 4}

	x := tensor.NewWithData([]float64{1, 2})
	_, err := lin.Forward(x)
	require.NoError(t, err)

	gradIn, err := lin.Backward(tensor.NewWithData([]float64{1, 1}))
	require.NoError(t, err)

	// dL/dx = Wᵀ·g
	assert.Equal(t, []float64{4, 6}, gradIn.Data)
	// dL/dW = outer(g, x)
	assert.Equal(t, []float64{1, 2, 1, 2}, lin.gradW.Data)
	assert.Equal(t, []float64{1, 1}, lin.gradB.Data)
}

func TestLinear_BackwardAccumulates(t *testing.T) {
	lin := NewLinear(1, 1)
	lin.W.Data = []float64{1}
	x := tensor.NewWithData([]float64{2})
	for i := 0; i < 3; i++ {
		_, err := lin.Forward(x)
		require.NoError(t, err)
		_, err = lin.Backward(tensor.NewWithData([]float64{1}))
		require.NoError(t, err)
	}
	assert.Equal(t, 6.0, lin.gradW.Data[0])
	assert.Equal(t, 3.0, lin.gradB.Data[0])
}

func TestLinear_ShapeErrors(t *testing.T) {
	lin := NewLinear(3, 2)
	_, err := lin.Forward(tensor.New(4))
	assert.Error(t, err)
	_, err = lin.Forward(tensor.New(3, 1))
	assert.Error(t, err)
	_, err = lin.Backward(tensor.New(2))
	assert.Error(t, err, "backward before forward")
}

func TestLinear_PruneOutputs(t *testing.T) {
	lin := NewLinear(2, 3)
	lin.W.Data = []float64{1, 2, 3, 4, 5, 6}
	lin.B.Data = []float64{10, 20, 30}

	require.NoError(t, lin.PruneOutputChannels([]int{2, 0}))
	assert.Equal(t, []int{2, 2}, lin.W.Shape)
	assert.Equal(t, []float64{5, 6, 1, 2}, lin.W.Data)
	assert.Equal(t, []float64{30, 10}, lin.B.Data)
}

func TestLinear_PruneInputsGrouped(t *testing.T) {
	// 4 inputs = 2 upstream channels of group size 2
	lin := NewLinear(4, 1)
	lin.W.Data = []float64{1, 2, 3, 4}

	require.NoError(t, lin.PruneInputChannels([]int{1}, 2))
	assert.Equal(t, []int{1, 2}, lin.W.Shape)
	assert.Equal(t, []float64{3, 4}, lin.W.Data)
}

func TestLinear_PruneInputsBadGroup(t *testing.T) {
	lin := NewLinear(4, 1)
	assert.Error(t, lin.PruneInputChannels([]int{0}, 3))
}

func TestLinear_InitWeightsDeterministic(t *testing.T) {
	a := NewLinear(8, 4)
	b := NewLinear(8, 4)
	a.InitWeights(newTestSource(42))
	b.InitWeights(newTestSource(42))
	assert.Equal(t, a.W.Data, b.W.Data)
}

func TestLinear_ChannelWeights(t *testing.T) {
	lin := NewLinear(2, 2)
	lin.W.Data = []float64{1, 2, 3, 4}
	assert.Equal(t, []float64{3, 4}, lin.ChannelWeights(1))
	assert.Equal(t, 2, lin.OutChannels())
}
