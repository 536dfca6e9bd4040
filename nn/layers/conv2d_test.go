package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

func TestConv2D_Identity1x1(t *testing.T) {
	// 1x1 identity convolution should preserve the input
	conv := NewConv2D(1, 1, 1, 1)
	conv.W.Set(1.0, 0, 0, 0, 0)
	conv.B.Set(0.0, 0)

	input := tensor.New(1, 3, 3)
	for i := 0; i < 9; i++ {
		input.Data[i] = float64(i + 1)
	}

	output, err := conv.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 3}, output.Shape)
	for i := 0; i < 9; i++ {
		assert.Equal(t, input.Data[i], output.Data[i], "Identity conv should preserve input")
	}
}

func TestConv2D_Known2x2(t *testing.T) {
	conv := NewConv2D(1, 1, 2, 2)
	for i := range conv.W.Data {
		conv.W.Data[i] = 1.0
	}

	input := tensor.New(1, 3, 3)
	for i := 0; i < 9; i++ {
		input.Data[i] = float64(i + 1)
	}

	output, err := conv.Forward(input)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2}, output.Shape)
	assert.Equal(t, []float64{12, 16, 24, 28}, output.Data)
}

func TestConv2D_Backward(t *testing.T) {
	conv := NewConv2D(1, 1, 2, 2)
	for i := range conv.W.Data {
		conv.W.Data[i] = 1.0
	}

	input := tensor.New(1, 3, 3)
	for i := 0; i < 9; i++ {
		input.Data[i] = float64(i + 1)
	}
	_, err := conv.Forward(input)
	require.NoError(t, err)

	grad := tensor.New(1, 2, 2)
	for i := range grad.Data {
		grad.Data[i] = 1.0
	}
	gradIn, err := conv.Backward(grad)
	require.NoError(t, err)

	// Each input position is covered by as many windows as touch it
	assert.Equal(t, []float64{1, 2, 1, 2, 4, 2, 1, 2, 1}, gradIn.Data)
	assert.Equal(t, []float64{12, 16, 24, 28}, conv.gradW.Data)
	assert.Equal(t, 4.0, conv.gradB.Data[0])
}

func TestConv2D_BackwardBeforeForward(t *testing.T) {
	conv := NewConv2D(1, 1, 2, 2)
	_, err := conv.Backward(tensor.New(1, 2, 2))
	assert.Error(t, err)
}

func TestConv2D_ShapeMismatch(t *testing.T) {
	conv := NewConv2D(3, 8, 3, 3)
	_, err := conv.Forward(tensor.New(1, 8, 8))
	assert.Error(t, err)
}

func TestConv2D_OutputShapeAndMACs(t *testing.T) {
	conv := NewConv2D(3, 8, 5, 5)
	shape, err := conv.OutputShape([]int{3, 12, 12})
	require.NoError(t, err)
	assert.Equal(t, []int{8, 8, 8}, shape)

	macs, err := conv.MACs([]int{3, 12, 12})
	require.NoError(t, err)
	// 3*5*5 per output element, 8*8*8 output elements
	assert.Equal(t, int64(3*5*5*8*8*8), macs)
}

func TestConv2D_PruneOutputChannels(t *testing.T) {
	conv := NewConv2D(2, 3, 1, 1)
	for i := range conv.W.Data {
		conv.W.Data[i] = float64(i)
	}
	conv.B.Data = []float64{10, 20, 30}

	require.NoError(t, conv.PruneOutputChannels([]int{0, 2}))
	assert.Equal(t, 2, conv.OutChannels())
	assert.Equal(t, []float64{0, 1, 4, 5}, conv.W.Data)
	assert.Equal(t, []float64{10, 30}, conv.B.Data)

	out, err := conv.Forward(tensor.New(2, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2}, out.Shape)
}

func TestConv2D_PruneInputChannels(t *testing.T) {
	conv := NewConv2D(3, 1, 1, 1)
	conv.W.Data = []float64{1, 2, 3}

	require.NoError(t, conv.PruneInputChannels([]int{1, 2}, 1))
	assert.Equal(t, []float64{2, 3}, conv.W.Data)

	// grouped input channels are a Linear-only concept
	assert.Error(t, conv.PruneInputChannels([]int{0}, 4))
}

func TestConv2D_InitWeightsDeterministic(t *testing.T) {
	a := NewConv2D(2, 4, 3, 3)
	b := NewConv2D(2, 4, 3, 3)
	a.InitWeights(newTestSource(7))
	b.InitWeights(newTestSource(7))
	assert.Equal(t, a.W.Data, b.W.Data)
	assert.NotEqual(t, a.W.Data[0], 0.0)
}
