package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

func TestFlattenRoundTrip(t *testing.T) {
	f := NewFlatten()
	input := tensor.New(2, 3, 4)
	for i := range input.Data {
		input.Data[i] = float64(i)
	}

	out, err := f.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, []int{24}, out.Shape)

	back, err := f.Backward(out)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, back.Shape)
	assert.Equal(t, input.Data, back.Data)
}

func TestReLU(t *testing.T) {
	r := NewReLU()
	out, err := r.Forward(tensor.NewWithData([]float64{-1, 0, 3}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 3}, out.Data)

	gradIn, err := r.Backward(tensor.NewWithData([]float64{1, 1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, gradIn.Data)
}

func TestResidualAddsInput(t *testing.T) {
	res := NewResidual(NewReLU())
	out, err := res.Forward(tensor.NewWithData([]float64{-2, 3}))
	require.NoError(t, err)
	// relu(x) + x
	assert.Equal(t, []float64{-2, 6}, out.Data)
}

func TestResidualRejectsShapeChange(t *testing.T) {
	res := NewResidual(NewLinear(4, 2))
	_, err := res.OutputShape([]int{4})
	assert.Error(t, err)
}
