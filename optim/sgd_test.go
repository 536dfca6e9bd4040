package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

func oneParam(w, g float64) []nn.Param {
	return []nn.Param{{
		Name:  "w",
		Value: tensor.NewWithData([]float64{w}),
		Grad:  tensor.NewWithData([]float64{g}),
	}}
}

func TestSGDConfigValidation(t *testing.T) {
	params := oneParam(1, 0)
	cases := []struct {
		name string
		cfg  SGDConfig
	}{
		{"zero lr", SGDConfig{LearningRate: 0}},
		{"negative lr", SGDConfig{LearningRate: -0.1}},
		{"negative momentum", SGDConfig{LearningRate: 0.1, Momentum: -0.5}},
		{"momentum above one", SGDConfig{LearningRate: 0.1, Momentum: 1.5}},
		{"negative weight decay", SGDConfig{LearningRate: 0.1, WeightDecay: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSGD(params, tc.cfg)
			assert.Error(t, err)
		})
	}

	_, err := NewSGD(nil, DefaultSGDConfig())
	assert.Error(t, err, "empty parameter set")
}

func TestSGDStep(t *testing.T) {
	params := oneParam(1.0, 0.5)
	opt, err := NewSGD(params, SGDConfig{LearningRate: 0.1})
	require.NoError(t, err)

	opt.Step()
	assert.InDelta(t, 0.95, params[0].Value.Data[0], 1e-12)
	assert.Equal(t, 1, opt.StepCount())
}

func TestSGDMomentumAccumulates(t *testing.T) {
	params := oneParam(0.0, 1.0)
	opt, err := NewSGD(params, SGDConfig{LearningRate: 1.0, Momentum: 0.5})
	require.NoError(t, err)

	opt.Step() // v=1,   w=-1
	opt.Step() // v=1.5, w=-2.5
	assert.InDelta(t, -2.5, params[0].Value.Data[0], 1e-12)
}

func TestSGDWeightDecay(t *testing.T) {
	params := oneParam(2.0, 0.0)
	opt, err := NewSGD(params, SGDConfig{LearningRate: 0.1, WeightDecay: 0.5})
	require.NoError(t, err)

	opt.Step() // g = 0 + 0.5*2 = 1, w = 2 - 0.1
	assert.InDelta(t, 1.9, params[0].Value.Data[0], 1e-12)
}

func TestSGDZeroGrad(t *testing.T) {
	params := oneParam(1.0, 3.0)
	opt, err := NewSGD(params, DefaultSGDConfig())
	require.NoError(t, err)

	opt.ZeroGrad()
	assert.Equal(t, 0.0, params[0].Grad.Data[0])
}
