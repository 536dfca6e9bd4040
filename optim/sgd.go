// Package optim provides parameter-space optimizers bound to a model's
// learnable parameters.
package optim

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
)

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LearningRate float64
	Momentum     float64
	WeightDecay  float64
}

// DefaultSGDConfig returns the default SGD configuration.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{
		LearningRate: 0.01,
		Momentum:     0.0,
		WeightDecay:  0.0,
	}
}

// SGD performs stochastic gradient descent with optional momentum and
// L2 weight decay over a fixed parameter set.
type SGD struct {
	cfg      SGDConfig
	params   []nn.Param
	velocity [][]float64 // allocated lazily, only when momentum > 0

	stepCount int
}

// NewSGD binds an optimizer to the given parameters.
func NewSGD(params []nn.Param, cfg SGDConfig) (*SGD, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("no parameters provided")
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive: %f", cfg.LearningRate)
	}
	if cfg.Momentum < 0 || cfg.Momentum > 1 {
		return nil, fmt.Errorf("momentum must be in [0,1]: %f", cfg.Momentum)
	}
	if cfg.WeightDecay < 0 {
		return nil, fmt.Errorf("weight decay cannot be negative: %f", cfg.WeightDecay)
	}
	for _, p := range params {
		if p.Grad == nil || len(p.Grad.Data) != len(p.Value.Data) {
			return nil, fmt.Errorf("parameter %q has no matching gradient storage", p.Name)
		}
	}
	s := &SGD{cfg: cfg, params: params}
	if cfg.Momentum > 0 {
		s.velocity = make([][]float64, len(params))
		for i, p := range params {
			s.velocity[i] = make([]float64, len(p.Value.Data))
		}
	}
	return s, nil
}

// Step applies one update to every bound parameter.
func (s *SGD) Step() {
	for i, p := range s.params {
		for j := range p.Value.Data {
			g := p.Grad.Data[j]
			if s.cfg.WeightDecay > 0 {
				g += s.cfg.WeightDecay * p.Value.Data[j]
			}
			if s.velocity != nil {
				s.velocity[i][j] = s.cfg.Momentum*s.velocity[i][j] + g
				g = s.velocity[i][j]
			}
			p.Value.Data[j] -= s.cfg.LearningRate * g
		}
	}
	s.stepCount++
}

// ZeroGrad clears the accumulated gradients of every bound parameter.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		for j := range p.Grad.Data {
			p.Grad.Data[j] = 0
		}
	}
}

// StepCount returns the number of updates applied so far.
func (s *SGD) StepCount() int { return s.stepCount }
