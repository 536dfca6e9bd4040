// Package manifold defines the curved-space surface used to project
// flat input batches before they reach a model. Only the input
// projection is implemented here; Riemannian optimization and full
// manifold-native layers belong to an external geometry library.
package manifold

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

// Manifold is a coordinate space with a scalar curvature and a
// projection from the tangent space at the origin onto the manifold.
type Manifold interface {
	Name() string
	Curvature() float64
	// Project maps a flat (tangent-at-origin) tensor onto the manifold.
	Project(x *tensor.Tensor) (*tensor.Tensor, error)
}

// Euclidean is flat space: zero curvature, identity projection.
type Euclidean struct{}

func (Euclidean) Name() string       { return "euclidean" }
func (Euclidean) Curvature() float64 { return 0 }

// Project returns a copy of x unchanged.
func (Euclidean) Project(x *tensor.Tensor) (*tensor.Tensor, error) {
	return x.Clone(), nil
}

// PoincareBall is the Poincaré ball model of hyperbolic space with
// curvature -c. Whether c should be trainable is the caller's choice;
// here it is fixed at construction.
type PoincareBall struct {
	C float64
}

// NewPoincareBall returns a ball of curvature -c, c > 0.
func NewPoincareBall(c float64) (*PoincareBall, error) {
	if c <= 0 {
		return nil, fmt.Errorf("curvature parameter must be positive, got %g", c)
	}
	return &PoincareBall{C: c}, nil
}

func (p *PoincareBall) Name() string       { return "poincare" }
func (p *PoincareBall) Curvature() float64 { return p.C }

// boundaryEps keeps projected points off the ball boundary: tanh
// rounds to 1.0 in float64 once its argument passes ~19, which would
// otherwise place large inputs exactly on the boundary.
const boundaryEps = 1e-5

// Project applies the exponential map at the origin:
//
//	exp_0(x) = tanh(√c·‖x‖) · x / (√c·‖x‖)
//
// mapping the whole tangent space into the open ball of radius 1/√c.
// The projected norm is capped at (1-ε)/√c so the result stays
// strictly inside the ball even when tanh saturates. The zero vector
// maps to the origin.
func (p *PoincareBall) Project(x *tensor.Tensor) (*tensor.Tensor, error) {
	norm := floats.Norm(x.Data, 2)
	if norm == 0 {
		return x.Clone(), nil
	}
	sqrtC := math.Sqrt(p.C)
	scale := math.Tanh(sqrtC*norm) / (sqrtC * norm)
	if limit := (1 - boundaryEps) / (sqrtC * norm); scale > limit {
		scale = limit
	}
	return x.Scale(scale), nil
}
