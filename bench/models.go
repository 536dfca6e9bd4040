package bench

import (
	"fmt"

	"github.com/Eugene-Bulog/dl-general-messaround/nn"
	"github.com/Eugene-Bulog/dl-general-messaround/nn/layers"

	xrand "golang.org/x/exp/rand"
)

// BuildMLP stacks Linear+ReLU blocks over the given layer widths
// (input width first, class count last). A fixed seed gives identical
// weights, so variants built from the same seed start out equal.
func BuildMLP(arch []int, seed uint64) (*nn.Sequential, error) {
	if len(arch) < 2 {
		return nil, fmt.Errorf("architecture needs at least input and output widths, got %v", arch)
	}
	src := xrand.NewSource(seed)
	var list []nn.Module
	for i := 0; i < len(arch)-1; i++ {
		lin := layers.NewLinear(arch[i], arch[i+1])
		lin.InitWeights(src)
		list = append(list, lin)
		if i < len(arch)-2 {
			list = append(list, layers.NewReLU())
		}
	}
	return &nn.Sequential{Layers: list}, nil
}

// BuildConvNet returns a LeNet-style conv-pool-conv-pool-FC model for
// [channels, size, size] inputs.
func BuildConvNet(channels, size, classes int, seed uint64) (*nn.Sequential, error) {
	src := xrand.NewSource(seed)

	conv1 := layers.NewConv2D(channels, 16, 5, 5)
	conv1.InitWeights(src)
	conv2 := layers.NewConv2D(16, 32, 5, 5)
	conv2.InitWeights(src)

	body := &nn.Sequential{Layers: []nn.Module{
		conv1,
		layers.NewReLU(),
		layers.NewAvgPool2D(2),
		conv2,
		layers.NewReLU(),
		layers.NewAvgPool2D(2),
		layers.NewFlatten(),
	}}

	flat, err := body.OutputShape([]int{channels, size, size})
	if err != nil {
		return nil, fmt.Errorf("input %dx%dx%d does not fit the convnet: %w", channels, size, size, err)
	}

	head := layers.NewLinear(flat[0], classes)
	head.InitWeights(src)
	return &nn.Sequential{Layers: append(body.Layers, head)}, nil
}
