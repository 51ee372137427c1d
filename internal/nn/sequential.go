package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sequential chains modules, feeding each module's output to the next.
//
// State dict keys are qualified with the layer index: "0.weight",
// "2.bias", and so on. Layers without parameters occupy an index but
// contribute no keys, so the numbering is stable across save/load as
// long as the architecture matches.
type Sequential struct {
	layers []Module
}

// NewSequential creates a container over the given layers.
func NewSequential(layers ...Module) *Sequential {
	return &Sequential{layers: layers}
}

// Forward runs the input through every layer in order.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

// Backward propagates the gradient through the layers in reverse.
func (s *Sequential) Backward(outputGrad *tensor.Tensor) *tensor.Tensor {
	grad := outputGrad
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns the parameters of every layer, in layer order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// StateDict exports every parameter keyed by "<layerIndex>.<name>".
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	state := make(map[string]*tensor.Tensor)
	for i, layer := range s.layers {
		for _, p := range layer.Parameters() {
			state[fmt.Sprintf("%d.%s", i, p.Name())] = p.Tensor()
		}
	}
	return state
}

// LoadStateDict copies tensors from state into the matching
// parameters. Every parameter must be present with a matching shape.
func (s *Sequential) LoadStateDict(state map[string]*tensor.Tensor) error {
	for i, layer := range s.layers {
		for _, p := range layer.Parameters() {
			key := fmt.Sprintf("%d.%s", i, p.Name())
			src, ok := state[key]
			if !ok {
				return fmt.Errorf("nn: state dict missing parameter %q", key)
			}
			if err := p.Tensor().CopyFrom(src); err != nil {
				return fmt.Errorf("nn: parameter %q: %w", key, err)
			}
		}
	}
	return nil
}

// Layers returns the contained modules.
func (s *Sequential) Layers() []Module {
	return s.layers
}
