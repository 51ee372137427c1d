package nn

import "github.com/ember-ml/ember/internal/tensor"

// ReLU applies the rectified linear unit max(0, x) elementwise.
type ReLU struct {
	mask []bool // true where the input was positive
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward computes max(0, x) and caches the activation mask.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input.Clone()
	data := out.Data()
	r.mask = make([]bool, len(data))
	for i, v := range data {
		if v > 0 {
			r.mask[i] = true
		} else {
			data[i] = 0
		}
	}
	return out
}

// Backward zeroes the gradient wherever the input was non-positive.
func (r *ReLU) Backward(outputGrad *tensor.Tensor) *tensor.Tensor {
	if r.mask == nil {
		panic("nn: ReLU.Backward called before Forward")
	}
	out := outputGrad.Clone()
	data := out.Data()
	for i := range data {
		if !r.mask[i] {
			data[i] = 0
		}
	}
	r.mask = nil
	return out
}

// Parameters returns an empty slice; ReLU has no trainable state.
func (r *ReLU) Parameters() []*Parameter {
	return nil
}
