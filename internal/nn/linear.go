package nn

import (
	"fmt"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation y = x @ W.T + b where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized with Xavier/Glorot uniform values, biases
// with zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	input *tensor.Tensor // cached by Forward for the backward pass
}

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	bias := tensor.New(tensor.Shape{outFeatures})
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]. The input is cached for
// Backward.
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("nn: Linear.Forward expects 2D input [batch, features], got %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("nn: Linear.Forward expects %d input features, got %d", l.inFeatures, shape[1]))
	}

	l.input = input

	wT := tensor.Transpose(l.weight.Tensor()) // [in, out]
	out := tensor.MatMul(input, wT)           // [batch, out]
	return tensor.Add(out, l.bias.Tensor())
}

// Backward accumulates dW = dY.T @ x and db = colsum(dY), and returns
// dX = dY @ W.
func (l *Linear) Backward(outputGrad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("nn: Linear.Backward called before Forward")
	}

	// dW: [out, batch] @ [batch, in] = [out, in]
	dW := tensor.MatMul(tensor.Transpose(outputGrad), l.input)
	l.weight.AccumGrad(dW)

	// db: [out]
	l.bias.AccumGrad(tensor.ColSum(outputGrad))

	// dX: [batch, out] @ [out, in] = [batch, in]
	dX := tensor.MatMul(outputGrad, l.weight.Tensor())
	l.input = nil
	return dX
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// InFeatures returns the input width of the layer.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output width of the layer.
func (l *Linear) OutFeatures() int { return l.outFeatures }
