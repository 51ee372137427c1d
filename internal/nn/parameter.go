package nn

import "github.com/ember-ml/ember/internal/tensor"

// Parameter is a trainable tensor with an associated gradient buffer.
//
// The gradient buffer is allocated with the parameter and accumulated
// into by Backward passes; optimizers read it during Step and callers
// clear it with ZeroGrad between iterations.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
	grad   *tensor.Tensor
}

// NewParameter creates a trainable parameter around an initialized
// tensor. The gradient buffer starts zeroed.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
		grad:   tensor.New(t.Shape()),
	}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient buffer.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// AccumGrad adds g into the gradient buffer.
func (p *Parameter) AccumGrad(g *tensor.Tensor) {
	tensor.Axpy(1, g, p.grad)
}

// ZeroGrad clears the gradient buffer.
//
// Call before each backward pass to avoid accumulating gradients from
// previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}
