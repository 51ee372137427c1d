// Package optim implements the optimization algorithms used by the
// training loop.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Optimizers read gradients from the Parameter gradient buffers that
// the module backward passes accumulate into, and update parameter
// tensors in place.
package optim

import (
	"fmt"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to every parameter, reading
	// from the parameter gradient buffers.
	Step()

	// ZeroGrad clears all parameter gradients. Call before each
	// backward pass to prevent accumulation across iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// StateDict returns the optimizer buffers for checkpointing.
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict restores optimizer buffers from a checkpoint.
	LoadStateDict(state map[string]*tensor.Tensor) error
}

// New builds an optimizer by name ("sgd" or "adam") with the given
// learning rate, which is how run specs select an optimizer.
func New(name string, params []*nn.Parameter, lr float32) (Optimizer, error) {
	switch name {
	case "", "sgd":
		return NewSGD(params, SGDConfig{LR: lr, Momentum: 0.9}), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: lr}), nil
	default:
		return nil, fmt.Errorf("optim: unknown optimizer %q", name)
	}
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
