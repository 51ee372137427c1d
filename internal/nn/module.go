// Package nn implements the neural network building blocks used by the
// Ember training harness.
//
// This package provides:
//   - Module interface: base interface for all layers
//   - Parameter: trainable tensors with gradient buffers
//   - Linear: fully connected layer
//   - ReLU activation
//   - CrossEntropyLoss: softmax cross-entropy with gradient
//   - Sequential: container for stacking layers
//   - NewClassifier: the standard image-classifier builder
//
// Layers carry their own backward pass: Forward caches whatever the
// gradient computation needs, Backward consumes the cache and
// accumulates parameter gradients in place. One Forward must be
// followed by at most one Backward.
package nn

import "github.com/ember-ml/ember/internal/tensor"

// Module is the base interface for all neural network components.
type Module interface {
	// Forward computes the output of the module for a batch input and
	// caches intermediate state needed by Backward.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward takes the gradient of the loss with respect to the
	// module output, accumulates parameter gradients, and returns the
	// gradient with respect to the module input.
	Backward(outputGrad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// state return an empty slice.
	Parameters() []*Parameter
}

// StateModule is a Module whose parameters can be exported and
// restored by name. Checkpoints operate on this interface.
type StateModule interface {
	Module

	// StateDict returns the module parameters keyed by qualified name
	// (e.g. "0.weight" for the first layer of a Sequential).
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict overwrites the module parameters from a state
	// dict produced by StateDict on an identically shaped module.
	LoadStateDict(state map[string]*tensor.Tensor) error
}
