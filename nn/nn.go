// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module = nn.Module

// StateModule is a Module whose parameters can be exported and
// restored by name.
type StateModule = nn.StateModule

// Parameter is a trainable tensor with an associated gradient buffer.
type Parameter = nn.Parameter

// NewParameter creates a trainable parameter around an initialized tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a linear layer with Xavier initialization.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	layer := nn.NewLinear(784, 128, rng)
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// ReLU is the rectified linear unit activation.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sequential chains modules, feeding each module's output to the next.
type Sequential = nn.Sequential

// NewSequential creates a container over the given layers.
func NewSequential(layers ...Module) *Sequential {
	return nn.NewSequential(layers...)
}

// Model builder

// ClassifierConfig declares the shape of the standard image classifier.
type ClassifierConfig = nn.ClassifierConfig

// NewClassifier builds the standard MLP classifier. The default
// configuration is the MNIST baseline: 784 -> 128 -> 10.
func NewClassifier(cfg ClassifierConfig) (*Sequential, error) {
	return nn.NewClassifier(cfg)
}

// Loss

// CrossEntropyLoss computes softmax cross-entropy over class logits.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// Accuracy returns the fraction of rows whose argmax matches the label.
func Accuracy(logits *tensor.Tensor, labels []int) float64 {
	return nn.Accuracy(logits, labels)
}

// Checkpoints

// Checkpoint is a complete training snapshot: model parameters,
// optimizer state, and epoch-level metrics.
type Checkpoint = nn.Checkpoint

// OptimizerState is an optimizer that can save and load its buffers.
type OptimizerState = nn.OptimizerState

// LoadCheckpoint restores a checkpoint into a pre-constructed model
// (and optimizer, if non-nil).
func LoadCheckpoint(path string, model StateModule, optimizer OptimizerState) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model, optimizer)
}
