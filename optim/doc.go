// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training.
//
// # Overview
//
// This package contains:
//   - SGD: stochastic gradient descent with momentum
//   - Adam: adaptive moment estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Optimizers read the gradient buffers that module backward passes
// accumulate into, and update parameter tensors in place:
//
//	optimizer.ZeroGrad()
//	logits := model.Forward(batch)
//	l := loss.Forward(logits, labels)
//	model.Backward(loss.Backward())
//	optimizer.Step()
package optim
