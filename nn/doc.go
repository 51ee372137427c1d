// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks: layers, the
// classifier builder, loss functions, and checkpoints.
//
// # Basic Usage
//
//	model, err := nn.NewClassifier(nn.ClassifierConfig{
//	    NumClasses: 10,
//	    Seed:       42,
//	})
//
//	logits := model.Forward(batch)
//	loss := nn.NewCrossEntropyLoss()
//	l := loss.Forward(logits, labels)
//	model.Backward(loss.Backward())
//
// Layers carry their own backward pass: Forward caches what the
// gradient computation needs, Backward accumulates parameter
// gradients in place.
package nn
