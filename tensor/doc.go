// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensors Ember models and
// optimizers operate on.
//
// # Basic Usage
//
//	t := tensor.New(tensor.Shape{32, 784})
//	w, err := tensor.FromSlice(data, tensor.Shape{10, 784})
//	logits := tensor.Add(tensor.MatMul(x, tensor.Transpose(w)), bias)
//
// Tensors are CPU-resident and mutable; the training loop owns every
// tensor it creates.
package tensor
