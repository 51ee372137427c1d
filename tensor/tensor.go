// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// Shape describes the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense, row-major float32 tensor.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor that takes ownership of data.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with elements drawn from N(0, stddev²).
func Randn(shape Shape, stddev float64, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, stddev, rng)
}

// MatMul computes the matrix product a @ b.
func MatMul(a, b *Tensor) *Tensor {
	return tensor.MatMul(a, b)
}

// Transpose returns a new tensor with rows and columns swapped.
func Transpose(t *Tensor) *Tensor {
	return tensor.Transpose(t)
}

// Add computes the elementwise (or row-broadcast) sum a + b.
func Add(a, b *Tensor) *Tensor {
	return tensor.Add(a, b)
}

// Sub computes the elementwise difference a - b.
func Sub(a, b *Tensor) *Tensor {
	return tensor.Sub(a, b)
}

// Scale multiplies every element by s, returning a new tensor.
func Scale(t *Tensor, s float32) *Tensor {
	return tensor.Scale(t, s)
}

// ArgMaxRows returns the per-row argmax of a 2D tensor.
func ArgMaxRows(t *Tensor) []int {
	return tensor.ArgMaxRows(t)
}
