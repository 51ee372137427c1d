// Package tensor implements the dense float32 tensors used throughout
// Ember.
//
// Tensors are row-major, CPU-resident, and mutable. The training loop
// owns every tensor it creates; nothing in this package is safe for
// concurrent mutation.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
//
// Panics if the shape has a non-positive dimension; shapes come from
// model configuration, which is validated before tensors are built.
func New(shape Shape) *Tensor {
	if !shape.Valid() {
		panic(fmt.Sprintf("tensor: invalid shape %v", shape))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// FromSlice creates a tensor that takes ownership of data.
//
// Returns an error if the data length does not match the shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("tensor: invalid shape %v", shape)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with elements drawn from N(0, stddev²) using
// the provided source. Deterministic for a fixed seed.
func Randn(shape Shape, stddev float64, rng *rand.Rand) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64() * stddev)
	}
	return t
}

// Shape returns the tensor's shape. Callers must not mutate it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying storage. Mutations are visible to every
// holder of the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// At returns the element at row i, column j of a 2D tensor.
func (t *Tensor) At(i, j int) float32 {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: At requires a 2D tensor, got shape %v", t.shape))
	}
	return t.data[i*t.shape[1]+j]
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := New(t.shape)
	copy(out.data, t.data)
	return out
}

// CopyFrom overwrites the tensor's data with src's data.
//
// Returns an error on shape mismatch.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("tensor: cannot copy shape %v into shape %v", src.shape, t.shape)
	}
	copy(t.data, src.data)
	return nil
}

// Reshape returns a view of the tensor with a new shape.
//
// The element count must be preserved; the returned tensor shares
// storage with the receiver.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v", t.shape, shape))
	}
	return &Tensor{shape: shape.Clone(), data: t.data}
}

// Zero sets every element to zero.
func (t *Tensor) Zero() {
	for i := range t.data {
		t.data[i] = 0
	}
}
