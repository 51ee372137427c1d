package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	tt, err := tensor.FromSlice(data, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, tt.Shape())
	assert.Equal(t, float32(6), tt.At(1, 2))

	_, err = tensor.FromSlice(data, tensor.Shape{2, 2})
	assert.Error(t, err)

	_, err = tensor.FromSlice(data, tensor.Shape{-2, 3})
	assert.Error(t, err)
}

func TestMatMul(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
	require.NoError(t, err)

	c := tensor.MatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.Data())
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	a := tensor.New(tensor.Shape{2, 3})
	b := tensor.New(tensor.Shape{2, 3})
	assert.Panics(t, func() { tensor.MatMul(a, b) })
}

func TestTranspose(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	at := tensor.Transpose(a)
	require.Equal(t, tensor.Shape{3, 2}, at.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, at.Data())
}

func TestAddBroadcastRow(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	bias, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{3})
	require.NoError(t, err)

	out := tensor.Add(a, bias)
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.Data())
	// Operands are untouched.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.Data())
}

func TestAxpy(t *testing.T) {
	dst, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2})
	require.NoError(t, err)
	src, err := tensor.FromSlice([]float32{2, 4}, tensor.Shape{2})
	require.NoError(t, err)

	tensor.Axpy(-0.5, src, dst)
	assert.Equal(t, []float32{0, -1}, dst.Data())
}

func TestColSum(t *testing.T) {
	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	sum := tensor.ColSum(a)
	require.Equal(t, tensor.Shape{3}, sum.Shape())
	assert.Equal(t, []float32{5, 7, 9}, sum.Data())
}

func TestArgMaxRows(t *testing.T) {
	a, err := tensor.FromSlice([]float32{0.1, 0.9, 0.0, 0.7, 0.2, 0.1}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, tensor.ArgMaxRows(a))
}

func TestRandnDeterministic(t *testing.T) {
	a := tensor.Randn(tensor.Shape{4, 4}, 0.1, rand.New(rand.NewSource(7)))
	b := tensor.Randn(tensor.Shape{4, 4}, 0.1, rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Data(), b.Data())
}

func TestReshapeSharesStorage(t *testing.T) {
	a := tensor.Full(tensor.Shape{2, 3}, 1)
	b := a.Reshape(6)
	b.Data()[0] = 42
	assert.Equal(t, float32(42), a.Data()[0])
	assert.Panics(t, func() { a.Reshape(5) })
}
