package tensor

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
)

// matMulParallel governs row splitting in MatMul. Rows of the output
// are independent, so each goroutine owns a disjoint slice of out.
var matMulParallel = parallel.DefaultConfig()

// MatMul computes the matrix product a @ b.
//
// a must have shape [m, k] and b shape [k, n]; the result has shape
// [m, n]. Panics on shape mismatch.
func MatMul(a, b *Tensor) *Tensor {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("tensor: MatMul requires 2D tensors, got %v and %v", a.shape, b.shape))
	}
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("tensor: MatMul inner dimensions differ: %v vs %v", a.shape, b.shape))
	}

	out := New(Shape{m, n})
	parallel.For(m, matMulParallel, func(i int) {
		aRow := a.data[i*k : (i+1)*k]
		outRow := out.data[i*n : (i+1)*n]
		// ikj loop order keeps the inner loop sequential over both b and out.
		for kk := 0; kk < k; kk++ {
			av := aRow[kk]
			if av == 0 {
				continue
			}
			bRow := b.data[kk*n : (kk+1)*n]
			for j := 0; j < n; j++ {
				outRow[j] += av * bRow[j]
			}
		}
	})
	return out
}

// Transpose returns a new tensor with rows and columns swapped.
func Transpose(t *Tensor) *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Transpose requires a 2D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out
}

// Add computes the elementwise sum a + b.
//
// b may either match a's shape exactly or be a row vector of shape
// [1, n] (or [n]) broadcast across a's rows.
func Add(a, b *Tensor) *Tensor {
	if a.shape.Equal(b.shape) {
		out := a.Clone()
		for i, v := range b.data {
			out.data[i] += v
		}
		return out
	}
	if len(a.shape) == 2 {
		n := a.shape[1]
		if (len(b.shape) == 1 && b.shape[0] == n) ||
			(len(b.shape) == 2 && b.shape[0] == 1 && b.shape[1] == n) {
			out := a.Clone()
			for i := 0; i < a.shape[0]; i++ {
				row := out.data[i*n : (i+1)*n]
				for j := 0; j < n; j++ {
					row[j] += b.data[j]
				}
			}
			return out
		}
	}
	panic(fmt.Sprintf("tensor: Add shapes incompatible: %v and %v", a.shape, b.shape))
}

// Sub computes the elementwise difference a - b. Shapes must match.
func Sub(a, b *Tensor) *Tensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: Sub shapes differ: %v and %v", a.shape, b.shape))
	}
	out := a.Clone()
	for i, v := range b.data {
		out.data[i] -= v
	}
	return out
}

// Scale multiplies every element by s, returning a new tensor.
func Scale(t *Tensor, s float32) *Tensor {
	out := t.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Axpy performs dst += alpha * src in place.
//
// This is the update primitive the optimizers are built on.
func Axpy(alpha float32, src, dst *Tensor) {
	if !src.shape.Equal(dst.shape) {
		panic(fmt.Sprintf("tensor: Axpy shapes differ: %v and %v", src.shape, dst.shape))
	}
	for i, v := range src.data {
		dst.data[i] += alpha * v
	}
}

// ColSum sums a [m, n] tensor over rows, returning a [n] tensor.
func ColSum(t *Tensor) *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: ColSum requires a 2D tensor, got %v", t.shape))
	}
	m, n := t.shape[0], t.shape[1]
	out := New(Shape{n})
	for i := 0; i < m; i++ {
		row := t.data[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			out.data[j] += row[j]
		}
	}
	return out
}

// ArgMaxRows returns, for each row of a [m, n] tensor, the index of
// the row's maximum element.
func ArgMaxRows(t *Tensor) []int {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: ArgMaxRows requires a 2D tensor, got %v", t.shape))
	}
	m, n := t.shape[0], t.shape[1]
	out := make([]int, m)
	for i := 0; i < m; i++ {
		row := t.data[i*n : (i+1)*n]
		best := 0
		for j := 1; j < n; j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}
