package nn

import (
	"math"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// Xavier creates a tensor initialized with Xavier/Glorot uniform
// values in [-limit, limit] where limit = sqrt(6 / (fanIn + fanOut)).
//
// Deterministic for a fixed rng seed, which is what lets distributed
// workers build bit-identical model replicas.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * limit)
	}
	return t
}
