package nn

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// CrossEntropyLoss computes softmax cross-entropy over class logits.
//
// Forward takes raw logits (no softmax applied by the model) with
// shape [batch_size, num_classes] and integer class labels, returning
// the mean loss over the batch. Backward returns the gradient with
// respect to the logits: (softmax(logits) - onehot(labels)) / batch.
type CrossEntropyLoss struct {
	probs  *tensor.Tensor // softmax(logits), cached by Forward
	labels []int
}

// NewCrossEntropyLoss creates a cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward returns the mean negative log-likelihood of the labels
// under softmax(logits).
func (c *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int) float64 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("nn: CrossEntropyLoss expects 2D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("nn: CrossEntropyLoss got %d labels for batch of %d", len(labels), batch))
	}

	c.probs = tensor.New(tensor.Shape{batch, classes})
	c.labels = labels

	logitsData := logits.Data()
	probsData := c.probs.Data()

	var total float64
	for i := 0; i < batch; i++ {
		row := logitsData[i*classes : (i+1)*classes]
		out := probsData[i*classes : (i+1)*classes]

		// Shift by the row max for numerical stability.
		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}
		var sum float64
		for j, v := range row {
			e := math.Exp(float64(v - max))
			out[j] = float32(e)
			sum += e
		}
		for j := range out {
			out[j] = float32(float64(out[j]) / sum)
		}

		label := labels[i]
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("nn: label %d out of range [0, %d)", label, classes))
		}
		total += -math.Log(math.Max(float64(out[label]), 1e-12))
	}

	return total / float64(batch)
}

// Backward returns the gradient of the mean loss with respect to the
// logits passed to the last Forward call.
func (c *CrossEntropyLoss) Backward() *tensor.Tensor {
	if c.probs == nil {
		panic("nn: CrossEntropyLoss.Backward called before Forward")
	}
	shape := c.probs.Shape()
	batch, classes := shape[0], shape[1]

	grad := c.probs.Clone()
	data := grad.Data()
	inv := 1 / float32(batch)
	for i := 0; i < batch; i++ {
		row := data[i*classes : (i+1)*classes]
		row[c.labels[i]]--
		for j := range row {
			row[j] *= inv
		}
	}

	c.probs = nil
	c.labels = nil
	return grad
}

// Accuracy returns the fraction of rows whose argmax matches the
// label. Always in [0, 1].
func Accuracy(logits *tensor.Tensor, labels []int) float64 {
	preds := tensor.ArgMaxRows(logits)
	if len(preds) == 0 {
		return 0
	}
	correct := 0
	for i, p := range preds {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(preds))
}
