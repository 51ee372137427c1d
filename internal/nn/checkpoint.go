package nn

import (
	"fmt"
	"strings"

	"github.com/ember-ml/ember/internal/serialization"
	"github.com/ember-ml/ember/internal/tensor"
)

// optimizerStatePrefix namespaces optimizer tensors inside the
// combined state dict so model and optimizer state share one file.
const optimizerStatePrefix = "optimizer."

// OptimizerState is an optimizer that can save and load its internal
// buffers (momentum velocities, Adam moments). Declared here rather
// than in optim to avoid an import cycle through checkpoints.
type OptimizerState interface {
	// StateDict returns the optimizer buffers for serialization.
	StateDict() map[string]*tensor.Tensor

	// LoadStateDict restores optimizer buffers from a saved state.
	LoadStateDict(state map[string]*tensor.Tensor) error
}

// Checkpoint is a complete training snapshot: model parameters,
// optimizer state, and epoch-level metrics. Each epoch's checkpoint
// supersedes the previous one; there is no merging.
type Checkpoint struct {
	Model     StateModule
	Optimizer OptimizerState // optional
	Epoch     int
	Step      int64
	Loss      float64
	Metrics   map[string]float64
}

// Save writes the checkpoint to a .ember file.
//
// The write is atomic: a reader never observes a partial checkpoint.
func (c *Checkpoint) Save(path string) error {
	combined := make(map[string]*tensor.Tensor)
	for name, t := range c.Model.StateDict() {
		combined[name] = t
	}
	if c.Optimizer != nil {
		for name, t := range c.Optimizer.StateDict() {
			combined[optimizerStatePrefix+name] = t
		}
	}

	meta := &serialization.CheckpointMeta{
		Epoch:   c.Epoch,
		Step:    c.Step,
		Loss:    c.Loss,
		Metrics: c.Metrics,
	}
	if err := serialization.WriteFile(path, combined, meta, nil); err != nil {
		return fmt.Errorf("nn: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint restores a checkpoint into a pre-constructed model
// (and optimizer, if non-nil). The model must have the same
// architecture as when the checkpoint was saved.
//
// Training resumes from the returned Epoch + 1.
func LoadCheckpoint(path string, model StateModule, optimizer OptimizerState) (*Checkpoint, error) {
	header, combined, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nn: load checkpoint: %w", err)
	}
	if header.Checkpoint == nil {
		return nil, fmt.Errorf("nn: %s is not a checkpoint file", path)
	}

	modelState := make(map[string]*tensor.Tensor)
	optimizerState := make(map[string]*tensor.Tensor)
	for name, t := range combined {
		if strings.HasPrefix(name, optimizerStatePrefix) {
			optimizerState[strings.TrimPrefix(name, optimizerStatePrefix)] = t
		} else {
			modelState[name] = t
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("nn: load model state: %w", err)
	}
	if optimizer != nil {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("nn: load optimizer state: %w", err)
		}
	}

	return &Checkpoint{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     header.Checkpoint.Epoch,
		Step:      header.Checkpoint.Step,
		Loss:      header.Checkpoint.Loss,
		Metrics:   header.Checkpoint.Metrics,
	}, nil
}
