package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// fakeOptimizer records state dict traffic for checkpoint tests.
type fakeOptimizer struct {
	state  map[string]*tensor.Tensor
	loaded map[string]*tensor.Tensor
}

func (f *fakeOptimizer) StateDict() map[string]*tensor.Tensor {
	return f.state
}

func (f *fakeOptimizer) LoadStateDict(state map[string]*tensor.Tensor) error {
	f.loaded = state
	return nil
}

func TestCheckpointRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")

	model, err := nn.NewClassifier(nn.ClassifierConfig{Seed: 11, Hidden: []int{16}})
	require.NoError(t, err)

	velocity := tensor.Full(tensor.Shape{2, 2}, 0.5)
	opt := &fakeOptimizer{state: map[string]*tensor.Tensor{"velocity.0": velocity}}

	ckpt := &nn.Checkpoint{
		Model:     model,
		Optimizer: opt,
		Epoch:     4,
		Step:      2048,
		Loss:      0.37,
		Metrics:   map[string]float64{"accuracy": 0.88, "loss": 0.37, "epoch": 4},
	}
	require.NoError(t, ckpt.Save(path))

	restoredModel, err := nn.NewClassifier(nn.ClassifierConfig{Seed: 99, Hidden: []int{16}})
	require.NoError(t, err)
	restoredOpt := &fakeOptimizer{state: map[string]*tensor.Tensor{}}

	restored, err := nn.LoadCheckpoint(path, restoredModel, restoredOpt)
	require.NoError(t, err)
	assert.Equal(t, 4, restored.Epoch)
	assert.Equal(t, int64(2048), restored.Step)
	assert.InDelta(t, 0.37, restored.Loss, 1e-12)
	assert.Equal(t, 0.88, restored.Metrics["accuracy"])

	// Model weights match the saved model exactly.
	ps, pr := model.Parameters(), restoredModel.Parameters()
	require.Equal(t, len(ps), len(pr))
	for i := range ps {
		assert.Equal(t, ps[i].Tensor().Data(), pr[i].Tensor().Data())
	}

	// Optimizer buffers came back under their unprefixed names.
	require.Contains(t, restoredOpt.loaded, "velocity.0")
	assert.Equal(t, velocity.Data(), restoredOpt.loaded["velocity.0"].Data())
}

// A reloaded checkpoint must produce a model whose output width
// matches the declared class count.
func TestCheckpointReloadedOutputShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")

	model, err := nn.NewClassifier(nn.ClassifierConfig{NumClasses: 10, Seed: 11})
	require.NoError(t, err)
	require.NoError(t, (&nn.Checkpoint{Model: model, Epoch: 0}).Save(path))

	restored, err := nn.NewClassifier(nn.ClassifierConfig{NumClasses: 10, Seed: 0})
	require.NoError(t, err)
	_, err = nn.LoadCheckpoint(path, restored, nil)
	require.NoError(t, err)

	out := restored.Forward(tensor.New(tensor.Shape{1, 784}))
	assert.Equal(t, tensor.Shape{1, 10}, out.Shape())
}

func TestLoadCheckpointArchitectureMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")

	model, err := nn.NewClassifier(nn.ClassifierConfig{Hidden: []int{16}, Seed: 1})
	require.NoError(t, err)
	require.NoError(t, (&nn.Checkpoint{Model: model}).Save(path))

	other, err := nn.NewClassifier(nn.ClassifierConfig{Hidden: []int{32}, Seed: 1})
	require.NoError(t, err)
	_, err = nn.LoadCheckpoint(path, other, nil)
	assert.Error(t, err)
}
