package serialization_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/serialization"
	"github.com/ember-ml/ember/internal/tensor"
)

func sampleStateDict(t *testing.T) map[string]*tensor.Tensor {
	t.Helper()
	w, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{-1, 0.5}, tensor.Shape{2})
	require.NoError(t, err)
	return map[string]*tensor.Tensor{"0.weight": w, "0.bias": b}
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")
	state := sampleStateDict(t)
	ckpt := &serialization.CheckpointMeta{
		Epoch:   3,
		Step:    1200,
		Loss:    0.42,
		Metrics: map[string]float64{"accuracy": 0.91},
	}

	require.NoError(t, serialization.WriteFile(path, state, ckpt, map[string]string{"run": "test"}))

	header, loaded, err := serialization.ReadFile(path)
	require.NoError(t, err)
	require.NotNil(t, header.Checkpoint)
	assert.Equal(t, 3, header.Checkpoint.Epoch)
	assert.Equal(t, int64(1200), header.Checkpoint.Step)
	assert.InDelta(t, 0.42, header.Checkpoint.Loss, 1e-12)
	assert.Equal(t, 0.91, header.Checkpoint.Metrics["accuracy"])
	assert.Equal(t, "test", header.Metadata["run"])

	require.Len(t, loaded, 2)
	assert.Equal(t, state["0.weight"].Data(), loaded["0.weight"].Data())
	assert.Equal(t, tensor.Shape{2, 3}, loaded["0.weight"].Shape())
	assert.Equal(t, state["0.bias"].Data(), loaded["0.bias"].Data())
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.ember")
	require.NoError(t, serialization.WriteFile(path, sampleStateDict(t), nil, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkpoint.ember", entries[0].Name())
}

func TestWriteSupersedesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")
	require.NoError(t, serialization.WriteFile(path, sampleStateDict(t), &serialization.CheckpointMeta{Epoch: 1}, nil))
	require.NoError(t, serialization.WriteFile(path, sampleStateDict(t), &serialization.CheckpointMeta{Epoch: 2}, nil))

	header, _, err := serialization.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, header.Checkpoint.Epoch)
}

func TestReadRejectsCorruptedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.ember")
	require.NoError(t, serialization.WriteFile(path, sampleStateDict(t), nil, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, _, err = serialization.ReadFile(path)
	assert.ErrorIs(t, err, serialization.ErrChecksumMismatch)
}

func TestReadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-checkpoint")
	require.NoError(t, os.WriteFile(path, []byte("BORNxxxxxxxxxxxxxxxx"), 0o644))

	_, _, err := serialization.ReadFile(path)
	assert.ErrorIs(t, err, serialization.ErrInvalidMagic)
}
