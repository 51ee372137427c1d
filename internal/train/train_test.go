package train_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ember-ml/ember/internal/dataset"
	"github.com/ember-ml/ember/internal/metrics"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/serialization"
	"github.com/ember-ml/ember/internal/tensor"
	"github.com/ember-ml/ember/internal/train"
)

func syntheticRun(t *testing.T) (*dataset.Dataset, train.LoopConfig) {
	t.Helper()
	ds := dataset.Synthetic(64, 8, 8, 4, 123)
	cfg := train.LoopConfig{
		Epochs:    3,
		BatchSize: 8,
		LR:        0.05,
		Seed:      42,
		Model: nn.ClassifierConfig{
			NumClasses: 4,
			ImageSize:  8,
			Hidden:     []int{16},
		},
	}
	return ds, cfg
}

func runOnce(t *testing.T, ds *dataset.Dataset, cfg train.LoopConfig, workers int) *train.Result {
	t.Helper()
	result, err := train.Run(context.Background(),
		train.Classification(ds, cfg),
		train.ScalingConfig{NumWorkers: workers},
		train.RunConfig{StoragePath: t.TempDir(), Name: "test"},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return result
}

func TestSingleWorkerRunProperties(t *testing.T) {
	ds, cfg := syntheticRun(t)
	result := runOnce(t, ds, cfg, 1)

	records, err := metrics.ReadEpochLog(filepath.Join(result.RunDir, train.MetricsFileName))
	require.NoError(t, err)

	// Exactly one row per completed epoch, in epoch order.
	require.Len(t, records, cfg.Epochs)
	for i, rec := range records {
		assert.Equal(t, i, rec.Epoch)
		assert.GreaterOrEqual(t, rec.Loss, 0.0)
		assert.GreaterOrEqual(t, rec.Accuracy, 0.0)
		assert.LessOrEqual(t, rec.Accuracy, 1.0)
	}

	// The synthetic task is learnable; the final epoch beats the first.
	assert.Less(t, records[len(records)-1].Loss, records[0].Loss)
}

func TestFixedSeedIsReproducible(t *testing.T) {
	ds, cfg := syntheticRun(t)

	first := runOnce(t, ds, cfg, 1)
	second := runOnce(t, ds, cfg, 1)

	a, err := metrics.ReadEpochLog(filepath.Join(first.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	b, err := metrics.ReadEpochLog(filepath.Join(second.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCheckpointReloadsWithDeclaredClassCount(t *testing.T) {
	ds, cfg := syntheticRun(t)
	cfg.Model.NumClasses = 10
	ds = dataset.Synthetic(64, 8, 8, 10, 123)
	result := runOnce(t, ds, cfg, 1)

	model, err := nn.NewClassifier(nn.ClassifierConfig{
		NumClasses: 10, ImageSize: 8, Hidden: []int{16},
	})
	require.NoError(t, err)
	ckpt, err := nn.LoadCheckpoint(filepath.Join(result.RunDir, train.CheckpointFileName), model, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Epochs-1, ckpt.Epoch)

	out := model.Forward(dsBatch(t, ds, 3))
	assert.Equal(t, 10, out.Shape()[1])
}

func TestMultiWorkerSingleCheckpointWriter(t *testing.T) {
	ds, cfg := syntheticRun(t)
	result := runOnce(t, ds, cfg, 4)

	// The run directory holds exactly one metrics log and one
	// checkpoint, regardless of worker count.
	entries, err := os.ReadDir(result.RunDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{train.MetricsFileName, train.CheckpointFileName}, names)

	records, err := metrics.ReadEpochLog(filepath.Join(result.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	assert.Len(t, records, cfg.Epochs)
}

// A 2-worker run with batch size B must match a 1-worker run with
// batch size 2B: the strided shards make each step consume the same
// sample set, and averaging two per-shard mean gradients equals the
// mean gradient over the union.
func TestTwoWorkersMatchDoubleBatchSingleWorker(t *testing.T) {
	ds, cfg := syntheticRun(t)

	distCfg := cfg
	distCfg.BatchSize = 4
	distResult := runOnce(t, ds, distCfg, 2)

	localCfg := cfg
	localCfg.BatchSize = 8
	localResult := runOnce(t, ds, localCfg, 1)

	_, distState, err := serialization.ReadFile(filepath.Join(distResult.RunDir, train.CheckpointFileName))
	require.NoError(t, err)
	_, localState, err := serialization.ReadFile(filepath.Join(localResult.RunDir, train.CheckpointFileName))
	require.NoError(t, err)

	for name, localT := range localState {
		distT, ok := distState[name]
		require.Truef(t, ok, "missing tensor %q in distributed checkpoint", name)
		localData, distData := localT.Data(), distT.Data()
		require.Equal(t, len(localData), len(distData))
		for i := range localData {
			assert.InDeltaf(t, localData[i], distData[i], 1e-3, "tensor %q element %d", name, i)
		}
	}
}

func TestEvaluateIncludesPartialFinalBatch(t *testing.T) {
	model, err := nn.NewClassifier(nn.ClassifierConfig{
		NumClasses: 4, ImageSize: 8, Hidden: []int{16}, Seed: 42,
	})
	require.NoError(t, err)

	// 6 validation samples with batch size 8: the whole set is one
	// partial batch and must still be evaluated.
	val := dataset.Synthetic(6, 8, 8, 4, 123)
	loss, acc, err := train.Evaluate(model, val, 8)
	require.NoError(t, err)
	assert.Greater(t, loss, 0.0)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)
}

func TestValidationMetricsPersisted(t *testing.T) {
	// 60 samples at ValFraction 0.1 hold out 6, below the batch size,
	// so the evaluation pass runs on a single partial batch.
	ds := dataset.Synthetic(60, 8, 8, 4, 123)
	cfg := train.LoopConfig{
		Epochs:      2,
		BatchSize:   8,
		LR:          0.05,
		Seed:        42,
		ValFraction: 0.1,
		Model:       nn.ClassifierConfig{NumClasses: 4, ImageSize: 8, Hidden: []int{16}},
	}
	result := runOnce(t, ds, cfg, 1)

	records, err := metrics.ReadEpochLog(filepath.Join(result.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	require.Len(t, records, cfg.Epochs)
	for _, rec := range records {
		require.NotNil(t, rec.Extra)
		assert.Greater(t, rec.Extra["val_loss"], 0.0)
		assert.GreaterOrEqual(t, rec.Extra["val_accuracy"], 0.0)
		assert.LessOrEqual(t, rec.Extra["val_accuracy"], 1.0)
	}
}

func TestShardsSmallerThanBatchStillReport(t *testing.T) {
	// 8 samples across 4 workers leaves 2 per shard, below the batch
	// size, so every epoch runs zero optimizer steps. The run must
	// still complete with one metrics row per epoch.
	ds := dataset.Synthetic(8, 4, 4, 2, 123)
	cfg := train.LoopConfig{
		Epochs:    2,
		BatchSize: 8,
		LR:        0.05,
		Seed:      42,
		Model:     nn.ClassifierConfig{NumClasses: 2, ImageSize: 4, Hidden: []int{8}},
	}
	result := runOnce(t, ds, cfg, 4)

	records, err := metrics.ReadEpochLog(filepath.Join(result.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	require.Len(t, records, cfg.Epochs)
	for i, rec := range records {
		assert.Equal(t, i, rec.Epoch)
		assert.Zero(t, rec.Loss)
	}
}

func TestResumeContinuesEpochNumbering(t *testing.T) {
	ds, cfg := syntheticRun(t)
	first := runOnce(t, ds, cfg, 1)

	resumed := cfg
	resumed.Epochs = 2
	resumed.ResumeFrom = filepath.Join(first.RunDir, train.CheckpointFileName)
	second := runOnce(t, ds, resumed, 1)

	records, err := metrics.ReadEpochLog(filepath.Join(second.RunDir, train.MetricsFileName))
	require.NoError(t, err)
	require.Len(t, records, 2)
	// First run ended at epoch 2; the resumed run logs epochs 3 and 4.
	assert.Equal(t, 3, records[0].Epoch)
	assert.Equal(t, 4, records[1].Epoch)
}

func TestGPURequestRefused(t *testing.T) {
	ds, cfg := syntheticRun(t)
	_, err := train.Run(context.Background(),
		train.Classification(ds, cfg),
		train.ScalingConfig{NumWorkers: 1, UseGPU: true},
		train.RunConfig{StoragePath: t.TempDir()},
		zap.NewNop(),
	)
	assert.ErrorIs(t, err, train.ErrGPUUnavailable)
}

func TestWorkerErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	fn := func(sess *train.Session) error {
		if sess.Rank() == 1 {
			return boom
		}
		<-sess.Context().Done()
		return nil
	}

	_, err := train.Run(context.Background(), fn,
		train.ScalingConfig{NumWorkers: 3},
		train.RunConfig{StoragePath: t.TempDir()},
		zap.NewNop(),
	)
	assert.ErrorIs(t, err, boom)
}

func TestLoopConfigValidation(t *testing.T) {
	ds := dataset.Synthetic(16, 4, 4, 2, 1)
	for _, cfg := range []train.LoopConfig{
		{Epochs: 0, BatchSize: 4},
		{Epochs: 1, BatchSize: 0},
		{Epochs: 1, BatchSize: 4, ValFraction: 1.5},
	} {
		_, err := train.Run(context.Background(),
			train.Classification(ds, cfg),
			train.ScalingConfig{},
			train.RunConfig{StoragePath: t.TempDir()},
			zap.NewNop(),
		)
		assert.Error(t, err)
	}
}

func dsBatch(t *testing.T, ds *dataset.Dataset, n int) *tensor.Tensor {
	t.Helper()
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: n})
	require.NoError(t, err)
	batches := loader.Batches(0)
	require.NotEmpty(t, batches)
	return batches[0].Images
}
