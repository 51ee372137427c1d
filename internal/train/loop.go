package train

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ember-ml/ember/internal/dataset"
	"github.com/ember-ml/ember/internal/metrics"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
)

// LoopConfig configures the standard classification training loop.
type LoopConfig struct {
	Epochs    int
	BatchSize int
	LR        float64
	Optimizer string // "sgd" (default) or "adam"
	Seed      int64

	// ValFraction, if positive, holds out that fraction of the data
	// for a per-epoch evaluation pass.
	ValFraction float64

	// Model shapes the classifier. The seed is overwritten with Seed
	// so every worker builds an identical replica.
	Model nn.ClassifierConfig

	// ResumeFrom, if set, loads this checkpoint before training and
	// continues from the epoch after the one it records.
	ResumeFrom string
}

// Validate reports the first configuration error.
func (c LoopConfig) Validate() error {
	if c.Epochs < 1 {
		return errors.Errorf("train: epochs must be >= 1, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return errors.Errorf("train: batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.ValFraction < 0 || c.ValFraction >= 1 {
		return errors.Errorf("train: val fraction must be in [0, 1), got %g", c.ValFraction)
	}
	return nil
}

// Classification builds the standard train function over a labeled
// image dataset: per batch forward, cross-entropy loss, backward,
// gradient averaging across the group, optimizer step, and running
// accuracy; per epoch one Report with metrics and a checkpoint.
//
// The returned TrainFunc works unchanged for one worker or many: the
// session supplies rank and world size, the loader shards by them,
// and Report writes only on rank 0.
func Classification(ds *dataset.Dataset, cfg LoopConfig) TrainFunc {
	return func(sess *Session) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		trainData := ds
		var valData *dataset.Dataset
		if cfg.ValFraction > 0 {
			trainData, valData = ds.Split(cfg.ValFraction)
		}

		modelCfg := cfg.Model
		modelCfg.Seed = cfg.Seed
		if modelCfg.ImageSize == 0 && ds.Width == ds.Height {
			modelCfg.ImageSize = ds.Width
		}
		model, err := nn.NewClassifier(modelCfg)
		if err != nil {
			return err
		}

		optimizer, err := optim.New(cfg.Optimizer, model.Parameters(), float32(cfg.LR))
		if err != nil {
			return err
		}

		startEpoch := 0
		if cfg.ResumeFrom != "" {
			ckpt, err := nn.LoadCheckpoint(cfg.ResumeFrom, model, optimizer)
			if err != nil {
				return err
			}
			startEpoch = ckpt.Epoch + 1
			sess.Logger().Info("resumed from checkpoint",
				zap.String("path", cfg.ResumeFrom),
				zap.Int("start_epoch", startEpoch),
			)
		}

		loader, err := dataset.NewLoader(trainData, dataset.LoaderConfig{
			BatchSize: cfg.BatchSize,
			Shuffle:   true,
			Seed:      cfg.Seed,
			DropLast:  true,
			Rank:      sess.Rank(),
			WorldSize: sess.WorldSize(),
		})
		if err != nil {
			return err
		}

		loss := nn.NewCrossEntropyLoss()
		params := model.Parameters()
		var step int64
		var window metrics.Window

		for epoch := startEpoch; epoch < startEpoch+cfg.Epochs; epoch++ {
			var lossSum float64
			var correctWeight float64
			var sampleCount int

			batchStart := time.Now()
			for _, batch := range loader.Batches(epoch) {
				if err := sess.Context().Err(); err != nil {
					return errors.Wrap(err, "train: canceled")
				}
				dataTime := time.Since(batchStart)
				computeStart := time.Now()

				optimizer.ZeroGrad()
				logits := model.Forward(batch.Images)
				batchLoss := loss.Forward(logits, batch.Labels)
				model.Backward(loss.Backward())

				if err := sess.AllReduceGrads(params); err != nil {
					return err
				}
				optimizer.Step()

				lossSum += batchLoss * float64(batch.Size())
				correctWeight += nn.Accuracy(logits, batch.Labels) * float64(batch.Size())
				sampleCount += batch.Size()
				step++

				window.Record(batch.Size(), dataTime, time.Since(computeStart))
				batchStart = time.Now()
			}

			rec := metrics.Record{Epoch: epoch}
			if sampleCount > 0 {
				rec.Loss = lossSum / float64(sampleCount)
				rec.Accuracy = correctWeight / float64(sampleCount)
			}

			snap := window.Snapshot()
			fields := []zap.Field{
				zap.Int("epoch", epoch),
				zap.Float64("loss", rec.Loss),
				zap.Float64("accuracy", rec.Accuracy),
				zap.Float64("images_per_sec", snap.ImagesPerSec),
			}
			if valData != nil && valData.NumSamples() > 0 {
				valLoss, valAcc, err := Evaluate(model, valData, cfg.BatchSize)
				if err != nil {
					return err
				}
				rec.Extra = map[string]float64{"val_loss": valLoss, "val_accuracy": valAcc}
				fields = append(fields,
					zap.Float64("val_loss", valLoss),
					zap.Float64("val_accuracy", valAcc),
				)
			}
			sess.Logger().Info("epoch complete", fields...)

			ckpt := &nn.Checkpoint{
				Model:     model,
				Optimizer: optimizer,
				Epoch:     epoch,
				Step:      step,
				Loss:      rec.Loss,
			}
			if err := sess.Report(rec, ckpt); err != nil {
				return err
			}
		}
		return nil
	}
}

// Evaluate runs a forward-only pass over ds and returns mean loss and
// accuracy. Every sample is evaluated, including a final partial
// batch. The model's cached training state is unaffected because no
// backward pass follows.
func Evaluate(model *nn.Sequential, ds *dataset.Dataset, batchSize int) (meanLoss, accuracy float64, err error) {
	loader, err := dataset.NewLoader(ds, dataset.LoaderConfig{BatchSize: batchSize})
	if err != nil {
		return 0, 0, err
	}

	loss := nn.NewCrossEntropyLoss()
	var lossSum, correctWeight float64
	var count int
	for _, batch := range loader.Batches(0) {
		logits := model.Forward(batch.Images)
		lossSum += loss.Forward(logits, batch.Labels) * float64(batch.Size())
		correctWeight += nn.Accuracy(logits, batch.Labels) * float64(batch.Size())
		count += batch.Size()
	}
	if count == 0 {
		return 0, 0, nil
	}
	return lossSum / float64(count), correctWeight / float64(count), nil
}
