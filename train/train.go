// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"context"

	"go.uber.org/zap"

	"github.com/ember-ml/ember/internal/dataset"
	"github.com/ember-ml/ember/internal/train"
)

// ScalingConfig declares how many workers participate in a run and
// whether accelerator hardware should be used.
type ScalingConfig = train.ScalingConfig

// RunConfig declares where a run stores its artifacts.
type RunConfig = train.RunConfig

// LoopConfig configures the standard classification training loop.
type LoopConfig = train.LoopConfig

// RunSpec is the YAML run description accepted by the CLI.
type RunSpec = train.RunSpec

// Session is the per-worker handle a train function runs against.
type Session = train.Session

// TrainFunc is the per-worker training entry point.
type TrainFunc = train.TrainFunc

// Result describes a completed run.
type Result = train.Result

// ErrGPUUnavailable is returned when a scaling configuration requests
// accelerator hardware.
var ErrGPUUnavailable = train.ErrGPUUnavailable

// Artifact file names inside a run directory.
const (
	MetricsFileName    = train.MetricsFileName
	CheckpointFileName = train.CheckpointFileName
)

// Run executes fn across the configured worker group and returns the
// run result. The first worker error cancels the group and is
// returned.
func Run(ctx context.Context, fn TrainFunc, scaling ScalingConfig, run RunConfig, logger *zap.Logger) (*Result, error) {
	return train.Run(ctx, fn, scaling, run, logger)
}

// Classification builds the standard train function over a labeled
// image dataset.
func Classification(ds *dataset.Dataset, cfg LoopConfig) TrainFunc {
	return train.Classification(ds, cfg)
}

// LoadRunSpec reads a YAML run spec with defaults applied.
func LoadRunSpec(path string) (RunSpec, error) {
	return train.LoadRunSpec(path)
}

// DefaultRunSpec returns the MNIST baseline configuration.
func DefaultRunSpec() RunSpec {
	return train.DefaultRunSpec()
}
