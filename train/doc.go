// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the Ember training harness: run
// orchestration over a worker group, the per-worker session API, and
// the standard classification training loop.
//
// # Basic Usage
//
//	ds, err := dataset.LoadMNIST("data", true, 0)
//	result, err := train.Run(ctx,
//	    train.Classification(ds, train.LoopConfig{
//	        Epochs:    5,
//	        BatchSize: 64,
//	        LR:        0.01,
//	        Seed:      42,
//	    }),
//	    train.ScalingConfig{NumWorkers: 4},
//	    train.RunConfig{StoragePath: "runs", Name: "mnist"},
//	    logger,
//	)
//
// The same train function serves one worker or many: the harness
// shards data by rank, averages gradients across the group each step,
// and designates rank 0 as the only writer of metrics.csv and
// checkpoint.ember in the run directory.
package train
