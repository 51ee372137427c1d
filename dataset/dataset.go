// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides labeled image datasets and batched,
// optionally sharded iteration over them.
package dataset

import "github.com/ember-ml/ember/internal/dataset"

// Dataset is an in-memory labeled image dataset.
type Dataset = dataset.Dataset

// Batch is one training step's worth of images and labels.
type Batch = dataset.Batch

// Loader produces batched, optionally shuffled and sharded iteration.
type Loader = dataset.Loader

// LoaderConfig configures a Loader.
type LoaderConfig = dataset.LoaderConfig

// DistributedSampler assigns dataset indices to one worker of a group.
type DistributedSampler = dataset.DistributedSampler

// NewLoader creates a loader over ds.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	return dataset.NewLoader(ds, cfg)
}

// LoadMNIST loads the official MNIST IDX files from dataDir.
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	return dataset.LoadMNIST(dataDir, train, maxSamples)
}

// Synthetic generates a deterministic learnable dataset for runs
// without MNIST files.
func Synthetic(n, width, height, classes int, seed int64) *Dataset {
	return dataset.Synthetic(n, width, height, classes, seed)
}
