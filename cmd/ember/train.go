// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ember-ml/ember/dataset"
	"github.com/ember-ml/ember/train"
)

// syntheticSize is the sample count used when no MNIST files are
// available.
const syntheticSize = 2048

func newTrainCommand() *cobra.Command {
	var configPath string
	spec := train.DefaultRunSpec()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier and write metrics and checkpoints to a run directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				loaded, err := train.LoadRunSpec(configPath)
				if err != nil {
					return err
				}
				spec = loaded
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var ds *dataset.Dataset
			if spec.Synthetic {
				ds = dataset.Synthetic(syntheticSize, 28, 28, 10, spec.Seed)
				logger.Info("using synthetic dataset", zap.Int("samples", ds.NumSamples()))
			} else {
				ds, err = dataset.LoadMNIST(spec.DataDir, true, spec.MaxSamples)
				if err != nil {
					return fmt.Errorf("load MNIST from %s (try --synthetic): %w", spec.DataDir, err)
				}
				logger.Info("loaded MNIST", zap.Int("samples", ds.NumSamples()))
			}

			result, err := train.Run(cmd.Context(),
				train.Classification(ds, spec.Loop()),
				spec.Scaling(),
				spec.Run(),
				logger,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run artifacts written to %s\n", result.RunDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML run spec (flags are ignored when set)")
	flags.StringVar(&spec.Name, "name", spec.Name, "run name, prefixes the run directory")
	flags.StringVar(&spec.StoragePath, "storage", spec.StoragePath, "parent directory for run directories")
	flags.IntVar(&spec.NumWorkers, "workers", spec.NumWorkers, "worker count")
	flags.BoolVar(&spec.UseGPU, "gpu", spec.UseGPU, "request accelerator hardware")
	flags.IntVar(&spec.Epochs, "epochs", spec.Epochs, "training epochs")
	flags.IntVar(&spec.BatchSize, "batch", spec.BatchSize, "per-worker batch size")
	flags.Float64Var(&spec.LR, "lr", spec.LR, "learning rate")
	flags.StringVar(&spec.Optimizer, "optimizer", spec.Optimizer, "optimizer: sgd or adam")
	flags.Int64Var(&spec.Seed, "seed", spec.Seed, "random seed")
	flags.Float64Var(&spec.ValFraction, "val-fraction", spec.ValFraction, "validation holdout fraction")
	flags.StringVar(&spec.ResumeFrom, "resume", spec.ResumeFrom, "checkpoint to resume from")
	flags.StringVar(&spec.DataDir, "data", spec.DataDir, "directory with MNIST IDX files")
	flags.BoolVar(&spec.Synthetic, "synthetic", spec.Synthetic, "train on generated data instead of MNIST")
	flags.IntVar(&spec.MaxSamples, "samples", spec.MaxSamples, "max samples to load (0 = all)")

	return cmd
}
