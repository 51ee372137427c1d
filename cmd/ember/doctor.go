// Copyright 2026 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
)

// newDoctorCommand checks that the environment can run a training
// job: data files present, storage path writable.
func newDoctorCommand() *cobra.Command {
	var dataDir, storagePath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment is ready for training",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			failed := false

			fmt.Fprintf(out, "go runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "cpus: %d\n", runtime.NumCPU())

			for _, name := range []string{
				"train-images-idx3-ubyte",
				"train-labels-idx1-ubyte",
				"t10k-images-idx3-ubyte",
				"t10k-labels-idx1-ubyte",
			} {
				path := filepath.Join(dataDir, name)
				if _, err := os.Stat(path); err != nil {
					fmt.Fprintf(out, "missing: %s (run with --synthetic or download MNIST)\n", path)
					failed = true
				} else {
					fmt.Fprintf(out, "found: %s\n", path)
				}
			}

			if err := checkWritable(storagePath); err != nil {
				fmt.Fprintf(out, "storage path %s not writable: %v\n", storagePath, err)
				failed = true
			} else {
				fmt.Fprintf(out, "storage path %s is writable\n", storagePath)
			}

			if failed {
				return fmt.Errorf("environment checks failed")
			}
			fmt.Fprintln(out, "environment passes all checks")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "directory with MNIST IDX files")
	cmd.Flags().StringVar(&storagePath, "storage", "runs", "parent directory for run directories")
	return cmd
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
