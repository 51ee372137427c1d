// Package train implements the Ember training harness: run
// orchestration, the per-worker session API, gradient averaging
// across the worker group, and the standard classification loop.
//
// The user-visible flow is the usual five steps: build a model, build
// a loader, run the epoch/batch loop, report metrics and a checkpoint
// at each epoch end, and hand the whole thing to Run with a scaling
// and a run configuration. Run owns everything distributed: it spawns
// one goroutine per worker, averages gradients each step, and
// designates rank 0 as the only writer of shared artifacts.
package train

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// ErrGPUUnavailable is returned when a scaling configuration requests
// accelerator hardware; Ember only ships a CPU backend.
var ErrGPUUnavailable = errors.New("train: GPU requested but no accelerator backend is available")

// ScalingConfig declares how many workers participate in a run and
// whether accelerator hardware should be used.
type ScalingConfig struct {
	// NumWorkers is the size of the worker group. Values <= 0 mean a
	// single worker.
	NumWorkers int

	// UseGPU requests accelerator hardware. Refused: there is no GPU
	// backend, and silently training on CPU would misreport the run.
	UseGPU bool
}

// Validate normalizes and checks the scaling configuration.
func (c *ScalingConfig) Validate() error {
	if c.NumWorkers <= 0 {
		c.NumWorkers = 1
	}
	if c.UseGPU {
		return ErrGPUUnavailable
	}
	return nil
}

// RunConfig declares where a run stores its artifacts.
type RunConfig struct {
	// StoragePath is the parent directory for run directories.
	// Defaults to "./runs".
	StoragePath string

	// Name prefixes the timestamped run directory. Defaults to "run".
	Name string
}

// runDirTimestamp keeps run directories sortable by start time.
const runDirTimestamp = "20060102-150405"

// prepareRunDir creates and returns the timestamped run directory
// <StoragePath>/<Name>-<timestamp>. A numeric suffix is added if two
// runs start within the same second.
func (c RunConfig) prepareRunDir(now time.Time) (string, error) {
	storage := c.StoragePath
	if storage == "" {
		storage = "runs"
	}
	name := c.Name
	if name == "" {
		name = "run"
	}

	base := filepath.Join(storage, fmt.Sprintf("%s-%s", name, now.Format(runDirTimestamp)))
	dir := base
	for i := 1; ; i++ {
		err := os.MkdirAll(filepath.Dir(dir), 0o755)
		if err != nil {
			return "", errors.Wrap(err, "train: create storage path")
		}
		err = os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "train: create run directory")
		}
		dir = fmt.Sprintf("%s-%d", base, i)
	}
}

// Artifact file names inside a run directory.
const (
	MetricsFileName    = "metrics.csv"
	CheckpointFileName = "checkpoint.ember"
)
