package train

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ember-ml/ember/internal/metrics"
)

// TrainFunc is the per-worker training entry point. It is invoked
// once per worker with that worker's session; the same function body
// serves the single-device and the multi-worker variant.
type TrainFunc func(sess *Session) error

// Result describes a completed run.
type Result struct {
	// RunDir is the timestamped directory holding metrics.csv and
	// checkpoint.ember.
	RunDir string
}

// Run executes fn across the configured worker group.
//
// Workers are spawned as goroutines with ranks 0..NumWorkers-1 and a
// shared cancelable context. The first worker error cancels the rest
// and is returned; nothing is retried (a failed run is a failed run).
// Rank 0 owns metrics.csv and checkpoint.ember in the run directory.
func Run(ctx context.Context, fn TrainFunc, scaling ScalingConfig, run RunConfig, logger *zap.Logger) (*Result, error) {
	if err := scaling.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runDir, err := run.prepareRunDir(time.Now())
	if err != nil {
		return nil, err
	}
	epochLog, err := metrics.NewEpochLog(filepath.Join(runDir, MetricsFileName))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	world := scaling.NumWorkers
	var exchange *gradExchange
	if world > 1 {
		exchange = newGradExchange(ctx, world)
	}

	logger.Info("starting run",
		zap.String("run_dir", runDir),
		zap.Int("num_workers", world),
	)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for rank := 0; rank < world; rank++ {
		sess := &Session{
			rank:   rank,
			world:  world,
			runDir: runDir,
			log:    logger.With(zap.Int("rank", rank), zap.Int("world_size", world)),
			ctx:    ctx,
		}
		if rank == 0 {
			sess.epochLog = epochLog
		}
		if world > 1 {
			sess.exchange = exchange
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(sess); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}()
	}
	wg.Wait()

	if closeErr := epochLog.Close(); closeErr != nil && firstErr == nil {
		firstErr = closeErr
	}
	if firstErr != nil {
		logger.Error("run failed", zap.Error(firstErr))
		return nil, firstErr
	}

	logger.Info("run complete", zap.String("run_dir", runDir))
	return &Result{RunDir: runDir}, nil
}
