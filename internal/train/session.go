package train

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ember-ml/ember/internal/metrics"
	"github.com/ember-ml/ember/internal/nn"
)

// Session is the per-worker handle a train function runs against. It
// carries the worker's identity (rank, world size), the run
// directory, a rank-tagged logger, and the reporting and gradient
// averaging entry points.
type Session struct {
	rank     int
	world    int
	runDir   string
	log      *zap.Logger
	epochLog *metrics.EpochLog // non-nil only on rank 0
	exchange *gradExchange     // nil when world == 1
	ctx      context.Context
}

// Rank returns this worker's integer identity within the group.
func (s *Session) Rank() int { return s.rank }

// WorldSize returns the number of workers in the group.
func (s *Session) WorldSize() int { return s.world }

// RunDir returns the run directory shared artifacts are written to.
func (s *Session) RunDir() string { return s.runDir }

// Logger returns a logger tagged with this worker's rank.
func (s *Session) Logger() *zap.Logger { return s.log }

// Context returns the run context; it is canceled when any worker
// fails.
func (s *Session) Context() context.Context { return s.ctx }

// Report records one completed epoch: one row in metrics.csv and, if
// ckpt is non-nil, one checkpoint write superseding the previous
// epoch's checkpoint.
//
// Only rank 0 writes; on every other rank Report is a no-op, so a
// train function can call it unconditionally. The checkpoint write is
// atomic.
func (s *Session) Report(rec metrics.Record, ckpt *nn.Checkpoint) error {
	if s.rank != 0 {
		return nil
	}
	if err := s.epochLog.Append(rec); err != nil {
		return err
	}
	if ckpt == nil {
		return nil
	}
	if ckpt.Metrics == nil {
		ckpt.Metrics = rec.Map()
	}
	return ckpt.Save(filepath.Join(s.runDir, CheckpointFileName))
}

// AllReduceGrads replaces every parameter's gradient with the mean
// gradient across the worker group. With identically initialized
// replicas this keeps the replicas bit-equal after each optimizer
// step without any parameter broadcast.
//
// A no-op for single-worker runs. Blocks until every worker has
// contributed; returns an error if the run is canceled while waiting.
func (s *Session) AllReduceGrads(params []*nn.Parameter) error {
	if s.exchange == nil {
		return nil
	}
	return s.exchange.allreduce(s.ctx, gradBuffers(params))
}
