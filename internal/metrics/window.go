package metrics

import "time"

// Window accumulates per-step timing across a stretch of training
// steps and produces throughput snapshots for progress logging.
type Window struct {
	samples int
	data    time.Duration
	compute time.Duration
	steps   int
}

// Record adds one step's measurements to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
}

// Snapshot returns aggregated throughput numbers and resets the
// window.
func (w *Window) Snapshot() Snapshot {
	var snap Snapshot
	total := w.data + w.compute
	if total > 0 {
		snap.ImagesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = w.data.Seconds() * 1000 / float64(w.steps)
		snap.AvgComputeMS = w.compute.Seconds() * 1000 / float64(w.steps)
	}

	*w = Window{}
	return snap
}

// Snapshot is one loggable throughput measurement.
type Snapshot struct {
	ImagesPerSec float64
	AvgDataMS    float64
	AvgComputeMS float64
}
