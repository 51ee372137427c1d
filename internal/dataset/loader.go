package dataset

import (
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/tensor"
)

// Batch is one training step's worth of data: a [batchSize, features]
// image tensor and the matching class labels. Batches are transient;
// the loader builds them lazily and nothing retains them.
type Batch struct {
	Images *tensor.Tensor
	Labels []int
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Loader produces batched, optionally shuffled and sharded iteration
// over a dataset.
type Loader struct {
	ds        *Dataset
	batchSize int
	dropLast  bool
	sampler   DistributedSampler
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool
	Seed      int64
	// DropLast discards an incomplete trailing batch. Training across
	// a worker group needs it so every rank performs the same number
	// of optimizer steps; evaluation leaves it unset so no held-out
	// sample is skipped.
	DropLast bool
	// Rank and WorldSize shard the dataset across workers. Leave both
	// zero for single-worker iteration.
	Rank      int
	WorldSize int
}

// NewLoader creates a loader over ds.
func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	if cfg.BatchSize < 1 {
		return nil, errors.Errorf("dataset: batch size must be >= 1, got %d", cfg.BatchSize)
	}
	if ds.NumSamples() == 0 {
		return nil, errors.New("dataset: empty dataset")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &Loader{
		ds:        ds,
		batchSize: cfg.BatchSize,
		dropLast:  cfg.DropLast,
		sampler: DistributedSampler{
			Rank:      cfg.Rank,
			WorldSize: cfg.WorldSize,
			Seed:      cfg.Seed,
			Shuffle:   cfg.Shuffle,
		},
	}, nil
}

// Batches materializes this worker's batches for one epoch. An
// incomplete trailing batch is included unless DropLast is set.
func (l *Loader) Batches(epoch int) []Batch {
	indices := l.sampler.Indices(l.ds.NumSamples(), epoch)
	features := l.ds.Features()

	batches := make([]Batch, 0, l.BatchesPerEpoch())
	for start := 0; start < len(indices); start += l.batchSize {
		end := start + l.batchSize
		if end > len(indices) {
			if l.dropLast {
				break
			}
			end = len(indices)
		}
		chunk := indices[start:end]
		images := tensor.New(tensor.Shape{len(chunk), features})
		labels := make([]int, len(chunk))
		data := images.Data()
		for i, idx := range chunk {
			copy(data[i*features:(i+1)*features], l.ds.Images[idx])
			labels[i] = l.ds.Labels[idx]
		}
		batches = append(batches, Batch{Images: images, Labels: labels})
	}
	return batches
}

// BatchesPerEpoch returns the number of batches each epoch yields.
func (l *Loader) BatchesPerEpoch() int {
	world := l.sampler.WorldSize
	if world <= 0 {
		world = 1
	}
	perRank := l.ds.NumSamples() / world
	full := perRank / l.batchSize
	if !l.dropLast && perRank%l.batchSize != 0 {
		return full + 1
	}
	return full
}
