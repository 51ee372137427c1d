// Package dataset provides labeled image datasets and the batching
// machinery the training loop iterates over: an IDX (MNIST) reader, a
// synthetic data generator, a seeded-shuffle batch loader, and a
// distributed sampler that shards samples across workers by rank.
package dataset

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Dataset is an in-memory labeled image dataset. Images are flattened
// and normalized to [0, 1].
type Dataset struct {
	Images  [][]float32 // [numSamples][width*height]
	Labels  []int       // [numSamples], class indices
	Width   int
	Height  int
	Classes int
}

// NumSamples returns the number of samples in the dataset.
func (d *Dataset) NumSamples() int {
	return len(d.Images)
}

// Features returns the flattened image width.
func (d *Dataset) Features() int {
	return d.Width * d.Height
}

// Validate reports structural problems: mismatched image/label
// counts, out-of-range labels, or ragged image rows.
func (d *Dataset) Validate() error {
	if len(d.Images) != len(d.Labels) {
		return errors.Errorf("dataset: %d images but %d labels", len(d.Images), len(d.Labels))
	}
	features := d.Features()
	for i, img := range d.Images {
		if len(img) != features {
			return errors.Errorf("dataset: image %d has %d values, want %d", i, len(img), features)
		}
		if d.Labels[i] < 0 || d.Labels[i] >= d.Classes {
			return errors.Errorf("dataset: label %d out of range [0, %d) at sample %d", d.Labels[i], d.Classes, i)
		}
	}
	return nil
}

// Split partitions the dataset into train and validation subsets,
// with valFraction of the samples going to validation. The split is
// positional; shuffle beforehand if ordering matters.
func (d *Dataset) Split(valFraction float64) (train, val *Dataset) {
	n := d.NumSamples()
	valCount := int(float64(n) * valFraction)
	cut := n - valCount

	train = &Dataset{
		Images: d.Images[:cut], Labels: d.Labels[:cut],
		Width: d.Width, Height: d.Height, Classes: d.Classes,
	}
	val = &Dataset{
		Images: d.Images[cut:], Labels: d.Labels[cut:],
		Width: d.Width, Height: d.Height, Classes: d.Classes,
	}
	return train, val
}

// Synthetic generates a deterministic dataset of n single-channel
// images whose class is recoverable from the pixel statistics, so a
// small model can actually learn it. Used by tests and the -synthetic
// flag for runs without MNIST files.
func Synthetic(n, width, height, classes int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	features := width * height

	d := &Dataset{
		Images:  make([][]float32, n),
		Labels:  make([]int, n),
		Width:   width,
		Height:  height,
		Classes: classes,
	}
	for i := 0; i < n; i++ {
		label := i % classes
		img := make([]float32, features)
		// Bright band whose position encodes the class, plus noise.
		bandStart := label * features / classes
		bandEnd := (label + 1) * features / classes
		for j := range img {
			v := rng.Float64() * 0.2
			if j >= bandStart && j < bandEnd {
				v += 0.8
			}
			if v > 1 {
				v = 1
			}
			img[j] = float32(v)
		}
		d.Images[i] = img
		d.Labels[i] = label
	}
	return d
}
