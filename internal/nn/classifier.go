package nn

import (
	"fmt"
	"math/rand"
)

// ClassifierConfig declares the shape of the standard image
// classifier built by NewClassifier.
type ClassifierConfig struct {
	// NumClasses is the width of the output layer. Defaults to 10.
	NumClasses int

	// InChannels is the number of image channels. The input layer is
	// sized from InChannels so single-channel (grayscale) images work
	// without preprocessing. Defaults to 1.
	InChannels int

	// ImageSize is the height and width of the square input images.
	// Defaults to 28.
	ImageSize int

	// Hidden lists the hidden layer widths. Defaults to [128].
	Hidden []int

	// Seed drives weight initialization. Workers that share a seed
	// build identical replicas.
	Seed int64
}

func (c *ClassifierConfig) applyDefaults() {
	if c.NumClasses == 0 {
		c.NumClasses = 10
	}
	if c.InChannels == 0 {
		c.InChannels = 1
	}
	if c.ImageSize == 0 {
		c.ImageSize = 28
	}
	if len(c.Hidden) == 0 {
		c.Hidden = []int{128}
	}
}

// Validate reports the first configuration error.
func (c ClassifierConfig) Validate() error {
	c.applyDefaults()
	if c.NumClasses < 2 {
		return fmt.Errorf("nn: NumClasses must be >= 2, got %d", c.NumClasses)
	}
	if c.InChannels < 1 {
		return fmt.Errorf("nn: InChannels must be >= 1, got %d", c.InChannels)
	}
	if c.ImageSize < 1 {
		return fmt.Errorf("nn: ImageSize must be >= 1, got %d", c.ImageSize)
	}
	for _, h := range c.Hidden {
		if h < 1 {
			return fmt.Errorf("nn: hidden width must be >= 1, got %d", h)
		}
	}
	return nil
}

// InFeatures returns the flattened input width.
func (c ClassifierConfig) InFeatures() int {
	c.applyDefaults()
	return c.InChannels * c.ImageSize * c.ImageSize
}

// NewClassifier builds the standard MLP classifier: a stack of Linear
// and ReLU layers ending in a Linear layer of NumClasses raw logits.
//
// The default configuration is the MNIST baseline: 784 -> 128 -> 10.
func NewClassifier(cfg ClassifierConfig) (*Sequential, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var layers []Module

	in := cfg.InFeatures()
	for _, h := range cfg.Hidden {
		layers = append(layers, NewLinear(in, h, rng), NewReLU())
		in = h
	}
	layers = append(layers, NewLinear(in, cfg.NumClasses, rng))

	return NewSequential(layers...), nil
}
