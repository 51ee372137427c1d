package train

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/ember-ml/ember/internal/nn"
)

// RunSpec is the YAML run description accepted by the CLI, bundling
// the scaling, run, and loop configuration of one training run.
type RunSpec struct {
	Name        string `yaml:"name"`
	StoragePath string `yaml:"storage_path"`

	NumWorkers int  `yaml:"num_workers"`
	UseGPU     bool `yaml:"use_gpu"`

	Epochs      int     `yaml:"epochs"`
	BatchSize   int     `yaml:"batch_size"`
	LR          float64 `yaml:"lr"`
	Optimizer   string  `yaml:"optimizer"`
	Seed        int64   `yaml:"seed"`
	ValFraction float64 `yaml:"val_fraction"`
	ResumeFrom  string  `yaml:"resume_from"`

	NumClasses int   `yaml:"num_classes"`
	Hidden     []int `yaml:"hidden"`

	DataDir    string `yaml:"data_dir"`
	Synthetic  bool   `yaml:"synthetic"`
	MaxSamples int    `yaml:"max_samples"`
}

// DefaultRunSpec returns the MNIST baseline configuration.
func DefaultRunSpec() RunSpec {
	return RunSpec{
		Name:        "mnist",
		StoragePath: "runs",
		NumWorkers:  1,
		Epochs:      5,
		BatchSize:   64,
		LR:          0.01,
		Optimizer:   "sgd",
		Seed:        42,
		ValFraction: 0.1,
		DataDir:     "data",
	}
}

// LoadRunSpec reads a YAML run spec, applying defaults for fields the
// file leaves unset.
func LoadRunSpec(path string) (RunSpec, error) {
	spec := DefaultRunSpec()
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, errors.Wrapf(err, "train: read run spec %s", path)
	}
	if err := yaml.UnmarshalStrict(raw, &spec); err != nil {
		return spec, errors.Wrapf(err, "train: parse run spec %s", path)
	}
	return spec, nil
}

// Scaling extracts the scaling configuration.
func (s RunSpec) Scaling() ScalingConfig {
	return ScalingConfig{NumWorkers: s.NumWorkers, UseGPU: s.UseGPU}
}

// Run extracts the run configuration.
func (s RunSpec) Run() RunConfig {
	return RunConfig{StoragePath: s.StoragePath, Name: s.Name}
}

// Loop extracts the loop configuration.
func (s RunSpec) Loop() LoopConfig {
	return LoopConfig{
		Epochs:      s.Epochs,
		BatchSize:   s.BatchSize,
		LR:          s.LR,
		Optimizer:   s.Optimizer,
		Seed:        s.Seed,
		ValFraction: s.ValFraction,
		ResumeFrom:  s.ResumeFrom,
		Model: nn.ClassifierConfig{
			NumClasses: s.NumClasses,
			Hidden:     s.Hidden,
		},
	}
}
