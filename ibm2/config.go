package ibm2

import (
	"context"
	"io"
	"math/rand/v2"
	"os"

	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// InitMode selects how the initial distributions are drawn.
type InitMode string

const (
	InitUniform InitMode = "uniform"
	InitRandom  InitMode = "random"
)

// TrainingConfig holds EM training parameters.
type TrainingConfig struct {
	Passes    int      `yaml:"passes"`
	StartPass int      `yaml:"start_pass"` // label of the first pass
	Init      InitMode `yaml:"init"`
	Seed      uint64   `yaml:"seed"` // random init only; 0 = unseeded
}

// DefaultTrainingConfig returns reasonable default training parameters.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Passes:    10,
		StartPass: 1,
		Init:      InitUniform,
		Seed:      1,
	}
}

// Validate checks the config for values training cannot run with.
func (c TrainingConfig) Validate() error {
	if c.Passes < 0 {
		return errors.Errorf("passes must be >= 0, got %d", c.Passes)
	}
	switch c.Init {
	case InitUniform, InitRandom:
	default:
		return errors.Errorf("unknown init mode %q (want %q or %q)", c.Init, InitUniform, InitRandom)
	}
	return nil
}

// ReadTrainingConfig parses a YAML config. Fields not present keep their
// defaults; unknown fields are an error.
func ReadTrainingConfig(r io.Reader) (TrainingConfig, error) {
	cfg := DefaultTrainingConfig()
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, cfg.Validate()
}

// LoadTrainingConfig is a convenience wrapper that opens a file path.
func LoadTrainingConfig(path string) (TrainingConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultTrainingConfig(), errors.Wrap(err, "open config")
	}
	defer f.Close()
	return ReadTrainingConfig(f)
}

// Init builds the initial model for c as selected by cfg.Init.
func Init(c corpus.Corpus, cfg TrainingConfig, obs Observer) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Init == InitUniform {
		return Uniform(c, obs), nil
	}
	var src rand.Source
	if cfg.Seed != 0 {
		src = rand.NewPCG(cfg.Seed, cfg.Seed)
	}
	return Random(c, src, obs), nil
}

// Train initializes a model for c and runs cfg.Passes EM passes on it.
// The model is returned together with the completed pass stats even when
// training stops early with an error.
func Train(ctx context.Context, c corpus.Corpus, cfg TrainingConfig, obs Observer) (*Model, []PassStats, error) {
	md, err := Init(c, cfg, obs)
	if err != nil {
		return nil, nil, err
	}
	stats, err := md.EMTrain(ctx, c, cfg.Passes, cfg.StartPass, obs)
	return md, stats, err
}
