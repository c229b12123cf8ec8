package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/ieee0824/wordalign-go/ibm2"
	"github.com/ieee0824/wordalign-go/internal/logutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type args struct {
	Source    string `arg:"--source" help:"source-side sentences, one per line"`
	Target    string `arg:"--target" help:"target-side sentences, line-parallel to --source"`
	Corpus    string `arg:"--corpus" help:"source<TAB>target corpus, instead of --source/--target"`
	Output    string `arg:"-o,--output" help:"model output path (.sz suffix = snappy-compressed)"`
	Config    string `arg:"--config" help:"YAML training config; flags below override it"`
	Passes    int    `arg:"-n,--passes" help:"number of EM passes (default 10)"`
	Start     int    `arg:"--start" help:"label of the first pass (default 1)"`
	Init      string `arg:"--init" help:"initialization: uniform or random (default uniform)"`
	Seed      uint64 `arg:"--seed" help:"random init seed (default 1)"`
	Lowercase bool   `arg:"--lowercase" help:"lowercase both sides"`
	MaxLen    int    `arg:"--max-len" help:"skip pairs with a side longer than this (0 = no limit)"`
	Reverse   bool   `arg:"--reverse" help:"train target-to-source"`
	Verbose   bool   `arg:"-v" help:"log progress"`
}

func (args) Description() string {
	return "Trains an IBM Model 2 word alignment model with EM."
}

func main() {
	a := args{Output: "model.msgpack"}
	p := arg.MustParse(&a)
	if a.Corpus == "" && (a.Source == "" || a.Target == "") {
		p.Fail("either --corpus or both --source and --target are required")
	}

	logger := logutil.New(a.Verbose)
	defer logger.Sync()

	if err := run(a, logger); err != nil {
		logger.Error("training failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(a args, logger *zap.Logger) error {
	cfg, err := trainingConfig(a)
	if err != nil {
		return err
	}

	c, err := loadCorpus(a, logger)
	if err != nil {
		return err
	}
	if len(c) == 0 {
		return errors.New("corpus is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	obs := ibm2.LogObserver(logger)
	md, stats, err := ibm2.Train(ctx, c, cfg, obs)
	if err != nil {
		return errors.Wrapf(err, "after %d completed passes", len(stats))
	}

	st := md.Stats()
	logger.Info("trained",
		zap.String("translation_entries", humanize.Comma(int64(st.TransEntries))),
		zap.String("distortion_entries", humanize.Comma(int64(st.DistEntries))),
		zap.Int("target_words", st.TargetWords))

	if err := md.SaveFile(a.Output); err != nil {
		return errors.Wrap(err, "save model")
	}
	size := "unknown"
	if fi, err := os.Stat(a.Output); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	logger.Info("model saved", zap.String("path", a.Output), zap.String("size", size))
	return nil
}

// trainingConfig merges the optional config file with explicitly set flags.
func trainingConfig(a args) (ibm2.TrainingConfig, error) {
	cfg := ibm2.DefaultTrainingConfig()
	if a.Config != "" {
		var err error
		if cfg, err = ibm2.LoadTrainingConfig(a.Config); err != nil {
			return cfg, err
		}
	}
	if a.Passes > 0 {
		cfg.Passes = a.Passes
	}
	if a.Start > 0 {
		cfg.StartPass = a.Start
	}
	if a.Init != "" {
		cfg.Init = ibm2.InitMode(a.Init)
	}
	if a.Seed != 0 {
		cfg.Seed = a.Seed
	}
	return cfg, cfg.Validate()
}

func loadCorpus(a args, logger *zap.Logger) (corpus.Corpus, error) {
	opts := corpus.Options{Lowercase: a.Lowercase, MaxLen: a.MaxLen}

	var (
		c       corpus.Corpus
		skipped int
		err     error
	)
	if a.Corpus != "" {
		c, skipped, err = corpus.LoadTSVFile(a.Corpus, opts)
	} else {
		c, skipped, err = corpus.LoadFiles(a.Source, a.Target, opts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load corpus")
	}
	if a.Reverse {
		c = c.Reverse()
	}

	src, tgt := c.Vocab()
	logger.Info("corpus loaded",
		zap.String("pairs", humanize.Comma(int64(len(c)))),
		zap.Int("skipped", skipped),
		zap.Int("source_vocab", len(src)),
		zap.Int("target_vocab", len(tgt)))
	return c, nil
}
