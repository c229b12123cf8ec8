package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	humanize "github.com/dustin/go-humanize"
	wordalign "github.com/ieee0824/wordalign-go"
	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/ieee0824/wordalign-go/internal/logutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type args struct {
	Model     string `arg:"-m,--model,required" help:"model written by train"`
	Source    string `arg:"--source" help:"source-side sentences, one per line"`
	Target    string `arg:"--target" help:"target-side sentences, line-parallel to --source"`
	Corpus    string `arg:"--corpus" help:"source<TAB>target corpus, instead of --source/--target"`
	Lowercase bool   `arg:"--lowercase" help:"lowercase both sides (match training)"`
	Reverse   bool   `arg:"--reverse" help:"model was trained with --reverse"`
	Scores    bool   `arg:"--scores" help:"append the alignment log-probability to each line"`
	Verbose   bool   `arg:"-v" help:"verbose logging"`
}

func (args) Description() string {
	return "Prints the Viterbi alignment of every sentence pair as src-tgt index pairs."
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if a.Corpus == "" && (a.Source == "" || a.Target == "") {
		p.Fail("either --corpus or both --source and --target are required")
	}

	logger := logutil.New(a.Verbose)
	defer logger.Sync()

	if err := run(a, os.Stdout, logger); err != nil {
		logger.Error("alignment failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(a args, out io.Writer, logger *zap.Logger) error {
	aligner, err := wordalign.NewFromFile(a.Model,
		wordalign.WithLowercase(a.Lowercase),
		wordalign.WithReverse(a.Reverse),
	)
	if err != nil {
		return err
	}
	st := aligner.Model.Stats()
	logger.Debug("model loaded",
		zap.String("path", a.Model),
		zap.String("translation_entries", humanize.Comma(int64(st.TransEntries))),
		zap.String("distortion_entries", humanize.Comma(int64(st.DistEntries))))

	// output stays line-parallel with the input
	opts := corpus.Options{Lowercase: a.Lowercase, KeepEmpty: true}
	var c corpus.Corpus
	if a.Corpus != "" {
		c, _, err = corpus.LoadTSVFile(a.Corpus, opts)
	} else {
		c, _, err = corpus.LoadFiles(a.Source, a.Target, opts)
	}
	if err != nil {
		return errors.Wrap(err, "load corpus")
	}

	w := bufio.NewWriter(out)
	for _, al := range aligner.AlignCorpus(c) {
		if a.Scores {
			fmt.Fprintf(w, "%s\t%.6f\n", al.String(), al.LogProb)
		} else {
			fmt.Fprintln(w, al.String())
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "write alignments")
	}
	logger.Info("aligned", zap.String("pairs", humanize.Comma(int64(len(c)))))
	return nil
}
