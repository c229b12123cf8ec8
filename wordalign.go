package wordalign

import (
	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/ieee0824/wordalign-go/ibm2"
	"github.com/pkg/errors"
)

// Aligner aligns raw sentence pairs with a trained IBM Model 2.
type Aligner struct {
	Model   *ibm2.Model
	Corpus  corpus.Options // tokenization applied to raw text
	Reverse bool           // the model was trained on the reversed corpus
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithLowercase lowercases text before alignment. Use it when the model
// was trained on a lowercased corpus.
func WithLowercase(enabled bool) Option {
	return func(a *Aligner) {
		a.Corpus.Lowercase = enabled
	}
}

// WithReverse swaps source and target before alignment, for models trained
// on corpus.Corpus.Reverse. Links are still reported source-to-target of
// the swapped pair.
func WithReverse(enabled bool) Option {
	return func(a *Aligner) {
		a.Reverse = enabled
	}
}

// New creates an Aligner from a loaded model.
func New(model *ibm2.Model, opts ...Option) *Aligner {
	a := &Aligner{Model: model}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromFile loads a model written by ibm2.Model.SaveFile.
func NewFromFile(path string, opts ...Option) (*Aligner, error) {
	md, err := ibm2.LoadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load model")
	}
	return New(md, opts...), nil
}

// AlignText tokenizes src and tgt and returns their most probable alignment.
func (a *Aligner) AlignText(src, tgt string) ibm2.Alignment {
	return a.AlignPair(corpus.Pair{
		Source: corpus.Tokenize(src, a.Corpus),
		Target: corpus.Tokenize(tgt, a.Corpus),
	})
}

// AlignPair returns the most probable alignment of an already tokenized pair.
func (a *Aligner) AlignPair(p corpus.Pair) ibm2.Alignment {
	if a.Reverse {
		p = corpus.Pair{Source: p.Target, Target: p.Source}
	}
	return a.Model.Align(p.Source, p.Target)
}

// AlignCorpus aligns every pair of c in order.
func (a *Aligner) AlignCorpus(c corpus.Corpus) []ibm2.Alignment {
	out := make([]ibm2.Alignment, len(c))
	for i, p := range c {
		out[i] = a.AlignPair(p)
	}
	return out
}
