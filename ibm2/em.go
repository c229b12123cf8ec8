package ibm2

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// PassStats summarizes one EM pass.
type PassStats struct {
	Pass          int
	LogLikelihood float64 // natural log, under the parameters before the pass
	Duration      time.Duration
	Pairs         int
}

// ZeroDenominatorError reports a source word with no alignment mass under
// the current model. This happens only when the model was not initialized
// on (a superset of) the training corpus.
type ZeroDenominatorError struct {
	Pair     int // index into the corpus
	Position int // 1-based source position
	Source   []string
	Target   []string
}

func (e *ZeroDenominatorError) Error() string {
	return fmt.Sprintf("pair %d [%s] / [%s]: source position %d has no alignment mass; model was not initialized on this corpus",
		e.Pair, strings.Join(e.Source, " "), strings.Join(e.Target, " "), e.Position)
}

// counts holds the expected counts of one E-step.
type counts struct {
	trans    Table[TransKey] // f aligned with e
	transTot Table[string]   // e aligned with anything
	dist     Table[DistKey]  // i aligned with j for lengths (l, m)
	distTot  Table[PosKey]   // i aligned with anything for lengths (l, m)
}

func newCounts() *counts {
	return &counts{
		trans:    make(Table[TransKey]),
		transTot: make(Table[string]),
		dist:     make(Table[DistKey]),
		distTot:  make(Table[PosKey]),
	}
}

// EMIter runs one EM pass over c and replaces the model parameters with
// the re-estimated ones. pass only labels progress reports.
//
// The returned log-likelihood is that of c under the parameters before the
// update; across successive passes it never decreases.
//
// ctx is checked between sentence pairs. If it is cancelled, or a
// ZeroDenominatorError occurs, the model is left unchanged.
func (md *Model) EMIter(ctx context.Context, c corpus.Corpus, pass int, obs Observer) (PassStats, error) {
	obs = orNop(obs)
	start := time.Now()

	acc := newCounts()
	likelihood := 0.0
	var ep []string
	var w []float64

	// E-step
	for k, p := range c {
		if err := ctx.Err(); err != nil {
			return PassStats{}, errors.Wrapf(err, "pass %d interrupted at pair %d", pass, k)
		}
		if k%progressEvery == 0 {
			obs.Progress(StagePass, pass, float64(k)/float64(len(c)))
		}

		l := len(p.Target) + 1
		m := len(p.Source) + 1
		ep = augment(ep, p.Target)
		if cap(w) < l {
			w = make([]float64, l)
		}
		w = w[:l]

		for i := 1; i < m; i++ {
			f := p.Source[i-1]
			for j := 0; j < l; j++ {
				w[j] = md.Q.Get(DistKey{J: j, I: i, L: l, M: m}) * md.T.Get(TransKey{F: f, E: ep[j]})
			}
			den := floats.Sum(w)
			if !(den > 0) || math.IsInf(den, 0) {
				return PassStats{}, errors.WithStack(&ZeroDenominatorError{
					Pair:     k,
					Position: i,
					Source:   p.Source,
					Target:   p.Target,
				})
			}
			likelihood += math.Log(den)

			for j := 0; j < l; j++ {
				delta := w[j] / den
				acc.trans.Add(TransKey{F: f, E: ep[j]}, delta)
				acc.transTot.Add(ep[j], delta)
				acc.dist.Add(DistKey{J: j, I: i, L: l, M: m}, delta)
				acc.distTot.Add(PosKey{I: i, L: l, M: m}, delta)
			}
		}
	}

	// M-step
	md.maximize(acc)

	st := PassStats{
		Pass:          pass,
		LogLikelihood: likelihood,
		Duration:      time.Since(start),
		Pairs:         len(c),
	}
	obs.Progress(StagePass, pass, 1)
	obs.PassDone(st)
	return st, nil
}

// maximize replaces the tables with the normalized counts.
// Keys with no expected count are dropped.
func (md *Model) maximize(acc *counts) {
	t := make(Table[TransKey], len(acc.trans))
	for k, v := range acc.trans {
		if v > 0 {
			t[k] = v / acc.transTot.Get(k.E)
		}
	}

	q := make(Table[DistKey], len(acc.dist))
	for k, v := range acc.dist {
		if v > 0 {
			q[k] = v / acc.distTot.Get(PosKey{I: k.I, L: k.L, M: k.M})
		}
	}

	md.T = t
	md.Q = q
}

// EMTrain runs n EM passes over c, labelled s, s+1, ..., s+n-1.
// It returns the stats of every completed pass; on error the model holds
// the parameters of the last completed pass.
func (md *Model) EMTrain(ctx context.Context, c corpus.Corpus, n, s int, obs Observer) ([]PassStats, error) {
	stats := make([]PassStats, 0, max(n, 0))
	for k := s; k < s+n; k++ {
		st, err := md.EMIter(ctx, c, k, obs)
		if err != nil {
			return stats, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}
