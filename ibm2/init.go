package ibm2

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/ieee0824/wordalign-go/corpus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// Generator returns n non-negative values summing to 1.
type Generator func(n int) []float64

// UniformGenerator returns 1/n for each of the n entries.
func UniformGenerator() Generator {
	return func(n int) []float64 {
		p := make([]float64, n)
		for i := range p {
			p[i] = 1 / float64(n)
		}
		return p
	}
}

// DirichletGenerator draws each distribution from Dirichlet(1, ..., 1),
// i.e. uniformly over the probability simplex. A nil src uses the global
// random source.
func DirichletGenerator(src rand.Source) Generator {
	return func(n int) []float64 {
		if n == 0 {
			return nil
		}
		alpha := make([]float64, n)
		floats.AddConst(1, alpha)
		return distmv.NewDirichlet(alpha, src).Rand(nil)
	}
}

// Uniform initializes a model with uniform distributions over the
// alignments observed in c.
func Uniform(c corpus.Corpus, obs Observer) *Model {
	return WithGenerator(c, UniformGenerator(), obs)
}

// Random initializes a model with Dirichlet-random distributions over the
// alignments observed in c.
func Random(c corpus.Corpus, src rand.Source, obs Observer) *Model {
	return WithGenerator(c, DirichletGenerator(src), obs)
}

type lenPair struct {
	l, m int
}

// WithGenerator initializes a model over the alignments observed in c,
// drawing every conditional distribution from g. Each target word gets one
// distribution over the source words it co-occurs with, and each (i, l, m)
// one distribution over j in [0, l).
//
// Keys are visited in sorted order so a seeded generator is reproducible.
func WithGenerator(c corpus.Corpus, g Generator, obs Observer) *Model {
	obs = orNop(obs)
	start := time.Now()

	lens := make(map[lenPair]struct{})
	aligns := make(map[string]map[string]struct{})
	var ep []string

	for k, p := range c {
		if k%progressEvery == 0 {
			obs.Progress(StageInit, 0, phase(0, k, len(c)))
		}
		ep = augment(ep, p.Target)
		lens[lenPair{l: len(ep), m: len(p.Source) + 1}] = struct{}{}
		if len(p.Source) == 0 {
			continue
		}
		for _, e := range ep {
			set := aligns[e]
			if set == nil {
				set = make(map[string]struct{})
				aligns[e] = set
			}
			for _, f := range p.Source {
				set[f] = struct{}{}
			}
		}
	}

	md := NewModel()

	targets := make([]string, 0, len(aligns))
	for e := range aligns {
		targets = append(targets, e)
	}
	sort.Strings(targets)

	for k, e := range targets {
		if k%progressEvery == 0 {
			obs.Progress(StageInit, 0, phase(1, k, len(targets)))
		}
		sources := make([]string, 0, len(aligns[e]))
		for f := range aligns[e] {
			sources = append(sources, f)
		}
		sort.Strings(sources)

		p := g(len(sources))
		for idx, f := range sources {
			md.T[TransKey{F: f, E: e}] = p[idx]
		}
	}

	pairs := make([]lenPair, 0, len(lens))
	for lp := range lens {
		pairs = append(pairs, lp)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].l != pairs[b].l {
			return pairs[a].l < pairs[b].l
		}
		return pairs[a].m < pairs[b].m
	})

	for k, lp := range pairs {
		if k%progressEvery == 0 {
			obs.Progress(StageInit, 0, phase(2, k, len(pairs)))
		}
		for i := 1; i < lp.m; i++ {
			p := g(lp.l)
			for j := 0; j < lp.l; j++ {
				md.Q[DistKey{J: j, I: i, L: lp.l, M: lp.m}] = p[j]
			}
		}
	}

	obs.Progress(StageInit, 0, 1)
	obs.InitDone(time.Since(start))
	return md
}

// phase maps progress k/n within the idx-th of three init phases onto [0, 1].
func phase(idx, k, n int) float64 {
	if n == 0 {
		return float64(idx) / 3
	}
	return (float64(idx) + float64(k)/float64(n)) / 3
}
