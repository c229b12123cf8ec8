package ibm2

import (
	"math/rand/v2"
	"testing"

	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sumTol = 1e-9

func pair(src, tgt []string) corpus.Pair {
	return corpus.Pair{Source: src, Target: tgt}
}

func words(s ...string) []string { return s }

// houseCorpus is a tiny French-English corpus with unambiguous alignments.
func houseCorpus() corpus.Corpus {
	return corpus.Corpus{
		pair(words("la", "maison"), words("the", "house")),
		pair(words("la", "fleur"), words("the", "flower")),
		pair(words("la", "maison", "bleue"), words("the", "blue", "house")),
		pair(words("maison"), words("house")),
		pair(words("fleur"), words("flower")),
	}
}

// assertNormalized checks that every conditional distribution in md sums to 1.
func assertNormalized(t *testing.T, md *Model) {
	t.Helper()

	transSums := make(map[string]float64)
	for k, v := range md.T {
		assert.True(t, v >= 0 && v <= 1, "t%v = %g out of [0,1]", k, v)
		transSums[k.E] += v
	}
	for e, s := range transSums {
		assert.InDelta(t, 1.0, s, sumTol, "sum_f t(f | %q)", e)
	}

	distSums := make(map[PosKey]float64)
	for k, v := range md.Q {
		assert.True(t, v >= 0 && v <= 1, "q%v = %g out of [0,1]", k, v)
		assert.True(t, k.J >= 0 && k.J < k.L, "q%v: j out of range", k)
		distSums[PosKey{I: k.I, L: k.L, M: k.M}] += v
	}
	for pk, s := range distSums {
		assert.InDelta(t, 1.0, s, sumTol, "sum_j q(j | %v)", pk)
	}
}

func TestUniformGenerator(t *testing.T) {
	g := UniformGenerator()
	p := g(4)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, p)
	assert.Empty(t, g(0))
}

func TestDirichletGenerator(t *testing.T) {
	g := DirichletGenerator(rand.NewPCG(1, 2))
	for _, n := range []int{1, 2, 7} {
		p := g(n)
		require.Len(t, p, n)
		sum := 0.0
		for _, v := range p {
			assert.True(t, v >= 0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, sumTol)
	}
	assert.Nil(t, g(0))
}

func TestUniformInit(t *testing.T) {
	md := Uniform(houseCorpus(), nil)
	assertNormalized(t, md)

	// the co-occurs with la, maison, fleur, bleue
	assert.Equal(t, 0.25, md.Trans("la", "the"))
	// house co-occurs with la, maison, bleue
	assert.InDelta(t, 1.0/3, md.Trans("maison", "house"), 1e-15)
	// Null co-occurs with every source word
	assert.Equal(t, 0.25, md.Trans("fleur", Null))
	// never co-occur
	assert.Equal(t, 0.0, md.Trans("fleur", "house"))

	assert.InDelta(t, 1.0/3, md.Dist(2, 1, 3, 3), 1e-15)
	assert.Equal(t, 0.25, md.Dist(0, 3, 4, 4))
	assert.Equal(t, 0.0, md.Dist(0, 3, 3, 3))
}

func TestUniformInitIsDeterministic(t *testing.T) {
	a := Uniform(houseCorpus(), nil)
	b := Uniform(houseCorpus(), nil)
	assert.Equal(t, a.T, b.T)
	assert.Equal(t, a.Q, b.Q)
}

func TestRandomInit(t *testing.T) {
	a := Random(houseCorpus(), rand.NewPCG(1, 1), nil)
	b := Random(houseCorpus(), rand.NewPCG(2, 2), nil)
	assertNormalized(t, a)
	assertNormalized(t, b)

	// same support, different values
	require.Equal(t, len(a.T), len(b.T))
	require.Equal(t, len(a.Q), len(b.Q))
	for k := range a.T {
		_, ok := b.T[k]
		assert.True(t, ok, "key %v missing", k)
	}
	assert.NotEqual(t, a.T, b.T)
	assert.NotEqual(t, a.Q, b.Q)

	// every reachable entry is positive
	for k, v := range a.T {
		assert.True(t, v > 0, "t%v = %g", k, v)
	}
}

func TestRandomInitSeeded(t *testing.T) {
	a := Random(houseCorpus(), rand.NewPCG(7, 7), nil)
	b := Random(houseCorpus(), rand.NewPCG(7, 7), nil)
	assert.Equal(t, a.T, b.T)
	assert.Equal(t, a.Q, b.Q)
}

func TestWithGeneratorDegeneratePairs(t *testing.T) {
	c := corpus.Corpus{
		pair(words(), words("the")),
		pair(words("la"), words()),
	}
	md := Uniform(c, nil)
	assertNormalized(t, md)

	// the empty-source pair contributes no translation entries
	assert.Equal(t, 0.0, md.Trans("la", "the"))
	// la only co-occurs with Null
	assert.Equal(t, 1.0, md.Trans("la", Null))
	// l = 1, m = 2: a single distortion entry
	assert.Equal(t, 1.0, md.Dist(0, 1, 1, 2))
	assert.Len(t, md.Q, 1)
}

func TestWithGeneratorCallsGenerator(t *testing.T) {
	var sizes []int
	g := func(n int) []float64 {
		sizes = append(sizes, n)
		return UniformGenerator()(n)
	}
	WithGenerator(corpus.Corpus{pair(words("a", "b"), words("x"))}, g, nil)

	// Null and x each see {a, b}; then (l=2, m=3) for i = 1, 2.
	assert.Equal(t, []int{2, 2, 2, 2}, sizes)
}

func TestWithGeneratorReportsProgress(t *testing.T) {
	rec := &recordingObserver{}
	Uniform(houseCorpus(), rec)

	require.NotEmpty(t, rec.progress)
	assert.Equal(t, StageInit, rec.progress[0].stage)
	assert.Equal(t, 1.0, rec.progress[len(rec.progress)-1].frac)
	assert.Equal(t, 1, rec.inits)
}

func TestTableGetDefaultsToZero(t *testing.T) {
	tab := make(Table[TransKey])
	assert.Equal(t, 0.0, tab.Get(TransKey{F: "x", E: "y"}))
	tab.Add(TransKey{F: "x", E: "y"}, 0.5)
	tab.Add(TransKey{F: "x", E: "y"}, 0.25)
	assert.Equal(t, 0.75, tab.Get(TransKey{F: "x", E: "y"}))

	var empty Table[DistKey]
	assert.Equal(t, 0.0, empty.Get(DistKey{}))
}

func TestModelStats(t *testing.T) {
	md := Uniform(houseCorpus(), nil)
	st := md.Stats()
	assert.Equal(t, len(md.T), st.TransEntries)
	assert.Equal(t, len(md.Q), st.DistEntries)
	// Null, the, house, flower, blue
	assert.Equal(t, 5, st.TargetWords)
	// (3,3), (4,4), (2,2)
	assert.Equal(t, 3, st.LengthPairs)
}
