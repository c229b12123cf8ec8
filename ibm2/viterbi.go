package ibm2

import (
	"strconv"
	"strings"

	"github.com/ieee0824/wordalign-go/internal/mathutil"
	"gonum.org/v1/gonum/floats"
)

// Alignment is the most probable alignment of a sentence pair.
type Alignment struct {
	// Links[i-1] is the target position (0 = Null) source word i aligns to.
	Links []int
	// Scores[i-1] is t(f_i | e_j) * q(j | i, l, m) of the chosen link.
	Scores []float64
	// LogProb is the sum of the natural logs of Scores; a zero score
	// contributes mathutil.LogZero.
	LogProb float64
}

// Pairs returns the non-Null links as 0-based (source, target) indices.
func (a Alignment) Pairs() [][2]int {
	pairs := make([][2]int, 0, len(a.Links))
	for i, j := range a.Links {
		if j == 0 {
			continue
		}
		pairs = append(pairs, [2]int{i, j - 1})
	}
	return pairs
}

// String formats the alignment as space-separated "src-tgt" pairs.
func (a Alignment) String() string {
	var sb strings.Builder
	for n, p := range a.Pairs() {
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(p[0]))
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(p[1]))
	}
	return sb.String()
}

// ViterbiAlignment returns, for each source word f[i-1], the target
// position j in [0, len(e)] maximizing t(f[i-1] | e'[j]) * q(j | i, l, m),
// where e' is e with Null prepended. Ties go to the smallest j, so a word
// with no mass anywhere aligns to Null.
func (md *Model) ViterbiAlignment(f, e []string) []int {
	return md.Align(f, e).Links
}

// Align is ViterbiAlignment with per-link scores.
func (md *Model) Align(f, e []string) Alignment {
	l := len(e) + 1
	m := len(f) + 1
	ep := augment(nil, e)

	a := Alignment{
		Links:  make([]int, 0, len(f)),
		Scores: make([]float64, 0, len(f)),
	}
	scores := make([]float64, l)
	for i := 1; i < m; i++ {
		for j := 0; j < l; j++ {
			scores[j] = md.T.Get(TransKey{F: f[i-1], E: ep[j]}) * md.Q.Get(DistKey{J: j, I: i, L: l, M: m})
		}
		best := floats.MaxIdx(scores)
		a.Links = append(a.Links, best)
		a.Scores = append(a.Scores, scores[best])
		a.LogProb += mathutil.SafeLog(scores[best])
	}
	return a
}

// SentenceLogProb returns the log-likelihood the E-step assigns to the
// pair: the sum over source positions of ln sum_j q * t. Positions with no
// mass contribute mathutil.LogZero.
func (md *Model) SentenceLogProb(f, e []string) float64 {
	l := len(e) + 1
	m := len(f) + 1
	ep := augment(nil, e)

	total := 0.0
	for i := 1; i < m; i++ {
		den := 0.0
		for j := 0; j < l; j++ {
			den += md.Q.Get(DistKey{J: j, I: i, L: l, M: m}) * md.T.Get(TransKey{F: f[i-1], E: ep[j]})
		}
		total += mathutil.SafeLog(den)
	}
	return total
}
