package ibm2

import "sort"

// Null is the target word prepended at position 0 of every target sentence,
// standing for "aligned to nothing". Tokenizers never yield empty tokens.
const Null = ""

// TransKey indexes the translation table: t(F | E).
type TransKey struct {
	F string
	E string
}

// DistKey indexes the distortion table: q(J | I, L, M).
// J is the target-side position (0 = Null), I the 1-based source position,
// L = len(target)+1 and M = len(source)+1.
type DistKey struct {
	J, I, L, M int
}

// PosKey is the conditioning part of a DistKey.
type PosKey struct {
	I, L, M int
}

// Table is a sparse table of probabilities or expected counts.
// Lookups of absent keys yield 0.
type Table[K comparable] map[K]float64

// Get returns the value stored for k, or 0 if k is absent.
func (t Table[K]) Get(k K) float64 {
	return t[k]
}

// Add accumulates v onto the value stored for k.
func (t Table[K]) Add(k K, v float64) {
	t[k] += v
}

func sortedTransKeys(t Table[TransKey]) []TransKey {
	keys := make([]TransKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].E != keys[b].E {
			return keys[a].E < keys[b].E
		}
		return keys[a].F < keys[b].F
	})
	return keys
}

func sortedDistKeys(t Table[DistKey]) []DistKey {
	keys := make([]DistKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		x, y := keys[a], keys[b]
		if x.L != y.L {
			return x.L < y.L
		}
		if x.M != y.M {
			return x.M < y.M
		}
		if x.I != y.I {
			return x.I < y.I
		}
		return x.J < y.J
	})
	return keys
}

// augment writes Null followed by e into dst, reusing its storage.
func augment(dst, e []string) []string {
	dst = append(dst[:0], Null)
	return append(dst, e...)
}
