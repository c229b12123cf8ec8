package ibm2

// Model holds the two IBM Model 2 parameter tables.
// A Model must not be trained and queried concurrently.
type Model struct {
	T Table[TransKey] // translation probabilities t(f | e)
	Q Table[DistKey]  // distortion probabilities q(j | i, l, m)
}

// NewModel creates a model with empty tables.
func NewModel() *Model {
	return &Model{
		T: make(Table[TransKey]),
		Q: make(Table[DistKey]),
	}
}

// Trans returns t(f | e).
func (md *Model) Trans(f, e string) float64 {
	return md.T.Get(TransKey{F: f, E: e})
}

// Dist returns q(j | i, l, m).
func (md *Model) Dist(j, i, l, m int) float64 {
	return md.Q.Get(DistKey{J: j, I: i, L: l, M: m})
}

// Stats summarizes table sizes.
type Stats struct {
	TransEntries int
	DistEntries  int
	TargetWords  int // distinct conditioning words in T, Null included
	LengthPairs  int // distinct (l, m) pairs in Q
}

// Stats returns the current table sizes.
func (md *Model) Stats() Stats {
	words := make(map[string]struct{})
	for k := range md.T {
		words[k.E] = struct{}{}
	}
	lens := make(map[[2]int]struct{})
	for k := range md.Q {
		lens[[2]int{k.L, k.M}] = struct{}{}
	}
	return Stats{
		TransEntries: len(md.T),
		DistEntries:  len(md.Q),
		TargetWords:  len(words),
		LengthPairs:  len(lens),
	}
}
