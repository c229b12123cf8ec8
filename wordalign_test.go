package wordalign

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ieee0824/wordalign-go/corpus"
	"github.com/ieee0824/wordalign-go/ibm2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `la maison
la fleur
la maison bleue
maison
fleur
`

const testTarget = `the house
the flower
the blue house
house
flower
`

func trainTestModel(t *testing.T, reverse bool) *ibm2.Model {
	t.Helper()
	c, skipped, err := corpus.Read(strings.NewReader(testSource), strings.NewReader(testTarget), corpus.Options{Lowercase: true})
	require.NoError(t, err)
	require.Zero(t, skipped)
	if reverse {
		c = c.Reverse()
	}

	cfg := ibm2.DefaultTrainingConfig()
	cfg.Passes = 5
	md, _, err := ibm2.Train(context.Background(), c, cfg, nil)
	require.NoError(t, err)
	return md
}

func TestAlignText(t *testing.T) {
	a := New(trainTestModel(t, false), WithLowercase(true))

	al := a.AlignText("La Maison Bleue", "The Blue House")
	assert.Equal(t, []int{1, 3, 2}, al.Links)
	assert.Equal(t, "0-0 1-2 2-1", al.String())
}

func TestAlignTextCaseSensitive(t *testing.T) {
	a := New(trainTestModel(t, false))

	// capitalized tokens were never seen in training
	al := a.AlignText("La Maison", "The House")
	assert.Equal(t, []int{0, 0}, al.Links)
}

func TestAlignPairReverse(t *testing.T) {
	a := New(trainTestModel(t, true), WithReverse(true))

	al := a.AlignPair(corpus.Pair{
		Source: []string{"la", "maison"},
		Target: []string{"the", "house"},
	})
	// links run from the English side to the French side
	assert.Equal(t, []int{1, 2}, al.Links)
}

func TestAlignCorpus(t *testing.T) {
	a := New(trainTestModel(t, false))
	c := corpus.Corpus{
		{Source: []string{"la", "fleur"}, Target: []string{"the", "flower"}},
		{Source: []string{"maison"}, Target: []string{"house"}},
	}
	out := a.AlignCorpus(c)
	require.Len(t, out, 2)
	assert.Equal(t, []int{1, 2}, out[0].Links)
	assert.Equal(t, []int{1}, out[1].Links)
}

func TestNewFromFile(t *testing.T) {
	md := trainTestModel(t, false)
	path := filepath.Join(t.TempDir(), "model.msgpack.sz")
	require.NoError(t, md.SaveFile(path))

	a, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, a.AlignText("la maison", "the house").Links)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
