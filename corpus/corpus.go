package corpus

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// maxLineSize bounds a single sentence line.
const maxLineSize = 1024 * 1024

// Pair is one sentence pair of a parallel corpus.
// Source is the side being generated (f), Target the conditioning side (e).
type Pair struct {
	Source []string
	Target []string
}

// Corpus is an ordered sequence of sentence pairs.
type Corpus []Pair

// Options controls tokenization and filtering while loading.
type Options struct {
	Lowercase bool
	MaxLen    int  // skip pairs with a side longer than this; 0 = no limit
	KeepEmpty bool // keep pairs with an empty side, and blank TSV lines
}

// Tokenize splits a sentence on whitespace after NFC normalization.
func Tokenize(line string, opts Options) []string {
	line = norm.NFC.String(line)
	if opts.Lowercase {
		line = strings.ToLower(line)
	}
	return strings.Fields(line)
}

// keep reports whether a tokenized pair passes the loader filters.
func (o Options) keep(src, tgt []string) bool {
	if (len(src) == 0 || len(tgt) == 0) && !o.KeepEmpty {
		return false
	}
	if o.MaxLen > 0 && (len(src) > o.MaxLen || len(tgt) > o.MaxLen) {
		return false
	}
	return true
}

// Read loads a corpus from two line-parallel readers.
// Pairs with an empty side or a side longer than opts.MaxLen are skipped;
// the number of skipped pairs is returned alongside the corpus.
func Read(src, tgt io.Reader, opts Options) (Corpus, int, error) {
	ss := newScanner(src)
	ts := newScanner(tgt)

	var c Corpus
	skipped := 0
	lineNum := 0
	for {
		sok := ss.Scan()
		tok := ts.Scan()
		if !sok || !tok {
			if err := ss.Err(); err != nil {
				return nil, 0, errors.Wrap(err, "read source")
			}
			if err := ts.Err(); err != nil {
				return nil, 0, errors.Wrap(err, "read target")
			}
			if sok != tok {
				side := "source"
				if tok {
					side = "target"
				}
				return nil, 0, errors.Errorf("line %d: %s has more lines than the other side", lineNum+1, side)
			}
			break
		}
		lineNum++

		f := Tokenize(ss.Text(), opts)
		e := Tokenize(ts.Text(), opts)
		if !opts.keep(f, e) {
			skipped++
			continue
		}
		c = append(c, Pair{Source: f, Target: e})
	}
	return c, skipped, nil
}

// ReadTSV loads a corpus where every line is source<TAB>target.
// Blank lines are ignored unless opts.KeepEmpty is set, in which case they
// become empty pairs.
func ReadTSV(r io.Reader, opts Options) (Corpus, int, error) {
	scanner := newScanner(r)

	var c Corpus
	skipped := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if opts.KeepEmpty {
				c = append(c, Pair{})
			}
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, 0, errors.Errorf("line %d: expected source<TAB>target", lineNum)
		}

		f := Tokenize(parts[0], opts)
		e := Tokenize(parts[1], opts)
		if !opts.keep(f, e) {
			skipped++
			continue
		}
		c = append(c, Pair{Source: f, Target: e})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "read corpus")
	}
	return c, skipped, nil
}

// LoadFiles opens a pair of line-parallel files and reads them with Read.
func LoadFiles(srcPath, tgtPath string, opts Options) (Corpus, int, error) {
	sf, err := os.Open(srcPath)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open source")
	}
	defer sf.Close()

	tf, err := os.Open(tgtPath)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open target")
	}
	defer tf.Close()

	return Read(sf, tf, opts)
}

// LoadTSVFile is a convenience wrapper that opens a file path.
func LoadTSVFile(path string, opts Options) (Corpus, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open corpus")
	}
	defer f.Close()
	return ReadTSV(f, opts)
}

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return s
}

// Reverse returns a corpus with source and target swapped, for training the
// opposite direction. Token slices are shared with c.
func (c Corpus) Reverse() Corpus {
	r := make(Corpus, len(c))
	for i, p := range c {
		r[i] = Pair{Source: p.Target, Target: p.Source}
	}
	return r
}

// Vocab returns token frequencies for each side.
func (c Corpus) Vocab() (src, tgt map[string]int) {
	src = make(map[string]int)
	tgt = make(map[string]int)
	for _, p := range c {
		for _, w := range p.Source {
			src[w]++
		}
		for _, w := range p.Target {
			tgt[w]++
		}
	}
	return src, tgt
}

// Tokens returns the total number of source and target tokens.
func (c Corpus) Tokens() (src, tgt int) {
	for _, p := range c {
		src += len(p.Source)
		tgt += len(p.Target)
	}
	return src, tgt
}
