package ibm2

import (
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"
)

// SnappySuffix marks model files stored as snappy-framed streams.
const SnappySuffix = ".sz"

// Save writes the model as a MessagePack array [t, q]. t maps [f, e]
// arrays to float64 with Null encoded as nil; q maps [j, i, l, m] arrays
// to float64. Entries are written in sorted key order.
func (md *Model) Save(w io.Writer) error {
	en := msgp.NewWriter(w)
	if err := en.WriteArrayHeader(2); err != nil {
		return errors.Wrap(err, "encode model header")
	}
	if err := encodeTrans(en, md.T); err != nil {
		return errors.Wrap(err, "encode translation table")
	}
	if err := encodeDist(en, md.Q); err != nil {
		return errors.Wrap(err, "encode distortion table")
	}
	return errors.Wrap(en.Flush(), "flush model")
}

func encodeTrans(en *msgp.Writer, t Table[TransKey]) error {
	if err := en.WriteMapHeader(uint32(len(t))); err != nil {
		return err
	}
	for _, k := range sortedTransKeys(t) {
		if err := en.WriteArrayHeader(2); err != nil {
			return err
		}
		if err := en.WriteString(k.F); err != nil {
			return err
		}
		if err := writeWord(en, k.E); err != nil {
			return err
		}
		if err := en.WriteFloat64(t[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeDist(en *msgp.Writer, q Table[DistKey]) error {
	if err := en.WriteMapHeader(uint32(len(q))); err != nil {
		return err
	}
	for _, k := range sortedDistKeys(q) {
		if err := en.WriteArrayHeader(4); err != nil {
			return err
		}
		for _, v := range [4]int{k.J, k.I, k.L, k.M} {
			if err := en.WriteInt(v); err != nil {
				return err
			}
		}
		if err := en.WriteFloat64(q[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeWord(en *msgp.Writer, w string) error {
	if w == Null {
		return en.WriteNil()
	}
	return en.WriteString(w)
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	dc := msgp.NewReader(r)
	sz, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, errors.Wrap(err, "decode model header")
	}
	if sz != 2 {
		return nil, errors.Errorf("decode model header: expected 2 tables, got %d", sz)
	}

	t, err := decodeTrans(dc)
	if err != nil {
		return nil, errors.Wrap(err, "decode translation table")
	}
	q, err := decodeDist(dc)
	if err != nil {
		return nil, errors.Wrap(err, "decode distortion table")
	}
	return &Model{T: t, Q: q}, nil
}

func decodeTrans(dc *msgp.Reader) (Table[TransKey], error) {
	sz, err := dc.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	t := make(Table[TransKey], sz)
	for ; sz > 0; sz-- {
		n, err := dc.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if n != 2 {
			return nil, errors.Errorf("translation key has %d fields, want 2", n)
		}
		var k TransKey
		if k.F, err = readWord(dc); err != nil {
			return nil, err
		}
		if k.E, err = readWord(dc); err != nil {
			return nil, err
		}
		v, err := dc.ReadFloat64()
		if err != nil {
			return nil, err
		}
		t[k] = v
	}
	return t, nil
}

func decodeDist(dc *msgp.Reader) (Table[DistKey], error) {
	sz, err := dc.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	q := make(Table[DistKey], sz)
	for ; sz > 0; sz-- {
		n, err := dc.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if n != 4 {
			return nil, errors.Errorf("distortion key has %d fields, want 4", n)
		}
		var f [4]int
		for i := range f {
			if f[i], err = dc.ReadInt(); err != nil {
				return nil, err
			}
		}
		v, err := dc.ReadFloat64()
		if err != nil {
			return nil, err
		}
		q[DistKey{J: f[0], I: f[1], L: f[2], M: f[3]}] = v
	}
	return q, nil
}

// readWord reads a token encoded as str, bin, or nil (Null).
func readWord(dc *msgp.Reader) (string, error) {
	typ, err := dc.NextType()
	if err != nil {
		return "", err
	}
	switch typ {
	case msgp.NilType:
		return Null, dc.ReadNil()
	case msgp.BinType:
		b, err := dc.ReadBytes(nil)
		return string(b), err
	default:
		return dc.ReadString()
	}
}

// SaveFile writes the model to path, snappy-compressed if path ends in
// SnappySuffix.
func (md *Model) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create model file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close model file")
		}
	}()

	if !strings.HasSuffix(path, SnappySuffix) {
		return md.Save(f)
	}
	sw := snappy.NewBufferedWriter(f)
	if err := md.Save(sw); err != nil {
		sw.Close()
		return err
	}
	return errors.Wrap(sw.Close(), "flush snappy stream")
}

// LoadFile reads a model from path, see SaveFile.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model file")
	}
	defer f.Close()

	if strings.HasSuffix(path, SnappySuffix) {
		return Load(snappy.NewReader(f))
	}
	return Load(f)
}
