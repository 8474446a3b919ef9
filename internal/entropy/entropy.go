// Package entropy wires the general-purpose entropy coders the longrep
// command line can layer on top of the preprocessor's output: the
// preprocessor removes long-range duplication, but still leaves ordinary
// short-range redundancy and byte-frequency skew for a real entropy coder
// to take out.
//
// Grounded on the teacher's flate/gzip.go, lz4/block.go and snappy/*
// subpackages, which each wrap a concrete codec's own Writer/Reader behind
// a small adapter — generalized here to wrap the real upstream packages
// directly instead of reimplementing any of them.
package entropy

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"
)

// Names of the supported coders, for CLI flag validation and help text.
const (
	Snappy = "snappy"
	Flate  = "flate"
	LZ4    = "lz4"
	None   = "none"
)

// WrapWriter returns an io.WriteCloser that feeds writes through the named
// coder before forwarding compressed output to w. Close must be called to
// flush the coder's trailer.
func WrapWriter(name string, w io.Writer) (io.WriteCloser, error) {
	switch name {
	case Snappy, "":
		return snappy.NewBufferedWriter(w), nil
	case Flate:
		return flate.NewWriter(w, flate.DefaultCompression)
	case LZ4:
		return lz4.NewWriter(w), nil
	case None:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("entropy: unknown coder %q", name)
	}
}

// WrapReader returns an io.ReadCloser that decompresses r through the named
// coder.
func WrapReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch name {
	case Snappy, "":
		return io.NopCloser(snappy.NewReader(r)), nil
	case Flate:
		return flate.NewReader(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case None:
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("entropy: unknown coder %q", name)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
