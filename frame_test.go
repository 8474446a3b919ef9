package longrep

import (
	"bytes"
	"errors"
	"testing"
)

func roundtripCallback(buf *bytes.Buffer) Callback {
	return NewCallback(buf, buf)
}

func TestHeaderRoundtrip(t *testing.T) {
	buf := new(bytes.Buffer)
	cb := roundtripCallback(buf)
	if err := writeHeader(cb, 1<<20); err != nil {
		t.Fatal(err)
	}
	got, err := readHeader(cb)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1<<20 {
		t.Fatalf("got %d, want %d", got, 1<<20)
	}
}

func TestBlockRoundtrip(t *testing.T) {
	buf := new(bytes.Buffer)
	cb := roundtripCallback(buf)

	lens := []uint32{5, 10}
	offsets := []uint32{100, 200}
	literals := []byte("hello world this is a literal run")
	datalens := []uint32{10, 12, uint32(len(literals)) - 22}

	if err := writeBlock(cb, lens, offsets, datalens, literals); err != nil {
		t.Fatal(err)
	}

	blk, err := readBlock(cb)
	if err != nil {
		t.Fatal(err)
	}
	if blk.eof {
		t.Fatal("block incorrectly flagged as eof")
	}
	if !equalU32(blk.lens, lens) || !equalU32(blk.offsets, offsets) || !equalU32(blk.datalens, datalens) {
		t.Fatalf("decoded fields mismatch: %+v", blk)
	}
	if !bytes.Equal(blk.literals, literals) {
		t.Fatalf("decoded literals = %q, want %q", blk.literals, literals)
	}
}

func TestTerminatorIsEOFSentinel(t *testing.T) {
	buf := new(bytes.Buffer)
	cb := roundtripCallback(buf)

	if err := writeBlock(cb, nil, nil, []uint32{0}, nil); err != nil {
		t.Fatal(err)
	}
	if err := writeEOF(cb); err != nil {
		t.Fatal(err)
	}

	blk, err := readBlock(cb)
	if err != nil {
		t.Fatal(err)
	}
	if blk.eof {
		t.Fatal("the literal-only block itself should not read as eof")
	}

	blk, err = readBlock(cb)
	if err != nil {
		t.Fatal(err)
	}
	if !blk.eof {
		t.Fatal("expected eof after the zero ComprSize sentinel")
	}
}

func TestWriteBlockRejectsInconsistentCounts(t *testing.T) {
	buf := new(bytes.Buffer)
	cb := roundtripCallback(buf)
	err := writeBlock(cb, []uint32{1}, []uint32{1, 2}, []uint32{0, 0}, nil)
	if !errors.Is(err, ErrBadFrame) {
		t.Fatalf("got %v, want ErrBadFrame", err)
	}
}

func TestReadBlockRejectsBadDatalenSum(t *testing.T) {
	buf := new(bytes.Buffer)
	header := appendU32LE(nil, 12) // ComprSize
	header = appendU32LE(header, 0)
	header = appendU32LE(header, 99) // claims 99 literal bytes but ComprSize only allows 4
	buf.Write(header)

	cb := roundtripCallback(buf)
	_, err := readBlock(cb)
	if !errors.Is(err, ErrBadFrame) {
		t.Fatalf("got %v, want ErrBadFrame", err)
	}
}

func equalU32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
