package longrep

import (
	"encoding/binary"
	"fmt"
)

// frame.go implements the wire format from §6: little-endian u32 fields
// throughout, a HEADER, a run of BLOCK frames, and a TERMINATOR that is, on
// the wire, just one more block (carrying the final literal run, no
// matches) followed by a single zero-valued ComprSize field acting as the
// EOF sentinel. That symmetry means the decoder never needs to special-case
// "is this the terminator": it always reads a block-shaped frame and stops
// as soon as a frame's ComprSize is 0.
//
// Grounded on lz4/block.go and flate/gzip.go's manual little-endian field
// appending (appendUint32-style helpers over encoding/binary) rather than a
// generic serialization library — the corpus never reaches for one for a
// handful of fixed-width fields.

func appendU32LE(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func appendU32sLE(dst []byte, vs []uint32) []byte {
	for _, v := range vs {
		dst = appendU32LE(dst, v)
	}
	return dst
}

// readExact drains cb via OpRead until buf is full, returning ErrShortRead
// if the callback reports end-of-stream first.
func readExact(cb Callback, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := cb.Call(OpRead, buf[off:])
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShortRead
		}
		off += n
	}
	return nil
}

func readU32LE(cb Callback) (uint32, error) {
	var b [4]byte
	if err := readExact(cb, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU32sLE(cb Callback, n uint32) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := readU32LE(cb)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// writeHeader writes the stream HEADER: a single u32 BlockSize.
func writeHeader(cb Callback, blockSize uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], blockSize)
	_, err := cb.Call(OpWrite, buf[:])
	return err
}

func readHeader(cb Callback) (uint32, error) {
	return readU32LE(cb)
}

// writeBlock writes one BLOCK frame (or, when lens/offsets are empty, the
// literal-only block that forms the first half of a TERMINATOR). num must
// equal len(lens) == len(offsets); datalens must have num+1 entries.
func writeBlock(cb Callback, lens, offsets, datalens []uint32, literals []byte) error {
	num := len(lens)
	if len(offsets) != num || len(datalens) != num+1 {
		return ErrBadFrame
	}

	var sum uint64
	for _, d := range datalens {
		sum += uint64(d)
	}
	if sum != uint64(len(literals)) {
		return ErrBadFrame
	}

	comprSize := 4 + 4*uint32(num) + 4*uint32(num) + 4*uint32(num+1) + uint32(len(literals))

	header := make([]byte, 0, 8+8*num+4*(num+1))
	header = appendU32LE(header, comprSize)
	header = appendU32LE(header, uint32(num))
	header = appendU32sLE(header, lens)
	header = appendU32sLE(header, offsets)
	header = appendU32sLE(header, datalens)

	if _, err := cb.Call(OpWrite, header); err != nil {
		return err
	}
	if len(literals) > 0 {
		if _, err := cb.Call(OpWrite, literals); err != nil {
			return err
		}
	}
	if _, err := cb.Call(OpFlush, nil); err != nil {
		return err
	}
	return nil
}

// writeEOF writes the final zero-valued ComprSize sentinel that ends the
// stream.
func writeEOF(cb Callback) error {
	var buf [4]byte
	_, err := cb.Call(OpWrite, buf[:])
	return err
}

// decodedBlock holds one parsed BLOCK frame.
type decodedBlock struct {
	lens, offsets, datalens []uint32
	literals                []byte
	eof                     bool
}

// readBlock reads one frame. If the frame's ComprSize is 0, it is the
// stream's EOF sentinel and decodedBlock.eof is true with all other fields
// empty.
func readBlock(cb Callback) (decodedBlock, error) {
	comprSize, err := readU32LE(cb)
	if err != nil {
		return decodedBlock{}, err
	}
	if comprSize == 0 {
		return decodedBlock{eof: true}, nil
	}

	num, err := readU32LE(cb)
	if err != nil {
		return decodedBlock{}, err
	}

	fixed := uint64(4) + uint64(num)*4 + uint64(num)*4 + uint64(num+1)*4
	if fixed > uint64(comprSize) {
		return decodedBlock{}, fmt.Errorf("longrep: %w: num=%d overruns ComprSize=%d", ErrBadFrame, num, comprSize)
	}

	lens, err := readU32sLE(cb, num)
	if err != nil {
		return decodedBlock{}, err
	}
	offsets, err := readU32sLE(cb, num)
	if err != nil {
		return decodedBlock{}, err
	}
	datalens, err := readU32sLE(cb, num+1)
	if err != nil {
		return decodedBlock{}, err
	}

	var sum uint64
	for _, d := range datalens {
		sum += uint64(d)
	}
	litLen := uint64(comprSize) - fixed
	if sum != litLen {
		return decodedBlock{}, fmt.Errorf("longrep: %w: sum(datalens)=%d != literal region %d", ErrBadFrame, sum, litLen)
	}

	literals := make([]byte, litLen)
	if err := readExact(cb, literals); err != nil {
		return decodedBlock{}, err
	}

	return decodedBlock{lens: lens, offsets: offsets, datalens: datalens, literals: literals}, nil
}
