package longrep

import (
	"context"
	"fmt"
)

// Reader drives the decode side of §4.6: it rebuilds the output byte
// stream from BLOCK frames, maintaining a BlockSize-byte ring buffer so
// match offsets can reach back across block boundaries exactly as far as
// the encoder's window allowed.
//
// The ring is split across two slices, data0 and data1, rather than one.
// On most inputs data1 is empty and it behaves like a single buffer; if
// tryAlloc reports that a single BlockSize-byte allocation failed,
// allocRingBuffer falls back to two smaller allocations.
//
// Grounded on WoozyMasta-lzo's copy.go: an offset less than the length
// being copied means source and destination overlap, and the copy must
// proceed strictly byte by byte (that's how the RLE "repeat the last N
// bytes forever" idiom falls out of a single LZ77 match record) — adapted
// here to ring-wrapped addressing across the data0/data1 split.
type Reader struct {
	cb        Callback
	blockSize uint32

	data0, data1 []byte
	split        uint32 // len(data0); data1 holds [split, blockSize)
	pos          uint32 // ring position of the next byte to produce
	produced     uint64 // total bytes written so far, capped at blockSize

	logger Logger
	done   bool
}

// NewReader reads the stream HEADER from cb and allocates a ring buffer
// sized to its BlockSize.
func NewReader(cb Callback) (*Reader, error) {
	blockSize, err := readHeader(cb)
	if err != nil {
		return nil, fmt.Errorf("longrep: read header: %w", err)
	}
	if blockSize == 0 {
		return nil, fmt.Errorf("longrep: %w: zero BlockSize in header", ErrBadFrame)
	}
	data0, data1, split, err := allocRingBuffer(blockSize)
	if err != nil {
		return nil, err
	}
	return &Reader{
		cb:        cb,
		blockSize: blockSize,
		data0:     data0,
		data1:     data1,
		split:     split,
		logger:    noopLogger{},
	}, nil
}

// SetLogger installs l as r's debug collaborator; the default is a no-op.
func (r *Reader) SetLogger(l Logger) {
	if l != nil {
		r.logger = l
	}
}

// Decode reads BLOCK frames from cb via OpRead and writes the reconstructed
// byte stream through OpWrite until the TERMINATOR's EOF sentinel, then
// releases the Reader's buffers. ctx is checked once per frame.
func (r *Reader) Decode(ctx context.Context) error {
	if r.done {
		return ErrClosed
	}
	defer r.release()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		blk, err := readBlock(r.cb)
		if err != nil {
			return fmt.Errorf("longrep: read block: %w", err)
		}
		if blk.eof {
			return nil
		}
		if err := r.applyBlock(blk); err != nil {
			return err
		}
	}
}

func (r *Reader) applyBlock(blk decodedBlock) error {
	num := len(blk.lens)
	if len(blk.datalens) != num+1 {
		return fmt.Errorf("longrep: %w: datalens count", ErrBadFrame)
	}

	cursor := 0
	for j := 0; j < num; j++ {
		if err := r.emitLiteral(blk.literals, &cursor, blk.datalens[j]); err != nil {
			return err
		}
		if err := r.copyMatch(blk.lens[j], blk.offsets[j]); err != nil {
			return err
		}
	}
	return r.emitLiteral(blk.literals, &cursor, blk.datalens[num])
}

// emitLiteral writes the next n bytes of literals (starting at *cursor) to
// the output and deposits them in the ring buffer.
func (r *Reader) emitLiteral(literals []byte, cursor *int, n uint32) error {
	if n == 0 {
		return nil
	}
	data := literals[*cursor : *cursor+int(n)]
	*cursor += int(n)

	if _, err := r.cb.Call(OpWrite, data); err != nil {
		return err
	}
	for _, b := range data {
		r.setByteAndAdvance(b)
	}
	return nil
}

// copyMatch reconstructs a length-byte run copied from offset bytes behind
// the current output position. Following copyBackRef's split: offset >=
// length means source and destination cannot overlap, so the run is built
// with copy() (ringRead/ringWrite, ring- and split-aware); offset < length
// is the genuine-overlap RLE case ("repeat the tail") and must still be
// produced byte by byte, interleaving each read with the write that makes
// it visible to the next iteration.
func (r *Reader) copyMatch(length, offset uint32) error {
	if offset == 0 || offset > r.blockSize {
		return fmt.Errorf("longrep: %w: match offset %d exceeds BlockSize %d", ErrBadFrame, offset, r.blockSize)
	}
	if uint64(offset) > r.produced {
		return fmt.Errorf("longrep: %w: match offset %d reaches before any of the %d bytes produced so far", ErrBadFrame, offset, r.produced)
	}
	srcPos := ringBack(r.pos, offset, r.blockSize)

	if offset >= length {
		scratch := make([]byte, length)
		r.ringRead(srcPos, scratch)
		if _, err := r.cb.Call(OpWrite, scratch); err != nil {
			return err
		}
		r.ringWrite(scratch)
		return nil
	}

	scratch := make([]byte, length)
	for j := range scratch {
		b := r.byteAt(srcPos)
		scratch[j] = b
		r.setByteAndAdvance(b)
		srcPos = ringForward(srcPos, 1, r.blockSize)
	}
	_, err := r.cb.Call(OpWrite, scratch)
	return err
}

// ringSegment returns the tail of whichever of data0/data1 holds pos,
// truncated wherever the slice itself ends — which is exactly where either
// the data0/data1 split or the blockSize wrap falls. Callers loop over
// successive segments to cross both boundaries uniformly.
func (r *Reader) ringSegment(pos uint32) []byte {
	if pos < r.split {
		return r.data0[pos:]
	}
	return r.data1[pos-r.split:]
}

// ringRead copies len(dst) bytes starting at ring position pos into dst.
func (r *Reader) ringRead(pos uint32, dst []byte) {
	for len(dst) > 0 {
		seg := r.ringSegment(pos)
		n := len(dst)
		if n > len(seg) {
			n = len(seg)
		}
		copy(dst[:n], seg[:n])
		dst = dst[n:]
		pos = ringForward(pos, uint32(n), r.blockSize)
	}
}

// ringWrite copies src into the ring starting at r.pos, advancing r.pos.
func (r *Reader) ringWrite(src []byte) {
	for len(src) > 0 {
		seg := r.ringSegment(r.pos)
		n := len(src)
		if n > len(seg) {
			n = len(seg)
		}
		copy(seg[:n], src[:n])
		src = src[n:]
		r.pos = ringForward(r.pos, uint32(n), r.blockSize)
		r.advanceProduced(uint32(n))
	}
}

// advanceProduced records n more bytes written to the ring, saturating at
// blockSize: once a full lap has been produced, every position in the ring
// holds real data and offset validation no longer needs to track beyond it.
func (r *Reader) advanceProduced(n uint32) {
	r.produced += uint64(n)
	if r.produced > uint64(r.blockSize) {
		r.produced = uint64(r.blockSize)
	}
}

func (r *Reader) byteAt(pos uint32) byte {
	if pos < r.split {
		return r.data0[pos]
	}
	return r.data1[pos-r.split]
}

func (r *Reader) setByteAndAdvance(v byte) {
	if r.pos < r.split {
		r.data0[r.pos] = v
	} else {
		r.data1[r.pos-r.split] = v
	}
	r.pos++
	if r.pos >= r.blockSize {
		r.pos = 0
	}
	r.advanceProduced(1)
}

func (r *Reader) release() {
	r.done = true
	r.data0 = nil
	r.data1 = nil
}

// newReaderWithSplit builds a Reader with data0/data1 already split at
// split, bypassing allocRingBuffer's allocate-then-fall-back path. It does
// not read the stream HEADER itself — callers that bypass NewReader this
// way must consume it from cb first. Exists so tests can exercise the
// data0/data1 seam deterministically instead of only on a genuine
// single-allocation failure.
func newReaderWithSplit(cb Callback, blockSize, split uint32) (*Reader, error) {
	if split == 0 || split >= blockSize {
		return nil, fmt.Errorf("longrep: invalid forced split %d for BlockSize %d", split, blockSize)
	}
	return &Reader{
		cb:        cb,
		blockSize: blockSize,
		data0:     make([]byte, split),
		data1:     make([]byte, blockSize-split),
		split:     split,
		logger:    noopLogger{},
	}, nil
}

// allocRingBuffer allocates a blockSize-byte ring buffer as one contiguous
// slice when possible. If that single allocation fails, it falls back to
// two smaller slices, shrinking the first by 1 MiB steps until both halves
// fit.
func allocRingBuffer(blockSize uint32) (data0, data1 []byte, split uint32, err error) {
	if b, ok := tryAlloc(blockSize); ok {
		return b, nil, blockSize, nil
	}

	const step = 1 << 20
	for half := blockSize - blockSize%step; half > 0; half -= step {
		b0, ok := tryAlloc(half)
		if !ok {
			continue
		}
		b1, ok := tryAlloc(blockSize - half)
		if !ok {
			continue
		}
		return b0, b1, half, nil
	}
	return nil, nil, 0, ErrNoMemory
}

// tryAlloc attempts to allocate an n-byte slice, reporting failure when make
// panics. Running out of memory is a fatal runtime error in Go, not a
// panic, so an allocation the system cannot satisfy is not reported here
// and still ends the process.
func tryAlloc(n uint32) (b []byte, ok bool) {
	defer func() {
		if recover() != nil {
			b, ok = nil, false
		}
	}()
	b = make([]byte, n)
	return b, true
}
