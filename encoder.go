package longrep

import (
	"context"
	"fmt"
)

// Writer drives the encode side of §4.5: it owns the window, the rolling
// hash, and the hash index, and turns a Callback's input into the BLOCK
// frame stream frame.go knows how to write.
//
// Grounded on the teacher's pack.Writer{Dest, MatchFinder, Encoder,
// BlockSize} pattern referenced from flate/writer.go and snappy/encode.go
// (that type's own source was not present in the retrieval pack; its shape
// here is inferred from its call sites), generalized to this package's
// single fixed algorithm rather than a pluggable MatchFinder/Encoder pair.
type Writer struct {
	cb     Callback
	opts   Options
	d      derived
	win    *window
	idx    *hashIndex
	rh     *rollingHash
	logger Logger

	lastI     uint32
	lastMatch uint32

	lens, offsets, datalens []uint32
	literalBuf              []byte

	done bool
}

// NewWriter returns a Writer that will encode input pulled through cb's
// OpRead and write BLOCK frames through OpWrite/OpFlush, using opts (see
// DefaultOptions).
func NewWriter(cb Callback, opts Options) (*Writer, error) {
	d, err := deriveParams(opts)
	if err != nil {
		return nil, err
	}
	win, err := newWindow(d)
	if err != nil {
		return nil, err
	}
	idx, err := newHashIndex(d)
	if err != nil {
		return nil, err
	}
	return &Writer{
		cb:     cb,
		opts:   opts,
		d:      d,
		win:    win,
		idx:    idx,
		rh:     newRollingHash(d),
		logger: noopLogger{},
	}, nil
}

// SetLogger installs l as w's debug collaborator (§9); the default is a
// no-op.
func (w *Writer) SetLogger(l Logger) {
	if l != nil {
		w.logger = l
	}
}

// Encode reads cb to end-of-stream, emitting the HEADER, a run of BLOCK
// frames, and the TERMINATOR. It returns on the first error from cb, on
// ctx's cancellation (checked once per refill — there is no suspension
// point inside a single block's scan, per §5), or from a malformed
// internal invariant, and releases the Writer's buffers before returning
// regardless of outcome.
func (w *Writer) Encode(ctx context.Context) error {
	if w.done {
		return ErrClosed
	}
	defer w.release()

	if err := writeHeader(w.cb, w.d.blockSize); err != nil {
		return fmt.Errorf("longrep: write header: %w", err)
	}

	primed := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := w.win.refill(w.cb, !primed)
		if err != nil {
			return fmt.Errorf("longrep: refill: %w", err)
		}
		if n == 0 {
			return w.flushTerminator()
		}

		if !primed {
			if w.win.dataEnd() < w.d.l {
				// Not enough bytes yet to prime the rolling hash; commit
				// what we have and keep pulling more (or hit EOF above).
				w.win.commit()
				continue
			}
			w.rh.prime(w.win.buf[:w.d.l])
			w.lastI = w.d.l
			primed = true
		}

		w.scanBlock()

		// If this lap is about to complete, the scan's lookahead margin
		// (scanEndWalk) has left the final bytes unscanned, and the wrap
		// below would otherwise reset lastI/lastMatch before those bytes
		// ever get flushed. Since there's no next same-lap block to defer
		// them to, treat them as literal now instead of losing them.
		if w.win.dataEnd() >= w.d.blockSize {
			w.lastI = w.win.dataEnd()
		}

		if err := w.flushBlock(); err != nil {
			return fmt.Errorf("longrep: flush block: %w", err)
		}
		w.win.commit()

		if w.win.ringWrapped() {
			w.logger.Debugf("longrep: window wrapped at base=%d", w.win.base)
			// The forced flush above advanced lastI to dataEnd without
			// rolling the hash across the skipped margin bytes, so rather
			// than trust that the incremental state is caught up, reprime
			// directly from the last L physical bytes of the lap — the
			// same bytes a post-wrap anchor at position 0 needs.
			w.rh.prime(w.win.buf[w.d.blockSize-w.d.l : w.d.blockSize])
			w.win.wrap()
			w.lastI = 0
			w.lastMatch = 0
		}
	}
}

// scanEndWalk returns the furthest position scanBlock may walk to without
// reading bytes the rolling hash's forward lookahead would run past the
// committed+pending data, per §4.5's walk bound. It never retreats below
// w.lastI.
func (w *Writer) scanEndWalk() uint32 {
	end := w.win.dataEnd()
	margin := 2*w.d.l + 1
	if end < margin {
		return w.lastI
	}
	endWalk := end - margin
	if endWalk < w.lastI {
		return w.lastI
	}
	return endWalk
}

// scanBlock walks positions [lastI, scanEndWalk()), probing the hash index
// at the rate §4.3 describes and rolling the hash forward one byte at a
// time. It is the flattened form of the spec's "per-L-block probe the first
// test positions, skip-advance the rest": since L, k, and test are fixed
// for the whole run, "should i probe" reduces to the single predicate
// below, and the existing "don't re-probe inside the just-accepted match"
// rule (i >= lastMatch) already subsumes the skip-ahead without an explicit
// jump.
func (w *Writer) scanBlock() {
	endWalk := w.scanEndWalk()
	L, k, size := w.d.l, w.d.k, w.d.blockSize

	test := k * w.d.amplifier
	if test > L {
		test = L
	}

	i := w.lastI
	for i < endWalk {
		h := w.rh.state
		if (i%L) < test && i >= w.lastMatch {
			if s := w.idx.lookup(h); s != 0 {
				pos, chk := s.unpack(k)
				if chk == chksumBits(h, k) {
					if rec, ok := verifyCandidate(w.win, w.d, i, pos, w.lastMatch); ok {
						w.emitMatch(rec.start, rec.end, rec.offset)
					}
				}
			}
		}
		if i%k == 0 {
			w.idx.store(h, i)
		}
		w.rh.shift(w.win.byteAt(ringBack(i, L, size)), w.win.byteAt(i))
		i++
	}
	w.lastI = i
}

// emitLiteralUpTo records the literal bytes [lastMatch, pos) — or a
// zero-length run if pos has already been passed — as the next datalens
// entry, copying the bytes into literalBuf since the window's buffer is
// only guaranteed stable for the lifetime of the current block.
func (w *Writer) emitLiteralUpTo(pos uint32) {
	if pos <= w.lastMatch {
		w.datalens = append(w.datalens, 0)
		return
	}
	w.literalBuf = append(w.literalBuf, w.win.buf[w.lastMatch:pos]...)
	w.datalens = append(w.datalens, pos-w.lastMatch)
}

func (w *Writer) emitMatch(start, end, offset uint32) {
	w.emitLiteralUpTo(start)
	w.lens = append(w.lens, end-start)
	w.offsets = append(w.offsets, offset)
	w.lastMatch = end
}

// flushBlock closes out the current block: the trailing literal run from
// lastMatch to lastI, then one writeBlock call, then accumulators reset for
// the next block.
func (w *Writer) flushBlock() error {
	w.emitLiteralUpTo(w.lastI)
	if w.lastI > w.lastMatch {
		w.lastMatch = w.lastI
	}

	err := writeBlock(w.cb, w.lens, w.offsets, w.datalens, w.literalBuf)

	w.lens = w.lens[:0]
	w.offsets = w.offsets[:0]
	w.datalens = w.datalens[:0]
	w.literalBuf = w.literalBuf[:0]

	return err
}

// flushTerminator emits whatever bytes remain committed past lastMatch as
// the TERMINATOR's literal run, then the EOF sentinel.
func (w *Writer) flushTerminator() error {
	end := w.win.dataEnd()
	if end > w.lastMatch {
		w.literalBuf = append(w.literalBuf, w.win.buf[w.lastMatch:end]...)
	}
	datalens := []uint32{uint32(len(w.literalBuf))}
	if err := writeBlock(w.cb, nil, nil, datalens, w.literalBuf); err != nil {
		return fmt.Errorf("longrep: write terminator: %w", err)
	}
	if err := writeEOF(w.cb); err != nil {
		return fmt.Errorf("longrep: write eof: %w", err)
	}
	return nil
}

// release drops the Writer's buffers so they can be collected promptly,
// per §5's "release resources on every exit path."
func (w *Writer) release() {
	w.done = true
	w.win = nil
	w.idx = nil
	w.rh = nil
	w.lens = nil
	w.offsets = nil
	w.datalens = nil
	w.literalBuf = nil
}
