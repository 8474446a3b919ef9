package longrep

// window is the sliding window manager from §3/§4.5: a single linear
// buffer of BlockSize bytes treated as a logical ring, refilled from a
// Callback up to min(BlockSize/8, MAX_READ) bytes at a time once primed
// (§4.5's per-refill detail governs here; §2's one-line "1/16" summary is
// the looser of the two, see DESIGN.md).
//
// Positions i and match handled by the rest of the package are always
// addresses within [0, blockSize): the buffer is never physically copied
// to simulate the ring (§9 "Ring without copying"); instead base resets to
// 0 when a lap completes, and new refills simply overwrite the start of
// the buffer while byte lookups and distance math stay ring-aware.
//
// Grounded on funlz's Write/compress driver (absolute upos/wpos counters
// advancing modulo a fixed buffer, reset only at an explicit wrap point)
// and on WoozyMasta-lzo/sliding_window.go's insertPos/scanPos style of
// keeping ring bookkeeping as plain counters rather than pointer
// arithmetic.
type window struct {
	buf       []byte
	blockSize uint32

	base uint32 // bytes already fully walked/committed in the current lap
	size uint32 // bytes added by the most recent refill, not yet walked
}

func newWindow(d derived) (*window, error) {
	if d.blockSize == 0 {
		return nil, ErrNoMemory
	}
	return &window{
		buf:       make([]byte, d.blockSize),
		blockSize: d.blockSize,
	}, nil
}

// dataEnd is the absolute offset one past the last valid byte currently in
// the window.
func (w *window) dataEnd() uint32 { return w.base + w.size }

// commit folds the most recent refill's bytes into the committed region,
// called once the driver has finished walking them.
func (w *window) commit() {
	w.base += w.size
	w.size = 0
}

// ringWrapped reports whether the window has filled to BlockSize and must
// wrap before another refill (§4.5: "When Base == BlockSize, reset...").
func (w *window) ringWrapped() bool {
	return w.base >= w.blockSize
}

// wrap resets the window to the start of a new lap. The index is left
// intact by design (§4.5, §9): stale entries remain usable as long as the
// ring-aware bounds checks in the verifier still consider them live.
func (w *window) wrap() {
	w.base = 0
	w.size = 0
}

// refill reads up to cap bytes from cb into the window just past the
// currently committed+pending region. first selects the MAX_READ priming
// cap; later refills are limited to BlockSize/8 as well as MAX_READ.
func (w *window) refill(cb Callback, first bool) (int, error) {
	start := w.base + w.size
	if start >= w.blockSize {
		return 0, nil
	}
	room := w.blockSize - start
	readCap := uint32(maxRead)
	if !first {
		step := w.blockSize / 8
		if step == 0 {
			step = 1
		}
		if step < readCap {
			readCap = step
		}
	}
	if room < readCap {
		readCap = room
	}
	n, err := cb.Call(OpRead, w.buf[start:start+readCap])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrShortRead
	}
	w.size += uint32(n)
	return n, nil
}

// byteAt returns the byte at absolute position pos, which must already lie
// within [0, blockSize).
func (w *window) byteAt(pos uint32) byte {
	return w.buf[pos]
}

// ringBack returns (pos - delta) mod size, for delta <= size. Used to
// address the byte leaving the rolling hash's window, which may sit in the
// previous lap's still-physically-present tail just after a wrap.
func ringBack(pos, delta, size uint32) uint32 {
	if pos >= delta {
		return pos - delta
	}
	return size - (delta - pos)
}

// ringForward returns (pos + delta) mod size.
func ringForward(pos, delta, size uint32) uint32 {
	return (pos + delta) % size
}

// ringDist returns the forward distance from 'from' to 'to', wrapping at
// size: the number of steps to add to 'from' to reach 'to'.
func ringDist(from, to, size uint32) uint32 {
	if to >= from {
		return to - from
	}
	return size - from + to
}
