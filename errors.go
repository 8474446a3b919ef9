package longrep

import "errors"

// Sentinel errors. Callback failures are not sentinels: they are the
// callback's own error, propagated verbatim (wrapped with fmt.Errorf where
// extra context helps), per the collaborator contract in §6.
var (
	// ErrNoMemory is returned when the window, hash index, or a scratch
	// buffer cannot be allocated.
	ErrNoMemory = errors.New("longrep: not enough memory")

	// ErrShortRead is returned when a block frame's ComprSize claims more
	// bytes than the callback actually supplied before end-of-stream.
	ErrShortRead = errors.New("longrep: short read decoding block frame")

	// ErrBadFrame is returned when a frame's internal bookkeeping
	// (num vs. len(lens)/len(offsets)/len(datalens)) is inconsistent.
	ErrBadFrame = errors.New("longrep: malformed block frame")

	// ErrClosed is returned by Writer.Encode or Reader.Decode when called
	// again after it has already returned.
	ErrClosed = errors.New("longrep: use of closed stream")
)
