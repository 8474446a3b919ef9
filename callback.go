package longrep

import (
	"errors"
	"io"
)

// Op identifies which operation a Callback is being asked to perform, per
// the collaborator interface in §6.
type Op int

const (
	// OpRead requests up to len(buf) bytes of input into buf.
	OpRead Op = iota
	// OpWrite requests that buf be written to the output sink.
	OpWrite
	// OpQuasiWrite is like OpWrite, but the caller only wants the data
	// accounted for (e.g. for dry-run size estimation); a Callback that
	// does not distinguish the two may treat it exactly like OpWrite.
	OpQuasiWrite
	// OpFlush requests that any buffered output be flushed downstream. buf
	// is always empty for this op.
	OpFlush
)

func (op Op) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpQuasiWrite:
		return "quasiwrite"
	case OpFlush:
		return "flush"
	default:
		return "unknown"
	}
}

// Callback is the single collaborator interface the core speaks through,
// per §6. It plays both directions: OpRead pulls input, OpWrite/OpQuasiWrite
// push output, OpFlush is advisory. Call returns the number of bytes
// transferred (for OpRead/OpWrite/OpQuasiWrite), 0 for end-of-stream on
// OpRead, or a non-nil error which the core propagates verbatim (wrapped
// with call-site context where that helps debugging).
//
// This is deliberately narrower and more ad hoc than io.Reader/io.Writer:
// it is the literal shape of the archiver-facing collaborator contract that
// §6 specifies. Most callers should not implement it directly — use
// NewCallback to adapt a plain io.Reader/io.Writer pair instead.
type Callback interface {
	Call(op Op, buf []byte) (int, error)
}

// CallbackFunc adapts a function to a Callback.
type CallbackFunc func(op Op, buf []byte) (int, error)

func (f CallbackFunc) Call(op Op, buf []byte) (int, error) { return f(op, buf) }

// NewCallback adapts a plain io.Reader/io.Writer pair to the Callback
// contract. OpRead short-reads are retried until a full read, EOF, or an
// error occurs, matching the common expectation that a "read" op returns
// either the full request or end-of-stream — mirroring the teacher's
// flate.NewWriter/snappy.NewWriter pattern of wrapping a plain io.Writer
// underneath a purpose-built driver.
func NewCallback(r io.Reader, w io.Writer) Callback {
	return CallbackFunc(func(op Op, buf []byte) (int, error) {
		switch op {
		case OpRead:
			if r == nil {
				return 0, errors.New("longrep: callback has no reader")
			}
			n, err := io.ReadFull(r, buf)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if n > 0 {
					return n, nil
				}
				return 0, nil
			}
			if err != nil {
				return n, err
			}
			return n, nil
		case OpWrite, OpQuasiWrite:
			if w == nil {
				return 0, errors.New("longrep: callback has no writer")
			}
			n, err := w.Write(buf)
			return n, err
		case OpFlush:
			if f, ok := w.(flusher); ok {
				return 0, f.Flush()
			}
			return 0, nil
		default:
			return 0, errors.New("longrep: unknown callback op")
		}
	})
}

type flusher interface {
	Flush() error
}

// ioReader and ioWriter give callers an io.Reader/io.Writer view of an
// existing Callback, for code that expects the standard io interfaces.

type ioReader struct {
	cb Callback
}

func (r ioReader) Read(p []byte) (int, error) {
	n, err := r.cb.Call(OpRead, p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

type ioWriter struct {
	cb Callback
}

func (w ioWriter) Write(p []byte) (int, error) {
	return w.cb.Call(OpWrite, p)
}

// AsReader returns an io.Reader view of cb, reading via OpRead.
func AsReader(cb Callback) io.Reader { return ioReader{cb: cb} }

// AsWriter returns an io.Writer view of cb, writing via OpWrite.
func AsWriter(cb Callback) io.Writer { return ioWriter{cb: cb} }
