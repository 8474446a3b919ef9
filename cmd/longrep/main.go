// Command longrep is a small harness over the longrep package: it encodes
// or decodes a file, optionally layering one of the internal/entropy
// coders on the wire bytes.
//
// Grounded on the teacher's own command-line feel (flag-driven, one verb
// per invocation) rather than any particular cmd/ file, since the
// retrieval pack's example repos skew toward library code; flag is the
// corpus's only CLI parsing dependency anywhere, so that's what this uses
// too.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/x-itec-net/longrep"
	"github.com/x-itec-net/longrep/internal/entropy"
)

func main() {
	decode := flag.Bool("d", false, "decode instead of encode")
	entropyName := flag.String("entropy", entropy.None, "downstream entropy coder: snappy, flate, lz4, or none")
	blockSize := flag.Uint64("blocksize", 64<<20, "window size in bytes (encode only)")
	verbose := flag.Bool("v", false, "log window-wrap activity to stderr")
	flag.Parse()

	if err := run(*decode, *entropyName, uint32(*blockSize), *verbose, flag.Args()); err != nil {
		log.Fatalf("longrep: %v", err)
	}
}

func run(decode bool, entropyName string, blockSize uint32, verbose bool, args []string) error {
	in, out, err := openIO(args)
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	var logger longrep.Logger
	if verbose {
		logger = stderrLogger{}
	}

	if decode {
		return runDecode(in, out, entropyName, logger)
	}
	return runEncode(in, out, entropyName, blockSize, logger)
}

func runEncode(in io.Reader, out io.Writer, entropyName string, blockSize uint32, logger longrep.Logger) error {
	ew, err := entropy.WrapWriter(entropyName, out)
	if err != nil {
		return err
	}

	cb := longrep.NewCallback(in, ew)
	w, err := longrep.NewWriter(cb, longrep.DefaultOptions(blockSize))
	if err != nil {
		return fmt.Errorf("build encoder: %w", err)
	}
	if logger != nil {
		w.SetLogger(logger)
	}

	if err := w.Encode(context.Background()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return ew.Close()
}

func runDecode(in io.Reader, out io.Writer, entropyName string, logger longrep.Logger) error {
	er, err := entropy.WrapReader(entropyName, in)
	if err != nil {
		return err
	}
	defer er.Close()

	cb := longrep.NewCallback(er, out)
	r, err := longrep.NewReader(cb)
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if logger != nil {
		r.SetLogger(logger)
	}

	if err := r.Decode(context.Background()); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func openIO(args []string) (io.ReadCloser, io.WriteCloser, error) {
	in := io.ReadCloser(io.NopCloser(os.Stdin))
	out := io.WriteCloser(nopWriteCloser{os.Stdout})

	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		in = f
	}
	if len(args) > 1 && args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return nil, nil, err
		}
		out = f
	}
	return in, out, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type stderrLogger struct{}

func (stderrLogger) Debugf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
