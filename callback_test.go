package longrep

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewCallbackRead(t *testing.T) {
	cb := NewCallback(strings.NewReader("hello"), nil)
	buf := make([]byte, 5)
	n, err := cb.Call(OpRead, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Fatalf("got n=%d buf=%q", n, buf)
	}

	n, err = cb.Call(OpRead, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 at EOF, got %d", n)
	}
}

func TestNewCallbackPartialReadAtEOF(t *testing.T) {
	cb := NewCallback(strings.NewReader("ab"), nil)
	buf := make([]byte, 5)
	n, err := cb.Call(OpRead, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("got n=%d, want 2", n)
	}
}

func TestNewCallbackWrite(t *testing.T) {
	out := new(bytes.Buffer)
	cb := NewCallback(nil, out)
	if _, err := cb.Call(OpWrite, []byte("data")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "data" {
		t.Fatalf("got %q", out.String())
	}
}

func TestAsReaderAsWriter(t *testing.T) {
	out := new(bytes.Buffer)
	cb := NewCallback(strings.NewReader("roundtrip"), out)

	got, err := io.ReadAll(AsReader(cb))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "roundtrip" {
		t.Fatalf("got %q", got)
	}

	w := AsWriter(cb)
	if _, err := w.Write([]byte("written")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "written" {
		t.Fatalf("got %q", out.String())
	}
}
