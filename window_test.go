package longrep

import "testing"

type sliceCallback struct {
	data []byte
	pos  int
}

func (c *sliceCallback) Call(op Op, buf []byte) (int, error) {
	switch op {
	case OpRead:
		n := copy(buf, c.data[c.pos:])
		c.pos += n
		return n, nil
	case OpWrite, OpQuasiWrite:
		return len(buf), nil
	case OpFlush:
		return 0, nil
	}
	return 0, nil
}

func TestWindowRefillFillsFromCallback(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 256, MinMatchLen: 32, SmallestLen: 16})
	if err != nil {
		t.Fatal(err)
	}
	w, err := newWindow(d)
	if err != nil {
		t.Fatal(err)
	}

	cb := &sliceCallback{data: make([]byte, 256)}
	for i := range cb.data {
		cb.data[i] = byte(i)
	}

	total := 0
	for {
		n, err := w.refill(cb, total == 0)
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			break
		}
		total += n
		w.commit()
	}
	if total != 256 {
		t.Fatalf("read %d bytes total, want 256", total)
	}
	if !w.ringWrapped() {
		t.Fatal("window should report ringWrapped after filling BlockSize bytes")
	}
}

func TestRingArithmetic(t *testing.T) {
	const size = 100
	if got := ringBack(10, 20, size); got != 90 {
		t.Fatalf("ringBack(10,20,100) = %d, want 90", got)
	}
	if got := ringForward(90, 20, size); got != 10 {
		t.Fatalf("ringForward(90,20,100) = %d, want 10", got)
	}
	if got := ringDist(90, 10, size); got != 20 {
		t.Fatalf("ringDist(90,10,100) = %d, want 20", got)
	}
	if got := ringDist(10, 90, size); got != 80 {
		t.Fatalf("ringDist(10,90,100) = %d, want 80", got)
	}
}
