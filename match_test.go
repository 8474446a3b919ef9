package longrep

import "testing"

func newTestWindow(t *testing.T, buf []byte, blockSize, committed uint32) *window {
	t.Helper()
	full := make([]byte, blockSize)
	copy(full, buf)
	return &window{buf: full, blockSize: blockSize, base: committed, size: 0}
}

func TestVerifyCandidateAcceptsExactRepeat(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 64, MinMatchLen: 4, SmallestLen: 4, Barrier: 32})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("0123456789" + "abcdefghij" + "0123456789" + "ABCDEFGHIJ")
	w := newTestWindow(t, data, 64, uint32(len(data)))

	rec, ok := verifyCandidate(w, d, 20, 0, 0)
	if !ok {
		t.Fatal("expected match to be accepted")
	}
	if rec.start != 20 || rec.end != 30 || rec.offset != 20 {
		t.Fatalf("got %+v, want start=20 end=30 offset=20", rec)
	}
}

func TestVerifyCandidateRejectsFutureCandidate(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 64, MinMatchLen: 4, SmallestLen: 4, Barrier: 32})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("0123456789abcdefghij0123456789ABCDEFGHIJ")
	w := newTestWindow(t, data, 64, uint32(len(data)))

	// match sits at or after i and before the committed tail end: stale in
	// logical time, must be rejected outright.
	if _, ok := verifyCandidate(w, d, 10, 15, 0); ok {
		t.Fatal("expected candidate ahead of the anchor to be rejected")
	}
}

func TestVerifyCandidateRejectsBelowThreshold(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 64, MinMatchLen: 20, SmallestLen: 20, Barrier: 32})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("0123456789" + "abcdefghij" + "0123456789" + "ABCDEFGHIJ")
	w := newTestWindow(t, data, 64, uint32(len(data)))

	// the repeated run is only 10 bytes long, below MinMatchLen=20.
	if _, ok := verifyCandidate(w, d, 20, 0, 0); ok {
		t.Fatal("expected short match to be rejected")
	}
}

func TestVerifyCandidateUsesSmallestLenBeyondBarrier(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 64, MinMatchLen: 20, SmallestLen: 4, Barrier: 15})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("0123456789" + "abcdefghij" + "0123456789" + "ABCDEFGHIJ")
	w := newTestWindow(t, data, 64, uint32(len(data)))

	// distance 20 >= Barrier 15, so SmallestLen (4) applies instead of
	// MinMatchLen (20); the 10-byte run now clears the threshold.
	rec, ok := verifyCandidate(w, d, 20, 0, 0)
	if !ok {
		t.Fatal("expected match accepted under SmallestLen")
	}
	if rec.end-rec.start != 10 {
		t.Fatalf("length = %d, want 10", rec.end-rec.start)
	}
}
