package longrep

import "math/bits"

// rollingHash maintains a multiplicative polynomial hash over a fixed
// window of l bytes, per §4.1. When its anchor is at absolute position i,
// state equals the polynomial hash of the l bytes immediately preceding i.
//
// Grounded on the small owning-struct-plus-helpers shape of hash4/hash8 in
// the teacher's chain.go and dualhash.go, generalized from a fixed 4- or
// 8-byte hash to an arbitrary power-of-two window length.
type rollingHash struct {
	state       uint32
	l           uint32
	powerPrimeL uint32
}

func newRollingHash(d derived) *rollingHash {
	return &rollingHash{l: d.l, powerPrimeL: d.powerPrimeL}
}

// shift advances the window by one byte: out leaves the window, in enters
// it. Arithmetic wraps modulo 2^32, which is load-bearing (§3, §9).
func (h *rollingHash) shift(out, in byte) {
	h.state = h.state*primeMul + uint32(in) - uint32(out)*h.powerPrimeL
}

// prime folds in the first l bytes of window, establishing the hash state
// for an anchor at position l (i.e. the hash of window[0:l)).
func (h *rollingHash) prime(window []byte) {
	h.state = 0
	for _, b := range window {
		h.shift(0, b)
	}
}

// chksumBits extracts the chksum tag from a hash state: log2(k) bits
// starting at bit 28, wrapping around the 32-bit word when log2(k) > 4.
// Rotating left by 4 moves bit 28 to bit 0, so a plain low-bits mask after
// the rotation reproduces exactly the "bits [28..28+log2(k))" window §4.1
// describes, including the wraparound.
func chksumBits(state, k uint32) uint32 {
	return bits.RotateLeft32(state, 4) & (k - 1)
}
