package longrep

import "math/bits"

// maxRead bounds how much a single refill pulls from the callback, per §4.5
// ("MAX_READ"). It is a constant of the design, not a tunable: FreeArc-style
// rep codecs use a fixed 8 MiB priming/refill cap regardless of BlockSize.
const maxRead = 8 << 20

// primeMul is PRIME from §3: the rolling hash's multiplicative constant.
const primeMul uint32 = 153191

// Options holds the tunables a collaborator surfaces to the core, per §6.
// The core only ever reads Options through deriveParams, which validates
// and clamps it once per Writer.
type Options struct {
	// BlockSize is the size of the sliding window buffer, and the modulus
	// for all match offsets. Typically 16 MiB .. 2 GiB.
	BlockSize uint32

	// MinMatchLen is the minimum accepted match length for offsets below
	// Barrier.
	MinMatchLen uint32

	// Barrier separates "near" matches (subject to MinMatchLen) from "far"
	// matches (subject to SmallestLen).
	Barrier uint32

	// SmallestLen is the minimum accepted match length for offsets at or
	// beyond Barrier. Must be <= MinMatchLen; larger values are clamped.
	SmallestLen uint32

	// HashBits sizes the hash index as 2^HashBits slots, bounded like the
	// default to at least 16 and at most roundUpPow2(BlockSize/16) slots.
	// 0 selects the default derived from BlockSize and k (§3).
	HashBits uint32

	// Amplifier multiplies the per-L-block probe count. 1 is the baseline
	// algorithm; higher values trade speed for ratio. Must be >= 1.
	Amplifier uint32

	// MinCompression is informational only; the core does not enforce it.
	MinCompression uint32
}

// DefaultOptions returns reasonable tunables for a blockSize-byte window,
// mirroring typical FreeArc "rep" defaults.
func DefaultOptions(blockSize uint32) Options {
	return Options{
		BlockSize:   blockSize,
		MinMatchLen: 1024,
		Barrier:     blockSize / 4,
		SmallestLen: 128,
		Amplifier:   1,
	}
}

// derived holds the parameters computed once from Options, per §3 and §4.
type derived struct {
	l            uint32 // L: rolling hash window length
	powerPrimeL  uint32 // PRIME^L mod 2^32
	k            uint32 // indexing/lookup stride, power of two
	hashSize     uint32 // number of 32-bit slots
	hashMask     uint32
	minMatchLen  uint32
	smallestLen  uint32
	barrier      uint32
	amplifier    uint32
	blockSize    uint32
}

// roundUpPow2 returns the smallest power of two >= n (1 if n == 0).
func roundUpPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len32(n-1)
}

// floorPow2 returns the largest power of two <= n (1 if n == 0).
func floorPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << (bits.Len32(n) - 1)
}

// isqrt returns floor(sqrt(n)) for n <= 2^32-1.
func isqrt(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	x := n
	y := x/2 + x%2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// deriveParams validates opts (clamping SmallestLen per §7) and computes
// the fixed algorithm parameters from it.
func deriveParams(opts Options) (derived, error) {
	if opts.BlockSize == 0 {
		return derived{}, ErrNoMemory
	}
	if opts.Amplifier == 0 {
		opts.Amplifier = 1
	}
	if opts.SmallestLen > opts.MinMatchLen {
		opts.SmallestLen = opts.MinMatchLen
	}
	if opts.SmallestLen == 0 {
		opts.SmallestLen = opts.MinMatchLen
	}

	l := roundUpPow2(opts.SmallestLen / 2)
	if l < 2 {
		l = 2
	}
	k := floorPow2(isqrt(l))
	if k < 1 {
		k = 1
	}

	var hashSize uint32
	if opts.HashBits != 0 {
		hashSize = 1 << opts.HashBits
	} else {
		kDiv := k
		if kDiv < 16 {
			kDiv = 16
		}
		hashSize = roundUpPow2(opts.BlockSize*2/3) / kDiv
		hashSize = roundUpPow2(hashSize)
	}
	// Bound at ~1/4 of the window buffer's bytes; HashSize counts 4-byte
	// slots, so the byte budget is hashSize*4 <= BlockSize/4.
	maxSlots := roundUpPow2(opts.BlockSize / 16)
	if hashSize > maxSlots {
		hashSize = maxSlots
	}
	if hashSize < 16 {
		hashSize = 16
	}

	return derived{
		l:           l,
		powerPrimeL: powPrimeL(l),
		k:           k,
		hashSize:    hashSize,
		hashMask:    hashSize - 1,
		minMatchLen: opts.MinMatchLen,
		smallestLen: opts.SmallestLen,
		barrier:     opts.Barrier,
		amplifier:   opts.Amplifier,
		blockSize:   opts.BlockSize,
	}, nil
}

// powPrimeL computes PRIME^l mod 2^32, relying on uint32 wraparound.
func powPrimeL(l uint32) uint32 {
	var p uint32 = 1
	for i := uint32(0); i < l; i++ {
		p *= primeMul
	}
	return p
}
