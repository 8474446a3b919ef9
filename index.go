package longrep

// slot is a direct-mapped hash table entry from §4.2: a packed (position,
// chksum) pair. The low log2(k) bits carry the chksum tag; the remaining
// high bits carry an absolute position already aligned to a k-boundary.
// Zero means empty. §9 asks for this packing to be a small integer type
// with explicit pack/unpack helpers rather than in-line bit twiddling at
// each call site, so the type and its two methods live here instead of
// being folded into hashIndex.
type slot uint32

// pack builds a slot from a k-aligned position and a chksum tag, masking
// pos defensively in case the caller didn't already align it.
func pack(pos, chksum, k uint32) slot {
	return slot((pos &^ (k - 1)) | (chksum & (k - 1)))
}

// unpack splits s back into its recorded position and chksum, given the
// same k it was packed with.
func (s slot) unpack(k uint32) (pos, chksum uint32) {
	mask := k - 1
	return uint32(s) &^ mask, uint32(s) & mask
}

// hashIndex is the direct-mapped hash table from §4.2: an array of slots,
// no chaining, insert-on-collision.
//
// Grounded on the flat `table [maxTableSize]uint32` arrays in the
// teacher's singlehash.go/chain.go/dualhash.go, generalized from a plain
// position to a packed slot per §4.2.
type hashIndex struct {
	slots []slot
	mask  uint32
	k     uint32
}

func newHashIndex(d derived) (*hashIndex, error) {
	if d.hashSize == 0 || d.hashSize&(d.hashSize-1) != 0 {
		return nil, ErrNoMemory
	}
	return &hashIndex{
		slots: make([]slot, d.hashSize),
		mask:  d.hashMask,
		k:     d.k,
	}, nil
}

// lookup returns the raw packed slot value at hasharr[h & mask].
func (x *hashIndex) lookup(h uint32) slot {
	return x.slots[h&x.mask]
}

// store packs (pos, chksum(h)) and writes it into the slot for h. The
// caller is expected to have already aligned pos to a k-boundary (§4.2).
func (x *hashIndex) store(h, pos uint32) {
	x.slots[h&x.mask] = pack(pos, chksumBits(h, x.k), x.k)
}

func (x *hashIndex) reset() {
	for i := range x.slots {
		x.slots[i] = 0
	}
}
