package longrep

import "testing"

func TestDeriveParamsClampsSmallestLen(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 1 << 20, MinMatchLen: 64, SmallestLen: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if d.smallestLen != d.minMatchLen {
		t.Fatalf("smallestLen = %d, want clamped to minMatchLen %d", d.smallestLen, d.minMatchLen)
	}
}

func TestDeriveParamsZeroBlockSize(t *testing.T) {
	if _, err := deriveParams(Options{}); err != ErrNoMemory {
		t.Fatalf("got %v, want ErrNoMemory", err)
	}
}

func TestDeriveParamsHashSizeIsPowerOfTwo(t *testing.T) {
	for _, bs := range []uint32{1 << 16, 1 << 20, 1 << 24} {
		d, err := deriveParams(Options{BlockSize: bs, MinMatchLen: 256, SmallestLen: 128})
		if err != nil {
			t.Fatal(err)
		}
		if d.hashSize&(d.hashSize-1) != 0 {
			t.Fatalf("blockSize %d: hashSize %d is not a power of two", bs, d.hashSize)
		}
		if d.hashSize*4 > bs/4+4 {
			t.Fatalf("blockSize %d: hashSize %d exceeds ~1/4 byte budget", bs, d.hashSize)
		}
	}
}

func TestDeriveParamsHonorsHashBits(t *testing.T) {
	d, err := deriveParams(Options{BlockSize: 1 << 20, MinMatchLen: 256, HashBits: 10})
	if err != nil {
		t.Fatal(err)
	}
	if d.hashSize != 1<<10 {
		t.Fatalf("hashSize = %d, want %d", d.hashSize, 1<<10)
	}
}

func TestRoundUpFloorPow2(t *testing.T) {
	cases := []struct{ in, up, down uint32 }{
		{0, 1, 1},
		{1, 1, 1},
		{2, 2, 2},
		{3, 4, 2},
		{1023, 1024, 512},
		{1024, 1024, 1024},
	}
	for _, c := range cases {
		if got := roundUpPow2(c.in); got != c.up {
			t.Errorf("roundUpPow2(%d) = %d, want %d", c.in, got, c.up)
		}
		if got := floorPow2(c.in); got != c.down {
			t.Errorf("floorPow2(%d) = %d, want %d", c.in, got, c.down)
		}
	}
}

func TestIsqrt(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 1, 3: 1, 4: 2, 15: 3, 16: 4, 1_000_000: 1000}
	for in, want := range cases {
		if got := isqrt(in); got != want {
			t.Errorf("isqrt(%d) = %d, want %d", in, got, want)
		}
	}
}
