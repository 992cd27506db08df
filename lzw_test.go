package animgif

import "testing"

func TestLZWEncodeWritesMinCodeSizeByte(t *testing.T) {
	var dst byteSliceWriter
	lzwEncode(&dst, []byte{0, 1, 0, 1, 0, 1}, 2)

	got := dst.buf.Bytes()
	if len(got) == 0 {
		t.Fatal("expected non-empty output")
	}
	if got[0] != 2 {
		t.Fatalf("expected leading min-code-size byte 2, got %d", got[0])
	}
	if got[len(got)-1] != 0 {
		t.Fatalf("expected trailing zero-length sub-block, got %#x", got[len(got)-1])
	}
}

func TestLZWEncodeEmptyPixels(t *testing.T) {
	var dst byteSliceWriter
	lzwEncode(&dst, nil, 2)

	got := dst.buf.Bytes()
	// min-code-size byte, at least one data sub-block (clear+eof codes), terminator.
	if len(got) < 3 {
		t.Fatalf("expected clear+eof to still produce output, got %v", got)
	}
	if got[0] != 2 {
		t.Fatalf("expected min-code-size byte 2, got %d", got[0])
	}
	if got[len(got)-1] != 0 {
		t.Fatalf("expected trailing terminator, got %#x", got[len(got)-1])
	}
}

func TestLZWEncodeClampsMinCodeSize(t *testing.T) {
	var dst byteSliceWriter
	lzwEncode(&dst, []byte{0}, 1)

	got := dst.buf.Bytes()
	if got[0] != 2 {
		t.Fatalf("expected min code size clamped to 2, got %d", got[0])
	}
}

func TestLZWEncodeHandlesRepeatedRunsPastDictionaryLimit(t *testing.T) {
	// Pseudo-random symbols rarely repeat a (prefix, symbol) pair, so nearly
	// every pixel adds a dictionary entry: 8192 of them force the code width
	// from 9 up to 12 bits and overflow the 4096-entry table at least once,
	// without panicking or producing a truncated stream.
	pixels := make([]byte, 8192)
	x := uint32(1)
	for i := range pixels {
		x = x*1103515245 + 12345
		pixels[i] = byte(x >> 16)
	}

	var dst byteSliceWriter
	lzwEncode(&dst, pixels, 8)

	got := dst.buf.Bytes()
	if got[0] != 8 {
		t.Fatalf("expected min code size 8, got %d", got[0])
	}
	if got[len(got)-1] != 0 {
		t.Fatalf("expected trailing terminator, got %#x", got[len(got)-1])
	}
}

func TestMaxCodeFor(t *testing.T) {
	cases := map[int]int{9: 511, 10: 1023, 12: 4095}
	for bits, want := range cases {
		if got := maxCodeFor(bits); got != want {
			t.Errorf("maxCodeFor(%d) = %d, want %d", bits, got, want)
		}
	}
}
