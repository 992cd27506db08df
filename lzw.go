package animgif

import "io"

// lzw.go implements the GIF-flavored variable-width LZW compressor, a
// straight line descendant of the classic GIFCOMPR.C algorithm: a hash
// table keyed by (prefix_code, next_symbol) stands in for the dictionary,
// addressed by hash instead of a map[struct{...}]int, the way every GIF
// encoder in this lineage has done it since the original C implementation.

const (
	maxLZWBits  = 12
	lzwHashSize = 5003 // 80% occupancy, per GIFCOMPR.C
)

func maxCodeFor(nBits int) int {
	return (1 << uint(nBits)) - 1
}

// lzwEncode compresses indexed pixels (one palette index per pixel, 0..255)
// into GIF image data: an initial code-size byte followed by bit-writer
// sub-blocks, terminated by the bit writer's trailing zero-length block.
func lzwEncode(dst io.ByteWriter, pixels []byte, minCodeSize int) {
	if minCodeSize < 2 {
		minCodeSize = 2
	}
	dst.WriteByte(byte(minCodeSize))

	bw := newBitWriter(dst)

	initBits := minCodeSize + 1
	clearCode := int32(1 << uint(minCodeSize))
	eofCode := clearCode + 1
	freeEntFirst := eofCode + 1

	nBits := initBits
	maxCode := maxCodeFor(nBits)
	freeEnt := freeEntFirst
	clearFlg := false

	htab := make([]int32, lzwHashSize)
	codetab := make([]int32, lzwHashSize)
	clearHash := func() {
		for i := range htab {
			htab[i] = -1
		}
	}
	clearHash()

	// output writes `code` at the current width, then decides whether the
	// NEXT code needs more bits (or a fresh clear) based on freeEnt as it
	// stands right now.
	output := func(code int32) {
		bw.WriteCode(uint32(code), uint(nBits))

		if freeEnt > int32(maxCode) || clearFlg {
			if clearFlg {
				nBits = initBits
				maxCode = maxCodeFor(nBits)
				clearFlg = false
			} else {
				nBits++
				if nBits == maxLZWBits {
					maxCode = 1 << uint(maxLZWBits)
				} else {
					maxCode = maxCodeFor(nBits)
				}
			}
		}
	}

	clearBlock := func() {
		clearHash()
		freeEnt = freeEntFirst
		clearFlg = true
		output(clearCode)
	}

	hshift := 0
	for fcode := lzwHashSize; fcode < 65536; fcode *= 2 {
		hshift++
	}
	hshift = 8 - hshift

	output(clearCode)

	if len(pixels) == 0 {
		output(eofCode)
		bw.Close()
		return
	}

	ent := int32(pixels[0])

outer:
	for _, b := range pixels[1:] {
		c := int32(b)
		fcode := (c << uint(maxLZWBits)) + ent
		i := (c << uint(hshift)) ^ ent

		if htab[i] == fcode {
			ent = codetab[i]
			continue
		}

		if htab[i] >= 0 {
			disp := int32(lzwHashSize) - i
			if i == 0 {
				disp = 1
			}
			for {
				i -= disp
				if i < 0 {
					i += lzwHashSize
				}
				if htab[i] == fcode {
					ent = codetab[i]
					continue outer
				}
				if htab[i] < 0 {
					break
				}
			}
		}

		output(ent)
		ent = c

		if freeEnt < (1 << uint(maxLZWBits)) {
			codetab[i] = freeEnt
			freeEnt++
			htab[i] = fcode
		} else {
			clearBlock()
		}
	}

	output(ent)
	output(eofCode)
	bw.Close()
}
