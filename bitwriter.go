package animgif

import "io"

// subBlockSize is the maximum number of data bytes in one GIF sub-block.
const subBlockSize = 255

// bitWriter packs bits LSB-first into bytes, and bytes into length-prefixed
// GIF sub-blocks (1..255 data bytes each), terminated by a single zero-length
// sub-block when closed.
//
// Kept as its own type, separate from the LZW code logic, so the encoder
// only has to think about codes, not byte framing.
type bitWriter struct {
	dst io.ByteWriter

	accum uint32
	nbits uint

	buf [subBlockSize]byte
	n   int
}

func newBitWriter(dst io.ByteWriter) *bitWriter {
	return &bitWriter{dst: dst}
}

// WriteCode packs the low `width` bits of code into the bit stream.
func (w *bitWriter) WriteCode(code uint32, width uint) {
	w.accum |= code << w.nbits
	w.nbits += width
	for w.nbits >= 8 {
		w.packByte(byte(w.accum))
		w.accum >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) packByte(b byte) {
	w.buf[w.n] = b
	w.n++
	if w.n == subBlockSize {
		w.flushSubBlock()
	}
}

func (w *bitWriter) flushSubBlock() {
	if w.n == 0 {
		return
	}
	w.dst.WriteByte(byte(w.n))
	for i := 0; i < w.n; i++ {
		w.dst.WriteByte(w.buf[i])
	}
	w.n = 0
}

// Close flushes any partial bits, any partial sub-block, and writes the
// terminating zero-length sub-block.
func (w *bitWriter) Close() {
	for w.nbits > 0 {
		w.packByte(byte(w.accum))
		w.accum >>= 8
		if w.nbits < 8 {
			break
		}
		w.nbits -= 8
	}
	w.nbits = 0
	w.flushSubBlock()
	w.dst.WriteByte(0)
}
