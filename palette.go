package animgif

// palette.go builds the compact per-frame palette + indexed pixel stream
// from a learned NeuQuant quantizer.
//
// Walks the pixels once, memoizing quantizer index -> compact palette
// index, so the resulting local color table only contains colors this
// frame actually uses and can be sized to the smallest valid power of two.

// mapPixels walks frame.changeRect in display order, quantizing each pixel
// (or emitting the transparent index) and building frame.colorTable /
// frame.indexedPixels / frame.transparentIndex / frame.hasTransparent.
//
// nq must already have had Learn() called. The fixed transparent color, if
// any, is taken from frame.Options.Transparent.
func mapPixels(frame *Frame, nq *NeuQuant) error {
	r := frame.changeRect
	w, h := r.width(), r.height()

	quantizerToPalette := make(map[int]int)
	var paletteBytes []byte

	transparentWritten := false
	transparentPaletteIndex := -1

	fixedTransparent := frame.Options.Transparent
	useAutoTransparent := frame.transparentMask != nil

	ensureTransparentIndex := func() (int, error) {
		if transparentWritten {
			return transparentPaletteIndex, nil
		}
		idx := len(paletteBytes) / 3
		if idx >= 256 {
			return 0, newError(PaletteOverflow, "more than 256 distinct colors for one frame")
		}
		var tr, tg, tb byte
		if fixedTransparent != nil {
			tr, tg, tb = fixedTransparent.R, fixedTransparent.G, fixedTransparent.B
		}
		paletteBytes = append(paletteBytes, tr, tg, tb)
		transparentPaletteIndex = idx
		transparentWritten = true
		return idx, nil
	}

	indexed := make([]byte, w*h)

	for dy := 0; dy < h; dy++ {
		fy := r.y0 + dy
		for dx := 0; dx < w; dx++ {
			fx := r.x0 + dx
			i := fy*frame.Width + fx
			k := i * 3
			b, g, rr := frame.Pixels[k], frame.Pixels[k+1], frame.Pixels[k+2]

			isTransparentPixel := (useAutoTransparent && frame.transparentMask[i]) ||
				(fixedTransparent != nil && rr == fixedTransparent.R && g == fixedTransparent.G && b == fixedTransparent.B)

			var paletteIdx int
			if isTransparentPixel {
				idx, err := ensureTransparentIndex()
				if err != nil {
					return err
				}
				paletteIdx = idx
			} else {
				qi := nq.Map(int32(b), int32(g), int32(rr))
				if pi, ok := quantizerToPalette[qi]; ok {
					paletteIdx = pi
				} else {
					idx := len(paletteBytes) / 3
					if idx >= 256 {
						return newError(PaletteOverflow, "more than 256 distinct colors for one frame")
					}
					nr, ng, nb := findNeuronByOriginalIndex(nq, qi)
					paletteBytes = append(paletteBytes, nr, ng, nb)
					quantizerToPalette[qi] = idx
					paletteIdx = idx
				}
			}
			indexed[dy*w+dx] = byte(paletteIdx)
		}
	}

	padded := padPaletteToPowerOfTwo(paletteBytes)

	frame.colorTable = padded
	frame.indexedPixels = indexed
	frame.hasTransparent = transparentWritten
	if transparentWritten {
		frame.transparentIndex = transparentPaletteIndex
	}
	return nil
}

// findNeuronByOriginalIndex scans the learned network for the neuron whose
// recorded original index matches qi, returning its (r,g,b) — NeuQuant's
// Map returns the pre-sort identity, not the post-sort physical position, so
// this reverse lookup is how the palette recovers the actual color.
func findNeuronByOriginalIndex(nq *NeuQuant, qi int) (r, g, b byte) {
	for k := 0; k < nq.Size(); k++ {
		if nq.NeuronOriginalIndex(k) == qi {
			nr, ng, nb := nq.NeuronRGB(k)
			return nr, ng, nb
		}
	}
	return 0, 0, 0
}

// padPaletteToPowerOfTwo zero-pads colors (RGB triples) up to the next
// valid GIF color table length: 6, 12, 24, 48, 96, 192, 384, 768 bytes
// (2..256 colors).
func padPaletteToPowerOfTwo(colors []byte) []byte {
	n := len(colors) / 3
	if n == 0 {
		n = 1
	}
	size := 2
	for size < n {
		size <<= 1
	}
	out := make([]byte, size*3)
	copy(out, colors)
	return out
}

// colorTableSizeField returns the packed size_k field (log2(len/3) - 1) for
// a color table of the given byte length.
func colorTableSizeField(tableLen int) byte {
	n := tableLen / 3
	k := 0
	for (1 << uint(k+1)) < n {
		k++
	}
	return byte(k)
}
