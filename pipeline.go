package animgif

import (
	"runtime"
	"sync"
)

// pipelineFlags are the encoder-level optimization switches analyzeFrame
// consults.
type pipelineFlags struct {
	AutoTransparency bool
	ClipFrame        bool
	DiscardDuplicates bool
}

// analyzeFrame computes the derived fields of frame (opaquePixels,
// transparentMask, changeRect, isDuplicate) given the previous frame's raw
// BGR pixels (nil for the first frame).
//
// The per-pixel diff is the one place this pipeline parallelizes: it's a
// read-only comparison against an already-fully-materialized prior frame,
// independent per pixel, so it's split across a worker pool keyed to
// runtime.NumCPU row ranges, with each worker reducing its own partial
// change-rectangle before the results are merged. The pool is joined before
// anything downstream reads frame's derived fields, so ordering and the
// "prior frame is read-only" contract are preserved.
func analyzeFrame(frame *Frame, prevPixels []byte, flags pipelineFlags) {
	n := frame.Width * frame.Height

	if prevPixels == nil {
		frame.opaquePixels = frame.Pixels
		frame.transparentMask = make([]bool, n)
		frame.changeRect = rect{0, 0, frame.Width - 1, frame.Height - 1}
		frame.isDuplicate = false
		return
	}

	contributes := make([]bool, n)

	workers := runtime.NumCPU()
	if workers > frame.Height {
		workers = frame.Height
	}
	if workers < 1 {
		workers = 1
	}

	type partial struct {
		any bool
		r   rect
	}
	results := make([]partial, workers)

	rowsPerWorker := (frame.Height + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPerWorker
		y1 := y0 + rowsPerWorker
		if y1 > frame.Height {
			y1 = frame.Height
		}
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(w, y0, y1 int) {
			defer wg.Done()
			p := partial{r: rect{x0: frame.Width, y0: frame.Height, x1: -1, y1: -1}}
			for y := y0; y < y1; y++ {
				base := y * frame.Width
				for x := 0; x < frame.Width; x++ {
					i := base + x
					k := i * 3
					diff := frame.Pixels[k] != prevPixels[k] ||
						frame.Pixels[k+1] != prevPixels[k+1] ||
						frame.Pixels[k+2] != prevPixels[k+2]
					if diff {
						contributes[i] = true
						p.any = true
						if x < p.r.x0 {
							p.r.x0 = x
						}
						if x > p.r.x1 {
							p.r.x1 = x
						}
						if y < p.r.y0 {
							p.r.y0 = y
						}
						if y > p.r.y1 {
							p.r.y1 = y
						}
					}
				}
			}
			results[w] = p
		}(w, y0, y1)
	}
	wg.Wait()

	merged := rect{x0: frame.Width, y0: frame.Height, x1: -1, y1: -1}
	frameContributes := false
	for _, p := range results {
		if !p.any {
			continue
		}
		frameContributes = true
		if p.r.x0 < merged.x0 {
			merged.x0 = p.r.x0
		}
		if p.r.x1 > merged.x1 {
			merged.x1 = p.r.x1
		}
		if p.r.y0 < merged.y0 {
			merged.y0 = p.r.y0
		}
		if p.r.y1 > merged.y1 {
			merged.y1 = p.r.y1
		}
	}

	if flags.DiscardDuplicates && !frameContributes {
		frame.isDuplicate = true
		frame.opaquePixels = nil
		frame.transparentMask = nil
		frame.changeRect = rect{0, 0, -1, -1}
		return
	}

	mask := make([]bool, n)
	var opaque []byte
	if flags.AutoTransparency {
		opaque = make([]byte, 0, n*3)
		for i := 0; i < n; i++ {
			if contributes[i] {
				k := i * 3
				opaque = append(opaque, frame.Pixels[k], frame.Pixels[k+1], frame.Pixels[k+2])
			} else {
				mask[i] = true
			}
		}
	} else {
		opaque = frame.Pixels
	}

	frame.opaquePixels = opaque
	frame.transparentMask = mask
	frame.isDuplicate = false

	if flags.ClipFrame {
		frame.changeRect = merged
	} else {
		frame.changeRect = rect{0, 0, frame.Width - 1, frame.Height - 1}
	}
}

// frameHasTransparentPixel reports whether frame's change rectangle
// contains at least one pixel that will end up transparent — either forced
// by the auto-transparency mask, or matching an explicitly fixed
// Options.Transparent color. Used to decide whether NeuQuant needs to
// reserve a palette slot.
func frameHasTransparentPixel(frame *Frame) bool {
	r := frame.changeRect
	if r.empty() {
		return false
	}

	if frame.Options.Transparent != nil {
		tc := frame.Options.Transparent
		for dy := 0; dy < r.height(); dy++ {
			fy := r.y0 + dy
			base := fy * frame.Width
			for dx := 0; dx < r.width(); dx++ {
				fx := r.x0 + dx
				k := (base + fx) * 3
				if frame.Pixels[k] == tc.B && frame.Pixels[k+1] == tc.G && frame.Pixels[k+2] == tc.R {
					return true
				}
			}
		}
		return false
	}

	if frame.transparentMask == nil {
		return false
	}
	for dy := 0; dy < r.height(); dy++ {
		fy := r.y0 + dy
		base := fy * frame.Width
		for dx := 0; dx < r.width(); dx++ {
			fx := r.x0 + dx
			if frame.transparentMask[base+fx] {
				return true
			}
		}
	}
	return false
}
