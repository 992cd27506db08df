package animgif

import (
	"image/color"
	"testing"
)

func makeBGR(w, h int, b, g, r byte) []byte {
	px := make([]byte, 3*w*h)
	for i := 0; i < w*h; i++ {
		px[3*i], px[3*i+1], px[3*i+2] = b, g, r
	}
	return px
}

func TestAnalyzeFrameFirstFrameCoversWholeCanvas(t *testing.T) {
	f := &Frame{Pixels: makeBGR(4, 3, 1, 2, 3), Width: 4, Height: 3}
	analyzeFrame(f, nil, pipelineFlags{ClipFrame: true, AutoTransparency: true})

	if f.changeRect != (rect{0, 0, 3, 2}) {
		t.Errorf("expected full-canvas change rect on first frame, got %+v", f.changeRect)
	}
	if f.isDuplicate {
		t.Error("first frame must never be a duplicate")
	}
}

func TestAnalyzeFrameClipsToChangedRegion(t *testing.T) {
	w, h := 10, 10
	prev := makeBGR(w, h, 0, 0, 0)
	cur := makeBGR(w, h, 0, 0, 0)

	// Change a single 2x2 block at (3,4)..(4,5).
	for _, p := range [][2]int{{3, 4}, {4, 4}, {3, 5}, {4, 5}} {
		i := (p[1]*w + p[0]) * 3
		cur[i], cur[i+1], cur[i+2] = 255, 255, 255
	}

	f := &Frame{Pixels: cur, Width: w, Height: h}
	analyzeFrame(f, prev, pipelineFlags{ClipFrame: true})

	want := rect{3, 4, 4, 5}
	if f.changeRect != want {
		t.Errorf("changeRect = %+v, want %+v", f.changeRect, want)
	}
}

func TestAnalyzeFrameClipWithoutDiscardYieldsEmptyRectForIdenticalFrame(t *testing.T) {
	w, h := 5, 5
	prev := makeBGR(w, h, 9, 9, 9)
	cur := makeBGR(w, h, 9, 9, 9)

	f := &Frame{Pixels: cur, Width: w, Height: h}
	analyzeFrame(f, prev, pipelineFlags{ClipFrame: true})

	if f.isDuplicate {
		t.Error("DiscardDuplicates is off, frame must not be flagged a duplicate")
	}
	if !f.changeRect.empty() {
		t.Errorf("expected an empty change rect for a pixel-identical frame, got %+v", f.changeRect)
	}
}

func TestAnalyzeFrameDiscardsDuplicates(t *testing.T) {
	w, h := 5, 5
	prev := makeBGR(w, h, 9, 9, 9)
	cur := makeBGR(w, h, 9, 9, 9)

	f := &Frame{Pixels: cur, Width: w, Height: h}
	analyzeFrame(f, prev, pipelineFlags{DiscardDuplicates: true})

	if !f.isDuplicate {
		t.Error("expected identical frame to be flagged a duplicate")
	}
}

func TestAnalyzeFrameAutoTransparencyMasksUnchangedPixels(t *testing.T) {
	w, h := 3, 1
	prev := makeBGR(w, h, 1, 1, 1)
	cur := makeBGR(w, h, 1, 1, 1)
	// Change only the middle pixel.
	cur[3], cur[4], cur[5] = 2, 2, 2

	f := &Frame{Pixels: cur, Width: w, Height: h}
	analyzeFrame(f, prev, pipelineFlags{AutoTransparency: true})

	if f.transparentMask[0] != true || f.transparentMask[2] != true {
		t.Errorf("expected unchanged pixels masked transparent, got %v", f.transparentMask)
	}
	if f.transparentMask[1] != false {
		t.Errorf("expected changed pixel not masked transparent, got %v", f.transparentMask)
	}
	if len(f.opaquePixels) != 3 {
		t.Errorf("expected opaquePixels to contain exactly the one changed pixel, got %d bytes", len(f.opaquePixels))
	}
}

func TestFrameHasTransparentPixelWithExplicitColor(t *testing.T) {
	w, h := 2, 1
	px := makeBGR(w, h, 0, 0, 0)
	// Second pixel is the transparent color in RGB (255,0,0) -> BGR (0,0,255).
	px[3], px[4], px[5] = 0, 0, 255

	f := &Frame{Pixels: px, Width: w, Height: h, changeRect: rect{0, 0, 1, 0}}
	f.Options.Transparent = &color.RGBA{R: 255, G: 0, B: 0, A: 255}
	if !frameHasTransparentPixel(f) {
		t.Error("expected explicit transparent color to be detected in change rect")
	}
}
