package animgif

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Disposal is the post-frame-display action recorded in a frame's Graphic
// Control Extension.
type Disposal int

const (
	DisposalUnspecified Disposal = iota
	DisposalDoNotDispose
	DisposalRestoreBackground
	DisposalRestorePrevious
)

// FrameOptions carries the per-frame knobs alongside the pixel data: delay,
// quality, an optional fixed transparent color, and disposal. Scoped to one
// frame instead of the whole encoder, since each frame may want a different
// delay, quality, or disposal.
type FrameOptions struct {
	// DelayCentiseconds is the frame delay in hundredths of a second, the
	// unit the GIF format itself stores. Takes precedence over DelayMS if
	// both are set.
	DelayCentiseconds int
	// DelayMS is the frame delay in milliseconds; divided by 10 when the
	// frame's Graphic Control Extension is written, if DelayCentiseconds is
	// zero.
	DelayMS int
	// Quality is the NeuQuant sampling factor, 1..30 (1 = best/slowest).
	// Zero means "use the encoder default".
	Quality int
	// Transparent, if non-nil, fixes this frame's transparent color
	// instead of letting AutoTransparency derive one. Mutually exclusive
	// with the encoder's AutoTransparency optimization.
	Transparent *color.RGBA
	// Disposal is this frame's disposal method.
	Disposal Disposal
}

// Frame is one input to Encoder.AddFrame: a rectangle of contiguous BGR
// bytes plus its per-frame options.
type Frame struct {
	// Pixels is BGR, length 3*Width*Height. Owned by the caller until
	// AddFrame returns.
	Pixels []byte
	Width  int
	Height int

	Options FrameOptions

	// derived fields, populated by analyzeFrame/mapPixels
	opaquePixels     []byte
	transparentMask  []bool
	changeRect       rect
	colorTable       []byte
	transparentIndex int
	hasTransparent   bool
	indexedPixels    []byte
	gceOffset        int64
	isDuplicate      bool
	consumed         bool
}

type rect struct {
	x0, y0, x1, y1 int // inclusive bounds; empty iff x1 < x0 or y1 < y0
}

func (r rect) empty() bool {
	return r.x1 < r.x0 || r.y1 < r.y0
}

func (r rect) width() int {
	if r.empty() {
		return 0
	}
	return r.x1 - r.x0 + 1
}

func (r rect) height() int {
	if r.empty() {
		return 0
	}
	return r.y1 - r.y0 + 1
}

func delayCentiseconds(o FrameOptions) int {
	if o.DelayCentiseconds > 0 {
		return o.DelayCentiseconds
	}
	if o.DelayMS > 0 {
		return o.DelayMS / 10
	}
	return 0
}

// NewFrame builds a Frame from a flat BGR buffer, validating its length
// against width*height.
func NewFrame(pixelsBGR []byte, width, height int, opts FrameOptions) (*Frame, error) {
	if len(pixelsBGR) != 3*width*height {
		return nil, newError(InvalidFrame, "pixel buffer length does not match width*height*3")
	}
	return &Frame{Pixels: pixelsBGR, Width: width, Height: height, Options: opts}, nil
}

// FrameFromImage converts a standard library image.Image into a Frame,
// scaling it to (canvasWidth, canvasHeight) with golang.org/x/image/draw's
// bilinear scaler when its bounds don't already match. An adapter-layer
// convenience sitting outside the core encoding algorithm, not a pixel
// source of truth itself.
func FrameFromImage(img image.Image, canvasWidth, canvasHeight int, opts FrameOptions) (*Frame, error) {
	if img == nil {
		return nil, newError(InvalidFrame, "nil image")
	}

	b := img.Bounds()
	if b.Dx() != canvasWidth || b.Dy() != canvasHeight {
		dst := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
		img = dst
		b = dst.Bounds()
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		dst := image.NewRGBA(b)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		rgba = dst
	}

	pixels := make([]byte, canvasWidth*canvasHeight*3)
	k := 0
	for y := 0; y < canvasHeight; y++ {
		row := rgba.PixOffset(rgba.Bounds().Min.X, rgba.Bounds().Min.Y+y)
		for x := 0; x < canvasWidth; x++ {
			i := row + x*4
			r, g, bl := rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2]
			pixels[k] = bl
			pixels[k+1] = g
			pixels[k+2] = r
			k += 3
		}
	}

	return NewFrame(pixels, canvasWidth, canvasHeight, opts)
}
