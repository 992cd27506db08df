package animgif

import (
	"io"
)

// EncoderOptions configures an Encoder for its whole lifetime, collapsed
// into one options struct the way a modern Go library would expose it
// rather than a string of individual setters.
type EncoderOptions struct {
	// Repeat: -1 = no loop extension, 0 = loop forever, n>0 = repeat n times.
	Repeat int
	// Quality is the default NeuQuant sampling factor (1..30, 1 best) used
	// when a Frame doesn't set its own Options.Quality.
	Quality int
	// AutoTransparency turns non-contributing pixels (identical to the
	// previous frame) into transparent pixels instead of re-encoding them.
	AutoTransparency bool
	// ClipFrame restricts each non-first frame's image descriptor to the
	// smallest rectangle enclosing its changes.
	ClipFrame bool
	// DiscardDuplicates skips frames that contribute no pixel change,
	// folding their delay into the previous frame's GCE instead. Requires
	// the sink passed to NewEncoder to implement io.Seeker.
	DiscardDuplicates bool
}

// Encoder drives the frame pipeline, NeuQuant, and the LZW/bitWriter pair to
// emit a GIF89a stream. It owns the output sink and is not safe for
// concurrent use by multiple goroutines; calls must come from one
// goroutine at a time.
type Encoder struct {
	dst    io.Writer
	seeker io.Seeker
	pos    int64

	width, height int
	opts          EncoderOptions

	firstFrame bool
	closed     bool
	err        error

	prevPixels []byte

	haveLast      bool
	lastGCEOffset int64
	lastDelay     int

	stats EncoderStats
}

// EncoderStats accumulates summary information surfaced by DebugSummary.
type EncoderStats struct {
	FramesAdded       int
	DuplicatesFolded  int
	BytesWritten      int64
	LargestPaletteLen int
}

// NewEncoder creates an Encoder that will write a canvasWidth x canvasHeight
// GIF89a stream to dst as frames are added. If opts.DiscardDuplicates is
// set, dst must implement io.Seeker (directly, or by being a *MemorySink);
// otherwise NewEncoder returns a SeekUnsupported error.
func NewEncoder(dst io.Writer, canvasWidth, canvasHeight int, opts EncoderOptions) (*Encoder, error) {
	if opts.DiscardDuplicates {
		if _, ok := dst.(io.Seeker); !ok {
			return nil, newError(SeekUnsupported, "DiscardDuplicates requires a seekable sink (e.g. *MemorySink or *os.File)")
		}
	}
	if opts.Quality < 1 {
		opts.Quality = 10
	}

	e := &Encoder{
		dst:        dst,
		width:      canvasWidth,
		height:     canvasHeight,
		opts:       opts,
		firstFrame: true,
	}
	if s, ok := dst.(io.Seeker); ok {
		e.seeker = s
	}
	return e, nil
}

func (e *Encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	if bw, ok := e.dst.(io.ByteWriter); ok {
		if err := bw.WriteByte(b); err != nil {
			e.fail(err)
			return
		}
	} else if _, err := e.dst.Write([]byte{b}); err != nil {
		e.fail(err)
		return
	}
	e.pos++
}

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.dst.Write(p)
	e.pos += int64(n)
	if err != nil {
		e.fail(err)
	}
}

func (e *Encoder) writeShort(v int) {
	e.writeByte(byte(v & 0xff))
	e.writeByte(byte((v >> 8) & 0xff))
}

func (e *Encoder) writeASCII(s string) {
	e.write([]byte(s))
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = wrapError(IoError, "sink write/seek failed", err)
	}
}

// AddFrame runs the frame through the pipeline analysis, NeuQuant, and
// palette construction, then writes whatever output bytes that requires.
// On any InvalidFrame-class validation error, the Encoder's state is left
// unchanged.
func (e *Encoder) AddFrame(frame *Frame) error {
	if e.err != nil {
		return e.err
	}
	if e.closed {
		return newError(InvalidFrame, "AddFrame called after Close")
	}
	if frame == nil {
		return newError(InvalidFrame, "nil frame")
	}
	if frame.Width != e.width || frame.Height != e.height {
		return newError(InvalidFrame, "frame size does not match canvas size")
	}
	if len(frame.Pixels) != 3*frame.Width*frame.Height {
		return newError(InvalidFrame, "frame pixel buffer has the wrong length")
	}
	if e.opts.AutoTransparency && frame.Options.Transparent != nil {
		return newError(InvalidFrame, "AutoTransparency cannot be combined with an explicit frame transparent color")
	}
	if frame.consumed {
		return newError(InvalidFrame, "frame was already added to an encoder")
	}
	frame.consumed = true

	flags := pipelineFlags{
		AutoTransparency:  e.opts.AutoTransparency,
		ClipFrame:         e.opts.ClipFrame,
		DiscardDuplicates: e.opts.DiscardDuplicates,
	}
	analyzeFrame(frame, e.prevPixels, flags)

	// The previous frame's raw pixels are only needed as the diff baseline;
	// once this frame's analyze pass has consumed them, the new frame
	// becomes the baseline for the next one.
	e.prevPixels = frame.Pixels

	if frame.isDuplicate {
		return e.foldDuplicate(frame)
	}

	quality := e.opts.Quality
	if frame.Options.Quality >= 1 {
		quality = frame.Options.Quality
	}

	maxColors := 256
	if frameHasTransparentPixel(frame) {
		maxColors = 255
	}

	nq := NewNeuQuant(frame.opaquePixels, maxColors, quality)
	nq.Learn()

	if err := mapPixels(frame, nq); err != nil {
		return err
	}

	if e.firstFrame {
		e.writeASCII("GIF89a")
		e.writeLSD(frame.colorTable)
		e.write(frame.colorTable)
		if e.opts.Repeat >= 0 {
			e.writeNetscapeExt()
		}
	}

	frame.gceOffset = e.pos
	e.writeGCE(frame)
	e.writeImageDescriptor(frame)
	if !e.firstFrame {
		e.write(frame.colorTable)
	}
	e.writeLZWData(frame)

	e.haveLast = true
	e.lastGCEOffset = frame.gceOffset
	e.lastDelay = delayCentiseconds(frame.Options)

	e.firstFrame = false
	e.stats.FramesAdded++
	if len(frame.colorTable) > e.stats.LargestPaletteLen {
		e.stats.LargestPaletteLen = len(frame.colorTable)
	}
	e.stats.BytesWritten = e.pos

	if e.err != nil {
		return e.err
	}
	return nil
}

// foldDuplicate seeks back to the most recent non-duplicate frame's GCE,
// adds this frame's delay to it, rewrites the GCE in place, and seeks
// forward again. Writes nothing else.
func (e *Encoder) foldDuplicate(frame *Frame) error {
	e.stats.DuplicatesFolded++
	if !e.haveLast {
		// A duplicate before any real frame has been written is only
		// possible if the very first frame is somehow flagged a duplicate,
		// which analyzeFrame never does (first frame always has
		// prevPixels == nil). Defensive no-op.
		return nil
	}

	newDelay := e.lastDelay + delayCentiseconds(frame.Options)
	if e.seeker == nil {
		return wrapError(IoError, "cannot back-patch GCE: sink is not seekable", nil)
	}

	endPos := e.pos
	if _, err := e.seeker.Seek(e.lastGCEOffset+4, io.SeekStart); err != nil {
		e.fail(err)
		return e.err
	}
	e.pos = e.lastGCEOffset + 4
	e.writeShort(newDelay)
	if _, err := e.seeker.Seek(endPos, io.SeekStart); err != nil {
		e.fail(err)
		return e.err
	}
	e.pos = endPos
	e.lastDelay = newDelay

	if e.err != nil {
		return e.err
	}
	return nil
}

func (e *Encoder) writeLSD(globalColorTable []byte) {
	e.writeShort(e.width)
	e.writeShort(e.height)
	sizeK := colorTableSizeField(len(globalColorTable))
	e.writeByte(0x80 | 0x70 | sizeK)
	e.writeByte(0) // background color index
	e.writeByte(0) // pixel aspect ratio
}

func (e *Encoder) writeNetscapeExt() {
	e.writeByte(0x21)
	e.writeByte(0xff)
	e.writeByte(11)
	e.writeASCII("NETSCAPE2.0")
	e.writeByte(3)
	e.writeByte(1)
	e.writeShort(e.opts.Repeat)
	e.writeByte(0)
}

func (e *Encoder) writeGCE(frame *Frame) {
	e.writeByte(0x21)
	e.writeByte(0xf9)
	e.writeByte(4)

	transparentFlag := 0
	if frame.hasTransparent {
		transparentFlag = 1
	}

	disp := int(frame.Options.Disposal) & 0x7
	packed := byte((disp << 2) | transparentFlag)
	e.writeByte(packed)

	e.writeShort(delayCentiseconds(frame.Options))
	e.writeByte(byte(frame.transparentIndex))
	e.writeByte(0)
}

func (e *Encoder) writeImageDescriptor(frame *Frame) {
	e.writeByte(0x2c)
	e.writeShort(frame.changeRect.x0)
	e.writeShort(frame.changeRect.y0)
	e.writeShort(frame.changeRect.width())
	e.writeShort(frame.changeRect.height())

	if e.firstFrame {
		e.writeByte(0)
	} else {
		sizeK := colorTableSizeField(len(frame.colorTable))
		e.writeByte(0x80 | sizeK)
	}
}

func (e *Encoder) writeLZWData(frame *Frame) {
	minCodeSize := int(colorTableSizeField(len(frame.colorTable))) + 1
	if minCodeSize < 2 {
		minCodeSize = 2
	}

	var bw countingByteWriter
	bw.e = e
	lzwEncode(&bw, frame.indexedPixels, minCodeSize)
}

// countingByteWriter adapts Encoder's error-latching write path to the
// io.ByteWriter interface lzwEncode/bitWriter expect.
type countingByteWriter struct {
	e *Encoder
}

func (c *countingByteWriter) WriteByte(b byte) error {
	c.e.writeByte(b)
	return c.e.err
}

// Close writes the GIF trailer. After Close, AddFrame returns an
// InvalidFrame error.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	e.writeByte(0x3b)
	return e.err
}
