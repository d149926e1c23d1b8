package gif

// writerState enforces spec.md's C6 ordering:
// Initial -> HeaderWritten -> LogicalScreenWritten -> (AnimationInfoWritten)? -> (FrameWritten+) -> TrailerWritten.
type writerState int

const (
	wsInitial writerState = iota
	wsHeaderWritten
	wsLogicalScreenWritten
	wsAnimationInfoWritten
	wsFrameWritten
	wsTrailerWritten
)

// Writer is the GIF container builder, a runtime state-enum variant of the
// type-stated builder spec.md §9 suggests. Adapted from the teacher's
// GIFEncoder (GIFEncoder.go): the same call sequence (header, logical
// screen, optional Netscape loop extension, per-frame graphics-control +
// image descriptor + LZW pixels, trailer) but driven by an explicit state
// field instead of an implicit firstFrame bool, and with quantization
// pulled out into the Quantizer interface (quantize.go) rather than being
// wired directly to NeuQuant.
type Writer struct {
	state  writerState
	buf    *byteBuffer
	width  int
	height int
}

// NewWriter creates a builder for a GIF whose logical screen is width x height.
func NewWriter(width, height int) (*Writer, error) {
	if width < MinDimension || width > MaxDimension {
		return nil, newValidationError("width", "width %d out of range [%d,%d]", width, MinDimension, MaxDimension)
	}
	if height < MinDimension || height > MaxDimension {
		return nil, newValidationError("height", "height %d out of range [%d,%d]", height, MinDimension, MaxDimension)
	}
	return &Writer{state: wsInitial, buf: newByteBuffer(), width: width, height: height}, nil
}

func (w *Writer) requireState(want writerState, op string) error {
	if w.state != want {
		return newEncodingError(op, "writer in state %d, expected %d", w.state, want)
	}
	return nil
}

// WriteHeader emits the GIF89a signature.
func (w *Writer) WriteHeader() error {
	if err := w.requireState(wsInitial, "write header"); err != nil {
		return err
	}
	w.buf.WriteUTFBytes("GIF89a")
	w.state = wsHeaderWritten
	return nil
}

// colorTableSizeField returns the smallest s in [0,7] with 2^(s+1) >= n,
// per spec.md §4.6.
func colorTableSizeField(n int) int {
	s := 0
	for (1 << uint(s+1)) < n {
		s++
	}
	return s
}

// paddedPalette flattens p to RGB triples and zero-pads it up to the next
// power-of-two color count, returning the padded bytes and the size field.
func paddedPalette(p Palette) ([]byte, int) {
	size := colorTableSizeField(len(p))
	count := 1 << uint(size+1)
	out := make([]byte, count*3)
	copy(out, p.Bytes())
	return out, size
}

// WriteLogicalScreen emits the logical screen descriptor and, if global is
// non-empty, the global color table.
func (w *Writer) WriteLogicalScreen(global Palette, backgroundIndex int, pixelAspect byte, sortFlag bool) error {
	if err := w.requireState(wsHeaderWritten, "write logical screen descriptor"); err != nil {
		return err
	}
	w.buf.WriteUint16LE(w.width)
	w.buf.WriteUint16LE(w.height)

	packed := byte(0x70) // color resolution fixed at 0b111
	if sortFlag {
		packed |= 0x08
	}

	var table []byte
	if len(global) > 0 {
		if err := global.validate(); err != nil {
			return err
		}
		padded, size := paddedPalette(global)
		table = padded
		packed |= 0x80 | byte(size)
	}

	w.buf.WriteByte(packed)
	w.buf.WriteByte(byte(backgroundIndex))
	w.buf.WriteByte(pixelAspect)
	if table != nil {
		w.buf.WriteBytes(table)
	}

	w.state = wsLogicalScreenWritten
	return nil
}

// WriteAnimationInfo emits the Netscape 2.0 loop-count application
// extension. Only valid between the logical screen and the first frame.
func (w *Writer) WriteAnimationInfo(loopCount int) error {
	if err := w.requireState(wsLogicalScreenWritten, "write animation info"); err != nil {
		return err
	}
	w.buf.WriteByte(0x21) // extension introducer
	w.buf.WriteByte(0xff) // application extension label
	w.buf.WriteByte(11)   // block size
	w.buf.WriteUTFBytes("NETSCAPE2.0")
	w.buf.WriteByte(3) // sub-block size
	w.buf.WriteByte(1) // loop sub-block id
	w.buf.WriteUint16LE(loopCount)
	w.buf.WriteByte(0) // block terminator
	w.state = wsAnimationInfoWritten
	return nil
}

// FrameSpec is one frame handed to WriteFrame: an already-quantized image
// plus the placement and timing metadata the graphics control extension
// and image descriptor carry.
type FrameSpec struct {
	Image       *IndexedImage
	Left, Top   int
	DelayMs     int
	Disposal    Disposal
	Transparent bool
	TransIndex  int
}

// centiseconds converts a millisecond delay to GIF's native unit, rounding
// to nearest and clamping to the 16-bit field's range.
func centiseconds(delayMs int) int {
	if delayMs < 0 {
		delayMs = 0
	}
	cs := (delayMs + 5) / 10
	if cs > 65535 {
		cs = 65535
	}
	return cs
}

// lzwInitCodeSize is the smallest size in [2,8] with 2^size >= paletteSize,
// per spec.md §4.3's initialCodeSize selection rule.
func lzwInitCodeSize(paletteSize int) int {
	size := 2
	for (1 << uint(size)) < paletteSize {
		size++
	}
	return size
}

// WriteFrame emits one frame: graphics control extension, image
// descriptor, local color table, then LZW-compressed indexed pixels.
// Valid any time after the logical screen has been written.
func (w *Writer) WriteFrame(f FrameSpec) error {
	switch w.state {
	case wsLogicalScreenWritten, wsAnimationInfoWritten, wsFrameWritten:
	default:
		return newEncodingError("write frame", "writer in state %d, cannot write a frame yet", w.state)
	}
	if f.Image == nil {
		return newValidationError("image", "frame image must not be nil")
	}
	if err := f.Image.validate(); err != nil {
		return err
	}
	if f.Left < 0 || f.Top < 0 || f.Left+f.Image.Width > w.width || f.Top+f.Image.Height > w.height {
		return newValidationError("bounds", "frame rectangle (%d,%d,%d,%d) exceeds %dx%d canvas",
			f.Left, f.Top, f.Image.Width, f.Image.Height, w.width, w.height)
	}

	var transparentBit byte
	if f.Transparent {
		transparentBit = 1
	}
	packed := (byte(f.Disposal)&7)<<2 | transparentBit

	w.buf.WriteByte(0x21) // extension introducer
	w.buf.WriteByte(0xf9) // graphic control label
	w.buf.WriteByte(4)    // block size
	w.buf.WriteByte(packed)
	w.buf.WriteUint16LE(centiseconds(f.DelayMs))
	w.buf.WriteByte(byte(f.TransIndex))
	w.buf.WriteByte(0) // block terminator

	w.buf.WriteByte(0x2c) // image separator
	w.buf.WriteUint16LE(f.Left)
	w.buf.WriteUint16LE(f.Top)
	w.buf.WriteUint16LE(f.Image.Width)
	w.buf.WriteUint16LE(f.Image.Height)

	padded, size := paddedPalette(f.Image.Palette)
	// Local color table flag is always set in this implementation;
	// interlacing and sort are never produced by this writer.
	w.buf.WriteByte(0x80 | byte(size))
	w.buf.WriteBytes(padded)

	initCodeSize := lzwInitCodeSize(len(f.Image.Palette))
	enc := newLZWEncoder(f.Image.Index, initCodeSize)
	if err := enc.encode(w.buf); err != nil {
		return err
	}

	w.state = wsFrameWritten
	return nil
}

// WriteTrailer emits the GIF trailer byte. Requires at least one frame to
// have been written.
func (w *Writer) WriteTrailer() error {
	if err := w.requireState(wsFrameWritten, "write trailer"); err != nil {
		return err
	}
	w.buf.WriteByte(0x3b)
	w.state = wsTrailerWritten
	return nil
}

// Bytes returns the accumulated GIF stream. Meaningful once WriteTrailer
// has run, though callers may inspect partial output for debugging.
func (w *Writer) Bytes() []byte {
	return w.buf.GetData()
}
