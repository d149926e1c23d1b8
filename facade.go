package gif

import "github.com/rs/zerolog"

// quantizeFrame reduces img to an IndexedImage using the backend and
// dithering opts selects, returning the Quantizer so callers that need a
// shared palette (animated encoding) can reuse it across frames.
func quantizeFrame(img *TruecolorImage, opts EncodeOptions) (*IndexedImage, Quantizer, error) {
	q := newQuantizer(opts)
	maxColors := opts.maxColorsOrDefault()
	if _, ok := q.(*NeuQuantQuantizer); ok {
		maxColors = nqNetsize
	}

	palette, err := q.Build(imageColors(img), maxColors)
	if err != nil {
		return nil, nil, err
	}

	index := indexWithQuantizer(img, q, opts)
	return &IndexedImage{Width: img.Width, Height: img.Height, Palette: palette, Index: index}, q, nil
}

func indexWithQuantizer(img *TruecolorImage, q Quantizer, opts EncodeOptions) []byte {
	if opts.Dither != "" && opts.Dither != DitherNone {
		return ditherIndex(img, q, opts.Dither, opts.Serpentine)
	}
	return indexImage(img, q)
}

// EncodeStaticGIF implements spec.md §6.2's encodeStaticGif: quantize img
// and write it as a single-frame GIF89a stream.
func EncodeStaticGIF(img *TruecolorImage, opts EncodeOptions) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}

	enhanced := applyColorEnhancement(img, opts.SaturationBoost, opts.ContrastBoost)
	indexed, _, err := quantizeFrame(enhanced, opts)
	if err != nil {
		return nil, err
	}

	w, err := NewWriter(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteLogicalScreen(indexed.Palette, opts.Background, opts.PixelAspect, false); err != nil {
		return nil, err
	}
	if err := w.WriteFrame(FrameSpec{Image: indexed, Disposal: DisposeNone}); err != nil {
		return nil, err
	}
	if err := w.WriteTrailer(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeAnimatedGIF implements spec.md §6.2's encodeAnimatedGif: all
// frames share one logical screen and one quantizer built from the first
// frame's colors (spec.md §4.5's deliberate shared-palette simplification —
// across-frame palette optimality is out of scope). perFrame may be
// shorter than frames or nil; missing entries fall back to opts.DelayMs
// and no disposal/transparency.
func EncodeAnimatedGIF(frames []*TruecolorImage, opts EncodeOptions, perFrame []FrameOptions) ([]byte, error) {
	if len(frames) == 0 {
		return nil, newValidationError("frames", "at least one frame required")
	}
	width, height := frames[0].Width, frames[0].Height
	for i, f := range frames {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if f.Width != width || f.Height != height {
			return nil, newValidationError("frames", "frame %d is %dx%d, expected %dx%d", i, f.Width, f.Height, width, height)
		}
	}

	enhanced := make([]*TruecolorImage, len(frames))
	for i, f := range frames {
		enhanced[i] = applyColorEnhancement(f, opts.SaturationBoost, opts.ContrastBoost)
	}

	q := newQuantizer(opts)
	maxColors := opts.maxColorsOrDefault()
	if _, ok := q.(*NeuQuantQuantizer); ok {
		maxColors = nqNetsize
	}
	palette, err := q.Build(imageColors(enhanced[0]), maxColors)
	if err != nil {
		return nil, err
	}

	w, err := NewWriter(width, height)
	if err != nil {
		return nil, err
	}
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteLogicalScreen(palette, opts.Background, opts.PixelAspect, false); err != nil {
		return nil, err
	}
	if opts.Loops >= 0 {
		if err := w.WriteAnimationInfo(opts.Loops); err != nil {
			return nil, err
		}
	}

	for i, f := range enhanced {
		index := indexWithQuantizer(f, q, opts)

		fo := FrameOptions{DelayMs: opts.DelayMs}
		if i < len(perFrame) {
			fo = perFrame[i]
			if fo.DelayMs == 0 {
				fo.DelayMs = opts.DelayMs
			}
		}

		spec := FrameSpec{
			Image:       &IndexedImage{Width: width, Height: height, Palette: palette, Index: index},
			DelayMs:     fo.DelayMs,
			Disposal:    fo.Disposal,
			Transparent: fo.Transparent,
			TransIndex:  fo.TransIndex,
		}
		if err := w.WriteFrame(spec); err != nil {
			return nil, err
		}
	}

	if err := w.WriteTrailer(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ReadGIFInfo implements the lightweight half of spec.md §4.7's two
// decoder views: stream dimensions, frame count, duration, and metadata,
// without running LZW decode or compositing on any frame.
func ReadGIFInfo(data []byte) (StreamInfo, error) {
	parsed, err := parseGIF(data)
	if err != nil {
		return StreamInfo{}, err
	}
	return parsed.Info, nil
}

// DecodeGIF implements spec.md §6.2's decodeGif: parse the container, then
// fully composite every frame. Placeholder substitutions for corrupt frames
// are not reported; use DecodeGIFWithLogger to observe them.
func DecodeGIF(data []byte) (*DecodeResult, error) {
	return DecodeGIFWithLogger(data, zerolog.Nop())
}

// DecodeGIFWithLogger is DecodeGIF with an opt-in logger for decode-time
// warnings about corrupt frames substituted with placeholders.
// Unrecognized extensions are not logged; they are listed in
// Info.Extensions. The core package never holds global logger state;
// callers who don't pass one get silence.
func DecodeGIFWithLogger(data []byte, logger zerolog.Logger) (*DecodeResult, error) {
	parsed, err := parseGIF(data)
	if err != nil {
		return nil, err
	}
	frames, err := compositeFrames(parsed.Info, parsed.Frames, logger)
	if err != nil {
		return nil, err
	}
	return &DecodeResult{Info: parsed.Info, Frames: frames}, nil
}
