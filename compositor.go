package gif

import "github.com/rs/zerolog"

// compositeFrames implements C8: it walks raw, decoded-container frame
// records and produces a full-canvas RGBA Frame for each, applying
// disposal methods, transparency, deinterlacing, and sub-rectangle
// clipping along the way.
//
// Order per frame, per spec.md §4.8: apply the previous frame's disposal,
// snapshot the canvas if this frame's own disposal is "restore to
// previous", decode its indexed pixels, deinterlace if needed, composite
// onto the canvas, then copy the canvas out as this frame's record.
func compositeFrames(info StreamInfo, raw []rawFrame, logger zerolog.Logger) ([]Frame, error) {
	width, height := info.Width, info.Height
	canvas := make([]byte, width*height*4)

	hasBackground := len(info.GlobalPalette) > 0 && info.BackgroundIndex < len(info.GlobalPalette)
	var background RGB
	if hasBackground {
		background = info.GlobalPalette[info.BackgroundIndex]
	}
	fillCanvas(canvas, background, hasBackground)

	frames := make([]Frame, 0, len(raw))

	var previous []byte
	var prevDisposal = DisposeNone
	var prevLeft, prevTop, prevW, prevH int
	havePrev := false

	for i, f := range raw {
		if havePrev {
			switch prevDisposal {
			case DisposeBackground:
				clearRect(canvas, width, height, prevLeft, prevTop, prevW, prevH, background, hasBackground)
			case DisposePrevious:
				if previous != nil {
					copy(canvas, previous)
				}
			}
		}

		var snapshot []byte
		if f.Disposal == DisposePrevious {
			snapshot = make([]byte, len(canvas))
			copy(snapshot, canvas)
		}

		palette := f.LocalPalette
		if len(palette) == 0 {
			palette = info.GlobalPalette
		}

		placeholder := false
		dec := newLZWDecoder(f.InitCodeSize)
		index, err := dec.decode(f.Compressed)
		switch {
		case err != nil:
			logger.Warn().Err(err).Int("frame", i).Msg("lzw decode failed, substituting placeholder frame")
			placeholder = true
		case len(index) != f.Width*f.Height:
			logger.Warn().Int("frame", i).Int("got", len(index)).Int("want", f.Width*f.Height).
				Msg("decoded pixel count mismatch, substituting placeholder frame")
			placeholder = true
		}

		if placeholder {
			compositePlaceholder(canvas, width, height, f.Left, f.Top, f.Width, f.Height)
		} else {
			if f.Interlace {
				index = deinterlace(index, f.Width, f.Height)
			}
			compositeRect(canvas, width, height, f.Left, f.Top, f.Width, f.Height, palette, index, f.HasTransparency, f.TransparentIndex)
		}

		canvasCopy := make([]byte, len(canvas))
		copy(canvasCopy, canvas)
		frames = append(frames, Frame{
			Canvas:      &TruecolorImage{Width: width, Height: height, Pix: canvasCopy},
			DelayMs:     f.DelayCs * 10,
			Disposal:    f.Disposal,
			Left:        f.Left,
			Top:         f.Top,
			Width:       f.Width,
			Height:      f.Height,
			Transparent: f.HasTransparency,
			TransIndex:  f.TransparentIndex,
			Placeholder: placeholder,
		})

		previous = snapshot
		prevDisposal = f.Disposal
		prevLeft, prevTop, prevW, prevH = f.Left, f.Top, f.Width, f.Height
		havePrev = true
	}

	return frames, nil
}

// fillCanvas sets every pixel to the background color, or fully
// transparent if the stream carries no global palette.
func fillCanvas(canvas []byte, background RGB, hasBackground bool) {
	for i := 0; i < len(canvas); i += 4 {
		if hasBackground {
			canvas[i], canvas[i+1], canvas[i+2], canvas[i+3] = background.R, background.G, background.B, 255
		} else {
			canvas[i+3] = 0
		}
	}
}

// clearRect restores a sub-rectangle to the background color (disposal
// method 2), clipped to the canvas bounds.
func clearRect(canvas []byte, canvasW, canvasH, left, top, w, h int, background RGB, hasBackground bool) {
	for y := 0; y < h; y++ {
		cy := top + y
		if cy < 0 || cy >= canvasH {
			continue
		}
		for x := 0; x < w; x++ {
			cx := left + x
			if cx < 0 || cx >= canvasW {
				continue
			}
			off := (cy*canvasW + cx) * 4
			if hasBackground {
				canvas[off], canvas[off+1], canvas[off+2], canvas[off+3] = background.R, background.G, background.B, 255
			} else {
				canvas[off+3] = 0
			}
		}
	}
}

// deinterlace reorders rows decoded in GIF's 4-pass interlace order
// ({0,8,...}, {4,12,...}, {2,6,10,...}, {1,3,5,...}) back into sequential
// order.
func deinterlace(index []byte, width, height int) []byte {
	out := make([]byte, len(index))
	starts := [4]int{0, 4, 2, 1}
	steps := [4]int{8, 8, 4, 2}

	srcRow := 0
	for pass := 0; pass < 4; pass++ {
		for row := starts[pass]; row < height; row += steps[pass] {
			copy(out[row*width:(row+1)*width], index[srcRow*width:(srcRow+1)*width])
			srcRow++
		}
	}
	return out
}

// compositeRect writes a decoded, already-deinterlaced index buffer onto
// the canvas at (left, top), skipping transparent pixels and clipping
// silently when the sub-rectangle exceeds the canvas — spec.md §9 Open
// Question 2 notes the source does this silently rather than raising a
// ValidationError, and this implementation matches that.
func compositeRect(canvas []byte, canvasW, canvasH, left, top, w, h int, palette Palette, index []byte, transparent bool, transIndex int) {
	for y := 0; y < h; y++ {
		cy := top + y
		if cy < 0 || cy >= canvasH {
			continue
		}
		for x := 0; x < w; x++ {
			cx := left + x
			if cx < 0 || cx >= canvasW {
				continue
			}
			idx := index[y*w+x]
			if transparent && int(idx) == transIndex {
				continue
			}
			if int(idx) >= len(palette) {
				continue
			}
			c := palette[idx]
			off := (cy*canvasW + cx) * 4
			canvas[off], canvas[off+1], canvas[off+2], canvas[off+3] = c.R, c.G, c.B, 255
		}
	}
}

// compositePlaceholder fills a sub-rectangle with opaque white, standing
// in for a frame whose LZW data failed to decode (spec.md §4.8).
func compositePlaceholder(canvas []byte, canvasW, canvasH, left, top, w, h int) {
	for y := 0; y < h; y++ {
		cy := top + y
		if cy < 0 || cy >= canvasH {
			continue
		}
		for x := 0; x < w; x++ {
			cx := left + x
			if cx < 0 || cx >= canvasW {
				continue
			}
			off := (cy*canvasW + cx) * 4
			canvas[off], canvas[off+1], canvas[off+2], canvas[off+3] = 255, 255, 255, 255
		}
	}
}
