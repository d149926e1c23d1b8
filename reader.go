package gif

import "fmt"

// Section separators and extension labels, per the GIF89a spec. Grounded
// on other_examples/74643c56_ostafen-digler__internal-format-gif.go.go,
// itself derived from Go's standard library image/gif decoder.
const (
	sepExtension = 0x21
	sepImage     = 0x2c
	sepTrailer   = 0x3b
)

const (
	extPlainText   = 0x01
	extGraphicCtrl = 0xf9
	extComment     = 0xfe
	extApplication = 0xff
)

const (
	fieldColorTable = 1 << 7
	fieldInterlace  = 1 << 6
	fieldSort       = 1 << 5
	fieldSizeMask   = 7
)

// rawFrame is one 0x2C image record as parsed off the wire, carrying its
// own graphics-control metadata but not yet composited onto a canvas —
// that's the compositor's (C8) job.
type rawFrame struct {
	Left, Top, Width, Height int
	Interlace                bool
	LocalPalette             Palette
	InitCodeSize             int
	Compressed               []byte // LZW code stream with sub-block framing removed, init-code-size byte already consumed
	HasTransparency          bool
	TransparentIndex         int
	DelayCs                  int
	Disposal                 Disposal
}

// parsedStream is the reader's full output: the lightweight StreamInfo
// view plus every image record, still raw (pre-C4, pre-C8).
type parsedStream struct {
	Info   StreamInfo
	Frames []rawFrame
}

func paletteFromBytes(b []byte) Palette {
	p := make(Palette, len(b)/3)
	for i := range p {
		p[i] = RGB{R: b[i*3], G: b[i*3+1], B: b[i*3+2]}
	}
	return p
}

// previewBytes renders up to the first 16 bytes of data as a hex dump, for
// error messages on unrecognized signatures.
func previewBytes(data []byte) string {
	n := len(data)
	if n > 16 {
		n = 16
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%02x", data[i])
	}
	return out
}

// escapePreview renders data with printable ASCII left as-is and every other
// byte rendered as \xNN, for error messages that need to show stream
// contents without risking control characters in a terminal or log line.
func escapePreview(data []byte) string {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if b >= 0x20 && b < 0x7f {
			out = append(out, b)
		} else {
			out = append(out, []byte(fmt.Sprintf("\\x%02x", b))...)
		}
	}
	return string(out)
}

// signatureHint improves the error message for a few common non-GIF
// magic numbers a caller might accidentally hand to the decoder.
func signatureHint(data []byte) string {
	switch {
	case len(data) >= 1 && data[0] == '<':
		return " (looks like XML/HTML, not a GIF)"
	case len(data) >= 3 && string(data[:3]) == "PNG" || (len(data) >= 4 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G'):
		return " (looks like a PNG, not a GIF)"
	case len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8:
		return " (looks like a JPEG, not a GIF)"
	default:
		return ""
	}
}

// parseGIF decodes the GIF container structure (C7): header, logical
// screen descriptor, and the extension/image record loop. It does not run
// the LZW decoder (C4) or the compositor (C8) — callers that only need
// StreamInfo can stop after this call.
func parseGIF(data []byte) (*parsedStream, error) {
	r := newByteReader(data)

	sig, err := r.ReadN(6)
	if err != nil {
		return nil, newEncodingError("gif header", "truncated signature (only %d bytes)", len(data))
	}
	version := string(sig)
	if version != "GIF87a" && version != "GIF89a" {
		return nil, newEncodingError("gif header", "unrecognized signature %q%s, first bytes: %s",
			version, signatureHint(data), previewBytes(data))
	}

	width, err := r.readUint16LE()
	if err != nil {
		return nil, wrapEncodingError("logical screen width", err)
	}
	height, err := r.readUint16LE()
	if err != nil {
		return nil, wrapEncodingError("logical screen height", err)
	}
	screenFields, err := r.ReadByte()
	if err != nil {
		return nil, wrapEncodingError("logical screen fields", err)
	}
	backgroundIndex, err := r.ReadByte()
	if err != nil {
		return nil, wrapEncodingError("background color index", err)
	}
	pixelAspect, err := r.ReadByte()
	if err != nil {
		return nil, wrapEncodingError("pixel aspect ratio", err)
	}

	info := StreamInfo{
		Version:          version[3:],
		Width:            width,
		Height:           height,
		BackgroundIndex:  int(backgroundIndex),
		PixelAspectRatio: pixelAspect,
		SortFlag:         screenFields&fieldSort != 0,
		ColorResolution:  int((screenFields>>4)&7) + 1,
		LoopCount:        -1,
	}

	if screenFields&fieldColorTable != 0 {
		n := 1 << (1 + uint(screenFields&fieldSizeMask))
		raw, err := r.ReadN(3 * n)
		if err != nil {
			return nil, wrapEncodingError("global color table", err)
		}
		info.GlobalPalette = paletteFromBytes(raw)
	}

	var frames []rawFrame
	var gcTransparency bool
	var gcTransIndex int
	var gcDelay int
	var gcDisposal Disposal

	for {
		sep, err := r.ReadByte()
		if err != nil {
			return nil, newEncodingError("gif body", "unexpected end of stream at offset %d", r.Offset())
		}

		switch sep {
		case sepExtension:
			label, err := r.ReadByte()
			if err != nil {
				return nil, wrapEncodingError("extension label", err)
			}
			switch label {
			case extGraphicCtrl:
				block, err := r.ReadN(5)
				if err != nil {
					return nil, wrapEncodingError("graphic control extension", err)
				}
				if block[0] != 4 {
					return nil, newEncodingError("graphic control extension", "block size %d, expected 4", block[0])
				}
				terminator, err := r.ReadByte()
				if err != nil {
					return nil, wrapEncodingError("graphic control extension terminator", err)
				}
				if terminator != 0 {
					return nil, newEncodingError("graphic control extension", "terminator %#x, expected 0", terminator)
				}
				gcDisposal = Disposal((block[1] >> 2) & 7)
				gcTransparency = block[1]&1 != 0
				gcDelay = int(block[2]) | int(block[3])<<8
				gcTransIndex = int(block[4])

			case extApplication:
				size, err := r.ReadByte()
				if err != nil {
					return nil, wrapEncodingError("application extension size", err)
				}
				ident, err := r.ReadN(int(size))
				if err != nil {
					return nil, wrapEncodingError("application extension identifier", err)
				}
				identStr := string(ident)
				info.Extensions = append(info.Extensions, ExtensionRecord{Identifier: identStr})
				switch identStr {
				case "NETSCAPE2.0":
					payload, err := newSubBlockReader(r).readAll()
					if err != nil {
						return nil, err
					}
					if len(payload) >= 3 && payload[0] == 1 {
						info.LoopCount = int(payload[1]) | int(payload[2])<<8
					}
				case "XMP DataXMP":
					payload, err := newSubBlockReader(r).readAll()
					if err != nil {
						return nil, err
					}
					info.XMP = string(payload)
				default:
					if err := newSubBlockReader(r).skip(); err != nil {
						return nil, err
					}
				}

			case extComment:
				payload, err := newSubBlockReader(r).readAll()
				if err != nil {
					return nil, err
				}
				info.Comments = append(info.Comments, string(payload))

			case extPlainText:
				if _, err := r.ReadN(13); err != nil {
					return nil, wrapEncodingError("plain text extension grid", err)
				}
				if err := newSubBlockReader(r).skip(); err != nil {
					return nil, err
				}

			default:
				info.Extensions = append(info.Extensions, ExtensionRecord{Identifier: fmt.Sprintf("0x%02x", label)})
				if err := newSubBlockReader(r).skip(); err != nil {
					return nil, err
				}
			}

		case sepImage:
			left, err := r.readUint16LE()
			if err != nil {
				return nil, wrapEncodingError("image descriptor left", err)
			}
			top, err := r.readUint16LE()
			if err != nil {
				return nil, wrapEncodingError("image descriptor top", err)
			}
			w, err := r.readUint16LE()
			if err != nil {
				return nil, wrapEncodingError("image descriptor width", err)
			}
			h, err := r.readUint16LE()
			if err != nil {
				return nil, wrapEncodingError("image descriptor height", err)
			}
			fields, err := r.ReadByte()
			if err != nil {
				return nil, wrapEncodingError("image descriptor fields", err)
			}

			var localPalette Palette
			if fields&fieldColorTable != 0 {
				n := 1 << (1 + uint(fields&fieldSizeMask))
				raw, err := r.ReadN(3 * n)
				if err != nil {
					return nil, wrapEncodingError("local color table", err)
				}
				localPalette = paletteFromBytes(raw)
			} else if len(info.GlobalPalette) == 0 {
				return nil, newEncodingError("image descriptor", "frame at offset %d has no local or global color table", r.Offset())
			}

			initSize, err := r.ReadByte()
			if err != nil {
				return nil, wrapEncodingError("lzw minimum code size", err)
			}
			if initSize < 2 || initSize > 8 {
				return nil, newEncodingError("lzw minimum code size", "value %d out of range [2,8]", initSize)
			}

			compressed, err := newSubBlockReader(r).readAll()
			if err != nil {
				return nil, err
			}

			frames = append(frames, rawFrame{
				Left:             left,
				Top:              top,
				Width:            w,
				Height:           h,
				Interlace:        fields&fieldInterlace != 0,
				LocalPalette:     localPalette,
				InitCodeSize:     int(initSize),
				Compressed:       compressed,
				HasTransparency:  gcTransparency,
				TransparentIndex: gcTransIndex,
				DelayCs:          gcDelay,
				Disposal:         gcDisposal,
			})

			gcTransparency = false
			gcTransIndex = 0
			gcDelay = 0
			gcDisposal = DisposeNone

		case sepTrailer:
			info.FrameCount = len(frames)
			for _, f := range frames {
				info.Duration += f.DelayCs * 10
			}
			return &parsedStream{Info: info, Frames: frames}, nil

		default:
			pos := r.Offset() - 1
			lo := pos - 8
			if lo < 0 {
				lo = 0
			}
			hi := pos + 8
			if hi > len(data) {
				hi = len(data)
			}
			return nil, newEncodingError("gif body", "unexpected separator %#x at offset %d, nearby bytes: \"%s\"",
				sep, pos, escapePreview(data[lo:hi]))
		}
	}
}
