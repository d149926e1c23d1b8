package gif

// lzwDecoder inverts lzwEncoder. Its dictionary is represented compactly as
// (prefixCode, suffixByte) pairs rather than stored strings, reconstructing
// each entry's bytes on demand — the representation spec.md §9 recommends
// for a systems-language port. The decoder shape (entry table + KwKwK
// handling) is grounded on the TIFF-variant LZW decoder in
// other_examples/a7ba7133_pspoerri-geotiff2pmtiles__internal-cog-lzw.go.go,
// adapted to GIF's "grow width right after the insertion that fills it"
// policy instead of TIFF's deferred-increment variant.
type lzwDecoder struct {
	initCodeSize int
}

func newLZWDecoder(initCodeSize int) *lzwDecoder {
	return &lzwDecoder{initCodeSize: initCodeSize}
}

type lzwDictEntry struct {
	prefix int // -1 for single-byte root entries
	suffix byte
	length int
}

// decode inverts the LZW-compressed code stream in data (sub-block framing
// already removed) back into the original index bytes.
func (d *lzwDecoder) decode(data []byte) ([]byte, error) {
	initBits := d.initCodeSize + 1
	clearCode := 1 << uint(d.initCodeSize)
	endCode := clearCode + 1

	dict := make([]lzwDictEntry, 4096)
	resetDict := func() int {
		for i := 0; i < clearCode; i++ {
			dict[i] = lzwDictEntry{prefix: -1, suffix: byte(i), length: 1}
		}
		return endCode + 1
	}
	nextCode := resetDict()
	nBits := initBits
	maxcode := maxCode(nBits)

	r := newBitReader(data)

	var scratch []byte
	stringFor := func(code int) []byte {
		scratch = scratch[:0]
		for code >= 0 {
			e := dict[code]
			scratch = append(scratch, e.suffix)
			code = e.prefix
		}
		// scratch is built suffix-last-to-first; reverse in place.
		for i, j := 0, len(scratch)-1; i < j; i, j = i+1, j-1 {
			scratch[i], scratch[j] = scratch[j], scratch[i]
		}
		out := make([]byte, len(scratch))
		copy(out, scratch)
		return out
	}

	var out []byte
	prevCode := -1

	code, ok := r.readCode(nBits)
	if !ok {
		return nil, newEncodingError("lzw decode", "empty LZW stream")
	}
	if code != clearCode {
		return nil, newEncodingError("lzw decode", "stream does not start with clear code (got %d)", code)
	}

	for {
		code, ok = r.readCode(nBits)
		if !ok {
			return nil, newEncodingError("lzw decode", "unexpected end of stream (width %d, dict size %d)", nBits, nextCode)
		}

		if code == clearCode {
			nextCode = resetDict()
			nBits = initBits
			maxcode = maxCode(nBits)
			prevCode = -1
			continue
		}
		if code == endCode {
			return out, nil
		}

		var str []byte
		switch {
		case code < nextCode:
			str = stringFor(code)
		case code == nextCode && prevCode >= 0:
			// KwKwK: the code names an entry the encoder has assigned but
			// not yet transmitted the means to reconstruct independently;
			// it must equal the previous string with its own first byte
			// appended.
			prev := stringFor(prevCode)
			str = append(append([]byte{}, prev...), prev[0])
		default:
			return nil, newEncodingError("lzw decode", "invalid code %d (dict size %d, width %d)", code, nextCode, nBits)
		}

		out = append(out, str...)

		if prevCode >= 0 && nextCode < 4096 {
			prevEntry := dict[prevCode]
			dict[nextCode] = lzwDictEntry{prefix: prevCode, suffix: str[0], length: prevEntry.length + 1}
			nextCode++
			if nextCode > maxcode && nBits < lzwMaxBits {
				nBits++
				maxcode = maxCode(nBits)
			}
		}

		prevCode = code
	}
}
