package gif

// lzwEncoder implements GIF's LZW variant: a hash-chained string->code
// dictionary, a clear code and end code flanking the single-byte literals,
// and a code width that grows in lockstep with dictionary insertions
// (spec.md §4.3). Adapted from the teacher's LZWEncoder.go: the original's
// closure-captured accumulator is replaced by the shared bitWriter (C1), and
// block framing is delegated to writeSubBlocks (C2) instead of being
// interleaved with bit-packing.
const (
	lzwMaxBits  = 12
	lzwHashSize = 5003 // ~80% occupancy for a 4096-entry dictionary
)

type lzwEncoder struct {
	initCodeSize int
	pixels       []byte
}

func newLZWEncoder(pixels []byte, initCodeSize int) *lzwEncoder {
	if initCodeSize < 2 {
		initCodeSize = 2
	}
	return &lzwEncoder{initCodeSize: initCodeSize, pixels: pixels}
}

// encode writes the initial-code-size byte, then the LZW-compressed,
// sub-block-framed pixel stream, to buf.
func (e *lzwEncoder) encode(buf *byteBuffer) error {
	buf.WriteByte(byte(e.initCodeSize))
	compressed, err := e.compress()
	if err != nil {
		return err
	}
	writeSubBlocks(buf, compressed)
	return nil
}

func maxCode(nBits int) int {
	return (1 << uint(nBits)) - 1
}

func (e *lzwEncoder) compress() ([]byte, error) {
	initBits := e.initCodeSize + 1
	clearCode := 1 << uint(e.initCodeSize)
	eofCode := clearCode + 1
	freeEnt := clearCode + 2

	nBits := initBits
	maxcode := maxCode(nBits)

	htab := make([]int, lzwHashSize)
	codetab := make([]int, lzwHashSize)
	clearHash := func() {
		for i := range htab {
			htab[i] = -1
		}
	}

	hshift := 0
	for fcode := lzwHashSize; fcode < 65536; fcode *= 2 {
		hshift++
	}
	hshift = 8 - hshift

	w := newBitWriter()
	if err := w.writeCode(clearCode, nBits); err != nil {
		return nil, err
	}
	clearHash()

	n := len(e.pixels)
	if n == 0 {
		if err := w.writeCode(eofCode, nBits); err != nil {
			return nil, err
		}
		return w.flush(), nil
	}

	ent := int(e.pixels[0]) & 0xff

	for idx := 1; idx < n; idx++ {
		c := int(e.pixels[idx]) & 0xff
		fcode := (c << lzwMaxBits) + ent
		i := (c << hshift) ^ ent

		if htab[i] == fcode {
			ent = codetab[i]
			continue
		}

		if htab[i] >= 0 {
			disp := lzwHashSize - i
			if i == 0 {
				disp = 1
			}
			found := false
			for {
				i -= disp
				if i < 0 {
					i += lzwHashSize
				}
				if htab[i] == fcode {
					ent = codetab[i]
					found = true
					break
				}
				if htab[i] < 0 {
					break
				}
			}
			if found {
				continue
			}
		}

		if err := w.writeCode(ent, nBits); err != nil {
			return nil, err
		}
		ent = c

		if freeEnt < (1 << lzwMaxBits) {
			codetab[i] = freeEnt
			freeEnt++
			htab[i] = fcode

			// The decoder mirrors this dictionary one entry behind (it adds
			// an entry only once it reads the code after it) and widens its
			// reads as soon as its own next code passes maxcode. To stay in
			// lockstep, the encoder widens once freeEnt passes maxcode+1,
			// before the next code is emitted. At the 12-bit ceiling maxcode
			// is pinned to 4096, so the width never grows past 12 bits.
			if freeEnt > maxcode+1 {
				nBits++
				if nBits == lzwMaxBits {
					maxcode = 1 << uint(lzwMaxBits)
				} else {
					maxcode = maxCode(nBits)
				}
			}
		} else {
			if err := w.writeCode(clearCode, nBits); err != nil {
				return nil, err
			}
			clearHash()
			freeEnt = clearCode + 2
			nBits = initBits
			maxcode = maxCode(nBits)
		}
	}

	if err := w.writeCode(ent, nBits); err != nil {
		return nil, err
	}
	// Reading ent lets the decoder add its last entry, which may widen the
	// code it reads the end code with.
	if freeEnt > maxcode && nBits < lzwMaxBits {
		nBits++
	}
	if err := w.writeCode(eofCode, nBits); err != nil {
		return nil, err
	}
	return w.flush(), nil
}
