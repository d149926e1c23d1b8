package gif

// Quantizer maps truecolor pixels onto a bounded palette. EncodeOptions
// selects an implementation; MedianCutQuantizer is the spec-mandated
// default and the only one with guaranteed-deterministic output.
type Quantizer interface {
	// Build trains the quantizer from RGB colors (typically every pixel of
	// one frame, or of the first frame in shared-palette animation mode,
	// repeats included) and returns the resulting palette.
	Build(colors []RGB, maxColors int) (Palette, error)
	// Index maps an arbitrary color — in or out of the training set — to
	// a palette index produced by the most recent Build call.
	Index(c RGB) int
	// Palette returns the palette built by the most recent Build call.
	Palette() Palette
}

// channelWeights perceptually weight the three channels when a median-cut
// box picks its split axis: blue contributes the least to perceived
// difference, so it's least likely to be chosen even when its numeric
// range is largest.
var channelWeights = [3]float64{1.0, 0.8, 0.5} // R, G, B

type mcBox struct {
	colors     []RGB
	splittable bool
}

func (b *mcBox) channelRange(ch int) (lo, hi uint8) {
	lo, hi = 255, 0
	for _, c := range b.colors {
		var v uint8
		switch ch {
		case 0:
			v = c.R
		case 1:
			v = c.G
		default:
			v = c.B
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func (b *mcBox) widestChannel() int {
	best := 0
	bestScore := -1.0
	for ch := 0; ch < 3; ch++ {
		lo, hi := b.channelRange(ch)
		score := float64(hi-lo) * channelWeights[ch]
		if score > bestScore {
			bestScore = score
			best = ch
		}
	}
	return best
}

func channelValue(c RGB, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// quickselectMedian partitions colors in place so that the element at the
// midpoint index is the one that would occupy that position in a sorted
// order by channel ch, and returns its value. Linear-time expected case.
func quickselectMedian(colors []RGB, ch int) uint8 {
	k := len(colors) / 2
	lo, hi := 0, len(colors)-1
	for lo < hi {
		pivot := channelValue(colors[(lo+hi)/2], ch)
		i, j := lo, hi
		for i <= j {
			for channelValue(colors[i], ch) < pivot {
				i++
			}
			for channelValue(colors[j], ch) > pivot {
				j--
			}
			if i <= j {
				colors[i], colors[j] = colors[j], colors[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			break
		}
	}
	return channelValue(colors[k], ch)
}

func meanColor(colors []RGB) RGB {
	var rs, gs, bs int
	for _, c := range colors {
		rs += int(c.R)
		gs += int(c.G)
		bs += int(c.B)
	}
	n := len(colors)
	return RGB{
		R: uint8(rs / n),
		G: uint8(gs / n),
		B: uint8(bs / n),
	}
}

// MedianCutQuantizer implements spec.md's C5: partition RGB space into at
// most N boxes by repeatedly splitting the most populous splittable box
// along its widest perceptually-weighted channel at the quickselect median,
// then take each box's mean color as a palette entry.
type MedianCutQuantizer struct {
	palette  Palette
	boxIndex map[RGB]int
}

func NewMedianCutQuantizer() *MedianCutQuantizer {
	return &MedianCutQuantizer{}
}

func (q *MedianCutQuantizer) Build(colors []RGB, maxColors int) (Palette, error) {
	if maxColors < 1 || maxColors > MaxPaletteSize {
		return nil, newValidationError("maxColors", "maxColors %d out of range [1,%d]", maxColors, MaxPaletteSize)
	}
	if len(colors) == 0 {
		return nil, newValidationError("colors", "no colors to quantize")
	}

	unique := uniqueColors(colors)

	boxes := []*mcBox{{colors: unique, splittable: true}}
	for len(boxes) < maxColors {
		splitIdx := largestBox(boxes)
		if splitIdx < 0 {
			break
		}
		box := boxes[splitIdx]
		if len(box.colors) <= 1 {
			box.splittable = false
			continue
		}
		ch := box.widestChannel()
		median := quickselectMedian(box.colors, ch)

		var lowGroup, highGroup []RGB
		for _, c := range box.colors {
			if channelValue(c, ch) < median {
				lowGroup = append(lowGroup, c)
			} else {
				highGroup = append(highGroup, c)
			}
		}
		if len(lowGroup) == 0 || len(highGroup) == 0 {
			// Degenerate split (no value on the chosen channel lies below
			// the median): leave this box intact and stop offering it as a
			// split candidate.
			box.splittable = false
			continue
		}

		boxes[splitIdx] = &mcBox{colors: lowGroup, splittable: true}
		boxes = append(boxes, &mcBox{colors: highGroup, splittable: true})
	}

	palette := make(Palette, len(boxes))
	boxIndex := make(map[RGB]int, len(unique))
	for i, box := range boxes {
		palette[i] = meanColor(box.colors)
		for _, c := range box.colors {
			boxIndex[c] = i
		}
	}

	q.palette = palette
	q.boxIndex = boxIndex
	return palette, nil
}

func (q *MedianCutQuantizer) Index(c RGB) int {
	if idx, ok := q.boxIndex[c]; ok {
		return idx
	}
	return nearestPaletteIndex(q.palette, c)
}

func (q *MedianCutQuantizer) Palette() Palette {
	return q.palette
}

func largestBox(boxes []*mcBox) int {
	best := -1
	bestN := 0
	for i, b := range boxes {
		if b.splittable && len(b.colors) > 1 && len(b.colors) > bestN {
			bestN = len(b.colors)
			best = i
		}
	}
	return best
}

func uniqueColors(colors []RGB) []RGB {
	seen := make(map[RGB]bool, len(colors))
	out := make([]RGB, 0, len(colors))
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// nearestPaletteIndex finds the palette entry with the smallest squared
// Euclidean distance to c — used for colors outside the quantizer's
// training set (e.g. a later frame's pixels under a shared palette).
func nearestPaletteIndex(p Palette, c RGB) int {
	best := 0
	bestDist := -1
	for i, pc := range p {
		dr := int(c.R) - int(pc.R)
		dg := int(c.G) - int(pc.G)
		db := int(c.B) - int(pc.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// Quantize implements the public façade operation: reduce a truecolor image
// to an indexed image of at most maxColors colors using median-cut.
func Quantize(img *TruecolorImage, maxColors int) (*IndexedImage, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	colors := imageColors(img)
	q := NewMedianCutQuantizer()
	palette, err := q.Build(colors, maxColors)
	if err != nil {
		return nil, err
	}
	index := make([]byte, img.Width*img.Height)
	for i := 0; i < img.Width*img.Height; i++ {
		c := RGB{R: img.Pix[i*4], G: img.Pix[i*4+1], B: img.Pix[i*4+2]}
		index[i] = byte(q.Index(c))
	}
	return &IndexedImage{Width: img.Width, Height: img.Height, Palette: palette, Index: index}, nil
}

func imageColors(img *TruecolorImage) []RGB {
	n := img.Width * img.Height
	out := make([]RGB, n)
	for i := 0; i < n; i++ {
		out[i] = RGB{R: img.Pix[i*4], G: img.Pix[i*4+1], B: img.Pix[i*4+2]}
	}
	return out
}

