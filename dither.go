package gif

// DitherKernel is an error-diffusion kernel: each entry is
// {weight, dx, dy} describing how much quantization error to push to the
// pixel at (x+dx, y+dy).
type DitherKernel [][3]float64

// Kernels kept verbatim from the teacher's dither.go.
var (
	FalseFloydSteinberg = DitherKernel{
		{3.0 / 8.0, 1, 0},
		{3.0 / 8.0, 0, 1},
		{2.0 / 8.0, 1, 1},
	}

	FloydSteinberg = DitherKernel{
		{7.0 / 16.0, 1, 0},
		{3.0 / 16.0, -1, 1},
		{5.0 / 16.0, 0, 1},
		{1.0 / 16.0, 1, 1},
	}

	Stucki = DitherKernel{
		{8.0 / 42.0, 1, 0},
		{4.0 / 42.0, 2, 0},
		{2.0 / 42.0, -2, 1},
		{4.0 / 42.0, -1, 1},
		{8.0 / 42.0, 0, 1},
		{4.0 / 42.0, 1, 1},
		{2.0 / 42.0, 2, 1},
		{1.0 / 42.0, -2, 2},
		{2.0 / 42.0, -1, 2},
		{4.0 / 42.0, 0, 2},
		{2.0 / 42.0, 1, 2},
		{1.0 / 42.0, 2, 2},
	}

	Atkinson = DitherKernel{
		{1.0 / 8.0, 1, 0},
		{1.0 / 8.0, 2, 0},
		{1.0 / 8.0, -1, 1},
		{1.0 / 8.0, 0, 1},
		{1.0 / 8.0, 1, 1},
		{1.0 / 8.0, 0, 2},
	}
)

// DitherMethod selects an error-diffusion kernel, or none.
type DitherMethod string

const (
	DitherNone                DitherMethod = "none"
	DitherFloydSteinberg      DitherMethod = "FloydSteinberg"
	DitherFalseFloydSteinberg DitherMethod = "FalseFloydSteinberg"
	DitherStucki              DitherMethod = "Stucki"
	DitherAtkinson            DitherMethod = "Atkinson"
)

func kernelFor(method DitherMethod) (DitherKernel, bool) {
	switch method {
	case DitherFloydSteinberg:
		return FloydSteinberg, true
	case DitherFalseFloydSteinberg:
		return FalseFloydSteinberg, true
	case DitherStucki:
		return Stucki, true
	case DitherAtkinson:
		return Atkinson, true
	default:
		return nil, false
	}
}

func clampChannel(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// indexImage maps each pixel of img to its nearest color in q, with no
// error diffusion.
func indexImage(img *TruecolorImage, q Quantizer) []byte {
	n := img.Width * img.Height
	index := make([]byte, n)
	for i := 0; i < n; i++ {
		c := RGB{R: img.Pix[i*4], G: img.Pix[i*4+1], B: img.Pix[i*4+2]}
		index[i] = byte(q.Index(c))
	}
	return index
}

// ditherIndex quantizes img against q, diffusing each pixel's quantization
// error to its neighbors per method. Works against any Quantizer backend:
// the kernel only needs Index and Palette, not which algorithm built them.
// Grounded on the teacher's dither.go, generalized off direct *GIFEncoder
// field access onto the Quantizer interface and serpentine scanning.
func ditherIndex(img *TruecolorImage, q Quantizer, method DitherMethod, serpentine bool) []byte {
	kernel, ok := kernelFor(method)
	if !ok {
		return indexImage(img, q)
	}

	width, height := img.Width, img.Height
	palette := q.Palette()

	// Mutable scratch copy of the RGB channels; error diffusion writes
	// into this without touching the caller's image.
	work := make([][3]int, width*height)
	for i := 0; i < width*height; i++ {
		work[i][0] = int(img.Pix[i*4])
		work[i][1] = int(img.Pix[i*4+1])
		work[i][2] = int(img.Pix[i*4+2])
	}

	index := make([]byte, width*height)
	direction := 1

	for y := 0; y < height; y++ {
		if serpentine {
			direction = -direction
		}

		var x, xEnd int
		if direction == 1 {
			x, xEnd = 0, width
		} else {
			x, xEnd = width-1, -1
		}

		for x != xEnd {
			i := y*width + x
			r1, g1, b1 := work[i][0], work[i][1], work[i][2]

			c := RGB{R: clampChannel(r1), G: clampChannel(g1), B: clampChannel(b1)}
			colorIdx := q.Index(c)
			index[i] = byte(colorIdx)

			pc := palette[colorIdx]
			er := r1 - int(pc.R)
			eg := g1 - int(pc.G)
			eb := b1 - int(pc.B)

			var ki, kEnd int
			if direction == 1 {
				ki, kEnd = 0, len(kernel)
			} else {
				ki, kEnd = len(kernel)-1, -1
			}

			for ki != kEnd {
				dx := int(kernel[ki][1])
				dy := int(kernel[ki][2])
				nx, ny := x+dx, y+dy
				if nx >= 0 && nx < width && ny >= 0 && ny < height {
					w := kernel[ki][0]
					ni := ny*width + nx
					work[ni][0] += int(float64(er) * w)
					work[ni][1] += int(float64(eg) * w)
					work[ni][2] += int(float64(eb) * w)
				}
				if direction == 1 {
					ki++
				} else {
					ki--
				}
			}

			x += direction
		}
	}

	return index
}
