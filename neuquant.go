package gif

/*
NeuQuant Neural-Net Quantization Algorithm
------------------------------------------

Copyright (c) 1994 Anthony Dekker

NEUQUANT Neural-Net quantization algorithm by Anthony Dekker, 1994.
See "Kohonen neural networks for optimal colour quantization"
in "Network: Computation in Neural Systems" Vol. 5 (1994) pp 351-367.
for a discussion of the algorithm.
See also http://members.ozemail.com.au/~dekker/NEUQUANT.HTML

Any party obtaining a copy of these files from the author, directly or
indirectly, is granted, free of charge, a full and unrestricted irrevocable,
world-wide, paid up, royalty-free, nonexclusive right and license to deal
in this software and documentation files (the "Software"), including without
limitation the rights to use, copy, modify, merge, publish, distribute, sublicense,
and/or sell copies of the Software, and to permit persons who receive
copies from any such party to do so, with the only requirement being
that this copyright notice remain intact.

(Go port 2024, adapted for the Quantizer interface)
*/

const (
	nqCycles         = 100 // number of learning cycles
	nqNetsize        = 256 // number of colors used
	nqMaxnetpos      = nqNetsize - 1
	nqNetbiasshift   = 4  // bias for colour values
	nqIntbiasshift   = 16 // bias for fractions
	nqIntbias        = 1 << nqIntbiasshift
	nqGammashift     = 10
	nqGamma          = 1 << nqGammashift
	nqBetashift      = 10
	nqBeta           = nqIntbias >> nqBetashift // beta = 1/1024
	nqBetagamma      = nqIntbias << (nqGammashift - nqBetashift)
	nqInitrad        = nqNetsize >> 3 // for 256 cols, radius starts
	nqRadiusbiasshift = 6             // at 32.0 biased by 6 bits
	nqRadiusbias     = 1 << nqRadiusbiasshift
	nqInitradius     = nqInitrad * nqRadiusbias // and decreases by a
	nqRadiusdec      = 30                       // factor of 1/30 each cycle
	nqAlphabiasshift = 10                        // alpha starts at 1.0
	nqInitalpha      = 1 << nqAlphabiasshift
	nqRadbiasshift   = 8
	nqRadbias        = 1 << nqRadbiasshift
	nqAlpharadbshift = nqAlphabiasshift + nqRadbiasshift
	nqAlpharadbias   = 1 << nqAlpharadbshift
	nqPrime1         = 499
	nqPrime2         = 491
	nqPrime3         = 487
	nqPrime4         = 503
	nqMinpicturebytes = 3 * nqPrime4
)

// NeuQuantQuantizer is the Dekker neural-net color quantizer from the
// teacher repo, wired to the Quantizer interface. It always trains a
// 256-entry network (the algorithm's neuron count is load-bearing, not an
// arbitrary palette cap), so Build requires maxColors == 256 — callers
// wanting a smaller palette should use MedianCutQuantizer instead. It
// suits large photographic frames where NeuQuant's perceptual clustering
// outperforms median-cut's axis-aligned boxes; MedianCutQuantizer remains
// the default because it alone gives the deterministic, exact-palette-size
// guarantee the rest of this package's tests rely on.
type NeuQuantQuantizer struct {
	network  [][]int32 // [nqNetsize][4]: R, G, B (b/g/r naming below is inherited, not positional), original-index
	netindex []int32   // [256]
	bias     []int32   // [nqNetsize]
	freq     []int32   // [nqNetsize]
	radpower []int32   // [nqInitrad]
	palette  Palette
	// samplefac trades learning quality for speed, 1 (best) to 30
	// (fastest); mirrors the teacher's SetQuality knob.
	samplefac int
}

// NewNeuQuantQuantizer creates a quantizer with the given sampling factor
// (1 = highest quality, up to 30 = fastest).
func NewNeuQuantQuantizer(samplefac int) *NeuQuantQuantizer {
	if samplefac < 1 {
		samplefac = 1
	}
	if samplefac > 30 {
		samplefac = 30
	}
	return &NeuQuantQuantizer{
		network:   make([][]int32, nqNetsize),
		netindex:  make([]int32, 256),
		bias:      make([]int32, nqNetsize),
		freq:      make([]int32, nqNetsize),
		radpower:  make([]int32, nqInitrad),
		samplefac: samplefac,
	}
}

// Build trains the network from colors (frequency-preserving: repeated
// colors should appear repeatedly, as they would in a raw pixel stream —
// unlike MedianCutQuantizer, this backend's clustering depends on color
// frequency, not just the set of distinct colors present).
func (nq *NeuQuantQuantizer) Build(colors []RGB, maxColors int) (Palette, error) {
	if maxColors != nqNetsize {
		return nil, newValidationError("maxColors", "NeuQuantQuantizer only supports maxColors=%d, got %d", nqNetsize, maxColors)
	}
	if len(colors) == 0 {
		return nil, newValidationError("colors", "no colors to quantize")
	}

	pixels := make([]byte, len(colors)*3)
	for i, c := range colors {
		pixels[i*3] = c.R
		pixels[i*3+1] = c.G
		pixels[i*3+2] = c.B
	}

	nq.init()
	nq.learn(pixels)
	nq.unbiasnet()
	nq.inxbuild()

	palette := make(Palette, nqNetsize)
	index := make([]int, nqNetsize)
	for i := 0; i < nqNetsize; i++ {
		index[nq.network[i][3]] = i
	}
	for i := 0; i < nqNetsize; i++ {
		j := index[i]
		// network[j] holds the trained channels in the same order Build
		// fed them in (R, G, B), despite the b/g/r parameter names the
		// rest of this file inherits from the original NeuQuant source.
		palette[i] = RGB{R: uint8(nq.network[j][0]), G: uint8(nq.network[j][1]), B: uint8(nq.network[j][2])}
	}
	nq.palette = palette
	return palette, nil
}

func (nq *NeuQuantQuantizer) Palette() Palette {
	return nq.palette
}

// Index looks up the closest trained neuron to c and returns its palette
// position. Channel order must match Build's pixel layout (R, G, B) even
// though inxsearch's parameters are still named b, g, r from the original.
func (nq *NeuQuantQuantizer) Index(c RGB) int {
	return nq.inxsearch(int32(c.R), int32(c.G), int32(c.B))
}

func (nq *NeuQuantQuantizer) init() {
	for i := 0; i < nqNetsize; i++ {
		v := int32((i << (nqNetbiasshift + 8)) / nqNetsize)
		nq.network[i] = []int32{v, v, v, 0}
		nq.freq[i] = nqIntbias / nqNetsize
		nq.bias[i] = 0
	}
}

func (nq *NeuQuantQuantizer) unbiasnet() {
	for i := 0; i < nqNetsize; i++ {
		nq.network[i][0] >>= nqNetbiasshift
		nq.network[i][1] >>= nqNetbiasshift
		nq.network[i][2] >>= nqNetbiasshift
		nq.network[i][3] = int32(i)
	}
}

func (nq *NeuQuantQuantizer) altersingle(alpha, i int32, b, g, r int32) {
	nq.network[i][0] -= (alpha * (nq.network[i][0] - b)) / nqInitalpha
	nq.network[i][1] -= (alpha * (nq.network[i][1] - g)) / nqInitalpha
	nq.network[i][2] -= (alpha * (nq.network[i][2] - r)) / nqInitalpha
}

func (nq *NeuQuantQuantizer) alterneigh(radius int, i int, b, g, r int32) {
	lo := nqAbs(i - radius)
	hi := nqMin(i+radius, nqNetsize)

	j := i + 1
	k := i - 1
	m := 1

	for j < hi || k > lo {
		a := nq.radpower[m]
		m++

		if j < hi {
			p := nq.network[j]
			p[0] -= (a * (p[0] - b)) / nqAlpharadbias
			p[1] -= (a * (p[1] - g)) / nqAlpharadbias
			p[2] -= (a * (p[2] - r)) / nqAlpharadbias
			j++
		}

		if k > lo {
			p := nq.network[k]
			p[0] -= (a * (p[0] - b)) / nqAlpharadbias
			p[1] -= (a * (p[1] - g)) / nqAlpharadbias
			p[2] -= (a * (p[2] - r)) / nqAlpharadbias
			k--
		}
	}
}

func (nq *NeuQuantQuantizer) contest(b, g, r int32) int {
	bestd := int32(0x7FFFFFFF)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := bestpos

	for i := 0; i < nqNetsize; i++ {
		n := nq.network[i]
		dist := nqAbs32(n[0]-b) + nqAbs32(n[1]-g) + nqAbs32(n[2]-r)

		if dist < bestd {
			bestd = dist
			bestpos = i
		}

		biasdist := dist - ((nq.bias[i]) >> (nqIntbiasshift - nqNetbiasshift))
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}

		betafreq := nq.freq[i] >> nqBetashift
		nq.freq[i] -= betafreq
		nq.bias[i] += betafreq << nqGammashift
	}

	nq.freq[bestpos] += nqBeta
	nq.bias[bestpos] -= nqBetagamma

	return bestbiaspos
}

func (nq *NeuQuantQuantizer) learn(pixels []byte) {
	lengthcount := len(pixels)
	alphadec := int32(30 + ((nq.samplefac - 1) / 3))
	samplepixels := lengthcount / (3 * nq.samplefac)
	delta := samplepixels / nqCycles
	if delta == 0 {
		delta = 1
	}

	alpha := int32(nqInitalpha)
	radius := int32(nqInitradius)

	rad := int(radius >> nqRadiusbiasshift)
	if rad <= 1 {
		rad = 0
	}

	for i := 0; i < rad; i++ {
		nq.radpower[i] = alpha * ((int32(rad*rad-i*i) * nqRadbias) / int32(rad*rad))
	}

	var step int
	if lengthcount < nqMinpicturebytes {
		nq.samplefac = 1
		step = 3
	} else if lengthcount%nqPrime1 != 0 {
		step = 3 * nqPrime1
	} else if lengthcount%nqPrime2 != 0 {
		step = 3 * nqPrime2
	} else if lengthcount%nqPrime3 != 0 {
		step = 3 * nqPrime3
	} else {
		step = 3 * nqPrime4
	}

	pix := 0
	i := 0

	for i < samplepixels {
		b := (int32(pixels[pix]) & 0xff) << nqNetbiasshift
		g := (int32(pixels[pix+1]) & 0xff) << nqNetbiasshift
		r := (int32(pixels[pix+2]) & 0xff) << nqNetbiasshift

		j := nq.contest(b, g, r)

		nq.altersingle(alpha, int32(j), b, g, r)
		if rad != 0 {
			nq.alterneigh(rad, j, b, g, r)
		}

		pix += step
		if pix >= lengthcount {
			pix -= lengthcount
		}

		i++

		if i%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / nqRadiusdec
			rad = int(radius >> nqRadiusbiasshift)

			if rad <= 1 {
				rad = 0
			}
			for j := 0; j < rad; j++ {
				nq.radpower[j] = alpha * ((int32(rad*rad-j*j) * nqRadbias) / int32(rad*rad))
			}
		}
	}
}

func (nq *NeuQuantQuantizer) inxbuild() {
	previouscol := int32(0)
	startpos := 0

	for i := 0; i < nqNetsize; i++ {
		p := nq.network[i]
		smallpos := i
		smallval := p[1]

		for j := i + 1; j < nqNetsize; j++ {
			q := nq.network[j]
			if q[1] < smallval {
				smallpos = j
				smallval = q[1]
			}
		}

		if i != smallpos {
			nq.network[i], nq.network[smallpos] = nq.network[smallpos], nq.network[i]
			p = nq.network[i]
		}

		if smallval != previouscol {
			nq.netindex[previouscol] = int32((startpos + i) >> 1)
			for j := previouscol + 1; j < smallval; j++ {
				nq.netindex[j] = int32(i)
			}
			previouscol = smallval
			startpos = i
		}
	}

	nq.netindex[previouscol] = int32((startpos + nqMaxnetpos) >> 1)
	for j := previouscol + 1; j < 256; j++ {
		nq.netindex[j] = nqMaxnetpos
	}
}

func (nq *NeuQuantQuantizer) inxsearch(b, g, r int32) int {
	bestd := int32(1000)
	best := -1

	i := int(nq.netindex[g])
	j := i - 1

	for i < nqNetsize || j >= 0 {
		if i < nqNetsize {
			p := nq.network[i]
			dist := p[1] - g

			if dist >= bestd {
				i = nqNetsize
			} else {
				i++
				if dist < 0 {
					dist = -dist
				}
				a := p[0] - b
				if a < 0 {
					a = -a
				}
				dist += a

				if dist < bestd {
					a = p[2] - r
					if a < 0 {
						a = -a
					}
					dist += a

					if dist < bestd {
						bestd = dist
						best = int(p[3])
					}
				}
			}
		}

		if j >= 0 {
			p := nq.network[j]
			dist := g - p[1]

			if dist >= bestd {
				j = -1
			} else {
				j--
				if dist < 0 {
					dist = -dist
				}
				a := p[0] - b
				if a < 0 {
					a = -a
				}
				dist += a

				if dist < bestd {
					a = p[2] - r
					if a < 0 {
						a = -a
					}
					dist += a

					if dist < bestd {
						bestd = dist
						best = int(p[3])
					}
				}
			}
		}
	}

	return best
}

func nqAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func nqAbs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

func nqMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}
