package animgif

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

(Go port, struct-of-arrays layout)
*/

const (
	nqCycles         = 100 // number of learning cycles
	nqNetBiasShift   = 4   // bias for colour values
	nqIntBiasShift   = 16  // bias for fractions
	nqIntBias        = 1 << nqIntBiasShift
	nqGammaShift     = 10
	nqBetaShift      = 10
	nqBeta           = nqIntBias >> nqBetaShift // beta = 1/1024
	nqBetaGamma      = nqIntBias << (nqGammaShift - nqBetaShift)
	nqRadiusBiasShift = 6 // at 32.0 biased by 6 bits
	nqRadiusBias     = 1 << nqRadiusBiasShift
	nqRadiusDec      = 30 // factor of 1/30 each cycle
	nqAlphaBiasShift = 10 // alpha starts at 1.0
	nqInitAlpha      = 1 << nqAlphaBiasShift
	nqRadBiasShift   = 8
	nqRadBias        = 1 << nqRadBiasShift
	nqAlphaRadBShift = nqAlphaBiasShift + nqRadBiasShift
	nqAlphaRadBias   = 1 << nqAlphaRadBShift
	nqPrime1         = 499
	nqPrime2         = 491
	nqPrime3         = 487
	nqPrime4         = 503
	nqMinPictureBytes = 3 * nqPrime4
)

// NeuQuant is a Kohonen self-organizing map color quantizer, learning a
// palette of up to N <= 256 BGR neurons from a flat BGR byte buffer.
//
// The network is kept as four parallel int32 arrays (struct-of-arrays)
// rather than a slice of freshly-allocated [4]int32 rows, to avoid a
// per-neuron heap allocation.
type NeuQuant struct {
	netSize int // number of neurons to learn, 2..256

	netB, netG, netR []int32 // biased colour components while learning
	netOrig          []int32 // original index, set during unbias

	netIndex []int32 // [256], sorted-by-G secondary index
	bias     []int32 // [netSize]
	freq     []int32 // [netSize]
	radpower []int32 // [initrad]

	pixels    []byte // input BGR buffer, released after learning
	samplefac int    // sampling factor 1..30

	initRad int
}

// NewNeuQuant creates a quantizer that will learn up to maxColors neurons
// (clamped to [2,256]) from pixels, a flat BGR byte buffer, sampling at
// samplefac (1 = every pixel, higher = faster/lower quality).
func NewNeuQuant(pixels []byte, maxColors, samplefac int) *NeuQuant {
	if maxColors < 2 {
		maxColors = 2
	}
	if maxColors > 256 {
		maxColors = 256
	}
	if samplefac < 1 {
		samplefac = 1
	}
	if len(pixels) < nqMinPictureBytes {
		samplefac = 1
	}

	initRad := maxColors >> 3
	nq := &NeuQuant{
		netSize:   maxColors,
		netB:      make([]int32, maxColors),
		netG:      make([]int32, maxColors),
		netR:      make([]int32, maxColors),
		netOrig:   make([]int32, maxColors),
		netIndex:  make([]int32, 256),
		bias:      make([]int32, maxColors),
		freq:      make([]int32, maxColors),
		radpower:  make([]int32, max(initRad, 1)),
		pixels:    pixels,
		samplefac: samplefac,
		initRad:   initRad,
	}
	nq.init()
	return nq
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (nq *NeuQuant) init() {
	n := nq.netSize
	for i := 0; i < n; i++ {
		v := int32((i << (nqNetBiasShift + 8)) / n)
		nq.netB[i], nq.netG[i], nq.netR[i] = v, v, v
		nq.freq[i] = nqIntBias / int32(n)
		nq.bias[i] = 0
	}
}

// Learn runs the full pipeline: learn, unbias, build the sorted index. After
// this call Map can be used for nearest-neighbor lookups and NeuronRGB can be
// used to read out the learned colors.
func (nq *NeuQuant) Learn() {
	nq.learn()
	nq.pixels = nil
	nq.unbias()
	nq.buildIndex()
}

func (nq *NeuQuant) learn() {
	n := nq.netSize
	lengthcount := len(nq.pixels)
	if lengthcount < 3 {
		return
	}

	alphadec := int32(30 + (nq.samplefac-1)/3)
	samplepixels := lengthcount / (3 * nq.samplefac)
	delta := samplepixels / nqCycles
	if delta == 0 {
		delta = 1
	}

	alpha := int32(nqInitAlpha)
	radius := int32(n>>3) * nqRadiusBias

	rad := int(radius >> nqRadiusBiasShift)
	if rad <= 1 {
		rad = 0
	}
	nq.setRadPower(alpha, rad)

	var step int
	switch {
	case lengthcount < nqMinPictureBytes:
		step = 3
	case lengthcount%nqPrime1 != 0:
		step = 3 * nqPrime1
	case lengthcount%nqPrime2 != 0:
		step = 3 * nqPrime2
	case lengthcount%nqPrime3 != 0:
		step = 3 * nqPrime3
	default:
		step = 3 * nqPrime4
	}

	pix := 0
	for i := 0; i < samplepixels; i++ {
		b := (int32(nq.pixels[pix]) & 0xff) << nqNetBiasShift
		g := (int32(nq.pixels[pix+1]) & 0xff) << nqNetBiasShift
		r := (int32(nq.pixels[pix+2]) & 0xff) << nqNetBiasShift

		j := nq.contest(b, g, r)

		nq.alterSingle(alpha, j, b, g, r)
		if rad != 0 {
			nq.alterNeighbor(rad, j, b, g, r)
		}

		pix += step
		if pix >= lengthcount {
			pix -= lengthcount
		}

		if (i+1)%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / nqRadiusDec
			rad = int(radius >> nqRadiusBiasShift)
			if rad <= 1 {
				rad = 0
			}
			nq.setRadPower(alpha, rad)
		}
	}
}

func (nq *NeuQuant) setRadPower(alpha int32, rad int) {
	for i := 0; i < rad; i++ {
		nq.radpower[i] = alpha * ((int32(rad*rad-i*i) * nqRadBias) / int32(rad*rad))
	}
}

// contest finds the closest neuron (min Manhattan distance) and updates its
// freq/bias; finds and returns the best-biased neuron.
func (nq *NeuQuant) contest(b, g, r int32) int {
	bestd := int32(0x7FFFFFFF)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := bestpos

	for i := 0; i < nq.netSize; i++ {
		dist := iabs32(nq.netB[i]-b) + iabs32(nq.netG[i]-g) + iabs32(nq.netR[i]-r)
		if dist < bestd {
			bestd = dist
			bestpos = i
		}

		biasdist := dist - (nq.bias[i] >> (nqIntBiasShift - nqNetBiasShift))
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}

		betafreq := nq.freq[i] >> nqBetaShift
		nq.freq[i] -= betafreq
		nq.bias[i] += betafreq << nqGammaShift
	}

	nq.freq[bestpos] += nqBeta
	nq.bias[bestpos] -= nqBetaGamma

	return bestbiaspos
}

func (nq *NeuQuant) alterSingle(alpha int32, i int, b, g, r int32) {
	nq.netB[i] -= (alpha * (nq.netB[i] - b)) / nqInitAlpha
	nq.netG[i] -= (alpha * (nq.netG[i] - g)) / nqInitAlpha
	nq.netR[i] -= (alpha * (nq.netR[i] - r)) / nqInitAlpha
}

func (nq *NeuQuant) alterNeighbor(rad int, i int, b, g, r int32) {
	n := nq.netSize
	lo := i - rad
	if lo < -1 {
		lo = -1
	}
	hi := i + rad
	if hi > n {
		hi = n
	}

	j := i + 1
	k := i - 1
	m := 1

	for j < hi || k > lo {
		a := nq.radpower[m]
		m++

		if j < hi {
			nq.netB[j] -= (a * (nq.netB[j] - b)) / nqAlphaRadBias
			nq.netG[j] -= (a * (nq.netG[j] - g)) / nqAlphaRadBias
			nq.netR[j] -= (a * (nq.netR[j] - r)) / nqAlphaRadBias
			j++
		}

		if k > lo {
			nq.netB[k] -= (a * (nq.netB[k] - b)) / nqAlphaRadBias
			nq.netG[k] -= (a * (nq.netG[k] - g)) / nqAlphaRadBias
			nq.netR[k] -= (a * (nq.netR[k] - r)) / nqAlphaRadBias
			k--
		}
	}
}

// unbias right-shifts every neuron back to byte range and records its
// original (pre-sort) index.
func (nq *NeuQuant) unbias() {
	for i := 0; i < nq.netSize; i++ {
		nq.netB[i] >>= nqNetBiasShift
		nq.netG[i] >>= nqNetBiasShift
		nq.netR[i] >>= nqNetBiasShift
		if nq.netB[i] < 0 {
			nq.netB[i] = 0
		}
		if nq.netG[i] < 0 {
			nq.netG[i] = 0
		}
		if nq.netR[i] < 0 {
			nq.netR[i] = 0
		}
		nq.netOrig[i] = int32(i)
	}
}

// buildIndex selection-sorts the network by green ascending and builds
// netIndex[g] = starting neuron for a query with green component g.
func (nq *NeuQuant) buildIndex() {
	n := nq.netSize
	previouscol := int32(0)
	startpos := 0

	for i := 0; i < n; i++ {
		smallpos := i
		smallval := nq.netG[i]

		for j := i + 1; j < n; j++ {
			if nq.netG[j] < smallval {
				smallpos = j
				smallval = nq.netG[j]
			}
		}

		if i != smallpos {
			nq.netB[i], nq.netB[smallpos] = nq.netB[smallpos], nq.netB[i]
			nq.netG[i], nq.netG[smallpos] = nq.netG[smallpos], nq.netG[i]
			nq.netR[i], nq.netR[smallpos] = nq.netR[smallpos], nq.netR[i]
			nq.netOrig[i], nq.netOrig[smallpos] = nq.netOrig[smallpos], nq.netOrig[i]
		}

		if smallval != previouscol {
			nq.netIndex[previouscol] = int32(startpos+i) >> 1
			for j := previouscol + 1; j < smallval; j++ {
				nq.netIndex[j] = int32(i)
			}
			previouscol = smallval
			startpos = i
		}
	}

	maxnetpos := int32(n - 1)
	nq.netIndex[previouscol] = (int32(startpos) + maxnetpos) >> 1
	for j := previouscol + 1; j < 256; j++ {
		nq.netIndex[j] = maxnetpos
	}
}

// Map returns the original index (as set at unbias time) of the neuron
// nearest to (b,g,r), searching outward from netIndex[g] in both
// directions and pruning on the green-channel bound first.
func (nq *NeuQuant) Map(b, g, r int32) int {
	bestd := int32(1000) // biggest possible dist is 256*3
	best := -1
	n := nq.netSize

	if g > 255 {
		g = 255
	}
	i := int(nq.netIndex[g])
	j := i - 1

	for i < n || j >= 0 {
		if i < n {
			p := i
			dist := nq.netG[p] - g
			if dist >= bestd {
				i = n
			} else {
				i++
				if dist < 0 {
					dist = -dist
				}
				a := nq.netB[p] - b
				if a < 0 {
					a = -a
				}
				dist += a
				if dist < bestd {
					a = nq.netR[p] - r
					if a < 0 {
						a = -a
					}
					dist += a
					if dist < bestd {
						bestd = dist
						best = int(nq.netOrig[p])
					}
				}
			}
		}

		if j >= 0 {
			p := j
			dist := g - nq.netG[p]
			if dist >= bestd {
				j = -1
			} else {
				j--
				if dist < 0 {
					dist = -dist
				}
				a := nq.netB[p] - b
				if a < 0 {
					a = -a
				}
				dist += a
				if dist < bestd {
					a = nq.netR[p] - r
					if a < 0 {
						a = -a
					}
					dist += a
					if dist < bestd {
						bestd = dist
						best = int(nq.netOrig[p])
					}
				}
			}
		}
	}

	return best
}

// NeuronRGB returns the (r,g,b) of neuron i, in [0,netSize), after Learn.
func (nq *NeuQuant) NeuronRGB(i int) (r, g, b byte) {
	return byte(nq.netR[i]), byte(nq.netG[i]), byte(nq.netB[i])
}

// NeuronOriginalIndex returns the pre-sort index recorded at unbias time —
// the stable identity Map results are returned in terms of.
func (nq *NeuQuant) NeuronOriginalIndex(i int) int {
	return int(nq.netOrig[i])
}

// Size returns the number of neurons this quantizer was built with.
func (nq *NeuQuant) Size() int {
	return nq.netSize
}

func iabs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
