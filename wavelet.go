package stego

// Daubechies-4 discrete wavelet transform over float64 sample buffers.
// The transform is periodized: each step wraps the signal, keeping the
// coefficient count equal to the sample count and the filter bank
// orthonormal, so decompose/reconstruct is an exact inverse (up to
// float rounding). No Go wavelet library is imported; see DESIGN.md.

// db4Lo holds the 8-tap Daubechies-4 orthonormal scaling filter.
var db4Lo = [8]float64{
	0.23037781330885523,
	0.7148465705525415,
	0.6308807679295904,
	-0.02798376941698385,
	-0.18703481171888114,
	0.030841381835986965,
	0.032883011666982945,
	-0.010597401784997278,
}

// db4Hi is the quadrature mirror of db4Lo: g[k] = (-1)^k h[L-1-k].
var db4Hi = quadratureMirror(db4Lo)

func quadratureMirror(lo [8]float64) [8]float64 {
	var hi [8]float64
	for k := range lo {
		v := lo[len(lo)-1-k]
		if k%2 == 1 {
			v = -v
		}
		hi[k] = v
	}
	return hi
}

// dwtCoeffs is a multi-level decomposition. details are ordered
// coarsest first: details[0] pairs with the final approximation,
// details[len-1] is the finest band. lengths records the input length
// at each decomposition step (finest first) so reconstruction can clip
// padding drift back out.
type dwtCoeffs struct {
	approx  []float64
	details [][]float64
	lengths []int
}

// dwtStep runs one analysis step over an even-length signal.
func dwtStep(x []float64) (approx, detail []float64) {
	n := len(x)
	half := n / 2
	approx = make([]float64, half)
	detail = make([]float64, half)
	for i := 0; i < half; i++ {
		var a, d float64
		for k := 0; k < len(db4Lo); k++ {
			v := x[(2*i+k)%n]
			a += db4Lo[k] * v
			d += db4Hi[k] * v
		}
		approx[i] = a
		detail[i] = d
	}
	return approx, detail
}

// idwtStep runs one synthesis step, inverting dwtStep exactly.
func idwtStep(approx, detail []float64) []float64 {
	n := len(approx) * 2
	x := make([]float64, n)
	for i := range approx {
		for k := 0; k < len(db4Lo); k++ {
			x[(2*i+k)%n] += db4Lo[k]*approx[i] + db4Hi[k]*detail[i]
		}
	}
	return x
}

// waveDecompose runs a multi-level analysis. Odd-length inputs at any
// level are padded by repeating the final sample; the recorded lengths
// let waveReconstruct clip the drift back out. Callers that
// re-decompose a reconstructed signal (the audio codec) must present
// lengths divisible by 2^level so no padding occurs and coefficients
// survive the round trip bit-exactly.
func waveDecompose(signal []float64, level int) *dwtCoeffs {
	cur := make([]float64, len(signal))
	copy(cur, signal)

	c := &dwtCoeffs{}
	for l := 0; l < level; l++ {
		c.lengths = append(c.lengths, len(cur))
		if len(cur)%2 == 1 {
			cur = append(cur, cur[len(cur)-1])
		}
		approx, detail := dwtStep(cur)
		c.details = append([][]float64{detail}, c.details...)
		cur = approx
	}
	c.approx = cur
	return c
}

// waveReconstruct inverts waveDecompose, clipping each synthesis step
// back to the recorded input length.
func waveReconstruct(c *dwtCoeffs) []float64 {
	cur := c.approx
	level := len(c.details)
	for l := 0; l < level; l++ {
		cur = idwtStep(cur, c.details[l])
		orig := c.lengths[level-1-l]
		if len(cur) > orig {
			cur = cur[:orig]
		} else if len(cur) < orig {
			pad := make([]float64, orig-len(cur))
			cur = append(cur, pad...)
		}
	}
	return cur
}
