package effect

import "github.com/chewxy/math32"

// LUTSize is the entry count of the tone lookup table consumed by the
// blacks pass. The table is uploaded as a LUTSize x 1 RGBA texture.
const LUTSize = 256

// BlacksCurve builds the 256-entry RGBA tone lookup table for the blacks
// pass. amount is the scaled setting in [-0.5, 0.5]: positive values
// crush the black point (inputs below the new floor clamp to zero),
// negative values lift it (pure black renders as gray). At amount 0 the
// curve degenerates to the identity line exactly.
//
// The curve is a cubic Bezier from the shifted black point to (1, 1).
// Bezier x is not an invertible function of t in general, so the table is
// filled by sampling t densely, bucketing each sample by its x, and then
// sweeping once to propagate values across any unhit entries. The sweep
// also forces monotonicity, which quantization of a steep toe can
// otherwise break by a single step.
func BlacksCurve(amount float32) [LUTSize * 4]byte {
	// Control points. The inner pair sits on the identity line so the
	// upper half of the range eases back toward untouched.
	x0 := math32.Max(0, amount)
	y0 := math32.Max(0, -amount)
	const x1, y1 = 0.3, 0.3
	const x2, y2 = 0.7, 0.7
	const x3, y3 = 1.0, 1.0

	var vals [LUTSize]int
	for i := range vals {
		vals[i] = -1
	}

	const samples = 4 * LUTSize
	for i := 0; i <= samples; i++ {
		t := float32(i) / samples
		u := 1 - t
		b0 := u * u * u
		b1 := 3 * u * u * t
		b2 := 3 * u * t * t
		b3 := t * t * t
		x := b0*x0 + b1*x1 + b2*x2 + b3*x3
		y := b0*y0 + b1*y1 + b2*y2 + b3*y3
		xi := int(math32.Round(clamp01(x) * (LUTSize - 1)))
		vals[xi] = int(math32.Round(clamp01(y) * 255))
	}

	// Inputs left of the black point never receive a sample when the
	// point is crushed; they map to zero.
	prev := 0
	for i := range vals {
		if vals[i] < 0 || vals[i] < prev {
			vals[i] = prev
		}
		prev = vals[i]
	}

	var lut [LUTSize * 4]byte
	for i, v := range vals {
		lut[i*4+0] = byte(v)
		lut[i*4+1] = byte(v)
		lut[i*4+2] = byte(v)
		lut[i*4+3] = 255
	}
	return lut
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
