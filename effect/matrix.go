// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

// Rec. 709 luma coefficients, used wherever a pass needs a scalar
// brightness estimate of an RGB pixel.
const (
	LumaR float32 = 0.2126
	LumaG float32 = 0.7152
	LumaB float32 = 0.0722
)

// Luma returns the Rec. 709 luma of an RGB triple in [0, 1].
func Luma(r, g, b float32) float32 {
	return LumaR*r + LumaG*g + LumaB*b
}

// SaturationMatrix builds the 4x5 color matrix scaling chroma around the
// luma axis. amount is the scaled setting in [-1, 1]: -1 is full
// grayscale, 0 is identity, +1 doubles the distance from gray.
func SaturationMatrix(amount float32) [20]float32 {
	f := 1 + amount
	ir := (1 - f) * LumaR
	ig := (1 - f) * LumaG
	ib := (1 - f) * LumaB
	return [20]float32{
		ir + f, ig, ib, 0, 0,
		ir, ig + f, ib, 0, 0,
		ir, ig, ib + f, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix builds the 4x5 color matrix scaling each channel around
// mid-gray. amount is the scaled setting in [-1, 1]: -1 flattens toward
// 0.5, 0 is identity, +1 doubles the distance from mid-gray.
func ContrastMatrix(amount float32) [20]float32 {
	f := 1 + amount
	t := (1 - f) * 0.5
	return [20]float32{
		f, 0, 0, 0, t,
		0, f, 0, 0, t,
		0, 0, f, 0, t,
		0, 0, 0, 1, 0,
	}
}

// ApplyMatrix transforms one RGBA pixel (channels in [0, 1]) through a
// 4x5 matrix. Alpha rows are carried so matrices remain general even
// though the built-in ones leave alpha untouched.
func ApplyMatrix(m *[20]float32, r, g, b, a float32) (float32, float32, float32, float32) {
	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
	return nr, ng, nb, na
}
