package software

import "github.com/chewxy/math32"

// rgba is one working pixel with channels in [0, 1] (before clamping).
type rgba struct {
	r, g, b, a float32
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

// quant converts a channel back to 8 bits the way the GPU kernels do:
// clamp, scale, add half, truncate.
func quant(v float32) byte {
	return byte(clamp01(v)*255 + 0.5)
}

func fract(v float32) float32 {
	return v - math32.Floor(v)
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

func step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

func max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}

func luma(c rgba) float32 {
	return 0.2126*c.r + 0.7152*c.g + 0.0722*c.b
}

// rgb2hsv and hsv2rgb are the branchless conversions the hue kernel uses,
// kept in the same form so both backends agree to within quantization.
func rgb2hsv(r, g, b float32) (float32, float32, float32) {
	var px, py, pz, pw float32
	if g >= b {
		px, py, pz, pw = g, b, 0, -1.0/3.0
	} else {
		px, py, pz, pw = b, g, -1, 2.0/3.0
	}
	var qx, qy, qz, qw float32
	if r >= px {
		qx, qy, qz, qw = r, py, pz, px
	} else {
		qx, qy, qz, qw = px, py, pw, r
	}
	d := qx - math32.Min(qw, qy)
	const e = 1.0e-10
	h := math32.Abs(qz + (qw-qy)/(6*d+e))
	s := d / (qx + e)
	return h, s, qx
}

func hsv2rgb(h, s, v float32) (float32, float32, float32) {
	comp := func(off float32) float32 {
		p := math32.Abs(fract(h+off)*6 - 3)
		return v * mix(1, clamp01(p-1), s)
	}
	return comp(1), comp(2.0 / 3.0), comp(1.0 / 3.0)
}
