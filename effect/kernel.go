package effect

// SharpenKernel is the 3x3 Laplacian-based sharpening kernel. The pass
// blends the convolved pixel toward the original by its scaled amount.
var SharpenKernel = [9]float32{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// SmoothKernel is the normalized 3x3 box kernel used by the smooth pass.
var SmoothKernel = [9]float32{
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
}

// GaussianWeights are the 9 tap weights of the separable blur, centered
// on tap 4. They sum to 1 so a fully blurred constant region keeps its
// value. The blur's scaled amount sets the tap spacing in pixels.
var GaussianWeights = [9]float32{
	0.0162162162,
	0.0540540541,
	0.1216216216,
	0.1945945946,
	0.2270270270,
	0.1945945946,
	0.1216216216,
	0.0540540541,
	0.0162162162,
}
