// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package analyze derives adjustment suggestions from image statistics.
// It inspects the source image only and never touches a rendering
// backend, so suggestions are identical no matter which backend draws
// them.
package analyze

import (
	"errors"
	"image"
	"math"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/gogpu/darkroom/effect"
	xdraw "golang.org/x/image/draw"
)

// maxDim bounds the analysis resolution. Larger images are downsampled
// first: level statistics are stable under scaling and analysis cost
// should not grow with megapixels.
const maxDim = 512

// levelThreshold is the fraction of total pixels a histogram bucket must
// exceed before its level counts as populated, so isolated hot or dead
// pixels do not move the levels.
const levelThreshold = 0.001

// Level clamp ranges. A black point above 100 or a white point below 155
// would suggest extreme corrections on already-stylized images, so the
// detected points are clamped before deriving settings.
const (
	maxBlackLevel = 100
	minWhiteLevel = 155
)

// Levels holds the detected tonal range of an image.
type Levels struct {
	// Black is the darkest populated level, clamped to [0, 100].
	Black int

	// White is the brightest populated level, clamped to [155, 255].
	White int
}

// normalize converts img to RGBA at analysis resolution.
func normalize(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		scale := float64(maxDim) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// DetectLevels finds the effective black and white points of img from its
// combined RGB histogram.
func DetectLevels(img image.Image) (Levels, error) {
	if img == nil {
		return Levels{}, errors.New("analyze: nil image")
	}
	small := normalize(img)
	hist := histogram.NewRGBAHistogram(small)

	bins := make([]int, 256)
	total := 0
	for _, ch := range []histogram.Histogram{hist.R, hist.G, hist.B} {
		for i, n := range ch.Bins {
			bins[i] += n
			total += n
		}
	}
	if total == 0 {
		return Levels{}, errors.New("analyze: empty image")
	}

	// A level is populated when its bucket alone exceeds 0.1% of the
	// pixel count. The combined bins count three channel samples per
	// pixel, so they are averaged back down before the comparison.
	b := small.Bounds()
	threshold := int(float64(b.Dx()*b.Dy()) * levelThreshold)

	black := 0
	for ; black < 255; black++ {
		if bins[black]/3 > threshold {
			break
		}
	}
	white := 255
	for ; white > 0; white-- {
		if bins[white]/3 > threshold {
			break
		}
	}

	if black > maxBlackLevel {
		black = maxBlackLevel
	}
	if white < minWhiteLevel {
		white = minWhiteLevel
	}
	return Levels{Black: black, White: white}, nil
}

// Colorfulness estimates how saturated and bright an image already is, as
// a value in roughly [0, 1]. Dull images score low and benefit from a
// vibrance boost; already-vivid images score high and are left alone.
func Colorfulness(img image.Image) (float64, error) {
	if img == nil {
		return 0, errors.New("analyze: nil image")
	}
	small := normalize(img)
	b := small.Bounds()

	// Both sums start at 1 so an all-black image still yields a small
	// positive score instead of dividing pure zeros.
	sumS, sumV := 1.0, 1.0
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := small.PixOffset(x, y)
			r := float64(small.Pix[i])
			g := float64(small.Pix[i+1])
			bl := float64(small.Pix[i+2])
			mx := math.Max(r, math.Max(g, bl))
			mn := math.Min(r, math.Min(g, bl))
			if mx > 0 {
				sumS += (mx - mn) / mx
			}
			sumV += mx / 255
			n++
		}
	}
	if n == 0 {
		return 0, errors.New("analyze: empty image")
	}
	return (sumS + sumV) / float64(2*n), nil
}

// AutoFix derives a settings update from image statistics: whites and
// blacks corrections from the detected levels, plus a vibrance boost for
// dull images. The result is deterministic for a given image.
func AutoFix(img image.Image) (effect.Partial, error) {
	levels, err := DetectLevels(img)
	if err != nil {
		return effect.Partial{}, err
	}
	colorful, err := Colorfulness(img)
	if err != nil {
		return effect.Partial{}, err
	}

	part := effect.Partial{
		Whites: effect.Value(float32(255 - levels.White)),
		Blacks: effect.Value(float32(levels.Black)),
	}
	if colorful < 0.7 {
		boost := math.Round((0.7 - colorful) * 100)
		if boost > 50 {
			boost = 50
		}
		part.Vibrance = effect.Value(float32(boost))
	}
	return part, nil
}
