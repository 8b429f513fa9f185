package software

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/darkroom/effect"
)

func loadPx(t *texture, x, y int) rgba {
	i := (y*t.w + x) * 4
	return rgba{
		r: float32(t.pix[i]) / 255,
		g: float32(t.pix[i+1]) / 255,
		b: float32(t.pix[i+2]) / 255,
		a: float32(t.pix[i+3]) / 255,
	}
}

func storePx(t *texture, x, y int, c rgba) {
	i := (y*t.w + x) * 4
	t.pix[i] = quant(c.r)
	t.pix[i+1] = quant(c.g)
	t.pix[i+2] = quant(c.b)
	t.pix[i+3] = quant(c.a)
}

// tap samples src with coordinates clamped to the image edge, matching
// the GPU kernels' out-of-bounds behavior.
func tap(t *texture, x, y int) rgba {
	if x < 0 {
		x = 0
	} else if x >= t.w {
		x = t.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.h {
		y = t.h - 1
	}
	return loadPx(t, x, y)
}

// pointwise runs a per-pixel kernel with no neighborhood access.
func pointwise(src, dst *texture, fn func(c rgba) rgba) {
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			storePx(dst, x, y, fn(loadPx(src, x, y)))
		}
	}
}

// spatial runs a kernel that may sample the neighborhood of (x, y).
func spatial(src, dst *texture, fn func(x, y int, c rgba) rgba) {
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			storePx(dst, x, y, fn(x, y, loadPx(src, x, y)))
		}
	}
}

func runPass(p effect.Pass, src, dst *texture, table *[effect.LUTSize * 4]byte) error {
	amt := p.Amount

	switch p.Kind {
	case effect.KindVibrance:
		pointwise(src, dst, func(c rgba) rgba {
			avg := (c.r + c.g + c.b) / 3
			mx := max3(c.r, c.g, c.b)
			t := (mx - avg) * (-amt * 3)
			c.r = mix(c.r, mx, t)
			c.g = mix(c.g, mx, t)
			c.b = mix(c.b, mx, t)
			return c
		})

	case effect.KindSaturation, effect.KindContrast:
		m := p.Matrix
		pointwise(src, dst, func(c rgba) rgba {
			c.r, c.g, c.b, c.a = effect.ApplyMatrix(&m, c.r, c.g, c.b, c.a)
			return c
		})

	case effect.KindTemperature:
		pointwise(src, dst, func(c rgba) rgba {
			c.r += amt
			c.b -= amt
			return c
		})

	case effect.KindTint:
		pointwise(src, dst, func(c rgba) rgba {
			c.g -= amt
			return c
		})

	case effect.KindHue:
		pointwise(src, dst, func(c rgba) rgba {
			h, s, v := rgb2hsv(c.r, c.g, c.b)
			h = fract(h + amt + 1)
			c.r, c.g, c.b = hsv2rgb(h, s, v)
			return c
		})

	case effect.KindBrightness:
		f := 1 + amt
		pointwise(src, dst, func(c rgba) rgba {
			c.r *= f
			c.g *= f
			c.b *= f
			return c
		})

	case effect.KindExposure:
		gain := math32.Exp2(amt * 2)
		pointwise(src, dst, func(c rgba) rgba {
			expose := func(v float32) float32 {
				lin := math32.Pow(math32.Max(v, 0), 2.2)
				return math32.Pow(lin*gain, 1/2.2)
			}
			c.r, c.g, c.b = expose(c.r), expose(c.g), expose(c.b)
			return c
		})

	case effect.KindBlacks:
		lookup := func(v float32, ch int) float32 {
			i := int(math32.Round(clamp01(v) * 255))
			return float32(table[i*4+ch]) / 255
		}
		pointwise(src, dst, func(c rgba) rgba {
			c.r = lookup(c.r, 0)
			c.g = lookup(c.g, 1)
			c.b = lookup(c.b, 2)
			return c
		})

	case effect.KindWhites:
		pointwise(src, dst, func(c rgba) rgba {
			c.r *= 1 + amt*c.r
			c.g *= 1 + amt*c.g
			c.b *= 1 + amt*c.b
			return c
		})

	case effect.KindHighlights:
		pointwise(src, dst, func(c rgba) rgba {
			f := 1 + amt*smoothstep(0.5, 1, luma(c))*0.7
			c.r *= f
			c.g *= f
			c.b *= f
			return c
		})

	case effect.KindShadows:
		pointwise(src, dst, func(c rgba) rgba {
			lift := amt * (1 - smoothstep(0, 0.5, luma(c))) * 0.35
			c.r += lift
			c.g += lift
			c.b += lift
			return c
		})

	case effect.KindDehaze:
		air := 0.1 * amt
		f := 1 + 0.3*amt
		pointwise(src, dst, func(c rgba) rgba {
			c.r = (c.r - air) * f
			c.g = (c.g - air) * f
			c.b = (c.b - air) * f
			return c
		})

	case effect.KindBloom:
		spatial(src, dst, func(x, y int, c rgba) rgba {
			var ar, ag, ab float32
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					s := tap(src, x+dx, y+dy)
					ar += math32.Max(s.r-0.7, 0)
					ag += math32.Max(s.g-0.7, 0)
					ab += math32.Max(s.b-0.7, 0)
				}
			}
			k := amt * 3 / 25
			c.r += ar * k
			c.g += ag * k
			c.b += ab * k
			return c
		})

	case effect.KindGlamour:
		spatial(src, dst, func(x, y int, c rgba) rgba {
			var ar, ag, ab float32
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					s := tap(src, x+dx, y+dy)
					ar += s.r
					ag += s.g
					ab += s.b
				}
			}
			overlay := func(base, soft float32) float32 {
				lo := 2 * base * soft
				hi := 1 - 2*(1-base)*(1-soft)
				return mix(base, mix(lo, hi, step(0.5, base)), amt)
			}
			c.r = overlay(c.r, ar/25)
			c.g = overlay(c.g, ag/25)
			c.b = overlay(c.b, ab/25)
			return c
		})

	case effect.KindClarity:
		spatial(src, dst, func(x, y int, c rgba) rgba {
			var acc float32
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					acc += luma(tap(src, x+dx*2, y+dy*2))
				}
			}
			detail := (luma(c) - acc/25) * amt
			c.r += detail
			c.g += detail
			c.b += detail
			return c
		})

	case effect.KindSharpen, effect.KindSmooth:
		k := p.Kernel
		spatial(src, dst, func(x, y int, c rgba) rgba {
			var cr, cg, cb float32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					w := k[(dy+1)*3+(dx+1)]
					if w == 0 {
						continue
					}
					s := tap(src, x+dx, y+dy)
					cr += s.r * w
					cg += s.g * w
					cb += s.b * w
				}
			}
			c.r = mix(c.r, cr, amt)
			c.g = mix(c.g, cg, amt)
			c.b = mix(c.b, cb, amt)
			return c
		})

	case effect.KindBlurH, effect.KindBlurV:
		horizontal := p.Kind == effect.KindBlurH
		spatial(src, dst, func(x, y int, _ rgba) rgba {
			var acc rgba
			for t := -4; t <= 4; t++ {
				off := int(math32.Round(float32(t) * amt))
				var s rgba
				if horizontal {
					s = tap(src, x+off, y)
				} else {
					s = tap(src, x, y+off)
				}
				w := effect.GaussianWeights[t+4]
				acc.r += s.r * w
				acc.g += s.g * w
				acc.b += s.b * w
				acc.a += s.a * w
			}
			return acc
		})

	case effect.KindVignette:
		w := float32(src.w)
		h := float32(src.h)
		spatial(src, dst, func(x, y int, c rgba) rgba {
			u := (float32(x) + 0.5) / w
			v := (float32(y) + 0.5) / h
			d := math32.Sqrt((u-0.5)*(u-0.5) + (v-0.5)*(v-0.5))
			f := 1 - amt*smoothstep(0.3, 0.8, d)*0.7
			c.r *= f
			c.g *= f
			c.b *= f
			return c
		})

	case effect.KindGrain:
		w := float32(src.w)
		h := float32(src.h)
		spatial(src, dst, func(x, y int, c rgba) rgba {
			u := (float32(x)+0.5)/w + effect.GrainTime
			v := (float32(y)+0.5)/h + effect.GrainTime
			n := fract(math32.Sin(u*12.9898+v*78.233)*43758.5453)*2 - 1
			c.r += n * amt
			c.g += n * amt
			c.b += n * amt
			return c
		})

	case effect.KindBlit:
		copy(dst.pix, src.pix)

	default:
		return fmt.Errorf("software: unknown pass kind %v", p.Kind)
	}
	return nil
}
