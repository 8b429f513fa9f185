package effect

// Settings is a flat record of all adjustment values. Bipolar fields range
// over [-100, 100] with 0 as the neutral point; unipolar fields (Bloom,
// Glamour, Sharpen, Smooth, Blur, Vignette, Grain) range over [0, 100] with
// 0 neutral. A field at its neutral point produces pixel-identical output
// to skipping its pass entirely.
//
// Settings are value objects: the engine only reads them per render call
// and never mutates them in place.
type Settings struct {
	Vibrance    float32
	Saturation  float32
	Temperature float32
	Tint        float32
	Hue         float32
	Brightness  float32
	Exposure    float32
	Contrast    float32
	Blacks      float32
	Whites      float32
	Highlights  float32
	Shadows     float32
	Dehaze      float32
	Bloom       float32
	Glamour     float32
	Clarity     float32
	Sharpen     float32
	Smooth      float32
	Blur        float32
	Vignette    float32
	Grain       float32
}

// DefaultSettings returns the neutral settings value. Rendering with it
// produces output identical to the source image.
func DefaultSettings() Settings {
	return Settings{}
}

// Partial is a sparse settings update: nil fields are left unchanged by
// Merged. Use Value to build pointer fields inline.
type Partial struct {
	Vibrance    *float32
	Saturation  *float32
	Temperature *float32
	Tint        *float32
	Hue         *float32
	Brightness  *float32
	Exposure    *float32
	Contrast    *float32
	Blacks      *float32
	Whites      *float32
	Highlights  *float32
	Shadows     *float32
	Dehaze      *float32
	Bloom       *float32
	Glamour     *float32
	Clarity     *float32
	Sharpen     *float32
	Smooth      *float32
	Blur        *float32
	Vignette    *float32
	Grain       *float32
}

// Value returns a pointer to v, for building Partial literals.
func Value(v float32) *float32 { return &v }

// Merged returns a copy of s with every non-nil field of p applied.
// The receiver is not modified.
func (s Settings) Merged(p Partial) Settings {
	apply := func(dst *float32, src *float32) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&s.Vibrance, p.Vibrance)
	apply(&s.Saturation, p.Saturation)
	apply(&s.Temperature, p.Temperature)
	apply(&s.Tint, p.Tint)
	apply(&s.Hue, p.Hue)
	apply(&s.Brightness, p.Brightness)
	apply(&s.Exposure, p.Exposure)
	apply(&s.Contrast, p.Contrast)
	apply(&s.Blacks, p.Blacks)
	apply(&s.Whites, p.Whites)
	apply(&s.Highlights, p.Highlights)
	apply(&s.Shadows, p.Shadows)
	apply(&s.Dehaze, p.Dehaze)
	apply(&s.Bloom, p.Bloom)
	apply(&s.Glamour, p.Glamour)
	apply(&s.Clarity, p.Clarity)
	apply(&s.Sharpen, p.Sharpen)
	apply(&s.Smooth, p.Smooth)
	apply(&s.Blur, p.Blur)
	apply(&s.Vignette, p.Vignette)
	apply(&s.Grain, p.Grain)
	return s
}

// Clamped returns a copy of s with every field clamped to its valid range.
func (s Settings) Clamped() Settings {
	for _, d := range Catalog() {
		v := d.Field(&s)
		lo := float32(-100)
		if d.Mode == Unipolar {
			lo = 0
		}
		if *v < lo {
			*v = lo
		}
		if *v > 100 {
			*v = 100
		}
	}
	return s
}
