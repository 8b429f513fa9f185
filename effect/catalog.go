package effect

import "github.com/chewxy/math32"

// Kind identifies a single pass variant. Blur contributes two kinds (its
// horizontal and vertical separable halves); every other effect maps to
// exactly one kind. KindBlit is the unconditional final copy to the
// visible surface.
type Kind int

// Pass kinds, in catalog order.
const (
	KindVibrance Kind = iota
	KindSaturation
	KindTemperature
	KindTint
	KindHue
	KindBrightness
	KindExposure
	KindContrast
	KindBlacks
	KindWhites
	KindHighlights
	KindShadows
	KindDehaze
	KindBloom
	KindGlamour
	KindClarity
	KindSharpen
	KindSmooth
	KindBlurH
	KindBlurV
	KindVignette
	KindGrain
	KindBlit

	numKinds
)

// kindNames indexes Kind for String().
var kindNames = [numKinds]string{
	"vibrance", "saturation", "temperature", "tint", "hue", "brightness",
	"exposure", "contrast", "blacks", "whites", "highlights", "shadows",
	"dehaze", "bloom", "glamour", "clarity", "sharpen", "smooth",
	"blur-h", "blur-v", "vignette", "grain", "blit",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// ActivationMode describes the range semantics of an effect's setting.
type ActivationMode int

const (
	// Bipolar settings range over [-100, 100]; the pass is skipped when
	// the absolute value is at or below the activation threshold.
	Bipolar ActivationMode = iota

	// Unipolar settings range over [0, 100]; the pass is skipped when the
	// value is at or below the activation threshold.
	Unipolar
)

// ActivationThreshold is the raw-scale value at or below which a
// skippable pass does not execute. Kept deliberately small: the boundary
// between "skipped" and "executed" is exact, not approximate.
const ActivationThreshold float32 = 0.5

// GrainTime is the time constant uploaded to the grain pass. Fixed at zero
// so rendering is deterministic (no time-based animation of the noise).
const GrainTime float32 = 0

// Descriptor is one static catalog entry. Descriptors are never mutated at
// runtime; the table is the shared contract between the software backend
// and the WGSL generator.
type Descriptor struct {
	Kind Kind
	Name string

	// Divisor maps the raw setting (±100 or 0–100) to the kernel's
	// numeric domain. Part of the visual contract; chosen so each
	// slider's perceptual step size is roughly uniform.
	Divisor float32

	// Mode selects the activation predicate for skippable passes.
	Mode ActivationMode

	// AlwaysRuns marks passes that execute regardless of their value:
	// brightness (its zero point still passes through the identity
	// transform), vignette, and grain (they complete the chain even
	// with neutral parameters).
	AlwaysRuns bool

	// NeedsLUT marks effects sampling the palette lookup texture.
	NeedsLUT bool

	// NeedsPixelSize marks effects sampling beyond the current pixel,
	// which receive the 1/width, 1/height step uniform.
	NeedsPixelSize bool

	// SubPasses lists the pass kinds the effect expands to, in order.
	SubPasses []Kind

	// Field returns the address of the effect's value within a Settings.
	Field func(*Settings) *float32
}

// Active reports whether the pass executes for raw setting value v.
func (d *Descriptor) Active(v float32) bool {
	if d.AlwaysRuns {
		return true
	}
	if d.Mode == Bipolar {
		return math32.Abs(v) > ActivationThreshold
	}
	return v > ActivationThreshold
}

// Scale maps the raw setting value to the kernel's uniform domain.
func (d *Descriptor) Scale(v float32) float32 {
	return v / d.Divisor
}

// catalog is the fixed pass order. Later effects are defined relative to
// the cumulative result of earlier ones; reordering any two entries is an
// observable change in output.
var catalog = []Descriptor{
	{Kind: KindVibrance, Name: "vibrance", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindVibrance},
		Field:     func(s *Settings) *float32 { return &s.Vibrance }},
	{Kind: KindSaturation, Name: "saturation", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindSaturation},
		Field:     func(s *Settings) *float32 { return &s.Saturation }},
	{Kind: KindTemperature, Name: "temperature", Divisor: 500, Mode: Bipolar,
		SubPasses: []Kind{KindTemperature},
		Field:     func(s *Settings) *float32 { return &s.Temperature }},
	{Kind: KindTint, Name: "tint", Divisor: 500, Mode: Bipolar,
		SubPasses: []Kind{KindTint},
		Field:     func(s *Settings) *float32 { return &s.Tint }},
	{Kind: KindHue, Name: "hue", Divisor: 200, Mode: Bipolar,
		SubPasses: []Kind{KindHue},
		Field:     func(s *Settings) *float32 { return &s.Hue }},
	{Kind: KindBrightness, Name: "brightness", Divisor: 100, Mode: Bipolar, AlwaysRuns: true,
		SubPasses: []Kind{KindBrightness},
		Field:     func(s *Settings) *float32 { return &s.Brightness }},
	{Kind: KindExposure, Name: "exposure", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindExposure},
		Field:     func(s *Settings) *float32 { return &s.Exposure }},
	{Kind: KindContrast, Name: "contrast", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindContrast},
		Field:     func(s *Settings) *float32 { return &s.Contrast }},
	{Kind: KindBlacks, Name: "blacks", Divisor: 200, Mode: Bipolar, NeedsLUT: true,
		SubPasses: []Kind{KindBlacks},
		Field:     func(s *Settings) *float32 { return &s.Blacks }},
	{Kind: KindWhites, Name: "whites", Divisor: 400, Mode: Bipolar,
		SubPasses: []Kind{KindWhites},
		Field:     func(s *Settings) *float32 { return &s.Whites }},
	{Kind: KindHighlights, Name: "highlights", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindHighlights},
		Field:     func(s *Settings) *float32 { return &s.Highlights }},
	{Kind: KindShadows, Name: "shadows", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindShadows},
		Field:     func(s *Settings) *float32 { return &s.Shadows }},
	{Kind: KindDehaze, Name: "dehaze", Divisor: 100, Mode: Bipolar,
		SubPasses: []Kind{KindDehaze},
		Field:     func(s *Settings) *float32 { return &s.Dehaze }},
	{Kind: KindBloom, Name: "bloom", Divisor: 100, Mode: Unipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindBloom},
		Field:     func(s *Settings) *float32 { return &s.Bloom }},
	{Kind: KindGlamour, Name: "glamour", Divisor: 100, Mode: Unipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindGlamour},
		Field:     func(s *Settings) *float32 { return &s.Glamour }},
	{Kind: KindClarity, Name: "clarity", Divisor: 100, Mode: Bipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindClarity},
		Field:     func(s *Settings) *float32 { return &s.Clarity }},
	{Kind: KindSharpen, Name: "sharpen", Divisor: 100, Mode: Unipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindSharpen},
		Field:     func(s *Settings) *float32 { return &s.Sharpen }},
	{Kind: KindSmooth, Name: "smooth", Divisor: 100, Mode: Unipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindSmooth},
		Field:     func(s *Settings) *float32 { return &s.Smooth }},
	{Kind: KindBlurH, Name: "blur", Divisor: 25, Mode: Unipolar, NeedsPixelSize: true,
		SubPasses: []Kind{KindBlurH, KindBlurV},
		Field:     func(s *Settings) *float32 { return &s.Blur }},
	{Kind: KindVignette, Name: "vignette", Divisor: 100, Mode: Unipolar, AlwaysRuns: true,
		SubPasses: []Kind{KindVignette},
		Field:     func(s *Settings) *float32 { return &s.Vignette }},
	{Kind: KindGrain, Name: "grain", Divisor: 800, Mode: Unipolar, AlwaysRuns: true,
		SubPasses: []Kind{KindGrain},
		Field:     func(s *Settings) *float32 { return &s.Grain }},
}

// Catalog returns the ordered effect table. The returned slice is shared;
// callers must not modify it.
func Catalog() []Descriptor {
	return catalog
}

// ByKind returns the descriptor owning the given pass kind, or nil for
// KindBlit (which has no settings dependency).
func ByKind(k Kind) *Descriptor {
	for i := range catalog {
		for _, sp := range catalog[i].SubPasses {
			if sp == k {
				return &catalog[i]
			}
		}
	}
	return nil
}

// Pass is one resolved pass of a render: the kind plus every uniform the
// kernel needs. A Pass is a plain value consumed by a backend's single
// dispatch function; it captures no GPU state.
type Pass struct {
	Kind   Kind
	Amount float32 // scaled uniform (raw value / divisor)

	// Matrix is the 4x5 affine color matrix for matrix-driven effects
	// (saturation, contrast), in row-major [r g b a offset] order with
	// offsets normalized to [0, 1].
	Matrix    [20]float32
	HasMatrix bool

	// Kernel is the 3x3 convolution kernel for sharpen and smooth;
	// Amount blends the convolved result toward the original pixel.
	Kernel    [9]float32
	HasKernel bool

	// NeedsLUT marks passes sampling the palette texture.
	NeedsLUT bool

	// NeedsPixelSize marks passes that receive the texel step uniform.
	NeedsPixelSize bool
}

// Passes resolves a Settings snapshot into the ordered list of passes to
// execute, applying each effect's activation predicate and parameter
// scaling. The final entry is always the blit pass. With all settings
// neutral the result is exactly: brightness, vignette, grain, blit.
func Passes(s Settings) []Pass {
	out := make([]Pass, 0, len(catalog)+2)
	for i := range catalog {
		d := &catalog[i]
		v := *d.Field(&s)
		if !d.Active(v) {
			continue
		}
		amount := d.Scale(v)
		for _, k := range d.SubPasses {
			p := Pass{
				Kind:           k,
				Amount:         amount,
				NeedsLUT:       d.NeedsLUT,
				NeedsPixelSize: d.NeedsPixelSize,
			}
			switch k {
			case KindSaturation:
				p.Matrix = SaturationMatrix(amount)
				p.HasMatrix = true
			case KindContrast:
				p.Matrix = ContrastMatrix(amount)
				p.HasMatrix = true
			case KindSharpen:
				p.Kernel = SharpenKernel
				p.HasKernel = true
			case KindSmooth:
				p.Kernel = SmoothKernel
				p.HasKernel = true
			}
			out = append(out, p)
		}
	}
	out = append(out, Pass{Kind: KindBlit})
	return out
}
