package software

import (
	"testing"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/effect"
)

// applyOne runs a single resolved pass over a fresh destination.
func applyOne(t *testing.T, b *Backend, pass effect.Pass, src darkroom.Texture) []byte {
	t.Helper()
	dst, err := b.NewTexture(src.Width(), src.Height(), darkroom.UsageScratch)
	if err != nil {
		t.Fatal(err)
	}
	var l darkroom.LUT
	if pass.NeedsLUT {
		l, err = b.NewLUT()
		if err != nil {
			t.Fatal(err)
		}
		table := effect.BlacksCurve(pass.Amount)
		if err := l.Upload(&table); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Apply(pass, src, dst, l); err != nil {
		t.Fatalf("Apply(%v): %v", pass.Kind, err)
	}
	return readAll(t, b, dst)
}

// passFor resolves the single active pass produced by s, failing the test
// if s activates more than one skippable effect.
func passFor(t *testing.T, s effect.Settings, kind effect.Kind) effect.Pass {
	t.Helper()
	for _, p := range effect.Passes(s) {
		if p.Kind == kind {
			return p
		}
	}
	t.Fatalf("settings did not activate %v", kind)
	return effect.Pass{}
}

func TestNeutralPassesAreIdentity(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	src := gradientTexture(t, b, 16, 16)
	want := readAll(t, b, src)

	// These four run on every render; at neutral values they must be
	// bit-exact copies.
	passes := []effect.Pass{
		{Kind: effect.KindBrightness, Amount: 0},
		{Kind: effect.KindVignette, Amount: 0},
		{Kind: effect.KindGrain, Amount: 0},
		{Kind: effect.KindBlit},
	}
	for _, pass := range passes {
		got := applyOne(t, b, pass, src)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%v: byte %d changed %d -> %d", pass.Kind, i, want[i], got[i])
			}
		}
	}
}

func TestSaturationFullDesaturate(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	src := gradientTexture(t, b, 8, 8)
	pass := passFor(t, effect.Settings{Saturation: -100}, effect.KindSaturation)
	got := applyOne(t, b, pass, src)
	for i := 0; i < len(got); i += 4 {
		r, g, bl := got[i], got[i+1], got[i+2]
		if r != g || g != bl {
			t.Fatalf("pixel %d not gray after full desaturation: %d %d %d", i/4, r, g, bl)
		}
	}
}

func TestVibranceLeavesSaturatedRed(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(2, 2, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]byte, 16)
	for i := 0; i < 16; i += 4 {
		pix[i], pix[i+3] = 255, 255
	}
	if err := b.Write(tex, pix); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Vibrance: 100}, effect.KindVibrance)
	got := applyOne(t, b, pass, tex)
	for i := 0; i < 16; i += 4 {
		if got[i] != 255 || got[i+1] != 0 || got[i+2] != 0 {
			t.Fatalf("saturated red changed: %d %d %d", got[i], got[i+1], got[i+2])
		}
	}
}

func TestContrastMovesMidtones(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(1, 1, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(tex, []byte{250, 60, 128, 255}); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Contrast: 40}, effect.KindContrast)
	got := applyOne(t, b, pass, tex)
	if got[0] <= 250 && got[0] != 255 {
		t.Errorf("bright channel not raised: %d", got[0])
	}
	if got[1] >= 60 {
		t.Errorf("dark channel not lowered: %d", got[1])
	}
	if got[2] != 128 && got[2] != 127 {
		t.Errorf("mid-gray moved: %d", got[2])
	}
}

func TestContrastActivationBoundaryVisible(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(1, 1, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(tex, []byte{250, 250, 250, 255}); err != nil {
		t.Fatal(err)
	}

	// At 0.5 the pass is skipped entirely. At 0.51 it runs and, for a
	// pixel this far from mid-gray, moves it by a visible step.
	if _, ok := findPass(effect.Settings{Contrast: 0.5}, effect.KindContrast); ok {
		t.Fatal("contrast 0.5 produced a pass")
	}
	pass, ok := findPass(effect.Settings{Contrast: 0.51}, effect.KindContrast)
	if !ok {
		t.Fatal("contrast 0.51 produced no pass")
	}
	got := applyOne(t, b, pass, tex)
	if got[0] == 250 {
		t.Error("contrast 0.51 left a far-from-gray pixel unchanged")
	}
}

func findPass(s effect.Settings, kind effect.Kind) (effect.Pass, bool) {
	for _, p := range effect.Passes(s) {
		if p.Kind == kind {
			return p, true
		}
	}
	return effect.Pass{}, false
}

func TestSaturationWhiteImageStaysUniform(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(2, 2, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]byte, 16)
	for i := range pix {
		pix[i] = 255
	}
	if err := b.Write(tex, pix); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Saturation: -100}, effect.KindSaturation)
	got := applyOne(t, b, pass, tex)
	for i := 0; i < 16; i += 4 {
		if got[i] != got[i+1] || got[i+1] != got[i+2] {
			t.Fatalf("pixel %d channels differ: %d %d %d", i/4, got[i], got[i+1], got[i+2])
		}
		if got[i] != 255 {
			t.Errorf("white pixel lost luminance: %d", got[i])
		}
	}
}

// TestPassOrderMatters pins down that the chain order is load-bearing:
// contrast before blacks diverges from blacks before contrast.
func TestPassOrderMatters(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	src := gradientTexture(t, b, 8, 8)
	contrast := passFor(t, effect.Settings{Contrast: 60}, effect.KindContrast)
	blacks := passFor(t, effect.Settings{Blacks: 60}, effect.KindBlacks)

	chain := func(first, second effect.Pass) []byte {
		mid, err := b.NewTexture(8, 8, darkroom.UsageScratch)
		if err != nil {
			t.Fatal(err)
		}
		out, err := b.NewTexture(8, 8, darkroom.UsageScratch)
		if err != nil {
			t.Fatal(err)
		}
		l, err := b.NewLUT()
		if err != nil {
			t.Fatal(err)
		}
		table := effect.BlacksCurve(blacks.Amount)
		if err := l.Upload(&table); err != nil {
			t.Fatal(err)
		}
		lutFor := func(p effect.Pass) darkroom.LUT {
			if p.NeedsLUT {
				return l
			}
			return nil
		}
		if err := b.Apply(first, src, mid, lutFor(first)); err != nil {
			t.Fatal(err)
		}
		if err := b.Apply(second, mid, out, lutFor(second)); err != nil {
			t.Fatal(err)
		}
		return readAll(t, b, out)
	}

	ab := chain(contrast, blacks)
	ba := chain(blacks, contrast)
	for i := range ab {
		if ab[i] != ba[i] {
			return
		}
	}
	t.Error("contrast and blacks commuted; pass order is not observable")
}

func TestTemperatureWarms(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(1, 1, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(tex, []byte{128, 128, 128, 255}); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Temperature: 100}, effect.KindTemperature)
	got := applyOne(t, b, pass, tex)
	if got[0] <= 128 {
		t.Errorf("red not raised: %d", got[0])
	}
	if got[2] >= 128 {
		t.Errorf("blue not lowered: %d", got[2])
	}
	if got[1] != 128 {
		t.Errorf("green changed: %d", got[1])
	}
}

func TestHueShiftsPrimaries(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(1, 1, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(tex, []byte{255, 0, 0, 255}); err != nil {
		t.Fatal(err)
	}

	// Hue 100 scales to +0.5: a half turn around the wheel maps red to
	// its complement, cyan.
	pass := passFor(t, effect.Settings{Hue: 100}, effect.KindHue)
	got := applyOne(t, b, pass, tex)
	if got[0] > 2 || got[1] < 253 || got[2] < 253 {
		t.Errorf("red at half turn = %d %d %d, want cyan", got[0], got[1], got[2])
	}
}

func TestBlacksCrushesShadows(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(1, 2, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Write(tex, []byte{30, 30, 30, 255, 250, 250, 250, 255}); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Blacks: 100}, effect.KindBlacks)
	got := applyOne(t, b, pass, tex)
	if got[0] != 0 {
		t.Errorf("deep shadow = %d, want crushed to 0", got[0])
	}
	if got[4] < 240 {
		t.Errorf("highlight dragged down to %d", got[4])
	}
}

func TestBlurPreservesFlatRegions(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(8, 8, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]byte, 8*8*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 90, 90, 90, 255
	}
	if err := b.Write(tex, pix); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Blur: 100}, effect.KindBlurH)
	got := applyOne(t, b, pass, tex)
	for i := 0; i < len(got); i += 4 {
		if d := int(got[i]) - 90; d < -1 || d > 1 {
			t.Fatalf("flat region drifted to %d under blur", got[i])
		}
	}
}

func TestVignetteDarkensCornersOnly(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(32, 32, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]byte, 32*32*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 200, 200, 200, 255
	}
	if err := b.Write(tex, pix); err != nil {
		t.Fatal(err)
	}

	pass := passFor(t, effect.Settings{Vignette: 100}, effect.KindVignette)
	got := applyOne(t, b, pass, tex)
	center := got[(16*32+16)*4]
	corner := got[0]
	if corner >= center {
		t.Errorf("corner %d not darker than center %d", corner, center)
	}
	if center < 195 {
		t.Errorf("center darkened too much: %d", center)
	}
}

func TestGrainIsDeterministic(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	src := gradientTexture(t, b, 8, 8)
	pass := passFor(t, effect.Settings{Grain: 80}, effect.KindGrain)
	first := applyOne(t, b, pass, src)
	second := applyOne(t, b, pass, src)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("grain differs between renders at byte %d", i)
		}
	}
}

func TestSharpenFlatRegionUnchanged(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	tex, err := b.NewTexture(8, 8, darkroom.UsageSurface)
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]byte, 8*8*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 77, 77, 77, 255
	}
	if err := b.Write(tex, pix); err != nil {
		t.Fatal(err)
	}

	// The sharpen kernel sums to 1, so flat regions are fixed points.
	pass := passFor(t, effect.Settings{Sharpen: 100}, effect.KindSharpen)
	got := applyOne(t, b, pass, tex)
	for i := 0; i < len(got); i += 4 {
		if got[i] != 77 {
			t.Fatalf("flat region changed to %d under sharpen", got[i])
		}
	}
}
