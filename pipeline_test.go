package darkroom_test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/darkroom"
	_ "github.com/gogpu/darkroom/backend/software"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func newTestPipeline(t *testing.T) *darkroom.Pipeline {
	t.Helper()
	p, err := darkroom.NewPipeline(darkroom.Config{Backend: "software"})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	t.Cleanup(func() { _ = p.Dispose() })
	return p
}

func TestNewPipelineUnknownBackend(t *testing.T) {
	_, err := darkroom.NewPipeline(darkroom.Config{Backend: "no-such-backend"})
	if !errors.Is(err, darkroom.ErrInitialization) {
		t.Errorf("err = %v, want ErrInitialization", err)
	}
}

func TestNewPipelineDefaultSelection(t *testing.T) {
	p, err := darkroom.NewPipeline(darkroom.Config{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Dispose()
	if p.BackendInUse() == "" {
		t.Error("no backend selected")
	}
}

func TestRenderWithoutImage(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.Render(); !errors.Is(err, darkroom.ErrNoImage) {
		t.Errorf("Render without image: %v, want ErrNoImage", err)
	}
	if _, err := p.AutoFix(); !errors.Is(err, darkroom.ErrNoImage) {
		t.Errorf("AutoFix without image: %v, want ErrNoImage", err)
	}
}

func TestNeutralRenderIsIdentity(t *testing.T) {
	p := newTestPipeline(t)
	src := testImage(20, 14)
	if err := p.LoadImage(src); err != nil {
		t.Fatal(err)
	}

	pm, err := p.Pixels()
	if err != nil {
		t.Fatal(err)
	}
	want := darkroom.FromImage(src)
	got := pm.Data()
	for i, b := range want.Data() {
		if got[i] != b {
			t.Fatalf("byte %d changed %d -> %d under neutral settings", i, b, got[i])
		}
	}
}

func TestSetSettingsMergesAndClamps(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.SetSettings(darkroom.Partial{
		Contrast: darkroom.Value(30),
		Grain:    darkroom.Value(400),
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.SetSettings(darkroom.Partial{Vibrance: darkroom.Value(-20)}); err != nil {
		t.Fatal(err)
	}

	s := p.Settings()
	if s.Contrast != 30 {
		t.Errorf("Contrast = %v, want 30 (preserved across updates)", s.Contrast)
	}
	if s.Vibrance != -20 {
		t.Errorf("Vibrance = %v, want -20", s.Vibrance)
	}
	if s.Grain != 100 {
		t.Errorf("Grain = %v, want clamped to 100", s.Grain)
	}
}

func TestSettingsChangeChangesOutput(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.LoadImage(testImage(16, 16)); err != nil {
		t.Fatal(err)
	}
	neutral, err := p.Pixels()
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetSettings(darkroom.Partial{Contrast: darkroom.Value(60)}); err != nil {
		t.Fatal(err)
	}
	adjusted, err := p.Pixels()
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for i, b := range neutral.Data() {
		if adjusted.Data()[i] != b {
			same = false
			break
		}
	}
	if same {
		t.Error("contrast change did not affect output")
	}
}

func TestRenderStartsFromSource(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.LoadImage(testImage(16, 16)); err != nil {
		t.Fatal(err)
	}

	if err := p.SetSettings(darkroom.Partial{Brightness: darkroom.Value(50)}); err != nil {
		t.Fatal(err)
	}
	first, err := p.Pixels()
	if err != nil {
		t.Fatal(err)
	}

	// A second render with the same settings must not compound: it
	// starts from the original image, not the previous output.
	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
	second, err := p.Pixels()
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range first.Data() {
		if second.Data()[i] != b {
			t.Fatalf("byte %d drifted across renders: %d -> %d", i, b, second.Data()[i])
		}
	}
}

func TestResetSettings(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.SetSettings(darkroom.Partial{Hue: darkroom.Value(40)}); err != nil {
		t.Fatal(err)
	}
	if err := p.ResetSettings(); err != nil {
		t.Fatal(err)
	}
	if s := p.Settings(); s != darkroom.DefaultSettings() {
		t.Errorf("settings after reset = %+v", s)
	}
}

func TestTargetsAllocatedOnce(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.LoadImage(testImage(24, 24)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := p.SetSettings(darkroom.Partial{Contrast: darkroom.Value(float32(10 * i))}); err != nil {
			t.Fatal(err)
		}
		if err := p.Render(); err != nil {
			t.Fatal(err)
		}
	}

	// Surface, two scratch targets, output.
	if n := p.Stats().TextureAllocs; n != 4 {
		t.Errorf("TextureAllocs = %d after repeated same-size renders, want 4", n)
	}

	// A resize reallocates all four.
	if err := p.LoadImage(testImage(32, 32)); err != nil {
		t.Fatal(err)
	}
	if n := p.Stats().TextureAllocs; n != 8 {
		t.Errorf("TextureAllocs = %d after resize, want 8", n)
	}
}

func TestLUTRebuiltOnlyOnChange(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.LoadImage(testImage(16, 16)); err != nil {
		t.Fatal(err)
	}

	if err := p.SetSettings(darkroom.Partial{Blacks: darkroom.Value(40)}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := p.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if n := p.Stats().LUTUploads; n != 1 {
		t.Errorf("LUTUploads = %d with constant blacks, want 1", n)
	}

	if err := p.SetSettings(darkroom.Partial{Blacks: darkroom.Value(60)}); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
	if n := p.Stats().LUTUploads; n != 2 {
		t.Errorf("LUTUploads = %d after blacks change, want 2", n)
	}
}

func TestAutoFixAppliesSuggestions(t *testing.T) {
	p := newTestPipeline(t)

	// Low-contrast gray ramp: every suggestion should fire.
	img := image.NewRGBA(image.Rect(0, 0, 64, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(70 + x*2)
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	if err := p.LoadImage(img); err != nil {
		t.Fatal(err)
	}

	part, err := p.AutoFix()
	if err != nil {
		t.Fatal(err)
	}
	if part.Whites == nil || part.Blacks == nil {
		t.Fatal("auto fix returned no level suggestions")
	}

	s := p.Settings()
	if s.Whites != *part.Whites || s.Blacks != *part.Blacks {
		t.Error("auto fix suggestions not applied to settings")
	}
	if err := p.Render(); err != nil {
		t.Fatal(err)
	}
}

func TestAutoFixLogsValues(t *testing.T) {
	var buf bytes.Buffer
	darkroom.SetLogger(slog.New(slog.NewTextHandler(&buf,
		&slog.HandlerOptions{Level: slog.LevelDebug})))
	defer darkroom.SetLogger(nil)

	p := newTestPipeline(t)
	if err := p.LoadImage(testImage(32, 32)); err != nil {
		t.Fatal(err)
	}
	part, err := p.AutoFix()
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "0x") {
		t.Errorf("auto fix log prints pointer addresses: %s", out)
	}
	if part.Whites != nil {
		want := fmt.Sprintf("whites=%g", *part.Whites)
		if !strings.Contains(out, want) {
			t.Errorf("auto fix log missing %q: %s", want, out)
		}
	}
}

func TestDispose(t *testing.T) {
	p, err := darkroom.NewPipeline(darkroom.Config{Backend: "software"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.LoadImage(testImage(8, 8)); err != nil {
		t.Fatal(err)
	}

	if err := p.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if err := p.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}

	if err := p.Render(); !errors.Is(err, darkroom.ErrDisposed) {
		t.Errorf("Render after dispose: %v, want ErrDisposed", err)
	}
	if err := p.LoadImage(testImage(8, 8)); !errors.Is(err, darkroom.ErrDisposed) {
		t.Errorf("LoadImage after dispose: %v, want ErrDisposed", err)
	}
	if err := p.SetSettings(darkroom.Partial{}); !errors.Is(err, darkroom.ErrDisposed) {
		t.Errorf("SetSettings after dispose: %v, want ErrDisposed", err)
	}
}

func TestLoadImageNil(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.LoadImage(nil); !errors.Is(err, darkroom.ErrResource) {
		t.Errorf("LoadImage(nil): %v, want ErrResource", err)
	}
}
