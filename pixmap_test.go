package darkroom

import (
	"image"
	"image/color"
	"testing"
)

func TestSetGetPixel(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.SetPixel(1, 2, RGBA{R: 1, G: 0.5, B: 0, A: 1})

	got := pm.GetPixel(1, 2)
	if got.R != 1 || got.B != 0 || got.A != 1 {
		t.Errorf("GetPixel = %+v", got)
	}
	if got.G < 0.49 || got.G > 0.51 {
		t.Errorf("G = %v, want ~0.5", got.G)
	}
}

func TestSetPixelOutOfBounds(t *testing.T) {
	pm := NewPixmap(2, 2)
	pm.SetPixel(-1, 0, RGBA{R: 1, A: 1})
	pm.SetPixel(0, 5, RGBA{R: 1, A: 1})
	for _, b := range pm.Data() {
		if b != 0 {
			t.Fatal("out-of-bounds write changed pixel data")
		}
	}
	if got := pm.GetPixel(7, 7); got != Transparent {
		t.Errorf("out-of-bounds read = %+v, want transparent", got)
	}
}

func TestClear(t *testing.T) {
	pm := NewPixmap(3, 3)
	pm.Clear(RGBA{R: 1, G: 1, B: 1, A: 1})
	for _, b := range pm.Data() {
		if b != 255 {
			t.Fatalf("byte = %d after white clear", b)
		}
	}
}

func TestImageRoundTrip(t *testing.T) {
	pm := NewPixmap(5, 3)
	pm.SetPixel(2, 1, RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1})

	back := FromImage(pm.ToImage())
	if back.Width() != 5 || back.Height() != 3 {
		t.Fatalf("round trip size %dx%d", back.Width(), back.Height())
	}
	for i, b := range pm.Data() {
		if back.Data()[i] != b {
			t.Fatalf("byte %d changed in round trip", i)
		}
	}
}

func TestFromImageGenericPath(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	pm := FromImage(src)
	got := pm.GetPixel(0, 0)
	if got.R < 0.77 || got.R > 0.80 {
		t.Errorf("R = %v, want ~200/255", got.R)
	}
}

func TestPixmapImplementsImage(t *testing.T) {
	var _ image.Image = NewPixmap(1, 1)

	pm := NewPixmap(2, 2)
	pm.SetPixel(0, 0, RGBA{R: 1, A: 1})
	r, _, _, a := pm.At(0, 0).RGBA()
	if r != 0xffff || a != 0xffff {
		t.Errorf("At(0,0) = r %d a %d", r, a)
	}
	if pm.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Bounds = %v", pm.Bounds())
	}
}
