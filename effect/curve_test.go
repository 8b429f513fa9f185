package effect

import "testing"

func TestBlacksCurveIdentity(t *testing.T) {
	lut := BlacksCurve(0)
	for i := 0; i < LUTSize; i++ {
		if got := lut[i*4]; int(got) != i {
			t.Fatalf("lut[%d] = %d, want %d (identity)", i, got, i)
		}
	}
}

func TestBlacksCurveChannelsAgree(t *testing.T) {
	lut := BlacksCurve(0.3)
	for i := 0; i < LUTSize; i++ {
		r, g, b, a := lut[i*4], lut[i*4+1], lut[i*4+2], lut[i*4+3]
		if r != g || g != b {
			t.Fatalf("entry %d channels differ: %d %d %d", i, r, g, b)
		}
		if a != 255 {
			t.Fatalf("entry %d alpha = %d, want 255", i, a)
		}
	}
}

func TestBlacksCurveMonotone(t *testing.T) {
	for _, amount := range []float32{-0.5, -0.2, 0.2, 0.5} {
		lut := BlacksCurve(amount)
		for i := 1; i < LUTSize; i++ {
			if lut[i*4] < lut[(i-1)*4] {
				t.Fatalf("amount %v: lut decreases at %d (%d -> %d)",
					amount, i, lut[(i-1)*4], lut[i*4])
			}
		}
	}
}

func TestBlacksCurveCrush(t *testing.T) {
	// Positive amounts push the black point right: low inputs clamp to 0.
	lut := BlacksCurve(0.5)
	if lut[0] != 0 {
		t.Errorf("lut[0] = %d, want 0", lut[0])
	}
	if lut[40*4] != 0 {
		t.Errorf("crushed region lut[40] = %d, want 0", lut[40*4])
	}
	if lut[255*4] != 255 {
		t.Errorf("lut[255] = %d, want 255", lut[255*4])
	}
}

func TestBlacksCurveLift(t *testing.T) {
	// Negative amounts lift the floor: pure black renders as gray.
	lut := BlacksCurve(-0.5)
	if lut[0] == 0 {
		t.Error("lifted curve maps 0 to 0, want raised floor")
	}
	if lut[255*4] != 255 {
		t.Errorf("lut[255] = %d, want 255", lut[255*4])
	}
}
