package boxconv

import (
	"testing"

	"github.com/menta2k/yolodata/pkg/types"
)

func TestPixelFromVLMFullFrame(t *testing.T) {
	sizes := [][2]int{{100, 100}, {640, 480}, {1, 1}, {1024, 768}}

	for _, sz := range sizes {
		w, h := sz[0], sz[1]
		p, ok := PixelFromVLM(types.VLMBox{YMin: 0, XMin: 0, YMax: 1000, XMax: 1000}, w, h)
		if !ok {
			t.Fatalf("full-frame box rejected for %dx%d", w, h)
		}
		want := types.PixelBox{XMin: 0, YMin: 0, XMax: w, YMax: h}
		if p != want {
			t.Errorf("full-frame %dx%d: got %+v, want %+v", w, h, p, want)
		}
	}
}

func TestPixelFromVLMClampsInputs(t *testing.T) {
	// Coordinates beyond [0,1000] must be pulled back before scaling.
	p, ok := PixelFromVLM(types.VLMBox{YMin: -50, XMin: -200, YMax: 1500, XMax: 1200}, 200, 100)
	if !ok {
		t.Fatal("clamped box rejected")
	}
	want := types.PixelBox{XMin: 0, YMin: 0, XMax: 200, YMax: 100}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}

func TestPixelFromVLMRounds(t *testing.T) {
	// 333/1000 * 100 = 33.3 -> 33; 667/1000 * 100 = 66.7 -> 67.
	p, ok := PixelFromVLM(types.VLMBox{YMin: 333, XMin: 333, YMax: 667, XMax: 667}, 100, 100)
	if !ok {
		t.Fatal("box rejected")
	}
	want := types.PixelBox{XMin: 33, YMin: 33, XMax: 67, YMax: 67}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}

func TestPixelFromVLMDegenerate(t *testing.T) {
	cases := []struct {
		name string
		box  types.VLMBox
		w, h int
	}{
		{"zero area", types.VLMBox{YMin: 500, XMin: 500, YMax: 500, XMax: 500}, 100, 100},
		{"inverted", types.VLMBox{YMin: 600, XMin: 600, YMax: 400, XMax: 400}, 100, 100},
		{"collapses on tiny image", types.VLMBox{YMin: 0, XMin: 100, YMax: 1000, XMax: 101}, 2, 2},
		{"zero width image", types.VLMBox{YMin: 0, XMin: 0, YMax: 1000, XMax: 1000}, 0, 100},
		{"zero height image", types.VLMBox{YMin: 0, XMin: 0, YMax: 1000, XMax: 1000}, 100, 0},
	}

	for _, tc := range cases {
		if _, ok := PixelFromVLM(tc.box, tc.w, tc.h); ok {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestPixelFromYolo(t *testing.T) {
	p, ok := PixelFromYolo(types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}, 100, 100)
	if !ok {
		t.Fatal("box rejected")
	}
	want := types.PixelBox{XMin: 25, YMin: 25, XMax: 75, YMax: 75}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}

func TestPixelFromYoloClampsToImage(t *testing.T) {
	// Center near the edge: half the box hangs outside and must be clamped.
	p, ok := PixelFromYolo(types.YoloBox{XCenter: 0.0, YCenter: 0.0, Width: 0.4, Height: 0.4}, 100, 100)
	if !ok {
		t.Fatal("edge box rejected")
	}
	if p.XMin != 0 || p.YMin != 0 {
		t.Errorf("expected clamp to origin, got %+v", p)
	}
	if p.XMax != 20 || p.YMax != 20 {
		t.Errorf("expected 20x20 visible area, got %+v", p)
	}
}

func TestPixelFromYoloDegenerate(t *testing.T) {
	cases := []struct {
		name string
		box  types.YoloBox
	}{
		{"zero size", types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0, Height: 0}},
		{"clamped away", types.YoloBox{XCenter: 1.0, YCenter: 1.0, Width: 0.001, Height: 0.001}},
	}

	for _, tc := range cases {
		if _, ok := PixelFromYolo(tc.box, 100, 100); ok {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestYoloFromPixel(t *testing.T) {
	y, ok := YoloFromPixel(types.PixelBox{XMin: 25, YMin: 25, XMax: 75, YMax: 75}, 100, 100)
	if !ok {
		t.Fatal("box rejected")
	}
	want := types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}
	if y != want {
		t.Errorf("got %+v, want %+v", y, want)
	}
}

func TestYoloFromPixelGuardsDimensions(t *testing.T) {
	if _, ok := YoloFromPixel(types.PixelBox{XMin: 0, YMin: 0, XMax: 10, YMax: 10}, 0, 100); ok {
		t.Error("expected rejection for zero width image")
	}
	if _, ok := YoloFromPixel(types.PixelBox{XMin: 0, YMin: 0, XMax: 10, YMax: 10}, 100, -1); ok {
		t.Error("expected rejection for negative height image")
	}
}

func TestYoloFromPixelClampsOverhang(t *testing.T) {
	// Box extends past the right edge; the normalized result must still be
	// inside [0,1].
	y, ok := YoloFromPixel(types.PixelBox{XMin: 90, YMin: 90, XMax: 150, YMax: 150}, 100, 100)
	if !ok {
		t.Fatal("overhanging box rejected")
	}
	if y.Width != 0.1 || y.Height != 0.1 {
		t.Errorf("expected 0.1x0.1 after clamping, got %+v", y)
	}
	if y.XCenter != 0.95 || y.YCenter != 0.95 {
		t.Errorf("expected center at 0.95,0.95, got %+v", y)
	}
}

func TestRoundTripWithinOnePixel(t *testing.T) {
	boxes := []types.PixelBox{
		{XMin: 10, YMin: 20, XMax: 110, YMax: 90},
		{XMin: 1, YMin: 1, XMax: 638, YMax: 478},
		{XMin: 300, YMin: 100, XMax: 301, YMax: 101},
		{XMin: 37, YMin: 53, XMax: 411, YMax: 399},
	}

	imgW, imgH := 640, 480
	for _, orig := range boxes {
		y, ok := YoloFromPixel(orig, imgW, imgH)
		if !ok {
			t.Fatalf("yolo conversion rejected %+v", orig)
		}
		back, ok := PixelFromYolo(y, imgW, imgH)
		if !ok {
			t.Fatalf("pixel conversion rejected %+v", y)
		}

		if absInt(back.XMin-orig.XMin) > 1 || absInt(back.YMin-orig.YMin) > 1 ||
			absInt(back.XMax-orig.XMax) > 1 || absInt(back.YMax-orig.YMax) > 1 {
			t.Errorf("round trip drifted more than 1px: %+v -> %+v", orig, back)
		}
	}
}

func TestYoloFromVLMComposite(t *testing.T) {
	y, ok := YoloFromVLM(types.VLMBox{YMin: 250, XMin: 250, YMax: 750, XMax: 750}, 400, 400)
	if !ok {
		t.Fatal("composite conversion rejected")
	}
	want := types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}
	if y != want {
		t.Errorf("got %+v, want %+v", y, want)
	}

	if _, ok := YoloFromVLM(types.VLMBox{YMin: 500, XMin: 500, YMax: 500, XMax: 500}, 400, 400); ok {
		t.Error("expected composite rejection of zero-area box")
	}
}

func TestYoloBoxString(t *testing.T) {
	b := types.YoloBox{XCenter: 0.5, YCenter: 0.25, Width: 1, Height: 0.123456789}
	got := b.String()
	want := "0.500000 0.250000 1.000000 0.123457"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
