package visualize

import (
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/yolodata/pkg/types"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{64, 64, 64, 255})
		}
	}
	return img
}

func TestParseLabels(t *testing.T) {
	content := "0 0.500000 0.500000 0.250000 0.250000\n2 0.100000 0.200000 0.050000 0.080000\n"
	labels := ParseLabels(content, "test.txt")
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}

	if labels[0].ClassID != 0 {
		t.Errorf("first label class: got %d", labels[0].ClassID)
	}
	want := types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0.25, Height: 0.25}
	if labels[0].Box != want {
		t.Errorf("first label box: got %+v, want %+v", labels[0].Box, want)
	}
	if labels[1].ClassID != 2 {
		t.Errorf("second label class: got %d", labels[1].ClassID)
	}
}

func TestParseLabelsSkipsMalformedLines(t *testing.T) {
	content := "0 0.5 0.5 0.2 0.2\n" + // valid
		"1 0.5 0.5 0.2\n" + // wrong field count
		"x 0.5 0.5 0.2 0.2\n" + // non-numeric class
		"1 0.5 abc 0.2 0.2\n" + // non-numeric coordinate
		"1 1.5 0.5 0.2 0.2\n" + // out of range
		"\n" // blank
	labels := ParseLabels(content, "test.txt")
	if len(labels) != 1 {
		t.Fatalf("expected 1 valid label, got %d", len(labels))
	}
}

func TestParseLabelsEmpty(t *testing.T) {
	if labels := ParseLabels("", "test.txt"); len(labels) != 0 {
		t.Errorf("expected no labels from empty content, got %d", len(labels))
	}
}

func TestLoadLabelsMissingFile(t *testing.T) {
	labels, err := LoadLabels(t.TempDir() + "/nope.txt")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if labels != nil {
		t.Errorf("expected nil labels, got %v", labels)
	}
}

func TestRenderDrawsBox(t *testing.T) {
	img := createTestImage(200, 200)
	labels := []Label{
		{ClassID: 0, Box: types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}},
	}

	out := Render(img, labels, []string{"helmet"})
	if out == nil {
		t.Fatal("Render returned nil")
	}

	bounds := out.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 200 {
		t.Errorf("render changed dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	// The box edge at x=50 should have been painted red.
	r, g, b, _ := out.At(50, 100).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red box edge at (50,100), got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	// A point well inside the box must be untouched background.
	r, g, b, _ = out.At(100, 120).RGBA()
	if r>>8 != 64 || g>>8 != 64 || b>>8 != 64 {
		t.Errorf("expected untouched background at (100,120), got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestRenderNoLabelsCopiesImage(t *testing.T) {
	img := createTestImage(100, 80)
	out := Render(img, nil, []string{"helmet"})

	bounds := out.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("got %dx%d", bounds.Dx(), bounds.Dy())
	}
	r, g, b, _ := out.At(50, 40).RGBA()
	if r>>8 != 64 || g>>8 != 64 || b>>8 != 64 {
		t.Errorf("expected background pixel, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestRenderSkipsDegenerateBoxes(t *testing.T) {
	img := createTestImage(100, 100)
	labels := []Label{
		{ClassID: 0, Box: types.YoloBox{XCenter: 0.5, YCenter: 0.5, Width: 0, Height: 0}},
	}
	// Must not panic and must leave the image untouched.
	out := Render(img, labels, []string{"helmet"})
	r, g, b, _ := out.At(50, 50).RGBA()
	if r>>8 != 64 || g>>8 != 64 || b>>8 != 64 {
		t.Errorf("degenerate box painted pixels: rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestClassName(t *testing.T) {
	names := []string{"flip-flops", "helmet"}
	if got := className(names, 1); got != "helmet" {
		t.Errorf("got %q", got)
	}
	if got := className(names, 5); got != "ID:5" {
		t.Errorf("got %q", got)
	}
	if got := className(names, -1); got != "ID:-1" {
		t.Errorf("got %q", got)
	}
}
