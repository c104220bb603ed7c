// Package visualize renders YOLO label files onto their images for manual
// inspection of a generated dataset.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/yolodata/pkg/boxconv"
	"github.com/menta2k/yolodata/pkg/types"
)

// Label is one parsed line of a YOLO label file.
type Label struct {
	ClassID int
	Box     types.YoloBox
}

// LoadLabels reads and parses a label file. A missing file yields no labels
// and no error, matching the "unlabeled image" case.
func LoadLabels(path string) ([]Label, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read label file: %w", err)
	}
	return ParseLabels(string(data), path), nil
}

// ParseLabels parses label-file content. Malformed lines (wrong field count,
// non-numeric values, out-of-range coordinates) are skipped with a warning;
// they never abort the file. The source name is used only for log context.
func ParseLabels(content, source string) []Label {
	var labels []Label

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 5 {
			log.Printf("warning: skipping invalid line in %s: %q", source, line)
			continue
		}

		classID, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Printf("warning: skipping line with non-numeric class id in %s: %q", source, line)
			continue
		}

		vals := make([]float64, 4)
		numeric := true
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				numeric = false
				break
			}
			vals[i] = v
		}
		if !numeric {
			log.Printf("warning: skipping line with non-numeric values in %s: %q", source, line)
			continue
		}

		inRange := true
		for _, v := range vals {
			if v < 0 || v > 1 {
				inRange = false
				break
			}
		}
		if !inRange {
			log.Printf("warning: skipping line with out-of-range coordinates in %s: %q", source, line)
			continue
		}

		labels = append(labels, Label{
			ClassID: classID,
			Box:     types.YoloBox{XCenter: vals[0], YCenter: vals[1], Width: vals[2], Height: vals[3]},
		})
	}

	return labels
}

// Render draws the labels onto a copy of the image: a red box per label with
// the class name on a red chip in the top-left corner. Labels whose box is
// degenerate after conversion are silently skipped. The input image is not
// modified.
func Render(img image.Image, labels []Label, classNames []string) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	red := color.NRGBA{255, 0, 0, 255}
	white := color.NRGBA{255, 255, 255, 255}
	stroke := int(math.Max(3, 0.005*float64(minInt(w, h))))

	for _, l := range labels {
		p, ok := boxconv.PixelFromYolo(l.Box, w, h)
		if !ok {
			continue
		}
		drawBox(nrgba, p, red, stroke)
		drawLabelChip(nrgba, p.XMin+2, p.YMin+2, className(classNames, l.ClassID), red, white)
	}

	return nrgba
}

// className returns the name for a class id, or an id placeholder when the
// id is outside the known class list.
func className(names []string, id int) string {
	if id < 0 || id >= len(names) {
		log.Printf("warning: class id %d out of range (max %d)", id, len(names)-1)
		return fmt.Sprintf("ID:%d", id)
	}
	return names[id]
}

// LoadImage opens an image file, falling back to an explicit WebP decode for
// files the registered decoders reject.
func LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if img, err := webp.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, 0); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// SaveImage writes an image in the requested format. Quality applies to jpg
// and webp; lossless to webp only.
func SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

func drawBox(img *image.NRGBA, box types.PixelBox, c color.NRGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, box.YMin+s, box.XMin, box.XMax, c)
		drawHLine(img, box.YMax-1-s, box.XMin, box.XMax, c)
		drawVLine(img, box.XMin+s, box.YMin, box.YMax, c)
		drawVLine(img, box.XMax-1-s, box.YMin, box.YMax, c)
	}
}

// drawLabelChip paints a filled background rectangle and the class name on
// top of it, anchored at (x, y).
func drawLabelChip(img *image.NRGBA, x, y int, text string, bg, fg color.NRGBA) {
	face := basicfont.Face7x13
	chipW := len(text)*face.Advance + 4
	chipH := face.Height + 4

	for cy := y; cy < y+chipH; cy++ {
		drawHLine(img, cy, x, x+chipW, bg)
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x+2, y+2+face.Ascent),
	}
	drawer.DrawString(text)
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
