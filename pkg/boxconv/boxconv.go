// Package boxconv converts between the three bounding-box coordinate systems
// used by the pipeline: absolute pixel corners, YOLO-normalized center/size,
// and the 0-1000 normalized corner format produced by vision-language
// detectors.
//
// Every conversion clamps to the valid range and rejects boxes that end up
// with zero or negative area; callers must treat a rejected box as "no
// detection", not as an error.
package boxconv

import (
	"math"

	"github.com/menta2k/yolodata/pkg/types"
)

// PixelFromYolo converts a YOLO-normalized box into absolute pixel corners
// for an image of the given dimensions. Corner coordinates are truncated to
// integers and clamped to the image bounds. Returns false when the box is
// degenerate after clamping.
func PixelFromYolo(b types.YoloBox, imgW, imgH int) (types.PixelBox, bool) {
	boxW := b.Width * float64(imgW)
	boxH := b.Height * float64(imgH)
	cx := b.XCenter * float64(imgW)
	cy := b.YCenter * float64(imgH)

	// Truncation, not rounding: existing label tooling truncates here.
	p := types.PixelBox{
		XMin: int(cx - boxW/2),
		YMin: int(cy - boxH/2),
		XMax: int(cx + boxW/2),
		YMax: int(cy + boxH/2),
	}

	p.XMin = maxInt(0, p.XMin)
	p.YMin = maxInt(0, p.YMin)
	p.XMax = minInt(imgW, p.XMax)
	p.YMax = minInt(imgH, p.YMax)

	if p.XMin >= p.XMax || p.YMin >= p.YMax {
		return types.PixelBox{}, false
	}
	return p, true
}

// PixelFromVLM converts a detector box (0-1000 normalized, y-before-x) into
// absolute pixel corners. Out-of-range inputs are clamped to [0,1000] before
// scaling; scaled coordinates are rounded, not truncated. Returns false for
// non-positive image dimensions or a degenerate result.
func PixelFromVLM(b types.VLMBox, imgW, imgH int) (types.PixelBox, bool) {
	if imgW <= 0 || imgH <= 0 {
		return types.PixelBox{}, false
	}

	yMin := clampInt(b.YMin, 0, 1000)
	xMin := clampInt(b.XMin, 0, 1000)
	yMax := clampInt(b.YMax, 0, 1000)
	xMax := clampInt(b.XMax, 0, 1000)

	p := types.PixelBox{
		XMin: int(math.Round(float64(xMin) / 1000 * float64(imgW))),
		YMin: int(math.Round(float64(yMin) / 1000 * float64(imgH))),
		XMax: int(math.Round(float64(xMax) / 1000 * float64(imgW))),
		YMax: int(math.Round(float64(yMax) / 1000 * float64(imgH))),
	}

	if p.XMin >= p.XMax || p.YMin >= p.YMax {
		return types.PixelBox{}, false
	}
	return p, true
}

// YoloFromPixel converts absolute pixel corners into a YOLO-normalized box.
// The pixel box is clamped to the image bounds first and each normalized
// component is clamped to [0,1]. Returns false for non-positive image
// dimensions or when the box is degenerate after clamping.
func YoloFromPixel(b types.PixelBox, imgW, imgH int) (types.YoloBox, bool) {
	if imgW <= 0 || imgH <= 0 {
		return types.YoloBox{}, false
	}

	xMin := maxInt(0, b.XMin)
	yMin := maxInt(0, b.YMin)
	xMax := minInt(imgW, b.XMax)
	yMax := minInt(imgH, b.YMax)

	if xMin >= xMax || yMin >= yMax {
		return types.YoloBox{}, false
	}

	fw, fh := float64(imgW), float64(imgH)
	y := types.YoloBox{
		XCenter: (float64(xMin+xMax) / 2) / fw,
		YCenter: (float64(yMin+yMax) / 2) / fh,
		Width:   float64(xMax-xMin) / fw,
		Height:  float64(yMax-yMin) / fh,
	}

	y.XCenter = clamp(y.XCenter, 0, 1)
	y.YCenter = clamp(y.YCenter, 0, 1)
	y.Width = clamp(y.Width, 0, 1)
	y.Height = clamp(y.Height, 0, 1)

	if y.Width <= 0 || y.Height <= 0 {
		return types.YoloBox{}, false
	}
	return y, true
}

// YoloFromVLM runs the composite conversion used by the labeler:
// detector box -> pixel box -> YOLO box. Either stage can reject the box.
func YoloFromVLM(b types.VLMBox, imgW, imgH int) (types.YoloBox, bool) {
	p, ok := PixelFromVLM(b, imgW, imgH)
	if !ok {
		return types.YoloBox{}, false
	}
	return YoloFromPixel(p, imgW, imgH)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
