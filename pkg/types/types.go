// Package types defines the bounding-box coordinate systems used across the
// dataset pipeline.
//
// Three box representations exist and are easy to confuse, so each gets its
// own named type:
//
//   - PixelBox: absolute pixel corners, x-before-y.
//   - YoloBox: center/size normalized to [0,1], the YOLO label format.
//   - VLMBox: corners normalized to [0,1000] in y-before-x order, as emitted
//     by vision-language detectors.
package types

import "fmt"

// PixelBox is an axis-aligned box in absolute pixel coordinates.
// A valid box satisfies 0 <= XMin < XMax <= width and 0 <= YMin < YMax <= height.
type PixelBox struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Width returns the box width in pixels.
func (b PixelBox) Width() int { return b.XMax - b.XMin }

// Height returns the box height in pixels.
func (b PixelBox) Height() int { return b.YMax - b.YMin }

// YoloBox is a box in YOLO-normalized form: center and size, each divided by
// the image dimension. All fields are in [0,1]; Width and Height must be
// strictly positive for the box to be valid.
type YoloBox struct {
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// String serializes the box in YOLO label-file form, six decimal places per
// coordinate.
func (b YoloBox) String() string {
	return fmt.Sprintf("%.6f %.6f %.6f %.6f", b.XCenter, b.YCenter, b.Width, b.Height)
}

// VLMBox is a box as returned by a vision-language detector: integer corners
// scaled to [0,1000], y coordinate first. The corner order is a quirk of the
// detector output format and is deliberately distinct from PixelBox.
type VLMBox struct {
	YMin int
	XMin int
	YMax int
	XMax int
}

// Detection is a single raw detection from the external detector, paired with
// the dimensions of the image it was detected in.
type Detection struct {
	Label       string
	Box         VLMBox
	ImageWidth  int
	ImageHeight int
}

// Split identifies one of the three dataset partitions.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Splits lists the partitions in their conventional order.
var Splits = []Split{SplitTrain, SplitVal, SplitTest}

// SplitAssignment places one source image into a dataset split. Group is the
// source directory name the image was collected from.
type SplitAssignment struct {
	Split     Split
	ImagePath string
	Group     string
}
