// Package client defines the external detector collaborator interface.
package client

import (
	"context"

	"github.com/menta2k/yolodata/pkg/types"
)

// ObjectDetector locates objects of the requested classes in an image file.
//
// A nil error with an empty slice means the detector ran and found nothing;
// a non-nil error means the detection itself failed. Returned labels are not
// guaranteed to be limited to the requested classes, so callers must filter.
type ObjectDetector interface {
	Detect(ctx context.Context, imagePath string, classes []string) ([]types.Detection, error)
}
