// Package calib derives and applies the pixel-per-millimeter scale used to
// turn image measurements into physical ones. The scale comes from a
// reference object of known length that the operator frames with a drawn
// rectangle.
package calib

import (
	"fmt"
	"math"

	"rebar-inspect/pkg/geometry"
)

// MinReferencePixels is the smallest drawn reference width treated as a
// deliberate gesture. Anything at or below this is an accidental micro-drag
// and must not commit a scale: dividing by a near-zero pixel width would
// produce an absurdly large one.
const MinReferencePixels = 5.0

// ReferenceFrame pairs an operator-drawn reference width in pixels with the
// known physical length of the reference object.
type ReferenceFrame struct {
	PixelWidth       float64 `json:"pixel_width"`
	PhysicalLengthMm float64 `json:"physical_length_mm"`
}

// Scale returns the pixel-per-millimeter factor for the frame.
func (f ReferenceFrame) Scale() (float64, error) {
	return ComputeScale(f.PixelWidth, f.PhysicalLengthMm)
}

// Noise reports whether the drawn width is too small to be a deliberate
// calibration gesture.
func (f ReferenceFrame) Noise() bool {
	return math.Abs(f.PixelWidth) <= MinReferencePixels
}

// ComputeScale converts a drawn reference width and a known physical length
// into a pixel-per-millimeter scale. The sign of pixelWidth is irrelevant;
// drag direction does not matter.
func ComputeScale(pixelWidth, physicalLengthMm float64) (float64, error) {
	if physicalLengthMm <= 0 {
		return 0, fmt.Errorf("reference length must be positive, got %.2f mm", physicalLengthMm)
	}
	return math.Abs(pixelWidth) / physicalLengthMm, nil
}

// PixelsToMm converts a pixel distance to millimeters under the given scale.
func PixelsToMm(pixels, scale float64) float64 {
	return pixels / scale
}

// MmToPixels converts a millimeter distance to pixels under the given scale.
func MmToPixels(mm, scale float64) float64 {
	return mm * scale
}

// DiameterEstimateMm estimates a bar's diameter from its detection box.
// Detection boxes are not axis-aligned to the bar, so the minor dimension
// is the more stable diameter proxy for elongated or overlapping boxes.
// The result is rounded to one decimal place for display.
func DiameterEstimateMm(box geometry.Rect, scale float64) (float64, error) {
	if scale <= 0 {
		return 0, fmt.Errorf("scale must be positive, got %.4f", scale)
	}
	return math.Round(box.MinSide()/scale*10) / 10, nil
}
