// Package detect defines detection results received from the external
// object-detection service and the client used to obtain them. Coordinates
// are image pixels, origin top-left; boxes are reported center-based.
package detect

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"rebar-inspect/internal/calib"
	"rebar-inspect/pkg/geometry"
)

// Detection is one object found in an image. Instances are immutable once
// received; downstream stages read them and never write.
type Detection struct {
	X          float64 `json:"x"` // box center
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
}

// Center returns the detection's center point.
func (d Detection) Center() geometry.Point2D {
	return geometry.Point2D{X: d.X, Y: d.Y}
}

// Box returns the detection's bounding box with top-left origin.
func (d Detection) Box() geometry.Rect {
	return geometry.NewRect(d.X-d.Width/2, d.Y-d.Height/2, d.Width, d.Height)
}

// DiameterMm estimates the bar diameter from the box's minor dimension
// under the given pixel-per-millimeter scale.
func (d Detection) DiameterMm(scale float64) (float64, error) {
	return calib.DiameterEstimateMm(d.Box(), scale)
}

// ImageInfo carries the dimensions of the analyzed image as reported by the
// detection service.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the detection service's response payload.
type Result struct {
	Predictions []Detection `json:"predictions"`
	Image       ImageInfo   `json:"image"`
	Time        float64     `json:"time"`
}

// Centers extracts the center points of a detection sequence, in order.
func Centers(dets []Detection) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(dets))
	for i, d := range dets {
		pts[i] = d.Center()
	}
	return pts
}

// SortByDominantAxis orders detections along the axis with the larger
// coordinate variance. A single row of bars photographed at an angle still
// spreads mostly along one axis; sorting along it yields the adjacency
// order the spacing classifier expects. Returns a new slice; the input is
// left untouched.
func SortByDominantAxis(dets []Detection) []Detection {
	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	if len(sorted) < 2 {
		return sorted
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, d := range sorted {
		xs[i] = d.X
		ys[i] = d.Y
	}

	if stat.Variance(xs, nil) >= stat.Variance(ys, nil) {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	} else {
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })
	}
	return sorted
}

// FilterByConfidence drops detections below the given confidence threshold,
// preserving order.
func FilterByConfidence(dets []Detection, min float64) []Detection {
	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= min {
			kept = append(kept, d)
		}
	}
	return kept
}
