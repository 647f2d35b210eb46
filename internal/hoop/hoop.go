// Package hoop derives a plausible stirrup layout for a column cross
// section from detected longitudinal bar positions: the convex hull of the
// bar centers is the outer hoop, and interior bars get straight inner ties
// spanning the hoop's bounding box.
package hoop

import (
	"math"

	"rebar-inspect/internal/detect"
	"rebar-inspect/pkg/geometry"
)

// TieOrientation says which way an inner tie runs.
type TieOrientation string

const (
	TieHorizontal TieOrientation = "horizontal"
	TieVertical   TieOrientation = "vertical"
)

// Tie is one inner tie segment between opposite sides of the hoop.
type Tie struct {
	From        geometry.Point2D `json:"from"`
	To          geometry.Point2D `json:"to"`
	Orientation TieOrientation   `json:"type"`
}

// Path is the derived stirrup layout in image pixel space.
type Path struct {
	Outer []geometry.Point2D `json:"outer_hoop"`
	Ties  []Tie              `json:"inner_ties"`
}

// Generate builds the hoop path for a set of bar detections. Fewer than
// three bars cannot enclose an area and yield an empty path.
func Generate(dets []detect.Detection) Path {
	if len(dets) < 3 {
		return Path{Outer: []geometry.Point2D{}, Ties: []Tie{}}
	}

	centers := detect.Centers(dets)
	hull := geometry.ConvexHull(centers)

	path := Path{Outer: hull, Ties: []Tie{}}
	if len(hull) < 3 {
		return path
	}

	box := geometry.BoundingBox(hull)
	center := box.Center()

	for _, p := range centers {
		if onHull(p, hull) {
			continue
		}
		// Tie direction follows the bar's offset from the section center:
		// a bar displaced mostly sideways is restrained by a horizontal tie.
		if math.Abs(p.X-center.X) > math.Abs(p.Y-center.Y) {
			path.Ties = append(path.Ties, Tie{
				From:        geometry.Point2D{X: box.X, Y: p.Y},
				To:          geometry.Point2D{X: box.X + box.Width, Y: p.Y},
				Orientation: TieHorizontal,
			})
		} else {
			path.Ties = append(path.Ties, Tie{
				From:        geometry.Point2D{X: p.X, Y: box.Y},
				To:          geometry.Point2D{X: p.X, Y: box.Y + box.Height},
				Orientation: TieVertical,
			})
		}
	}
	return path
}

func onHull(p geometry.Point2D, hull []geometry.Point2D) bool {
	for _, h := range hull {
		if h == p {
			return true
		}
	}
	return false
}
