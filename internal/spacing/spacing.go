// Package spacing converts ordered bar detections into measured,
// classified, tolerance-checked spacing segments.
package spacing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"rebar-inspect/pkg/colorutil"
	"rebar-inspect/pkg/geometry"
)

// ComponentType selects the spacing rule set for the inspected member.
type ComponentType int

const (
	// SlabWall members have a single undifferentiated target spacing.
	SlabWall ComponentType = iota
	// BeamColumn members have dense-zone and sparse-zone stirrup targets.
	BeamColumn
)

func (c ComponentType) String() string {
	switch c {
	case SlabWall:
		return "slab_wall"
	case BeamColumn:
		return "beam_column"
	default:
		return "unknown"
	}
}

// Zone classifies which spacing target applies to a segment.
type Zone string

const (
	ZoneDense            Zone = "dense"
	ZoneSparse           Zone = "sparse"
	ZoneUndifferentiated Zone = "undifferentiated"
)

// Status is the tolerance verdict for a single segment.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Segment is one measured gap between adjacent bars. Endpoints stay in the
// input pixel space so a renderer can overlay the segment without further
// computation.
type Segment struct {
	Index         int              `json:"index"`
	Start         geometry.Point2D `json:"start"`
	End           geometry.Point2D `json:"end"`
	PixelDistance float64          `json:"px_distance"`
	MmDistance    float64          `json:"mm_distance"`
	Zone          Zone             `json:"zone"`
	Status        Status           `json:"status"`
	Color         string           `json:"color"`
	Label         string           `json:"label"`
}

// Classify measures the gap between each adjacent pair of centers and
// checks it against the applicable target. Centers must already be ordered
// along the member's dominant axis. Fewer than two centers yields an empty
// result. A non-positive scale is an input error: the caller must gate on a
// committed calibration before asking for physical distances.
func Classify(centers []geometry.Point2D, scale float64, params Params) ([]Segment, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("spacing check requires a positive px/mm scale, got %.4f", scale)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(centers) < 2 {
		return []Segment{}, nil
	}

	segments := make([]Segment, 0, len(centers)-1)
	for i := 0; i < len(centers)-1; i++ {
		start, end := centers[i], centers[i+1]
		pxDist := start.Distance(end)
		mmDist := round1(pxDist / scale)

		seg := Segment{
			Index:         i,
			Start:         start.Round(),
			End:           end.Round(),
			PixelDistance: round1(pxDist),
			MmDistance:    mmDist,
		}
		seg.Zone, seg.Status = classifyGap(mmDist, params)
		seg.Color, seg.Label = presentation(seg.Zone, seg.Status)
		segments = append(segments, seg)
	}
	return segments, nil
}

// classifyGap assigns the zone and verdict for one measured gap.
func classifyGap(mmDist float64, params Params) (Zone, Status) {
	if params.Component == SlabWall {
		return ZoneUndifferentiated, check(mmDist, params.TargetMm, params.ToleranceMm)
	}

	// Nearest-target rule; an exact tie goes to the dense (lower) target.
	diffDense := math.Abs(mmDist - params.DenseTargetMm)
	diffSparse := math.Abs(mmDist - params.SparseTargetMm)
	if diffDense <= diffSparse {
		return ZoneDense, check(mmDist, params.DenseTargetMm, params.ToleranceMm)
	}
	return ZoneSparse, check(mmDist, params.SparseTargetMm, params.ToleranceMm)
}

// check passes exactly at the tolerance boundary.
func check(mmDist, targetMm, toleranceMm float64) Status {
	if math.Abs(mmDist-targetMm) <= toleranceMm {
		return StatusPass
	}
	return StatusFail
}

// presentation maps a zone/status pair to the color hint and short label a
// renderer displays.
func presentation(zone Zone, status Status) (color, label string) {
	if status == StatusFail {
		return colorutil.Hex(colorutil.Red), "fail"
	}
	switch zone {
	case ZoneDense:
		return colorutil.Hex(colorutil.Cyan), "dense zone pass"
	case ZoneSparse:
		return colorutil.Hex(colorutil.Green), "sparse zone pass"
	default:
		return colorutil.Hex(colorutil.Green), "pass"
	}
}

// Summary aggregates segment verdicts for reporting.
type Summary struct {
	Total  int     `json:"total"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	MeanMm float64 `json:"mean_mm"`
}

// Summarize tallies verdicts and the mean measured spacing.
func Summarize(segments []Segment) Summary {
	s := Summary{Total: len(segments)}
	if len(segments) == 0 {
		return s
	}
	dists := make([]float64, len(segments))
	for i, seg := range segments {
		dists[i] = seg.MmDistance
		if seg.Status == StatusPass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	s.MeanMm = round1(stat.Mean(dists, nil))
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
