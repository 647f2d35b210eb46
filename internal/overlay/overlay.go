// Package overlay draws inspection results onto site photos.
package overlay

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/hoop"
	"rebar-inspect/internal/spacing"
	"rebar-inspect/pkg/colorutil"
	"rebar-inspect/pkg/geometry"
)

const (
	boxThickness  = 2
	lineThickness = 2
	labelScale    = 0.5
)

// DrawSpacing renders detection boxes and classified spacing segments onto
// the image and returns the result as JPEG bytes.
func DrawSpacing(imageData []byte, dets []detect.Detection, segments []spacing.Segment) ([]byte, error) {
	img, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode overlay image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("decode overlay image: empty mat")
	}

	for _, d := range dets {
		box := d.Box()
		gocv.Rectangle(&img, toImageRect(box), colorutil.Yellow, boxThickness)
	}

	for _, s := range segments {
		c, err := colorutil.ParseHex(s.Color)
		if err != nil {
			c = colorutil.White
		}
		gocv.Line(&img, toImagePoint(s.Start), toImagePoint(s.End), c, lineThickness)

		mid := image.Pt(
			int((s.Start.X+s.End.X)/2),
			int((s.Start.Y+s.End.Y)/2)-6,
		)
		label := fmt.Sprintf("%.1fmm %s", s.MmDistance, s.Label)
		gocv.PutText(&img, label, mid, gocv.FontHersheySimplex, labelScale, c, 1)
	}

	return encodeJPEG(img)
}

// DrawHoopPath renders the outer hoop polygon and inner ties onto the image
// and returns the result as JPEG bytes.
func DrawHoopPath(imageData []byte, dets []detect.Detection, path hoop.Path) ([]byte, error) {
	img, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode overlay image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("decode overlay image: empty mat")
	}

	for _, d := range dets {
		gocv.Circle(&img, toImagePoint(d.Center()), 4, colorutil.Yellow, -1)
	}

	outer := colorutil.Green
	for i := range path.Outer {
		from := path.Outer[i]
		to := path.Outer[(i+1)%len(path.Outer)]
		gocv.Line(&img, toImagePoint(from), toImagePoint(to), outer, lineThickness)
	}

	tie := colorutil.Cyan
	for _, t := range path.Ties {
		gocv.Line(&img, toImagePoint(t.From), toImagePoint(t.To), tie, lineThickness)
	}

	return encodeJPEG(img)
}

func encodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode overlay image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

func toImagePoint(p geometry.Point2D) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

func toImageRect(r geometry.Rect) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}
