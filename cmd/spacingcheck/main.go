// Command spacingcheck classifies rebar spacings from saved detection
// results and prints a compliance table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"rebar-inspect/internal/calib"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/spacing"

	_ "golang.org/x/image/tiff"
)

func main() {
	detectionsPath := flag.String("detections", "", "Path to detection result JSON")
	imagePath := flag.String("image", "", "Optional photo the detections came from (TIFF, PNG, or JPEG)")
	pixelWidth := flag.Float64("ref-px", 0, "Reference object width in pixels")
	refLength := flag.Float64("ref-mm", 0, "Reference object physical length in mm")
	scaleFlag := flag.Float64("scale", 0, "Pixel-per-mm scale (overrides -ref-px/-ref-mm)")
	component := flag.String("component", "slab_wall", "Component type: slab_wall or beam_column")
	target := flag.Float64("target", 0, "Target spacing in mm (slab_wall)")
	dense := flag.Float64("dense", 0, "Dense zone target spacing in mm (beam_column)")
	sparse := flag.Float64("sparse", 0, "Sparse zone target spacing in mm (beam_column)")
	tolerance := flag.Float64("tolerance", 0, "Allowed deviation in mm")
	flag.Parse()

	if *detectionsPath == "" {
		fmt.Println("Usage: spacingcheck -detections <path> [-scale 2.5 | -ref-px 100 -ref-mm 50] [-component slab_wall|beam_column]")
		os.Exit(1)
	}

	scale := *scaleFlag
	if scale <= 0 {
		var err error
		scale, err = calib.ComputeScale(*pixelWidth, *refLength)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Scale: %.4f px/mm\n", scale)

	if *imagePath != "" {
		f, err := os.Open(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
			os.Exit(1)
		}
		cfg, format, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Photo: %s, %dx%d px (%.0fx%.0f mm at this scale)\n",
			format, cfg.Width, cfg.Height,
			calib.PixelsToMm(float64(cfg.Width), scale),
			calib.PixelsToMm(float64(cfg.Height), scale))
	}

	data, err := os.ReadFile(*detectionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read detections: %v\n", err)
		os.Exit(1)
	}
	var result detect.Result
	if err := json.Unmarshal(data, &result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse detections: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Detections: %d\n", len(result.Predictions))

	ordered := detect.SortByDominantAxis(result.Predictions)
	for i, d := range ordered {
		if mm, err := d.DiameterMm(scale); err == nil {
			fmt.Printf("  bar %-3d est. diameter %.1f mm (confidence %.2f)\n", i+1, mm, d.Confidence)
		}
	}

	params := spacing.DefaultParams()
	if *component == "beam_column" {
		params = params.WithComponent(spacing.BeamColumn)
	}
	if *target > 0 {
		params = params.WithTarget(*target)
	}
	if *dense > 0 || *sparse > 0 {
		d, sp := params.DenseTargetMm, params.SparseTargetMm
		if *dense > 0 {
			d = *dense
		}
		if *sparse > 0 {
			sp = *sparse
		}
		params = params.WithZoneTargets(d, sp)
	}
	if *tolerance > 0 {
		params = params.WithTolerance(*tolerance)
	}

	segments, err := spacing.Classify(detect.Centers(ordered), scale, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
		os.Exit(1)
	}
	if len(segments) == 0 {
		fmt.Println("Fewer than two detections, nothing to measure")
		return
	}

	fmt.Printf("\n%-4s %10s %10s %-16s %-6s\n", "#", "px", "mm", "zone", "status")
	for _, seg := range segments {
		fmt.Printf("%-4d %10.1f %10.1f %-16s %-6s\n",
			seg.Index, seg.PixelDistance, seg.MmDistance, seg.Zone, seg.Status)
	}

	summary := spacing.Summarize(segments)
	fmt.Printf("\nSegments: %d  pass: %d  fail: %d  mean: %.1f mm\n",
		summary.Total, summary.Passed, summary.Failed, summary.MeanMm)
	if summary.Failed > 0 {
		os.Exit(2)
	}
}
