package server

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"rebar-inspect/internal/calib"
	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/hoop"
	"rebar-inspect/internal/overlay"
	"rebar-inspect/internal/session"
	"rebar-inspect/internal/spacing"
)

type calibrateRequest struct {
	Mode             string  `json:"mode"`
	PixelWidth       float64 `json:"pixel_width"`
	PhysicalLengthMm float64 `json:"physical_length_mm"`
}

type calibrateResponse struct {
	Mode       string  `json:"mode"`
	Committed  bool    `json:"committed"`
	PixelPerMm float64 `json:"pixel_per_mm"`
	Calibrated bool    `json:"calibrated"`
}

// handleCalibrate commits a reference-object measurement to the session for
// the given mode. Noise-gated frames are discarded and the previous scale,
// if any, stays in effect.
func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "decode calibrate request: %v", err)
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}

	sess := s.sessions.Get(mode)
	scale, committed := sess.CommitCalibration(calib.ReferenceFrame{
		PixelWidth:       req.PixelWidth,
		PhysicalLengthMm: req.PhysicalLengthMm,
	})
	respondJSON(w, http.StatusOK, calibrateResponse{
		Mode:       mode.String(),
		Committed:  committed,
		PixelPerMm: scale,
		Calibrated: sess.Calibrated(),
	})
}

func (s *Server) handleResetCalibration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "decode reset request: %v", err)
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	s.sessions.Reset(mode)
	respondJSON(w, http.StatusOK, map[string]string{"mode": mode.String(), "status": "reset"})
}

type analyzeResponse struct {
	Mode           string             `json:"mode"`
	Predictions    []detect.Detection `json:"predictions"`
	Count          int                `json:"count"`
	PixelPerMm     float64            `json:"pixel_per_mm,omitempty"`
	DiametersMm    []float64          `json:"diameters_mm,omitempty"`
	Spacings       []spacing.Segment  `json:"spacings,omitempty"`
	Summary        *spacing.Summary   `json:"summary,omitempty"`
	HoopPath       *hoop.Path         `json:"hoop_path,omitempty"`
	Compliance     *compliance.Result `json:"compliance,omitempty"`
	AnnotatedImage string             `json:"annotated_image,omitempty"`
}

// handleAnalyze runs a detection pass over the uploaded photo and, depending
// on the inspection mode, classifies bar spacings or generates a hoop tying
// path with an optional count-compliance check.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.detector == nil {
		respondError(w, http.StatusServiceUnavailable, "detection backend not configured")
		return
	}
	imageData, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	mode, err := session.ParseMode(r.FormValue("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}

	confidence := formInt(r, "confidence", s.defaultConfidence)
	overlap := formInt(r, "overlap", s.defaultOverlap)

	switch mode {
	case session.ModeSlabWall, session.ModeBeamColumn:
		s.analyzeSpacing(w, r, mode, imageData, confidence, overlap)
	case session.ModeColumnLongitudinal, session.ModeBeamLongitudinal:
		s.analyzeCounting(w, r, mode, imageData, confidence, overlap)
	default:
		respondError(w, http.StatusBadRequest, "mode %q has no photo analysis", mode)
	}
}

func (s *Server) analyzeSpacing(w http.ResponseWriter, r *http.Request, mode session.Mode, imageData []byte, confidence, overlap int) {
	sess := s.sessions.Get(mode)

	// An explicit pixel_per_mm on the request overrides the session scale.
	scale := sess.Scale()
	if v := formFloat(r, "pixel_per_mm", 0); v > 0 {
		scale = v
	}
	if scale <= 0 {
		respondError(w, http.StatusBadRequest, "not calibrated: provide pixel_per_mm or calibrate first")
		return
	}

	params := spacing.DefaultParams()
	if mode == session.ModeBeamColumn {
		params = params.WithComponent(spacing.BeamColumn)
	}
	if v := formFloat(r, "target_mm", 0); v > 0 {
		params = params.WithTarget(v)
	}
	dense := formFloat(r, "dense_target_mm", params.DenseTargetMm)
	sparse := formFloat(r, "sparse_target_mm", params.SparseTargetMm)
	params = params.WithZoneTargets(dense, sparse)
	if v := formFloat(r, "tolerance_mm", 0); v > 0 {
		params = params.WithTolerance(v)
	}

	result, err := s.detector.Detect(r.Context(), detect.ModelSpacing, imageData, confidence, overlap)
	if err != nil {
		respondError(w, http.StatusBadGateway, "detection failed: %v", err)
		return
	}

	preds := result.Predictions
	if v := formFloat(r, "min_confidence", 0); v > 0 {
		preds = detect.FilterByConfidence(preds, v)
	}

	ordered := detect.SortByDominantAxis(preds)
	segments, err := spacing.Classify(detect.Centers(ordered), scale, params)
	if err != nil {
		respondError(w, http.StatusBadRequest, "classify spacings: %v", err)
		return
	}
	sess.SetResults(ordered, segments)

	summary := spacing.Summarize(segments)
	resp := analyzeResponse{
		Mode:        mode.String(),
		Predictions: ordered,
		Count:       len(ordered),
		PixelPerMm:  scale,
		DiametersMm: diameterEstimates(ordered, scale),
		Spacings:    segments,
		Summary:     &summary,
	}
	if r.FormValue("annotate") == "true" {
		annotated, err := overlay.DrawSpacing(imageData, ordered, segments)
		if err != nil {
			log.Printf("annotate spacing image: %v", err)
		} else {
			resp.AnnotatedImage = base64.StdEncoding.EncodeToString(annotated)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) analyzeCounting(w http.ResponseWriter, r *http.Request, mode session.Mode, imageData []byte, confidence, overlap int) {
	result, err := s.detector.Detect(r.Context(), detect.ModelCounting, imageData, confidence, overlap)
	if err != nil {
		respondError(w, http.StatusBadGateway, "detection failed: %v", err)
		return
	}

	preds := result.Predictions
	if v := formFloat(r, "min_confidence", 0); v > 0 {
		preds = detect.FilterByConfidence(preds, v)
	}

	resp := analyzeResponse{
		Mode:        mode.String(),
		Predictions: preds,
		Count:       len(preds),
	}

	// Counting photos shoot the bar cross-sections head on, so a committed
	// spacing-session scale does not apply; an explicit one still yields
	// diameter estimates.
	if scale := formFloat(r, "pixel_per_mm", 0); scale > 0 {
		resp.PixelPerMm = scale
		resp.DiametersMm = diameterEstimates(preds, scale)
	}

	if mode == session.ModeColumnLongitudinal {
		path := hoop.Generate(preds)
		resp.HoopPath = &path

		if r.FormValue("annotate") == "true" {
			annotated, err := overlay.DrawHoopPath(imageData, preds, path)
			if err != nil {
				log.Printf("annotate hoop image: %v", err)
			} else {
				resp.AnnotatedImage = base64.StdEncoding.EncodeToString(annotated)
			}
		}
	}

	if designTotal := formInt(r, "design_total", 0); designTotal > 0 {
		verdict, err := compliance.Evaluate(len(preds), designTotal)
		if err != nil {
			respondError(w, http.StatusBadRequest, "evaluate compliance: %v", err)
			return
		}
		resp.Compliance = &verdict
	}

	respondJSON(w, http.StatusOK, resp)
}

// diameterEstimates computes the per-detection bar diameter under the given
// scale, index-aligned with dets.
func diameterEstimates(dets []detect.Detection, scale float64) []float64 {
	if scale <= 0 || len(dets) == 0 {
		return nil
	}
	out := make([]float64, len(dets))
	for i, d := range dets {
		mm, err := d.DiameterMm(scale)
		if err != nil {
			return nil
		}
		out[i] = mm
	}
	return out
}

func formInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.FormValue(key))
	if err != nil {
		return fallback
	}
	return v
}

func formFloat(r *http.Request, key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(r.FormValue(key), 64)
	if err != nil {
		return fallback
	}
	return v
}
