package server

import (
	"encoding/json"
	"net/http"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/notation"
	"rebar-inspect/internal/vlm"
)

// handleOCR recognizes design notation in an uploaded drawing crop.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		respondError(w, http.StatusServiceUnavailable, "ocr backend not configured")
		return
	}
	imageData, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	extraction, err := s.reader.ExtractDesign(imageData)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "ocr failed: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, extraction)
}

// handleParseCAD sends a full drawing to the vision-language model and
// returns the structured extraction alongside the readable report.
func (s *Server) handleParseCAD(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, "drawing analysis backend not configured")
		return
	}
	imageData, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	component := vlm.ParseComponent(r.FormValue("component"))
	result, err := s.analyzer.ParseDrawing(r.Context(), imageData, component)
	if err != nil {
		respondError(w, http.StatusBadGateway, "drawing analysis failed: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleVerifyMaterial reads a bar mill mark from a close-up photo.
func (s *Server) handleVerifyMaterial(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, "drawing analysis backend not configured")
		return
	}
	imageData, err := readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	result, err := s.analyzer.VerifyMaterial(r.Context(), imageData)
	if err != nil {
		respondError(w, http.StatusBadGateway, "material verification failed: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type complianceRequest struct {
	DetectedCount  int    `json:"detected_count"`
	DesignTotal    int    `json:"design_total"`
	DesignNotation string `json:"design_notation"`
}

type complianceResponse struct {
	compliance.Result
	DetectedCount int                 `json:"detected_count"`
	DesignTotal   int                 `json:"design_total"`
	BarGroups     []notation.BarGroup `json:"rebar_config,omitempty"`
}

// handleCheckCompliance compares a detected bar count against the design
// total, taken either directly or parsed from design notation text.
func (s *Server) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req complianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "decode compliance request: %v", err)
		return
	}

	designTotal := req.DesignTotal
	var groups []notation.BarGroup
	if designTotal <= 0 && req.DesignNotation != "" {
		groups = notation.Parse(req.DesignNotation)
		designTotal = notation.DesignTotal(groups)
	}

	result, err := compliance.Evaluate(req.DetectedCount, designTotal)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	respondJSON(w, http.StatusOK, complianceResponse{
		Result:        result,
		DetectedCount: req.DetectedCount,
		DesignTotal:   designTotal,
		BarGroups:     groups,
	})
}
