// Package server exposes the inspection engine over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/ocr"
	"rebar-inspect/internal/record"
	"rebar-inspect/internal/session"
	"rebar-inspect/internal/vlm"
	"rebar-inspect/internal/version"
)

const maxUploadBytes = 50 << 20

// Detector runs a hosted detection model over an uploaded image.
type Detector interface {
	Detect(ctx context.Context, model detect.Model, imageData []byte, confidence, overlap int) (*detect.Result, error)
}

// DrawingAnalyzer extracts structured rebar data from CAD drawings and
// verifies bar material from mill-mark photos.
type DrawingAnalyzer interface {
	ParseDrawing(ctx context.Context, imageData []byte, component vlm.Component) (*vlm.DrawingResult, error)
	VerifyMaterial(ctx context.Context, imageData []byte) (*vlm.MaterialResult, error)
}

// DesignReader recognizes design notation text in a drawing crop.
type DesignReader interface {
	ExtractDesign(imageData []byte) (ocr.DesignExtraction, error)
}

// Server wires the inspection components behind HTTP handlers.
type Server struct {
	detector Detector
	analyzer DrawingAnalyzer
	reader   DesignReader
	store    *record.Store
	sessions *session.Manager

	defaultConfidence int
	defaultOverlap    int
}

// New builds a Server. Any of detector, analyzer and reader may be nil when
// the corresponding backend is not configured; their endpoints then report
// 503.
func New(detector Detector, analyzer DrawingAnalyzer, reader DesignReader, store *record.Store, sessions *session.Manager, defaultConfidence, defaultOverlap int) *Server {
	return &Server{
		detector:          detector,
		analyzer:          analyzer,
		reader:            reader,
		store:             store,
		sessions:          sessions,
		defaultConfidence: defaultConfidence,
		defaultOverlap:    defaultOverlap,
	}
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/calibrate", s.handleCalibrate)
	mux.HandleFunc("POST /api/reset_calibration", s.handleResetCalibration)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/ocr", s.handleOCR)
	mux.HandleFunc("POST /api/parse_cad", s.handleParseCAD)
	mux.HandleFunc("POST /api/verify_material", s.handleVerifyMaterial)
	mux.HandleFunc("POST /api/check_compliance", s.handleCheckCompliance)
	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("GET /api/records/{id}/report", s.handleExportReport)

	return logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// readUpload pulls the uploaded image out of a multipart form.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("missing image upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image upload")
	}
	return data, nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, format string, args ...any) {
	respondJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		log.Printf("%s %s", r.Method, r.URL.Path)
	})
}
