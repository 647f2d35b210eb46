// Package main provides the entry point for the rebar inspection service.
package main

import (
	"fmt"
	"log"
	"net/http"

	"rebar-inspect/internal/config"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/ocr"
	"rebar-inspect/internal/record"
	"rebar-inspect/internal/server"
	"rebar-inspect/internal/session"
	"rebar-inspect/internal/version"
	"rebar-inspect/internal/vlm"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting rebar-inspect %s (%s, built %s)", version.Version, version.GitCommit, version.BuildTime)

	cfg := config.Load()

	store, err := record.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open record store %s: %v", cfg.DatabasePath, err)
	}
	defer store.Close()

	var detector server.Detector
	if cfg.DetectAPIKey != "" {
		detector = detect.NewClient(cfg.DetectAPIKey, map[detect.Model]string{
			detect.ModelSpacing:  cfg.SpacingModelURL,
			detect.ModelCounting: cfg.CountingModelURL,
		})
	} else {
		log.Println("DETECT_API_KEY not set, photo analysis disabled")
	}

	var analyzer server.DrawingAnalyzer
	if cfg.VLMAPIKey != "" {
		analyzer = vlm.NewClient(cfg.VLMEndpoint, cfg.VLMAPIKey, cfg.VLMModel)
	} else {
		log.Println("VLM_API_KEY not set, drawing analysis disabled")
	}

	var reader server.DesignReader
	engine, err := ocr.NewEngine(cfg.OCRLanguages)
	if err != nil {
		log.Printf("OCR engine unavailable, notation recognition disabled: %v", err)
	} else {
		defer engine.Close()
		reader = engine
	}

	srv := server.New(detector, analyzer, reader, store, session.NewManager(), cfg.DefaultConfidence, cfg.DefaultOverlap)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
