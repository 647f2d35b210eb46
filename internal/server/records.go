package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rebar-inspect/internal/record"
	"rebar-inspect/internal/report"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := record.Filter{
		InspectionType: q.Get("type"),
		Page:           queryInt(q.Get("page"), 1),
		PerPage:        queryInt(q.Get("per_page"), 20),
	}
	page, err := s.store.List(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list records: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec record.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "decode record: %v", err)
		return
	}
	if rec.InspectionType == "" {
		respondError(w, http.StatusBadRequest, "inspection_type is required")
		return
	}
	saved, err := s.store.Insert(rec)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "save record: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	rec, err := s.store.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "record %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load record: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	err = s.store.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "record %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "delete record: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExportReport renders a stored record as a downloadable Excel workbook.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	rec, err := s.store.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "record %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load record: %v", err)
		return
	}

	data, err := report.BuildColumnReport(rec, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "build report: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.RecordID+".xlsx"))
	w.Write(data)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", r.PathValue("id"))
	}
	return id, nil
}

func queryInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
