package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/ocr"
	"rebar-inspect/internal/record"
	"rebar-inspect/internal/session"
)

type stubDetector struct {
	result *detect.Result
	err    error
	model  detect.Model
}

func (d *stubDetector) Detect(_ context.Context, model detect.Model, _ []byte, _, _ int) (*detect.Result, error) {
	d.model = model
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

type stubReader struct {
	extraction ocr.DesignExtraction
}

func (r *stubReader) ExtractDesign(_ []byte) (ocr.DesignExtraction, error) {
	return r.extraction, nil
}

func newTestServer(t *testing.T, detector Detector) (*Server, *record.Store) {
	t.Helper()
	store, err := record.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(detector, nil, nil, store, session.NewManager(), 40, 40), store
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "site.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestCalibrateCommitAndNoiseGate(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	handler := srv.Handler()

	post := func(body string) calibrateResponse {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/calibrate", strings.NewReader(body))
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp calibrateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	resp := post(`{"mode":"slab_wall","pixel_width":100,"physical_length_mm":50}`)
	require.True(t, resp.Committed)
	require.InDelta(t, 2.0, resp.PixelPerMm, 1e-9)
	require.True(t, resp.Calibrated)

	// A noise frame is discarded and the committed scale survives.
	resp = post(`{"mode":"slab_wall","pixel_width":4,"physical_length_mm":50}`)
	require.False(t, resp.Committed)
	require.InDelta(t, 2.0, resp.PixelPerMm, 1e-9)
	require.True(t, resp.Calibrated)
}

func TestAnalyzeSpacing(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{
		Predictions: []detect.Detection{
			{X: 100, Y: 100, Width: 20, Height: 20, Confidence: 0.9, Class: "rebar"},
			{X: 440, Y: 100, Width: 20, Height: 20, Confidence: 0.9, Class: "rebar"},
		},
	}}
	srv, _ := newTestServer(t, detector)

	body, contentType := multipartBody(t, map[string]string{
		"mode":         "slab_wall",
		"pixel_per_mm": "2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, detect.ModelSpacing, detector.model)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Spacings, 1)
	require.InDelta(t, 170.0, resp.Spacings[0].MmDistance, 1e-9)
	require.Equal(t, "pass", string(resp.Spacings[0].Status))

	// 20x20 px boxes at 2 px/mm estimate as 10.0 mm bars.
	require.Equal(t, []float64{10.0, 10.0}, resp.DiametersMm)
}

func TestAnalyzeSpacingMinConfidence(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{
		Predictions: []detect.Detection{
			{X: 100, Y: 100, Width: 20, Height: 20, Confidence: 0.9, Class: "rebar"},
			{X: 270, Y: 100, Width: 20, Height: 20, Confidence: 0.3, Class: "rebar"},
			{X: 440, Y: 100, Width: 20, Height: 20, Confidence: 0.9, Class: "rebar"},
		},
	}}
	srv, _ := newTestServer(t, detector)

	body, contentType := multipartBody(t, map[string]string{
		"mode":           "slab_wall",
		"pixel_per_mm":   "2",
		"min_confidence": "0.5",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// The mid-span low-confidence hit drops out, leaving one wide segment.
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Spacings, 1)
	require.InDelta(t, 170.0, resp.Spacings[0].MmDistance, 1e-9)
}

func TestAnalyzeRequiresCalibration(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{}}
	srv, _ := newTestServer(t, detector)

	body, contentType := multipartBody(t, map[string]string{"mode": "slab_wall"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "not calibrated")
}

func TestAnalyzeCountingWithCompliance(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{
		Predictions: []detect.Detection{
			{X: 10, Y: 10, Width: 16, Height: 20},
			{X: 90, Y: 10, Width: 16, Height: 20},
			{X: 90, Y: 90, Width: 16, Height: 20},
			{X: 10, Y: 90, Width: 16, Height: 20},
		},
	}}
	srv, _ := newTestServer(t, detector)

	body, contentType := multipartBody(t, map[string]string{
		"mode":         "column_longitudinal",
		"design_total": "6",
		"pixel_per_mm": "2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, detect.ModelCounting, detector.model)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 4, resp.Count)
	require.NotNil(t, resp.HoopPath)
	require.Len(t, resp.HoopPath.Outer, 4)
	require.NotNil(t, resp.Compliance)
	require.Equal(t, "FAIL", string(resp.Compliance.Verdict))

	// Minor box dimension 16 px at 2 px/mm estimates an 8.0 mm bar.
	require.Equal(t, []float64{8.0, 8.0, 8.0, 8.0}, resp.DiametersMm)
}

func TestCheckComplianceFromNotation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	reqBody := `{"detected_count":12,"design_notation":"4C25 8C22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/check_compliance", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp complianceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 12, resp.DesignTotal)
	require.Equal(t, "PASS", string(resp.Verdict))
	require.Len(t, resp.BarGroups, 2)
}

func TestRecordsCRUD(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	handler := srv.Handler()

	body := `{"inspection_type":"column_section","member_id":"KZ1","detected_count":8,"design_total":8,"compliance":{"status":"PASS","message":"ok"}}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved record.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotZero(t, saved.ID)
	require.NotEmpty(t, saved.RecordID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records?type=column_section", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page record.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)
	require.Equal(t, 20, page.PerPage)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records/1/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/records/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOCRExtract(t *testing.T) {
	store, err := record.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reader := &stubReader{extraction: ocr.DesignExtraction{
		RawText:     "KZ1 4C25",
		MemberID:    "KZ1",
		DesignTotal: 4,
	}}
	srv := New(nil, nil, reader, store, session.NewManager(), 40, 40)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ocr.DesignExtraction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "KZ1", resp.MemberID)
	require.Equal(t, 4, resp.DesignTotal)
}

func TestOCRBackendMissing(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
