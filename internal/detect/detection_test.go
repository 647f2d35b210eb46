package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectionBoxAndCenter(t *testing.T) {
	d := Detection{X: 100, Y: 50, Width: 20, Height: 30}
	box := d.Box()
	require.Equal(t, 90.0, box.X)
	require.Equal(t, 35.0, box.Y)
	require.Equal(t, d.Center(), box.Center())
}

func TestDiameterMm(t *testing.T) {
	d := Detection{X: 0, Y: 0, Width: 20, Height: 24}
	diam, err := d.DiameterMm(2)
	require.NoError(t, err)
	require.Equal(t, 10.0, diam)
}

func TestSortByDominantAxisHorizontal(t *testing.T) {
	dets := []Detection{
		{X: 300, Y: 102},
		{X: 100, Y: 98},
		{X: 200, Y: 100},
	}
	sorted := SortByDominantAxis(dets)
	require.Equal(t, []float64{100, 200, 300}, []float64{sorted[0].X, sorted[1].X, sorted[2].X})
	// Input untouched.
	require.Equal(t, 300.0, dets[0].X)
}

func TestSortByDominantAxisVertical(t *testing.T) {
	dets := []Detection{
		{X: 101, Y: 400},
		{X: 99, Y: 100},
		{X: 100, Y: 250},
	}
	sorted := SortByDominantAxis(dets)
	require.Equal(t, []float64{100, 250, 400}, []float64{sorted[0].Y, sorted[1].Y, sorted[2].Y})
}

func TestFilterByConfidence(t *testing.T) {
	dets := []Detection{
		{X: 1, Confidence: 0.9},
		{X: 2, Confidence: 0.2},
		{X: 3, Confidence: 0.5},
	}
	kept := FilterByConfidence(dets, 0.5)
	require.Len(t, kept, 2)
	require.Equal(t, 1.0, kept[0].X)
	require.Equal(t, 3.0, kept[1].X)
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		require.Equal(t, "40", r.URL.Query().Get("confidence"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		json.NewEncoder(w).Encode(Result{
			Predictions: []Detection{{X: 10, Y: 20, Width: 5, Height: 6, Confidence: 0.8, Class: "rebar"}},
			Image:       ImageInfo{Width: 640, Height: 480},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", map[Model]string{ModelSpacing: srv.URL})
	result, err := client.Detect(context.Background(), ModelSpacing, []byte("fake-jpeg"), 40, 40)
	require.NoError(t, err)
	require.Len(t, result.Predictions, 1)
	require.Equal(t, "rebar", result.Predictions[0].Class)
	require.Equal(t, 640, result.Image.Width)
}

func TestClientDetectUnknownModel(t *testing.T) {
	client := NewClient("k", map[Model]string{})
	_, err := client.Detect(context.Background(), ModelSpacing, nil, 40, 40)
	require.Error(t, err)
}

func TestClientDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("k", map[Model]string{ModelCounting: srv.URL})
	_, err := client.Detect(context.Background(), ModelCounting, []byte("x"), 40, 40)
	require.ErrorContains(t, err, "status 502")
}
