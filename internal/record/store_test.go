package record

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/notation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	saved, err := s.Insert(Record{
		InspectionType: "counting",
		ProjectName:    "Tower B",
		MemberID:       "KZ1",
		SectionWidth:   650,
		SectionHeight:  600,
		DetectedCount:  12,
		DesignTotal:    12,
		Compliance:     compliance.Result{Verdict: compliance.VerdictPass, Message: "detected count (12) matches design total (12)"},
		BarGroups:      []notation.BarGroup{{Count: 4, Diameter: 25}, {Count: 8, Diameter: 22}},
		Predictions:    []detect.Detection{{X: 10, Y: 20, Width: 30, Height: 30, Confidence: 0.9, Class: "rebar"}},
		Inspector:      "Chen",
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.NotEmpty(t, saved.RecordID)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.RecordID, got.RecordID)
	require.Equal(t, compliance.VerdictPass, got.Compliance.Verdict)
	require.Equal(t, saved.BarGroups, got.BarGroups)
	require.Len(t, got.Predictions, 1)
	require.Equal(t, "rebar", got.Predictions[0].Class)
	require.Nil(t, got.HoopPath)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(999)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	saved, err := s.Insert(Record{InspectionType: "spacing"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(saved.ID))
	require.ErrorIs(t, s.Delete(saved.ID), sql.ErrNoRows)
}

func TestListFiltersAndPages(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Insert(Record{InspectionType: "spacing", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := s.Insert(Record{InspectionType: "counting", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	page, err := s.List(Filter{InspectionType: "spacing", Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Equal(t, 3, page.Pages)
	require.Len(t, page.Records, 2)
	// Newest first.
	require.True(t, page.Records[0].CreatedAt.After(page.Records[1].CreatedAt))

	all, err := s.List(Filter{})
	require.NoError(t, err)
	require.Equal(t, 6, all.Total)
	require.Equal(t, "counting", all.Records[0].InspectionType)

	last, err := s.List(Filter{InspectionType: "spacing", Page: 3, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, last.Records, 1)
}

func TestNewRecordIDFormat(t *testing.T) {
	id := NewRecordID(time.Date(2026, 8, 30, 14, 25, 1, 0, time.UTC))
	require.Len(t, id, 20)
	require.Equal(t, "IR20260830142501", id[:16])
}
