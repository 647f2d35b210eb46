package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/record"
)

func TestBuildColumnReport(t *testing.T) {
	rec := record.Record{
		MemberID:      "KZ1",
		SectionWidth:  650,
		SectionHeight: 600,
		DetectedCount: 10,
		DesignTotal:   12,
		Compliance: compliance.Result{
			Verdict: compliance.VerdictFail,
			Message: "detected count (10) is 2 bars short of design total (12)",
		},
	}
	now := time.Date(2026, 8, 30, 14, 25, 0, 0, time.UTC)

	data, err := BuildColumnReport(rec, now)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{sheetName}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return v
	}

	require.Equal(t, "KZ1", get("B3"))
	require.Equal(t, "2026-08-30 14:25:00", get("D3"))
	require.Equal(t, "650×600 mm", get("B4"))
	require.Equal(t, "10", get("B8"))
	require.Equal(t, "12", get("B9"))
	require.Equal(t, "FAIL", get("B10"))
	require.Contains(t, get("C10"), "2 bars short")
}

func TestBuildColumnReportMissingInfo(t *testing.T) {
	rec := record.Record{
		DetectedCount: 8,
		DesignTotal:   8,
		Compliance: compliance.Result{
			Verdict: compliance.VerdictPass,
			Message: "detected count (8) matches design total (8)",
		},
	}

	data, err := BuildColumnReport(rec, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	require.Equal(t, "N/A", v)
	v, err = f.GetCellValue(sheetName, "B4")
	require.NoError(t, err)
	require.Equal(t, "N/A", v)
}
