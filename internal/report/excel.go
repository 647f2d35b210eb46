// Package report renders inspection records as styled Excel workbooks.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/record"
)

const sheetName = "Column Section Report"

// verdict font colors in the summary table.
var verdictColors = map[compliance.Verdict]string{
	compliance.VerdictPass:    "008000",
	compliance.VerdictFail:    "FF0000",
	compliance.VerdictWarning: "FF8C00",
}

// BuildColumnReport renders a column-section inspection record into an
// XLSX workbook and returns the encoded bytes.
func BuildColumnReport(r record.Record, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	// Title
	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return nil, fmt.Errorf("merge title cells: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "Rebar Inspection Platform - Column Section Report")
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	f.SetCellStyle(sheetName, "A1", "F1", titleStyle)

	// Basic info
	f.SetCellValue(sheetName, "A3", "Member ID")
	f.SetCellValue(sheetName, "B3", orNA(r.MemberID))
	f.SetCellValue(sheetName, "C3", "Inspected at")
	f.SetCellValue(sheetName, "D3", now.Format("2006-01-02 15:04:05"))

	f.SetCellValue(sheetName, "A4", "Section size")
	if r.SectionWidth > 0 && r.SectionHeight > 0 {
		f.SetCellValue(sheetName, "B4", fmt.Sprintf("%d×%d mm", r.SectionWidth, r.SectionHeight))
	} else {
		f.SetCellValue(sheetName, "B4", "N/A")
	}

	// Summary table
	f.SetCellValue(sheetName, "A6", "Inspection Summary")
	sectionStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	f.SetCellStyle(sheetName, "A6", "A6", sectionStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2196F3"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Style: 1}, {Type: "right", Style: 1},
			{Type: "top", Style: 1}, {Type: "bottom", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	for i, header := range []string{"Item", "Value", "Notes"} {
		cell := fmt.Sprintf("%c7", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	f.SetCellValue(sheetName, "A8", "Detected count")
	f.SetCellValue(sheetName, "B8", r.DetectedCount)
	f.SetCellValue(sheetName, "C8", "longitudinal bars found by detection")

	f.SetCellValue(sheetName, "A9", "Design total")
	f.SetCellValue(sheetName, "B9", r.DesignTotal)
	f.SetCellValue(sheetName, "C9", "required by the drawing")

	f.SetCellValue(sheetName, "A10", "Compliance")
	f.SetCellValue(sheetName, "B10", string(r.Compliance.Verdict))
	f.SetCellValue(sheetName, "C10", r.Compliance.Message)
	if color, ok := verdictColors[r.Compliance.Verdict]; ok {
		verdictStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: color}})
		if err != nil {
			return nil, fmt.Errorf("create verdict style: %w", err)
		}
		f.SetCellStyle(sheetName, "B10", "B10", verdictStyle)
	}

	for col, width := range map[string]float64{"A": 15, "B": 15, "C": 40, "D": 25} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
