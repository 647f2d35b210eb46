// Package record persists inspection records in SQLite.
package record

import (
	"time"

	"rebar-inspect/internal/compliance"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/hoop"
	"rebar-inspect/internal/notation"
	"rebar-inspect/internal/spacing"
)

// Record is one saved inspection outcome. The detection payloads are kept
// verbatim so a past inspection can be re-rendered without re-running the
// detector.
type Record struct {
	ID             int64               `json:"id"`
	RecordID       string              `json:"record_id"`
	InspectionType string              `json:"inspection_type"`
	ProjectName    string              `json:"project_name,omitempty"`
	Location       string              `json:"location,omitempty"`
	MemberID       string              `json:"member_id,omitempty"`
	SectionWidth   int                 `json:"section_width,omitempty"`
	SectionHeight  int                 `json:"section_height,omitempty"`
	DetectedCount  int                 `json:"detected_count"`
	DesignTotal    int                 `json:"design_total"`
	Compliance     compliance.Result   `json:"compliance"`
	BarGroups      []notation.BarGroup `json:"rebar_config,omitempty"`
	Predictions    []detect.Detection  `json:"predictions,omitempty"`
	HoopPath       *hoop.Path          `json:"hoop_path,omitempty"`
	Segments       []spacing.Segment   `json:"spacings,omitempty"`
	ImageURL       string              `json:"image_url,omitempty"`
	Inspector      string              `json:"inspector,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Filter selects and pages record listings.
type Filter struct {
	InspectionType string
	Page           int
	PerPage        int
}

// Page is one page of a record listing.
type Page struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Pages   int      `json:"pages"`
}
