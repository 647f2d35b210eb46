package ocr

import (
	"strings"

	"rebar-inspect/internal/notation"
)

// DesignExtraction is everything the OCR pass could read off a drawing.
type DesignExtraction struct {
	RawText     string                `json:"raw_text"`
	MemberID    string                `json:"member_id,omitempty"`
	SectionSize *notation.SectionSize `json:"section_size,omitempty"`
	BarGroups   []notation.BarGroup   `json:"rebar_config"`
	DesignTotal int                   `json:"design_total"`
}

// ParseDesignText parses already-recognized text into a design extraction.
// Split out from OCR so the parsing stage is testable without Tesseract.
func ParseDesignText(text string) DesignExtraction {
	ex := DesignExtraction{RawText: strings.TrimSpace(text)}
	ex.MemberID = notation.ParseMemberID(ex.RawText)
	if size, ok := notation.ParseSectionSize(ex.RawText); ok {
		ex.SectionSize = &size
	}
	ex.BarGroups = notation.Parse(ex.RawText)
	ex.DesignTotal = notation.DesignTotal(ex.BarGroups)
	return ex
}

// ExtractDesign runs OCR on a drawing photo and parses the result.
func (e *Engine) ExtractDesign(imageData []byte) (DesignExtraction, error) {
	text, err := e.RecognizeText(imageData)
	if err != nil {
		return DesignExtraction{}, err
	}
	return ParseDesignText(text), nil
}
