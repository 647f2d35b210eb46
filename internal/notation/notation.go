// Package notation parses the compact rebar design notation used on
// structural drawings: bar groups like "4C22" or "8Φ20", member IDs like
// "KZ1", and section sizes like "650x600".
package notation

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausibility bounds for parsed bar groups. Values outside these ranges
// are OCR noise rather than real reinforcement callouts.
const (
	MinCount    = 1
	MaxCount    = 50
	MinDiameter = 6 // mm
	MaxDiameter = 50
)

// BarGroup is one <count><mark><diameter> callout: count bars of the given
// nominal diameter.
type BarGroup struct {
	Count    int `json:"count"`
	Diameter int `json:"diameter"`
}

var (
	// The bar mark is C (HRB400 shorthand) or a phi; whitespace may
	// separate the parts. U+03D5 is the variant phi some CAD fonts emit.
	groupPattern   = regexp.MustCompile(`(?i)(\d+)\s*[cφϕ]\s*(\d+)`)
	memberPattern  = regexp.MustCompile(`(?i)[KGZ]+Z?\d+`)
	sectionPattern = regexp.MustCompile(`(?i)(\d{3,4})\s*[x×*]\s*(\d{3,4})`)
)

// Parse extracts every bar group from the text, preserving input order.
// An empty result signals that nothing parseable was found; callers treat
// that as a user input error and leave their design tally unchanged.
func Parse(text string) []BarGroup {
	matches := groupPattern.FindAllStringSubmatch(text, -1)
	groups := make([]BarGroup, 0, len(matches))
	for _, m := range matches {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		diameter, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if count < MinCount || count > MaxCount || diameter < MinDiameter || diameter > MaxDiameter {
			continue
		}
		groups = append(groups, BarGroup{Count: count, Diameter: diameter})
	}
	return groups
}

// DesignTotal sums the bar counts across groups.
func DesignTotal(groups []BarGroup) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}

// ParseMemberID extracts a column/member identifier such as KZ1, GZ2 or Z3.
// Returns "" when none is present.
func ParseMemberID(text string) string {
	return strings.ToUpper(memberPattern.FindString(text))
}

// SectionSize is a member cross-section in millimeters.
type SectionSize struct {
	WidthMm  int `json:"width_mm"`
	HeightMm int `json:"height_mm"`
}

// ParseSectionSize extracts a section size like "650x600", "650×600" or
// "650*600". Returns false when none is present.
func ParseSectionSize(text string) (SectionSize, bool) {
	m := sectionPattern.FindStringSubmatch(text)
	if m == nil {
		return SectionSize{}, false
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return SectionSize{}, false
	}
	h, err := strconv.Atoi(m[2])
	if err != nil {
		return SectionSize{}, false
	}
	return SectionSize{WidthMm: w, HeightMm: h}, true
}
