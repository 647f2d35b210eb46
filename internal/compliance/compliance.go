// Package compliance compares a detected bar count against the design
// total. The outcome is deliberately three-way: a shortfall is a structural
// failure, while surplus bars are a documentation concern that must stay
// distinguishable downstream.
package compliance

import "fmt"

// Verdict is the outcome of a count comparison.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
	VerdictWarning Verdict = "WARNING"
)

// Result is the verdict with its human-readable explanation.
type Result struct {
	Verdict Verdict `json:"status"`
	Message string  `json:"message"`
}

// Evaluate compares the detected count against the design total. The
// comparison is exact; there is no count tolerance. A non-positive design
// total means no drawing data was supplied, which the caller is expected to
// guard before evaluating.
func Evaluate(detectedCount, designTotal int) (Result, error) {
	if designTotal <= 0 {
		return Result{}, fmt.Errorf("design total must be positive, got %d", designTotal)
	}

	diff := detectedCount - designTotal
	switch {
	case diff == 0:
		return Result{
			Verdict: VerdictPass,
			Message: fmt.Sprintf("detected count (%d) matches design total (%d)", detectedCount, designTotal),
		}, nil
	case diff > 0:
		return Result{
			Verdict: VerdictWarning,
			Message: fmt.Sprintf("detected count (%d) exceeds design total (%d) by %d bars", detectedCount, designTotal, diff),
		}, nil
	default:
		return Result{
			Verdict: VerdictFail,
			Message: fmt.Sprintf("detected count (%d) is %d bars short of design total (%d)", detectedCount, -diff, designTotal),
		}, nil
	}
}
