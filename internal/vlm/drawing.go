package vlm

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Component is the member type depicted on a drawing crop.
type Component string

const (
	ComponentColumn Component = "column"
	ComponentBeam   Component = "beam"
	ComponentSlab   Component = "slab"
	ComponentWall   Component = "wall"
)

// ParseComponent maps a wire-format component name to a Component,
// defaulting to column for unknown input (the most common drawing type).
func ParseComponent(s string) Component {
	switch Component(s) {
	case ComponentBeam, ComponentSlab, ComponentWall:
		return Component(s)
	default:
		return ComponentColumn
	}
}

// DrawingResult is the dual-track parse of a drawing crop: a prose
// reasoning report for the inspector plus the structured fields the UI
// auto-fills.
type DrawingResult struct {
	Component Component      `json:"component_type"`
	Report    string         `json:"report"`
	Extracted map[string]int `json:"extracted_data"`
	Raw       string         `json:"raw_response"`
}

// ParseDrawing asks the model to read a drawing crop for the given
// component type. The model is prompted for a two-step answer (reasoning
// report, then a JSON block); both parts are returned. A reply with no
// recoverable JSON still yields the report with empty extracted data.
func (c *Client) ParseDrawing(ctx context.Context, imageData []byte, component Component) (*DrawingResult, error) {
	raw, err := c.complete(ctx, imageData, drawingPrompt(component), 1024)
	if err != nil {
		return nil, err
	}

	jsonStr, remainder := splitJSONBlock(raw)
	extracted := decodeIntFields(jsonStr)

	report := strings.TrimSpace(remainder)
	if report == "" {
		report = summarizeExtracted(extracted)
	}

	return &DrawingResult{
		Component: component,
		Report:    report,
		Extracted: extracted,
		Raw:       raw,
	}, nil
}

// drawingPrompt builds the per-component prompt. It stays short and keeps
// the proven two-step shape: long prompts destabilize small vision models.
func drawingPrompt(component Component) string {
	var task, example, jsonBlock string
	switch component {
	case ComponentBeam:
		task = "1) top longitudinal bars: size and count (sum split rows like 2/4). " +
			"2) bottom longitudinal bars: size and count. " +
			"3) side bars (G or N prefix): count, or 0 if absent. " +
			"4) stirrups: diameter, dense-zone and normal-zone spacing, leg count."
		example = `Example: top bars 2C25 -> top_bars_total=2; stirrup A8@100/200(2) -> stirrup_dense=100, stirrup_normal=200, stirrup_legs=2`
		jsonBlock = `{"top_bars_total": 0, "bottom_bars_total": 0, "waist_bars": 0, "stirrup_dense": 0, "stirrup_normal": 0, "stirrup_legs": 0}`
	case ComponentSlab:
		task = "1) main reinforcement size. 2) the spacing value (number after @)."
		example = `Example: C10@150 -> design_spacing=150`
		jsonBlock = `{"design_spacing": 0}`
	case ComponentWall:
		task = "1) horizontal distribution bars: size and spacing. " +
			"2) vertical distribution bars: size and spacing. " +
			"If only one spacing is labeled, horizontal and vertical are the same."
		example = `Example: A10@200 -> design_spacing=200`
		jsonBlock = `{"design_spacing": 0}`
	default: // column
		task = "1) section size (sum split labels like 200+200). " +
			"2) corner bars: size and count; read the corner bar label independently, never confuse it with the middle bars. " +
			"3) middle bars: size and count. " +
			"4) total longitudinal bars (add the corner and middle counts only). " +
			"5) stirrups: diameter, dense-zone and normal-zone spacing (A8@100/200 means dense=100, normal=200)."
		example = `Example: corner 4C25, middle 8C20, 12 bars total -> corner_bars=4, middle_bars=8, total_bars=12`
		jsonBlock = `{"corner_bars": 0, "middle_bars": 0, "total_bars": 0, "stirrup_dense": 0, "stirrup_normal": 0}`
	}

	return fmt.Sprintf(`This is a CAD reinforcement drawing of a %s section. Look carefully and complete two steps.

Step 1 - analysis report:
Read each label in the drawing and state your reasoning. Only report labels you can see; use 0 for anything not visible, never guess.
%s
%s

Step 2 - fill in the JSON:
Copy the numbers from your step 1 analysis into the JSON. The JSON must contain exactly the numbers you wrote in the report, as plain integers without units.
`+"```json\n%s\n```", component, task, example, jsonBlock)
}

// summarizeExtracted renders a fallback report when the model answered
// with JSON only.
func summarizeExtracted(extracted map[string]int) string {
	if len(extracted) == 0 {
		return "The model produced no analysis report; check whether the fields below were auto-filled."
	}
	keys := make([]string, 0, len(extracted))
	for k := range extracted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("**Auto-extracted values (no analysis report was produced):**\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- **%s**: %d", k, extracted[k])
	}
	return b.String()
}
