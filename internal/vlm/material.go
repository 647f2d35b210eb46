package vlm

import (
	"context"
	"encoding/json"
	"fmt"
)

// materialPrompt asks for the embossed mill mark on a bar close-up.
// Mill mark grammar: leading digit is the grade (3=HRB335, 4=HRB400,
// 5=HRB500), an E means seismic-rated, trailing digits are the nominal
// diameter in mm.
const materialPrompt = `You are a rebar quality inspector. Read the raised mill mark on the bar surface in the photo (for example 4E22).

Mill mark rules:
- The first digit is the grade: 3 = HRB335, 4 = HRB400, 5 = HRB500
- The letter E marks seismic-rated bars
- The trailing digits are the nominal diameter in mm
- Example: 4E22 = HRB400 seismic bar, 22 mm diameter
- Example: 5E25 = HRB500 seismic bar, 25 mm diameter
- Example: 422 = HRB400 non-seismic bar, 22 mm diameter

Answer strictly as JSON with no other text:
{"material_grade": "HRB400", "is_seismic": true, "diameter": 22, "raw_text": "4E22"}`

// MaterialResult is the decoded mill mark of a bar close-up photo.
type MaterialResult struct {
	Grade      string `json:"material_grade"`
	IsSeismic  bool   `json:"is_seismic"`
	DiameterMm int    `json:"diameter"`
	MillMark   string `json:"raw_text"`
	Raw        string `json:"raw_response"`
}

// VerifyMaterial reads the mill mark from a bar close-up photo.
func (c *Client) VerifyMaterial(ctx context.Context, imageData []byte) (*MaterialResult, error) {
	raw, err := c.complete(ctx, imageData, materialPrompt, 0)
	if err != nil {
		return nil, err
	}

	jsonStr, _ := splitJSONBlock(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON found in vlm reply")
	}

	var result MaterialResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("decode mill mark JSON: %w", err)
	}
	result.Raw = raw
	return &result, nil
}
