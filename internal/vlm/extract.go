package vlm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedJSON  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence    = regexp.MustCompile("(?s)```\\w*\\s*(.*?)\\s*```")
	braceBlock  = regexp.MustCompile(`(?s)\{.*\}`)
	lineComment = regexp.MustCompile(`//[^\n]*`)
)

// splitJSONBlock finds the JSON payload in a model reply and returns it
// together with the remaining prose. Extraction is layered: a fenced
// ```json block first, any fenced block second, then the outermost brace
// span as a last resort. Returns an empty JSON string when nothing
// JSON-shaped is present.
func splitJSONBlock(text string) (jsonStr, remainder string) {
	for _, re := range []*regexp.Regexp{fencedJSON, anyFence} {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			candidate := text[loc[2]:loc[3]]
			if strings.HasPrefix(strings.TrimSpace(candidate), "{") {
				return cleanJSON(candidate), text[:loc[0]] + text[loc[1]:]
			}
		}
	}
	if loc := braceBlock.FindStringIndex(text); loc != nil {
		return cleanJSON(text[loc[0]:loc[1]]), text[:loc[0]] + text[loc[1]:]
	}
	return "", text
}

// cleanJSON strips BOMs and line comments that small models sprinkle into
// their JSON.
func cleanJSON(s string) string {
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = lineComment.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// decodeIntFields decodes a JSON object whose values are meant to be
// integers, tolerating float renderings and skipping non-numeric values.
// Invalid JSON yields an empty map; the prose report is still useful on
// its own.
func decodeIntFields(jsonStr string) map[string]int {
	fields := map[string]int{}
	if jsonStr == "" {
		return fields
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return fields
	}
	for k, v := range raw {
		if n, ok := v.(float64); ok {
			fields[k] = int(n)
		}
	}
	return fields
}
