package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// parseSeries decodes a model reply that should be a JSON array of numbers.
// Markdown code fences around the array are tolerated. Replies longer than
// config.ExtractTailSize are cut to their tail.
func parseSeries(reply string) (heartrate.Series, error) {
	text := stripFences(reply)
	if text == "" {
		return nil, ErrInvalidExtraction
	}

	var raw []any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtraction, err)
	}

	series := make(heartrate.Series, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrInvalidExtraction
		}
		series = append(series, f)
	}

	if len(series) == 0 {
		return nil, ErrNoExtractedData
	}

	return heartrate.Tail(series, config.ExtractTailSize), nil
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
