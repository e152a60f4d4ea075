// pkg/intent/parse.go
package intent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|sql)?\\s*(.*?)\\s*```")

// Parse decodes a model reply into a Document. The model is instructed to
// return bare JSON but in practice wraps it in markdown fences or prose, so
// the fallback chain is: direct unmarshal, fenced block, first {...} slice.
func Parse(raw string) (*Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty reply")
	}

	candidates := []string{raw}
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if sliced := braceSlice(raw); sliced != "" {
		candidates = append(candidates, sliced)
	}

	var lastErr error
	for _, candidate := range candidates {
		doc, err := decode(candidate)
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no parseable document in reply: %w", lastErr)
}

func decode(text string) (*Document, error) {
	if err := Validate([]byte(text)); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// braceSlice returns the outermost {...} span, for replies that lead or trail
// with prose.
func braceSlice(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
