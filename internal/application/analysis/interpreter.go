package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
)

// ExtractJSON returns the text between the first '{' and the last '}' of raw.
// The span is greedy: prose braces around the object widen it, which then
// fails to decode and sends the request down the fallback path.
func ExtractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// wireResult mirrors AnalysisResult with pointers so absent fields can be told
// apart from zero values.
type wireResult struct {
	Issues         []domain.Issue         `json:"issues"`
	CorrectedCode  *string                `json:"correctedCode"`
	Summary        *domain.SeverityCounts `json:"summary"`
	CategoryCounts *domain.CategoryCounts `json:"categoryCounts"`
}

// Interpret turns raw provider output into a result. Present fields pass
// through untouched; absent ones get defaults. A wrapped ErrParseFailure is
// returned when no object can be recovered, and the caller decides on the
// fallback.
func Interpret(raw, code string) (*domain.AnalysisResult, error) {
	candidate, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in %d bytes of output", domain.ErrParseFailure, len(raw))
	}

	var w wireResult
	if err := json.Unmarshal([]byte(candidate), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	out := &domain.AnalysisResult{
		Issues:        w.Issues,
		CorrectedCode: code,
	}
	if out.Issues == nil {
		out.Issues = []domain.Issue{}
	}
	if w.CorrectedCode != nil && *w.CorrectedCode != "" {
		out.CorrectedCode = *w.CorrectedCode
	}
	if w.Summary != nil {
		out.Summary = *w.Summary
	}
	if w.CategoryCounts != nil {
		out.CategoryCounts = *w.CategoryCounts
	}
	return out, nil
}
