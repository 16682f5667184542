package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Severity enum
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities, critical first. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Category enum
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryQuality     Category = "quality"
	CategoryStyle       Category = "style"

	// CategoryLint is only emitted by the local fallback scan.
	CategoryLint Category = "lint/correctness"
)

// LineNumber is a 1-based source line. Models sometimes quote it or emit it
// as a float, so 5, "5" and 5.0 all decode.
type LineNumber int

func (l *LineNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		s = n.String()
	}
	n, err := parseLine(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*l = LineNumber(n)
	return nil
}

func parseLine(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("line %q is not a number", s)
	}
	return int(f), nil
}

// Issue is one reported defect.
type Issue struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Severity       Severity   `json:"severity" yaml:"severity"`
	Category       Category   `json:"category" yaml:"category"`
	Line           LineNumber `json:"line" yaml:"line"`
	Description    string     `json:"description" yaml:"description"`
	Suggestion     string     `json:"suggestion" yaml:"suggestion"`
	RecommendedFix string     `json:"recommendedFix" yaml:"recommendedFix"`
	CanApplyFix    bool       `json:"canApplyFix" yaml:"canApplyFix"`
}

type issueAlias Issue

// UnmarshalJSON accepts a numeric id and a quoted canApplyFix flag, both of
// which models emit in place of the documented string and bool.
func (i *Issue) UnmarshalJSON(b []byte) error {
	aux := struct {
		*issueAlias
		ID          json.RawMessage `json:"id"`
		CanApplyFix json.RawMessage `json:"canApplyFix"`
	}{issueAlias: (*issueAlias)(i)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	i.ID = id

	fix, err := decodeFlag(aux.CanApplyFix)
	if err != nil {
		return err
	}
	i.CanApplyFix = fix
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id %s is neither a string nor a number", raw)
	}
	return n.String(), nil
}

func decodeFlag(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, fmt.Errorf("canApplyFix %q is not a boolean", s)
		}
		return v, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("canApplyFix %s is not a boolean", raw)
	}
	return v, nil
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
}

// Total sums all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// CategoryCounts value object. Lint is only populated by the fallback scan.
type CategoryCounts struct {
	Security    int `json:"security" yaml:"security"`
	Performance int `json:"performance" yaml:"performance"`
	Quality     int `json:"quality" yaml:"quality"`
	Style       int `json:"style" yaml:"style"`
	Lint        int `json:"lint,omitempty" yaml:"lint,omitempty"`
}

// Total sums all categories.
func (c CategoryCounts) Total() int {
	return c.Security + c.Performance + c.Quality + c.Style + c.Lint
}

// AnalysisResult is the report handed back to the caller.
type AnalysisResult struct {
	Issues         []Issue        `json:"issues" yaml:"issues"`
	CorrectedCode  string         `json:"correctedCode" yaml:"correctedCode"`
	Summary        SeverityCounts `json:"summary" yaml:"summary"`
	CategoryCounts CategoryCounts `json:"categoryCounts" yaml:"categoryCounts"`
}

// Recount derives Summary and CategoryCounts from Issues.
func (r *AnalysisResult) Recount() {
	var sev SeverityCounts
	var cat CategoryCounts
	for _, is := range r.Issues {
		switch is.Severity {
		case SeverityCritical:
			sev.Critical++
		case SeverityHigh:
			sev.High++
		case SeverityMedium:
			sev.Medium++
		case SeverityLow:
			sev.Low++
		}
		switch is.Category {
		case CategorySecurity:
			cat.Security++
		case CategoryPerformance:
			cat.Performance++
		case CategoryQuality:
			cat.Quality++
		case CategoryStyle:
			cat.Style++
		case CategoryLint:
			cat.Lint++
		}
	}
	r.Summary = sev
	r.CategoryCounts = cat
}

// ValidCategoryFilter reports whether FilterByCategory understands category.
func ValidCategoryFilter(category string) bool {
	switch Category(strings.ToLower(strings.TrimSpace(category))) {
	case "", "all", "lint", CategorySecurity, CategoryPerformance, CategoryQuality, CategoryStyle, CategoryLint:
		return true
	}
	return false
}

// FilterByCategory returns the issues of one category in discovery order.
// An empty category or "all" returns every issue.
func (r *AnalysisResult) FilterByCategory(category string) []Issue {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return r.Issues
	}
	out := make([]Issue, 0, len(r.Issues))
	for _, is := range r.Issues {
		if string(is.Category) == category || (category == "lint" && is.Category == CategoryLint) {
			out = append(out, is)
		}
	}
	return out
}
