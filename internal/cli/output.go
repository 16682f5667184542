package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
)

// report is the machine-readable CLI output.
type report struct {
	Language string                 `json:"language" yaml:"language"`
	Source   string                 `json:"source" yaml:"source"`
	Provider string                 `json:"provider" yaml:"provider"`
	Result   *domain.AnalysisResult `json:"result" yaml:"result"`
}

func render(w io.Writer, format string, out *appanalysis.Outcome, category string) error {
	res := *out.Result
	res.Issues = out.Result.FilterByCategory(category)

	rep := report{
		Language: out.Language,
		Source:   string(out.Source),
		Provider: out.Provider,
		Result:   &res,
	}

	switch format {
	case "json":
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case "yaml":
		b, err := yaml.Marshal(rep)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(b))
	default:
		renderHuman(w, out, &res)
	}
	return nil
}

func renderHuman(w io.Writer, out *appanalysis.Outcome, res *domain.AnalysisResult) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintf(w, "codelens: %s (%s)\n", out.Language, out.Provider)
	if note := sourceNote(out); note != "" {
		yellow.Fprintf(w, "! %s\n", note)
	}
	fmt.Fprintln(w)

	s := res.Summary
	fmt.Fprintf(w, "Summary: %s  %s  %s  %s\n",
		severityColor(domain.SeverityCritical).Sprintf("%d critical", s.Critical),
		severityColor(domain.SeverityHigh).Sprintf("%d high", s.High),
		severityColor(domain.SeverityMedium).Sprintf("%d medium", s.Medium),
		severityColor(domain.SeverityLow).Sprintf("%d low", s.Low),
	)
	c := res.CategoryCounts
	fmt.Fprintf(w, "Categories: security=%d performance=%d quality=%d style=%d", c.Security, c.Performance, c.Quality, c.Style)
	if c.Lint > 0 {
		fmt.Fprintf(w, " lint=%d", c.Lint)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	if len(res.Issues) == 0 {
		green.Fprintln(w, "No issues found.")
	} else {
		yellow.Fprintln(w, "Issues:")
		for i, is := range res.Issues {
			fmt.Fprintf(w, "  %d. %s %s (line %d, %s)\n",
				i+1, severityColor(is.Severity).Sprintf("[%s]", strings.ToUpper(string(is.Severity))), is.Title, is.Line, is.Category)
			if is.Description != "" {
				fmt.Fprintf(w, "     %s\n", is.Description)
			}
			if is.Suggestion != "" {
				fmt.Fprintf(w, "     Suggestion: %s\n", is.Suggestion)
			}
			if is.RecommendedFix != "" {
				fmt.Fprintf(w, "     Fix: %s\n", color.GreenString(is.RecommendedFix))
			}
		}
	}
	fmt.Fprintln(w)

	green.Fprintln(w, "Corrected code:")
	fmt.Fprintln(w, res.CorrectedCode)
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case domain.SeverityHigh:
		return color.New(color.FgRed)
	case domain.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
