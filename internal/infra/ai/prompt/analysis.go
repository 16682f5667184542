package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/codelens/internal/domain/language"
)

// schema is the exact JSON shape requested from the model. summary and
// categoryCounts are keyed by fixed literals.
const schema = `{
  "issues": [
    {
      "id": "unique_id",
      "title": "Issue Title",
      "severity": "critical|high|medium|low",
      "category": "security|performance|quality|style",
      "line": 5,
      "description": "Detailed explanation of the issue",
      "suggestion": "Recommendation for fixing this issue",
      "recommendedFix": "Specific code snippet that fixes this issue",
      "canApplyFix": true
    }
  ],
  "correctedCode": "Complete corrected version of the entire code with all issues fixed",
  "summary": {"critical": 0, "high": 0, "medium": 0, "low": 0},
  "categoryCounts": {"security": 0, "performance": 0, "quality": 0, "style": 0}
}`

// Builder renders analysis prompts. The catalog only affects how the language
// is named in the prompt.
type Builder struct {
	Languages *language.Catalog
}

func NewBuilder(langs *language.Catalog) *Builder {
	return &Builder{Languages: langs}
}

// Build returns the single prompt sent to the completion endpoint.
func (b *Builder) Build(code, lang string) string {
	name := lang
	if b.Languages != nil {
		if l, ok := b.Languages.Lookup(lang); ok {
			name = l.Name
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an advanced code analysis assistant. Analyze the provided %s code and:\n\n", name)
	sb.WriteString(`1. Identify issues across these categories:
   - Security: vulnerabilities, injection risks, authentication and secrets handling
   - Performance: time complexity, memory usage, inefficient algorithms
   - Quality: logic errors, input validation, error handling
   - Style: documentation, naming conventions, code structure

2. Provide a completely corrected version of the code that fixes ALL identified issues.

For each issue provide the exact line number where it occurs, a severity
(critical/high/medium/low), a clear description, a suggestion for improvement and
a specific code fix for that issue.

Respond with a single JSON object in this format:
`)
	sb.WriteString(schema)
	sb.WriteString("\n\nCode to analyze:\n")
	sb.WriteString(NumberLines(code))
	sb.WriteString(`

Important:
- "correctedCode" must be the complete, working file with every fix applied, not a diff or an excerpt
- "line" refers to the numbers prefixed to the code above
- "summary" and "categoryCounts" must count the entries in "issues"
- Each recommendedFix should be a specific code snippet for that issue
- Return valid JSON only, no markdown and no commentary
`)
	return sb.String()
}

// NumberLines prefixes every line with its 1-based number, e.g. "1: foo".
func NumberLines(code string) string {
	lines := strings.Split(code, "\n")
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d: %s", i+1, l)
	}
	return sb.String()
}
