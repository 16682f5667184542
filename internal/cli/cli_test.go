package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	"github.com/bryanwahyu/codelens/internal/bootstrap"
	"github.com/bryanwahyu/codelens/internal/config"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/domain/language"
	"github.com/bryanwahyu/codelens/internal/infra/ai/prompt"
)

const cannedOutput = `{"issues":[
 {"id":"sec_1","title":"Hardcoded secret","severity":"critical","category":"security","line":1,
  "description":"d","suggestion":"s","recommendedFix":"f","canApplyFix":true},
 {"id":"sty_1","title":"Naming","severity":"low","category":"style","line":2,
  "description":"d","suggestion":"s","recommendedFix":"f","canApplyFix":true}],
 "correctedCode":"fixed := true",
 "summary":{"critical":1,"high":0,"medium":0,"low":1},
 "categoryCounts":{"security":1,"performance":0,"quality":0,"style":1}}`

type cannedCompleter struct {
	out     string
	err     error
	prompts []string
}

func (c *cannedCompleter) Name() string { return "canned:test" }

func (c *cannedCompleter) Complete(ctx context.Context, p string) (string, error) {
	c.prompts = append(c.prompts, p)
	return c.out, c.err
}

func withCompleter(t *testing.T, c domain.Completer) {
	t.Helper()
	color.NoColor = true
	prev := buildApp
	buildApp = func(ctx context.Context, cfg *config.Config, withStorage bool) (*bootstrap.App, error) {
		langs := language.Default()
		return &bootstrap.App{
			Config:    cfg,
			Languages: langs,
			Service: &appanalysis.Service{
				Completer: c,
				Prompts:   prompt.NewBuilder(langs),
				Languages: langs,
			},
		}, nil
	}
	t.Cleanup(func() { buildApp = prev })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestAnalyze_JSONDetectsLanguage(t *testing.T) {
	cc := &cannedCompleter{out: cannedOutput}
	withCompleter(t, cc)

	out, err := run(t, "analyze", writeSource(t, "main.go", "secret := \"x\"\nBadName := 1"), "-o", "json")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "go", rep.Language)
	assert.Equal(t, "model", rep.Source)
	assert.Len(t, rep.Result.Issues, 2)
	require.Len(t, cc.prompts, 1)
	assert.Contains(t, cc.prompts[0], "Go code")
}

func TestAnalyze_YAMLWithCategory(t *testing.T) {
	withCompleter(t, &cannedCompleter{out: cannedOutput})

	out, err := run(t, "analyze", writeSource(t, "a.py", "x"), "-o", "yaml", "--category", "security")
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Result.Issues, 1)
	assert.Equal(t, "sec_1", rep.Result.Issues[0].ID)
	assert.Equal(t, 1, rep.Result.Summary.Low, "aggregates are not filtered")
}

func TestAnalyze_HumanFallbackAndWriteFixed(t *testing.T) {
	withCompleter(t, &cannedCompleter{out: "no json here"})
	fixed := filepath.Join(t.TempDir(), "fixed.js")

	out, err := run(t, "analyze", writeSource(t, "app.js", "var a = 1;"), "--write-fixed", fixed)
	require.NoError(t, err)

	assert.Contains(t, out, "local fallback scan")
	assert.Contains(t, out, "[MEDIUM] Use of 'var' keyword")
	assert.Contains(t, out, "lint=2")

	b, err := os.ReadFile(fixed)
	require.NoError(t, err)
	assert.Equal(t, domain.Fallback("var a = 1;", "javascript").CorrectedCode, string(b))
}

func TestAnalyze_Errors(t *testing.T) {
	withCompleter(t, &cannedCompleter{err: domain.ErrUnauthorized})

	_, err := run(t, "analyze", writeSource(t, "a.go", "x"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = run(t, "analyze", filepath.Join(t.TempDir(), "nope.go"))
	assert.Error(t, err)

	_, err = run(t, "analyze", writeSource(t, "a.go", "x"), "-o", "xml")
	assert.Error(t, err)
}

func TestAnalyze_UnknownCategory(t *testing.T) {
	cc := &cannedCompleter{out: cannedOutput}
	withCompleter(t, cc)

	_, err := run(t, "analyze", writeSource(t, "a.go", "x"), "--category", "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"bogus"`)
	assert.Empty(t, cc.prompts, "rejected before the provider is called")
}

func TestAnalyze_NotConfigured(t *testing.T) {
	withCompleter(t, nil)
	_, err := run(t, "analyze", writeSource(t, "a.go", "x"))
	assert.True(t, errors.Is(err, domain.ErrProviderNotConfigured))
}

func TestLanguagesCmd(t *testing.T) {
	out, err := run(t, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "typescript")
	assert.Contains(t, out, "ts, tsx")
}

func TestExampleCmd(t *testing.T) {
	out, err := run(t, "example", "java")
	require.NoError(t, err)
	assert.Contains(t, out, "class")

	_, err = run(t, "example", "cobol")
	assert.Error(t, err)
}
