package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/domain/language"
	"github.com/bryanwahyu/codelens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/codelens/internal/infra/httpserver"
)

const modelOutput = `{
  "issues": [
    {"id": "sec_1", "title": "eval of input", "severity": "critical", "category": "security",
     "line": 2, "description": "d", "suggestion": "s", "recommendedFix": "f", "canApplyFix": true},
    {"id": "sty_1", "title": "naming", "severity": "low", "category": "style",
     "line": 1, "description": "d", "suggestion": "s", "recommendedFix": "f", "canApplyFix": true}
  ],
  "correctedCode": "safe()",
  "summary": {"critical": 1, "high": 0, "medium": 0, "low": 1},
  "categoryCounts": {"security": 1, "performance": 0, "quality": 0, "style": 1}
}`

type stubCompleter struct {
	out   string
	err   error
	calls int
}

func (s *stubCompleter) Name() string { return "stub:model" }

func (s *stubCompleter) Complete(ctx context.Context, p string) (string, error) {
	s.calls++
	return s.out, s.err
}

type memStore struct{ keys []string }

func (m *memStore) PutReport(ctx context.Context, key string, body []byte) (string, time.Time, error) {
	m.keys = append(m.keys, key)
	return "https://minio.local/" + key + "?X-Amz-Signature=x", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil
}

func newHandler(c domain.Completer, store domain.ReportStore, opt httpserver.Options) http.Handler {
	langs := language.Default()
	svc := &appanalysis.Service{
		Completer: c,
		Prompts:   prompt.NewBuilder(langs),
		Languages: langs,
	}
	if store != nil {
		svc.Reports = store
	}
	if opt.ProviderLabel == "" {
		opt.ProviderLabel = "Gemini"
	}
	return httpserver.NewRouter(svc, langs, opt)
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAnalyze_MissingFields(t *testing.T) {
	sc := &stubCompleter{out: modelOutput}
	h := newHandler(sc, nil, httpserver.Options{})

	for _, body := range []string{`{}`, `{"code":"x"}`, `{"language":"go"}`, `{"code":"","language":"go"}`} {
		rec := do(t, h, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Code and language are required", errorBody(t, rec))
	}

	rec := do(t, h, http.MethodPost, "/api/analyze", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, sc.calls)
}

func TestAnalyze_ModelResult(t *testing.T) {
	h := newHandler(&stubCompleter{out: modelOutput}, nil, httpserver.Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"code":"eval(x)","language":"Python"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "model", rec.Header().Get(httpserver.SourceHeader))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, modelOutput, rec.Body.String())
}

func TestAnalyze_CategoryFilterKeepsAggregates(t *testing.T) {
	h := newHandler(&stubCompleter{out: modelOutput}, nil, httpserver.Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze?category=style", `{"code":"x","language":"go"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "sty_1", res.Issues[0].ID)
	assert.Equal(t, 1, res.Summary.Critical)
	assert.Equal(t, 1, res.CategoryCounts.Security)
}

func TestAnalyze_UnknownCategory(t *testing.T) {
	sc := &stubCompleter{out: modelOutput}
	h := newHandler(sc, nil, httpserver.Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze?category=bogus", `{"code":"x","language":"go"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `unknown category "bogus"`, errorBody(t, rec))
	assert.Zero(t, sc.calls)

	rec = do(t, h, http.MethodPost, "/api/analyze?category=Lint", `{"code":"x","language":"go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Issues)
	assert.NotNil(t, res.Issues)
}

func TestAnalyze_FallbackOnProviderFailure(t *testing.T) {
	h := newHandler(&stubCompleter{err: errors.New("503 overloaded")}, nil, httpserver.Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"code":"var a = 1;","language":"javascript"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get(httpserver.SourceHeader))

	var res domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, domain.Fallback("var a = 1;", "javascript"), &res)
}

func TestAnalyze_Unauthorized(t *testing.T) {
	sc := &stubCompleter{err: fmt.Errorf("%w: API key not valid", domain.ErrUnauthorized)}
	rec := do(t, newHandler(sc, nil, httpserver.Options{}), http.MethodPost, "/api/analyze", `{"code":"x","language":"go"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid API key. Please check your Gemini API key.", errorBody(t, rec))
}

func TestAnalyze_NotConfigured(t *testing.T) {
	rec := do(t, newHandler(nil, nil, httpserver.Options{}), http.MethodPost, "/api/analyze", `{"code":"x","language":"go"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Gemini API key not configured", errorBody(t, rec))
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	h := newHandler(&stubCompleter{out: modelOutput}, nil, httpserver.Options{MaxBodyBytes: 64})
	body := fmt.Sprintf(`{"code":%q,"language":"go"}`, strings.Repeat("x", 200))

	rec := do(t, h, http.MethodPost, "/api/analyze", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAPIKeyRequiredWhenConfigured(t *testing.T) {
	h := newHandler(&stubCompleter{out: modelOutput}, nil, httpserver.Options{APIKeys: []string{"secret"}})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"code":"x","language":"go"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/analyze", `{"code":"x","language":"go"}`, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLanguagesAndDetect(t *testing.T) {
	h := newHandler(nil, nil, httpserver.Options{})

	rec := do(t, h, http.MethodGet, "/api/languages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var langs []language.Language
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &langs))
	assert.Len(t, langs, 27)

	rec = do(t, h, http.MethodGet, "/api/languages/detect?filename=main.rs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var det struct {
		Language language.Language `json:"language"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &det))
	assert.Equal(t, "rust", det.Language.ID)

	rec = do(t, h, http.MethodGet, "/api/languages/detect?filename=../etc/passwd", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExamples(t *testing.T) {
	h := newHandler(nil, nil, httpserver.Options{})

	rec := do(t, h, http.MethodGet, "/api/examples/python", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ex map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ex))
	assert.Equal(t, "python", ex["language"])
	assert.Equal(t, "example.py", ex["filename"])
	assert.NotEmpty(t, ex["code"])

	rec = do(t, h, http.MethodGet, "/api/examples/cobol", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports(t *testing.T) {
	body := `{"filename":"a.js","language":"javascript","result":` + modelOutput + `}`

	rec := do(t, newHandler(nil, nil, httpserver.Options{}), http.MethodPost, "/api/reports", body)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	store := &memStore{}
	h := newHandler(nil, store, httpserver.Options{})

	rec = do(t, h, http.MethodPost, "/api/reports", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rep appanalysis.ExportedReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Len(t, store.keys, 1)
	assert.Equal(t, store.keys[0], rep.Key)
	assert.Contains(t, rep.URL, "X-Amz-Signature")

	rec = do(t, h, http.MethodPost, "/api/reports", `{"filename":"a.js"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/reports", `{"filename":"../a.js","result":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProbes(t *testing.T) {
	h := newHandler(nil, nil, httpserver.Options{})
	for _, p := range []string{"/health", "/ready", "/live", "/metrics"} {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, p, "").Code, p)
	}
}
