package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/domain/language"
	"github.com/bryanwahyu/codelens/internal/middleware"
)

// SourceHeader tells the client whether the model or the local fallback answered.
const SourceHeader = "X-Analysis-Source"

// Options configures the HTTP surface. Zero values disable the optional parts.
type Options struct {
	APIKeys      []string
	CORSOrigins  []string
	MaxBodyBytes int64
	RateLimiter  *middleware.RateLimiter
	Checkers     map[string]middleware.HealthChecker
	// ProviderLabel is used in user-facing credential errors, e.g. "Gemini".
	ProviderLabel string
}

type Router struct {
	svc   *appanalysis.Service
	langs *language.Catalog
	label string
}

func NewRouter(svc *appanalysis.Service, langs *language.Catalog, opt Options) http.Handler {
	if langs == nil {
		langs = language.Default()
	}
	label := opt.ProviderLabel
	if label == "" {
		label = "provider"
	}
	r := &Router{svc: svc, langs: langs, label: label}

	origins := opt.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", middleware.RequestIDHeader},
		ExposedHeaders: []string{SourceHeader, middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opt.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(middleware.KeysFromList(opt.APIKeys)))
		if opt.RateLimiter != nil {
			rt.Use(opt.RateLimiter.Middleware)
		}
		if opt.MaxBodyBytes > 0 {
			rt.Use(chimw.RequestSize(opt.MaxBodyBytes))
		}

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/languages", r.wrap(r.handleLanguages))
		rt.Get("/languages/detect", r.wrap(r.handleDetect))
		rt.Get("/examples/{language}", r.wrap(r.handleExample))
		rt.Post("/reports", r.wrap(r.handleReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errNotFound is returned by handlers for unknown resources.
var errNotFound = errors.New("not found")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUnauthorized):
			middleware.IncrementUnauthorized()
			writeError(w, http.StatusUnauthorized, "Invalid API key. Please check your "+r.label+" API key.")
		case errors.Is(err, domain.ErrProviderNotConfigured):
			writeError(w, http.StatusInternalServerError, r.label+" API key not configured")
		case errors.Is(err, domain.ErrStorageNotConfigured):
			writeError(w, http.StatusNotImplemented, "report export is not configured")
		default:
			log.Printf("request_id=%s path=%s error=%q", middleware.GetRequestID(req.Context()), req.URL.Path, err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// POST /api/analyze?category=
// Body: {"code": "...", "language": "javascript"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body analyzeRequest
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.Code == "" || body.Language == "" {
		return invalid("Code and language are required")
	}
	category := req.URL.Query().Get("category")
	if !domain.ValidCategoryFilter(category) {
		return invalid("unknown category " + strconv.Quote(category))
	}

	out, err := r.svc.Analyze(req.Context(), body.Code, body.Language)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	if out.Source == appanalysis.SourceFallback {
		middleware.IncrementFallbacks()
		switch {
		case errors.Is(out.Cause, domain.ErrParseFailure):
			middleware.IncrementParseFailures()
		case errors.Is(out.Cause, domain.ErrProviderFailure):
			middleware.IncrementProviderFailures()
		}
	}
	log.Printf("request_id=%s analysis language=%s source=%s provider=%s issues=%d duration=%s",
		middleware.GetRequestID(req.Context()), out.Language, out.Source, out.Provider, len(out.Result.Issues), out.Duration)

	res := *out.Result
	if category != "" {
		res.Issues = out.Result.FilterByCategory(category)
	}

	w.Header().Set(SourceHeader, string(out.Source))
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/languages
func (r *Router) handleLanguages(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.langs.All())
}

// GET /api/languages/detect?filename=main.go
func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) error {
	name := middleware.SanitizeString(req.URL.Query().Get("filename"))
	if err := middleware.ValidateFilename(name); err != nil {
		return invalid(err.Error())
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"language": r.langs.DetectFromFilename(name),
	})
}

// GET /api/examples/{language}
func (r *Router) handleExample(w http.ResponseWriter, req *http.Request) error {
	l, code, ok := r.langs.Example(chi.URLParam(req, "language"))
	if !ok {
		return errNotFound
	}
	return writeJSON(w, http.StatusOK, map[string]string{
		"language": l.ID,
		"filename": r.langs.ExampleFilename(l.ID),
		"code":     code,
	})
}

type reportRequest struct {
	Filename string                 `json:"filename"`
	Language string                 `json:"language"`
	Result   *domain.AnalysisResult `json:"result"`
}

// POST /api/reports
// Body: {"filename": "main.go", "language": "go", "result": {...}}
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	var body reportRequest
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.Filename != "" {
		body.Filename = middleware.SanitizeString(body.Filename)
		if err := middleware.ValidateFilename(body.Filename); err != nil {
			return invalid(err.Error())
		}
	}
	if body.Result == nil {
		return invalid("result is required")
	}

	rep, err := r.svc.Export(req.Context(), appanalysis.ExportRequest{
		Filename: body.Filename,
		Language: strings.TrimSpace(body.Language),
		Result:   body.Result,
	})
	if err != nil {
		return err
	}
	middleware.IncrementReports()
	return writeJSON(w, http.StatusCreated, rep)
}

func decodeJSON(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return invalid("invalid JSON body")
	}
	return nil
}

type invalidError string

func (e invalidError) Error() string { return string(e) }

func (e invalidError) Unwrap() error { return domain.ErrInvalidInput }

func invalid(msg string) error { return invalidError(msg) }

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}
