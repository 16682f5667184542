package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/codelens/internal/application"
	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/domain/language"
)

// PromptBuilder renders the single prompt for one analysis request.
type PromptBuilder interface {
	Build(code, language string) string
}

// Source says which path produced a result.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Service implements the analyze and export use-cases. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	Completer domain.Completer // nil when no credential is configured
	Prompts   PromptBuilder
	Languages *language.Catalog
	Reports   domain.ReportStore // nil disables export
	Clock     application.Clock

	// Timeout bounds the single completion call. Zero means no extra bound.
	Timeout time.Duration
	// StrictLanguages rejects labels missing from the catalog.
	StrictLanguages bool
	// RecountAggregates rebuilds summary and categoryCounts from the model's
	// issues instead of trusting the model's own counts.
	RecountAggregates bool
}

// Outcome is an analysis result plus how it was obtained.
type Outcome struct {
	Result   *domain.AnalysisResult
	Language string
	Source   Source
	Provider string
	// Cause is the absorbed provider or parse failure behind a fallback result.
	Cause    error
	Duration time.Duration
}

// Analyze validates the input, makes exactly one completion call and interprets
// the output. Only ErrInvalidInput, ErrProviderNotConfigured and ErrUnauthorized
// reach the caller; every other failure degrades to the local fallback scan.
func (s *Service) Analyze(ctx context.Context, code, lang string) (*Outcome, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(lang) == "" {
		return nil, fmt.Errorf("%w: code and language are required", domain.ErrInvalidInput)
	}

	lang, known := strings.TrimSpace(lang), false
	if s.Languages != nil {
		lang, known = s.Languages.Canonical(lang)
	}
	if s.StrictLanguages && !known {
		return nil, fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidInput, lang)
	}

	if s.Completer == nil {
		return nil, domain.ErrProviderNotConfigured
	}

	start := s.now()
	out := &Outcome{Language: lang, Provider: s.Completer.Name()}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	raw, err := s.Completer.Complete(callCtx, s.Prompts.Build(code, lang))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		if !errors.Is(err, domain.ErrProviderFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
		}
		return s.fallback(out, code, start, err), nil
	}

	res, err := Interpret(raw, code)
	if err != nil {
		return s.fallback(out, code, start, err), nil
	}
	if s.RecountAggregates {
		res.Recount()
	}

	out.Result = res
	out.Source = SourceModel
	out.Duration = s.now().Sub(start)
	return out, nil
}

func (s *Service) fallback(out *Outcome, code string, start time.Time, cause error) *Outcome {
	log.Printf("analysis fallback provider=%s language=%s reason=%q", out.Provider, out.Language, cause.Error())
	out.Result = domain.Fallback(code, out.Language)
	out.Source = SourceFallback
	out.Cause = cause
	out.Duration = s.now().Sub(start)
	return out
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

//
// ==== EXPORT ====
//

// ExportRequest is a user-initiated report export.
type ExportRequest struct {
	Filename string
	Language string
	Result   *domain.AnalysisResult
}

// ExportedReport points at an uploaded report document.
type ExportedReport struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// reportDocument is what gets written to the report store.
type reportDocument struct {
	ID          string                 `json:"id"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Filename    string                 `json:"filename,omitempty"`
	Language    string                 `json:"language,omitempty"`
	Result      *domain.AnalysisResult `json:"result"`
}

// Export uploads a JSON report and returns a time-limited download link.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportedReport, error) {
	if s.Reports == nil {
		return nil, domain.ErrStorageNotConfigured
	}
	if req.Result == nil {
		return nil, fmt.Errorf("%w: result is required", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	id := uuid.New().String()
	doc := reportDocument{
		ID:          id,
		GeneratedAt: now,
		Filename:    req.Filename,
		Language:    req.Language,
		Result:      req.Result,
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", now.Format("2006/01/02"), id)
	url, expires, err := s.Reports.PutReport(ctx, key, body)
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	return &ExportedReport{ID: id, Key: key, URL: url, ExpiresAt: expires}, nil
}
