// Package bootstrap wires config into the analysis service and HTTP server.
// Both cmd/api and `codelens serve` go through here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bryanwahyu/codelens/internal/application"
	appanalysis "github.com/bryanwahyu/codelens/internal/application/analysis"
	"github.com/bryanwahyu/codelens/internal/config"
	"github.com/bryanwahyu/codelens/internal/domain/language"
	"github.com/bryanwahyu/codelens/internal/infra/ai"
	"github.com/bryanwahyu/codelens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/codelens/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/codelens/internal/infra/storage"
	"github.com/bryanwahyu/codelens/internal/middleware"
)

type App struct {
	Config    *config.Config
	Service   *appanalysis.Service
	Languages *language.Catalog
	Store     *minioStore.Store // nil when export is not configured
}

// ProviderLabel is the human name used in credential errors.
func ProviderLabel(name string) string {
	switch ai.Provider(name) {
	case ai.ProviderOpenAI:
		return "OpenAI"
	case ai.ProviderGemini:
		return "Gemini"
	default:
		return name
	}
}

// Build creates the analysis service. A missing API key is not an error here:
// the service answers "not configured" per request instead.
func Build(ctx context.Context, cfg *config.Config, withStorage bool) (*App, error) {
	langs := language.Default()

	completer, err := ai.NewCompleter(ctx, ai.Settings{
		Provider: ai.Provider(cfg.Provider.Name),
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
		BaseURL:  cfg.Provider.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("completion provider: %w", err)
	}
	if completer == nil {
		log.Printf("provider=%s api key not configured, analyze requests will fail", cfg.Provider.Name)
	}

	app := &App{
		Config:    cfg,
		Languages: langs,
		Service: &appanalysis.Service{
			Prompts:           prompt.NewBuilder(langs),
			Languages:         langs,
			Clock:             application.SystemClock{},
			Timeout:           cfg.Provider.Timeout,
			StrictLanguages:   cfg.Analysis.StrictLanguages,
			RecountAggregates: cfg.Analysis.RecountAggregates,
		},
	}
	// avoid a typed-nil interface
	if completer != nil {
		app.Service.Completer = completer
	}

	if withStorage && cfg.StorageEnabled() {
		store, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:      cfg.Minio.Endpoint,
			Region:        cfg.Minio.Region,
			Bucket:        cfg.Minio.BucketName,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			UseSSL:        cfg.Minio.UseSSL,
			PresignExpiry: cfg.Minio.PresignExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		app.Store = store
		app.Service.Reports = store
	}
	return app, nil
}

// Handler builds the HTTP handler plus the rate limiter that needs sweeping.
func (a *App) Handler() (http.Handler, *middleware.RateLimiter) {
	cfg := a.Config
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.RefillRate)

	checkers := map[string]middleware.HealthChecker{
		"provider": middleware.ProviderChecker{
			Configured: a.Service.Completer != nil,
			Name:       cfg.Provider.Name,
		},
	}
	if a.Store != nil {
		checkers["storage"] = middleware.StorageChecker{Store: a.Store}
	}

	h := httpserver.NewRouter(a.Service, a.Languages, httpserver.Options{
		APIKeys:       cfg.Server.APIKeys,
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RateLimiter:   limiter,
		Checkers:      checkers,
		ProviderLabel: ProviderLabel(cfg.Provider.Name),
	})
	return h, limiter
}

// responseHeadroom is the write budget left after the provider call for the
// fallback scan and encoding the response.
const responseHeadroom = 15 * time.Second

func (a *App) newServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.Config.Provider.Timeout + responseHeadroom,
		IdleTimeout:  60 * time.Second,
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	handler, limiter := a.Handler()

	done := make(chan struct{})
	defer close(done)
	go limiter.Run(done, 5*time.Minute)

	srv := a.newServer(handler)
	addr := srv.Addr

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s provider=%s model=%s", addr, a.Config.Provider.Name, a.Config.Provider.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
