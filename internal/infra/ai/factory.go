package ai

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
	"github.com/bryanwahyu/codelens/internal/infra/ai/gemini"
	"github.com/bryanwahyu/codelens/internal/infra/ai/openai"
)

// Provider represents the completion provider type
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Settings holds what a provider needs to build a client.
type Settings struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// NewCompleter builds the completer for s. It returns (nil, nil) when no API
// key is configured; callers treat that as "provider not configured".
func NewCompleter(ctx context.Context, s Settings) (domain.Completer, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, nil
	}
	switch Provider(strings.ToLower(string(s.Provider))) {
	case ProviderGemini, "":
		c, err := gemini.NewClient(ctx, s.APIKey, s.Model, s.BaseURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		return openai.NewClient(s.APIKey, s.Model, s.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", s.Provider)
	}
}
