package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"

	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
)

const defaultModel = "gemini-1.5-flash"

// Client is a Completer backed by the Gemini API. Complete makes exactly one
// remote call and never retries.
type Client struct {
	cli   *genai.Client
	model string
}

// NewClient builds a Gemini client. baseURL overrides the API endpoint and is
// mostly useful for tests and proxies.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if model == "" {
		model = defaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Client{cli: cli, model: model}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

// Complete asks for application/json output and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", domain.ErrProviderFailure)
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// classify maps Gemini errors onto the domain taxonomy. The Gemini API
// reports a bad key as 400 with "API key not valid", so the message is
// checked as well as the status.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if isAuthFailure(apiErr.Code, apiErr.Message) {
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, apiErr.Code, apiErr.Message)
	}
	if strings.Contains(err.Error(), "API key not valid") {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
}

func isAuthFailure(code int, msg string) bool {
	return code == http.StatusUnauthorized ||
		code == http.StatusForbidden ||
		strings.Contains(msg, "API key not valid")
}
