package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/codelens/internal/domain/analysis"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 8192
)

// Client is a Completer backed by the OpenAI chat completions API or any
// compatible endpoint.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Name() string { return "openai:" + c.model() }

func (c *Client) model() string {
	if c.Model == "" {
		return defaultModel
	}
	return c.Model
}

// Complete sends prompt as a single user message and returns the raw text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.model()
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil && isUnsupportedResponseFormatError(err) {
		req.ResponseFormat = nil
		resp, err = c.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrProviderFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps transport errors onto the domain taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, reqErr.Err)
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
}

func isUnsupportedResponseFormatError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "response_format") &&
		(strings.Contains(msg, "not supported") || strings.Contains(msg, "invalid parameter"))
}
