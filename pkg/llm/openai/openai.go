// Package openai implements llm.Provider using the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/inspira-ai/inspira/pkg/llm"
)

// DefaultModel is used when New is called with an empty model name.
const DefaultModel = openai.GPT4oMini

// Provider implements llm.Provider using the OpenAI Chat Completions API.
// Safety settings have no OpenAI equivalent and are not sent.
type Provider struct {
	model  string
	client *openai.Client
}

// New creates a provider for the OpenAI API.
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	return NewWithConfig(openai.DefaultConfig(apiKey), model), nil
}

// NewWithConfig creates a provider from a full client config (base URL,
// Azure, custom HTTP client).
func NewWithConfig(cfg openai.ClientConfig, model string) *Provider {
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "openai" }

// Model returns the model used for generation.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
		MaxTokens:   int(req.Generation.MaxOutputTokens),
		Temperature: req.Generation.Temperature,
	})
	if err != nil {
		return llm.Response{}, wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return llm.Empty(), nil
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter && choice.Message.Content == "" {
		return llm.Blocked("CONTENT_FILTER", "completion withheld by content filter"), nil
	}
	return llm.Candidates(choice.Message.Content), nil
}

func wrapError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("openai API: %w: %v", llm.ErrUnauthenticated, err)
	}
	return errors.Wrap(err, "openai API")
}
