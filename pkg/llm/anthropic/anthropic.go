// Package anthropic implements llm.Provider using the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/inspira-ai/inspira/pkg/llm"
)

// DefaultModel is used when New is called with an empty model name.
const DefaultModel = "claude-3-5-haiku-latest"

// Provider implements llm.Provider on top of the Anthropic SDK.
// Safety settings have no Anthropic equivalent and are not sent.
type Provider struct {
	model  string
	client anthropic.Client
}

// Option configures the underlying SDK client.
type Option = option.RequestOption

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option { return option.WithBaseURL(u) }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option { return option.WithHTTPClient(c) }

// New creates a provider for the Anthropic API. The SDK's automatic retries
// are disabled; each request makes exactly one call.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &Provider{
		model:  model,
		client: anthropic.NewClient(reqOpts...),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "anthropic" }

// Model returns the model used for generation.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(req.Generation.MaxOutputTokens),
		Temperature: anthropic.Float(float64(req.Generation.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return llm.Response{}, wrapError(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return llm.Candidates(block.Text), nil
		}
	}
	if string(msg.StopReason) == "refusal" {
		return llm.Blocked("REFUSAL", "model declined to answer"), nil
	}
	return llm.Empty(), nil
}

func wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("anthropic API: %w: %v", llm.ErrUnauthenticated, err)
	}
	return errors.Wrap(err, "anthropic API")
}
