// Package gemini implements llm.Provider using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/inspira-ai/inspira/pkg/llm"
)

// DefaultModel is used when New is called with an empty model name.
const DefaultModel = "gemini-1.5-flash"

// contentGenerator is the subset of *genai.Models the provider calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider implements llm.Provider on top of the genai SDK.
type Provider struct {
	model  string
	models contentGenerator
}

// Option configures a Provider.
type Option func(*genai.ClientConfig)

// WithHTTPClient overrides the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(cc *genai.ClientConfig) { cc.HTTPClient = c }
}

// New creates a Gemini provider. Model defaults to DefaultModel if empty.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "gemini: creating client")
	}
	return &Provider{model: model, models: client.Models}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "gemini" }

// Model returns the model used for generation.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		return llm.Response{}, wrapError(err)
	}
	if resp == nil {
		return llm.Response{}, errors.New("gemini: nil response")
	}
	return toResponse(resp)
}

func buildConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Generation.Temperature),
		MaxOutputTokens: req.Generation.MaxOutputTokens,
	}
	for _, s := range req.Safety {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return cfg
}

// toResponse maps a reply onto llm.Response. A candidate without any parts
// (for example one stopped with FinishReason SAFETY) has no text to read and
// is reported as an error, which callers show as a generic failure.
func toResponse(resp *genai.GenerateContentResponse) (llm.Response, error) {
	if len(resp.Candidates) > 0 {
		c := resp.Candidates[0]
		if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
			reason := genai.FinishReasonUnspecified
			if c != nil {
				reason = c.FinishReason
			}
			return llm.Response{}, fmt.Errorf("gemini: candidate has no text parts (finish reason %s)", reason)
		}
		return llm.Candidates(candidateText(c)), nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return llm.Blocked(string(fb.BlockReason), fb.BlockReasonMessage), nil
	}
	return llm.Empty(), nil
}

func candidateText(c *genai.Candidate) string {
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// wrapError marks credential failures with llm.ErrUnauthenticated. The API
// message is kept so text-based classification still works.
func wrapError(err error) error {
	var code int
	var status string

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, status = apiErrPtr.Code, apiErrPtr.Status
	default:
		return errors.Wrap(err, "gemini API")
	}

	if isAuthFailure(code, status) {
		return fmt.Errorf("gemini API: %w: %v", llm.ErrUnauthenticated, err)
	}
	return errors.Wrap(err, "gemini API")
}

func isAuthFailure(code int, status string) bool {
	switch strings.ToUpper(status) {
	case "PERMISSION_DENIED", "UNAUTHENTICATED":
		return true
	}
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
