// Package quote turns a topic into a displayable one-sentence quote.
//
// The Handler builds a prompt, calls an llm.Provider once with fixed generation
// and safety settings, and converts every outcome, including provider errors,
// into a string that can be shown to the user as-is.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inspira-ai/inspira/pkg/llm"
)

// Attribution is appended to every generated quote.
const Attribution = "InspiraAI"

// Fixed user-facing messages.
const (
	MsgEmptyTopic  = "Please enter a topic to get a quote."
	MsgBlocked     = "Sorry, your request was blocked. Please try a different topic."
	MsgInvalidKey  = "Error: Your Google API key seems invalid..."
	MsgCommFailure = "Sorry, there was an error communicating with the AI. Please try again."
)

// Outcome classifies how a request ended.
type Outcome string

const (
	OutcomeQuote        Outcome = "quote"
	OutcomeInputMissing Outcome = "input_missing"
	OutcomeBlocked      Outcome = "blocked"
	OutcomeEmpty        Outcome = "empty"
	OutcomeAuthFailure  Outcome = "auth_failure"
	OutcomeFailure      Outcome = "failure"
)

// Result is a handled request. Text is always displayable.
type Result struct {
	ID      string  `json:"id"`
	Topic   string  `json:"topic"`
	Text    string  `json:"result"`
	Outcome Outcome `json:"outcome"`
}

// Config holds the generation parameters sent on every call.
type Config struct {
	Generation llm.GenerationConfig
	Safety     []llm.SafetySetting
}

// DefaultConfig returns temperature 0.7, 80 output tokens and
// BLOCK_MEDIUM_AND_ABOVE for harassment, hate speech, sexually explicit and
// dangerous content.
func DefaultConfig() Config {
	return Config{
		Generation: llm.GenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 80,
		},
		Safety: []llm.SafetySetting{
			{Category: llm.HarmCategoryHarassment, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategoryHateSpeech, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategorySexuallyExplicit, Threshold: llm.BlockMediumAndAbove},
			{Category: llm.HarmCategoryDangerousContent, Threshold: llm.BlockMediumAndAbove},
		},
	}
}

// Handler generates quotes. It is safe for concurrent use; nothing is written
// after construction.
type Handler struct {
	config   Config
	provider llm.Provider
	pick     Picker
	log      logrus.FieldLogger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Handler) { h.log = l }
}

// WithPicker sets the prompt template chooser.
func WithPicker(p Picker) Option {
	return func(h *Handler) { h.pick = p }
}

// New creates a Handler. The config is copied so later changes by the caller
// do not affect requests.
func New(cfg Config, provider llm.Provider, opts ...Option) *Handler {
	cfg.Safety = append([]llm.SafetySetting(nil), cfg.Safety...)
	h := &Handler{
		config:   cfg,
		provider: provider,
		pick:     defaultPicker,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Provider returns the provider the handler calls.
func (h *Handler) Provider() llm.Provider { return h.provider }

// Generate returns a displayable quote or message for topic.
func (h *Handler) Generate(ctx context.Context, topic string) string {
	return h.GenerateResult(ctx, topic).Text
}

// GenerateResult is Generate with the outcome and request ID attached.
func (h *Handler) GenerateResult(ctx context.Context, topic string) Result {
	res := Result{ID: uuid.New().String()[:8], Topic: topic}

	if strings.TrimSpace(topic) == "" {
		res.Text, res.Outcome = MsgEmptyTopic, OutcomeInputMissing
		return res
	}

	log := h.log.WithFields(logrus.Fields{
		"request_id": res.ID,
		"topic":      topic,
		"provider":   h.provider.Name(),
	})

	prompt := BuildPrompt(h.pick(TemplateCount()), topic)
	log.WithField("prompt", prompt).Info("Generating quote")

	resp, err := h.call(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Quote generation failed")
		res.Outcome = Classify(err)
		res.Text = MsgCommFailure
		if res.Outcome == OutcomeAuthFailure {
			res.Text = MsgInvalidKey
		}
		return res
	}

	var text string
	switch resp.Kind {
	case llm.KindCandidates:
		text = strings.TrimSpace(resp.Text)
	case llm.KindBlocked:
		log.WithFields(logrus.Fields{
			"block_reason":         resp.BlockReason,
			"block_reason_message": resp.BlockReasonMessage,
		}).Warn("Prompt blocked")
		res.Text, res.Outcome = MsgBlocked, OutcomeBlocked
		return res
	}

	text = StripQuotes(text)
	if text == "" {
		res.Text, res.Outcome = EmptyMessage(topic), OutcomeEmpty
		return res
	}

	res.Text, res.Outcome = Format(text), OutcomeQuote
	return res
}

// call invokes the provider once. A panic inside the provider is reported as
// an error.
func (h *Handler) call(ctx context.Context, prompt string) (resp llm.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return h.provider.Generate(ctx, llm.Request{
		Prompt:     prompt,
		Generation: h.config.Generation,
		Safety:     h.config.Safety,
	})
}

// StripQuotes removes one layer of matching surrounding quotes: double quotes
// are checked first, then single quotes. At most one layer is removed.
func StripQuotes(s string) string {
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			if len(s) == 1 {
				return ""
			}
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Format wraps a cleaned quote with the attribution.
func Format(quote string) string {
	return `"` + quote + `" - ` + Attribution
}

// EmptyMessage is shown when the provider produced no usable text.
func EmptyMessage(topic string) string {
	return fmt.Sprintf("Could not generate a specific quote for '%s'. Try rephrasing.", topic)
}

// authMarkers are matched case-insensitively against provider error text.
var authMarkers = []string{"api key not valid", "permission_denied", "authentication"}

// Classify maps a provider error to OutcomeAuthFailure or OutcomeFailure.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeFailure
	}
	if errors.Is(err, llm.ErrUnauthenticated) {
		return OutcomeAuthFailure
	}
	msg := strings.ToLower(err.Error())
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return OutcomeAuthFailure
		}
	}
	return OutcomeFailure
}
