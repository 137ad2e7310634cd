// Package llm defines the text-generation provider interface for InspiraAI.
package llm

import (
	"context"
	"errors"
)

// ErrUnauthenticated is wrapped by providers when the remote API rejects the
// credential (invalid key, permission denied).
var ErrUnauthenticated = errors.New("llm: credential rejected")

// Provider is a minimal interface for single-shot text generation.
// Implementations provide the actual transport to a specific provider.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is one generation call.
type Request struct {
	Prompt     string
	Generation GenerationConfig
	Safety     []SafetySetting
}

// GenerationConfig controls provider sampling.
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
}

// HarmCategory names a safety category using the Gemini wire names.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// HarmBlockThreshold controls how aggressively a category is withheld.
type HarmBlockThreshold string

const (
	BlockLowAndAbove    HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone           HarmBlockThreshold = "BLOCK_NONE"
)

// SafetySetting pairs a category with its threshold.
type SafetySetting struct {
	Category  HarmCategory
	Threshold HarmBlockThreshold
}

// ResponseKind tags which variant a Response holds.
type ResponseKind int

const (
	// KindEmpty means the provider produced no candidate and gave no block reason.
	KindEmpty ResponseKind = iota
	// KindCandidates means at least one candidate was produced; Text holds the first.
	KindCandidates
	// KindBlocked means the prompt was withheld by provider policy.
	KindBlocked
)

func (k ResponseKind) String() string {
	switch k {
	case KindCandidates:
		return "candidates"
	case KindBlocked:
		return "blocked"
	default:
		return "empty"
	}
}

// Response is the provider's reply reduced to the three cases callers handle.
type Response struct {
	Kind ResponseKind

	// Text is the first candidate's text (KindCandidates only).
	Text string

	// BlockReason and BlockReasonMessage are diagnostic (KindBlocked only).
	BlockReason        string
	BlockReasonMessage string
}

// Candidates builds a KindCandidates response.
func Candidates(text string) Response {
	return Response{Kind: KindCandidates, Text: text}
}

// Blocked builds a KindBlocked response.
func Blocked(reason, message string) Response {
	return Response{Kind: KindBlocked, BlockReason: reason, BlockReasonMessage: message}
}

// Empty builds a KindEmpty response.
func Empty() Response {
	return Response{Kind: KindEmpty}
}
