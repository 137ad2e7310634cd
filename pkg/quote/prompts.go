package quote

import (
	"fmt"
	"math/rand/v2"
)

// promptTemplates each take the topic once. Only the first quotes it.
var promptTemplates = []string{
	"Generate a short, insightful, and original quote about '%s'. The quote should be a single sentence.",
	"Craft a profound and inspiring one-sentence quote on the subject of %s.",
	"What is a wise and memorable saying about %s? Keep it to one sentence.",
	"Compose a unique, concise quote that captures the essence of %s.",
	"Give me an original aphorism or maxim related to %s, as a single sentence.",
}

// ExampleTopics are offered by the form and chat channels for one-click input.
var ExampleTopics = []string{
	"the power of dreams",
	"finding joy in small things",
	"the future of artificial intelligence",
	"a rainy sunday morning",
}

// Picker returns an index in [0, n). The default is rand.IntN, which is safe
// for concurrent use.
type Picker func(n int) int

// TemplateCount is the number of prompt templates a Picker chooses from.
func TemplateCount() int { return len(promptTemplates) }

// BuildPrompt renders template i for topic. i is taken modulo the template count.
func BuildPrompt(i int, topic string) string {
	n := len(promptTemplates)
	i = ((i % n) + n) % n
	return fmt.Sprintf(promptTemplates[i], topic)
}

func defaultPicker(n int) int { return rand.IntN(n) }
