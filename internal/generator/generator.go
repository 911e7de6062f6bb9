// Package generator produces True Detective style dialogues about a tech topic
// using a hosted LLM.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nihilistkernel/internal/logging"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Generator turns a normalized topic into a dialogue.
type Generator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// contentGenerator is the slice of genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures a GeminiGenerator.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiGenerator asks a Gemini model for the dialogue.
type GeminiGenerator struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGemini creates a generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGemini(client.Models, cfg.Model, cfg.Timeout), nil
}

func newGemini(models contentGenerator, model string, timeout time.Duration) *GeminiGenerator {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{models: models, model: model, timeout: timeout}
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate builds the prompt for topic, calls the model and cleans the reply.
func (g *GeminiGenerator) Generate(ctx context.Context, topic string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryGenerator, "GenerateContent")
	res, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(topic)), nil)
	timer.StopWithThreshold(10 * time.Second)
	if err != nil {
		logging.GeneratorError("model %s failed for %q: %v", g.model, topic, err)
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	if res == nil {
		return "", ErrEmptyResponse
	}

	text := CleanDialogue(res.Text())
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	logging.GeneratorDebug("model %s produced %d bytes for %q", g.model, len(text), topic)
	return text, nil
}

// BuildPrompt returns the instruction sent to the model for topic.
func BuildPrompt(topic string) string {
	return fmt.Sprintf(promptTemplate, topic)
}

const promptTemplate = `
Generate a dialogue between two characters, a nihilistic philosopher named Rust and a pragmatic, slightly-nervous partner named Marty, in the style of True Detective. The conversation should be about the following tech concept: "%s".

Rust will start with a profound, dark, and existential take on the concept. He sees code, technology, and all of existence as a meaningless, recursive loop or a system without a true author. Marty, being more grounded and practical, will react with confusion or attempt to bring the conversation back to a technical understanding. Rust will then counter with an even more unsettling philosophical perspective.

The dialogue should be formatted with each character's name followed by their dialogue on a new line.

Example structure:
Marty: What are you thinking about?
Rust: The source. Not of the system. Of everything.
`

// CleanDialogue strips markdown fences some replies are wrapped in. Text that
// does not start with a fence or a "json" tag is returned unchanged.
func CleanDialogue(text string) string {
	if strings.HasPrefix(text, "```") || strings.HasPrefix(text, "json") {
		return strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
	}
	return text
}
