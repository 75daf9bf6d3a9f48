package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kacperborowieckb/gen-csv/shared/synth"
	"github.com/kacperborowieckb/gen-csv/utils/gemini"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the slice of genai.Models the generator calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// LoadGemini connects to the Gemini API and, when verify is set, checks
// that the model exists before any prompt is sent.
func LoadGemini(ctx context.Context, apiKey, model string, verify bool) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := gemini.NewConnection(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if verify {
		if _, err := client.Models.Get(ctx, model, nil); err != nil {
			return nil, fmt.Errorf("model %q is not available: %w", model, err)
		}
	}

	return &GeminiGenerator{models: client.Models, model: model}, nil
}

func (g *GeminiGenerator) Model() string { return g.model }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt synth.Prompt, maxTokens int) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
		ThinkingConfig:    thinkingConfig(g.model),
	}

	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt.User), config)
	if err != nil {
		return "", fmt.Errorf("call to gemini failed: %w", err)
	}

	truncated := finishReason(result) == genai.FinishReasonMaxTokens

	text := result.Text()
	if text == "" {
		if truncated {
			return "", fmt.Errorf("gemini hit the %d token limit before writing any output", maxTokens)
		}
		return "", fmt.Errorf("gemini returned an empty response")
	}

	if truncated {
		log.Printf("Gemini reply from %s was cut off at %d tokens", g.model, maxTokens)
	}

	return text, nil
}

// thinkingConfig turns thinking off so MaxOutputTokens is spent on the table.
// Pro models cannot disable thinking and keep their default.
func thinkingConfig(model string) *genai.ThinkingConfig {
	if strings.Contains(model, "-pro") {
		return nil
	}

	return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
}

func finishReason(result *genai.GenerateContentResponse) genai.FinishReason {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0] == nil {
		return ""
	}

	return result.Candidates[0].FinishReason
}
