package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kacperborowieckb/gen-csv/shared/synth"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIBaseURL is Hugging Face's OpenAI-compatible inference router.
const DefaultOpenAIBaseURL = "https://router.huggingface.co/v1"

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Verify  bool
}

type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func LoadOpenAI(ctx context.Context, cfg OpenAIConfig) (*OpenAIGenerator, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required for OpenAI-compatible hosts")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL+"/"),
		option.WithMaxRetries(0),
	)

	if cfg.Verify {
		if _, err := client.Models.Get(ctx, model); err != nil {
			return nil, fmt.Errorf("model %q is not available at %s: %w", model, baseURL, err)
		}
	}

	return &OpenAIGenerator{client: client, model: model}, nil
}

func (g *OpenAIGenerator) Model() string { return g.model }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt synth.Prompt, maxTokens int) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion choices")
	}

	return completion.Choices[0].Message.Content, nil
}
