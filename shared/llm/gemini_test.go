package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kacperborowieckb/gen-csv/shared/synth"
	"google.golang.org/genai"
)

type fakeModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	reply    string
	finish   genai.FinishReason
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.reply, genai.RoleModel), FinishReason: f.finish},
		},
	}, nil
}

func TestGeminiGeneratorSendsBothBlocks(t *testing.T) {
	fake := &fakeModels{reply: "Synthetic data generated\nname,age\nAna,30"}
	g := &GeminiGenerator{models: fake, model: "gemini-test"}

	out, err := g.Generate(context.Background(), synth.Prompt{System: "system block", User: "user block"}, 2000)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != fake.reply {
		t.Errorf("Generate() = %q, want %q", out, fake.reply)
	}
	if fake.model != "gemini-test" {
		t.Errorf("model = %q", fake.model)
	}
	if fake.config.MaxOutputTokens != 2000 {
		t.Errorf("MaxOutputTokens = %d, want 2000", fake.config.MaxOutputTokens)
	}
	if tc := fake.config.ThinkingConfig; tc == nil || tc.ThinkingBudget == nil || *tc.ThinkingBudget != 0 {
		t.Errorf("ThinkingConfig = %+v, want a zero thinking budget", tc)
	}
	if got := fake.config.SystemInstruction.Parts[0].Text; got != "system block" {
		t.Errorf("system instruction = %q", got)
	}
	if got := fake.contents[0].Parts[0].Text; got != "user block" {
		t.Errorf("user content = %q", got)
	}
}

func TestGeminiGeneratorErrors(t *testing.T) {
	g := &GeminiGenerator{models: &fakeModels{err: errors.New("quota exceeded")}, model: "m"}
	if _, err := g.Generate(context.Background(), synth.Prompt{}, 10); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Generate() error = %v, want wrapped quota error", err)
	}

	g = &GeminiGenerator{models: &fakeModels{reply: ""}, model: "m"}
	if _, err := g.Generate(context.Background(), synth.Prompt{}, 10); err == nil {
		t.Fatal("Generate() with empty reply should fail")
	}
}

func TestGeminiGeneratorKeepsProThinking(t *testing.T) {
	fake := &fakeModels{reply: "x"}
	g := &GeminiGenerator{models: fake, model: "gemini-2.5-pro"}

	if _, err := g.Generate(context.Background(), synth.Prompt{}, 2000); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if fake.config.ThinkingConfig != nil {
		t.Errorf("ThinkingConfig = %+v, want model default", fake.config.ThinkingConfig)
	}
}

func TestGeminiGeneratorTokenLimit(t *testing.T) {
	g := &GeminiGenerator{models: &fakeModels{finish: genai.FinishReasonMaxTokens}, model: "m"}
	_, err := g.Generate(context.Background(), synth.Prompt{}, 2000)
	if err == nil || !strings.Contains(err.Error(), "2000 token limit") {
		t.Fatalf("Generate() error = %v, want token limit error", err)
	}

	fake := &fakeModels{reply: "Synthetic data generated\nname,age\nAna,3", finish: genai.FinishReasonMaxTokens}
	g = &GeminiGenerator{models: fake, model: "m"}
	out, err := g.Generate(context.Background(), synth.Prompt{}, 2000)
	if err != nil || out != fake.reply {
		t.Fatalf("Generate() = %q, %v; truncated output should pass through", out, err)
	}
}

func TestLoaderRejectsUnknownProvider(t *testing.T) {
	_, err := Loader(Config{Provider: "llama.cpp"})(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unknown model provider") {
		t.Fatalf("Loader() error = %v", err)
	}
}
