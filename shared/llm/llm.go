// Package llm adapts hosted model APIs to synth.Generator.
package llm

import (
	"context"
	"fmt"

	"github.com/kacperborowieckb/gen-csv/shared/synth"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Verify   bool
}

// Loader returns a synth.LoadFunc for the configured provider.
func Loader(cfg Config) synth.LoadFunc {
	return func(ctx context.Context) (synth.Generator, error) {
		switch cfg.Provider {
		case ProviderGemini, "":
			gen, err := LoadGemini(ctx, cfg.APIKey, cfg.Model, cfg.Verify)
			if err != nil {
				return nil, err
			}
			return gen, nil
		case ProviderOpenAI:
			gen, err := LoadOpenAI(ctx, OpenAIConfig{
				BaseURL: cfg.BaseURL,
				APIKey:  cfg.APIKey,
				Model:   cfg.Model,
				Verify:  cfg.Verify,
			})
			if err != nil {
				return nil, err
			}
			return gen, nil
		default:
			return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
		}
	}
}
