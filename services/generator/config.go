package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kacperborowieckb/gen-csv/shared/llm"
	"github.com/kacperborowieckb/gen-csv/utils/env"
)

type config struct {
	Port                string `validate:"required,numeric"`
	APIKey              string
	Provider            string `validate:"oneof=gemini openai"`
	Model               string `validate:"required_if=Provider openai"`
	BaseURL             string `validate:"omitempty,url"`
	SystemPromptVersion string
	VerifyModel         bool

	MaxUploadBytes      int64         `validate:"gt=0"`
	MaxDescriptionChars int           `validate:"gt=0"`
	GenerationTimeout   time.Duration `validate:"gt=0"`
	MaxConcurrent       int64         `validate:"gte=1"`

	AMQPURL string `validate:"omitempty,url"`
}

func loadConfig() (config, error) {
	cfg := config{
		Port:                env.GetString("PORT", "8080"),
		APIKey:              env.GetString("API_KEY", env.GetString("GEMINI_API_KEY", "")),
		Provider:            env.GetString("MODEL_PROVIDER", llm.ProviderGemini),
		Model:               env.GetString("MODEL", ""),
		BaseURL:             env.GetString("MODEL_BASE_URL", ""),
		SystemPromptVersion: env.GetString("SYSTEM_PROMPT_VERSION", ""),
		VerifyModel:         env.GetBool("VERIFY_MODEL", true),

		MaxUploadBytes:      int64(env.GetInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxDescriptionChars: env.GetInt("MAX_DESCRIPTION_CHARS", 2000),
		GenerationTimeout:   env.GetDuration("GENERATION_TIMEOUT", 120*time.Second),
		MaxConcurrent:       int64(env.GetInt("MAX_CONCURRENT_GENERATIONS", 1)),

		AMQPURL: env.GetString("AMQP_URL", ""),
	}

	if cfg.Provider == llm.ProviderOpenAI && cfg.BaseURL == "" {
		cfg.BaseURL = llm.DefaultOpenAIBaseURL
	}

	if err := validator.New().Struct(cfg); err != nil {
		return config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
