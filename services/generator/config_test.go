package main

import (
	"strings"
	"testing"
	"time"

	"github.com/kacperborowieckb/gen-csv/shared/llm"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.Provider != llm.ProviderGemini {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.APIKey != "" {
		t.Error("a missing API key must not fail startup")
	}
	if cfg.MaxUploadBytes != 10<<20 || cfg.GenerationTimeout != 120*time.Second || cfg.MaxConcurrent != 1 {
		t.Errorf("limits = %d %v %d", cfg.MaxUploadBytes, cfg.GenerationTimeout, cfg.MaxConcurrent)
	}
}

func TestLoadConfigOpenAI(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("MODEL", "meta-llama/Llama-3.1-8B-Instruct")
	t.Setenv("API_KEY", "hf_x")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.BaseURL != llm.DefaultOpenAIBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown provider", "MODEL_PROVIDER", "ollama"},
		{"port", "PORT", "http"},
		{"concurrency", "MAX_CONCURRENT_GENERATIONS", "0"},
		{"amqp url", "AMQP_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := loadConfig(); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
				t.Errorf("loadConfig() error = %v, want validation error", err)
			}
		})
	}
}

func TestLoadConfigOpenAIRequiresModel(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("MODEL", "")

	if _, err := loadConfig(); err == nil {
		t.Error("openai provider without MODEL should fail validation")
	}
}
