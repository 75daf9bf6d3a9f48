package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kacperborowieckb/gen-csv/shared/synth"
)

func newChatServer(t *testing.T, reply string) (*httptest.Server, *map[string]any) {
	t.Helper()

	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "meta-llama/Llama-3.1-8B-Instruct",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	})
	mux.HandleFunc("/models/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &captured
}

func TestOpenAIGeneratorChatCompletion(t *testing.T) {
	srv, captured := newChatServer(t, "Synthetic data generated\na,b\n1,2")

	g, err := LoadOpenAI(context.Background(), OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "hf_test",
		Model:   "meta-llama/Llama-3.1-8B-Instruct",
	})
	if err != nil {
		t.Fatalf("LoadOpenAI() error = %v", err)
	}

	out, err := g.Generate(context.Background(), synth.Prompt{System: "sys", User: "usr"}, 2000)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "Synthetic data generated\na,b\n1,2" {
		t.Errorf("Generate() = %q", out)
	}

	body := *captured
	if body["model"] != "meta-llama/Llama-3.1-8B-Instruct" {
		t.Errorf("model = %v", body["model"])
	}
	if body["max_tokens"] != float64(2000) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v, want system and user", body["messages"])
	}
	if first, _ := messages[0].(map[string]any); first["role"] != "system" || first["content"] != "sys" {
		t.Errorf("first message = %v", first)
	}
}

func TestLoadOpenAIVerifyFailsForUnknownModel(t *testing.T) {
	srv, _ := newChatServer(t, "")

	_, err := LoadOpenAI(context.Background(), OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "hf_test",
		Model:   "missing/model",
		Verify:  true,
	})
	if err == nil {
		t.Fatal("LoadOpenAI() with unknown model should fail")
	}
}

func TestLoadOpenAIRequiresModel(t *testing.T) {
	if _, err := LoadOpenAI(context.Background(), OpenAIConfig{APIKey: "k"}); err == nil {
		t.Fatal("LoadOpenAI() without model should fail")
	}
}
