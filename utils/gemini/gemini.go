package gemini

import (
	"context"
	"log"

	"google.golang.org/genai"
)

func NewConnection(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})

	if err != nil {
		return nil, err
	}

	log.Printf("new gemini client set up")

	return client, nil
}
