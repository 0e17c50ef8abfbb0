package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates slides with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingCredentials
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", ErrGenerate, err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate sends the slide prompt for markdown and returns the cleaned text.
func (g *Gemini) Generate(ctx context.Context, markdown string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(markdown)), nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrGenerate, err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return Finalize(resp.Text())
}

var _ Generator = (*Gemini)(nil)
