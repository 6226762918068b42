package main

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// GoogleAIProvider adapts the Gemini API (google.golang.org/genai) to llms.Model
type GoogleAIProvider struct {
	client         *genai.Client
	thinkingBudget *int32
	model          string
}

// NewGoogleAIProvider creates a new GoogleAIProvider instance
func NewGoogleAIProvider(ctx context.Context, model string, apiKey string, thinkingBudget *int32) (*GoogleAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLEAI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create googleai client: %w", err)
	}

	return &GoogleAIProvider{
		client:         client,
		thinkingBudget: thinkingBudget,
		model:          model,
	}, nil
}

// generationConfig maps langchaingo call options onto a Gemini request config.
func (p *GoogleAIProvider) generationConfig(options ...llms.CallOption) *genai.GenerateContentConfig {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	var cfg *genai.GenerateContentConfig
	if p.thinkingBudget != nil {
		cfg = &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr(*p.thinkingBudget),
			},
		}
	}
	if opts.Temperature > 0 {
		if cfg == nil {
			cfg = &genai.GenerateContentConfig{}
		}
		cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	return cfg
}

// GenerateText sends a text generation request to Gemini API
func (p *GoogleAIProvider) GenerateText(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("googleai client not initialized")
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), p.generationConfig(options...))
	if err != nil {
		return "", fmt.Errorf("googleai GenerateContent API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("googleai GenerateContent API returned empty response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("googleai GenerateContent API returned a candidate with no content")
	}
	if candidate.Content.Parts[0].Text == "" {
		return "", fmt.Errorf("googleai GenerateContent API returned a candidate with empty text")
	}
	return candidate.Content.Parts[0].Text, nil
}

// GenerateContent implements llms.Model for a single text prompt.
func (p *GoogleAIProvider) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) == 0 || len(messages[0].Parts) == 0 {
		return nil, fmt.Errorf("no prompt provided")
	}
	textPart, ok := messages[0].Parts[0].(llms.TextContent)
	if !ok {
		return nil, fmt.Errorf("first message part is not TextContent")
	}
	result, err := p.GenerateText(ctx, textPart.Text, options...)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: result}},
	}, nil
}

// Call implements the llms.Model interface for compatibility with langchaingo.
func (p *GoogleAIProvider) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return p.GenerateText(ctx, prompt, options...)
}
