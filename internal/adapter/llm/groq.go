// Package llm provides the text-generation collaborator used by the
// responders for free-form advisory prose.
package llm

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"krishi-ai/internal/domain"
	"krishi-ai/internal/infra/config"
)

const systemPrompt = `You are an expert agricultural advisor with deep knowledge of:
- Crop cultivation and farming practices
- Soil health and fertilizer management
- Weather impacts on agriculture
- Market trends and pricing
- Government schemes and subsidies
- Pest and disease management
- Irrigation and water management

Provide practical, actionable advice that farmers can implement.
Use simple language and avoid overly technical jargon.
Include specific recommendations with quantities, timing, and methods where applicable.
Consider Indian agricultural context and practices.`

// GroqGenerator implements domain.TextGenerator against Groq's
// OpenAI-compatible chat completions API.
type GroqGenerator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewGroqGenerator builds a generator from the LLM config. Returns nil if
// no API key is configured; callers should fall back to TemplateGenerator.
func NewGroqGenerator(cfg config.LLMConfig, logger *slog.Logger) *GroqGenerator {
	if cfg.APIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &GroqGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

func (g *GroqGenerator) Name() string { return "groq" }

// Generate runs one chat completion over the prompt.
func (g *GroqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return "", domain.NewDomainError("GroqGenerator.Generate", domain.ErrGenerationFailed, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewDomainError("GroqGenerator.Generate", domain.ErrGenerationFailed, "empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// TemplateGenerator is the offline fallback used when no API key is
// configured or the remote generator is unavailable. It returns canned
// domain guidance keyed on prompt keywords.
type TemplateGenerator struct{}

func (TemplateGenerator) Name() string { return "template" }

func (TemplateGenerator) Generate(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "crop"):
		return "For crop selection, consider your local climate, soil type, and water " +
			"availability. Consult your local agricultural extension office for " +
			"region-specific variety recommendations.", nil
	case strings.Contains(lower, "soil"):
		return "Regular soil testing helps maintain optimal nutrient levels. Apply " +
			"organic matter like compost to improve soil structure and fertility.", nil
	case strings.Contains(lower, "water") || strings.Contains(lower, "irrigation"):
		return "Efficient water management is crucial. Consider drip irrigation to " +
			"reduce water usage while maintaining crop yields.", nil
	default:
		return "Thank you for your agricultural query. For detailed guidance, consult " +
			"your local agricultural extension office or Krishi Vigyan Kendra.", nil
	}
}
