package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/daveenci-ai/leadchat-backend/internal/config"
	"github.com/daveenci-ai/leadchat-backend/internal/providers"
)

// Provider implements the OpenAI generation backend
type Provider struct {
	config config.LLMConfig
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.LLMConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	if p.config.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}

// Complete performs a non-streaming completion
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	openAIReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}
	if req.Temperature != nil {
		openAIReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openAIReq.MaxTokens = *req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, openAIReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	choice := resp.Choices[0]
	return &providers.CompletionResponse{
		ID:         resp.ID,
		Model:      resp.Model,
		Content:    strings.TrimSpace(choice.Message.Content),
		Confidence: deriveConfidence(choice),
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// deriveConfidence maps the finish state onto [0,1]. The chat API does
// not expose calibrated confidence, so a clean stop counts high and a
// truncated or filtered completion counts low.
func deriveConfidence(choice openai.ChatCompletionChoice) float64 {
	if strings.TrimSpace(choice.Message.Content) == "" {
		return 0
	}
	switch choice.FinishReason {
	case openai.FinishReasonStop:
		return 0.9
	case openai.FinishReasonLength:
		return 0.4
	case openai.FinishReasonContentFilter:
		return 0.1
	default:
		return 0.5
	}
}

func convertMessages(msgs []providers.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}
