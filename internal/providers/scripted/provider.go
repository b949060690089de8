package scripted

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daveenci-ai/leadchat-backend/internal/providers"
)

// Provider is a deterministic offline backend for development and
// tests. It echoes a canned reply keyed off the last user message.
type Provider struct {
	confidence float64
}

// NewProvider creates a scripted provider with the given fixed confidence.
func NewProvider(confidence float64) *Provider {
	return &Provider{confidence: confidence}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "scripted"
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	return nil
}

// Complete performs a canned completion
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lastUser string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUser = req.Messages[i].Content
			break
		}
	}

	content := "Thanks for sharing that. Could you tell me a bit more about what you're working on?"
	if strings.Contains(strings.ToLower(lastUser), "price") || strings.Contains(strings.ToLower(lastUser), "cost") {
		content = "Pricing depends on scope, so the quickest route is a short discovery call with the team."
	}

	return &providers.CompletionResponse{
		ID:         fmt.Sprintf("scripted-%d", time.Now().UnixNano()),
		Model:      req.Model,
		Content:    content,
		Confidence: p.confidence,
		Reasoning:  "scripted development backend",
		Usage: providers.Usage{
			PromptTokens:     len(req.Messages),
			CompletionTokens: 1,
			TotalTokens:      len(req.Messages) + 1,
		},
	}, nil
}
