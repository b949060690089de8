package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daveenci-ai/leadchat-backend/internal/config"
	"github.com/daveenci-ai/leadchat-backend/internal/models"
	"github.com/daveenci-ai/leadchat-backend/internal/providers"
)

// Generator produces the assistant reply for a turn. It is stateless
// across calls; every prompt is rebuilt from the context so the backend
// is fully primed each time.
type Generator struct {
	provider    providers.Provider
	model       string
	threshold   float64
	timeout     time.Duration
	window      int
	bookingLink string
	breaker     *breaker
	log         *logrus.Logger
}

// NewGenerator wires a generator against a backend provider.
func NewGenerator(provider providers.Provider, cfg config.LLMConfig, bookingLink string, log *logrus.Logger) *Generator {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = 12
	}
	return &Generator{
		provider:    provider,
		model:       cfg.Model,
		threshold:   cfg.ConfidenceThreshold,
		timeout:     cfg.Timeout(),
		window:      window,
		bookingLink: bookingLink,
		breaker:     newBreaker(3, 30*time.Second),
		log:         log,
	}
}

// Generate returns a reply for the latest user turn. It never returns
// an error: backend failure, timeout and low confidence all degrade to
// the stage-scripted fallback with fallbackUsed=true and confidence 0.
func (g *Generator) Generate(ctx context.Context, c *models.LLMContext, userMessage string) *models.LLMResponse {
	if !g.breaker.Allow() {
		g.log.WithField("session_id", c.SessionID).Warn("generation backend short-circuited, using fallback")
		return g.fallback(c, "backend temporarily unavailable after repeated failures")
	}

	req := providers.CompletionRequest{
		Model:    g.model,
		Messages: g.buildPrompt(c, userMessage),
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(callCtx, req)
	if err != nil {
		g.breaker.RecordFailure()
		g.log.WithFields(logrus.Fields{
			"session_id": c.SessionID,
			"stage":      c.Stage,
		}).WithError(err).Warn("generation failed, using fallback")
		return g.fallback(c, fmt.Sprintf("generation failed: %v", err))
	}

	g.breaker.RecordSuccess()

	if resp.Confidence < g.threshold {
		return g.fallback(c, fmt.Sprintf("confidence %.2f below threshold %.2f", resp.Confidence, g.threshold))
	}

	return &models.LLMResponse{
		Content:          resp.Content,
		Confidence:       resp.Confidence,
		FallbackUsed:     false,
		Reasoning:        resp.Reasoning,
		SuggestedActions: g.suggestedActions(c.Stage),
	}
}

// buildPrompt assembles the system prompt from structured facts plus
// the most recent history turns, oldest first, ending with the latest
// user message.
func (g *Generator) buildPrompt(c *models.LLMContext, userMessage string) []providers.Message {
	var sb strings.Builder
	sb.WriteString("You are the website assistant for DaVeenci, an AI marketing agency. ")
	sb.WriteString("Be concise, friendly and helpful; your goal is to understand the visitor's needs and guide them toward a discovery call.\n")
	sb.WriteString(fmt.Sprintf("Conversation stage: %s.\n", c.Stage))

	if len(c.ServicesDiscussed) > 0 {
		sb.WriteString("Services discussed so far: " + strings.Join(c.ServicesDiscussed, ", ") + ".\n")
	}
	if len(c.PainPoints) > 0 {
		sb.WriteString("Visitor pain points: " + strings.Join(c.PainPoints, ", ") + ".\n")
	}
	if c.UserInfo.Name != "" {
		sb.WriteString("Visitor name: " + c.UserInfo.Name + ".\n")
	}
	if c.UserInfo.Company != "" {
		sb.WriteString("Visitor company: " + c.UserInfo.Company + ".\n")
	}
	if c.UserInfo.PreviousVisits != nil && *c.UserInfo.PreviousVisits > 0 {
		sb.WriteString(fmt.Sprintf("This is a returning visitor with %d prior conversations.\n", *c.UserInfo.PreviousVisits))
	}
	if c.Stage == models.StageBooking {
		sb.WriteString("A call to action has been offered. Scheduling link: " + g.bookingLink + ".\n")
	}

	messages := []providers.Message{{Role: "system", Content: sb.String()}}

	history := c.History
	if len(history) > g.window {
		history = history[len(history)-g.window:]
	}
	for _, turn := range history {
		messages = append(messages, providers.Message{Role: turn.Role, Content: turn.Content})
	}

	return append(messages, providers.Message{Role: models.RoleUser, Content: userMessage})
}

func (g *Generator) fallback(c *models.LLMContext, reason string) *models.LLMResponse {
	return &models.LLMResponse{
		Content:          g.fallbackScript(c.Stage),
		Confidence:       0,
		FallbackUsed:     true,
		Reasoning:        reason,
		SuggestedActions: g.suggestedActions(c.Stage),
	}
}

// fallbackScript is the deterministic scripted reply per stage.
func (g *Generator) fallbackScript(stage models.Stage) string {
	switch stage {
	case models.StageGreeting:
		return "Hi there! I'm the DaVeenci assistant. What brings you to us today?"
	case models.StageDiscovery:
		return "That's helpful to know. Could you tell me a bit more about the biggest challenge you're trying to solve right now?"
	case models.StageQualification:
		return "Thanks for sharing that. What would a successful outcome look like for your team over the next few months?"
	case models.StageBooking:
		return "The best next step is a quick call with our team. You can pick a time that suits you here: " + g.bookingLink
	default:
		return "Thanks for chatting with us! If you'd like to continue later, we're here."
	}
}

func (g *Generator) suggestedActions(stage models.Stage) []string {
	switch stage {
	case models.StageGreeting, models.StageDiscovery:
		return []string{"Explore our services", "Describe your challenge"}
	case models.StageQualification:
		return []string{"Share your contact details", "Ask about pricing"}
	case models.StageBooking:
		return []string{"Schedule a call"}
	default:
		return nil
	}
}
