package models

// LLMResponse is the per-turn result handed back to the chat widget.
// It is never persisted standalone; its content is folded into the
// conversation history as an assistant turn.
type LLMResponse struct {
	Content          string   `json:"content"`
	Confidence       float64  `json:"confidence"`
	FallbackUsed     bool     `json:"fallback_used"`
	Reasoning        string   `json:"reasoning,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}
