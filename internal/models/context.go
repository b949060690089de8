package models

import (
	"strings"
	"time"
)

// Stage tracks where a conversation is in the qualification funnel.
type Stage string

const (
	StageGreeting      Stage = "greeting"
	StageDiscovery     Stage = "discovery"
	StageQualification Stage = "qualification"
	StageBooking       Stage = "booking"
	StageClosed        Stage = "closed"
	StageAbandoned     Stage = "abandoned"
)

// UserInfo holds what we know about the visitor so far. PreviousVisits
// is a pointer because "unknown" is different from zero.
type UserInfo struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	PreviousVisits *int   `json:"previous_visits,omitempty"`
}

// HasContact reports whether we have a way to reach the visitor.
func (u UserInfo) HasContact() bool {
	return u.Email != "" || u.Phone != ""
}

// LLMContext is the per-session conversational state. It is owned by
// the context store and mutated only under the session lock.
type LLMContext struct {
	SessionID           string    `json:"session_id"`
	History             []Turn    `json:"conversation_history"`
	UserInfo            UserInfo  `json:"user_info"`
	Stage               Stage     `json:"conversation_stage"`
	ServicesDiscussed   []string  `json:"services_discussed"`
	PainPoints          []string  `json:"pain_points"`
	CallToActionOffered bool      `json:"call_to_action_offered"`
	DiscoveryRevisited  bool      `json:"discovery_revisited"`
	UpdatedAt           time.Time `json:"timestamp"`
}

// NewLLMContext creates a fresh context in the greeting stage.
func NewLLMContext(sessionID string) *LLMContext {
	return &LLMContext{
		SessionID: sessionID,
		Stage:     StageGreeting,
		UpdatedAt: time.Now(),
	}
}

// HasService reports whether a service is already recorded, comparing
// by normalized lowercase form.
func (c *LLMContext) HasService(name string) bool {
	return containsFold(c.ServicesDiscussed, name)
}

// HasPainPoint reports whether a pain point is already recorded.
func (c *LLMContext) HasPainPoint(name string) bool {
	return containsFold(c.PainPoints, name)
}

// Append folds messages into the conversation history and refreshes
// the last-updated timestamp from the newest message.
func (c *LLMContext) Append(msgs ...Message) {
	for _, m := range msgs {
		c.History = append(c.History, Turn{Role: m.Role(), Content: m.Content})
		if m.Timestamp.After(c.UpdatedAt) {
			c.UpdatedAt = m.Timestamp
		}
	}
}

// Clone returns a deep copy safe to hand to read-only consumers.
func (c *LLMContext) Clone() *LLMContext {
	cp := *c
	cp.History = append([]Turn(nil), c.History...)
	cp.ServicesDiscussed = append([]string(nil), c.ServicesDiscussed...)
	cp.PainPoints = append([]string(nil), c.PainPoints...)
	if c.UserInfo.PreviousVisits != nil {
		v := *c.UserInfo.PreviousVisits
		cp.UserInfo.PreviousVisits = &v
	}
	return &cp
}

func containsFold(items []string, s string) bool {
	for _, it := range items {
		if strings.EqualFold(it, s) {
			return true
		}
	}
	return false
}
