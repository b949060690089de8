package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single immutable chat message within a session.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with an id and arrival time.
func NewMessage(sender Sender, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Role maps the sender onto the history role used for prompts.
func (m Message) Role() string {
	if m.Sender == SenderBot {
		return RoleAssistant
	}
	return RoleUser
}

// Turn is one entry of the conversation history used for prompt construction.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
