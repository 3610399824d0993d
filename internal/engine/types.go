package engine

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole // Role of the message sender
	Content string      // Message content
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		// Valid roles
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	return nil
}

// LLMClient abstracts your chosen SDK (OpenAI, Anthropic, etc.)
// The engine uses it twice per non-simple run: synthesis and reflection.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}

// ChatOptions keeps knobs you'll forward to the SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
	// You can add top_p, system prompt cache keys, etc.
}

// Turn is one role-tagged entry of a session's conversation history.
// Two turns (user, assistant) are appended per invocation.
type Turn struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// MemoryStore persists conversation history and working memory per session.
// It is the only shared mutable resource across invocations; implementations
// live in internal/session.
type MemoryStore interface {
	Load(ctx context.Context, sessionID string) ([]Turn, map[string]string, error)
	Save(ctx context.Context, sessionID string, history []Turn, memory map[string]string) error
}
