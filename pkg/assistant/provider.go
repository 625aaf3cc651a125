// Package assistant provides the conversational collaborator that answers
// investment questions about an extracted listing. It consumes records,
// never mutates them.
package assistant

import (
	"context"
	"errors"
	"os"
)

// ErrNoProvider means no LLM backend is configured; callers degrade to a
// non-conversational experience.
var ErrNoProvider = errors.New("no assistant provider configured")

// Role identifies a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// Request is a completion request to a provider.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response is a provider's completion.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is a chat completion backend.
type Provider interface {
	Execute(ctx context.Context, req Request) (*Response, error)
	Name() string
	Model() string
}

// ProviderConfig holds common provider settings.
type ProviderConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// FromEnv picks a provider from the available API keys, preferring
// Anthropic. Returns ErrNoProvider when no key is set.
func FromEnv() (Provider, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAnthropic(ProviderConfig{APIKey: key, Model: os.Getenv("RENDIMO_ANTHROPIC_MODEL")})
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(ProviderConfig{APIKey: key, Model: os.Getenv("RENDIMO_OPENAI_MODEL")})
	}
	return nil, ErrNoProvider
}
