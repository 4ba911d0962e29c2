// Package provider implements the completion services a conversation can
// talk to. Every variant exposes the same Complete method; the variant is
// picked once from a Config at startup.
//
// OpenAI and Azure OpenAI go through openai-go, Anthropic through
// anthropic-sdk-go. SDK errors are translated to APIError and TransportError.
package provider

import (
	"fmt"
	"strings"

	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/types"
)

// Logger interface for provider logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Provider produces the assistant reply for a turn sequence.
type Provider interface {
	conversation.Completer
}

var (
	_ Provider = (*OpenAIChat)(nil)
	_ Provider = (*OpenAICompletion)(nil)
	_ Provider = (*AzureCompletion)(nil)
	_ Provider = (*AzureChat)(nil)
	_ Provider = (*Anthropic)(nil)
)

// New returns the variant selected by cfg.Kind.
func New(cfg Config) (Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case KindOpenAIChat:
		return NewOpenAIChat(cfg), nil
	case KindOpenAICompletion:
		return NewOpenAICompletion(cfg), nil
	case KindAzureCompletion:
		return NewAzureCompletion(cfg), nil
	case KindAzureChat:
		return NewAzureChat(cfg), nil
	case KindAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// completionPrompt renders turns for endpoints that take a single prompt
// string. Those endpoints have no system channel, so system turns are left
// out.
func completionPrompt(turns []types.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		if turn.Role == types.RoleSystem {
			continue
		}
		parts = append(parts, turn.Content)
	}
	return strings.Join(parts, "\n\n")
}
