// Package generate implements the tweet generation service: a JSON HTTP API
// that turns a topic and a sentiment into a short tweet using the configured
// completion provider.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/types"
)

// Sentinel errors for the tweet service.
var (
	// ErrInvalidConfig indicates invalid service configuration.
	ErrInvalidConfig = errors.New("invalid generate configuration")

	// ErrInvalidInput indicates a missing topic or sentiment.
	ErrInvalidInput = errors.New("invalid generate input")
)

// Logger interface for structured logging.
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

// Prompt returns the instruction sent for a topic and a sentiment.
func Prompt(text, sentiment string) string {
	return fmt.Sprintf("Write a tweet about %s and make it %s", text, sentiment)
}

// Service generates tweets with a completion provider.
type Service struct {
	completer conversation.Completer
	config    Config
}

// NewService creates a Service.
func NewService(completer conversation.Completer, cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if completer == nil {
		return nil, fmt.Errorf("%w: completer is required", ErrInvalidConfig)
	}
	return &Service{completer: completer, config: cfg}, nil
}

// Generate returns a tweet about text with the given sentiment. Each call is
// a fresh two-turn exchange; nothing is remembered between calls.
func (s *Service) Generate(ctx context.Context, text, sentiment string) (string, error) {
	text = strings.TrimSpace(text)
	sentiment = strings.TrimSpace(sentiment)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if sentiment == "" {
		return "", fmt.Errorf("%w: sentiment is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	turns := []types.Turn{
		types.SystemTurn(s.config.SystemPrompt),
		types.UserTurn(Prompt(text, sentiment)),
	}

	tweet, err := s.completer.Complete(ctx, turns, s.config.Model, s.config.Temperature)
	if err != nil {
		return "", err
	}
	return tweet, nil
}
