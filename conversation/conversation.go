package conversation

import (
	"context"
	"fmt"

	"github.com/chatweet/chatweet/types"
)

// Logger interface for conversation logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Completer produces the next assistant reply for a conversation.
// Failures are returned as-is; Submit does not retry them.
type Completer interface {
	Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error)
}

// TokenEstimator estimates the token count of a turn sequence for a model.
// *Estimator is the standard implementation.
type TokenEstimator interface {
	EstimateTokens(turns []types.Turn, model string) (int, error)
}

// Exchange is the outcome of one Submit.
type Exchange struct {
	// Reply is the assistant content returned by the provider.
	Reply string

	// Tokens is the estimate of the buffer after the reply was appended,
	// before any truncation.
	Tokens int

	// Dropped is the number of leading turns removed by truncation.
	Dropped int
}

// Truncated reports whether the exchange trimmed the buffer.
func (e *Exchange) Truncated() bool {
	return e.Dropped > 0
}

// Conversation is the turn buffer of one chat session.
type Conversation struct {
	config          Config
	completer       Completer
	estimator       TokenEstimator
	logger          Logger
	rollbackOnError bool

	turns []types.Turn
}

// New creates a Conversation holding a single system turn. It fails with an
// *UnsupportedModelError when the estimator cannot handle cfg.Model.
func New(cfg Config, completer Completer, estimator TokenEstimator, opts ...Option) (*Conversation, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if completer == nil {
		return nil, fmt.Errorf("%w: completer is required", ErrInvalidConfig)
	}
	if estimator == nil {
		return nil, fmt.Errorf("%w: estimator is required", ErrInvalidConfig)
	}

	c := &Conversation{
		config:    cfg,
		completer: completer,
		estimator: estimator,
		logger:    noopLogger{},
		turns:     []types.Turn{types.SystemTurn(cfg.SystemPrompt)},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Fail at construction rather than mid-exchange when the model cannot be
	// estimated.
	if _, err := c.estimate(c.turns); err != nil {
		return nil, err
	}
	return c, nil
}

// Turns returns a copy of the buffer in chronological order.
func (c *Conversation) Turns() []types.Turn {
	return types.CloneTurns(c.turns)
}

// Len returns the number of turns in the buffer.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Model returns the model the conversation talks to.
func (c *Conversation) Model() string {
	return c.config.Model
}

// Submit runs one exchange: append the user turn, fetch the reply for the
// whole buffer, append it, estimate, and trim when over the threshold.
//
// A provider error is returned unchanged with a nil Exchange. Whether the
// user turn stays in the buffer afterwards depends on WithRollbackOnError.
//
// Once the reply arrives it stays in the buffer. If estimating or trimming
// then fails, Submit returns the error together with an Exchange holding the
// reply and zero Tokens, and the buffer is left untrimmed.
func (c *Conversation) Submit(ctx context.Context, text string) (*Exchange, error) {
	c.turns = append(c.turns, types.UserTurn(text))

	reply, err := c.completer.Complete(ctx, c.Turns(), c.config.Model, c.config.Temperature)
	if err != nil {
		if c.rollbackOnError {
			c.turns = c.turns[:len(c.turns)-1]
		}
		c.logger.Error("completion failed",
			"model", c.config.Model,
			"turns", len(c.turns),
			"rolled_back", c.rollbackOnError,
			"error", err,
		)
		return nil, err
	}

	c.turns = append(c.turns, types.AssistantTurn(reply))

	exchange := &Exchange{Reply: reply}

	tokens, err := c.estimate(c.turns)
	if err != nil {
		c.logger.Error("token estimate failed", "model", c.config.Model, "error", err)
		return exchange, err
	}
	exchange.Tokens = tokens

	trimmed, dropped, err := c.config.Truncation.Apply(c.turns, tokens, c.estimate)
	if err != nil {
		exchange.Tokens = 0
		return exchange, err
	}
	if dropped > 0 {
		c.logger.Warn("token threshold exceeded, truncating turns",
			"tokens", tokens,
			"threshold", c.config.Truncation.Threshold,
			"dropped", dropped,
			"remaining", len(trimmed),
		)
		c.turns = trimmed
		exchange.Dropped = dropped
	}

	c.logger.Debug("exchange complete",
		"model", c.config.Model,
		"tokens", tokens,
		"turns", len(c.turns),
	)
	return exchange, nil
}

func (c *Conversation) estimate(turns []types.Turn) (int, error) {
	return c.estimator.EstimateTokens(turns, c.config.Model)
}
