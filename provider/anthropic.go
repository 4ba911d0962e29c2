package provider

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	anthropicconv "github.com/chatweet/chatweet/internal/anthropic"
	"github.com/chatweet/chatweet/types"
)

// Anthropic talks to the Anthropic Messages API through the official SDK.
type Anthropic struct {
	client    anthropic.Client
	baseURL   string
	maxTokens int64
	logger    Logger
}

// NewAnthropic creates an Anthropic provider from cfg. The SDK retries are
// disabled so failures surface immediately.
func NewAnthropic(cfg Config) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = DefaultAnthropicTokens
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		baseURL:   cfg.BaseURL,
		maxTokens: maxTokens,
		logger:    cfg.Logger,
	}
}

// Complete sends turns as a Messages request. System turns become the system
// prompt. The reply is the concatenated text content.
func (p *Anthropic) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	messages, system := anthropicconv.ConvertTurns(turns)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   p.maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		err = p.translateError(err)
		p.logger.Error("anthropic completion failed",
			"model", model,
			"retryable", retryable(err),
			"error", err,
		)
		return "", err
	}

	if len(msg.Content) == 0 {
		return "", &APIError{StatusCode: 200, Err: ErrEmptyResponse}
	}

	p.logger.Debug("anthropic completion",
		"model", model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"stop_reason", msg.StopReason,
	)
	return anthropicconv.ExtractText(msg), nil
}

// translateError maps SDK failures onto APIError and TransportError. The SDK
// error stays reachable through Unwrap.
func (p *Anthropic) translateError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Err:        apiErr,
		}
	}
	return &TransportError{Op: "messages", URL: p.baseURL, Err: err}
}
