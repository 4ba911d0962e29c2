package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/chatweet/chatweet/types"
)

// OpenAIChat talks to the OpenAI chat completions endpoint.
type OpenAIChat struct {
	client    openai.Client
	baseURL   string
	maxTokens int
	logger    Logger
}

// NewOpenAIChat creates an OpenAIChat from cfg. Call cfg.ApplyDefaults first
// or use New.
func NewOpenAIChat(cfg Config) *OpenAIChat {
	return &OpenAIChat{
		client:    newOpenAIClient(cfg, option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL)),
		baseURL:   cfg.BaseURL,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Complete sends turns as chat messages and returns the first choice's
// content unmodified.
func (p *OpenAIChat) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, chatParams(turns, model, temperature, p.maxTokens))
	if err != nil {
		err = translateOpenAIError(err, "chat.completions", p.baseURL)
		p.logger.Error("chat completion failed", "model", model, "retryable", retryable(err), "error", err)
		return "", err
	}

	content, err := firstContent(resp)
	if err != nil {
		return "", err
	}
	p.logger.Debug("chat completion",
		"model", model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return content, nil
}

// OpenAICompletion talks to the legacy OpenAI completions endpoint.
type OpenAICompletion struct {
	client    openai.Client
	baseURL   string
	maxTokens int
	logger    Logger
}

// NewOpenAICompletion creates an OpenAICompletion from cfg.
func NewOpenAICompletion(cfg Config) *OpenAICompletion {
	return &OpenAICompletion{
		client:    newOpenAIClient(cfg, option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL)),
		baseURL:   cfg.BaseURL,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Complete renders the non-system turns as one prompt and returns the first
// choice's text with surrounding whitespace removed.
func (p *OpenAICompletion) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	resp, err := p.client.Completions.New(ctx, completionParams(turns, model, temperature, p.maxTokens))
	if err != nil {
		err = translateOpenAIError(err, "completions", p.baseURL)
		p.logger.Error("completion failed", "model", model, "retryable", retryable(err), "error", err)
		return "", err
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}
	p.logger.Debug("completion",
		"model", model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return text, nil
}

// newOpenAIClient builds an SDK client on cfg's HTTP client. SDK retries are
// disabled so failures surface immediately.
func newOpenAIClient(cfg Config, opts ...option.RequestOption) openai.Client {
	base := []option.RequestOption{
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	}
	return openai.NewClient(append(base, opts...)...)
}

func chatParams(turns []types.Turn, model string, temperature float64, maxTokens int) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)),
		Temperature: openai.Float(temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	for _, turn := range turns {
		params.Messages = append(params.Messages, chatMessage(turn))
	}
	return params
}

func chatMessage(turn types.Turn) openai.ChatCompletionMessageParamUnion {
	switch turn.Role {
	case types.RoleSystem:
		msg := openai.SystemMessage(turn.Content)
		if turn.Named() {
			msg.OfSystem.Name = openai.String(turn.Name)
		}
		return msg
	case types.RoleAssistant:
		msg := openai.AssistantMessage(turn.Content)
		if turn.Named() {
			msg.OfAssistant.Name = openai.String(turn.Name)
		}
		return msg
	default:
		msg := openai.UserMessage(turn.Content)
		if turn.Named() {
			msg.OfUser.Name = openai.String(turn.Name)
		}
		return msg
	}
}

func completionParams(turns []types.Turn, model string, temperature float64, maxTokens int) openai.CompletionNewParams {
	params := openai.CompletionNewParams{
		Model:       openai.CompletionNewParamsModel(model),
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(completionPrompt(turns))},
		Temperature: openai.Float(temperature),
		N:           openai.Int(1),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	return params
}

func firstContent(resp *openai.ChatCompletion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", &APIError{StatusCode: http.StatusOK, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func firstText(resp *openai.Completion) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", &APIError{StatusCode: http.StatusOK, Err: ErrEmptyResponse}
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}

// translateOpenAIError maps SDK failures onto APIError and TransportError.
// Error bodies that are not OpenAI JSON leave Message empty, so the status
// text stands in.
func translateOpenAIError(err error, op, url string) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Type:       apiErr.Type,
			Code:       apiErr.Code,
			Message:    message,
			Err:        apiErr,
		}
	}
	return &TransportError{Op: op, URL: url, Err: err}
}

// retryable reports whether err is an APIError a later identical request may
// not hit again.
func retryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRetryable()
}
