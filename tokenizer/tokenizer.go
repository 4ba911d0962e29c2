// Package tokenizer resolves BPE encoders for model identifiers using
// tiktoken-go, with a character-based approximation for offline use.
package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/chatweet/chatweet/conversation"
)

// DefaultEncoding is used for model identifiers tiktoken does not know.
const DefaultEncoding = "cl100k_base"

// ErrNoEncoder indicates neither the model's encoding nor the default
// encoding could be loaded.
var ErrNoEncoder = errors.New("no encoder available")

// Logger interface for tokenizer logging.
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

// loadFunc loads an encoder by model ID or encoding name.
type loadFunc func(key string) (conversation.Encoder, error)

// Registry resolves and caches encoders per model identifier. It is safe for
// concurrent use.
type Registry struct {
	forModel    loadFunc
	forEncoding loadFunc
	approximate bool
	logger      Logger

	mu    sync.Mutex
	cache map[string]conversation.Encoder
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for fallback events.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithApproximateFallback makes the registry return Approximate when no BPE
// encoding can be loaded, e.g. when the encoding files cannot be downloaded.
func WithApproximateFallback() Option {
	return func(r *Registry) {
		r.approximate = true
	}
}

// NewRegistry creates a Registry backed by tiktoken-go.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		forModel:    loadForModel,
		forEncoding: loadEncoding,
		logger:      noopLogger{},
		cache:       make(map[string]conversation.Encoder),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EncoderFor returns the encoder for model. Unknown identifiers resolve to
// DefaultEncoding.
func (r *Registry) EncoderFor(model string) (conversation.Encoder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enc, ok := r.cache[model]; ok {
		return enc, nil
	}

	enc, err := r.resolve(model)
	if err != nil {
		return nil, err
	}
	r.cache[model] = enc
	return enc, nil
}

func (r *Registry) resolve(model string) (conversation.Encoder, error) {
	enc, err := r.forModel(model)
	if err == nil {
		return enc, nil
	}
	r.logger.Debug("no encoding for model, using default",
		"model", model,
		"encoding", DefaultEncoding,
		"error", err,
	)

	enc, err = r.forEncoding(DefaultEncoding)
	if err == nil {
		return enc, nil
	}

	if r.approximate {
		r.logger.Warn("default encoding unavailable, approximating token counts",
			"model", model,
			"error", err,
		)
		return Approximate{}, nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrNoEncoder, DefaultEncoding, err)
}

// bpeEncoder counts tokens with a tiktoken encoding.
type bpeEncoder struct {
	enc *tiktoken.Tiktoken
}

func (e bpeEncoder) Count(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

func loadForModel(model string) (conversation.Encoder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	return bpeEncoder{enc: enc}, nil
}

func loadEncoding(name string) (conversation.Encoder, error) {
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	return bpeEncoder{enc: enc}, nil
}
