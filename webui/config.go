package webui

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FrontDoorHeader is set by Azure Front Door on every request it forwards.
const FrontDoorHeader = "X-Azure-FDID"

// Default configuration values of the web front-end.
const (
	DefaultTimeout = 90 * time.Second
)

// DefaultSentiments are the dropdown choices of the tweet form.
var DefaultSentiments = []string{"happy", "sad", "funny", "angry", "sarcastic", "inspirational"}

// Config holds the web front-end configuration.
type Config struct {
	// InvokeURL is the POST /generate endpoint of the tweet service.
	// Required.
	InvokeURL string

	// FrontDoorID, when set, must equal the X-Azure-FDID header. When empty
	// any non-empty header is accepted.
	FrontDoorID string

	// Sentiments are the dropdown choices.
	// Default: DefaultSentiments
	Sentiments []string

	// Timeout bounds one call to the tweet service.
	// Default: 90s
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// Logger for structured logging. Default: no-op.
	Logger Logger
}

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

// ErrInvalidConfig indicates invalid web front-end configuration.
var ErrInvalidConfig = errors.New("invalid webui configuration")

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Sentiments) == 0 {
		c.Sentiments = DefaultSentiments
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.InvokeURL == "" {
		return fmt.Errorf("%w: invoke URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.InvokeURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invoke URL %q is not an absolute URL", ErrInvalidConfig, c.InvokeURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
