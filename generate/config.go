package generate

import (
	"fmt"
	"time"
)

// Default configuration values of the tweet service.
const (
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultTemperature  = 0.8
	DefaultTimeout      = 60 * time.Second
	DefaultMaxBodyBytes = 64 << 10
)

// Config holds the tweet service configuration.
type Config struct {
	// Model is passed to the provider. For Azure variants it names the
	// deployment when none is configured there.
	Model string

	// SystemPrompt is sent ahead of the tweet prompt to chat providers.
	// Default: "You are a helpful assistant."
	SystemPrompt string

	// Temperature is the sampling temperature.
	// Default: 0.8
	Temperature float64

	// Timeout bounds one provider call.
	// Default: 60s
	Timeout time.Duration

	// MaxBodyBytes caps the request body of POST /generate.
	// Default: 64 KiB
	MaxBodyBytes int64

	// Logger for structured logging. Default: no-op.
	Logger Logger
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %f", ErrInvalidConfig, c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
