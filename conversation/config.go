package conversation

import (
	"fmt"
)

// Default configuration values of the chat bot.
const (
	DefaultModel        = "gpt-3.5-turbo"
	DefaultTemperature  = 0.8
	DefaultThreshold    = 4000 // tokens
	DefaultDropCount    = 2    // one user/assistant pair
	DefaultSystemPrompt = "You are an assistant that always answers correctly. If not sure, say 'I don't know'."
)

// Config holds conversation configuration.
type Config struct {
	// SystemPrompt is the content of the initial system turn.
	// Default: DefaultSystemPrompt
	SystemPrompt string

	// Model is the model ID sent to the provider and used for estimation.
	// Default: "gpt-3.5-turbo"
	Model string

	// Temperature is the sampling temperature sent with every exchange.
	// Default: 0.8
	Temperature float64

	// Truncation is the trim policy applied after each exchange.
	// Default: drop the first 2 turns once when the estimate exceeds 4000.
	Truncation Truncator
}

// DefaultConfig returns a Config with the chat bot defaults.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		Truncation: Truncator{
			Threshold: DefaultThreshold,
			DropCount: DefaultDropCount,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Truncation.Threshold == 0 {
		c.Truncation.Threshold = DefaultThreshold
	}
	if c.Truncation.DropCount == 0 {
		c.Truncation.DropCount = DefaultDropCount
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

	if c.Truncation.Threshold <= 0 {
		return fmt.Errorf("%w: truncation threshold must be positive, got %d", ErrInvalidConfig, c.Truncation.Threshold)
	}

	if c.Truncation.DropCount < 0 {
		return fmt.Errorf("%w: drop count must be non-negative, got %d", ErrInvalidConfig, c.Truncation.DropCount)
	}

	return nil
}
