package provider

import (
	"fmt"
	"net/http"
	"time"
)

// Kind selects a provider variant.
type Kind string

// Provider variants.
const (
	KindOpenAIChat       Kind = "openai-chat"
	KindOpenAICompletion Kind = "openai-completion"
	KindAzureCompletion  Kind = "azure-completion"
	KindAzureChat        Kind = "azure-chat"
	KindAnthropic        Kind = "anthropic"
)

// Default configuration values.
const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultAzureAPIVersion = "2022-12-01"
	DefaultTimeout         = 30 * time.Second
	DefaultAnthropicTokens = 1024
)

// Kinds lists every supported Kind.
func Kinds() []Kind {
	return []Kind{KindOpenAIChat, KindOpenAICompletion, KindAzureCompletion, KindAzureChat, KindAnthropic}
}

// Valid reports whether k names a provider variant.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// IsAzure reports whether k talks to an Azure OpenAI deployment.
func (k Kind) IsAzure() bool {
	return k == KindAzureCompletion || k == KindAzureChat
}

// Config holds the connection settings of one provider. It is passed to New
// once at startup.
type Config struct {
	// Kind selects the variant.
	Kind Kind

	// APIKey authenticates every request.
	APIKey string

	// BaseURL overrides the OpenAI or Anthropic API root.
	// Default: https://api.openai.com/v1 for OpenAI kinds, the SDK default for
	// Anthropic.
	BaseURL string

	// Endpoint is the Azure OpenAI resource URL, e.g.
	// https://my-resource.openai.azure.com. Required for Azure kinds.
	Endpoint string

	// Deployment is the Azure deployment name. Default: the model ID.
	Deployment string

	// APIVersion is the Azure api-version query parameter.
	// Default: 2022-12-01
	APIVersion string

	// MaxTokens caps the reply length. Zero leaves it to the service, except
	// for Anthropic where DefaultAnthropicTokens is sent.
	MaxTokens int

	// Timeout bounds each request. Default: 30s
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// Logger receives request events. Default: no-op.
	Logger Logger
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" && (c.Kind == KindOpenAIChat || c.Kind == KindOpenAICompletion) {
		c.BaseURL = DefaultOpenAIBaseURL
	}
	if c.APIVersion == "" && c.Kind.IsAzure() {
		c.APIVersion = DefaultAzureAPIVersion
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
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownKind, c.Kind)
	}

	if c.APIKey == "" {
		return fmt.Errorf("%w: API key is required for %s", ErrInvalidConfig, c.Kind)
	}

	if c.Kind.IsAzure() && c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required for %s", ErrInvalidConfig, c.Kind)
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("%w: max tokens must be non-negative, got %d", ErrInvalidConfig, c.MaxTokens)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %s", ErrInvalidConfig, c.Timeout)
	}

	return nil
}
