// Package config loads chatweet settings from an optional YAML file and the
// environment. The legacy environment variable names
// (TYPE, API, AZURE_KEY_VAULT_URL, MANAGED_IDENTITY_CLIENT_ID, INVOKE_URL,
// OPENAI_KEY) are honored alongside CHATWEET_-prefixed names.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/provider"
	"github.com/chatweet/chatweet/secrets"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "CHATWEET"

// ErrInvalidConfig indicates invalid settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of all settings.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Generate GenerateConfig `mapstructure:"generate"`
	WebUI    WebUIConfig    `mapstructure:"webui"`
	Log      LogConfig      `mapstructure:"log"`
}

// ProviderConfig selects and configures the completion provider.
type ProviderConfig struct {
	Type       string        `mapstructure:"type"` // OpenAI, Azure or Anthropic
	API        string        `mapstructure:"api"`  // completion or chat
	Kind       string        `mapstructure:"kind"` // explicit provider.Kind, overrides Type/API
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	Endpoint   string        `mapstructure:"endpoint"`
	Deployment string        `mapstructure:"deployment"`
	APIVersion string        `mapstructure:"api_version"`
	MaxTokens  int           `mapstructure:"max_tokens"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SecretsConfig locates API keys.
type SecretsConfig struct {
	KeyVaultURL             string `mapstructure:"key_vault_url"`
	ManagedIdentityClientID string `mapstructure:"managed_identity_client_id"`
	OpenAIKey               string `mapstructure:"openai_key"`
}

// ChatConfig configures the interactive chat bot.
type ChatConfig struct {
	Model             string  `mapstructure:"model"`
	SystemPrompt      string  `mapstructure:"system_prompt"`
	Temperature       float64 `mapstructure:"temperature"`
	Threshold         int     `mapstructure:"threshold"`
	DropCount         int     `mapstructure:"drop_count"`
	RepeatTruncation  bool    `mapstructure:"repeat_truncation"`
	PreserveSystem    bool    `mapstructure:"preserve_system"`
	RollbackOnError   bool    `mapstructure:"rollback_on_error"`
	ApproximateTokens bool    `mapstructure:"approximate_tokens"`
}

// GenerateConfig configures the tweet service.
type GenerateConfig struct {
	Addr         string        `mapstructure:"addr"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// WebUIConfig configures the web front-end.
type WebUIConfig struct {
	Addr        string        `mapstructure:"addr"`
	InvokeURL   string        `mapstructure:"invoke_url"`
	FrontDoorID string        `mapstructure:"front_door_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps keys to their legacy variable names.
var legacyEnv = map[string]string{
	"provider.type":                      "TYPE",
	"provider.api":                       "API",
	"secrets.key_vault_url":              "AZURE_KEY_VAULT_URL",
	"secrets.managed_identity_client_id": "MANAGED_IDENTITY_CLIENT_ID",
	"secrets.openai_key":                 "OPENAI_KEY",
	"webui.invoke_url":                   "INVOKE_URL",
	"log.level":                          "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.type", "")
	v.SetDefault("provider.api", "completion")
	v.SetDefault("provider.kind", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.deployment", "")
	v.SetDefault("provider.api_version", "")
	v.SetDefault("provider.max_tokens", 0)
	v.SetDefault("provider.timeout", provider.DefaultTimeout)

	v.SetDefault("secrets.key_vault_url", "")
	v.SetDefault("secrets.managed_identity_client_id", "")
	v.SetDefault("secrets.openai_key", "")

	v.SetDefault("chat.model", conversation.DefaultModel)
	v.SetDefault("chat.system_prompt", conversation.DefaultSystemPrompt)
	v.SetDefault("chat.temperature", conversation.DefaultTemperature)
	v.SetDefault("chat.threshold", conversation.DefaultThreshold)
	v.SetDefault("chat.drop_count", conversation.DefaultDropCount)
	v.SetDefault("chat.repeat_truncation", false)
	v.SetDefault("chat.preserve_system", false)
	v.SetDefault("chat.rollback_on_error", false)
	v.SetDefault("chat.approximate_tokens", false)

	v.SetDefault("generate.addr", ":5001")
	v.SetDefault("generate.system_prompt", "You are a helpful assistant.")
	v.SetDefault("generate.temperature", 0.8)
	v.SetDefault("generate.max_tokens", 50)
	v.SetDefault("generate.timeout", 60*time.Second)

	v.SetDefault("webui.addr", ":5000")
	v.SetDefault("webui.invoke_url", "")
	v.SetDefault("webui.front_door_id", "")
	v.SetDefault("webui.timeout", 90*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from configPath, or from chatweet.yaml in the
// working directory when configPath is empty, then applies the environment.
// A missing default file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("chatweet")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that are wrong regardless of the command.
func (c *Config) Validate() error {
	if c.Provider.Type != "" || c.Provider.Kind != "" {
		if _, err := c.ProviderKind(""); err != nil {
			return err
		}
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("%w: provider.max_tokens must be non-negative", ErrInvalidConfig)
	}
	if c.Chat.Threshold <= 0 {
		return fmt.Errorf("%w: chat.threshold must be positive", ErrInvalidConfig)
	}
	if c.Chat.DropCount < 0 {
		return fmt.Errorf("%w: chat.drop_count must be non-negative", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// ProviderKind resolves the provider variant from Kind, or from Type and API
// the way the legacy variables did. fallback is used when neither Kind nor
// Type is set; an empty fallback makes that an error.
func (c *Config) ProviderKind(fallback provider.Kind) (provider.Kind, error) {
	if c.Provider.Kind != "" {
		kind := provider.Kind(strings.ToLower(c.Provider.Kind))
		if !kind.Valid() {
			return "", fmt.Errorf("%w: %w: %q", ErrInvalidConfig, provider.ErrUnknownKind, c.Provider.Kind)
		}
		return kind, nil
	}

	chat := strings.EqualFold(c.Provider.API, "chat")
	switch strings.ToLower(c.Provider.Type) {
	case "":
		if fallback == "" {
			return "", fmt.Errorf("%w: provider type is required (set TYPE to OpenAI, Azure or Anthropic)", ErrInvalidConfig)
		}
		return fallback, nil
	case "openai":
		if chat {
			return provider.KindOpenAIChat, nil
		}
		return provider.KindOpenAICompletion, nil
	case "azure":
		if chat {
			return provider.KindAzureChat, nil
		}
		return provider.KindAzureCompletion, nil
	case "anthropic":
		return provider.KindAnthropic, nil
	default:
		return "", fmt.Errorf("%w: unknown provider type %q", ErrInvalidConfig, c.Provider.Type)
	}
}

// ChatProviderKind resolves the provider variant for the chat bot. Only chat
// endpoints carry the system turn, so Type maps to the chat API regardless
// of API, and completion or Anthropic kinds are rejected.
func (c *Config) ChatProviderKind() (provider.Kind, error) {
	var kind provider.Kind
	if c.Provider.Kind != "" {
		kind = provider.Kind(strings.ToLower(c.Provider.Kind))
	} else {
		switch strings.ToLower(c.Provider.Type) {
		case "", "openai":
			kind = provider.KindOpenAIChat
		case "azure":
			kind = provider.KindAzureChat
		default:
			kind = provider.Kind(strings.ToLower(c.Provider.Type))
		}
	}

	switch kind {
	case provider.KindOpenAIChat, provider.KindAzureChat:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: chat requires provider type OpenAI or Azure, or kind openai-chat or azure-chat, got %q", ErrInvalidConfig, kind)
	}
}

// GenerateMaxTokens returns the completion cap the tweet service sends with
// kind. Only the completion APIs get generate.max_tokens; chat kinds fall
// back to provider.max_tokens.
func (c *Config) GenerateMaxTokens(kind provider.Kind) int {
	switch kind {
	case provider.KindOpenAICompletion, provider.KindAzureCompletion:
		return c.Generate.MaxTokens
	default:
		return 0
	}
}

// DefaultModel returns the model ID used with kind when provider.model is
// not set.
func DefaultModel(kind provider.Kind) string {
	switch kind {
	case provider.KindOpenAICompletion:
		return "text-davinci-003"
	case provider.KindAzureCompletion, provider.KindAzureChat:
		return "tweeter"
	case provider.KindAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return conversation.DefaultModel
	}
}

// ProviderModel returns provider.model or DefaultModel(kind).
func (c *Config) ProviderModel(kind provider.Kind) string {
	if c.Provider.Model != "" {
		return c.Provider.Model
	}
	return DefaultModel(kind)
}

// SecretName returns the Key Vault secret that holds the API key of kind.
func SecretName(kind provider.Kind) string {
	switch {
	case kind.IsAzure():
		return secrets.AzureAPIKey
	case kind == provider.KindAnthropic:
		return secrets.AnthropicAPIKey
	default:
		return secrets.OpenAIAPIKey
	}
}

// ProviderSettings builds the provider configuration for kind with apiKey.
// maxTokens overrides provider.max_tokens when positive.
func (c *Config) ProviderSettings(kind provider.Kind, apiKey string, maxTokens int, logger provider.Logger) provider.Config {
	if maxTokens <= 0 {
		maxTokens = c.Provider.MaxTokens
	}
	return provider.Config{
		Kind:       kind,
		APIKey:     apiKey,
		BaseURL:    c.Provider.BaseURL,
		Endpoint:   c.Provider.Endpoint,
		Deployment: c.Provider.Deployment,
		APIVersion: c.Provider.APIVersion,
		MaxTokens:  maxTokens,
		Timeout:    c.Provider.Timeout,
		Logger:     logger,
	}
}

// ConversationConfig builds the chat bot's conversation configuration.
func (c *Config) ConversationConfig() conversation.Config {
	return conversation.Config{
		SystemPrompt: c.Chat.SystemPrompt,
		Model:        c.Chat.Model,
		Temperature:  c.Chat.Temperature,
		Truncation: conversation.Truncator{
			Threshold:      c.Chat.Threshold,
			DropCount:      c.Chat.DropCount,
			Repeat:         c.Chat.RepeatTruncation,
			PreserveSystem: c.Chat.PreserveSystem,
		},
	}
}
