package cli

import (
	"context"
	"fmt"

	"github.com/chatweet/chatweet/config"
	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/internal/logging"
	"github.com/chatweet/chatweet/provider"
	"github.com/chatweet/chatweet/secrets"
)

// newCompleter builds the provider of kind. Tests replace it with a fake.
var newCompleter = func(ctx context.Context, cfg *config.Config, kind provider.Kind, maxTokens int, logger *logging.Logger) (conversation.Completer, error) {
	apiKey, err := apiKey(ctx, cfg, kind, logger)
	if err != nil {
		return nil, err
	}
	p, err := provider.New(cfg.ProviderSettings(kind, apiKey, maxTokens, logger))
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	logger.Info("provider ready", "kind", kind)
	return p, nil
}

// apiKey resolves the API key of kind. OPENAI_KEY wins for OpenAI kinds, then
// Key Vault when configured, then the environment.
func apiKey(ctx context.Context, cfg *config.Config, kind provider.Kind, logger *logging.Logger) (string, error) {
	if cfg.Secrets.OpenAIKey != "" && (kind == provider.KindOpenAIChat || kind == provider.KindOpenAICompletion) {
		return cfg.Secrets.OpenAIKey, nil
	}

	source, err := secretSource(cfg)
	if err != nil {
		return "", err
	}

	name := config.SecretName(kind)
	value, err := source.Secret(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	logger.Debug("api key loaded", "secret", name)
	return value, nil
}

// secretSource returns Key Vault followed by the environment when a vault is
// configured, and the environment alone otherwise.
func secretSource(cfg *config.Config) (secrets.Source, error) {
	env := secrets.Env{}
	if cfg.Secrets.KeyVaultURL == "" {
		return env, nil
	}
	kv, err := secrets.NewKeyVault(cfg.Secrets.KeyVaultURL, cfg.Secrets.ManagedIdentityClientID)
	if err != nil {
		return nil, fmt.Errorf("open key vault: %w", err)
	}
	return secrets.Chain{kv, env}, nil
}
