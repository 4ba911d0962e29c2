// Package cli implements the chatweet command line: the interactive chat bot,
// the tweet service and the web front-end.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatweet/chatweet/config"
	"github.com/chatweet/chatweet/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "chatweet",
	Short: "Chat with a language model and generate tweets",
	Long: `chatweet talks to OpenAI, Azure OpenAI or Anthropic models.

Commands:
  chatweet chat       # interactive chat with a token-bounded history
  chatweet generate   # tweet service (POST /generate, GET /probe)
  chatweet webui      # web front-end for the tweet service
  chatweet serve      # tweet service and web front-end together

Settings are read from chatweet.yaml in the working directory (or --config)
and from the environment. API keys come from Azure Key Vault when
AZURE_KEY_VAULT_URL is set, otherwise from OPENAI_API_KEY, AZURE_API_KEY or
ANTHROPIC_API_KEY.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./chatweet.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json (overrides config)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// Execute runs the command selected by args. ctx is cancelled on shutdown
// signals by the caller.
func Execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration and applies the logging flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newLogger creates the logger of one command.
func newLogger(cmd *cobra.Command, cfg *config.Config, component string) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: component,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
