package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/chatweet/chatweet/config"
	"github.com/chatweet/chatweet/generate"
	"github.com/chatweet/chatweet/internal/logging"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the tweet service",
	Long: `Serve POST /generate and GET /probe.

The provider is selected with TYPE (OpenAI, Azure or Anthropic) and API
(completion or chat).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg, "generate")
		if err != nil {
			return err
		}
		handler, err := newGenerateHandler(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return serveHTTP(cmd.Context(), "generate", cfg.Generate.Addr, handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// newGenerateHandler builds the tweet service from cfg.
func newGenerateHandler(ctx context.Context, cfg *config.Config, logger *logging.Logger) (http.Handler, error) {
	kind, err := cfg.ProviderKind("")
	if err != nil {
		return nil, err
	}
	completer, err := newCompleter(ctx, cfg, kind, cfg.GenerateMaxTokens(kind), logger)
	if err != nil {
		return nil, err
	}
	svc, err := generate.NewService(completer, generate.Config{
		Model:        cfg.ProviderModel(kind),
		SystemPrompt: cfg.Generate.SystemPrompt,
		Temperature:  cfg.Generate.Temperature,
		Timeout:      cfg.Generate.Timeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return generate.NewRouter(svc), nil
}
