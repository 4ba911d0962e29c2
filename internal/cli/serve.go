package cli

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tweet service and the web front-end together",
	Long: `Run generate and webui in one process. When INVOKE_URL is not set the
front-end calls the local tweet service. If either server fails the other
is shut down.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg, "serve")
		if err != nil {
			return err
		}

		if cfg.WebUI.InvokeURL == "" {
			cfg.WebUI.InvokeURL = localURL(cfg.Generate.Addr) + "/generate"
		}

		generateHandler, err := newGenerateHandler(cmd.Context(), cfg, logger.With("server", "generate"))
		if err != nil {
			return err
		}
		webuiHandler, err := newWebUIHandler(cfg, logger.With("server", "webui"))
		if err != nil {
			return err
		}

		p := pool.New().WithContext(cmd.Context()).WithCancelOnError()
		p.Go(func(ctx context.Context) error {
			return serveHTTP(ctx, "generate", cfg.Generate.Addr, generateHandler, logger)
		})
		p.Go(func(ctx context.Context) error {
			return serveHTTP(ctx, "webui", cfg.WebUI.Addr, webuiHandler, logger)
		})
		return p.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// localURL turns a listen address such as ":5001" into a loopback URL.
func localURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://127.0.0.1" + addr
	}
	return fmt.Sprintf("http://%s", addr)
}
