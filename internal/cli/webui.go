package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/chatweet/chatweet/config"
	"github.com/chatweet/chatweet/internal/logging"
	"github.com/chatweet/chatweet/webui"
)

var webuiCmd = &cobra.Command{
	Use:   "webui",
	Short: "Run the web front-end",
	Long: `Serve the tweet form on GET and POST /. Submissions are forwarded to
INVOKE_URL. Requests without an X-Azure-FDID header get the Front Door page.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg, "webui")
		if err != nil {
			return err
		}
		handler, err := newWebUIHandler(cfg, logger)
		if err != nil {
			return err
		}
		return serveHTTP(cmd.Context(), "webui", cfg.WebUI.Addr, handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(webuiCmd)
}

func newWebUIHandler(cfg *config.Config, logger *logging.Logger) (http.Handler, error) {
	return webui.NewRouter(webui.Config{
		InvokeURL:   cfg.WebUI.InvokeURL,
		FrontDoorID: cfg.WebUI.FrontDoorID,
		Timeout:     cfg.WebUI.Timeout,
		Logger:      logger,
	})
}
