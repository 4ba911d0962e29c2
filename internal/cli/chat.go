package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chatweet/chatweet/config"
	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/internal/logging"
	"github.com/chatweet/chatweet/provider"
	"github.com/chatweet/chatweet/tokenizer"
	"github.com/chatweet/chatweet/types"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	replyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
	tokenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var transcriptPath string

// newEncoderRegistry builds the tokenizer registry. Tests replace it to stay
// offline.
var newEncoderRegistry = func(cfg *config.Config, logger *logging.Logger) conversation.EncoderRegistry {
	opts := []tokenizer.Option{tokenizer.WithLogger(logger)}
	if cfg.Chat.ApproximateTokens {
		opts = append(opts, tokenizer.WithApproximateFallback())
	}
	return tokenizer.NewRegistry(opts...)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively with a token-bounded history",
	Long: `Start an interactive chat. Every reply is followed by the token estimate
of the whole conversation. When the estimate exceeds the threshold the
oldest turns are dropped.

The provider is the OpenAI chat API, or the Azure chat API with TYPE=Azure.
End the session with Ctrl-D, Ctrl-C, "exit" or "quit".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg, "chat")
		if err != nil {
			return err
		}

		kind, err := cfg.ChatProviderKind()
		if err != nil {
			return err
		}
		completer, err := newCompleter(cmd.Context(), cfg, kind, 0, logger)
		if err != nil {
			return err
		}

		estimator := conversation.NewEstimator(newEncoderRegistry(cfg, logger))

		convOpts := []conversation.Option{conversation.WithLogger(logger)}
		if cfg.Chat.RollbackOnError {
			convOpts = append(convOpts, conversation.WithRollbackOnError())
		}
		conv, err := conversation.New(cfg.ConversationConfig(), completer, estimator, convOpts...)
		if err != nil {
			return fmt.Errorf("start conversation: %w", err)
		}

		runErr := runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), conv, cfg)
		if transcriptPath != "" {
			if err := writeTranscript(transcriptPath, conv); err != nil {
				return errors.Join(runErr, err)
			}
			logger.Info("transcript written", "path", transcriptPath, "turns", conv.Len())
		}
		return runErr
	},
}

func init() {
	chatCmd.Flags().StringVar(&transcriptPath, "transcript", "", "write the remaining conversation to this YAML file on exit")
	rootCmd.AddCommand(chatCmd)
}

// runChat reads one user message per line until EOF, an exit command or
// cancellation of ctx, and prints each reply with the token estimate.
// Provider errors are printed and the loop goes on.
func runChat(ctx context.Context, in io.Reader, out io.Writer, conv *conversation.Conversation, cfg *config.Config) error {
	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, promptStyle.Render("You:")+" ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-readErr
			}
			line = l
		}

		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		exchange, err := conv.Submit(ctx, text)
		if err != nil {
			if exchange != nil {
				fmt.Fprintln(out, replyStyle.Render(exchange.Reply))
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var unsupported *conversation.UnsupportedModelError
			if errors.As(err, &unsupported) {
				return err
			}
			msg := "Error: " + err.Error()
			var apiErr *provider.APIError
			if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
				msg += " (rate limited, try again shortly)"
			}
			fmt.Fprintln(out, errorStyle.Render(msg))
			continue
		}

		fmt.Fprintln(out, replyStyle.Render(exchange.Reply))
		fmt.Fprintln(out, tokenStyle.Render(fmt.Sprintf("Total tokens: %d", exchange.Tokens)))
		if exchange.Truncated() {
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf(
				"WARNING: Number of tokens exceeds %d. Truncating messages.", cfg.Chat.Threshold)))
		}
	}
}

// readLines scans in on its own goroutine so that runChat can select on
// ctx while a read blocks. lines is closed at EOF, after which the scan
// error is sent on the error channel. The goroutine stops sending once done
// is closed.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// transcript is the YAML document written by --transcript.
type transcript struct {
	Model string       `yaml:"model"`
	Turns []types.Turn `yaml:"turns"`
}

func writeTranscript(path string, conv *conversation.Conversation) error {
	data, err := yaml.Marshal(transcript{Model: conv.Model(), Turns: conv.Turns()})
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
