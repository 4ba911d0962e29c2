package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/chatweet/chatweet/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// listen is replaced in tests to bind ephemeral ports.
var listen = func(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// serveHTTP serves handler on addr until ctx is done, then drains in-flight
// requests for up to shutdownTimeout.
func serveHTTP(ctx context.Context, name, addr string, handler http.Handler, logger *logging.Logger) error {
	ln, err := listen(addr)
	if err != nil {
		return fmt.Errorf("%s: listen on %s: %w", name, addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "server", name, "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s: serve: %w", name, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "server", name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", name, err)
	}
	return nil
}
