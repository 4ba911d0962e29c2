package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chatweet/chatweet/generate"
)

// InvokeError describes a failed call to the tweet service. Status is zero
// when no response arrived.
type InvokeError struct {
	Status int
	Err    error
}

// Error returns a formatted error message.
func (e *InvokeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%d %s: %v", e.Status, http.StatusText(e.Status), e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InvokeError) Unwrap() error {
	return e.Err
}

// invoker calls the tweet service.
type invoker struct {
	client *http.Client
	url    string
}

// invoke POSTs text and sentiment and returns the response status and tweet.
func (c *invoker) invoke(ctx context.Context, text, sentiment string) (int, string, error) {
	body, err := json.Marshal(generate.GenerateRequest{Text: text, Sentiment: sentiment})
	if err != nil {
		return 0, "", &InvokeError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, "", &InvokeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", &InvokeError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", &InvokeError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var failure generate.ErrorResponse
		if json.Unmarshal(raw, &failure) == nil && failure.Error != nil {
			return resp.StatusCode, "", &InvokeError{Status: resp.StatusCode, Err: fmt.Errorf("%s", failure.Error.Message)}
		}
		return resp.StatusCode, "", &InvokeError{Status: resp.StatusCode, Err: fmt.Errorf("%s", bytes.TrimSpace(raw))}
	}

	var success generate.GenerateResponse
	if err := json.Unmarshal(raw, &success); err != nil {
		return resp.StatusCode, "", &InvokeError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, success.Tweet, nil
}
