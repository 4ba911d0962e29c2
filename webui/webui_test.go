package webui

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chatweet/chatweet/generate"
	"github.com/chatweet/chatweet/internal/testutil"
)

func newTestHandler(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	h, err := NewRouter(cfg)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return h
}

func postForm(h http.Handler, form url.Values, fdid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if fdid != "" {
		req.Header.Set(FrontDoorHeader, fdid)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tweetService(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestIndex_RequiresFrontDoor(t *testing.T) {
	tests := []struct {
		name        string
		frontDoorID string
		header      string
		wantFD      bool
	}{
		{name: "no header", header: "", wantFD: true},
		{name: "any header accepted", header: "abc", wantFD: false},
		{name: "wrong id", frontDoorID: "expected", header: "other", wantFD: true},
		{name: "matching id", frontDoorID: "expected", header: "expected", wantFD: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, Config{InvokeURL: "http://tweets.invalid/generate", FrontDoorID: tt.frontDoorID})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(FrontDoorHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			gotFD := strings.Contains(body, "Azure Front Door")
			if gotFD != tt.wantFD {
				t.Errorf("front door page = %v, want %v\n%s", gotFD, tt.wantFD, body)
			}
			if !tt.wantFD && !strings.Contains(body, `<select id="dropdown" name="dropdown">`) {
				t.Errorf("form missing from index page:\n%s", body)
			}
		})
	}
}

func TestIndex_PostGeneratesTweet(t *testing.T) {
	var got generate.GenerateRequest
	server := tweetService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"tweet":"Loving **Go** today <script>alert(1)</script>"}`)
	})

	h := newTestHandler(t, Config{InvokeURL: server.URL + "/generate"})
	rec := postForm(h, url.Values{"text": {"Go"}, "dropdown": {"happy"}}, "fd")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.Text != "Go" || got.Sentiment != "happy" {
		t.Errorf("request = %+v", got)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Response status: 200",
		"<strong>Go</strong>",
		"A happy tweet about Go:",
		`<option value="happy" selected>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("unsanitized script in body:\n%s", body)
	}
}

func TestIndex_ServiceError(t *testing.T) {
	server := tweetService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error":{"code":"provider_error","message":"provider: send request: connection refused"}}`)
	})

	logger := &testutil.RecordingLogger{}
	h := newTestHandler(t, Config{InvokeURL: server.URL, Logger: logger})
	rec := postForm(h, url.Values{"text": {"Go"}, "dropdown": {"sad"}}, "fd")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "502 Bad Gateway") || !strings.Contains(body, "connection refused") {
		t.Errorf("status not shown:\n%s", body)
	}
	if len(logger.Entries("error")) != 1 {
		t.Errorf("error log lines = %d, want 1", len(logger.Entries("error")))
	}
}

func TestIndex_ServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	invokeURL := server.URL
	server.Close()

	h := newTestHandler(t, Config{InvokeURL: invokeURL})
	rec := postForm(h, url.Values{"text": {"Go"}, "dropdown": {"sad"}}, "fd")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "request failed") {
		t.Errorf("transport error not shown:\n%s", rec.Body.String())
	}
}

func TestIndex_MissingFields(t *testing.T) {
	h := newTestHandler(t, Config{InvokeURL: "http://tweets.invalid/generate"})
	rec := postForm(h, url.Values{"text": {"Go"}}, "fd")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "text and sentiment are required") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestInvoke_MalformedSuccess(t *testing.T) {
	server := tweetService(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})

	inv := &invoker{client: server.Client(), url: server.URL}
	status, _, err := inv.invoke(t.Context(), "Go", "happy")

	var invokeErr *InvokeError
	if !errors.As(err, &invokeErr) || invokeErr.Status != http.StatusOK || status != http.StatusOK {
		t.Errorf("invoke() = %d, %v, want decode error with status 200", status, err)
	}
}

func TestNewRouter_Validation(t *testing.T) {
	for _, invokeURL := range []string{"", "/generate", "::bad"} {
		if _, err := NewRouter(Config{InvokeURL: invokeURL}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewRouter(%q) error = %v, want ErrInvalidConfig", invokeURL, err)
		}
	}
}

func TestTweetHTML(t *testing.T) {
	r := newRenderer()

	if got := r.tweetHTML(""); got != "" {
		t.Errorf("tweetHTML(\"\") = %q", got)
	}
	got := string(r.tweetHTML("Check [this](javascript:alert(1)) #go"))
	if strings.Contains(got, "javascript:") {
		t.Errorf("tweetHTML() kept a javascript link: %s", got)
	}
	if !strings.Contains(got, "#go") {
		t.Errorf("tweetHTML() = %s", got)
	}
}
