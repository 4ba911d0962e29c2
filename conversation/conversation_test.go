package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chatweet/chatweet/types"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   [][]types.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, turns []types.Turn, _ string, _ float64) (string, error) {
	f.calls = append(f.calls, turns)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type recordingLogger struct {
	noopLogger
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, args ...any)  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, args ...any) { l.errors = append(l.errors, msg) }

func newTestConversation(t *testing.T, cfg Config, completer Completer, opts ...Option) *Conversation {
	t.Helper()
	conv, err := New(cfg, completer, newWordEstimator(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return conv
}

func TestNew(t *testing.T) {
	conv := newTestConversation(t, Config{}, &fakeCompleter{})

	turns := conv.Turns()
	if len(turns) != 1 {
		t.Fatalf("len(Turns()) = %d, want 1", len(turns))
	}
	if turns[0].Role != types.RoleSystem || turns[0].Content != DefaultSystemPrompt {
		t.Errorf("initial turn = %+v, want default system prompt", turns[0])
	}
	if conv.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", conv.Model(), DefaultModel)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		completer Completer
		estimator TokenEstimator
		wantErr   error
	}{
		{
			name:      "nil completer",
			completer: nil,
			estimator: newWordEstimator(),
			wantErr:   ErrInvalidConfig,
		},
		{
			name:      "nil estimator",
			completer: &fakeCompleter{},
			estimator: nil,
			wantErr:   ErrInvalidConfig,
		},
		{
			name:      "temperature out of range",
			cfg:       Config{Temperature: 3},
			completer: &fakeCompleter{},
			estimator: newWordEstimator(),
			wantErr:   ErrInvalidConfig,
		},
		{
			name:      "unsupported model",
			cfg:       Config{Model: "gpt-4"},
			completer: &fakeCompleter{},
			estimator: newWordEstimator(),
			wantErr:   ErrUnsupportedModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.completer, tt.estimator)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmit_Scenario(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"Hello!"}}
	conv := newTestConversation(t, Config{SystemPrompt: "Be terse."}, completer)

	ex, err := conv.Submit(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := []types.Turn{
		types.SystemTurn("Be terse."),
		types.UserTurn("Hi"),
		types.AssistantTurn("Hello!"),
	}
	got := conv.Turns()
	if len(got) != len(want) {
		t.Fatalf("len(Turns()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	wantTokens, err := newWordEstimator().EstimateTokens(want, DefaultModel)
	if err != nil {
		t.Fatalf("EstimateTokens() error = %v", err)
	}
	if ex.Tokens != wantTokens {
		t.Errorf("Tokens = %d, want %d", ex.Tokens, wantTokens)
	}
	if ex.Reply != "Hello!" {
		t.Errorf("Reply = %q, want %q", ex.Reply, "Hello!")
	}
	if ex.Truncated() {
		t.Error("Truncated() = true, want false")
	}

	// The provider sees the system and user turns only.
	if len(completer.calls) != 1 || len(completer.calls[0]) != 2 {
		t.Fatalf("completer calls = %v, want one call with 2 turns", completer.calls)
	}
}

func TestSubmit_TruncatesOnce(t *testing.T) {
	logger := &recordingLogger{}
	long := strings.Repeat("word ", 50)
	completer := &fakeCompleter{}
	cfg := Config{
		SystemPrompt: "sys",
		Truncation:   Truncator{Threshold: 50, DropCount: 2},
	}
	conv := newTestConversation(t, cfg, completer, WithLogger(logger))

	// sys(5) + user(5) + assistant(5) + priming(2) = 17 stays under.
	ex, err := conv.Submit(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if ex.Truncated() || conv.Len() != 3 {
		t.Fatalf("first Submit truncated: dropped = %d, len = %d", ex.Dropped, conv.Len())
	}

	prev := conv.Len() + 2
	ex, err = conv.Submit(context.Background(), long)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if ex.Tokens <= 50 {
		t.Fatalf("Tokens = %d, expected estimate over threshold", ex.Tokens)
	}
	if ex.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", ex.Dropped)
	}
	if conv.Len() != prev-2 {
		t.Errorf("Len() = %d, want %d", conv.Len(), prev-2)
	}

	// The one-shot trim removed the system turn and the first user turn,
	// leaving a buffer that is still over the threshold.
	turns := conv.Turns()
	if turns[0].Role != types.RoleAssistant {
		t.Errorf("head role = %s, want assistant", turns[0].Role)
	}
	remaining, _ := newWordEstimator().EstimateTokens(turns, DefaultModel)
	if remaining <= 50 {
		t.Errorf("remaining estimate = %d, one-shot trim should leave it over the threshold", remaining)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warn count = %d, want 1", len(logger.warns))
	}
}

func TestSubmit_PreserveSystem(t *testing.T) {
	cfg := Config{
		SystemPrompt: "sys",
		Truncation:   Truncator{Threshold: 10, DropCount: 2, PreserveSystem: true},
	}
	conv := newTestConversation(t, cfg, &fakeCompleter{})

	ex, err := conv.Submit(context.Background(), "hello there friend")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if ex.Dropped != 2 {
		t.Fatalf("Dropped = %d, want 2", ex.Dropped)
	}
	turns := conv.Turns()
	if len(turns) != 1 || turns[0].Role != types.RoleSystem {
		t.Errorf("Turns() = %+v, want only the system turn", turns)
	}
}

func TestSubmit_ProviderError(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name    string
		opts    []Option
		wantLen int
	}{
		{
			name:    "orphaned user turn kept",
			wantLen: 2,
		},
		{
			name:    "rollback removes user turn",
			opts:    []Option{WithRollbackOnError()},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			opts := append([]Option{WithLogger(logger)}, tt.opts...)
			conv := newTestConversation(t, Config{}, &fakeCompleter{err: transportErr}, opts...)

			ex, err := conv.Submit(context.Background(), "Hi")
			if err != transportErr {
				t.Fatalf("Submit() error = %v, want the provider error unchanged", err)
			}
			if ex != nil {
				t.Errorf("Submit() exchange = %+v, want nil", ex)
			}
			if conv.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", conv.Len(), tt.wantLen)
			}
			if tt.wantLen == 2 {
				last := conv.Turns()[1]
				if last.Role != types.RoleUser || last.Content != "Hi" {
					t.Errorf("last turn = %+v, want the user turn", last)
				}
			}
			if len(logger.errors) != 1 {
				t.Errorf("error log count = %d, want 1", len(logger.errors))
			}
		})
	}
}

// failingEstimator succeeds for the first ok calls and fails afterwards.
type failingEstimator struct {
	ok    int
	calls int
	err   error
}

func (f *failingEstimator) EstimateTokens(turns []types.Turn, model string) (int, error) {
	f.calls++
	if f.calls > f.ok {
		return 0, f.err
	}
	return len(turns), nil
}

func TestSubmit_EstimateErrorKeepsReply(t *testing.T) {
	estimateErr := errors.New("encoder unavailable")
	logger := &recordingLogger{}
	conv, err := New(Config{}, &fakeCompleter{replies: []string{"Hello!"}}, &failingEstimator{ok: 1, err: estimateErr}, WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ex, err := conv.Submit(context.Background(), "Hi")
	if !errors.Is(err, estimateErr) {
		t.Fatalf("Submit() error = %v, want the estimate error", err)
	}
	if ex == nil || ex.Reply != "Hello!" || ex.Tokens != 0 || ex.Truncated() {
		t.Fatalf("Submit() exchange = %+v, want the reply with zero tokens", ex)
	}
	if conv.Len() != 3 {
		t.Errorf("Len() = %d, want 3 with the reply kept", conv.Len())
	}
	if last := conv.Turns()[2]; last.Role != types.RoleAssistant || last.Content != "Hello!" {
		t.Errorf("last turn = %+v, want the assistant reply", last)
	}
	if len(logger.errors) != 1 {
		t.Errorf("error log count = %d, want 1", len(logger.errors))
	}
}

func TestTurns_ReturnsCopy(t *testing.T) {
	conv := newTestConversation(t, Config{}, &fakeCompleter{})

	turns := conv.Turns()
	turns[0].Content = "mutated"

	if conv.Turns()[0].Content != DefaultSystemPrompt {
		t.Error("mutating Turns() result changed the buffer")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }, wantErr: true},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -0.1 }, wantErr: true},
		{name: "zero threshold", mutate: func(c *Config) { c.Truncation.Threshold = 0 }, wantErr: true},
		{name: "negative drop count", mutate: func(c *Config) { c.Truncation.DropCount = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
