// Package testutil provides test doubles shared by the chatweet packages.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chatweet/chatweet/conversation"
	"github.com/chatweet/chatweet/types"
)

// Call records one Complete invocation.
type Call struct {
	Turns       []types.Turn
	Model       string
	Temperature float64
}

// FakeCompleter returns scripted replies and records every call. It is safe
// for concurrent use.
type FakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []Call

	// Reply computes the reply when no scripted replies remain. Default:
	// echoes the last turn's content.
	Reply func(turns []types.Turn) string
}

// NewFakeCompleter creates a FakeCompleter returning replies in order.
func NewFakeCompleter(replies ...string) *FakeCompleter {
	return &FakeCompleter{replies: replies}
}

// FailWith makes every following call return err.
func (f *FakeCompleter) FailWith(err error) *FakeCompleter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Complete implements conversation.Completer.
func (f *FakeCompleter) Complete(ctx context.Context, turns []types.Turn, model string, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{
		Turns:       types.CloneTurns(turns),
		Model:       model,
		Temperature: temperature,
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) > 0 {
		reply := f.replies[0]
		f.replies = f.replies[1:]
		return reply, nil
	}
	if f.Reply != nil {
		return f.Reply(turns), nil
	}
	if len(turns) == 0 {
		return "", nil
	}
	return fmt.Sprintf("echo: %s", turns[len(turns)-1].Content), nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeCompleter) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// WordEncoder counts whitespace-separated words, one token each.
type WordEncoder struct{}

// Count implements conversation.Encoder.
func (WordEncoder) Count(text string) int {
	return len(strings.Fields(text))
}

// StaticRegistry resolves every model to the same encoder.
type StaticRegistry struct {
	Encoder conversation.Encoder
}

// EncoderFor implements conversation.EncoderRegistry.
func (r StaticRegistry) EncoderFor(string) (conversation.Encoder, error) {
	if r.Encoder == nil {
		return WordEncoder{}, nil
	}
	return r.Encoder, nil
}

// NewWordEstimator returns an Estimator that counts words.
func NewWordEstimator() *conversation.Estimator {
	return conversation.NewEstimator(StaticRegistry{Encoder: WordEncoder{}})
}

// Entry is one recorded log line.
type Entry struct {
	Level   string
	Message string
	Args    []any
}

// RecordingLogger keeps every log line in memory. It is safe for concurrent
// use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Args: args})
}

// Debug records a debug line.
func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }

// Info records an info line.
func (l *RecordingLogger) Info(msg string, args ...any) { l.record("info", msg, args) }

// Warn records a warn line.
func (l *RecordingLogger) Warn(msg string, args ...any) { l.record("warn", msg, args) }

// Error records an error line.
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

// Entries returns the recorded lines at level, or all lines when level is
// empty.
func (l *RecordingLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
