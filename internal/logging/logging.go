// Package logging adapts zerolog to the key/value Logger interface that the
// conversation, tokenizer, provider and HTTP packages accept.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger writes leveled, structured log lines through zerolog.
type Logger struct {
	zl zerolog.Logger
}

// Options configures New.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Default: info.
	Level string

	// Format is FormatConsole or FormatJSON. Default: console.
	Format string

	// Output receives log lines. Default: os.Stderr.
	Output io.Writer

	// Component is added to every line as the "component" field when set.
	Component string
}

// New creates a Logger from opts.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch opts.Format {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return &Logger{zl: ctx.Logger()}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// With returns a child Logger that adds args to every line.
func (l *Logger) With(args ...any) *Logger {
	ctx := l.zl.With()
	forEachPair(args, func(key string, value any) {
		if err, ok := value.(error); ok {
			ctx = ctx.AnErr(key, err)
			return
		}
		ctx = ctx.Interface(key, value)
	})
	return &Logger{zl: ctx.Logger()}
}

// Debug logs msg at debug level with key/value args.
func (l *Logger) Debug(msg string, args ...any) { l.log(l.zl.Debug(), msg, args) }

// Info logs msg at info level with key/value args.
func (l *Logger) Info(msg string, args ...any) { l.log(l.zl.Info(), msg, args) }

// Warn logs msg at warn level with key/value args.
func (l *Logger) Warn(msg string, args ...any) { l.log(l.zl.Warn(), msg, args) }

// Error logs msg at error level with key/value args.
func (l *Logger) Error(msg string, args ...any) { l.log(l.zl.Error(), msg, args) }

func (l *Logger) log(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	forEachPair(args, func(key string, value any) {
		switch v := value.(type) {
		case error:
			event = event.AnErr(key, v)
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case bool:
			event = event.Bool(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	})
	event.Msg(msg)
}

// forEachPair walks args as alternating keys and values. Non-string keys are
// formatted with %v; a trailing key without a value gets "!MISSING".
func forEachPair(args []any, fn func(key string, value any)) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fn(key, "!MISSING")
			return
		}
		fn(key, args[i+1])
	}
}
