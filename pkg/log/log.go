// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/scan"
	"github.com/walteh/rxscan/pkg/status"
)

// 🎯 Logger writes user facing output to a console and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	files   []status.FileInfo
}

// 🏭 New creates a new logger. Structured logs go to stderr at level.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// NewWithZerolog creates a logger that mirrors to an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or one that prints nothing
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return NewWithZerolog(io.Discard, zerolog.Nop())
	}
	return logger
}

// 🎯 NewContext adds the logger, and its zerolog logger, to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// Zerolog returns the structured logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 📝 LogFile prints one file outcome as a table row
func (l *Logger) LogFile(ctx context.Context, info status.FileInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = append(l.files, info)
	fmt.Fprintln(l.console, status.FormatFileLine(info))

	ev := l.zlog.Info()
	if info.Error != nil {
		ev = l.zlog.Error().Err(info.Error)
	}
	ev.Str("file", info.Path).
		Str("status", info.Status.String()).
		Int("matches", info.Matches).
		Strs("rules", info.Rules).
		Msg("file processed")
}

// 📊 Summary prints the status counts of every file logged so far
func (l *Logger) Summary() {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := map[status.FileStatus]int{}
	matches := 0
	for _, f := range l.files {
		counts[f.Status]++
		matches += f.Matches
	}

	var parts []string
	for _, st := range []status.FileStatus{status.StatusModified, status.StatusUnchanged, status.StatusRestored, status.StatusFailed} {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no files")
	}

	fmt.Fprintf(l.console, "\n%s %s\n",
		color.New(color.Bold).Sprint(strings.Join(parts, ", ")),
		color.New(color.Faint).Sprintf("• %d matches", matches))
	l.zlog.Info().
		Int("files", len(l.files)).
		Int("matches", matches).
		Msg("summary")
}

// 🧩 LogSegment prints a matched segment as "offset: src -> dst"; gaps are
// only logged at trace level
func (l *Logger) LogSegment(seg scan.Segment) {
	if !seg.Matched {
		l.zlog.Trace().Int("from", seg.FromSrc).Int("to", seg.ToSrc).Msg("gap")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.Faint).Sprintf("%d:", seg.FromSrc),
		color.New(color.FgRed).Sprintf("%q", seg.SrcText),
		color.New(color.Faint).Sprint("->"),
		color.New(color.FgGreen).Sprintf("%q", seg.DstText))
	l.zlog.Debug().
		Int("from_src", seg.FromSrc).
		Int("to_src", seg.ToSrc).
		Int("match_count", seg.MatchCount).
		Msg("match")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rxscan")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
