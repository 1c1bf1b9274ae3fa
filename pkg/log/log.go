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
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/sbu/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // Base width for the source path
	statusWidth = 12 // Width for status text
)

// 🎯 Logger pairs user-facing console output with structured zerolog output.
// File-operation lines and the run summary are shown at verbose level and
// above; warnings and errors honor the quiet setting.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	level   zerolog.Level
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing human output to console.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		level:   level,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileEntry formats a copy decision for display
func (l *Logger) formatFileEntry(e status.FileEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch e.Status {
	case status.StatusNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case status.StatusOverwritten:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case status.StatusUnchanged:
		symbol = '•'
		symbolColor = color.FgCyan
	case status.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	statusText := e.Status.String()
	if e.Pretend && e.Mutating() {
		statusText = "would copy"
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, e.Path),
		fmt.Sprintf("%-*s", statusWidth, statusText))
	if e.Reason != "" {
		line += " " + color.New(color.Faint).Sprint(e.Reason)
	}
	return line
}

// 📝 LogFileEntry logs one copy decision.
func (l *Logger) LogFileEntry(ctx context.Context, e status.FileEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level <= zerolog.InfoLevel {
		fmt.Fprintln(l.console, l.formatFileEntry(e))
	}

	evt := l.zlog.Info()
	if e.Status == status.StatusFailed {
		evt = l.zlog.Error().Err(e.Err)
	}
	evt.
		Str("source", e.Path).
		Str("target", e.Target).
		Str("status", e.Status.String()).
		Str("reason", e.Reason).
		Bool("pretend", e.Pretend).
		Msg("copy decision")
}

// 📝 Header prints the run header.
func (l *Logger) Header(destination string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= zerolog.InfoLevel {
		name := color.New(color.Bold, color.FgCyan).Sprint("sbu")
		fmt.Fprintf(l.console, "\n%s %s\n\n", name,
			color.New(color.Faint).Sprint("• backing up to "+destination))
	}
	l.zlog.Info().Str("destination", destination).Msg("starting backup")
}

// 📝 Summary prints the end-of-run counts.
func (l *Logger) Summary(s status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= zerolog.InfoLevel {
		fmt.Fprintf(l.console, "\n%s copied, %s unchanged, %s skipped, %s failed\n",
			color.New(color.FgGreen).Sprintf("%d", s.Copied),
			color.New(color.FgCyan).Sprintf("%d", s.Unchanged),
			color.New(color.FgYellow).Sprintf("%d", s.Skipped),
			color.New(color.FgRed).Sprintf("%d", s.Failed))
	}
	l.zlog.Info().
		Int("copied", s.Copied).
		Int("unchanged", s.Unchanged).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Msg("backup complete")
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= zerolog.InfoLevel {
		fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	}
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= zerolog.WarnLevel {
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	}
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
	if l.level <= zerolog.InfoLevel {
		fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	}
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
