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

// Package log renders transform runs as aligned, colored console lines
// on top of structured zerolog output.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	pathWidth      = 35 // Base width for file paths
	transformWidth = 18 // Width for the transform name
)

// 🎯 RunOperation represents one finished transform run for logging
type RunOperation struct {
	Input        string // Input file path
	Output       string // Committed output path ("" when cancelled)
	Transform    string // Transform description
	LinesRead    uint   // Lines read from the input
	LinesWritten uint   // Lines written to the output
	Cancelled    bool   // Whether the run was cancelled at a prompt
	Err          error  // Failure, if any
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	runs    []RunOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
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

// 📝 formatRunOperation formats a run for display
func (l *Logger) formatRunOperation(op RunOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.Err != nil:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.Cancelled:
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	path := op.Input
	if len(path) > pathWidth {
		path = "..." + path[len(path)-pathWidth+3:]
	}

	line := fmt.Sprintf("%s %-*s %-*s",
		color.New(symbolColor).Sprint(string(symbol)),
		pathWidth, path,
		transformWidth, op.Transform,
	)

	switch {
	case op.Err != nil:
		line += color.New(color.FgRed).Sprintf(" error: %v", op.Err)
	case op.Cancelled:
		line += color.New(color.FgYellow).Sprint(" cancelled")
	default:
		line += fmt.Sprintf(" %d read, %d written -> %s", op.LinesRead, op.LinesWritten, op.Output)
	}
	return line
}

// 📝 LogRun records and prints a finished run
func (l *Logger) LogRun(op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.runs = append(l.runs, op)
	fmt.Fprintln(l.console, l.formatRunOperation(op))

	evt := l.zlog.Info().
		Str("input", op.Input).
		Str("transform", op.Transform).
		Uint("lines_read", op.LinesRead).
		Uint("lines_written", op.LinesWritten).
		Bool("cancelled", op.Cancelled)
	if op.Err != nil {
		evt = evt.Err(op.Err)
	}
	evt.Msg("run finished")
}

// 📊 Summary prints a closing line over all recorded runs
func (l *Logger) Summary() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var committed, cancelled, failed int
	for _, op := range l.runs {
		switch {
		case op.Err != nil:
			failed++
		case op.Cancelled:
			cancelled++
		default:
			committed++
		}
	}
	fmt.Fprintf(l.console, "\n%d committed, %d cancelled, %d failed\n", committed, cancelled, failed)
}

// Runs returns a copy of the recorded runs.
func (l *Logger) Runs() []RunOperation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RunOperation, len(l.runs))
	copy(out, l.runs)
	return out
}
