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

package pipeline

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/linerc/pkg/encoding"
	"github.com/walteh/linerc/pkg/staging"
	"github.com/walteh/linerc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// 🤝 Prompter is the full capability set a run may block on. Commit
// conflicts and the reverse pipeline's whole-file-load confirmation
// suspend execution until the collaborator answers; there is no timeout.
type Prompter interface {
	staging.ConflictResolver
	// ConfirmWholeFileLoad asks whether the input may be materialized in
	// memory. Only the reverse pipeline consults it, before any memory
	// or filesystem resource is committed.
	ConfirmWholeFileLoad(ctx context.Context) (bool, error)
}

// 🔧 Options parameterizes one pipeline run.
type Options struct {
	// InputPath is the file to read.
	InputPath string
	// DestPath is the intended output path; the commit protocol may
	// negotiate a different final path.
	DestPath string
	// Codec is the encoding detected for the input, used for both
	// decoding and encoding.
	Codec encoding.Codec
	// Spec is the transform to apply.
	Spec transform.Spec
	// Prompter supplies the blocking interactive decisions.
	Prompter Prompter
}

// 📊 Result summarizes a finished run. CommittedPath is empty when the
// operation was cancelled at a decision point; cancellation is a
// designed outcome, not an error.
type Result struct {
	LinesRead     uint
	LinesWritten  uint
	CommittedPath string
}

// Committed reports whether output was made visible at a destination.
func (r Result) Committed() bool {
	return r.CommittedPath != ""
}

// line pairs content with whether the raw line carried a trailing
// newline, so an identity run reproduces newline placement exactly.
type line struct {
	content string
	newline bool
}

// Run executes the transform. Streamable transforms go through the
// streaming pipeline; line reversal, which inherently needs the whole
// file, goes through the reverse pipeline.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Prompter == nil {
		return Result{}, errors.Errorf("prompter is required")
	}
	if err := opts.Spec.Validate(); err != nil {
		return Result{}, errors.Errorf("validating transform spec: %w", err)
	}

	if opts.Spec.Streamable() {
		return runStreaming(ctx, opts)
	}
	return runReverse(ctx, opts)
}

// runStreaming reads the input one line at a time and streams
// transformed lines to the staging writer, never holding the file in
// memory.
func runStreaming(ctx context.Context, opts Options) (Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("input", opts.InputPath).
		Str("dest", opts.DestPath).
		Stringer("transform", opts.Spec).
		Msg("starting streaming run")

	src, err := os.Open(opts.InputPath)
	if err != nil {
		return Result{}, classify(errors.Errorf("opening input: %w", err))
	}
	defer src.Close()

	sw, err := staging.New(ctx, opts.DestPath, opts.Codec)
	if err != nil {
		return Result{}, classify(err)
	}

	res := Result{}
	reader := bufio.NewReader(opts.Codec.Reader(src))
	ordinal := 0
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			res.LinesRead++
			ln := parseRaw(raw)
			out := opts.Spec.Apply(ln.content, ordinal)
			ordinal++
			if !out.Omitted {
				if err := sw.Append(out.Content, ln.newline); err != nil {
					return Result{}, classify(err)
				}
				res.LinesWritten++
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// Mid-stream failure: the staging file must not outlive the
			// error.
			sw.Discard()
			return Result{}, classify(errors.Errorf("reading input: %w", err))
		}
	}

	committed, err := sw.Commit(ctx, opts.Prompter)
	if err != nil {
		return Result{}, classify(err)
	}
	res.CommittedPath = committed
	return res, nil
}

// runReverse materializes all input lines, which the streaming principle
// otherwise forbids; the collaborator must confirm before any memory is
// committed. Ordinals are assigned in original file order before
// reversal, so numbering combined with reversal numbers by original
// position.
func runReverse(ctx context.Context, opts Options) (Result, error) {
	logger := zerolog.Ctx(ctx)

	ok, err := opts.Prompter.ConfirmWholeFileLoad(ctx)
	if err != nil {
		return Result{}, errors.Errorf("confirming whole-file load: %w", err)
	}
	if !ok {
		logger.Debug().Str("input", opts.InputPath).Msg("whole-file load declined, run aborted")
		return Result{}, nil
	}

	src, err := os.Open(opts.InputPath)
	if err != nil {
		return Result{}, classify(errors.Errorf("opening input: %w", err))
	}
	defer src.Close()

	var out []line
	res := Result{}
	reader := bufio.NewReader(opts.Codec.Reader(src))
	ordinal := 0
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			res.LinesRead++
			ln := parseRaw(raw)
			t := opts.Spec.Apply(ln.content, ordinal)
			ordinal++
			if !t.Omitted {
				out = append(out, line{content: t.Content, newline: ln.newline})
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, classify(errors.Errorf("reading input: %w", err))
		}
	}

	sw, err := staging.New(ctx, opts.DestPath, opts.Codec)
	if err != nil {
		return Result{}, classify(err)
	}
	for i := len(out) - 1; i >= 0; i-- {
		if err := sw.Append(out[i].content, out[i].newline); err != nil {
			return Result{}, classify(err)
		}
		res.LinesWritten++
	}

	committed, err := sw.Commit(ctx, opts.Prompter)
	if err != nil {
		return Result{}, classify(err)
	}
	res.CommittedPath = committed
	return res, nil
}

// parseRaw splits a raw decoded line into content and newline flag.
// CRLF terminators normalize to a bare newline flag, matching the
// text-mode behavior of the original tool.
func parseRaw(raw string) line {
	newline := strings.HasSuffix(raw, "\n")
	content := strings.TrimSuffix(raw, "\n")
	content = strings.TrimSuffix(content, "\r")
	return line{content: content, newline: newline}
}
