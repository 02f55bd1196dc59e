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

// Package staging builds output in a temporary file collocated with the
// destination directory and commits it with a single atomic rename. The
// destination path is mutated exactly once, or not at all; every abort
// path removes the staging file before returning.
package staging

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/linerc/pkg/encoding"
	"gitlab.com/tozd/go/errors"
)

// 🤝 ConflictResolver is the capability the writer blocks on when the
// destination already exists at commit time. Implementations are
// injected by the caller (an interactive console, a scripted test, a
// batch policy).
type ConflictResolver interface {
	// ConfirmOverwrite asks whether the existing file at path may be
	// replaced.
	ConfirmOverwrite(ctx context.Context, path string) (bool, error)
	// ChooseAlternateDestination supplies a new destination path after a
	// declined overwrite. ok=false cancels the operation.
	ChooseAlternateDestination(ctx context.Context) (path string, ok bool, err error)
}

// 📝 Writer owns exactly one staging file for its lifetime. The file is
// released (deleted) on any abort path and transferred (renamed) on
// success, never both.
type Writer struct {
	dest    string
	file    *os.File
	encoded io.WriteCloser
	done    bool
}

// New creates a staging file in the directory of dest. Output lines are
// encoded with codec, matching the encoding detected for the input.
// Placing the staging file next to the destination keeps the final
// rename on a single filesystem, which is what makes it atomic.
func New(ctx context.Context, dest string, codec encoding.Codec) (*Writer, error) {
	dir := filepath.Dir(dest)

	f, err := os.CreateTemp(dir, ".linerc-*.tmp")
	if err != nil {
		return nil, errors.Errorf("creating staging file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("staging", f.Name()).
		Str("dest", dest).
		Str("encoding", codec.Name()).
		Msg("staging file created")

	return &Writer{
		dest:    dest,
		file:    f,
		encoded: codec.Writer(f),
	}, nil
}

// StagingPath returns the path of the staging file. Useful for logging;
// the file disappears once the writer is committed or discarded.
func (w *Writer) StagingPath() string {
	return w.file.Name()
}

// Append writes one output line. The trailing newline is emitted only
// when the original line carried one, so the last line of a file without
// a terminal newline round-trips faithfully.
func (w *Writer) Append(content string, newline bool) error {
	if w.done {
		return errors.Errorf("append on a finished staging writer")
	}
	if newline {
		content += "\n"
	}
	if _, err := io.WriteString(w.encoded, content); err != nil {
		w.discard()
		return errors.Errorf("writing staging file: %w", err)
	}
	return nil
}

// Commit makes the staged content visible at the destination path via a
// single os.Rename. If the destination already exists the resolver is
// consulted; a declined overwrite retries the protocol against an
// alternate path or cancels. Commit returns the committed path, or ""
// when the operation was cancelled. On any error the staging file is
// removed before the error propagates.
func (w *Writer) Commit(ctx context.Context, resolver ConflictResolver) (string, error) {
	logger := zerolog.Ctx(ctx)

	if w.done {
		return "", errors.Errorf("commit on a finished staging writer")
	}

	// Flush the encoder and close the file before the rename; a rename
	// of an open-but-buffered file would commit truncated content.
	if err := w.encoded.Close(); err != nil {
		w.discard()
		return "", errors.Errorf("flushing staging file: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.discard()
		return "", errors.Errorf("syncing staging file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		w.discard()
		return "", errors.Errorf("closing staging file: %w", err)
	}

	dest := w.dest
	for {
		_, err := os.Stat(dest)
		switch {
		case err == nil:
			overwrite, err := resolver.ConfirmOverwrite(ctx, dest)
			if err != nil {
				w.discard()
				return "", errors.Errorf("confirming overwrite: %w", err)
			}
			if !overwrite {
				alt, ok, err := resolver.ChooseAlternateDestination(ctx)
				if err != nil {
					w.discard()
					return "", errors.Errorf("choosing alternate destination: %w", err)
				}
				if !ok {
					logger.Debug().Str("staging", w.file.Name()).Msg("commit cancelled, staging file removed")
					w.discard()
					return "", nil
				}
				// Retry the commit protocol against the new path.
				dest = alt
				continue
			}
		case !errors.Is(err, fs.ErrNotExist):
			w.discard()
			return "", errors.Errorf("checking destination: %w", err)
		}

		// Sole mutation point. The rename replaces any prior content in
		// one step; there is no window where the destination is absent
		// or truncated.
		if err := os.Rename(w.file.Name(), dest); err != nil {
			w.discard()
			return "", errors.Errorf("renaming staging file to destination: %w", err)
		}

		w.done = true
		logger.Debug().Str("dest", dest).Msg("staging file committed")
		return dest, nil
	}
}

// Discard removes the staging file without committing. It is safe to
// call after Commit or a failed Append; the writer only cleans up once.
func (w *Writer) Discard() error {
	if w.done {
		return nil
	}
	w.discard()
	return nil
}

func (w *Writer) discard() {
	w.done = true
	w.encoded.Close()
	w.file.Close()
	os.Remove(w.file.Name())
}
