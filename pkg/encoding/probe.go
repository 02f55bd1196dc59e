// Package encoding detects which text encoding successfully decodes an
// input file, trying an ordered list of candidates and settling on the
// first one that can decode at least a full line.
package encoding

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNoEncoding is returned by Probe when every candidate failed to
// decode the input.
var ErrNoEncoding = errors.New("no candidate encoding decoded the input")

// 🔍 Probe tries each candidate codec in priority order against the file
// at path and returns the first one that decodes a full line without
// error. Only decode failures advance to the next candidate; any other
// error (missing file, permission, directory) propagates immediately.
//
// The probe validates one line only. The main pass re-decodes the whole
// file with the returned codec, so a later invalid byte sequence still
// fails mid-stream.
func Probe(ctx context.Context, path string, candidates []Codec) (Codec, error) {
	logger := zerolog.Ctx(ctx)

	if len(candidates) == 0 {
		return Codec{}, errors.Errorf("no candidate encodings supplied")
	}

	for _, c := range candidates {
		ok, err := probeOne(path, c)
		if err != nil {
			return Codec{}, err
		}
		if ok {
			logger.Debug().Str("path", path).Str("encoding", c.Name()).Msg("encoding probe succeeded")
			return c, nil
		}
		logger.Debug().Str("path", path).Str("encoding", c.Name()).Msg("candidate encoding rejected")
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name()
	}
	return Codec{}, errors.Errorf("%w: tried %s", ErrNoEncoding, strings.Join(names, ", "))
}

// probeOne reads a single line through the codec's decoder. It reports
// (false, nil) on a decode failure and (false, err) on any other error.
func probeOne(path string, c Codec) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Errorf("opening input for probe: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(c.Reader(f))
	_, err = r.ReadString('\n')
	if err == nil || err == io.EOF {
		// An empty file or a terminal unterminated line both count as a
		// successful decode.
		return true, nil
	}
	if IsDecodeError(err) {
		return false, nil
	}
	return false, errors.Errorf("probing %s under %s: %w", path, c.Name(), err)
}
