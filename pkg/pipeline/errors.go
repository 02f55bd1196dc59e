package pipeline

import (
	"io/fs"
	"syscall"

	"github.com/walteh/linerc/pkg/encoding"
	"gitlab.com/tozd/go/errors"
)

// 🚨 Error taxonomy. The pipeline never retries; it classifies the
// failure, guarantees the filesystem is back to its pre-call state, and
// propagates. All retry decisions belong to the interactive layer.
var (
	// ErrNotFound: the input path does not exist or vanished mid-read.
	ErrNotFound = errors.New("input file not found")
	// ErrPermission: read or write access was refused.
	ErrPermission = errors.New("permission denied")
	// ErrIsDirectory: the candidate path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
	// ErrDecode: the input could not be decoded, either because every
	// probe candidate failed or because a later byte sequence was
	// invalid under the probed encoding.
	ErrDecode = errors.New("could not decode input")
)

// classify wraps err with the matching taxonomy sentinel so callers can
// dispatch with errors.Is. Unrecognized failures (disk full, rename
// across filesystems, ...) pass through unclassified.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return errors.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.Errorf("%w: %w", ErrPermission, err)
	case errors.Is(err, syscall.EISDIR):
		return errors.Errorf("%w: %w", ErrIsDirectory, err)
	case encoding.IsDecodeError(err):
		return errors.Errorf("%w: %w", ErrDecode, err)
	default:
		return err
	}
}
