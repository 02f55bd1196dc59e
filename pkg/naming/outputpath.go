// Package naming derives suggested output paths from input paths.
package naming

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to the input's base name when no suffix is
// configured.
const DefaultSuffix = "_modified"

// SuggestOutputPath proposes a destination next to the input file:
// /path/file.txt becomes /path/file_modified.txt. Inputs without an
// extension get ".txt" so the suggestion is always openable as text.
func SuggestOutputPath(inputPath, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".txt"
	}
	return filepath.Join(dir, stem+suffix+ext)
}

// ExpandPath expands environment variables and a leading tilde in a
// user-supplied path. Everything else passes through verbatim; path
// answers are case-preserving.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
