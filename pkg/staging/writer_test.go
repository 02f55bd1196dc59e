package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/linerc/pkg/encoding"
	"github.com/walteh/linerc/pkg/prompt"
)

func utf8Codec(t *testing.T) encoding.Codec {
	t.Helper()
	c, err := encoding.Lookup("utf-8")
	require.NoError(t, err)
	return c
}

// stagingArtifacts lists leftover staging files in dir.
func stagingArtifacts(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".linerc-*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestCommitToFreshDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	ctx := context.Background()

	w, err := New(ctx, dest, utf8Codec(t))
	require.NoError(t, err)
	require.NoError(t, w.Append("first", true))
	require.NoError(t, w.Append("second", false))

	committed, err := w.Commit(ctx, &prompt.Script{})
	require.NoError(t, err)
	assert.Equal(t, dest, committed)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", string(content))
	assert.Empty(t, stagingArtifacts(t, dir), "no staging file may remain after commit")
}

func TestCommitOverwriteNegotiation(t *testing.T) {
	tests := []struct {
		name          string
		script        *prompt.Script
		wantCommitted string // "" means cancelled; relative to temp dir
		wantDestText  string // expected content of the original dest afterwards
	}{
		{
			name:          "overwrite_confirmed_replaces_existing",
			script:        &prompt.Script{OverwriteAnswers: []bool{true}},
			wantCommitted: "out.txt",
			wantDestText:  "staged\n",
		},
		{
			name: "declined_with_alternate_commits_to_new_path",
			script: &prompt.Script{
				OverwriteAnswers: []bool{false},
				AlternatePaths:   []string{"other.txt"},
			},
			wantCommitted: "other.txt",
			wantDestText:  "existing\n",
		},
		{
			name:          "declined_then_cancelled_leaves_destination_untouched",
			script:        &prompt.Script{OverwriteAnswers: []bool{false}},
			wantCommitted: "",
			wantDestText:  "existing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "out.txt")
			require.NoError(t, os.WriteFile(dest, []byte("existing\n"), 0644))
			ctx := context.Background()

			// Alternate paths in the script are relative; anchor them.
			for i, p := range tt.script.AlternatePaths {
				tt.script.AlternatePaths[i] = filepath.Join(dir, p)
			}

			w, err := New(ctx, dest, utf8Codec(t))
			require.NoError(t, err)
			require.NoError(t, w.Append("staged", true))

			committed, err := w.Commit(ctx, tt.script)
			require.NoError(t, err)

			if tt.wantCommitted == "" {
				assert.Empty(t, committed, "cancelled commit returns no path")
			} else {
				want := filepath.Join(dir, tt.wantCommitted)
				assert.Equal(t, want, committed)
				got, err := os.ReadFile(want)
				require.NoError(t, err)
				assert.Equal(t, "staged\n", string(got))
			}

			destContent, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDestText, string(destContent))
			assert.Empty(t, stagingArtifacts(t, dir), "no staging file may remain")
		})
	}
}

func TestCommitRetriesProtocolAgainstAlternatePath(t *testing.T) {
	// The alternate destination also exists, so the overwrite question is
	// asked again for the new path.
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	alt := filepath.Join(dir, "alt.txt")
	require.NoError(t, os.WriteFile(dest, []byte("one\n"), 0644))
	require.NoError(t, os.WriteFile(alt, []byte("two\n"), 0644))
	ctx := context.Background()

	w, err := New(ctx, dest, utf8Codec(t))
	require.NoError(t, err)
	require.NoError(t, w.Append("staged", true))

	script := &prompt.Script{
		OverwriteAnswers: []bool{false, true},
		AlternatePaths:   []string{alt},
	}
	committed, err := w.Commit(ctx, script)
	require.NoError(t, err)
	assert.Equal(t, alt, committed)

	got, err := os.ReadFile(alt)
	require.NoError(t, err)
	assert.Equal(t, "staged\n", string(got))

	original, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(original), "original destination stays untouched")
}

func TestDiscardRemovesStagingFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	w, err := New(ctx, filepath.Join(dir, "out.txt"), utf8Codec(t))
	require.NoError(t, err)
	require.NoError(t, w.Append("partial", true))
	staged := w.StagingPath()

	require.NoError(t, w.Discard())
	assert.NoFileExists(t, staged)
	assert.Empty(t, stagingArtifacts(t, dir))

	// Discard is idempotent and blocks further use.
	require.NoError(t, w.Discard())
	assert.Error(t, w.Append("late", true))
	_, err = w.Commit(ctx, &prompt.Script{})
	assert.Error(t, err)
}

func TestCommitEncodesOutput(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	ctx := context.Background()

	c, err := encoding.Lookup("windows-1252")
	require.NoError(t, err)

	w, err := New(ctx, dest, c)
	require.NoError(t, err)
	require.NoError(t, w.Append("café", true))

	_, err = w.Commit(ctx, &prompt.Script{})
	require.NoError(t, err)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\xe9\n"), raw, "output uses the input's encoding")
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "no-such-dir", "out.txt"), utf8Codec(t))
	require.Error(t, err)
}
