package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/linerc/pkg/prompt"
	"github.com/walteh/linerc/pkg/transform"
)

func TestRunClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) (input, dest string)
		wantErr error
	}{
		{
			name: "missing_input",
			setup: func(t *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope.txt"), filepath.Join(dir, "out.txt")
			},
			wantErr: ErrNotFound,
		},
		{
			name: "input_is_directory",
			setup: func(t *testing.T, dir string) (string, string) {
				sub := filepath.Join(dir, "subdir")
				require.NoError(t, os.Mkdir(sub, 0755))
				return sub, filepath.Join(dir, "out.txt")
			},
			wantErr: ErrIsDirectory,
		},
		{
			name: "unreadable_input",
			setup: func(t *testing.T, dir string) (string, string) {
				if os.Geteuid() == 0 {
					t.Skip("permission checks do not bind as root")
				}
				input := filepath.Join(dir, "locked.txt")
				require.NoError(t, os.WriteFile(input, []byte("secret\n"), 0000))
				return input, filepath.Join(dir, "out.txt")
			},
			wantErr: ErrPermission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input, dest := tt.setup(t, dir)

			_, err := Run(context.Background(), Options{
				InputPath: input,
				DestPath:  dest,
				Codec:     utf8Codec(t),
				Spec:      transform.Spec{Kind: transform.KindIdentity},
				Prompter:  &prompt.Script{},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, dest, "destination must stay untouched on failure")
		})
	}
}

func TestMidStreamDecodeFailureCleansStaging(t *testing.T) {
	// The probe only validates the first line; a later invalid byte
	// sequence fails mid-stream. The failure must remove the staging
	// file and leave the destination absent.
	dir := t.TempDir()
	input := filepath.Join(dir, "input.txt")
	body := append([]byte("a valid first line\n"), make([]byte, 8192)...)
	for i := range body[19:] {
		body[19+i] = 'x'
	}
	body = append(body, []byte("\nbroken \xff\xfe tail\n")...)
	require.NoError(t, os.WriteFile(input, body, 0644))
	dest := filepath.Join(dir, "out.txt")

	_, err := Run(context.Background(), Options{
		InputPath: input,
		DestPath:  dest,
		Codec:     utf8Codec(t),
		Spec:      transform.Spec{Kind: transform.KindIdentity},
		Prompter:  &prompt.Script{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the input may remain, no staging artifact, no destination")
	assert.Equal(t, "input.txt", entries[0].Name())
}

func TestClassifyPassesUnknownErrorsThrough(t *testing.T) {
	base := os.ErrClosed
	got := classify(base)
	assert.ErrorIs(t, got, os.ErrClosed)
	assert.NotErrorIs(t, got, ErrNotFound)
	assert.NotErrorIs(t, got, ErrDecode)
	assert.NoError(t, classify(nil))
}
