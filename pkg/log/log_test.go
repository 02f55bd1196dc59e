package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLogRunFormatsOutcome(t *testing.T) {
	tests := []struct {
		name string
		op   RunOperation
		want []string
	}{
		{
			name: "committed_run_shows_counts_and_path",
			op: RunOperation{
				Input:        "notes.txt",
				Output:       "notes_modified.txt",
				Transform:    "uppercase",
				LinesRead:    10,
				LinesWritten: 10,
			},
			want: []string{"notes.txt", "uppercase", "10 read, 10 written", "notes_modified.txt"},
		},
		{
			name: "cancelled_run",
			op: RunOperation{
				Input:     "notes.txt",
				Transform: "identity",
				LinesRead: 3,
				Cancelled: true,
			},
			want: []string{"notes.txt", "cancelled"},
		},
		{
			name: "failed_run",
			op: RunOperation{
				Input:     "notes.txt",
				Transform: "replace",
				Err:       errors.New("disk full"),
			},
			want: []string{"notes.txt", "error", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			l := New(&console, zerolog.Disabled)
			l.LogRun(tt.op)
			for _, want := range tt.want {
				assert.Contains(t, console.String(), want)
			}
		})
	}
}

func TestSummaryCountsOutcomes(t *testing.T) {
	var console bytes.Buffer
	l := New(&console, zerolog.Disabled)

	l.LogRun(RunOperation{Input: "a.txt", Output: "a_modified.txt"})
	l.LogRun(RunOperation{Input: "b.txt", Cancelled: true})
	l.LogRun(RunOperation{Input: "c.txt", Err: errors.New("boom")})
	l.Summary()

	assert.Contains(t, console.String(), "1 committed, 1 cancelled, 1 failed")
	assert.Len(t, l.Runs(), 3)
}

func TestLongPathsAreTruncatedFromTheLeft(t *testing.T) {
	var console bytes.Buffer
	l := New(&console, zerolog.Disabled)
	l.LogRun(RunOperation{
		Input:  "/a/very/long/path/that/does/not/fit/in/the/column/notes.txt",
		Output: "out.txt",
	})
	assert.Contains(t, console.String(), "...")
	assert.Contains(t, console.String(), "notes.txt", "the informative tail of the path survives")
}

func TestContextRoundTrip(t *testing.T) {
	l := New(&bytes.Buffer{}, zerolog.Disabled)
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	require.Panics(t, func() { FromContext(context.Background()) })
}
