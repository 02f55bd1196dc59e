// Package batch applies one transform across every file matching a
// glob. Each file goes through its own pipeline run with its own
// destination, so the single-destination model of a run is preserved;
// only distinct destinations proceed concurrently.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/linerc/pkg/encoding"
	"github.com/walteh/linerc/pkg/naming"
	"github.com/walteh/linerc/pkg/pipeline"
	"github.com/walteh/linerc/pkg/prompt"
	"github.com/walteh/linerc/pkg/transform"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options parameterizes a batch run.
type Options struct {
	// Root is the directory the pattern is matched under.
	Root string
	// Pattern is a doublestar glob, relative to Root.
	Pattern string
	// Spec is the transform applied to every matched file.
	Spec transform.Spec
	// Candidates is the encoding probe order.
	Candidates []encoding.Codec
	// OutputSuffix derives each destination from its input.
	OutputSuffix string
	// Overwrite controls whether existing destinations are replaced;
	// declining cancels that file's run.
	Overwrite bool
	// Concurrency bounds parallel runs; <= 0 means sequential.
	Concurrency int
}

// 📄 FileResult pairs one matched file with its run outcome. Err is set
// when the run failed; Result.CommittedPath is empty when it was
// cancelled by the overwrite policy.
type FileResult struct {
	Input  string
	Result pipeline.Result
	Err    error
}

// Run matches the pattern and pushes every file through a pipeline run.
// Per-file failures are recorded, not fatal: the remaining files still
// run, and the caller decides what a partial batch means.
func Run(ctx context.Context, opts Options) ([]FileResult, error) {
	logger := zerolog.Ctx(ctx)

	if opts.Pattern == "" {
		return nil, errors.Errorf("pattern is required")
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if len(opts.Candidates) == 0 {
		opts.Candidates = encoding.DefaultCandidates()
	}

	matches, err := doublestar.Glob(os.DirFS(opts.Root), opts.Pattern)
	if err != nil {
		return nil, errors.Errorf("matching pattern %q: %w", opts.Pattern, err)
	}
	sort.Strings(matches)

	var inputs []string
	for _, m := range matches {
		abs := filepath.Join(opts.Root, filepath.FromSlash(m))
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Errorf("inspecting match %q: %w", abs, err)
		}
		if info.IsDir() {
			continue
		}
		if isDerivedOutput(abs, opts.OutputSuffix) {
			// Re-running a batch should not transform its own outputs.
			continue
		}
		inputs = append(inputs, abs)
	}

	logger.Debug().Int("files", len(inputs)).Str("pattern", opts.Pattern).Msg("batch matched files")

	results := make([]FileResult, len(inputs))
	policy := prompt.Policy{Overwrite: opts.Overwrite}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	} else {
		g.SetLimit(1)
	}

	var mu sync.Mutex
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			res, err := runOne(gctx, input, policy, opts)
			mu.Lock()
			results[i] = FileResult{Input: input, Result: res, Err: err}
			mu.Unlock()
			// Per-file errors are reported in results, never returned,
			// so one bad file does not cancel the group.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("running batch: %w", err)
	}

	return results, nil
}

func runOne(ctx context.Context, input string, policy prompt.Policy, opts Options) (pipeline.Result, error) {
	codec, err := encoding.Probe(ctx, input, opts.Candidates)
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Run(ctx, pipeline.Options{
		InputPath: input,
		DestPath:  naming.SuggestOutputPath(input, opts.OutputSuffix),
		Codec:     codec,
		Spec:      opts.Spec,
		Prompter:  policy,
	})
}

// isDerivedOutput reports whether path already carries the output
// suffix on its stem.
func isDerivedOutput(path, suffix string) bool {
	if suffix == "" {
		suffix = naming.DefaultSuffix
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, suffix)
}
