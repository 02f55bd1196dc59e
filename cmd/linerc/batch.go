package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/linerc/pkg/batch"
	"github.com/walteh/linerc/pkg/config"
	"github.com/walteh/linerc/pkg/log"
	"github.com/walteh/linerc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

var (
	batchRoot        string
	batchOverwrite   bool
	batchConcurrency int
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <pattern>",
		Short: "Apply one transform to every file matching a glob",
		Long: `batch runs the same transform over every file matching a doublestar
glob (e.g. '**/*.txt'). Each file is written to its own derived
destination through the usual staged, atomic commit. Existing
destinations are skipped unless --overwrite is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), debug)
			ctx = log.NewContext(ctx, log.New(os.Stdout, zerolog.Ctx(ctx).GetLevel()))

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			candidates, err := cfg.Codecs()
			if err != nil {
				return errors.Errorf("resolving encodings: %w", err)
			}

			spec, err := batchSpec(cfg)
			if err != nil {
				return err
			}

			results, err := batch.Run(ctx, batch.Options{
				Root:         batchRoot,
				Pattern:      args[0],
				Spec:         spec,
				Candidates:   candidates,
				OutputSuffix: cfg.OutputSuffix,
				Overwrite:    batchOverwrite,
				Concurrency:  batchConcurrency,
			})
			if err != nil {
				return err
			}

			reporter := log.FromContext(ctx)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
				reporter.LogRun(log.RunOperation{
					Input:        r.Input,
					Output:       r.Result.CommittedPath,
					Transform:    spec.String(),
					LinesRead:    r.Result.LinesRead,
					LinesWritten: r.Result.LinesWritten,
					Cancelled:    r.Err == nil && !r.Result.Committed(),
					Err:          r.Err,
				})
			}
			reporter.Summary()

			if failed > 0 {
				return errors.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&batchRoot, "root", ".", "directory the pattern is matched under")
	cmd.Flags().BoolVar(&batchOverwrite, "overwrite", false, "overwrite existing destinations")
	cmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of files processed in parallel")
	cmd.Flags().StringVarP(&transformName, "transform", "t", "", "transform to apply")
	cmd.Flags().StringVar(&presetName, "preset", "", "named preset from the config file")
	cmd.Flags().StringVar(&targetText, "target", "", "text to replace (replace transform)")
	cmd.Flags().StringVar(&replacement, "replacement", "", "replacement text (replace transform)")

	return cmd
}

// batchSpec resolves the transform for a batch run. Batch mode has no
// menu: a preset or an explicit transform is required.
func batchSpec(cfg *config.Config) (transform.Spec, error) {
	if presetName != "" {
		preset, err := cfg.Preset(presetName)
		if err != nil {
			return transform.Spec{}, err
		}
		return preset.Spec()
	}
	if transformName == "" {
		return transform.Spec{}, errors.Errorf("batch mode requires --transform or --preset")
	}
	kind, err := transform.ParseKind(transformName)
	if err != nil {
		return transform.Spec{}, err
	}
	spec := transform.Spec{Kind: kind}
	if kind == transform.KindReplace {
		spec.Target = targetText
		spec.Replacement = replacement
	}
	if kind == transform.KindReverseLines {
		pterm.Warning.Println("Reverse lines loads each matched file into memory.")
	}
	return spec, nil
}
