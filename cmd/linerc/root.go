package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/linerc/pkg/config"
	"github.com/walteh/linerc/pkg/encoding"
	"github.com/walteh/linerc/pkg/log"
	"github.com/walteh/linerc/pkg/naming"
	"github.com/walteh/linerc/pkg/pipeline"
	"github.com/walteh/linerc/pkg/prompt"
	"github.com/walteh/linerc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile    string
	debug         bool
	transformName string
	presetName    string
	targetText    string
	replacement   string
	outputPath    string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linerc [input-file]",
		Short: "Apply a line transformation to a text file and write the result atomically",
		Long: `linerc reads a text file, applies a chosen line transformation
(line numbers, case folding, blank-line removal, text replacement,
line reversal), and writes the result to a new file. Output is staged
in a temporary file next to the destination and committed with a
single atomic rename, so the original is never corrupted and no
half-written output is ever visible.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), debug)
			ctx = log.NewContext(ctx, log.New(os.Stdout, zerolog.Ctx(ctx).GetLevel()))
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if err := runInteractive(ctx, input); err != nil {
				reportError(err)
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".linerc", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVarP(&transformName, "transform", "t", "", "transform to apply (skips the menu)")
	cmd.Flags().StringVar(&presetName, "preset", "", "named preset from the config file")
	cmd.Flags().StringVar(&targetText, "target", "", "text to replace (replace transform)")
	cmd.Flags().StringVar(&replacement, "replacement", "", "replacement text (replace transform)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (skips the suggestion prompt)")
}

// runInteractive drives the original interactive flow: pick an input
// file, pick a transform, confirm the output path, run the pipeline.
func runInteractive(ctx context.Context, input string) error {
	logger := zerolog.Ctx(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	candidates, err := cfg.Codecs()
	if err != nil {
		return errors.Errorf("resolving encodings: %w", err)
	}

	stdin := bufio.NewReader(os.Stdin)
	terminal := prompt.NewTerminal(stdin, os.Stdout)

	// 1) Input file, with a retry loop when the path is unusable.
	input, codec, err := chooseInputFile(ctx, stdin, input, candidates)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Detected encoding: %s", codec.Name())

	// 2) Transform.
	spec, err := chooseTransform(cfg, stdin)
	if err != nil {
		return err
	}
	logger.Debug().Stringer("transform", spec).Msg("transform selected")

	// 3) Output path: suggested, then accepted or overridden.
	dest := outputPath
	if dest == "" {
		suggested := naming.SuggestOutputPath(input, cfg.OutputSuffix)
		fmt.Printf("Suggested output filename: %s\n", suggested)
		fmt.Print("Press Enter to accept or type a new output path: ")
		answer, err := readLine(stdin)
		if err != nil {
			return err
		}
		if answer == "" {
			dest = suggested
		} else {
			dest = naming.ExpandPath(answer)
		}
	}

	// 4) Run.
	result, err := pipeline.Run(ctx, pipeline.Options{
		InputPath: input,
		DestPath:  dest,
		Codec:     codec,
		Spec:      spec,
		Prompter:  terminal,
	})

	reporter := log.FromContext(ctx)
	reporter.LogRun(log.RunOperation{
		Input:        input,
		Output:       result.CommittedPath,
		Transform:    spec.String(),
		LinesRead:    result.LinesRead,
		LinesWritten: result.LinesWritten,
		Cancelled:    err == nil && !result.Committed(),
		Err:          err,
	})
	if err != nil {
		return err
	}

	if !result.Committed() {
		pterm.Info.Println("No output written (operation cancelled).")
	}
	return nil
}

// chooseInputFile validates a candidate path and probes its encoding,
// prompting again on recoverable problems.
func chooseInputFile(ctx context.Context, stdin *bufio.Reader, input string, candidates []encoding.Codec) (string, encoding.Codec, error) {
	for {
		if input == "" {
			fmt.Print("Enter the path to the input file (or 'q' to quit): ")
			answer, err := readLine(stdin)
			if err != nil {
				return "", encoding.Codec{}, err
			}
			if answer == "" || strings.EqualFold(answer, "q") {
				return "", encoding.Codec{}, errors.Errorf("no input file selected")
			}
			input = naming.ExpandPath(answer)
		}

		info, err := os.Stat(input)
		switch {
		case err != nil:
			pterm.Error.Println("File not found. Please check the path and try again.")
		case info.IsDir():
			pterm.Error.Println("The path is a directory, not a file.")
		default:
			codec, err := encoding.Probe(ctx, input, candidates)
			if err == nil {
				return input, codec, nil
			}
			if !errors.Is(err, encoding.ErrNoEncoding) {
				return "", encoding.Codec{}, err
			}
			pterm.Error.Println("Could not decode file with the configured encodings.")
		}

		input = ""
		fmt.Print("Try again with a different file? (Y/n): ")
		answer, err := readLine(stdin)
		if err != nil {
			return "", encoding.Codec{}, err
		}
		if strings.EqualFold(answer, "n") {
			return "", encoding.Codec{}, errors.Errorf("no usable input file")
		}
	}
}

// chooseTransform resolves flags first, then falls back to the menu.
// The config is the one runInteractive already loaded.
func chooseTransform(cfg *config.Config, stdin *bufio.Reader) (transform.Spec, error) {
	if presetName != "" {
		preset, err := cfg.Preset(presetName)
		if err != nil {
			return transform.Spec{}, err
		}
		return preset.Spec()
	}

	if transformName != "" {
		kind, err := transform.ParseKind(transformName)
		if err != nil {
			return transform.Spec{}, err
		}
		spec := transform.Spec{Kind: kind}
		if kind == transform.KindReplace {
			spec.Target = targetText
			spec.Replacement = replacement
		}
		return spec, nil
	}

	return transformMenu(stdin)
}

// transformMenu presents the numbered menu of the original tool. An
// invalid choice defaults to no modification.
func transformMenu(stdin *bufio.Reader) (transform.Spec, error) {
	fmt.Println("\nChoose a transformation to apply to the file (enter number):")
	fmt.Println("  1) Add line numbers (prefix each line with '0001: ')")
	fmt.Println("  2) Convert to UPPERCASE")
	fmt.Println("  3) Convert to lowercase")
	fmt.Println("  4) Remove blank lines")
	fmt.Println("  5) Replace text (provide target and replacement)")
	fmt.Println("  6) Reverse lines (write lines in reverse order)  -- NOTE: may load file into memory")
	fmt.Println("  7) No modification (copy as-is)")
	fmt.Print("Choice [1-7]: ")

	choice, err := readLine(stdin)
	if err != nil {
		return transform.Spec{}, err
	}

	switch choice {
	case "1":
		return transform.Spec{Kind: transform.KindAddLineNumbers}, nil
	case "2":
		return transform.Spec{Kind: transform.KindUppercase}, nil
	case "3":
		return transform.Spec{Kind: transform.KindLowercase}, nil
	case "4":
		return transform.Spec{Kind: transform.KindRemoveBlank}, nil
	case "5":
		fmt.Print("Enter the text to replace (target): ")
		target, err := readRawLine(stdin)
		if err != nil {
			return transform.Spec{}, err
		}
		fmt.Print("Enter the replacement text: ")
		repl, err := readRawLine(stdin)
		if err != nil {
			return transform.Spec{}, err
		}
		return transform.Spec{Kind: transform.KindReplace, Target: target, Replacement: repl}, nil
	case "6":
		return transform.Spec{Kind: transform.KindReverseLines}, nil
	case "7":
		return transform.Spec{Kind: transform.KindIdentity}, nil
	default:
		pterm.Warning.Println("Invalid choice, defaulting to no modification.")
		return transform.Spec{Kind: transform.KindIdentity}, nil
	}
}

// reportError maps taxonomy errors to the messages the original tool
// printed.
func reportError(err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		pterm.Error.Println("Input file disappeared during processing.")
	case errors.Is(err, pipeline.ErrPermission):
		pterm.Error.Println("Permission denied while reading/writing files. Check file permissions.")
	case errors.Is(err, pipeline.ErrIsDirectory):
		pterm.Error.Println("The path is a directory, not a file.")
	case errors.Is(err, pipeline.ErrDecode):
		pterm.Error.Println("File encoding not supported or file is binary. Try a different encoding or file.")
	default:
		pterm.Error.Printfln("An unexpected error occurred: %v", err)
	}
}

// readLine reads one trimmed answer from stdin.
func readLine(r *bufio.Reader) (string, error) {
	answer, err := readRawLine(r)
	return strings.TrimSpace(answer), err
}

// readRawLine reads one answer without trimming interior whitespace;
// replacement targets may legitimately start or end with spaces.
func readRawLine(r *bufio.Reader) (string, error) {
	answer, err := r.ReadString('\n')
	if err != nil && answer == "" {
		return "", errors.Errorf("reading answer: %w", err)
	}
	answer = strings.TrimSuffix(answer, "\n")
	return strings.TrimSuffix(answer, "\r"), nil
}
