// Package prompt supplies the interactive decisions a pipeline run
// blocks on. The core never talks to a console directly; it is handed a
// capability implemented here (a real terminal, a scripted test double,
// or a fixed batch policy).
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/walteh/linerc/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 🖥️ Terminal answers prompts by asking a human on an input/output
// stream pair, typically stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal prompter over the given streams.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ConfirmOverwrite asks whether an existing destination may be replaced.
// Anything other than an explicit yes declines.
func (t *Terminal) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	pterm.Warning.WithWriter(t.out).Printfln("Output file %q already exists.", path)
	answer, err := t.ask("Overwrite? (y/N): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ChooseAlternateDestination asks for a new output path after a declined
// overwrite. Entering "q" cancels the operation. The answer keeps its
// case; only yes/no confirmations are folded.
func (t *Terminal) ChooseAlternateDestination(ctx context.Context) (string, bool, error) {
	answer, err := t.ask("Enter a new output filename (or 'q' to cancel): ")
	if err != nil {
		return "", false, err
	}
	if answer == "" || strings.EqualFold(answer, "q") {
		return "", false, nil
	}
	return naming.ExpandPath(answer), true, nil
}

// ConfirmWholeFileLoad warns that the reverse transform materializes the
// input in memory. Default is to continue, matching the original tool.
func (t *Terminal) ConfirmWholeFileLoad(ctx context.Context) (bool, error) {
	pterm.Warning.WithWriter(t.out).Println("'Reverse lines' will load the entire file into memory.")
	answer, err := t.ask("Continue? (Y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer != "n" && answer != "no", nil
}

// ask returns one trimmed answer verbatim. Callers fold case where a
// yes/no is expected; path answers must survive untouched.
func (t *Terminal) ask(question string) (string, error) {
	fmt.Fprint(t.out, question)
	answer, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Errorf("reading prompt answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// 🎬 Script is a prompter with pre-recorded answers, used by tests and
// anywhere a run must not block on a console.
type Script struct {
	// OverwriteAnswers are consumed in order by ConfirmOverwrite; when
	// exhausted, the answer is false.
	OverwriteAnswers []bool
	// AlternatePaths are consumed in order by ChooseAlternateDestination;
	// an empty string (or exhaustion) cancels.
	AlternatePaths []string
	// AllowWholeFileLoad answers ConfirmWholeFileLoad.
	AllowWholeFileLoad bool

	overwriteCalls int
	alternateCalls int
}

func (s *Script) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	i := s.overwriteCalls
	s.overwriteCalls++
	if i >= len(s.OverwriteAnswers) {
		return false, nil
	}
	return s.OverwriteAnswers[i], nil
}

func (s *Script) ChooseAlternateDestination(ctx context.Context) (string, bool, error) {
	i := s.alternateCalls
	s.alternateCalls++
	if i >= len(s.AlternatePaths) || s.AlternatePaths[i] == "" {
		return "", false, nil
	}
	return s.AlternatePaths[i], true, nil
}

func (s *Script) ConfirmWholeFileLoad(ctx context.Context) (bool, error) {
	return s.AllowWholeFileLoad, nil
}

// 📋 Policy is the non-interactive prompter batch mode runs with: a
// fixed overwrite decision, no alternate destinations, and whole-file
// loads always permitted.
type Policy struct {
	// Overwrite controls whether existing destinations are replaced.
	Overwrite bool
}

func (p Policy) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	return p.Overwrite, nil
}

func (p Policy) ChooseAlternateDestination(ctx context.Context) (string, bool, error) {
	// Declining overwrite in batch mode always cancels that file.
	return "", false, nil
}

func (p Policy) ConfirmWholeFileLoad(ctx context.Context) (bool, error) {
	return true, nil
}
