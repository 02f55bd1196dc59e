// Package transform defines the line transformations a run can apply.
// A transform is pure and strictly local: it sees one line's content and
// that line's position in the original file, nothing else.
package transform

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎯 Kind identifies a line transformation.
type Kind int

const (
	KindIdentity Kind = iota
	KindAddLineNumbers
	KindUppercase
	KindLowercase
	KindRemoveBlank
	KindReplace
	KindReverseLines
)

// String returns the canonical name of the transform kind.
func (k Kind) String() string {
	switch k {
	case KindAddLineNumbers:
		return "add-line-numbers"
	case KindUppercase:
		return "uppercase"
	case KindLowercase:
		return "lowercase"
	case KindRemoveBlank:
		return "remove-blank"
	case KindReplace:
		return "replace"
	case KindReverseLines:
		return "reverse-lines"
	case KindIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

// ParseKind resolves a transform name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "none", "copy":
		return KindIdentity, nil
	case "add-line-numbers", "line-numbers", "number":
		return KindAddLineNumbers, nil
	case "uppercase", "upper":
		return KindUppercase, nil
	case "lowercase", "lower":
		return KindLowercase, nil
	case "remove-blank", "remove-blank-lines":
		return KindRemoveBlank, nil
	case "replace":
		return KindReplace, nil
	case "reverse-lines", "reverse":
		return KindReverseLines, nil
	default:
		return KindIdentity, errors.Errorf("unknown transform %q", name)
	}
}

// 🔧 Spec is a chosen transformation, fixed for the duration of one run.
// Target and Replacement are only meaningful for KindReplace.
type Spec struct {
	Kind        Kind
	Target      string
	Replacement string
}

// Streamable reports whether the transform can run line-by-line without
// materializing the whole file. Only line reversal needs the full file.
func (s Spec) Streamable() bool {
	return s.Kind != KindReverseLines
}

// Validate checks that the spec is internally consistent.
func (s Spec) Validate() error {
	if s.Kind < KindIdentity || s.Kind > KindReverseLines {
		return errors.Errorf("invalid transform kind %d", int(s.Kind))
	}
	if s.Kind != KindReplace && (s.Target != "" || s.Replacement != "") {
		return errors.Errorf("target/replacement are only valid for the replace transform")
	}
	return nil
}

// String returns a short human-readable description of the spec.
func (s Spec) String() string {
	if s.Kind == KindReplace {
		return fmt.Sprintf("replace %q -> %q", s.Target, s.Replacement)
	}
	return s.Kind.String()
}

// 📄 Result is the outcome of transforming one line: either replacement
// content, or an explicit instruction to drop the line. The distinction
// matters because a line transformed to the empty string is still
// written, while an omitted line is not.
type Result struct {
	Content string
	Omitted bool
}

// Keep wraps content to be written out.
func Keep(content string) Result {
	return Result{Content: content}
}

// Omit signals that the line is dropped from the output.
func Omit() Result {
	return Result{Omitted: true}
}

// Apply transforms a single line. content carries no trailing newline;
// ordinal is the line's 0-based position in the original file order,
// which numbering uses even when the output order differs.
func (s Spec) Apply(content string, ordinal int) Result {
	switch s.Kind {
	case KindAddLineNumbers:
		// The numeric field widens naturally past 9999.
		return Keep(fmt.Sprintf("%04d: %s", ordinal+1, content))
	case KindUppercase:
		return Keep(strings.ToUpper(content))
	case KindLowercase:
		return Keep(strings.ToLower(content))
	case KindRemoveBlank:
		if strings.TrimSpace(content) == "" {
			return Omit()
		}
		return Keep(content)
	case KindReplace:
		if s.Target == "" {
			// Replacing the empty string would insert the replacement
			// between every character.
			return Keep(content)
		}
		return Keep(strings.ReplaceAll(content, s.Target, s.Replacement))
	case KindReverseLines, KindIdentity:
		// Reversal is a whole-file ordering concern, handled by the
		// pipeline; content passes through unchanged here.
		return Keep(content)
	default:
		return Keep(content)
	}
}
