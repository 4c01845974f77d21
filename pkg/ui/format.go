package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how command results are written
type Format int

const (
	// FormatAuto picks terminal or text depending on the output
	FormatAuto Format = iota
	// FormatTerminal renders styled tables and colored status prefixes
	FormatTerminal
	// FormatText renders aligned plain text
	FormatText
	// FormatJSON renders one JSON document per result
	FormatJSON
)

// FormatNames lists the accepted --format values.
var FormatNames = []string{"auto", "term", "text", "json"}

func (f Format) String() string {
	if int(f) >= 0 && int(f) < len(FormatNames) {
		return FormatNames[f]
	}
	return "unknown"
}

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown output format %q (expected one of %s)",
		s, strings.Join(FormatNames, ", ")).WithDetail("format", s)
}

// DetectFormat resolves FormatAuto for output. NO_COLOR, pipes and terminals
// without color support get plain text.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !IsTerminal(output) {
		return FormatText
	}
	if termenv.NewOutput(output).Profile == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
