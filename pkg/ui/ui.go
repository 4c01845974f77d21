// Package ui renders command results as styled terminal output, plain text
// or JSON, and asks the user for confirmations.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
)

// Renderer writes command results in one output format.
type Renderer interface {
	// RenderReport renders the operations executed by a command
	RenderReport(report ReportView) error

	// RenderStatus renders the packages of a project
	RenderStatus(status StatusView) error

	// RenderUsage renders the usage ledger of a store
	RenderUsage(usage UsageView) error

	// RenderError renders a command failure
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects output when
// it is a file and falls back to plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return newTerminalRenderer(output, DefaultStyles()), nil
	case FormatText:
		return newTextRenderer(output), nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown output format: %v", format)
}
