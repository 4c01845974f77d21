package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/pterm/pterm"
)

// ConfirmOptions selects how confirmations are answered.
type ConfirmOptions struct {
	// AssumeYes answers every question with yes (--yes)
	AssumeYes bool
	// NoInteraction answers every question with its default (--no-interaction)
	NoInteraction bool

	In  io.Reader
	Out io.Writer
}

// NewConfirmer returns the confirmer matching opts: a fixed answer, the
// interactive pterm prompt on a terminal, or a line reader otherwise.
func NewConfirmer(opts ConfirmOptions) types.Confirmer {
	switch {
	case opts.AssumeYes:
		return types.StaticConfirmer(true)
	case opts.NoInteraction:
		return DefaultConfirmer{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	in := opts.In
	if in == nil {
		in = strings.NewReader("")
	}
	if isTerminalFile(in) && isTerminalFile(out) {
		return &InteractiveConfirmer{Out: out}
	}
	return NewLineConfirmer(in, out)
}

func isTerminalFile(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && IsTerminal(f)
}

// DefaultConfirmer answers every request with its Default.
type DefaultConfirmer struct{}

// Confirm implements types.Confirmer
func (DefaultConfirmer) Confirm(req types.ConfirmationRequest) (bool, error) {
	return req.Default, nil
}

func writeRequest(out io.Writer, req types.ConfirmationRequest) {
	if req.Description != "" {
		fmt.Fprintln(out, req.Description)
	}
	for _, item := range req.Items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

// LineConfirmer prints the question to Out and reads one answer line from In.
// End of input counts as an empty answer.
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer creates a line based confirmer.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm implements types.Confirmer
func (c *LineConfirmer) Confirm(req types.ConfirmationRequest) (bool, error) {
	writeRequest(c.out, req)
	marker := "[y/N]"
	if req.Default {
		marker = "[Y/n]"
	}
	fmt.Fprintf(c.out, "%s %s: ", req.Title, marker)

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrapf(err, errors.ErrInvalidInput, "failed to read answer for %s", req.ID)
	}
	if err == io.EOF {
		fmt.Fprintln(c.out)
	}
	return parseAnswer(line, req.Default), nil
}

func parseAnswer(line string, def bool) bool {
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return def
	}
	return answer == "y" || answer == "yes"
}

// InteractiveConfirmer uses pterm's interactive confirm prompt.
type InteractiveConfirmer struct {
	Out io.Writer
}

// Confirm implements types.Confirmer
func (c *InteractiveConfirmer) Confirm(req types.ConfirmationRequest) (bool, error) {
	writeRequest(c.Out, req)
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(req.Default).
		Show(req.Title)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrInvalidInput, "failed to read answer for %s", req.ID)
	}
	return answer, nil
}
