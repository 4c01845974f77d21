// pkg/ui/confirm_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: strings.Reader input, bytes.Buffer output
// PURPOSE: Test confirmation answers and confirmer selection

package ui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/arthur-debert/sharedpkg/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		def      bool
		expected bool
	}{
		{name: "yes", input: "y\n", expected: true},
		{name: "yes_long_mixed_case", input: "  YES \n", expected: true},
		{name: "no", input: "n\n", def: true, expected: false},
		{name: "anything_else_is_no", input: "sure\n", def: true, expected: false},
		{name: "empty_takes_default_no", input: "\n", expected: false},
		{name: "empty_takes_default_yes", input: "\n", def: true, expected: true},
		{name: "eof_takes_default", input: "", def: true, expected: true},
		{name: "eof_after_answer", input: "y", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			c := ui.NewLineConfirmer(strings.NewReader(tt.input), out)
			answer, err := c.Confirm(types.ConfirmationRequest{ID: "q", Title: "Proceed?", Default: tt.def})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, answer)
		})
	}
}

func TestLineConfirmerPrompt(t *testing.T) {
	out := &bytes.Buffer{}
	c := ui.NewLineConfirmer(strings.NewReader("n\ny\n"), out)
	req := types.ConfirmationRequest{
		ID:          "delete-shared-sources",
		Title:       "Delete shared sources?",
		Description: "No other project uses drupal/views 3.0.0.",
		Items:       []string{"/store/vendor/drupal/views/3.0.0"},
	}

	first, err := c.Confirm(req)
	require.NoError(t, err)
	second, err := c.Confirm(req)
	require.NoError(t, err)

	assert.False(t, first)
	assert.True(t, second)
	assert.Contains(t, out.String(), "No other project uses drupal/views 3.0.0.\n")
	assert.Contains(t, out.String(), "  - /store/vendor/drupal/views/3.0.0\n")
	assert.Contains(t, out.String(), "Delete shared sources? [y/N]: ")
}

func TestNewConfirmer(t *testing.T) {
	req := types.ConfirmationRequest{ID: "q", Default: false}

	yes := ui.NewConfirmer(ui.ConfirmOptions{AssumeYes: true, NoInteraction: true})
	answer, err := yes.Confirm(req)
	require.NoError(t, err)
	assert.True(t, answer)

	defaults := ui.NewConfirmer(ui.ConfirmOptions{NoInteraction: true})
	answer, err = defaults.Confirm(req)
	require.NoError(t, err)
	assert.False(t, answer)
	answer, err = defaults.Confirm(types.ConfirmationRequest{Default: true})
	require.NoError(t, err)
	assert.True(t, answer)

	// no terminal and no input: the line reader falls back to the default
	out := &bytes.Buffer{}
	lines := ui.NewConfirmer(ui.ConfirmOptions{Out: out})
	assert.IsType(t, &ui.LineConfirmer{}, lines)
	answer, err = lines.Confirm(req)
	require.NoError(t, err)
	assert.False(t, answer)
}
