// Package template expands {$var} placeholders in configured path strings.
//
// Expansion is a single pass: a substituted value is never scanned again, so
// a value that itself contains "{$x}" is inserted literally.
package template

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
)

var placeholder = regexp.MustCompile(`\{\$([A-Za-z0-9_]*)\}`)

// Render replaces every {$name} with vars[name]. Names missing from vars are
// replaced with the empty string.
func Render(tmpl string, vars map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	return expand(tmpl, vars)
}

// RenderStrict behaves like Render but fails on the first name that vars does
// not define.
func RenderStrict(tmpl string, vars map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{") {
		return tmpl, nil
	}
	for _, name := range Variables(tmpl) {
		if _, ok := vars[name]; !ok {
			return "", errors.Newf(errors.ErrTemplateVar, "undefined variable {$%s} in path %q", name, tmpl).
				WithDetail("variable", name).
				WithDetail("template", tmpl)
		}
	}
	return expand(tmpl, vars), nil
}

// Variables returns the distinct placeholder names in order of first appearance.
func Variables(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func expand(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		return vars[match[2:len(match)-1]]
	})
}
