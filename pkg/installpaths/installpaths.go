// Package installpaths maps packages to project-facing paths using the
// ordered installer-paths table of a project.
package installpaths

import (
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/template"
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// Rule pairs a target path template with the match rules that select it.
// A match rule is an exact package name, "type:<type>" or "vendor:<vendor>".
type Rule struct {
	Path  string   `koanf:"path" toml:"path"`
	Match []string `koanf:"match" toml:"match"`
}

// Rules keeps the configuration order; the first matching rule wins.
type Rules []Rule

// FromMap builds Rules from a path → matches table. Go maps are unordered, so
// the caller supplies the order of the paths; paths missing from order are
// dropped.
func FromMap(table map[string][]string, order []string) Rules {
	rules := make(Rules, 0, len(order))
	for _, path := range order {
		if matches, ok := table[path]; ok {
			rules = append(rules, Rule{Path: path, Match: matches})
		}
	}
	return rules
}

// Resolve returns the path of the first rule naming packageName,
// "type:"+packageType or "vendor:"+vendor.
func Resolve(rules Rules, packageName, packageType, vendor string) (string, bool) {
	typeRule := "type:" + packageType
	vendorRule := "vendor:" + vendor
	for _, rule := range rules {
		for _, m := range rule.Match {
			if m == packageName || m == typeRule || m == vendorRule {
				return rule.Path, true
			}
		}
	}
	return "", false
}

// Vars returns the template variables available to a package path.
func Vars(pkg types.Package) map[string]string {
	vendor, _ := pkg.VendorAndName()
	return map[string]string{
		"name":   pkg.InstallerName(),
		"vendor": vendor,
		"type":   pkg.Type,
	}
}

// Lookup resolves and renders the custom path of pkg. The returned path is
// relative to the site directory and has no trailing slash. strict makes an
// undefined template variable an error instead of an empty substitution.
func Lookup(rules Rules, pkg types.Package, strict bool) (string, bool, error) {
	if len(rules) == 0 {
		return "", false, nil
	}
	vendor, _ := pkg.VendorAndName()
	tmpl, found := Resolve(rules, pkg.Name, pkg.Type, vendor)
	if !found {
		return "", false, nil
	}

	vars := Vars(pkg)
	var rendered string
	if strict {
		var err error
		rendered, err = template.RenderStrict(tmpl, vars)
		if err != nil {
			return "", false, err
		}
	} else {
		rendered = template.Render(tmpl, vars)
	}
	return strings.TrimRight(rendered, "/"), true, nil
}
