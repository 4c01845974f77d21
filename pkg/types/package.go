package types

import (
	"fmt"
	"strings"
)

// Source kinds understood by the fetchers
const (
	SourcePath    = "path"
	SourceArchive = "archive"
)

// Package describes one concrete package version as produced by the external
// resolver. It is immutable for the duration of an install.
type Package struct {
	// Name is the pretty name, optionally "vendor/name"
	Name string `json:"name" yaml:"name"`

	// Type is free-form, conventionally namespaced (drupal-core, drupal-module)
	Type string `json:"type" yaml:"type"`

	// Version is used verbatim as a path segment
	Version string `json:"version" yaml:"version"`

	// Extra is opaque metadata; "installer-name" overrides the template name
	Extra map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`

	// Binaries are relative paths inside the package, in declaration order
	Binaries []string `json:"bin,omitempty" yaml:"bin,omitempty"`

	// TargetDir is an optional subdirectory appended to the install path
	TargetDir string `json:"target-dir,omitempty" yaml:"target-dir,omitempty"`

	// Source tells the fetcher where the sources come from
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`
}

// Source locates the package sources on the local machine.
type Source struct {
	Type string `json:"type" yaml:"type"`
	URL  string `json:"url" yaml:"url"`
}

// PackageKey identifies a shared store entry.
type PackageKey struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (k PackageKey) String() string {
	return k.Name + "@" + k.Version
}

// Key returns the shared store key of the package.
func (p Package) Key() PackageKey {
	return PackageKey{Name: p.Name, Version: p.Version}
}

// VendorAndName splits the pretty name on its first "/". A name without a
// vendor yields an empty vendor.
func (p Package) VendorAndName() (vendor, name string) {
	if i := strings.Index(p.Name, "/"); i >= 0 {
		return p.Name[:i], p.Name[i+1:]
	}
	return "", p.Name
}

// InstallerName is the name used in path templates.
func (p Package) InstallerName() string {
	if v, ok := p.Extra["installer-name"].(string); ok && v != "" {
		return v
	}
	_, name := p.VendorAndName()
	return name
}

// HasBinaries reports whether the package declares any binaries.
func (p Package) HasBinaries() bool {
	return len(p.Binaries) > 0
}

// Validate checks the fields every installer relies on.
func (p Package) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("package name is empty")
	case p.Version == "":
		return fmt.Errorf("package %s has no version", p.Name)
	case strings.Contains(p.Version, "/") || p.Version == "." || p.Version == "..":
		return fmt.Errorf("package %s has an unusable version %q", p.Name, p.Version)
	case strings.HasPrefix(p.Name, "/") || strings.Contains(p.Name, ".."):
		return fmt.Errorf("package name %q is not a relative name", p.Name)
	}
	return nil
}

func (p Package) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Version)
}
