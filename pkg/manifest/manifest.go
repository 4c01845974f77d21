// Package manifest reads the package list produced by the external resolver.
//
// A manifest is JSON (comments and trailing commas allowed) or YAML:
//
//	{
//	  "packages": [
//	    {
//	      "name": "drupal/views",
//	      "type": "drupal-module",
//	      "version": "3.0.0",
//	      "source": {"type": "archive", "url": "dist/views-3.0.0.tar.gz"}
//	    }
//	  ]
//	}
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultFileNames are looked up in the project root, in order.
var DefaultFileNames = []string{
	"sharedpkg.lock.json",
	"sharedpkg.lock.jsonc",
	"sharedpkg.lock.yaml",
	"sharedpkg.lock.yml",
}

// Manifest is the resolved package list of a project.
type Manifest struct {
	Packages []types.Package `json:"packages" yaml:"packages"`

	// Dir is the directory of the manifest file; relative sources resolve
	// against it.
	Dir string `json:"-" yaml:"-"`
}

// Parse decodes data in the given format and validates the result.
func Parse(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestLoad, "failed to parse YAML manifest")
		}
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestLoad, "failed to parse JSON manifest")
		}
	default:
		return nil, errors.Newf(errors.ErrManifestLoad, "unknown manifest format %q", format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "failed to read manifest %s", path).
			WithDetail("path", path)
	}

	m, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "invalid manifest %s", path).
			WithDetail("path", path)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Discover returns the first default manifest present in root.
func Discover(root string) (string, error) {
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.Newf(errors.ErrNotFound, "no manifest found in %s (looked for %s)",
		root, strings.Join(DefaultFileNames, ", ")).
		WithDetail("path", root)
}

// Validate checks every package and rejects duplicate names.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Packages))
	for i, pkg := range m.Packages {
		if err := pkg.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrPackageInvalid, "package #%d is invalid", i+1).
				WithDetail("package", pkg.Name)
		}
		if pkg.TargetDir != "" {
			if err := paths.ValidateRelativePath(pkg.TargetDir); err != nil {
				return errors.Wrapf(err, errors.ErrPackageInvalid, "package %s has an invalid target-dir", pkg.Name).
					WithDetail("package", pkg.Name)
			}
		}
		for _, bin := range pkg.Binaries {
			if err := paths.ValidateRelativePath(bin); err != nil {
				return errors.Wrapf(err, errors.ErrPackageInvalid, "package %s declares an invalid binary", pkg.Name).
					WithDetail("package", pkg.Name)
			}
		}
		if seen[pkg.Name] {
			return errors.Newf(errors.ErrPackageInvalid, "package %s is listed twice", pkg.Name).
				WithDetail("package", pkg.Name)
		}
		seen[pkg.Name] = true
	}
	return nil
}

// Find returns the package with the given name.
func (m *Manifest) Find(name string) (types.Package, bool) {
	for _, pkg := range m.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return types.Package{}, false
}
