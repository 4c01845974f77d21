package config

import (
	"path"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/installpaths"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// File mirrors sharedpkg.toml.
type File struct {
	VendorDir      string             `koanf:"vendor-dir" toml:"vendor-dir"`
	BinDir         string             `koanf:"bin-dir" toml:"bin-dir"`
	Shared         Shared             `koanf:"shared" toml:"shared"`
	InstallerPaths installpaths.Rules `koanf:"installer-paths" toml:"installer-paths,omitempty"`
}

// Shared holds the [shared] block.
type Shared struct {
	SymlinkDir      string            `koanf:"symlink-dir" toml:"symlink-dir"`
	SymlinkEnabled  bool              `koanf:"symlink-enabled" toml:"symlink-enabled"`
	PackageList     []string          `koanf:"package-list" toml:"package-list"`
	CopyTypes       []string          `koanf:"copy-types" toml:"copy-types"`
	SiteMarker      string            `koanf:"site-marker" toml:"site-marker"`
	BuildLinkPrefix string            `koanf:"build-link-prefix" toml:"build-link-prefix"`
	NoCopyBinaries  []string          `koanf:"no-copy-binaries" toml:"no-copy-binaries"`
	SharedType      string            `koanf:"shared-type" toml:"shared-type"`
	StrictTemplates bool              `koanf:"strict-templates" toml:"strict-templates"`
	BuildDir        map[string]string `koanf:"build-dir" toml:"build-dir,omitempty"`
	VersionDir      map[string]string `koanf:"version-dir" toml:"version-dir,omitempty"`
}

// ProjectConfig is the resolved configuration of one consuming project.
type ProjectConfig struct {
	// ProjectRoot is absolute and doubles as the project identifier in the
	// usage ledger
	ProjectRoot string

	// ConfigFile is the loaded sharedpkg.toml, empty when defaults were used
	ConfigFile string

	Context     types.BuildContext
	BuildPrefix string
	Layout      paths.Layout

	// StoreDir is the absolute shared store root
	StoreDir string

	InstallerPaths  installpaths.Rules
	SymlinkEnabled  bool
	PackageList     []string
	CopyTypes       []string
	SiteMarker      string
	BuildLinkPrefix string
	NoCopyBinaries  []string
	SharedType      string
	StrictTemplates bool
}

// ProjectID identifies the project in the usage ledger.
func (c *ProjectConfig) ProjectID() string {
	return c.ProjectRoot
}

// SharedVendorDir is the vendor directory inside the shared store.
func (c *ProjectConfig) SharedVendorDir() string {
	return c.Layout.SharedVendorDir(c.StoreDir)
}

// IsCopyType reports whether packages of type t are copied into the site
// directory instead of linked.
func (c *ProjectConfig) IsCopyType(t string) bool {
	for _, ct := range c.CopyTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// NeedsBuildLink reports whether packages of type t get a build symlink at
// their installer path.
func (c *ProjectConfig) NeedsBuildLink(t string) bool {
	return c.BuildLinkPrefix != "" && strings.HasPrefix(t, c.BuildLinkPrefix) && !c.IsCopyType(t)
}

// CopiesBinaries reports whether the binaries of the named package may be
// materialized. Entries of no-copy-binaries are names or path.Match globs.
func (c *ProjectConfig) CopiesBinaries(name string) bool {
	for _, pattern := range c.NoCopyBinaries {
		if pattern == name {
			return false
		}
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return false
		}
	}
	return true
}
