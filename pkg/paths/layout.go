package paths

import (
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// Layout describes the build tree of one consuming project:
//
//	<root>/<buildPrefix>/<vendorDir>/<name>   vendor entry
//	<root>/<buildPrefix>/<binDir>/<binary>    binary links
//	<root>/<buildPrefix>/<site path>          site entries
//
// VendorDir and BinDir are relative to the build directory.
type Layout struct {
	ProjectRoot string
	BuildPrefix string
	VendorDir   string
	BinDir      string
}

// BuildDir returns the absolute build directory.
func (l Layout) BuildDir() string {
	return filepath.Join(l.ProjectRoot, filepath.FromSlash(l.BuildPrefix))
}

// BuildVendorDir returns the absolute vendor directory inside the build tree.
func (l Layout) BuildVendorDir() string {
	return filepath.Join(l.BuildDir(), filepath.FromSlash(l.VendorDir))
}

// BuildBinDir returns the absolute bin directory inside the build tree.
func (l Layout) BuildBinDir() string {
	return filepath.Join(l.BuildDir(), filepath.FromSlash(l.BinDir))
}

// SiteDir is the parent of the build vendor directory. Custom installer paths
// and copied core trees are placed relative to it.
func (l Layout) SiteDir() string {
	return filepath.Dir(l.BuildVendorDir())
}

// SitePath joins a rendered installer path onto the site directory.
func (l Layout) SitePath(rel string) string {
	return filepath.Join(l.SiteDir(), filepath.FromSlash(rel))
}

// VendorLink is the project-facing vendor entry of pkg.
func (l Layout) VendorLink(pkg types.Package) string {
	return filepath.Join(l.BuildVendorDir(), filepath.FromSlash(pkg.Name))
}

// ConventionalPath is where a non-shared package is installed in the build
// tree.
func (l Layout) ConventionalPath(pkg types.Package) string {
	p := l.VendorLink(pkg)
	if pkg.TargetDir != "" {
		p = filepath.Join(p, filepath.FromSlash(pkg.TargetDir))
	}
	return p
}

// BinLink is the bin directory entry for a declared binary. Only the base
// name is used, so "bin/tool" becomes <binDir>/tool and never <binDir>/bin/tool.
func (l Layout) BinLink(binary string) string {
	return filepath.Join(l.BuildBinDir(), filepath.Base(filepath.FromSlash(binary)))
}

// SharedVendorDir is the vendor directory of the shared store.
func (l Layout) SharedVendorDir(storeDir string) string {
	return filepath.Join(storeDir, filepath.FromSlash(l.VendorDir))
}

// RepositoryPath is the installed-packages record of the project.
func (l Layout) RepositoryPath() string {
	return filepath.Join(l.BuildVendorDir(), RepositoryFileName)
}
