// Package installer installs packages into a project build tree, either
// conventionally (a private copy under the build vendor directory) or through
// the shared store (one copy per package version, linked into every project).
//
// The Router picks the installer per package using the Solver. The shared
// installer records every project that references a store entry in the usage
// ledger and only offers to delete sources when the last project uninstalls.
package installer

import (
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// Installer is implemented by LibraryInstaller, SharedInstaller and Router.
type Installer interface {
	Install(repo types.InstalledRepository, pkg types.Package) error
	IsInstalled(repo types.InstalledRepository, pkg types.Package) (bool, error)
	Update(repo types.InstalledRepository, initial, target types.Package) error
	Uninstall(repo types.InstalledRepository, pkg types.Package) error
}

func packageFields(pkg types.Package) map[string]interface{} {
	return map[string]interface{}{
		"package": pkg.Name,
		"version": pkg.Version,
	}
}
