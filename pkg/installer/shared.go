package installer

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/installpaths"
	"github.com/arthur-debert/sharedpkg/pkg/ledger"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/materialize"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/storelock"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// ConfirmDeleteSources is the ID of the question asked before the sources of
// an unused store entry are deleted.
const ConfirmDeleteSources = "delete-shared-sources"

// SharedInstaller installs packages once into the shared store and exposes
// them in the project build tree:
//
//	copy types      copied into the site directory (marker file guarded)
//	other types     <vendor>/<name> symlink to the store entry, plus a build
//	                symlink at the installer path for build-link-prefix types
//	binaries        the package is copied into <vendor>/<name> and each
//	                binary is linked from <bin>/<basename>
//
// Every install adds the project to the usage ledger entry of the package.
type SharedInstaller struct {
	cfg       *config.ProjectConfig
	fs        types.FS
	mat       *materialize.Materializer
	library   *LibraryInstaller
	ledger    *ledger.Ledger
	confirmer types.Confirmer
	logger    zerolog.Logger
}

var _ Installer = (*SharedInstaller)(nil)

// NewSharedInstaller creates the shared store installer. library performs the
// source acquisition against store paths. A nil confirmer answers no.
func NewSharedInstaller(cfg *config.ProjectConfig, fsys types.FS, library *LibraryInstaller, led *ledger.Ledger, confirmer types.Confirmer) *SharedInstaller {
	if confirmer == nil {
		confirmer = types.StaticConfirmer(false)
	}
	return &SharedInstaller{
		cfg:       cfg,
		fs:        fsys,
		mat:       materialize.New(fsys),
		library:   library,
		ledger:    led,
		confirmer: confirmer,
		logger:    logging.GetLogger("installer.shared"),
	}
}

// InstallPath is the canonical store path of pkg.
func (s *SharedInstaller) InstallPath(pkg types.Package) string {
	return paths.Resolve(pkg, s.cfg.SharedVendorDir())
}

// VendorLink is the project-facing vendor entry of pkg.
func (s *SharedInstaller) VendorLink(pkg types.Package) string {
	return s.cfg.Layout.VendorLink(pkg)
}

// BuildLink returns the build symlink location of pkg, if its type gets one
// and an installer path matches it.
func (s *SharedInstaller) BuildLink(pkg types.Package) (string, bool, error) {
	if !s.cfg.NeedsBuildLink(pkg.Type) {
		return "", false, nil
	}
	return s.sitePath(pkg)
}

// SiteTarget is where a copy type is copied: always the site directory.
// Installer paths only place build symlinks.
func (s *SharedInstaller) SiteTarget(pkg types.Package) string {
	return s.cfg.Layout.SiteDir()
}

func (s *SharedInstaller) sitePath(pkg types.Package) (string, bool, error) {
	rel, found, err := installpaths.Lookup(s.cfg.InstallerPaths, pkg, s.cfg.StrictTemplates)
	if err != nil || !found {
		return "", false, err
	}
	if err := paths.ValidateRelativePath(rel); err != nil {
		return "", false, errors.Wrapf(err, errors.ErrConfigValid, "installer path %q of %s leaves the site directory", rel, pkg.Name).
			WithDetails(packageFields(pkg))
	}
	return s.cfg.Layout.SitePath(rel), true, nil
}

// Install acquires the store entry if needed, records the usage and
// materializes the entry in the build tree, all under the key lock. Usage is
// recorded before materializing so a failed link still leaves a removable
// package.
func (s *SharedInstaller) Install(repo types.InstalledRepository, pkg types.Package) error {
	logger := s.logger.With().Str("package", pkg.Name).Str("version", pkg.Version).Logger()

	return s.withLock(pkg, func() error {
		source := s.InstallPath(pkg)
		if !s.mat.Exists(source) {
			logger.Debug().Str("path", source).Msg("Store entry missing, acquiring sources")
			if err := s.library.InstallAt(repo, pkg, source); err != nil {
				return err
			}
		} else if !repo.HasPackage(pkg) {
			logger.Debug().Str("path", source).Msg("Store entry present, skipping download")
			if err := s.library.LinkBinaries(pkg, source); err != nil {
				return err
			}
			if err := repo.AddPackage(pkg); err != nil {
				return err
			}
		}
		if err := s.ledger.AddUsage(pkg.Key(), s.cfg.ProjectID()); err != nil {
			return err
		}

		if s.cfg.IsCopyType(pkg.Type) {
			if _, err := s.copyToSite(pkg); err != nil {
				return err
			}
		} else if err := s.link(pkg); err != nil {
			return err
		}

		return s.materializeBinaries(pkg)
	})
}

// IsInstalled reports whether pkg is fully materialized. For copy types only
// the store entry is checked and a missing site copy is restored.
func (s *SharedInstaller) IsInstalled(repo types.InstalledRepository, pkg types.Package) (bool, error) {
	source := s.InstallPath(pkg)

	if s.cfg.IsCopyType(pkg.Type) {
		if !s.hasMarker(source) {
			return false, nil
		}
		var copied bool
		err := s.withLock(pkg, func() error {
			var err error
			copied, err = s.copyToSite(pkg)
			return err
		})
		if err != nil {
			return false, err
		}
		if copied {
			s.logger.Info().Str("package", pkg.Name).Msg("Restored missing site copy")
		}
		return true, nil
	}

	if !repo.HasPackage(pkg) || !s.mat.Exists(source) {
		return false, nil
	}

	vendor := s.VendorLink(pkg)
	switch {
	case s.copiesBinaries(pkg):
		return s.mat.Exists(vendor) && !s.mat.IsSymlink(vendor), nil
	case s.cfg.SymlinkEnabled:
		return s.mat.IsSymlink(vendor), nil
	default:
		return true, nil
	}
}

// Update refreshes a package in place when initial and target share a store
// entry, otherwise it uninstalls initial and installs target.
func (s *SharedInstaller) Update(repo types.InstalledRepository, initial, target types.Package) error {
	if !repo.HasPackage(initial) {
		return errors.Newf(errors.ErrInvariant, "cannot update %s: it is not installed", initial.Name).
			WithDetails(packageFields(initial))
	}

	if s.InstallPath(initial) != s.InstallPath(target) {
		if err := s.Uninstall(repo, initial); err != nil {
			return err
		}
		return s.Install(repo, target)
	}

	return s.withLock(target, func() error {
		if err := s.ledger.AddUsage(target.Key(), s.cfg.ProjectID()); err != nil {
			return err
		}
		if err := s.linkVendor(target); err != nil {
			return err
		}
		if err := s.library.UpdateAt(repo, initial, target, s.InstallPath(target)); err != nil {
			return err
		}
		return s.materializeBinaries(target)
	})
}

// Uninstall drops the project's usage of pkg and its build tree entries. When
// the project is the last user the store sources are deleted, but only after
// the confirmer agrees. The prompt runs outside the key lock; the usage is
// read again under the lock and the sources stay when another project has
// started using them meanwhile.
func (s *SharedInstaller) Uninstall(repo types.InstalledRepository, pkg types.Package) error {
	key := pkg.Key()
	project := s.cfg.ProjectID()

	usage, err := s.ledger.GetUsage(key)
	if err != nil {
		return err
	}
	if !usage.Contains(project) {
		return errors.Newf(errors.ErrInvariant,
			"the usage ledger has no record of %s for this project; run 'sharedpkg update %s' to record it, then remove it again",
			key, pkg.Name).
			WithDetails(packageFields(pkg)).
			WithDetail("project", project)
	}

	deleteSources := false
	if lastUser(usage, project) {
		deleteSources, err = s.confirmer.Confirm(types.ConfirmationRequest{
			ID:    ConfirmDeleteSources,
			Title: "Delete unused shared sources",
			Description: fmt.Sprintf("The package version %s (%s) seems to be unused. Delete the source folder?",
				pkg.Name, pkg.Version),
			Items:   []string{s.InstallPath(pkg)},
			Default: false,
		})
		if err != nil {
			return err
		}
	}

	err = s.withLock(pkg, func() error {
		if deleteSources {
			current, err := s.ledger.GetUsage(key)
			if err != nil {
				return err
			}
			if !lastUser(current, project) {
				s.logger.Warn().
					Str("package", pkg.Name).
					Str("version", pkg.Version).
					Int("usage", len(current)).
					Msg("Another project started using the store entry, keeping its sources")
				deleteSources = false
			}
		}

		if deleteSources {
			if err := s.library.UninstallAt(repo, pkg, s.InstallPath(pkg)); err != nil {
				return err
			}
		} else {
			if err := s.library.RemoveBinaries(pkg); err != nil {
				return err
			}
			if repo.HasPackage(pkg) {
				if err := repo.RemovePackage(pkg); err != nil {
					return err
				}
			}
		}
		return s.ledger.RemoveUsage(key, project)
	})
	if err != nil {
		return err
	}
	return s.unlink(pkg)
}

// lastUser reports whether no project other than project uses the entry.
func lastUser(usage ledger.Usage, project string) bool {
	for _, p := range usage {
		if p != project {
			return false
		}
	}
	return true
}

func (s *SharedInstaller) withLock(pkg types.Package, fn func() error) error {
	return storelock.With(paths.LocksDir(s.cfg.StoreDir), pkg.Key().String(), fn)
}

// copyToSite copies the store entry into the site target unless the target
// already holds the marker file.
func (s *SharedInstaller) copyToSite(pkg types.Package) (bool, error) {
	target := s.SiteTarget(pkg)
	if s.hasMarker(target) {
		return false, nil
	}
	if err := s.mat.CopyTree(s.InstallPath(pkg), target); err != nil {
		return false, err
	}
	s.logger.Info().
		Str("package", pkg.Name).
		Str("version", pkg.Version).
		Str("path", target).
		Msg("Copied sources into site directory")
	return true, nil
}

func (s *SharedInstaller) hasMarker(dir string) bool {
	if s.cfg.SiteMarker == "" {
		return s.mat.Exists(dir)
	}
	return s.mat.Exists(filepath.Join(dir, filepath.FromSlash(s.cfg.SiteMarker)))
}

func (s *SharedInstaller) link(pkg types.Package) error {
	if err := s.linkVendor(pkg); err != nil {
		return err
	}
	if !s.cfg.SymlinkEnabled {
		return nil
	}

	buildLink, found, err := s.BuildLink(pkg)
	if err != nil || !found {
		return err
	}
	created, err := s.mat.EnsureSymlink(s.VendorLink(pkg), buildLink)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info().Str("package", pkg.Name).Str("version", pkg.Version).Msg("Created build symlink")
	}
	return nil
}

// linkVendor creates the vendor symlink. Packages whose binaries are copied
// get a real directory there instead.
func (s *SharedInstaller) linkVendor(pkg types.Package) error {
	if !s.cfg.SymlinkEnabled || s.copiesBinaries(pkg) {
		return nil
	}
	created, err := s.mat.EnsureSymlink(s.InstallPath(pkg), s.VendorLink(pkg))
	if err != nil {
		return err
	}
	if created {
		s.logger.Info().Str("package", pkg.Name).Str("version", pkg.Version).Msg("Created vendor symlink")
	}
	return nil
}

func (s *SharedInstaller) copiesBinaries(pkg types.Package) bool {
	return pkg.HasBinaries() && s.cfg.CopiesBinaries(pkg.Name)
}

// materializeBinaries copies the package into its vendor entry and links the
// binaries from that copy. Denylisted packages keep the links into the store.
func (s *SharedInstaller) materializeBinaries(pkg types.Package) error {
	if !pkg.HasBinaries() {
		return nil
	}
	if !s.cfg.CopiesBinaries(pkg.Name) {
		s.logger.Warn().
			Str("package", pkg.Name).
			Msg("Binaries not copied, package is in no-copy-binaries; links point into the shared store")
		return nil
	}

	vendor := s.VendorLink(pkg)
	if err := s.mat.ReplaceWithCopy(s.InstallPath(pkg), vendor); err != nil {
		return err
	}
	return s.library.LinkBinaries(pkg, vendor)
}

// unlink removes the project's build tree entries of pkg and the directories
// that become empty.
func (s *SharedInstaller) unlink(pkg types.Package) error {
	vendor := s.VendorLink(pkg)
	if s.mat.IsSymlink(vendor) {
		if _, err := s.mat.RemoveSymlink(vendor); err != nil {
			return err
		}
	} else if pkg.HasBinaries() && s.mat.Exists(vendor) {
		if err := s.fs.RemoveAll(vendor); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove vendor copy %s", vendor).
				WithDetail("path", vendor)
		}
	}
	if err := s.mat.RemoveEmptyParents(filepath.Dir(vendor), s.cfg.Layout.BuildVendorDir()); err != nil {
		return err
	}

	buildLink, found, err := s.BuildLink(pkg)
	if err != nil || !found {
		return err
	}
	if _, err := s.mat.RemoveSymlink(buildLink); err != nil {
		return err
	}
	return s.mat.RemoveEmptyParents(filepath.Dir(buildLink), s.cfg.Layout.SiteDir())
}
