package installer

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/fetch"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/materialize"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// LibraryInstaller is the conventional installer: every project gets its own
// copy of the sources under the build vendor directory.
type LibraryInstaller struct {
	cfg     *config.ProjectConfig
	fs      types.FS
	mat     *materialize.Materializer
	fetcher fetch.Fetcher
	logger  zerolog.Logger
}

var _ Installer = (*LibraryInstaller)(nil)

// NewLibraryInstaller creates a conventional installer for the project.
func NewLibraryInstaller(cfg *config.ProjectConfig, fsys types.FS, fetcher fetch.Fetcher) *LibraryInstaller {
	return &LibraryInstaller{
		cfg:     cfg,
		fs:      fsys,
		mat:     materialize.New(fsys),
		fetcher: fetcher,
		logger:  logging.GetLogger("installer.library"),
	}
}

// InstallPath is <build vendor>/<name>[/<target-dir>].
func (l *LibraryInstaller) InstallPath(pkg types.Package) string {
	return l.cfg.Layout.ConventionalPath(pkg)
}

// Install fetches pkg into its install path.
func (l *LibraryInstaller) Install(repo types.InstalledRepository, pkg types.Package) error {
	return l.InstallAt(repo, pkg, l.InstallPath(pkg))
}

// IsInstalled reports whether pkg is recorded and its sources are present.
func (l *LibraryInstaller) IsInstalled(repo types.InstalledRepository, pkg types.Package) (bool, error) {
	return repo.HasPackage(pkg) && l.mat.Exists(l.InstallPath(pkg)), nil
}

// Update replaces the sources of initial with those of target.
func (l *LibraryInstaller) Update(repo types.InstalledRepository, initial, target types.Package) error {
	if !repo.HasPackage(initial) {
		return errors.Newf(errors.ErrNotInstalled, "package %s is not installed", initial.Name).
			WithDetails(packageFields(initial))
	}
	if from, to := l.InstallPath(initial), l.InstallPath(target); from != to {
		if err := l.removeTree(from); err != nil {
			return err
		}
	}
	return l.UpdateAt(repo, initial, target, l.InstallPath(target))
}

// Uninstall removes the sources and binaries of pkg.
func (l *LibraryInstaller) Uninstall(repo types.InstalledRepository, pkg types.Package) error {
	if !repo.HasPackage(pkg) {
		return errors.Newf(errors.ErrNotInstalled, "package %s is not installed", pkg.Name).
			WithDetails(packageFields(pkg))
	}
	return l.UninstallAt(repo, pkg, l.InstallPath(pkg))
}

// InstallAt fetches pkg into path, links its binaries from there and records
// it in repo.
func (l *LibraryInstaller) InstallAt(repo types.InstalledRepository, pkg types.Package, path string) error {
	l.logger.Info().Str("package", pkg.Name).Str("version", pkg.Version).Msg("Installing")

	if err := l.fetcher.Fetch(pkg, path); err != nil {
		return err
	}
	if err := l.LinkBinaries(pkg, path); err != nil {
		return err
	}
	return repo.AddPackage(pkg)
}

// UpdateAt refreshes path with the sources of target.
func (l *LibraryInstaller) UpdateAt(repo types.InstalledRepository, initial, target types.Package, path string) error {
	l.logger.Info().
		Str("package", target.Name).
		Str("from", initial.Version).
		Str("to", target.Version).
		Msg("Updating")

	if err := l.RemoveBinaries(initial); err != nil {
		return err
	}
	if err := l.fetcher.Fetch(target, path); err != nil {
		return err
	}
	if err := l.LinkBinaries(target, path); err != nil {
		return err
	}
	if repo.HasPackage(initial) {
		if err := repo.RemovePackage(initial); err != nil {
			return err
		}
	}
	return repo.AddPackage(target)
}

// UninstallAt removes the binaries of pkg, deletes path and drops pkg from
// repo. Directories left empty are removed up to the vendor directory that
// holds path.
func (l *LibraryInstaller) UninstallAt(repo types.InstalledRepository, pkg types.Package, path string) error {
	l.logger.Info().Str("package", pkg.Name).Str("version", pkg.Version).Msg("Removing")

	if err := l.RemoveBinaries(pkg); err != nil {
		return err
	}
	if err := l.removeTree(path); err != nil {
		return err
	}
	if repo.HasPackage(pkg) {
		return repo.RemovePackage(pkg)
	}
	return nil
}

func (l *LibraryInstaller) removeTree(path string) error {
	if err := l.fs.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove %s", path).
			WithDetail("path", path)
	}

	stop := l.cfg.Layout.BuildVendorDir()
	if shared := l.cfg.SharedVendorDir(); paths.IsWithin(shared, path) {
		stop = shared
	}
	return l.mat.RemoveEmptyParents(filepath.Dir(path), stop)
}

// LinkBinaries links every declared binary of pkg, found below root, into the
// bin directory. A stale entry at a link location is removed first. Binaries
// missing from the sources are skipped with a warning.
func (l *LibraryInstaller) LinkBinaries(pkg types.Package, root string) error {
	for _, bin := range pkg.Binaries {
		source := filepath.Join(root, filepath.FromSlash(bin))
		link := l.cfg.Layout.BinLink(bin)

		info, err := l.fs.Stat(source)
		if err != nil {
			l.logger.Warn().
				Str("package", pkg.Name).
				Str("binary", bin).
				Msg("Skipped binary: file not found in package")
			continue
		}
		if perm := info.Mode().Perm(); perm&0111 == 0 {
			if err := l.fs.Chmod(source, perm|0755); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to make %s executable", source).
					WithDetail("path", source)
			}
		}

		if err := l.removeStale(link); err != nil {
			return err
		}
		if _, err := l.mat.EnsureSymlink(source, link); err != nil {
			return err
		}
		l.logger.Debug().Str("binary", bin).Str("link", link).Msg("Binary linked")
	}
	return nil
}

// RemoveBinaries removes the bin links of pkg and the bin directory when it
// ends up empty.
func (l *LibraryInstaller) RemoveBinaries(pkg types.Package) error {
	if !pkg.HasBinaries() {
		return nil
	}
	for _, bin := range pkg.Binaries {
		if _, err := l.mat.RemoveSymlink(l.cfg.Layout.BinLink(bin)); err != nil {
			return err
		}
	}
	_, err := l.mat.RemoveEmptyDirectory(l.cfg.Layout.BuildBinDir())
	return err
}

func (l *LibraryInstaller) removeStale(path string) error {
	info, err := l.fs.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrSymlinkExists, "cannot link binary %s: a directory is in the way", path).
			WithDetail("path", path)
	}
	if err := l.fs.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove stale entry %s", path).
			WithDetail("path", path)
	}
	return nil
}
