// Package fetch acquires package sources from local paths and archives.
//
// Sources are staged in a temporary directory next to the destination and
// renamed into place once complete, so an interrupted fetch never leaves a
// half-populated destination behind.
package fetch

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/materialize"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// Fetcher populates a directory with the sources of a package.
type Fetcher interface {
	Fetch(pkg types.Package, dest string) error
}

// LocalFetcher handles the "path" and "archive" source types.
type LocalFetcher struct {
	fs      types.FS
	mat     *materialize.Materializer
	baseDir string
	logger  zerolog.Logger
}

var _ Fetcher = (*LocalFetcher)(nil)

// New creates a LocalFetcher. Relative source URLs are resolved against
// baseDir, normally the directory of the manifest.
func New(fsys types.FS, baseDir string) *LocalFetcher {
	return &LocalFetcher{
		fs:      fsys,
		mat:     materialize.New(fsys),
		baseDir: baseDir,
		logger:  logging.GetLogger("fetch"),
	}
}

// Fetch replaces dest with the sources of pkg.
func (f *LocalFetcher) Fetch(pkg types.Package, dest string) error {
	if pkg.Source == nil || pkg.Source.URL == "" {
		return errors.Newf(errors.ErrFetch, "package %s has no source", pkg.Name).
			WithDetail("package", pkg.Name).
			WithDetail("version", pkg.Version)
	}

	src := paths.ExpandHome(pkg.Source.URL)
	if !filepath.IsAbs(src) {
		src = filepath.Join(f.baseDir, src)
	}

	info, err := f.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "source of %s is not readable", pkg.Name).
			WithDetail("package", pkg.Name).
			WithDetail("path", src)
	}

	kind := pkg.Source.Type
	if kind == "" {
		kind = types.SourcePath
		if !info.IsDir() {
			kind = types.SourceArchive
		}
	}

	logger := f.logger.With().Str("package", pkg.Name).Str("version", pkg.Version).Logger()
	logger.Debug().Str("source", src).Str("type", kind).Str("dest", dest).Msg("Fetching sources")

	return f.stage(dest, func(staging string) (string, error) {
		switch kind {
		case types.SourcePath:
			if !info.IsDir() {
				return "", errors.Newf(errors.ErrFetch, "path source %s is not a directory", src).
					WithDetail("path", src)
			}
			return staging, f.mat.CopyTree(src, staging)
		case types.SourceArchive:
			if err := extractFile(src, staging); err != nil {
				return "", err
			}
			return singleRoot(staging)
		default:
			return "", errors.Newf(errors.ErrFetch, "unsupported source type %q for %s", kind, pkg.Name).
				WithDetail("package", pkg.Name)
		}
	})
}

// stage runs fill against a fresh temporary directory beside dest and moves
// the directory fill reports as the package root to dest.
func (f *LocalFetcher) stage(dest string, fill func(staging string) (string, error)) error {
	parent := filepath.Dir(dest)
	if err := f.fs.MkdirAll(parent, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", parent).
			WithDetail("path", parent)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+"-*.partial")
	if err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create staging directory in %s", parent).
			WithDetail("path", parent)
	}
	defer func() { _ = f.fs.RemoveAll(tmp) }()

	staging := filepath.Join(tmp, "src")
	if err := f.fs.MkdirAll(staging, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", staging)
	}

	root, err := fill(staging)
	if err != nil {
		return err
	}

	if _, err := f.fs.Lstat(dest); err == nil {
		if err := f.fs.RemoveAll(dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to replace %s", dest).
				WithDetail("path", dest)
		}
	}
	if err := f.fs.Rename(root, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "failed to move sources into %s", dest).
			WithDetail("path", dest)
	}
	return nil
}

// singleRoot returns the only directory inside dir when dir holds exactly one
// entry and it is a directory, otherwise dir itself.
func singleRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrArchive, "failed to read %s", dir)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
