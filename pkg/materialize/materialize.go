// Package materialize builds the link and copy topology that exposes shared
// store packages inside a project's build tree.
//
// Every operation checks the current state before acting, so repeating an
// operation after a failure never leaves the tree worse than before. Every
// symlink target is written relative to the link's directory, which keeps a
// build tree valid when the whole project is moved.
package materialize

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// Materializer performs link and copy operations against a filesystem.
type Materializer struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a Materializer on top of fs.
func New(fsys types.FS) *Materializer {
	return &Materializer{
		fs:     fsys,
		logger: logging.GetLogger("materialize"),
	}
}

// RelativeTarget returns source expressed relative to the directory that
// will contain link.
func RelativeTarget(source, link string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(link), source)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSymlinkCreate,
			"cannot express %s relative to %s", source, link)
	}
	return rel, nil
}

// EnsureSymlink creates link pointing at source. Missing parent directories
// are created. If link is already a symlink nothing is done and false is
// returned. A non-link entry at link is an error and is left untouched.
func (m *Materializer) EnsureSymlink(source, link string) (bool, error) {
	info, err := m.fs.Lstat(link)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		return false, nil
	case err == nil:
		return false, errors.Newf(errors.ErrSymlinkExists,
			"cannot create symlink %s: a non-link entry is in the way", link).
			WithDetail("path", link)
	case !os.IsNotExist(err):
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", link).
			WithDetail("path", link)
	}

	if err := m.fs.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create parent directory of %s", link).
			WithDetail("path", link)
	}

	target, err := RelativeTarget(source, link)
	if err != nil {
		return false, err
	}
	if err := m.fs.Symlink(target, link); err != nil {
		return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s", link).
			WithDetail("path", link).
			WithDetail("target", target)
	}

	m.logger.Debug().Str("link", link).Str("target", target).Msg("Symlink created")
	return true, nil
}

// RemoveSymlink removes link only if it is currently a symlink.
func (m *Materializer) RemoveSymlink(link string) (bool, error) {
	if !m.IsSymlink(link) {
		return false, nil
	}
	if err := m.fs.Remove(link); err != nil {
		return false, errors.Wrapf(err, errors.ErrSymlinkRemove, "failed to remove symlink %s", link).
			WithDetail("path", link)
	}
	m.logger.Debug().Str("link", link).Msg("Symlink removed")
	return true, nil
}

// RemoveEmptyDirectory removes path only if it is an existing, empty, real
// directory.
func (m *Materializer) RemoveEmptyDirectory(path string) (bool, error) {
	info, err := m.fs.Lstat(path)
	if err != nil || !info.IsDir() {
		return false, nil
	}
	entries, err := m.fs.ReadDir(path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path).
			WithDetail("path", path)
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := m.fs.Remove(path); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirRemove, "failed to remove %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

// RemoveEmptyParents removes the empty directories from dir upwards, stopping
// at (and never removing) stop or the first directory that is not empty.
func (m *Materializer) RemoveEmptyParents(dir, stop string) error {
	stop = filepath.Clean(stop)
	for current := filepath.Clean(dir); current != stop && paths.IsWithin(stop, current); current = filepath.Dir(current) {
		removed, err := m.RemoveEmptyDirectory(current)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
	}
	return nil
}

// IsSymlink reports whether path is a symlink, dangling or not.
func (m *Materializer) IsSymlink(path string) bool {
	info, err := m.fs.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// Exists reports whether path resolves to an existing entry.
func (m *Materializer) Exists(path string) bool {
	_, err := m.fs.Stat(path)
	return err == nil
}

// ReplaceWithCopy removes whatever is at dst (link, file or tree) and copies
// src there.
func (m *Materializer) ReplaceWithCopy(src, dst string) error {
	if _, err := m.fs.Lstat(dst); err == nil {
		if err := m.fs.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to remove stale entry %s", dst).
				WithDetail("path", dst)
		}
		m.logger.Debug().Str("path", dst).Msg("Stale entry removed")
	}
	return m.CopyTree(src, dst)
}

// CopyTree copies the tree at src into dst, merging into existing
// directories. Regular files keep their mode. Symlinks inside the tree are
// recreated as symlinks with the same target. src itself may be a symlink.
func (m *Materializer) CopyTree(src, dst string) error {
	info, err := m.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "copy source %s is not readable", src).
			WithDetail("path", src)
	}
	if !info.IsDir() {
		return m.copyFile(src, dst, info.Mode().Perm())
	}
	return m.copyDir(src, dst, info.Mode().Perm())
}

func (m *Materializer) copyDir(src, dst string, perm fs.FileMode) error {
	if err := m.fs.MkdirAll(dst, perm|0700); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dst).
			WithDetail("path", dst)
	}

	entries, err := m.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src).
			WithDetail("path", src)
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		info, err := m.fs.Lstat(from)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", from).
				WithDetail("path", from)
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			if err := m.copyLink(from, to); err != nil {
				return err
			}
		case info.IsDir():
			if err := m.copyDir(from, to, info.Mode().Perm()); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := m.copyFile(from, to, info.Mode().Perm()); err != nil {
				return err
			}
		default:
			m.logger.Debug().Str("path", from).Msg("Skipping special file")
		}
	}
	return nil
}

func (m *Materializer) copyLink(from, to string) error {
	target, err := m.fs.Readlink(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to read link %s", from).
			WithDetail("path", from)
	}
	if _, err := m.fs.Lstat(to); err == nil {
		if err := m.fs.RemoveAll(to); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to replace %s", to).
				WithDetail("path", to)
		}
	}
	if err := m.fs.Symlink(target, to); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to recreate link %s", to).
			WithDetail("path", to)
	}
	return nil
}

func (m *Materializer) copyFile(from, to string, perm fs.FileMode) error {
	// Writing through an existing link would modify the link target.
	if m.IsSymlink(to) {
		if err := m.fs.Remove(to); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "failed to replace %s", to).
				WithDetail("path", to)
		}
	}

	in, err := m.fs.Open(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to open %s", from).
			WithDetail("path", from)
	}
	defer func() { _ = in.Close() }()

	out, err := m.fs.Create(to, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create %s", to).
			WithDetail("path", to)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to copy %s", from).
			WithDetail("path", to)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", to).
			WithDetail("path", to)
	}

	// Create only applies perm to new files.
	if err := m.fs.Chmod(to, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set mode of %s", to).
			WithDetail("path", to)
	}
	return nil
}
