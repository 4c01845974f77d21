// Package paths provides centralized path handling for sharedpkg.
// It computes the canonical shared store location of a package version and
// the per-project build tree layout, and implements XDG Base Directory
// compliance for the default store location.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// Environment variable names
const (
	// EnvStoreDir overrides the shared store root
	EnvStoreDir = "SHAREDPKG_STORE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// These define the on-disk layout of the shared store and are not
// user-configurable. User-configurable paths belong in pkg/config.
const (
	// AppDirName is the directory name for sharedpkg-specific files
	AppDirName = "sharedpkg"

	// StoreDirName is the subdirectory of the XDG data dir holding the store
	StoreDirName = "store"

	// ConfigFileName is the per-project configuration file
	ConfigFileName = "sharedpkg.toml"

	// LedgerFileName is the usage ledger inside the store root
	LedgerFileName = "usage.json"

	// LocksDirName holds the store lock files inside the store root
	LocksDirName = ".locks"

	// RepositoryFileName records the installed packages of a project,
	// inside its build vendor directory
	RepositoryFileName = "installed.json"
)

// Resolve returns the canonical shared store path of pkg:
// sharedVendorDir/<name>/<version>[/<targetDir>]. It depends only on the
// package name, version and target dir, never on the calling project.
func Resolve(pkg types.Package, sharedVendorDir string) string {
	parts := []string{sharedVendorDir, filepath.FromSlash(pkg.Name), pkg.Version}
	if pkg.TargetDir != "" {
		parts = append(parts, filepath.FromSlash(pkg.TargetDir))
	}
	return filepath.Join(parts...)
}

// DefaultStoreDir returns the shared store root: $SHAREDPKG_STORE_DIR when
// set, otherwise $XDG_DATA_HOME/sharedpkg/store.
func DefaultStoreDir() string {
	if dir := os.Getenv(EnvStoreDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.DataHome, AppDirName, StoreDirName)
}

// LedgerPath returns the usage ledger file of a store.
func LedgerPath(storeDir string) string {
	return filepath.Join(storeDir, LedgerFileName)
}

// LocksDir returns the lock file directory of a store.
func LocksDir(storeDir string) string {
	return filepath.Join(storeDir, LocksDirName)
}

// FindProjectRoot determines the project root using the following priority:
// 1. explicit (if non-empty)
// 2. the nearest directory at or above start containing sharedpkg.toml
// 3. start itself (fallback)
//
// The returned bool reports whether the fallback was used.
func FindProjectRoot(explicit, start string) (string, bool, error) {
	if explicit != "" {
		root, err := NormalizePath(explicit)
		return root, false, err
	}

	dir, err := NormalizePath(start)
	if err != nil {
		return "", false, err
	}
	for current := dir; ; {
		if _, err := os.Stat(filepath.Join(current, ConfigFileName)); err == nil {
			return current, false, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dir, true, nil
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}
	return filepath.Clean(abs), nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}

// IsWithin reports whether path is root or lies below it.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
