package types

import (
	"io/fs"
)

// FS is the filesystem interface required for sharedpkg operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Open(name string) (fs.File, error)
	Create(name string, perm fs.FileMode) (WriteCloser, error)
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Lstat(name string) (fs.FileInfo, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// WriteCloser is the writable file handle returned by FS.Create
type WriteCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

// InstalledRepository records which packages a project currently has
// installed, whatever installer put them there.
type InstalledRepository interface {
	HasPackage(pkg Package) bool
	AddPackage(pkg Package) error
	RemovePackage(pkg Package) error
	Packages() []Package
}
