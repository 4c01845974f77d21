// Package repository records the packages installed into one project's build
// tree, whichever installer put them there.
package repository

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

type document struct {
	Packages []types.Package `json:"packages"`
}

// Repository is a file-backed types.InstalledRepository. Every mutation is
// written to disk before it returns.
type Repository struct {
	mu       sync.Mutex
	path     string
	packages map[string]types.Package
}

var _ types.InstalledRepository = (*Repository)(nil)

// Open loads the repository at path. A missing file is an empty repository.
func Open(path string) (*Repository, error) {
	r := &Repository{path: path, packages: make(map[string]types.Package)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateRead, "failed to read installed packages %s", path).
			WithDetail("path", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateRead, "installed packages file %s is corrupt", path).
			WithDetail("path", path)
	}
	for _, pkg := range doc.Packages {
		r.packages[pkg.Name] = pkg
	}
	return r, nil
}

// Path returns the backing file.
func (r *Repository) Path() string {
	return r.path
}

// HasPackage reports whether pkg is recorded with the same version.
func (r *Repository) HasPackage(pkg types.Package) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	recorded, ok := r.packages[pkg.Name]
	return ok && recorded.Version == pkg.Version
}

// Find returns the recorded package with the given name.
func (r *Repository) Find(name string) (types.Package, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pkg, ok := r.packages[name]
	return pkg, ok
}

// AddPackage records pkg, replacing any version recorded under its name.
func (r *Repository) AddPackage(pkg types.Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, had := r.packages[pkg.Name]
	r.packages[pkg.Name] = pkg
	if err := r.saveLocked(); err != nil {
		if had {
			r.packages[pkg.Name] = previous
		} else {
			delete(r.packages, pkg.Name)
		}
		return err
	}
	return nil
}

// RemovePackage forgets pkg. Removing an unrecorded package is a no-op.
func (r *Repository) RemovePackage(pkg types.Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, ok := r.packages[pkg.Name]
	if !ok || previous.Version != pkg.Version {
		return nil
	}
	delete(r.packages, pkg.Name)
	if err := r.saveLocked(); err != nil {
		r.packages[pkg.Name] = previous
		return err
	}
	return nil
}

// Packages returns the recorded packages sorted by name.
func (r *Repository) Packages() []types.Package {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Package, 0, len(r.packages))
	for _, pkg := range r.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Repository) saveLocked() error {
	doc := document{Packages: make([]types.Package, 0, len(r.packages))}
	for _, pkg := range r.packages {
		doc.Packages = append(doc.Packages, pkg)
	}
	sort.Slice(doc.Packages, func(i, j int) bool { return doc.Packages[i].Name < doc.Packages[j].Name })

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateWrite, "failed to encode installed packages")
	}
	if err := filesystem.WriteFileAtomic(r.path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to write installed packages %s", r.path).
			WithDetail("path", r.path)
	}
	return nil
}
