// Package ledger persists which projects use which shared package versions.
//
// The ledger is a JSON file in the store root. Every mutation is a locked
// read-modify-write followed by an atomic rename, so projects installing
// against the same store from separate processes never drop each other's
// entries.
package ledger

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/storelock"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

const (
	formatVersion = 1
	lockKey       = "usage-ledger"
)

// Usage is the sorted set of project identifiers referencing one package
// version.
type Usage []string

// Contains reports whether projectID is part of the set.
func (u Usage) Contains(projectID string) bool {
	i := sort.SearchStrings(u, projectID)
	return i < len(u) && u[i] == projectID
}

// Entry is one ledger row.
type Entry struct {
	Key      types.PackageKey
	Projects Usage
}

// document is the on-disk form: name → version → projects.
type document struct {
	Version  int                            `json:"version"`
	Packages map[string]map[string][]string `json:"packages"`
}

// Ledger is the usage ledger of one shared store.
type Ledger struct {
	path     string
	locksDir string
	logger   zerolog.Logger
}

// New returns the ledger of the store rooted at storeDir.
func New(storeDir string) *Ledger {
	return &Ledger{
		path:     paths.LedgerPath(storeDir),
		locksDir: paths.LocksDir(storeDir),
		logger:   logging.GetLogger("ledger"),
	}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// AddUsage records that projectID uses key. Adding twice is a no-op.
func (l *Ledger) AddUsage(key types.PackageKey, projectID string) error {
	return l.update(func(doc *document) bool {
		versions, ok := doc.Packages[key.Name]
		if !ok {
			versions = make(map[string][]string)
			doc.Packages[key.Name] = versions
		}
		projects := Usage(versions[key.Version])
		if projects.Contains(projectID) {
			return false
		}
		projects = append(projects, projectID)
		sort.Strings(projects)
		versions[key.Version] = projects

		l.logger.Debug().Str("package", key.String()).Str("project", projectID).
			Int("usage", len(projects)).Msg("Usage added")
		return true
	})
}

// RemoveUsage drops projectID from key. Removing an absent project is a
// no-op. Empty sets are pruned from the file.
func (l *Ledger) RemoveUsage(key types.PackageKey, projectID string) error {
	return l.update(func(doc *document) bool {
		versions, ok := doc.Packages[key.Name]
		if !ok {
			return false
		}
		projects := Usage(versions[key.Version])
		if !projects.Contains(projectID) {
			return false
		}

		kept := make([]string, 0, len(projects)-1)
		for _, p := range projects {
			if p != projectID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(versions, key.Version)
		} else {
			versions[key.Version] = kept
		}
		if len(versions) == 0 {
			delete(doc.Packages, key.Name)
		}

		l.logger.Debug().Str("package", key.String()).Str("project", projectID).
			Int("usage", len(kept)).Msg("Usage removed")
		return true
	})
}

// GetUsage returns the projects referencing key. The file is only ever
// replaced by rename, so reads need no lock.
func (l *Ledger) GetUsage(key types.PackageKey) (Usage, error) {
	doc, err := l.load()
	if err != nil {
		return nil, err
	}
	projects := Usage(append([]string(nil), doc.Packages[key.Name][key.Version]...))
	sort.Strings(projects)
	return projects, nil
}

// Entries returns every row, ordered by name then version.
func (l *Ledger) Entries() ([]Entry, error) {
	doc, err := l.load()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for name, versions := range doc.Packages {
		for version, projects := range versions {
			usage := Usage(append([]string(nil), projects...))
			sort.Strings(usage)
			entries = append(entries, Entry{
				Key:      types.PackageKey{Name: name, Version: version},
				Projects: usage,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key.Name != entries[j].Key.Name {
			return entries[i].Key.Name < entries[j].Key.Name
		}
		return entries[i].Key.Version < entries[j].Key.Version
	})
	return entries, nil
}

func (l *Ledger) update(mutate func(doc *document) bool) error {
	return storelock.With(l.locksDir, lockKey, func() error {
		doc, err := l.load()
		if err != nil {
			return err
		}
		if !mutate(doc) {
			return nil
		}
		return l.save(doc)
	})
}

func (l *Ledger) load() (*document, error) {
	doc := &document{Version: formatVersion, Packages: make(map[string]map[string][]string)}

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateRead, "failed to read usage ledger %s", l.path).
			WithDetail("path", l.path)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateRead, "usage ledger %s is corrupt", l.path).
			WithDetail("path", l.path)
	}
	if doc.Packages == nil {
		doc.Packages = make(map[string]map[string][]string)
	}
	return doc, nil
}

func (l *Ledger) save(doc *document) error {
	doc.Version = formatVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateWrite, "failed to encode usage ledger")
	}
	if err := filesystem.WriteFileAtomic(l.path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to write usage ledger %s", l.path).
			WithDetail("path", l.path)
	}
	return nil
}
