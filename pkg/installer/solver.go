package installer

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// SelfPackage is the package of this tool. It is never shared: it has to be
// usable before the shared store machinery can run.
const SelfPackage = "arthur-debert/sharedpkg"

// Solver decides which packages go through the shared store.
type Solver struct {
	all        bool
	names      map[string]bool
	patterns   []*regexp.Regexp
	sharedType string
}

// NewSolver builds a solver from a package list and the managed shared type.
// List entries are exact names or globs where "*" matches one or more of
// [a-zA-Z0-9_-]; a lone "*" shares everything.
func NewSolver(packageList []string, sharedType string) *Solver {
	s := &Solver{names: make(map[string]bool), sharedType: sharedType}
	for _, entry := range packageList {
		switch {
		case entry == "*":
			s.all = true
		case strings.Contains(entry, "*"):
			s.patterns = append(s.patterns, globPattern(entry))
		default:
			s.names[entry] = true
		}
	}
	return s
}

func globPattern(glob string) *regexp.Regexp {
	parts := strings.Split(glob, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, "[a-zA-Z0-9_-]+") + "$")
}

// IsShared reports whether pkg is installed through the shared store.
func (s *Solver) IsShared(pkg types.Package) bool {
	if pkg.Name == SelfPackage {
		return false
	}
	if s.all || s.names[pkg.Name] {
		return true
	}
	for _, pattern := range s.patterns {
		if pattern.MatchString(pkg.Name) {
			return true
		}
	}
	return s.sharedType != "" && pkg.Type == s.sharedType
}
