package installer

import (
	"sort"

	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// OperationKind is the action of one planned operation.
type OperationKind string

const (
	OpInstall   OperationKind = "install"
	OpUpdate    OperationKind = "update"
	OpUninstall OperationKind = "uninstall"
)

// Operation is one step of a plan. Initial is set for updates only.
type Operation struct {
	Kind    OperationKind
	Package types.Package
	Initial *types.Package
}

func (o Operation) String() string {
	if o.Kind == OpUpdate && o.Initial != nil {
		return string(o.Kind) + " " + o.Package.Name + " " + o.Initial.Version + " -> " + o.Package.Version
	}
	return string(o.Kind) + " " + o.Package.String()
}

// Plan computes the operations turning installed into desired: names no
// longer desired are uninstalled, names whose version or type changed are
// updated and new names are installed. Uninstalls come first, then updates,
// then installs, each sorted by name.
func Plan(installed, desired []types.Package) []Operation {
	current := make(map[string]types.Package, len(installed))
	for _, pkg := range installed {
		current[pkg.Name] = pkg
	}
	wanted := make(map[string]bool, len(desired))

	var uninstalls, updates, installs []Operation
	for _, pkg := range desired {
		wanted[pkg.Name] = true
		existing, ok := current[pkg.Name]
		switch {
		case !ok:
			installs = append(installs, Operation{Kind: OpInstall, Package: pkg})
		case existing.Version != pkg.Version || existing.Type != pkg.Type:
			initial := existing
			updates = append(updates, Operation{Kind: OpUpdate, Package: pkg, Initial: &initial})
		}
	}
	for _, pkg := range installed {
		if !wanted[pkg.Name] {
			uninstalls = append(uninstalls, Operation{Kind: OpUninstall, Package: pkg})
		}
	}

	ops := make([]Operation, 0, len(uninstalls)+len(updates)+len(installs))
	for _, group := range [][]Operation{uninstalls, updates, installs} {
		sort.Slice(group, func(i, j int) bool { return group[i].Package.Name < group[j].Package.Name })
		ops = append(ops, group...)
	}
	return ops
}
