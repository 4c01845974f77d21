package installer

import (
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// Route names the installer a package is dispatched to.
type Route string

const (
	RouteShared       Route = "shared"
	RouteConventional Route = "conventional"
)

// Router dispatches every operation to the shared or the conventional
// installer.
type Router struct {
	solver       *Solver
	shared       Installer
	conventional Installer
	logger       zerolog.Logger
}

var _ Installer = (*Router)(nil)

// NewRouter creates a router. conventional is any Installer; normally a
// LibraryInstaller.
func NewRouter(solver *Solver, shared, conventional Installer) *Router {
	return &Router{
		solver:       solver,
		shared:       shared,
		conventional: conventional,
		logger:       logging.GetLogger("installer.router"),
	}
}

// Route reports which installer handles pkg.
func (r *Router) Route(pkg types.Package) Route {
	if r.solver.IsShared(pkg) {
		return RouteShared
	}
	return RouteConventional
}

func (r *Router) installerFor(pkg types.Package) Installer {
	route := r.Route(pkg)
	r.logger.Trace().Str("package", pkg.Name).Str("route", string(route)).Msg("Routed")
	if route == RouteShared {
		return r.shared
	}
	return r.conventional
}

// Install implements Installer
func (r *Router) Install(repo types.InstalledRepository, pkg types.Package) error {
	return r.installerFor(pkg).Install(repo, pkg)
}

// IsInstalled implements Installer
func (r *Router) IsInstalled(repo types.InstalledRepository, pkg types.Package) (bool, error) {
	return r.installerFor(pkg).IsInstalled(repo, pkg)
}

// Update keeps conventional updates conventional. When the route changes the
// initial package is uninstalled through its own route and the target is
// installed through the new one.
func (r *Router) Update(repo types.InstalledRepository, initial, target types.Package) error {
	from, to := r.Route(initial), r.Route(target)

	switch {
	case from == RouteConventional && to == RouteConventional:
		return r.conventional.Update(repo, initial, target)
	case from != to:
		r.logger.Debug().
			Str("package", target.Name).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("Route changed, reinstalling")
		if err := r.installerFor(initial).Uninstall(repo, initial); err != nil {
			return err
		}
		return r.installerFor(target).Install(repo, target)
	default:
		if !repo.HasPackage(initial) {
			return errors.Newf(errors.ErrNotInstalled, "package %s is not installed", initial.Name).
				WithDetails(packageFields(initial))
		}
		return r.shared.Update(repo, initial, target)
	}
}

// Uninstall implements Installer
func (r *Router) Uninstall(repo types.InstalledRepository, pkg types.Package) error {
	if r.Route(pkg) == RouteShared && !repo.HasPackage(pkg) {
		return errors.Newf(errors.ErrNotInstalled, "package %s is not installed", pkg.Name).
			WithDetails(packageFields(pkg))
	}
	return r.installerFor(pkg).Uninstall(repo, pkg)
}
