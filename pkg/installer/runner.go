package installer

import (
	stderrors "errors"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/rs/zerolog"
)

// Result is the outcome of one operation.
type Result struct {
	Operation Operation
	Err       error
}

// Report collects the results of a run.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Succeeded counts the operations that completed.
func (r *Report) Succeeded() int {
	return len(r.Results) - len(r.Failed())
}

// Runner executes operations against one project repository. A failing
// operation stops that package only; the remaining operations still run.
type Runner struct {
	installer Installer
	repo      types.InstalledRepository
	logger    zerolog.Logger
}

// NewRunner creates a runner.
func NewRunner(installer Installer, repo types.InstalledRepository) *Runner {
	return &Runner{
		installer: installer,
		repo:      repo,
		logger:    logging.GetLogger("installer.runner"),
	}
}

// Run executes ops in order and returns the report along with every failure
// joined into one error.
func (r *Runner) Run(ops []Operation) (*Report, error) {
	report := &Report{}
	var errs []error

	for _, op := range ops {
		done := logging.LogOperationStart(r.logger, op.String())
		err := r.apply(op)
		done()
		report.Results = append(report.Results, Result{Operation: op, Err: err})
		if err != nil {
			r.logger.Error().Err(err).Str("operation", op.String()).Msg("Operation failed")
			errs = append(errs, err)
			continue
		}
		r.logger.Debug().Str("operation", op.String()).Msg("Operation completed")
	}

	return report, stderrors.Join(errs...)
}

// Sync plans the move from the repository's packages to desired, adding an
// install for every unchanged package that is not fully installed, and runs
// the result.
func (r *Runner) Sync(desired []types.Package) (*Report, error) {
	ops := Plan(r.repo.Packages(), desired)

	planned := make(map[string]bool, len(ops))
	for _, op := range ops {
		planned[op.Package.Name] = true
	}

	var repairs []Operation
	for _, pkg := range desired {
		if planned[pkg.Name] {
			continue
		}
		installed, err := r.installer.IsInstalled(r.repo, pkg)
		if err != nil {
			return nil, err
		}
		if !installed {
			r.logger.Debug().Str("package", pkg.Name).Msg("Package incomplete, reinstalling")
			repairs = append(repairs, Operation{Kind: OpInstall, Package: pkg})
		}
	}

	return r.Run(append(ops, repairs...))
}

func (r *Runner) apply(op Operation) error {
	switch op.Kind {
	case OpInstall:
		return r.installer.Install(r.repo, op.Package)
	case OpUninstall:
		return r.installer.Uninstall(r.repo, op.Package)
	case OpUpdate:
		if op.Initial == nil {
			return errors.Newf(errors.ErrInvariant, "update of %s has no initial package", op.Package.Name).
				WithDetails(packageFields(op.Package))
		}
		return r.installer.Update(r.repo, *op.Initial, op.Package)
	default:
		return errors.Newf(errors.ErrInternal, "unknown operation %q", op.Kind)
	}
}
