package sharedpkg

import (
	"fmt"
	"os"

	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/fetch"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/installer"
	"github.com/arthur-debert/sharedpkg/pkg/ledger"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/manifest"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/repository"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/arthur-debert/sharedpkg/pkg/ui"
	"github.com/arthur-debert/sharedpkg/pkg/vcs"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags of the root command
type globalOptions struct {
	verbosity     int
	project       string
	noDev         bool
	branch        string
	yes           bool
	noInteraction bool
	format        string
	manifest      string

	// getenv supplies the configuration overrides; tests replace it
	getenv func(string) string
}

// app is one project with its installers wired up
type app struct {
	cfg      *config.ProjectConfig
	repo     *repository.Repository
	ledger   *ledger.Ledger
	library  *installer.LibraryInstaller
	shared   *installer.SharedInstaller
	router   *installer.Router
	manifest *manifest.Manifest
	renderer ui.Renderer
}

func (o *globalOptions) newRenderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

func (o *globalOptions) projectRoot(cmd *cobra.Command) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to read the working directory")
	}
	root, fallback, err := paths.FindProjectRoot(o.project, cwd)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "invalid project root").
			WithDetail("path", o.project)
	}
	if fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning+"\n\n", root)
	}
	return root, nil
}

func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	logger := logging.GetLogger("cli")

	root, err := o.projectRoot(cmd)
	if err != nil {
		return nil, err
	}

	branch, err := vcs.ResolveBranch(o.branch, vcs.NewGitBranchProvider(root))
	if err != nil {
		logger.Debug().Err(err).Str("project", root).Msg("No branch available, templates see an empty branch")
		branch = ""
	}

	getenv := o.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return config.Load(config.Options{
		ProjectRoot: root,
		Context:     types.NewBuildContext(o.noDev, branch),
		Getenv:      getenv,
	})
}

func (o *globalOptions) loadManifest(root string) (*manifest.Manifest, error) {
	path := o.manifest
	if path == "" {
		found, err := manifest.Discover(root)
		if err != nil {
			return nil, err
		}
		path = found
	} else {
		normalized, err := paths.NormalizePath(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestLoad, "invalid manifest path").
				WithDetail("path", path)
		}
		path = normalized
	}
	return manifest.Load(path)
}

// open loads the project configuration and records and wires the
// installers. withManifest also loads the manifest; relative sources then
// resolve against its directory.
func (o *globalOptions) open(cmd *cobra.Command, withManifest bool) (*app, error) {
	renderer, err := o.newRenderer(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	repo, err := repository.Open(cfg.Layout.RepositoryPath())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		repo:     repo,
		ledger:   ledger.New(cfg.StoreDir),
		renderer: renderer,
	}

	baseDir := cfg.ProjectRoot
	if withManifest {
		if a.manifest, err = o.loadManifest(cfg.ProjectRoot); err != nil {
			return nil, err
		}
		baseDir = a.manifest.Dir
	}

	fsys := filesystem.NewOS()
	confirmer := ui.NewConfirmer(ui.ConfirmOptions{
		AssumeYes:     o.yes,
		NoInteraction: o.noInteraction,
		In:            cmd.InOrStdin(),
		Out:           cmd.ErrOrStderr(),
	})
	a.library = installer.NewLibraryInstaller(cfg, fsys, fetch.New(fsys, baseDir))
	a.shared = installer.NewSharedInstaller(cfg, fsys, a.library, a.ledger, confirmer)
	a.router = installer.NewRouter(installer.NewSolver(cfg.PackageList, cfg.SharedType), a.shared, a.library)
	return a, nil
}

func (a *app) runner() *installer.Runner {
	return installer.NewRunner(a.router, a.repo)
}

func (a *app) operationView(op installer.Operation, err error) ui.OperationView {
	view := ui.OperationView{
		Kind:    string(op.Kind),
		Package: op.Package.Name,
		Version: op.Package.Version,
		Route:   string(a.router.Route(op.Package)),
	}
	if op.Initial != nil {
		view.From = op.Initial.Version
	}
	if err != nil {
		view.Error = err.Error()
	}
	return view
}

// render writes the report and turns failed operations into the command
// error.
func (a *app) render(command string, report *installer.Report, runErr error) error {
	view := ui.ReportView{Command: command}
	if report != nil {
		for _, res := range report.Results {
			view.Operations = append(view.Operations, a.operationView(res.Operation, res.Err))
		}
	}
	if err := a.renderer.RenderReport(view); err != nil {
		return err
	}
	if runErr == nil {
		return nil
	}
	if report == nil {
		return runErr
	}
	return errors.Wrapf(runErr, errors.GetErrorCode(runErr), MsgOperationsFailed,
		len(report.Failed()), len(report.Results))
}

func (a *app) status() (ui.StatusView, error) {
	view := ui.StatusView{
		Root:        a.cfg.ProjectRoot,
		Branch:      a.cfg.Context.Branch,
		BuildPrefix: a.cfg.BuildPrefix,
		Store:       a.cfg.StoreDir,
	}
	for _, pkg := range a.repo.Packages() {
		installed, err := a.router.IsInstalled(a.repo, pkg)
		if err != nil {
			return view, err
		}
		pv := ui.PackageView{
			Name:      pkg.Name,
			Type:      pkg.Type,
			Version:   pkg.Version,
			Route:     string(a.router.Route(pkg)),
			Installed: installed,
		}
		if a.router.Route(pkg) == installer.RouteShared {
			pv.Path = a.shared.InstallPath(pkg)
			usage, err := a.ledger.GetUsage(pkg.Key())
			if err != nil {
				return view, err
			}
			pv.Projects = len(usage)
		} else {
			pv.Path = a.library.InstallPath(pkg)
		}
		view.Packages = append(view.Packages, pv)
	}
	return view, nil
}

func (a *app) usage(name, version string) (ui.UsageView, error) {
	view := ui.UsageView{Store: a.cfg.StoreDir}
	entries, err := a.ledger.Entries()
	if err != nil {
		return view, err
	}
	for _, entry := range entries {
		if name != "" && entry.Key.Name != name {
			continue
		}
		if version != "" && entry.Key.Version != version {
			continue
		}
		view.Entries = append(view.Entries, ui.UsageEntryView{
			Name:     entry.Key.Name,
			Version:  entry.Key.Version,
			Projects: append([]string{}, entry.Projects...),
		})
	}
	return view, nil
}
