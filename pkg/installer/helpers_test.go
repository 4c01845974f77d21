package installer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/fetch"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/installer"
	"github.com/arthur-debert/sharedpkg/pkg/installpaths"
	"github.com/arthur-debert/sharedpkg/pkg/ledger"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/repository"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/stretchr/testify/require"
)

// project is one consuming project wired against a shared store.
type project struct {
	root    string
	cfg     *config.ProjectConfig
	repo    *repository.Repository
	ledger  *ledger.Ledger
	library *installer.LibraryInstaller
	shared  *installer.SharedInstaller
	router  *installer.Router
}

func newProject(t *testing.T, store, sources string, confirm bool, mutate ...func(*config.ProjectConfig)) *project {
	t.Helper()
	root := t.TempDir()

	cfg := &config.ProjectConfig{
		ProjectRoot: root,
		Context:     types.NewBuildContext(false, "main"),
		BuildPrefix: "build/main",
		Layout: paths.Layout{
			ProjectRoot: root,
			BuildPrefix: "build/main",
			VendorDir:   "vendor",
			BinDir:      "bin",
		},
		StoreDir: store,
		InstallerPaths: installpaths.Rules{
			{Path: "web/modules/contrib/{$name}", Match: []string{"type:drupal-module"}},
			{Path: "web/themes/contrib/{$name}", Match: []string{"type:drupal-theme"}},
		},
		SymlinkEnabled:  true,
		PackageList:     []string{"*"},
		CopyTypes:       []string{"drupal-core"},
		SiteMarker:      "index.php",
		BuildLinkPrefix: "drupal-",
		SharedType:      "shared-package",
		StrictTemplates: true,
	}
	for _, m := range mutate {
		m(cfg)
	}

	repo, err := repository.Open(cfg.Layout.RepositoryPath())
	require.NoError(t, err)

	fsys := filesystem.NewOS()
	led := ledger.New(store)
	library := installer.NewLibraryInstaller(cfg, fsys, fetch.New(fsys, sources))
	shared := installer.NewSharedInstaller(cfg, fsys, library, led, types.StaticConfirmer(confirm))
	router := installer.NewRouter(installer.NewSolver(cfg.PackageList, cfg.SharedType), shared, library)

	return &project{
		root:    root,
		cfg:     cfg,
		repo:    repo,
		ledger:  led,
		library: library,
		shared:  shared,
		router:  router,
	}
}

// writeSource creates a path source below sources and returns its name.
func writeSource(t *testing.T, sources, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(sources, name)
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		mode := os.FileMode(0644)
		if filepath.Base(filepath.Dir(p)) == "bin" {
			mode = 0755
		}
		require.NoError(t, os.WriteFile(p, []byte(body), mode))
	}
	return name
}

func pathPackage(name, typ, version, source string) types.Package {
	return types.Package{
		Name:    name,
		Type:    typ,
		Version: version,
		Source:  &types.Source{Type: types.SourcePath, URL: source},
	}
}

func isSymlink(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Lstat(path)
	require.NoError(t, err, "expected an entry at %s", path)
	return info.Mode()&os.ModeSymlink != 0
}

func resolved(t *testing.T, path string) string {
	t.Helper()
	real, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return real
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
