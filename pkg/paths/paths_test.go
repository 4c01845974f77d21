// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test canonical store paths, build tree layout and root discovery

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		pkg  types.Package
		want string
	}{
		{
			name: "vendor_and_name",
			pkg:  types.Package{Name: "drupal/views", Version: "3.0.0"},
			want: "/store/vendor/drupal/views/3.0.0",
		},
		{
			name: "no_vendor",
			pkg:  types.Package{Name: "widget", Version: "1.0"},
			want: "/store/vendor/widget/1.0",
		},
		{
			name: "target_dir",
			pkg:  types.Package{Name: "acme/lib", Version: "dev-main", TargetDir: "src/Lib"},
			want: "/store/vendor/acme/lib/dev-main/src/Lib",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), paths.Resolve(tt.pkg, filepath.FromSlash("/store/vendor")))
		})
	}
}

func TestResolveIgnoresProjectFacingFields(t *testing.T) {
	a := types.Package{Name: "x/y", Version: "1.0", Type: "drupal-module"}
	b := types.Package{
		Name:     "x/y",
		Version:  "1.0",
		Type:     "library",
		Extra:    map[string]interface{}{"installer-name": "other"},
		Binaries: []string{"bin/y"},
	}
	assert.Equal(t, paths.Resolve(a, "/s"), paths.Resolve(b, "/s"))
}

func TestLayout(t *testing.T) {
	l := paths.Layout{
		ProjectRoot: filepath.FromSlash("/p"),
		BuildPrefix: "build/main",
		VendorDir:   "vendor",
		BinDir:      "bin",
	}
	pkg := types.Package{Name: "drupal/views", Version: "3.0.0", TargetDir: "sub"}

	assert.Equal(t, filepath.FromSlash("/p/build/main"), l.BuildDir())
	assert.Equal(t, filepath.FromSlash("/p/build/main/vendor"), l.BuildVendorDir())
	assert.Equal(t, filepath.FromSlash("/p/build/main/bin"), l.BuildBinDir())
	assert.Equal(t, filepath.FromSlash("/p/build/main"), l.SiteDir())
	assert.Equal(t, filepath.FromSlash("/p/build/main/web/modules/views"), l.SitePath("web/modules/views"))
	assert.Equal(t, filepath.FromSlash("/p/build/main/vendor/drupal/views"), l.VendorLink(pkg))
	assert.Equal(t, filepath.FromSlash("/p/build/main/vendor/drupal/views/sub"), l.ConventionalPath(pkg))
	assert.Equal(t, filepath.FromSlash("/p/build/main/bin/tool"), l.BinLink("bin/tool"))
	assert.Equal(t, filepath.FromSlash("/store/vendor"), l.SharedVendorDir(filepath.FromSlash("/store")))
	assert.Equal(t, filepath.FromSlash("/p/build/main/vendor/installed.json"), l.RepositoryPath())
}

func TestLayoutEmptyBuildPrefix(t *testing.T) {
	l := paths.Layout{ProjectRoot: filepath.FromSlash("/p"), VendorDir: "lib/vendor", BinDir: "bin"}
	assert.Equal(t, filepath.FromSlash("/p/lib/vendor"), l.BuildVendorDir())
	assert.Equal(t, filepath.FromSlash("/p/lib"), l.SiteDir())
}

func TestDefaultStoreDir(t *testing.T) {
	t.Run("env_override", func(t *testing.T) {
		t.Setenv(paths.EnvStoreDir, "/custom/store")
		assert.Equal(t, "/custom/store", paths.DefaultStoreDir())
	})

	t.Run("xdg_data_home", func(t *testing.T) {
		dataHome := t.TempDir()
		t.Setenv(paths.EnvStoreDir, "")
		t.Setenv("XDG_DATA_HOME", dataHome)
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		assert.Equal(t, filepath.Join(dataHome, "sharedpkg", "store"), paths.DefaultStoreDir())
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, paths.ConfigFileName), []byte(""), 0644))
	nested := filepath.Join(root, "web", "modules")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, fallback, err := paths.FindProjectRoot("", nested)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, root, found)

	explicit, fallback, err := paths.FindProjectRoot(nested, root)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, nested, explicit)

	bare := t.TempDir()
	found, fallback, err = paths.FindProjectRoot("", bare)
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, bare, found)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, paths.ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "store"), paths.ExpandHome("~/store"))
	assert.Equal(t, "~other/store", paths.ExpandHome("~other/store"))
	assert.Equal(t, "/abs", paths.ExpandHome("/abs"))
}

func TestIsWithin(t *testing.T) {
	assert.True(t, paths.IsWithin("/a", "/a"))
	assert.True(t, paths.IsWithin("/a", "/a/b/c"))
	assert.True(t, paths.IsWithin("/a", "/a/..b"))
	assert.False(t, paths.IsWithin("/a", "/ab"))
	assert.False(t, paths.IsWithin("/a/b", "/a"))
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "vendor"},
		{name: "nested", path: "web/modules/views"},
		{name: "inner_dotdot_stays_inside", path: "a/../b"},
		{name: "empty", path: "", wantErr: true},
		{name: "absolute", path: "/etc", wantErr: true},
		{name: "escapes", path: "../outside", wantErr: true},
		{name: "escapes_after_clean", path: "a/../../b", wantErr: true},
		{name: "null_byte", path: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := paths.ValidateRelativePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "drupal_views@1.0", paths.SanitizeKey("drupal/views@1.0"))
	assert.Equal(t, "_", paths.SanitizeKey(".."))
	assert.Equal(t, "a_b", paths.SanitizeKey("a b"))
}
