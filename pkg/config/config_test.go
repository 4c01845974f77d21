// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir) for project sharedpkg.toml files
// PURPOSE: Test layered loading, type validation, build prefix resolution and
// the generated config

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sharedpkg.toml"), []byte(content), 0644))
	return root
}

func TestLoadDefaults(t *testing.T) {
	root := writeProjectConfig(t, "[shared]\nsymlink-dir = \"store\"\n")

	cfg, err := config.Load(config.Options{
		ProjectRoot: root,
		Context:     types.NewBuildContext(false, "main"),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "sharedpkg.toml"), cfg.ConfigFile)
	assert.Equal(t, root, cfg.ProjectID())
	assert.Equal(t, "build/main", cfg.BuildPrefix)
	assert.Equal(t, filepath.Join(root, "store"), cfg.StoreDir)
	assert.Equal(t, filepath.Join(root, "store", "vendor"), cfg.SharedVendorDir())
	assert.Equal(t, filepath.Join(root, "build", "main", "vendor"), cfg.Layout.BuildVendorDir())
	assert.True(t, cfg.SymlinkEnabled)
	assert.True(t, cfg.StrictTemplates)
	assert.Equal(t, []string{"drupal-core"}, cfg.CopyTypes)
	assert.Equal(t, "index.php", cfg.SiteMarker)
	assert.Equal(t, "shared-package", cfg.SharedType)
	assert.Empty(t, cfg.PackageList)
	assert.Empty(t, cfg.InstallerPaths)
}

func TestLoadProjectOverrides(t *testing.T) {
	root := writeProjectConfig(t, `
vendor-dir = "lib"

[shared]
symlink-dir = "/srv/shared"
symlink-enabled = false
package-list = ["drupal/*", "acme/tools"]
no-copy-binaries = ["acme/*"]

[shared.build-dir]
dev = "out"

[[installer-paths]]
path = "web/core"
match = ["type:drupal-core"]

[[installer-paths]]
path = "web/modules/contrib/{$name}"
match = ["type:drupal-module"]
`)

	cfg, err := config.Load(config.Options{ProjectRoot: root, Context: types.NewBuildContext(false, "feature")})
	require.NoError(t, err)

	assert.Equal(t, "/srv/shared", cfg.StoreDir)
	assert.False(t, cfg.SymlinkEnabled)
	assert.Equal(t, []string{"drupal/*", "acme/tools"}, cfg.PackageList)
	assert.Equal(t, "out/feature", cfg.BuildPrefix)
	assert.Equal(t, filepath.Join(root, "out", "feature", "lib"), cfg.Layout.BuildVendorDir())

	require.Len(t, cfg.InstallerPaths, 2)
	assert.Equal(t, "web/core", cfg.InstallerPaths[0].Path)
	assert.Equal(t, []string{"type:drupal-module"}, cfg.InstallerPaths[1].Match)

	// no-dev keeps the default since only dev was overridden
	cfg, err = config.Load(config.Options{ProjectRoot: root, Context: types.NewBuildContext(true, "feature")})
	require.NoError(t, err)
	assert.Equal(t, "dist/feature", cfg.BuildPrefix)

	assert.False(t, cfg.CopiesBinaries("acme/tools"))
	assert.True(t, cfg.CopiesBinaries("drush/drush"))
}

func TestLoadWithoutProjectFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := config.Load(config.Options{
		ProjectRoot: root,
		Getenv: func(key string) string {
			if key == config.EnvStoreDir {
				return "/tmp/sharedpkg-store"
			}
			return ""
		},
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, types.ModeDev, cfg.Context.Mode)
	assert.Equal(t, "build", cfg.BuildPrefix)
	assert.Equal(t, "/tmp/sharedpkg-store", cfg.StoreDir)
}

func TestEnvOverrides(t *testing.T) {
	root := writeProjectConfig(t, "[shared]\nsymlink-dir = \"from-file\"\n")
	env := map[string]string{
		config.EnvStoreDir:       "from-env",
		config.EnvSymlinkEnabled: "false",
	}

	cfg, err := config.Load(config.Options{ProjectRoot: root, Getenv: func(k string) string { return env[k] }})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "from-env"), cfg.StoreDir)
	assert.False(t, cfg.SymlinkEnabled)

	env[config.EnvSymlinkEnabled] = "sometimes"
	_, err = config.Load(config.Options{ProjectRoot: root, Getenv: func(k string) string { return env[k] }})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "quoted_boolean",
			content: "[shared]\nsymlink-enabled = \"true\"\n",
			wantMsg: "should be a boolean",
		},
		{
			name:    "package_list_not_array",
			content: "[shared]\npackage-list = \"drupal/*\"\n",
			wantMsg: "should be an array of strings",
		},
		{
			name:    "package_list_mixed",
			content: "[shared]\npackage-list = [1, 2]\n",
			wantMsg: "should be an array of strings",
		},
		{
			name:    "vendor_dir_number",
			content: "vendor-dir = 3\n",
			wantMsg: "should be a string",
		},
		{
			name:    "installer_paths_as_map",
			content: "[installer-paths]\n\"web/core\" = [\"type:drupal-core\"]\n",
			wantMsg: "array of tables",
		},
		{
			name:    "installer_rule_without_match",
			content: "[[installer-paths]]\npath = \"web/core\"\n",
			wantMsg: "match",
		},
		{
			name:    "build_dir_not_table",
			content: "[shared]\nbuild-dir = \"build\"\n",
			wantMsg: "table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProjectConfig(t, tt.content)
			_, err := config.Load(config.Options{ProjectRoot: root})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadRejectsEscapingPaths(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "vendor_dir", content: "vendor-dir = \"../vendor\"\n"},
		{name: "absolute_bin_dir", content: "bin-dir = \"/usr/bin\"\n"},
		{name: "installer_path", content: "[[installer-paths]]\npath = \"../web\"\nmatch = [\"a/b\"]\n"},
		{name: "build_prefix", content: "[shared.build-dir]\ndev = \"../../out\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProjectConfig(t, tt.content)
			_, err := config.Load(config.Options{ProjectRoot: root})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
		})
	}
}

func TestLoadMalformedToml(t *testing.T) {
	root := writeProjectConfig(t, "[shared\nsymlink-dir = ")
	_, err := config.Load(config.Options{ProjectRoot: root})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestBuildPrefix(t *testing.T) {
	both := func(dev, noDev string) map[string]string {
		return map[string]string{"dev": dev, "no-dev": noDev}
	}

	tests := []struct {
		name     string
		shared   config.Shared
		ctx      types.BuildContext
		expected string
		wantCode errors.ErrorCode
	}{
		{
			name:     "dev_with_branch",
			shared:   config.Shared{BuildDir: both("build", "dist"), VersionDir: both("{$branch}", "{$branch}"), StrictTemplates: true},
			ctx:      types.NewBuildContext(false, "main"),
			expected: "build/main",
		},
		{
			name:     "no_dev",
			shared:   config.Shared{BuildDir: both("build", "dist"), VersionDir: both("{$branch}", "{$branch}"), StrictTemplates: true},
			ctx:      types.NewBuildContext(true, "release"),
			expected: "dist/release",
		},
		{
			name:     "trailing_slashes_collapse",
			shared:   config.Shared{BuildDir: both("build//", "dist/"), VersionDir: both("v/", "v/")},
			ctx:      types.NewBuildContext(false, ""),
			expected: "build/v",
		},
		{
			name:     "no_tables",
			shared:   config.Shared{},
			ctx:      types.NewBuildContext(false, "main"),
			expected: "",
		},
		{
			name:     "flag_spelling",
			shared:   config.Shared{BuildDir: map[string]string{"--dev": "build"}},
			ctx:      types.NewBuildContext(false, ""),
			expected: "build",
		},
		{
			name:     "missing_mode",
			shared:   config.Shared{BuildDir: map[string]string{"dev": "build"}},
			ctx:      types.NewBuildContext(true, ""),
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "strict_undefined_variable",
			shared:   config.Shared{VersionDir: both("{$release}", "{$release}"), StrictTemplates: true},
			ctx:      types.NewBuildContext(false, "main"),
			wantCode: errors.ErrTemplateVar,
		},
		{
			name:     "lenient_undefined_variable",
			shared:   config.Shared{BuildDir: both("build", "dist"), VersionDir: both("{$release}", "{$release}")},
			ctx:      types.NewBuildContext(false, "main"),
			expected: "build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, err := config.BuildPrefix(tt.shared, tt.ctx)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, prefix)
		})
	}
}

func TestProjectConfigPredicates(t *testing.T) {
	cfg := &config.ProjectConfig{
		CopyTypes:       []string{"drupal-core"},
		BuildLinkPrefix: "drupal-",
		NoCopyBinaries:  []string{"vendor/internal"},
	}

	assert.True(t, cfg.IsCopyType("drupal-core"))
	assert.False(t, cfg.IsCopyType("drupal-module"))

	assert.True(t, cfg.NeedsBuildLink("drupal-module"))
	assert.False(t, cfg.NeedsBuildLink("drupal-core"))
	assert.False(t, cfg.NeedsBuildLink("library"))

	assert.False(t, cfg.CopiesBinaries("vendor/internal"))
	assert.True(t, cfg.CopiesBinaries("vendor/other"))

	cfg.BuildLinkPrefix = ""
	assert.False(t, cfg.NeedsBuildLink("drupal-module"))
}

func TestGenerateConfigContent(t *testing.T) {
	content, err := config.GenerateConfigContent()
	require.NoError(t, err)

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "line should be commented: %q", line)
	}
	assert.Contains(t, content, "# [[installer-paths]]")
	assert.Contains(t, content, "# vendor-dir = ")
	assert.Contains(t, content, "web/modules/contrib/{$name}")

	// uncommenting the generated file yields a loadable config
	var uncommented []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") && !strings.HasPrefix(line, "# sharedpkg") {
			candidate := strings.TrimPrefix(line, "# ")
			if strings.ContainsAny(candidate, "=[") {
				uncommented = append(uncommented, candidate)
			}
		}
	}
	root := writeProjectConfig(t, strings.Join(uncommented, "\n")+"\n")
	cfg, err := config.Load(config.Options{ProjectRoot: root, Context: types.NewBuildContext(false, "main")})
	require.NoError(t, err)
	assert.Len(t, cfg.InstallerPaths, 4)
	assert.Equal(t, "build/main", cfg.BuildPrefix)
}
