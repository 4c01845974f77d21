package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/template"
	"github.com/arthur-debert/sharedpkg/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment overrides
const (
	EnvStoreDir       = paths.EnvStoreDir
	EnvSymlinkEnabled = "SHAREDPKG_SYMLINK_ENABLED"
)

// Options control a configuration load.
type Options struct {
	// ProjectRoot is the consuming project; sharedpkg.toml is read from it
	ProjectRoot string

	// Context carries the build mode and branch
	Context types.BuildContext

	// Getenv supplies environment overrides. Nil disables them.
	Getenv func(string) string
}

// Load builds the ProjectConfig of a project.
func Load(opts Options) (*ProjectConfig, error) {
	logger := logging.GetLogger("config")

	root, err := paths.NormalizePath(opts.ProjectRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "invalid project root")
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Project config if it exists
	configFile := filepath.Join(root, paths.ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load project config from %s", configFile).
				WithDetail("path", configFile)
		}
		logger.Debug().Str("path", configFile).Msg("Project config loaded")
	} else {
		configFile = ""
	}

	// 3. Environment overrides
	overrides, err := envOverrides(opts.Getenv)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply environment overrides")
		}
	}

	if err := validate(k); err != nil {
		return nil, err
	}

	var f File
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &f,
			TagName:          "koanf",
			WeaklyTypedInput: false,
		},
	}
	if err := k.UnmarshalWithConf("", &f, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "failed to decode configuration")
	}

	cfg, err := resolve(f, root, opts.Context)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile

	logger.Debug().
		Str("project", cfg.ProjectRoot).
		Str("buildPrefix", cfg.BuildPrefix).
		Str("store", cfg.StoreDir).
		Str("mode", string(cfg.Context.Mode)).
		Msg("Configuration resolved")
	return cfg, nil
}

func envOverrides(getenv func(string) string) (map[string]interface{}, error) {
	overrides := make(map[string]interface{})
	if getenv == nil {
		return overrides, nil
	}
	if dir := getenv(EnvStoreDir); dir != "" {
		overrides["shared.symlink-dir"] = dir
	}
	if raw := getenv(EnvSymlinkEnabled); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Newf(errors.ErrConfigValid, "%s should be a boolean, got %q", EnvSymlinkEnabled, raw).
				WithDetail("key", EnvSymlinkEnabled)
		}
		overrides["shared.symlink-enabled"] = enabled
	}
	return overrides, nil
}

func resolve(f File, root string, ctx types.BuildContext) (*ProjectConfig, error) {
	if ctx.Mode == "" {
		ctx.Mode = types.ModeDev
	}

	for key, dir := range map[string]string{"vendor-dir": f.VendorDir, "bin-dir": f.BinDir} {
		if err := paths.ValidateRelativePath(dir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "%q must be a relative path", key).
				WithDetail("key", key)
		}
	}
	for _, rule := range f.InstallerPaths {
		if err := paths.ValidateRelativePath(rule.Path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "installer path %q must be relative", rule.Path).
				WithDetail("key", "installer-paths")
		}
	}

	prefix, err := BuildPrefix(f.Shared, ctx)
	if err != nil {
		return nil, err
	}

	storeDir := f.Shared.SymlinkDir
	if storeDir == "" {
		storeDir = paths.DefaultStoreDir()
	}
	storeDir = paths.ExpandHome(storeDir)
	if !filepath.IsAbs(storeDir) {
		storeDir = filepath.Join(root, storeDir)
	}

	return &ProjectConfig{
		ProjectRoot: root,
		Context:     ctx,
		BuildPrefix: prefix,
		Layout: paths.Layout{
			ProjectRoot: root,
			BuildPrefix: prefix,
			VendorDir:   f.VendorDir,
			BinDir:      f.BinDir,
		},
		StoreDir:        filepath.Clean(storeDir),
		InstallerPaths:  f.InstallerPaths,
		SymlinkEnabled:  f.Shared.SymlinkEnabled,
		PackageList:     f.Shared.PackageList,
		CopyTypes:       f.Shared.CopyTypes,
		SiteMarker:      f.Shared.SiteMarker,
		BuildLinkPrefix: f.Shared.BuildLinkPrefix,
		NoCopyBinaries:  f.Shared.NoCopyBinaries,
		SharedType:      f.Shared.SharedType,
		StrictTemplates: f.Shared.StrictTemplates,
	}, nil
}

// BuildPrefix concatenates the build-dir and version-dir entries for the
// context's mode, each followed by a single "/", and renders {$branch}. A
// rule that is present but lacks the mode is a configuration error.
func BuildPrefix(shared Shared, ctx types.BuildContext) (string, error) {
	mode := ctx.Mode
	if mode == "" {
		mode = types.ModeDev
	}

	var prefix string
	rules := []struct {
		key   string
		table map[string]string
	}{
		{"build-dir", shared.BuildDir},
		{"version-dir", shared.VersionDir},
	}
	for _, rule := range rules {
		if rule.table != nil {
			value, ok := lookupMode(rule.table, mode)
			if !ok {
				return "", errors.Newf(errors.ErrConfigValid, "%q has no entry for mode %q", rule.key, mode).
					WithDetail("key", rule.key).
					WithDetail("mode", string(mode))
			}
			prefix += value
		}
		prefix = strings.TrimRight(prefix, "/") + "/"
	}

	vars := map[string]string{"branch": ctx.Branch}
	var rendered string
	if shared.StrictTemplates {
		var err error
		if rendered, err = template.RenderStrict(prefix, vars); err != nil {
			return "", err
		}
	} else {
		rendered = template.Render(prefix, vars)
	}

	rendered = strings.Trim(rendered, "/")
	if rendered == "" {
		return "", nil
	}
	if err := paths.ValidateRelativePath(rendered); err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigValid, "build prefix %q is not a relative path", rendered).
			WithDetail("key", "build-dir")
	}
	return rendered, nil
}

// lookupMode accepts "dev"/"no-dev" and the flag spellings "--dev"/"--no-dev".
func lookupMode(table map[string]string, mode types.Mode) (string, bool) {
	if v, ok := table[string(mode)]; ok {
		return v, true
	}
	v, ok := table["--"+string(mode)]
	return v, ok
}
