package config

import (
	"bytes"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/installpaths"
	"github.com/pelletier/go-toml/v2"
)

const generatedHeader = `# sharedpkg project configuration
#
# Every value below is the built-in default; uncomment a line to change it.
# Build prefix: build-dir and version-dir entries for the current mode
# (dev, or no-dev with --no-dev) joined with "/". {$branch} is the current
# source-control branch.
#
# installer-paths rules are tried in order; match entries are an exact
# package name, "type:<type>" or "vendor:<vendor>". Paths may use {$name},
# {$vendor} and {$type}.

`

// ExampleInstallerPaths are written, commented, into generated configs.
var ExampleInstallerPaths = installpaths.Rules{
	{Path: "web/core", Match: []string{"type:drupal-core"}},
	{Path: "web/modules/contrib/{$name}", Match: []string{"type:drupal-module"}},
	{Path: "web/themes/contrib/{$name}", Match: []string{"type:drupal-theme"}},
	{Path: "web/profiles/contrib/{$name}", Match: []string{"type:drupal-profile"}},
}

// DefaultFile returns the embedded defaults as a File.
func DefaultFile() File {
	return File{
		VendorDir: "vendor",
		BinDir:    "bin",
		Shared: Shared{
			SymlinkEnabled:  true,
			PackageList:     []string{},
			CopyTypes:       []string{"drupal-core"},
			SiteMarker:      "index.php",
			BuildLinkPrefix: "drupal-",
			NoCopyBinaries:  []string{},
			SharedType:      "shared-package",
			StrictTemplates: true,
			BuildDir:        map[string]string{"dev": "build", "no-dev": "dist"},
			VersionDir:      map[string]string{"dev": "{$branch}", "no-dev": "{$branch}"},
		},
		InstallerPaths: ExampleInstallerPaths,
	}
}

// GenerateConfigContent renders a commented-out sharedpkg.toml holding the
// defaults and example installer paths.
func GenerateConfigContent() (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(DefaultFile()); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode default configuration")
	}
	return generatedHeader + commentOutConfigValues(buf.String()), nil
}

// commentOutConfigValues takes the TOML content and comments out every
// non-blank, non-comment line, table headers included, so the generated file
// is inert until edited.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
