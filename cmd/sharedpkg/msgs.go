package sharedpkg

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Share dependency packages between projects through a machine-wide store"
	MsgInstallShort    = "Install the packages of the project manifest"
	MsgUpdateShort     = "Re-apply the manifest entry of specific packages"
	MsgRemoveShort     = "Remove packages from the project"
	MsgStatusShort     = "Show the packages of the project"
	MsgUsageShort      = "Show which projects use the stored packages"
	MsgGenConfigShort  = "Print the default sharedpkg.toml"
	MsgVersionShort    = "Print version information"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgDryRunNotice     = "DRY RUN - no changes were made"
	MsgConfigWritten    = "Wrote %s"
	MsgVersionFormat    = "sharedpkg %s\n"
	MsgVersionDetail    = "  commit: %s\n  built:  %s\n"
	MsgManPagesWritten  = "Man pages written to %s"
	MsgOperationsFailed = "%d of %d operation(s) failed"

	// Error messages
	MsgErrNoCommand      = "no command specified"
	MsgErrConfigExists   = "%s already exists"
	MsgErrNotInManifest  = "package %s is not listed in the manifest"
	MsgErrNotInstalled   = "package %s is not installed in this project"
	MsgErrManifestNeeded = "a manifest is required for this command"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagProject       = "Project root (default: nearest directory with sharedpkg.toml)"
	MsgFlagNoDev         = "Use the no-dev build and version directories"
	MsgFlagBranch        = "Branch used in path templates (default: current git branch)"
	MsgFlagYes           = "Answer yes to every confirmation"
	MsgFlagNoInteraction = "Never ask; use the default answer of every confirmation"
	MsgFlagFormat        = "Output format: auto, term, text or json"
	MsgFlagManifest      = "Manifest file (default: sharedpkg.lock.* in the project root)"
	MsgFlagDryRun        = "Show the operations without executing them"
	MsgFlagWrite         = "Write sharedpkg.toml to the project root instead of stdout"
	MsgFlagManDir        = "Directory to write the man pages to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/update-example.txt
	msgUpdateExampleRaw string
	MsgUpdateExample    = strings.TrimRight(msgUpdateExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/remove-example.txt
	msgRemoveExampleRaw string
	MsgRemoveExample    = strings.TrimRight(msgRemoveExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/usage-long.txt
	msgUsageLongRaw string
	MsgUsageLong    = strings.TrimSpace(msgUsageLongRaw)

	//go:embed msgs/usage-example.txt
	msgUsageExampleRaw string
	MsgUsageExample    = strings.TrimRight(msgUsageExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
