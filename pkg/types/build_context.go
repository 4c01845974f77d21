package types

// Mode selects which side of the build/version directory rules applies.
type Mode string

const (
	ModeDev   Mode = "dev"
	ModeNoDev Mode = "no-dev"
)

// BuildContext carries the facts about the current run that the core would
// otherwise read from process arguments or source control. It is built once by
// the CLI and passed into configuration loading.
type BuildContext struct {
	Mode   Mode
	Branch string
}

// NewBuildContext returns a context for the given mode and branch.
func NewBuildContext(noDev bool, branch string) BuildContext {
	mode := ModeDev
	if noDev {
		mode = ModeNoDev
	}
	return BuildContext{Mode: mode, Branch: branch}
}

// BranchProvider reports the current source-control branch.
type BranchProvider interface {
	CurrentBranch() (string, error)
}
