// Package vcs provides the branch providers used to build the BuildContext.
package vcs

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/types"
)

// GitBranchProvider reads the current branch of the git work tree at Dir.
// A detached HEAD reports the abbreviated commit hash.
type GitBranchProvider struct {
	Dir string
	Git string
}

var _ types.BranchProvider = (*GitBranchProvider)(nil)

// NewGitBranchProvider returns a provider for the work tree at dir using the
// git found on PATH.
func NewGitBranchProvider(dir string) *GitBranchProvider {
	return &GitBranchProvider{Dir: dir, Git: "git"}
}

// CurrentBranch implements types.BranchProvider
func (g *GitBranchProvider) CurrentBranch() (string, error) {
	logger := logging.GetLogger("vcs")

	if branch, err := g.run("symbolic-ref", "--short", "-q", "HEAD"); err == nil && branch != "" {
		logger.Debug().Str("branch", branch).Str("dir", g.Dir).Msg("Branch detected")
		return branch, nil
	}

	commit, err := g.run("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrBranch, "cannot determine the branch of %s", g.Dir).
			WithDetail("path", g.Dir)
	}
	logger.Debug().Str("commit", commit).Str("dir", g.Dir).Msg("Detached HEAD, using commit")
	return commit, nil
}

func (g *GitBranchProvider) run(args ...string) (string, error) {
	git := g.Git
	if git == "" {
		git = "git"
	}
	cmd := exec.Command(git, append([]string{"-C", g.Dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrap(err, errors.ErrBranch, msg)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// StaticBranch is a BranchProvider that always reports the same branch.
type StaticBranch string

// CurrentBranch implements types.BranchProvider
func (s StaticBranch) CurrentBranch() (string, error) {
	return string(s), nil
}

// ResolveBranch returns explicit when set, otherwise asks provider. A
// provider failure is returned with the empty branch so callers can decide
// whether an unknown branch is fatal.
func ResolveBranch(explicit string, provider types.BranchProvider) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if provider == nil {
		return "", nil
	}
	return provider.CurrentBranch()
}
