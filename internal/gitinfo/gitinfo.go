// Package gitinfo reports lightweight repository provenance for run output.
// It answers one question, "which commit was this run started from", using
// go-git so no git binary is required at runtime.
package gitinfo

import (
	"os"

	"github.com/go-git/go-git/v5"
)

// Info identifies the repository state a run was started from.
type Info struct {
	// Branch is the checked-out branch name, empty in detached HEAD state.
	Branch string
	// Commit is the abbreviated HEAD commit hash.
	Commit string
	// Root is the absolute path of the worktree root.
	Root string
}

// String renders the info as branch@commit, or just the commit hash in
// detached HEAD state.
func (i Info) String() string {
	if i.Branch == "" {
		return i.Commit
	}
	return i.Branch + "@" + i.Commit
}

// Describe inspects the repository enclosing path, or the working directory
// when path is empty. It uses DetectDotGit to walk up the directory tree the
// same way the git CLI does. Provenance is best effort: ok is false when path
// is outside a repository or the repository has no commits yet, and callers
// are expected to print nothing in that case.
func Describe(path string) (Info, bool) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Info{}, false
		}
		path = wd
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return Info{}, false
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, false
	}

	info := Info{Commit: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		info.Root = wt.Filesystem.Root()
	}

	return info, true
}
