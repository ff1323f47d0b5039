// Package gitinfo resolves source revision metadata for packaged directories.
// The commit is advisory deploy traceability: packaging proceeds unchanged
// when the directory is not inside a repository.
package gitinfo

import (
	"log/slog"

	"github.com/go-git/go-git/v5"

	"github.com/snapit/lambdapack/internal/logfields"
)

// HeadCommit returns the HEAD commit SHA of the repository containing dir,
// or "" when dir is not inside a git repository or HEAD cannot be resolved.
func HeadCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		slog.Debug("Repository has no resolvable HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return head.Hash().String()
}
