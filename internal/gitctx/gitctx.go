package gitctx

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when target is not inside a git worktree.
var ErrNotRepository = errors.New("not a git repository")

// ErrDirtyWorktree is returned by RequireClean when uncommitted changes exist.
var ErrDirtyWorktree = errors.New("worktree has uncommitted changes (dirty worktree not allowed)")

// WorktreeStatus captures a minimal view of the current git change-set.
type WorktreeStatus struct {
	ModifiedFiles []string `json:"modified_files"`
	Branch        string   `json:"branch,omitempty"`
	GitSHA        string   `json:"git_sha,omitempty"`
}

// Dirty reports whether any file is staged or modified.
func (s *WorktreeStatus) Dirty() bool {
	return len(s.ModifiedFiles) > 0
}

// Collect opens the repository containing target (searching parents for
// .git) and returns its worktree status.
func Collect(target string) (*WorktreeStatus, error) {
	repo, err := git.PlainOpenWithOptions(target, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, target)
		}
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	status := &WorktreeStatus{}
	// An unborn HEAD (no commits yet) still has a usable worktree.
	if head, err := repo.Head(); err == nil {
		status.Branch = head.Name().Short()
		status.GitSHA = head.Hash().String()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}
	for path, s := range st {
		// Consider both staged and unstaged changes
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			status.ModifiedFiles = append(status.ModifiedFiles, filepath.ToSlash(path))
		}
	}
	sort.Strings(status.ModifiedFiles)
	return status, nil
}

// IsDirty reports whether the worktree containing target has uncommitted
// changes.
func IsDirty(target string) (bool, error) {
	st, err := Collect(target)
	if err != nil {
		return false, err
	}
	return st.Dirty(), nil
}

// RequireClean fails with ErrDirtyWorktree when target's worktree is dirty.
// Directories outside any repository pass.
func RequireClean(target string) error {
	st, err := Collect(target)
	if errors.Is(err, ErrNotRepository) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check worktree status: %w", err)
	}
	if st.Dirty() {
		return fmt.Errorf("%w: %d file(s) modified", ErrDirtyWorktree, len(st.ModifiedFiles))
	}
	return nil
}
