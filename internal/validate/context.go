package validate

import (
	"strings"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/git"
)

// Context is the read-only bundle a run is judged against. It is built once
// per run from the repository snapshot; validators only ever read it, so
// every validator sees the same repository state no matter when or on which
// goroutine it runs.
type Context struct {
	RunID          string
	Event          Event
	Branch         string
	Classification branch.Classification

	// pre-commit
	StagedFiles []string
	StagedDiff  string

	// commit-msg: message body with comment lines stripped
	Message string

	// pre-push
	Remote     string
	RemoteURL  string
	RefUpdates []RefUpdate

	// post-checkout
	Checkout *Checkout
}

// RefUpdate is one pushed ref plus everything needed to judge it without
// going back to the repository.
type RefUpdate struct {
	git.RefUpdate

	// Commits in the pushed range, newest first. Empty for deletions.
	Commits []git.Commit

	// FastForward is true when the remote hash is an ancestor of the local
	// hash. Creations count as fast-forward.
	FastForward bool
}

// Checkout describes a post-checkout transition.
type Checkout struct {
	PreviousHead string
	NewHead      string

	// BranchSwitch is true for branch checkouts (hook flag "1"), false for
	// file checkouts.
	BranchSwitch bool

	// ChangedFiles is the diff between the two heads, empty when the heads
	// are equal.
	ChangedFiles []string
}

// TargetName returns the branch name a ref update lands on, without the
// refs/heads/ prefix.
func (u RefUpdate) TargetName() string {
	name, _ := strings.CutPrefix(u.RemoteRef, "refs/heads/")
	return name
}
