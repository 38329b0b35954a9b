package pipeline

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/validate"
)

// Request carries the raw arguments git hands a hook before they are
// turned into an evaluation context.
type Request struct {
	// commit-msg
	MessageFile string

	// pre-push
	Remote     string
	RemoteURL  string
	RefUpdates io.Reader

	// post-checkout
	PreviousHead string
	NewHead      string
	BranchSwitch bool
}

// buildContext takes the one snapshot of the repository a run is judged
// against. All reader errors are fatal here; a detached HEAD is not an
// error and classifies as Other.
func (o *Orchestrator) buildContext(event validate.Event, req Request) (*validate.Context, error) {
	branchName, err := o.client.CurrentBranch(o.repoPath)
	if err != nil {
		return nil, fmt.Errorf("current branch: %w", err)
	}

	ec := &validate.Context{
		RunID:          newRunID(),
		Event:          event,
		Branch:         branchName,
		Classification: branch.Classify(branchName),
	}

	switch event {
	case validate.PreCommit:
		if ec.StagedFiles, err = o.client.StagedFiles(o.repoPath); err != nil {
			return nil, fmt.Errorf("staged files: %w", err)
		}
		if ec.StagedDiff, err = o.client.StagedDiff(o.repoPath); err != nil {
			return nil, fmt.Errorf("staged diff: %w", err)
		}

	case validate.CommitMsg:
		data, err := os.ReadFile(req.MessageFile)
		if err != nil {
			return nil, fmt.Errorf("commit message: %w", err)
		}
		ec.Message = stripComments(string(data))

	case validate.PrePush:
		ec.Remote = req.Remote
		ec.RemoteURL = req.RemoteURL
		updates, err := git.ParseRefUpdates(req.RefUpdates)
		if err != nil {
			return nil, err
		}
		if ec.RefUpdates, err = o.enrichUpdates(updates); err != nil {
			return nil, err
		}

	case validate.PostCheckout:
		co := &validate.Checkout{
			PreviousHead: req.PreviousHead,
			NewHead:      req.NewHead,
			BranchSwitch: req.BranchSwitch,
		}
		if co.BranchSwitch && co.PreviousHead != co.NewHead && co.PreviousHead != git.ZeroHash {
			if co.ChangedFiles, err = o.client.DiffNameOnly(o.repoPath, co.PreviousHead, co.NewHead); err != nil {
				return nil, fmt.Errorf("checkout diff: %w", err)
			}
		}
		ec.Checkout = co
	}

	return ec, nil
}

// enrichUpdates resolves each pushed ref's commit range and ancestry once,
// so validators can judge pushes without going back to the repository.
func (o *Orchestrator) enrichUpdates(updates []git.RefUpdate) ([]validate.RefUpdate, error) {
	enriched := make([]validate.RefUpdate, 0, len(updates))
	for _, u := range updates {
		e := validate.RefUpdate{RefUpdate: u, FastForward: true}

		switch {
		case u.IsDelete():
			// Nothing to resolve.
		case u.IsCreate():
			commits, err := o.client.CommitsNotOnRemote(o.repoPath, u.LocalHash)
			if err != nil {
				return nil, fmt.Errorf("ref %s: %w", u.RemoteRef, err)
			}
			e.Commits = commits
		default:
			ff, err := o.client.IsAncestor(o.repoPath, u.RemoteHash, u.LocalHash)
			if err != nil {
				return nil, fmt.Errorf("ref %s: %w", u.RemoteRef, err)
			}
			e.FastForward = ff
			commits, err := o.client.CommitRange(o.repoPath, u.RemoteHash, u.LocalHash)
			if err != nil {
				return nil, fmt.Errorf("ref %s: %w", u.RemoteRef, err)
			}
			e.Commits = commits
		}

		enriched = append(enriched, e)
	}
	return enriched, nil
}

// stripComments removes the lines git deletes from a commit message file
// before the commit lands.
func stripComments(message string) string {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// newRunID generates a ULID so every run is traceable in verbose output.
func newRunID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}
