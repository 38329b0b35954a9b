package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Commit is one commit in a validated range.
type Commit struct {
	Hash    string
	Subject string
}

// Client defines the read-only git operations the hook pipeline needs.
// All methods take a path parameter so the same client can serve any repo,
// and none of them writes to the repository.
type Client interface {
	RepoRoot(path string) (string, error)
	GitDir(path string) (string, error)
	CurrentBranch(path string) (string, error)
	StagedFiles(path string) ([]string, error)
	StagedDiff(path string) (string, error)
	CommitRange(path, from, to string) ([]Commit, error)
	CommitsNotOnRemote(path, tip string) ([]Commit, error)
	IsAncestor(path, ancestor, descendant string) (bool, error)
	DiffNameOnly(path, from, to string) ([]string, error)
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) RepoRoot(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--show-toplevel")
}

func (c *RealClient) GitDir(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--absolute-git-dir")
}

// CurrentBranch returns the checked-out branch name, or "" in detached HEAD.
func (c *RealClient) CurrentBranch(path string) (string, error) {
	return gitCmd(path, "branch", "--show-current")
}

func (c *RealClient) StagedFiles(path string) ([]string, error) {
	out, err := gitCmd(path, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (c *RealClient) StagedDiff(path string) (string, error) {
	return gitCmd(path, "diff", "--cached")
}

// CommitRange lists the commits reachable from to but not from from,
// newest first.
func (c *RealClient) CommitRange(path, from, to string) ([]Commit, error) {
	out, err := gitCmd(path, "log", "--format=%H%x09%s", from+".."+to)
	if err != nil {
		return nil, err
	}
	return parseCommitLines(out)
}

// CommitsNotOnRemote lists the commits reachable from tip that no remote
// ref knows about yet. Used when a branch is pushed for the first time and
// there is no remote hash to anchor a range on.
func (c *RealClient) CommitsNotOnRemote(path, tip string) ([]Commit, error) {
	out, err := gitCmd(path, "log", "--format=%H%x09%s", tip, "--not", "--remotes")
	if err != nil {
		return nil, err
	}
	return parseCommitLines(out)
}

// IsAncestor reports whether ancestor is reachable from descendant. A false
// answer is git exit status 1, not an error.
func (c *RealClient) IsAncestor(path, ancestor, descendant string) (bool, error) {
	cmd := exec.Command("git", "-C", path, "merge-base", "--is-ancestor", ancestor, descendant)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("git merge-base --is-ancestor: %w", err)
}

func (c *RealClient) DiffNameOnly(path, from, to string) ([]string, error) {
	out, err := gitCmd(path, "diff", "--name-only", from, to)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseCommitLines(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range splitLines(out) {
		hash, subject, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed log line: %q", line)
		}
		commits = append(commits, Commit{Hash: hash, Subject: subject})
	}
	return commits, nil
}
