package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repo in dir with a user config so commits work on CI.
func initTestRepo(t *testing.T, dir string) {
	t.Helper()
	cmds := [][]string{
		{"git", "-C", dir, "init", "-b", "main"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
}

func mustGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	fullArgs := append([]string{"-C", dir}, args...)
	out, err := exec.Command("git", fullArgs...).CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	mustGit(t, dir, "add", name)
	mustGit(t, dir, "commit", "-m", message)
}

func TestCurrentBranch(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "init")

	c := NewClient()

	branch, err := c.CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	mustGit(t, dir, "checkout", "-b", "feature/user-auth")
	branch, err = c.CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "feature/user-auth", branch)
}

func TestCurrentBranch_DetachedHEAD(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "init")
	mustGit(t, dir, "checkout", "--detach")

	c := NewClient()
	branch, err := c.CurrentBranch(dir)
	require.NoError(t, err)
	assert.Equal(t, "", branch, "detached HEAD reports an empty branch name")
}

func TestStagedFiles(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "init")

	c := NewClient()

	files, err := c.StagedFiles(dir)
	require.NoError(t, err)
	assert.Nil(t, files, "clean index has no staged files")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("c\n"), 0644))
	mustGit(t, dir, "add", "b.txt", "c.txt")

	files, err = c.StagedFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b.txt", "c.txt"}, files)
}

func TestStagedDiff(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "init")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\nconsole.log(x)\n"), 0644))
	mustGit(t, dir, "add", "a.txt")

	c := NewClient()
	diff, err := c.StagedDiff(dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "+console.log(x)")
	assert.Contains(t, diff, "a.txt")
}

func TestCommitRange(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "initial")

	mustGit(t, dir, "checkout", "-b", "feature/x")
	commitFile(t, dir, "b.txt", "b\n", "PROJ-1: add b")
	commitFile(t, dir, "c.txt", "c\n", "PROJ-2: add c")

	c := NewClient()
	commits, err := c.CommitRange(dir, "main", "feature/x")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "PROJ-2: add c", commits[0].Subject, "newest first")
	assert.Equal(t, "PROJ-1: add b", commits[1].Subject)
	assert.Len(t, commits[0].Hash, 40)
}

func TestCommitRange_Empty(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "initial")

	c := NewClient()
	commits, err := c.CommitRange(dir, "main", "main")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestCommitsNotOnRemote(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "first")
	commitFile(t, dir, "b.txt", "b\n", "second")

	// No remotes configured: everything reachable from HEAD is unpushed.
	c := NewClient()
	commits, err := c.CommitsNotOnRemote(dir, "HEAD")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "second", commits[0].Subject)
}

func TestIsAncestor(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "initial")
	mustGit(t, dir, "checkout", "-b", "feature/x")
	commitFile(t, dir, "b.txt", "b\n", "more")

	c := NewClient()

	ok, err := c.IsAncestor(dir, "main", "feature/x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsAncestor(dir, "feature/x", "main")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.IsAncestor(dir, "no-such-ref", "main")
	assert.Error(t, err)
}

func TestDiffNameOnly(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "file1.txt", "hello\n", "initial")

	mustGit(t, dir, "checkout", "-b", "feature/x")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file1.txt"), []byte("hello world\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file2.txt"), []byte("new file\n"), 0644))
	mustGit(t, dir, "add", ".")
	mustGit(t, dir, "commit", "-m", "feature changes")

	c := NewClient()
	names, err := c.DiffNameOnly(dir, "main", "feature/x")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"file1.txt", "file2.txt"}, names)
}

func TestRepoRootAndGitDir(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)
	commitFile(t, dir, "a.txt", "a\n", "init")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))

	c := NewClient()

	root, err := c.RepoRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, mustResolve(t, dir), mustResolve(t, root))

	gitDir, err := c.GitDir(sub)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gitDir, ".git"), "got %q", gitDir)
}

// mustResolve follows symlinks so macOS /tmp vs /private/tmp compares equal.
func mustResolve(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func TestGitCmd_ErrorIncludesStderr(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	c := NewClient()
	_, err := c.CommitRange(dir, "nope", "nope2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git log")
}
