package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/policy"
)

func evalContext(event Event, branchName string) *Context {
	return &Context{
		Event:          event,
		Branch:         branchName,
		Classification: branch.Classify(branchName),
	}
}

func update(localRef, remoteRef string, opts ...func(*RefUpdate)) RefUpdate {
	u := RefUpdate{
		RefUpdate: git.RefUpdate{
			LocalRef:   localRef,
			LocalHash:  "1111111111111111111111111111111111111111",
			RemoteRef:  remoteRef,
			RemoteHash: "2222222222222222222222222222222222222222",
		},
		FastForward: true,
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func nonFastForward(u *RefUpdate) { u.FastForward = false }

func created(u *RefUpdate) {
	u.RemoteHash = git.ZeroHash
	u.FastForward = true
}

func deleted(u *RefUpdate) { u.LocalHash = git.ZeroHash }

func withCommits(commits ...git.Commit) func(*RefUpdate) {
	return func(u *RefUpdate) { u.Commits = commits }
}

func TestBranchProtection_PreCommit(t *testing.T) {
	r := policy.NewResolver(nil)

	t.Run("protected branch with review required fails", func(t *testing.T) {
		ec := evalContext(PreCommit, "main")
		out, err := BranchProtection{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusFail, out.Status)
		assert.Contains(t, out.Message, "direct commits to main are blocked")
	})

	t.Run("feature branch passes", func(t *testing.T) {
		ec := evalContext(PreCommit, "feature/user-auth")
		out, err := BranchProtection{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("protection follows the policy", func(t *testing.T) {
		ec := evalContext(PreCommit, "main")
		pol := r.Resolve(ec.Classification)
		pol.RequireReview = false
		out, err := BranchProtection{}.Evaluate(context.Background(), ec, pol)
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("detached HEAD classifies as other and passes", func(t *testing.T) {
		ec := evalContext(PreCommit, "")
		out, err := BranchProtection{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
		assert.Contains(t, out.Message, "(detached HEAD)")
	})
}

func TestBranchProtection_PostCheckout(t *testing.T) {
	r := policy.NewResolver(nil)

	ec := evalContext(PostCheckout, "release/2.0")
	out, err := BranchProtection{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
	require.NoError(t, err)
	assert.Equal(t, StatusWarn, out.Status)
	assert.Contains(t, out.Message, "protected branch")

	ec = evalContext(PostCheckout, "feature/x")
	out, err = BranchProtection{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
	require.NoError(t, err)
	assert.Equal(t, StatusPass, out.Status)
}

func TestPushPermission(t *testing.T) {
	r := policy.NewResolver(nil)

	t.Run("push to release branch is denied", func(t *testing.T) {
		ec := evalContext(PrePush, "release/1.2.0")
		ec.RefUpdates = []RefUpdate{update("refs/heads/release/1.2.0", "refs/heads/release/1.2.0")}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusFail, out.Status)
		assert.Contains(t, out.Message, "direct pushes to release/1.2.0 are blocked")
	})

	t.Run("push to feature branch is allowed", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/user-auth")
		ec.RefUpdates = []RefUpdate{update("refs/heads/feature/user-auth", "refs/heads/feature/user-auth")}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("cross-push into main bypasses review", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/user-auth")
		ec.RefUpdates = []RefUpdate{update("refs/heads/feature/user-auth", "refs/heads/main")}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusFail, out.Status)
		assert.Contains(t, out.Message, "bypasses review")
	})

	t.Run("deleting a protected branch is blocked", func(t *testing.T) {
		ec := evalContext(PrePush, "develop")
		ec.RefUpdates = []RefUpdate{update("(delete)", "refs/heads/release/1.0", deleted)}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusFail, out.Status)
		assert.Contains(t, out.Message, "deleting protected branch")
	})

	t.Run("deleting a feature branch is fine", func(t *testing.T) {
		ec := evalContext(PrePush, "develop")
		ec.RefUpdates = []RefUpdate{update("(delete)", "refs/heads/feature/old", deleted)}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("tag pushes are not gated", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/user-auth")
		ec.RefUpdates = []RefUpdate{update("refs/tags/v1.0.0", "refs/tags/v1.0.0")}
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("nothing to push", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/user-auth")
		out, err := PushPermission{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})
}

func TestForcePush(t *testing.T) {
	r := policy.NewResolver(nil)

	t.Run("non-fast-forward to feature warns", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/user-auth")
		ec.RefUpdates = []RefUpdate{update("refs/heads/feature/user-auth", "refs/heads/feature/user-auth", nonFastForward)}
		out, err := ForcePush{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusWarn, out.Status)
		assert.Contains(t, out.Message, "rewrites history")
	})

	t.Run("non-fast-forward to main fails", func(t *testing.T) {
		ec := evalContext(PrePush, "main")
		ec.RefUpdates = []RefUpdate{update("refs/heads/main", "refs/heads/main", nonFastForward)}
		out, err := ForcePush{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusFail, out.Status)
		assert.Contains(t, out.Message, "force-push to protected branch main is blocked")
	})

	t.Run("fast-forward passes", func(t *testing.T) {
		ec := evalContext(PrePush, "main")
		ec.RefUpdates = []RefUpdate{update("refs/heads/main", "refs/heads/main")}
		out, err := ForcePush{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})

	t.Run("creations and deletions are exempt", func(t *testing.T) {
		ec := evalContext(PrePush, "feature/new")
		ec.RefUpdates = []RefUpdate{
			update("refs/heads/feature/new", "refs/heads/feature/new", created, nonFastForward),
			update("(delete)", "refs/heads/feature/old", deleted, nonFastForward),
		}
		// Creations carry FastForward anyway; force the flag off to prove the
		// exemption is on kind, not on the flag.
		out, err := ForcePush{}.Evaluate(context.Background(), ec, r.Resolve(ec.Classification))
		require.NoError(t, err)
		assert.Equal(t, StatusPass, out.Status)
	})
}
