package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/policy"
)

// BranchProtection blocks direct commits on protected branches and calls
// out checkouts onto them.
type BranchProtection struct{}

func (BranchProtection) Name() string { return "branch-protection" }

func (v BranchProtection) Evaluate(_ context.Context, ec *Context, pol policy.Set) (Outcome, error) {
	protected := branch.IsProtected(ec.Classification)

	switch ec.Event {
	case PreCommit:
		if protected && pol.RequireReview {
			return fail(v.Name(), "direct commits to %s are blocked; use a review branch", displayBranch(ec.Branch))
		}
		return pass(v.Name(), "commits allowed on %s", displayBranch(ec.Branch))
	case PostCheckout:
		if protected {
			return warn(v.Name(), "%s is a protected branch; commits here are restricted", displayBranch(ec.Branch))
		}
		return pass(v.Name(), "checked out %s", displayBranch(ec.Branch))
	}
	return pass(v.Name(), "nothing to check for %s", ec.Event)
}

// PushPermission rejects pushes that land where the policy forbids direct
// changes: the current branch when AllowDirectPush is off, any protected
// branch reached from elsewhere, and deletions of protected branches.
type PushPermission struct{}

func (PushPermission) Name() string { return "push-permission" }

func (v PushPermission) Evaluate(_ context.Context, ec *Context, pol policy.Set) (Outcome, error) {
	if len(ec.RefUpdates) == 0 {
		return pass(v.Name(), "nothing to push")
	}

	var violations []string
	for _, u := range ec.RefUpdates {
		target := u.TargetName()
		targetClass := branch.ClassifyRef(u.RemoteRef)

		if u.IsDelete() {
			if branch.IsProtected(targetClass) {
				violations = append(violations, fmt.Sprintf("deleting protected branch %s is blocked", target))
			}
			continue
		}

		switch {
		case target == ec.Branch && !pol.AllowDirectPush:
			violations = append(violations, fmt.Sprintf("direct pushes to %s are blocked by policy; open a pull request", target))
		case target != ec.Branch && branch.IsProtected(targetClass):
			violations = append(violations, fmt.Sprintf("pushing into protected branch %s bypasses review", target))
		}
	}

	if len(violations) > 0 {
		return fail(v.Name(), "%s", strings.Join(violations, "; "))
	}
	return pass(v.Name(), "push targets allowed")
}

// ForcePush flags non-fast-forward updates: a failure on protected targets,
// a warning elsewhere.
type ForcePush struct{}

func (ForcePush) Name() string { return "force-push" }

func (v ForcePush) Evaluate(_ context.Context, ec *Context, _ policy.Set) (Outcome, error) {
	var fails, warns []string
	for _, u := range ec.RefUpdates {
		if u.IsCreate() || u.IsDelete() || u.FastForward {
			continue
		}
		target := u.TargetName()
		if branch.IsProtected(branch.ClassifyRef(u.RemoteRef)) {
			fails = append(fails, fmt.Sprintf("force-push to protected branch %s is blocked", target))
		} else {
			warns = append(warns, fmt.Sprintf("force-push rewrites history on %s", target))
		}
	}

	switch {
	case len(fails) > 0:
		return fail(v.Name(), "%s", strings.Join(append(fails, warns...), "; "))
	case len(warns) > 0:
		return warn(v.Name(), "%s", strings.Join(warns, "; "))
	}
	return pass(v.Name(), "all updates fast-forward")
}

func displayBranch(name string) string {
	if name == "" {
		return "(detached HEAD)"
	}
	return name
}
