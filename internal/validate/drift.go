package validate

import (
	"context"
	"path"
	"strings"

	"github.com/gitgate/gitgate/internal/policy"
)

// manifestNames are dependency manifests worth a reinstall reminder when
// they change under a checkout.
var manifestNames = map[string]bool{
	"requirements.txt":     true,
	"dev-requirements.txt": true,
	"requirements-dev.txt": true,
	"pyproject.toml":       true,
	"poetry.lock":          true,
	"Pipfile":              true,
	"Pipfile.lock":         true,
	"package.json":         true,
	"package-lock.json":    true,
	"yarn.lock":            true,
	"pnpm-lock.yaml":       true,
	"go.mod":               true,
	"go.sum":               true,
	"Gemfile":              true,
	"Gemfile.lock":         true,
	"Cargo.toml":           true,
	"Cargo.lock":           true,
	"composer.json":        true,
	"composer.lock":        true,
}

// DependencyDrift warns after a branch checkout when dependency manifests
// differ between the two heads, so stale installs get caught before the
// next run, not during it.
type DependencyDrift struct{}

func (DependencyDrift) Name() string { return "dependency-drift" }

func (v DependencyDrift) Evaluate(_ context.Context, ec *Context, _ policy.Set) (Outcome, error) {
	co := ec.Checkout
	if co == nil || !co.BranchSwitch {
		return pass(v.Name(), "not a branch checkout")
	}

	var changed []string
	for _, f := range co.ChangedFiles {
		if manifestNames[path.Base(f)] {
			changed = append(changed, f)
		}
	}

	if len(changed) > 0 {
		return warn(v.Name(), "dependency manifests changed: %s; reinstall before running", strings.Join(changed, ", "))
	}
	return pass(v.Name(), "no dependency changes")
}
