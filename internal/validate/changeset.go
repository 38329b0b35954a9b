package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gitgate/gitgate/internal/policy"
)

// ChangeSetSize keeps commits reviewable by capping the number of staged
// files per the branch policy. Close calls warn before the limit bites.
type ChangeSetSize struct{}

func (ChangeSetSize) Name() string { return "change-set-size" }

func (v ChangeSetSize) Evaluate(_ context.Context, ec *Context, pol policy.Set) (Outcome, error) {
	n := len(ec.StagedFiles)
	limit := pol.MaxChangeSetSize

	switch {
	case limit <= 0:
		return pass(v.Name(), "no change-set limit for this branch")
	case n > limit:
		return fail(v.Name(), "%d files staged exceeds the limit of %d for this branch", n, limit)
	case n*5 >= limit*4 && n < limit:
		return warn(v.Name(), "%d of %d allowed files staged; consider splitting the change", n, limit)
	}
	return pass(v.Name(), "%d files staged (limit %d)", n, limit)
}

var debugPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bbreakpoint\(`),
	regexp.MustCompile(`\bpdb\.set_trace\(`),
	regexp.MustCompile(`\bipdb\.set_trace\(`),
	regexp.MustCompile(`\bconsole\.log\(`),
	regexp.MustCompile(`\bdebugger\b`),
	regexp.MustCompile(`\bbinding\.pry\b`),
	regexp.MustCompile(`\bbyebug\b`),
	regexp.MustCompile(`DO NOT COMMIT`),
}

// DebugMarkers scans added lines of the staged diff for leftover debugging
// statements.
type DebugMarkers struct{}

func (DebugMarkers) Name() string { return "debug-markers" }

func (v DebugMarkers) Evaluate(_ context.Context, ec *Context, _ policy.Set) (Outcome, error) {
	var hits []string
	file := ""
	for _, line := range strings.Split(ec.StagedDiff, "\n") {
		if after, ok := strings.CutPrefix(line, "+++ b/"); ok {
			file = after
			continue
		}
		if !strings.HasPrefix(line, "+") || strings.HasPrefix(line, "+++") {
			continue
		}
		for _, re := range debugPatterns {
			if m := re.FindString(line); m != "" {
				hits = append(hits, fmt.Sprintf("%s (%s)", file, strings.TrimSuffix(m, "(")))
				break
			}
		}
	}

	if len(hits) > 0 {
		return warn(v.Name(), "possible debug leftovers: %s", summarize(hits))
	}
	return pass(v.Name(), "no debug markers in staged changes")
}
