package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/policy"
)

// DefaultTicketPattern matches Jira-style ticket keys such as PROJ-123.
const DefaultTicketPattern = `[A-Z][A-Z0-9]+-[0-9]+`

const maxSubjectLength = 72

var conventionalRe = regexp.MustCompile(`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\([^)]+\))?!?: .+`)

// exemptSubject reports whether a commit subject is outside conventional
// rules (merge commits and autosquash fixups).
func exemptSubject(subject string) bool {
	return strings.HasPrefix(subject, "Merge ") ||
		strings.HasPrefix(subject, "fixup! ") ||
		strings.HasPrefix(subject, "squash! ")
}

// subjectLine returns the first line of a message.
func subjectLine(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

// SubjectLength keeps commit subjects readable: empty messages fail, long
// subjects warn.
type SubjectLength struct{}

func (SubjectLength) Name() string { return "commit-subject-length" }

func (v SubjectLength) Evaluate(_ context.Context, ec *Context, _ policy.Set) (Outcome, error) {
	subject := subjectLine(ec.Message)
	switch {
	case subject == "":
		return fail(v.Name(), "empty commit message")
	case len(subject) > maxSubjectLength:
		return warn(v.Name(), "subject is %d chars; keep it under %d", len(subject), maxSubjectLength)
	}
	return pass(v.Name(), "subject length ok")
}

// ConventionalCommit enforces type(scope): description subjects when the
// policy asks for them. On pre-push it checks every commit in every pushed
// range.
type ConventionalCommit struct{}

func (ConventionalCommit) Name() string { return "conventional-commit" }

func (v ConventionalCommit) Evaluate(_ context.Context, ec *Context, pol policy.Set) (Outcome, error) {
	if !pol.RequireConventionalCommits {
		return pass(v.Name(), "not required by policy")
	}

	check := func(subject string) bool {
		return exemptSubject(subject) || conventionalRe.MatchString(subject)
	}

	if ec.Event == CommitMsg {
		subject := subjectLine(ec.Message)
		if !check(subject) {
			return fail(v.Name(), "subject %q does not follow type(scope): description", subject)
		}
		return pass(v.Name(), "conventional subject")
	}

	bad := collectOffenders(ec.RefUpdates, func(c git.Commit) bool { return !check(c.Subject) })
	if len(bad) > 0 {
		return fail(v.Name(), "non-conventional commits: %s", summarize(bad))
	}
	return pass(v.Name(), "all commits conventional")
}

// TicketReference requires a ticket key in the commit message (commit-msg)
// or in every pushed commit subject (pre-push).
type TicketReference struct {
	pattern *regexp.Regexp
}

// NewTicketReference compiles the configured ticket pattern; an empty
// pattern selects the default.
func NewTicketReference(pattern string) (*TicketReference, error) {
	if pattern == "" {
		pattern = DefaultTicketPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("ticket pattern %q: %w", pattern, err)
	}
	return &TicketReference{pattern: re}, nil
}

func (*TicketReference) Name() string { return "ticket-reference" }

func (v *TicketReference) Evaluate(_ context.Context, ec *Context, pol policy.Set) (Outcome, error) {
	if !pol.RequireTicketReference {
		return pass(v.Name(), "not required by policy")
	}

	if ec.Event == CommitMsg {
		if !v.pattern.MatchString(ec.Message) {
			return fail(v.Name(), "missing ticket reference (expected %s)", v.pattern)
		}
		return pass(v.Name(), "ticket reference present")
	}

	bad := collectOffenders(ec.RefUpdates, func(c git.Commit) bool {
		return !exemptSubject(c.Subject) && !v.pattern.MatchString(c.Subject)
	})
	if len(bad) > 0 {
		return fail(v.Name(), "missing ticket reference (expected %s): %s", v.pattern, summarize(bad))
	}
	return pass(v.Name(), "ticket references present")
}

// collectOffenders walks every commit of every pushed range and keeps the
// ones the predicate flags.
func collectOffenders(updates []RefUpdate, offends func(git.Commit) bool) []string {
	var bad []string
	for _, u := range updates {
		for _, c := range u.Commits {
			if offends(c) {
				bad = append(bad, fmt.Sprintf("%s %q", shortHash(c.Hash), c.Subject))
			}
		}
	}
	return bad
}

// summarize caps long offender lists at three entries.
func summarize(items []string) string {
	if len(items) > 3 {
		return strings.Join(items[:3], ", ") + fmt.Sprintf(", and %d more", len(items)-3)
	}
	return strings.Join(items, ", ")
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
