package validate

import (
	"context"
	"fmt"

	"github.com/gitgate/gitgate/internal/policy"
)

// Event is a git lifecycle hook the pipeline can run for.
type Event string

const (
	PreCommit    Event = "pre-commit"
	CommitMsg    Event = "commit-msg"
	PrePush      Event = "pre-push"
	PostCheckout Event = "post-checkout"
)

// Events lists the supported hooks in lifecycle order.
var Events = []Event{PreCommit, CommitMsg, PrePush, PostCheckout}

func (e Event) String() string { return string(e) }

// ParseEvent maps a hook name to its Event.
func ParseEvent(name string) (Event, error) {
	for _, e := range Events {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown event %q", name)
}

// Status is the three-valued result of a single validator.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Outcome is what one validator reports for one run.
type Outcome struct {
	Validator string
	Status    Status
	Message   string
}

// ErrorPolicy decides what an execution error (validator could not run, as
// opposed to validator says no) is converted to. The zero value behaves as
// FailOpen.
type ErrorPolicy string

const (
	FailOpen   ErrorPolicy = "fail-open"
	FailClosed ErrorPolicy = "fail-closed"
)

// Spec is one pipeline entry: which validator runs, whether its Fail can
// fail the whole run, and how its execution errors are treated.
type Spec struct {
	Validator Validator
	Required  bool
	OnError   ErrorPolicy
}

// Validator judges one concern against the evaluation context and the
// resolved policy. Implementations must be deterministic, must not mutate
// the context, and must not touch the repository; a returned error means
// the validator could not run, not that it rejects the change.
type Validator interface {
	Name() string
	Evaluate(ctx context.Context, ec *Context, pol policy.Set) (Outcome, error)
}

func pass(name, format string, args ...any) (Outcome, error) {
	return Outcome{Validator: name, Status: StatusPass, Message: fmt.Sprintf(format, args...)}, nil
}

func warn(name, format string, args ...any) (Outcome, error) {
	return Outcome{Validator: name, Status: StatusWarn, Message: fmt.Sprintf(format, args...)}, nil
}

func fail(name, format string, args ...any) (Outcome, error) {
	return Outcome{Validator: name, Status: StatusFail, Message: fmt.Sprintf(format, args...)}, nil
}
