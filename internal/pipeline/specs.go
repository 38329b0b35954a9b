package pipeline

import (
	"fmt"

	"github.com/gitgate/gitgate/internal/validate"
)

// Config tunes the built-in pipelines.
type Config struct {
	// TicketPattern overrides the default ticket-reference regexp.
	TicketPattern string
}

// DefaultSpecs returns the standard validator pipeline for an event. The
// sequence order is the report order.
func DefaultSpecs(event validate.Event, cfg Config) ([]validate.Spec, error) {
	ticket, err := validate.NewTicketReference(cfg.TicketPattern)
	if err != nil {
		return nil, err
	}

	switch event {
	case validate.PreCommit:
		return []validate.Spec{
			{Validator: validate.BranchProtection{}, Required: true, OnError: validate.FailClosed},
			{Validator: validate.ChangeSetSize{}, Required: true, OnError: validate.FailOpen},
			{Validator: validate.DebugMarkers{}, OnError: validate.FailOpen},
		}, nil
	case validate.CommitMsg:
		return []validate.Spec{
			{Validator: validate.SubjectLength{}, OnError: validate.FailOpen},
			{Validator: validate.ConventionalCommit{}, Required: true, OnError: validate.FailOpen},
			{Validator: ticket, Required: true, OnError: validate.FailOpen},
		}, nil
	case validate.PrePush:
		return []validate.Spec{
			{Validator: validate.PushPermission{}, Required: true, OnError: validate.FailClosed},
			{Validator: validate.ForcePush{}, Required: true, OnError: validate.FailOpen},
			{Validator: validate.ConventionalCommit{}, Required: true, OnError: validate.FailOpen},
			{Validator: ticket, Required: true, OnError: validate.FailOpen},
		}, nil
	case validate.PostCheckout:
		return []validate.Spec{
			{Validator: validate.BranchProtection{}, OnError: validate.FailOpen},
			{Validator: validate.DependencyDrift{}, OnError: validate.FailOpen},
		}, nil
	}
	return nil, fmt.Errorf("unknown event %q", event)
}
