package policy

import (
	"github.com/gitgate/gitgate/internal/branch"
)

// Set is the resolved rule record for one branch classification. Sets are
// plain values: callers receive copies and cannot affect later resolutions.
type Set struct {
	RequireReview              bool
	RequireTests               bool
	RequireConventionalCommits bool
	RequireTicketReference     bool
	AllowDirectPush            bool
	MaxChangeSetSize           int
}

// Resolver maps branch classifications to their effective policy Set.
// Overrides are folded in once at construction; Resolve itself is pure.
type Resolver struct {
	sets map[branch.Classification]Set
}

// NewResolver builds a resolver from the built-in defaults with the given
// overrides layered on top. A nil map yields the defaults unchanged.
func NewResolver(overrides map[branch.Classification]Override) *Resolver {
	sets := defaults()
	for c, o := range overrides {
		base, ok := sets[c]
		if !ok {
			base = sets[branch.Other]
		}
		sets[c] = o.apply(base)
	}
	return &Resolver{sets: sets}
}

// Resolve returns the effective Set for a classification. Unknown
// classifications resolve like Other, so the result is always usable.
func (r *Resolver) Resolve(c branch.Classification) Set {
	if s, ok := r.sets[c]; ok {
		return s
	}
	return r.sets[branch.Other]
}

func defaults() map[branch.Classification]Set {
	feature := Set{
		RequireTicketReference: true,
		AllowDirectPush:        true,
		MaxChangeSetSize:       20,
	}
	return map[branch.Classification]Set{
		branch.Main: {
			RequireReview:              true,
			RequireTests:               true,
			RequireConventionalCommits: true,
			RequireTicketReference:     true,
			AllowDirectPush:            false,
			MaxChangeSetSize:           5,
		},
		branch.Develop: {
			RequireTests:               true,
			RequireConventionalCommits: true,
			RequireTicketReference:     true,
			AllowDirectPush:            true,
			MaxChangeSetSize:           10,
		},
		branch.Feature: feature,
		branch.Other:   feature,
		branch.Bugfix: {
			RequireTests:           true,
			RequireTicketReference: true,
			AllowDirectPush:        true,
			MaxChangeSetSize:       20,
		},
		branch.Hotfix: {
			RequireReview:          true,
			RequireTests:           true,
			RequireTicketReference: true,
			AllowDirectPush:        true,
			MaxChangeSetSize:       1,
		},
		branch.Release: {
			RequireReview:              true,
			RequireTests:               true,
			RequireConventionalCommits: true,
			RequireTicketReference:     true,
			AllowDirectPush:            false,
			MaxChangeSetSize:           3,
		},
		branch.Experimental: {
			AllowDirectPush:  true,
			MaxChangeSetSize: 50,
		},
	}
}
