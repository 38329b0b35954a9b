package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gitgate/gitgate/internal/branch"
)

// Override adjusts individual fields of a classification's default Set.
// Nil fields inherit the default.
type Override struct {
	RequireReview              *bool `yaml:"require_review"`
	RequireTests               *bool `yaml:"require_tests"`
	RequireConventionalCommits *bool `yaml:"require_conventional_commits"`
	RequireTicketReference     *bool `yaml:"require_ticket_reference"`
	AllowDirectPush            *bool `yaml:"allow_direct_push"`
	MaxChangeSetSize           *int  `yaml:"max_change_set_size"`
}

func (o Override) apply(s Set) Set {
	if o.RequireReview != nil {
		s.RequireReview = *o.RequireReview
	}
	if o.RequireTests != nil {
		s.RequireTests = *o.RequireTests
	}
	if o.RequireConventionalCommits != nil {
		s.RequireConventionalCommits = *o.RequireConventionalCommits
	}
	if o.RequireTicketReference != nil {
		s.RequireTicketReference = *o.RequireTicketReference
	}
	if o.AllowDirectPush != nil {
		s.AllowDirectPush = *o.AllowDirectPush
	}
	if o.MaxChangeSetSize != nil {
		s.MaxChangeSetSize = *o.MaxChangeSetSize
	}
	return s
}

// File is the on-disk shape shared by the repo-local .gitgate.yaml and the
// policies section of the global config. Policy keys are classification
// names (main, develop, feature, ...).
type File struct {
	Policies map[string]Override `yaml:"policies"`
	Ticket   TicketConfig        `yaml:"ticket"`
}

// TicketConfig customizes ticket-reference detection.
type TicketConfig struct {
	Pattern string `yaml:"pattern"`
}

// ParseFile decodes a gitgate config document and validates its policy keys.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for key := range f.Policies {
		if !knownClassification(key) {
			return nil, fmt.Errorf("parse config: unknown classification %q", key)
		}
	}
	return &f, nil
}

// Overrides converts the file's policy section into the typed map the
// resolver consumes.
func (f *File) Overrides() map[branch.Classification]Override {
	if len(f.Policies) == 0 {
		return nil
	}
	out := make(map[branch.Classification]Override, len(f.Policies))
	for key, o := range f.Policies {
		out[branch.Classification(key)] = o
	}
	return out
}

// MergeOverrides layers over on top of base field by field, so a repo-local
// file can refine a global one without clobbering its other fields.
func MergeOverrides(base, over map[branch.Classification]Override) map[branch.Classification]Override {
	if len(base) == 0 {
		return over
	}
	out := make(map[branch.Classification]Override, len(base)+len(over))
	for c, o := range base {
		out[c] = o
	}
	for c, o := range over {
		merged := out[c]
		if o.RequireReview != nil {
			merged.RequireReview = o.RequireReview
		}
		if o.RequireTests != nil {
			merged.RequireTests = o.RequireTests
		}
		if o.RequireConventionalCommits != nil {
			merged.RequireConventionalCommits = o.RequireConventionalCommits
		}
		if o.RequireTicketReference != nil {
			merged.RequireTicketReference = o.RequireTicketReference
		}
		if o.AllowDirectPush != nil {
			merged.AllowDirectPush = o.AllowDirectPush
		}
		if o.MaxChangeSetSize != nil {
			merged.MaxChangeSetSize = o.MaxChangeSetSize
		}
		out[c] = merged
	}
	return out
}

func knownClassification(name string) bool {
	for _, c := range branch.All {
		if string(c) == name {
			return true
		}
	}
	return false
}
