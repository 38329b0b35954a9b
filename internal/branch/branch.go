package branch

import "strings"

// Classification buckets a branch name into one of the workflow categories
// that policies are keyed on.
type Classification string

const (
	Main         Classification = "main"
	Develop      Classification = "develop"
	Feature      Classification = "feature"
	Bugfix       Classification = "bugfix"
	Hotfix       Classification = "hotfix"
	Release      Classification = "release"
	Experimental Classification = "experimental"
	Other        Classification = "other"
)

// All lists every classification in display order.
var All = []Classification{Main, Develop, Feature, Bugfix, Hotfix, Release, Experimental, Other}

func (c Classification) String() string { return string(c) }

// Classify maps a branch name to its classification. Matching is exact for
// main/master/develop and prefix-based for the rest, first match wins.
// Detached HEAD (empty name) and unrecognized shapes classify as Other.
func Classify(name string) Classification {
	switch name {
	case "main", "master":
		return Main
	case "develop":
		return Develop
	}
	switch {
	case strings.HasPrefix(name, "feature/"):
		return Feature
	case strings.HasPrefix(name, "bugfix/"), strings.HasPrefix(name, "fix/"):
		return Bugfix
	case strings.HasPrefix(name, "hotfix/"):
		return Hotfix
	case strings.HasPrefix(name, "release/"):
		return Release
	case strings.HasPrefix(name, "experimental/"), strings.HasPrefix(name, "exp/"):
		return Experimental
	}
	return Other
}

// ClassifyRef classifies a fully qualified ref such as refs/heads/main.
// Non-branch refs (tags, notes) classify as Other.
func ClassifyRef(ref string) Classification {
	if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return Classify(name)
	}
	return Other
}

// IsProtected reports whether branches of this classification reject history
// rewrites and unreviewed changes outright instead of warning. Protection is
// a property of the classification, not of the resolved policy.
func IsProtected(c Classification) bool {
	return c == Main || c == Release
}
