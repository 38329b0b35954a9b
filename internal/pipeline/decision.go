package pipeline

import (
	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/validate"
)

// OverallStatus is the aggregate verdict of one run.
type OverallStatus string

const (
	Pass             OverallStatus = "pass"
	PassWithWarnings OverallStatus = "pass-with-warnings"
	Fail             OverallStatus = "fail"
)

// Decision is the final word on a run: the aggregate status, the process
// exit code git sees, and every outcome in execution order. The provenance
// fields identify the run that produced it and stay zero when the context
// could not even be built.
type Decision struct {
	Status   OverallStatus
	ExitCode int
	Outcomes []validate.Outcome

	RunID          string
	Branch         string
	Classification branch.Classification
}

// Result pairs an outcome with the required flag of the Spec that produced
// it, which is all aggregation needs.
type Result struct {
	Outcome  validate.Outcome
	Required bool
}

// Aggregate folds results into a Decision. The fold is commutative: any
// required failure dominates, then any warning or optional failure, then
// a clean pass. Only a required failure makes the exit code nonzero.
func Aggregate(results []Result) Decision {
	var requiredFail, warned bool
	outcomes := make([]validate.Outcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.Outcome)
		switch r.Outcome.Status {
		case validate.StatusFail:
			if r.Required {
				requiredFail = true
			} else {
				warned = true
			}
		case validate.StatusWarn:
			warned = true
		}
	}

	switch {
	case requiredFail:
		return Decision{Status: Fail, ExitCode: 1, Outcomes: outcomes}
	case warned:
		return Decision{Status: PassWithWarnings, ExitCode: 0, Outcomes: outcomes}
	}
	return Decision{Status: Pass, ExitCode: 0, Outcomes: outcomes}
}

// Counts tallies outcomes by status for the summary line.
func (d Decision) Counts() (passed, warned, failed int) {
	for _, o := range d.Outcomes {
		switch o.Status {
		case validate.StatusPass:
			passed++
		case validate.StatusWarn:
			warned++
		case validate.StatusFail:
			failed++
		}
	}
	return passed, warned, failed
}
