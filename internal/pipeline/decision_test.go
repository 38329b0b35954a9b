package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitgate/gitgate/internal/validate"
)

func result(name string, status validate.Status, required bool) Result {
	return Result{
		Outcome:  validate.Outcome{Validator: name, Status: status, Message: string(status)},
		Required: required,
	}
}

func TestAggregate_AllPass(t *testing.T) {
	d := Aggregate([]Result{
		result("a", validate.StatusPass, true),
		result("b", validate.StatusPass, false),
	})
	assert.Equal(t, Pass, d.Status)
	assert.Equal(t, 0, d.ExitCode)
	assert.Len(t, d.Outcomes, 2)
}

func TestAggregate_RequiredFailDominates(t *testing.T) {
	d := Aggregate([]Result{
		result("a", validate.StatusPass, true),
		result("b", validate.StatusFail, true),
		result("c", validate.StatusWarn, false),
	})
	assert.Equal(t, Fail, d.Status)
	assert.Equal(t, 1, d.ExitCode)
}

func TestAggregate_OptionalFailOnlyWarns(t *testing.T) {
	d := Aggregate([]Result{
		result("a", validate.StatusPass, true),
		result("b", validate.StatusFail, false),
	})
	assert.Equal(t, PassWithWarnings, d.Status)
	assert.Equal(t, 0, d.ExitCode, "optional failures never block")
}

func TestAggregate_WarnGivesPassWithWarnings(t *testing.T) {
	d := Aggregate([]Result{
		result("a", validate.StatusWarn, true),
		result("b", validate.StatusPass, true),
	})
	assert.Equal(t, PassWithWarnings, d.Status)
	assert.Equal(t, 0, d.ExitCode)
}

func TestAggregate_Empty(t *testing.T) {
	d := Aggregate(nil)
	assert.Equal(t, Pass, d.Status)
	assert.Equal(t, 0, d.ExitCode)
	assert.Empty(t, d.Outcomes)
}

func TestAggregate_Commutative(t *testing.T) {
	base := []Result{
		result("a", validate.StatusPass, true),
		result("b", validate.StatusFail, true),
		result("c", validate.StatusWarn, false),
		result("d", validate.StatusFail, false),
	}

	want := Aggregate(base)
	for _, perm := range permutations(base) {
		got := Aggregate(perm)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.ExitCode, got.ExitCode)
	}
}

func permutations(in []Result) [][]Result {
	if len(in) <= 1 {
		return [][]Result{in}
	}
	var out [][]Result
	for i := range in {
		rest := make([]Result, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Result{in[i]}, p...))
		}
	}
	return out
}

func TestDecision_Counts(t *testing.T) {
	d := Aggregate([]Result{
		result("a", validate.StatusPass, true),
		result("b", validate.StatusPass, false),
		result("c", validate.StatusWarn, false),
		result("d", validate.StatusFail, true),
	})
	passed, warned, failed := d.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}
