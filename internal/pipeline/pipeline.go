package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/policy"
	"github.com/gitgate/gitgate/internal/validate"
)

// State is the orchestrator's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Options tunes a run.
type Options struct {
	// Workers caps concurrent validators. Zero or one runs them
	// sequentially. Either way outcomes keep the pipeline's declared order.
	Workers int
}

// Orchestrator drives one validator pipeline per hook invocation: build the
// context, run every spec, aggregate. Runs are serialized; each Run call is
// a fresh Idle→Running→Completed cycle with nothing carried over.
type Orchestrator struct {
	client   git.Client
	repoPath string
	resolver *policy.Resolver
	opts     Options

	runMu sync.Mutex

	stateMu sync.Mutex
	state   State
}

// New returns an idle orchestrator for the repo at repoPath.
func New(client git.Client, repoPath string, resolver *policy.Resolver, opts Options) *Orchestrator {
	return &Orchestrator{
		client:   client,
		repoPath: repoPath,
		resolver: resolver,
		opts:     opts,
		state:    StateIdle,
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// Run executes the given specs for one hook event and decides the run.
// Every spec produces exactly one outcome: an early failure never
// short-circuits the rest, so one run reports every problem at once.
// A context that cannot be built is itself the failure: the decision is a
// single synthetic outcome with exit code 1.
func (o *Orchestrator) Run(ctx context.Context, event validate.Event, req Request, specs []validate.Spec) Decision {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.setState(StateRunning)
	defer o.setState(StateCompleted)

	ec, err := o.buildContext(event, req)
	if err != nil {
		return Decision{
			Status:   Fail,
			ExitCode: 1,
			Outcomes: []validate.Outcome{{
				Validator: "context",
				Status:    validate.StatusFail,
				Message:   err.Error(),
			}},
		}
	}

	pol := o.resolver.Resolve(ec.Classification)
	d := Aggregate(o.execute(ctx, ec, pol, specs))
	d.RunID = ec.RunID
	d.Branch = ec.Branch
	d.Classification = ec.Classification
	return d
}

func (o *Orchestrator) execute(ctx context.Context, ec *validate.Context, pol policy.Set, specs []validate.Spec) []Result {
	results := make([]Result, len(specs))

	if o.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.Workers)
		for i, s := range specs {
			i, s := i, s // per-iteration copies; go directive is below 1.22
			g.Go(func() error {
				results[i] = Result{Outcome: runOne(gctx, ec, pol, s), Required: s.Required}
				return nil // failures are outcomes, never group errors
			})
		}
		_ = g.Wait()
		return results
	}

	for i, s := range specs {
		results[i] = Result{Outcome: runOne(ctx, ec, pol, s), Required: s.Required}
	}
	return results
}

// runOne is the boundary between orchestrator and validator: an error
// return or a panic becomes an outcome per the Spec's error policy, and
// the pipeline keeps going.
func runOne(ctx context.Context, ec *validate.Context, pol policy.Set, s validate.Spec) (out validate.Outcome) {
	name := s.Validator.Name()
	defer func() {
		if r := recover(); r != nil {
			out = errorOutcome(name, s.OnError, fmt.Errorf("panic: %v", r))
		}
	}()

	result, err := s.Validator.Evaluate(ctx, ec, pol)
	if err != nil {
		return errorOutcome(name, s.OnError, err)
	}
	return result
}

func errorOutcome(name string, onError validate.ErrorPolicy, err error) validate.Outcome {
	status := validate.StatusWarn
	if onError == validate.FailClosed {
		status = validate.StatusFail
	}
	return validate.Outcome{
		Validator: name,
		Status:    status,
		Message:   fmt.Sprintf("could not run: %v", err),
	}
}
