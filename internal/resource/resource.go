// Package resource runs an ordered list of idempotent desired-state
// assertions. A plan applies strictly in declaration order and stops at
// the first failure, surfacing the underlying tool's error.
package resource

import (
	"context"
	"fmt"
)

// Resource is a single desired-state assertion.
type Resource interface {
	// Name identifies the resource in logs and errors,
	// e.g. "package:opendaylight" or "file:featuresBoot".
	Name() string

	// Check reports whether changes are required. When it returns
	// false the plan skips Apply for this resource.
	Check(ctx context.Context) (bool, error)

	// Apply converges the system and reports whether it changed
	// anything. Apply must be safe to re-run.
	Apply(ctx context.Context) (bool, error)
}

// State is a func-backed Resource for resources that do not warrant a
// dedicated type. A nil check means "always apply"; the underlying
// apply is expected to be idempotent and report changed=false when the
// state already held.
type State struct {
	name  string
	check func(context.Context) (bool, error)
	apply func(context.Context) (bool, error)
}

func NewState(name string, check func(context.Context) (bool, error), apply func(context.Context) (bool, error)) *State {
	return &State{name: name, check: check, apply: apply}
}

func (s *State) Name() string { return s.name }

func (s *State) Check(ctx context.Context) (bool, error) {
	if s.check == nil {
		return true, nil
	}
	return s.check(ctx)
}

func (s *State) Apply(ctx context.Context) (bool, error) {
	return s.apply(ctx)
}

// Status classifies the outcome of one resource in an applied plan.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// Result records the outcome of a single resource.
type Result struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ProgressFunc receives each result as the plan runs.
type ProgressFunc func(Result)

// Plan is an ordered list of resources.
type Plan struct {
	resources []Resource
}

// NewPlan builds a plan preserving resource order.
func NewPlan(resources ...Resource) *Plan {
	return &Plan{resources: resources}
}

// Add appends resources to the plan.
func (p *Plan) Add(resources ...Resource) {
	p.resources = append(p.resources, resources...)
}

// Names returns resource names in plan order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.resources))
	for i, r := range p.resources {
		out[i] = r.Name()
	}
	return out
}

// Len returns the number of resources in the plan.
func (p *Plan) Len() int { return len(p.resources) }

// Apply converges every resource in order. The first failure aborts
// the run; earlier resources stay applied and a re-run converges.
func (p *Plan) Apply(ctx context.Context, progress ProgressFunc) ([]Result, error) {
	if progress == nil {
		progress = func(Result) {}
	}
	results := make([]Result, 0, len(p.resources))

	report := func(r Result) {
		results = append(results, r)
		progress(r)
	}

	for _, res := range p.resources {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		needed, err := res.Check(ctx)
		if err != nil {
			report(Result{Name: res.Name(), Status: StatusFailed, Error: err.Error()})
			return results, fmt.Errorf("%s: check: %w", res.Name(), err)
		}
		if !needed {
			report(Result{Name: res.Name(), Status: StatusUnchanged})
			continue
		}

		changed, err := res.Apply(ctx)
		if err != nil {
			report(Result{Name: res.Name(), Status: StatusFailed, Error: err.Error()})
			return results, fmt.Errorf("%s: %w", res.Name(), err)
		}
		if changed {
			report(Result{Name: res.Name(), Status: StatusApplied})
		} else {
			report(Result{Name: res.Name(), Status: StatusUnchanged})
		}
	}
	return results, nil
}
