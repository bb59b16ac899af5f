package resource

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPlan_AppliesInOrderAndSkips(t *testing.T) {
	var order []string

	converged := NewState("pkg:java",
		func(ctx context.Context) (bool, error) { return false, nil },
		func(ctx context.Context) (bool, error) {
			t.Fatal("apply called for converged resource")
			return false, nil
		})
	pending := NewState("user:odl",
		func(ctx context.Context) (bool, error) { return true, nil },
		func(ctx context.Context) (bool, error) {
			order = append(order, "user:odl")
			return true, nil
		})
	alwaysApply := NewState("file:features", nil,
		func(ctx context.Context) (bool, error) {
			order = append(order, "file:features")
			return false, nil // already in desired form
		})

	plan := NewPlan(converged, pending, alwaysApply)
	results, err := plan.Apply(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(order) != 2 || order[0] != "user:odl" || order[1] != "file:features" {
		t.Fatalf("apply order = %v", order)
	}
	wantStatus := []Status{StatusUnchanged, StatusApplied, StatusUnchanged}
	for i, r := range results {
		if r.Status != wantStatus[i] {
			t.Errorf("result[%d] = %s, want %s", i, r.Status, wantStatus[i])
		}
	}
}

func TestPlan_FailFast(t *testing.T) {
	boom := errors.New("conflict with package foo")
	applied := 0

	plan := NewPlan(
		NewState("repo:odl", nil, func(ctx context.Context) (bool, error) {
			applied++
			return true, nil
		}),
		NewState("pkg:opendaylight", nil, func(ctx context.Context) (bool, error) {
			return false, boom
		}),
		NewState("service:opendaylight", nil, func(ctx context.Context) (bool, error) {
			applied++
			return true, nil
		}),
	)

	var seen []Result
	results, err := plan.Apply(context.Background(), func(r Result) { seen = append(seen, r) })
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "pkg:opendaylight:") {
		t.Fatalf("error should carry resource name: %v", err)
	}
	if applied != 1 {
		t.Fatalf("resources applied after failure: %d", applied)
	}
	if len(results) != 2 || results[1].Status != StatusFailed {
		t.Fatalf("results = %+v", results)
	}
	if len(seen) != len(results) {
		t.Fatalf("progress callbacks = %d, want %d", len(seen), len(results))
	}
}

func TestPlan_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := NewPlan(NewState("pkg:java", nil, func(ctx context.Context) (bool, error) {
		t.Fatal("apply ran with cancelled context")
		return false, nil
	}))
	if _, err := plan.Apply(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlan_Names(t *testing.T) {
	plan := NewPlan(
		NewState("a", nil, func(ctx context.Context) (bool, error) { return true, nil }),
	)
	plan.Add(NewState("b", nil, func(ctx context.Context) (bool, error) { return true, nil }))
	names := plan.Names()
	if plan.Len() != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v", names)
	}
}
