package engine

import (
	"context"
	"errors"
	"testing"
)

// runGoals drives the scheduler portion of the machine directly.
func runGoals(t *testing.T, e *Engine, goals []Goal) *RunState {
	t.Helper()
	st := newRunState("test query", "s1")
	st.Goals = goals
	steps := 0
	for st.GoalIndex < len(st.Goals) {
		e.stepGoal(context.Background(), st)
		steps++
		if steps > len(goals) {
			t.Fatalf("scheduler exceeded %d steps", len(goals))
		}
	}
	return st
}

func TestSchedulerTerminatesInExactlyKSteps(t *testing.T) {
	// Every goal depends on a dependency that never resolves; the index must
	// still advance every step.
	reg, _ := NewRegistry(Capability{Name: "x", Fn: echoExecutor})
	e := New(&fakeLLM{}, reg, Options{})

	goals := []Goal{
		{ID: "g1", Capability: "x", DependsOn: []string{"ghost"}, Status: GoalPending},
		{ID: "g2", Capability: "x", DependsOn: []string{"ghost"}, Status: GoalPending},
		{ID: "g3", Capability: "x", DependsOn: []string{"ghost"}, Status: GoalPending},
	}
	st := runGoals(t, e, goals)

	for _, g := range st.Goals {
		if g.Status != GoalSkipped {
			t.Errorf("goal %s status = %s, want skipped", g.ID, g.Status)
		}
		if _, ok := st.Results[g.ID]; ok {
			t.Errorf("skipped goal %s has a recorded result", g.ID)
		}
	}
}

func TestSchedulerExecutorErrorDoesNotAbort(t *testing.T) {
	reg, _ := NewRegistry(
		Capability{Name: "bad", Fn: func(context.Context, string, map[string]string) (string, error) {
			return "", errors.New("backend down")
		}},
		Capability{Name: "good", Fn: echoExecutor},
	)
	e := New(&fakeLLM{}, reg, Options{})

	st := runGoals(t, e, []Goal{
		{ID: "g1", Capability: "bad", Status: GoalPending},
		{ID: "g2", Capability: "good", Status: GoalPending},
	})

	if st.Goals[0].Status != GoalFailed {
		t.Errorf("g1 status = %s, want failed", st.Goals[0].Status)
	}
	if res := st.Results["g1"]; res.OK || res.Err == "" {
		t.Errorf("g1 result = %+v, want error-flagged", res)
	}
	if st.Goals[1].Status != GoalCompleted {
		t.Errorf("g2 status = %s, want completed", st.Goals[1].Status)
	}
}

func TestSchedulerFailedDependencyUnblocksDependent(t *testing.T) {
	// A failed goal still records a result, so its dependents execute. Only
	// skipped dependencies block permanently.
	reg, _ := NewRegistry(
		Capability{Name: "bad", Fn: func(context.Context, string, map[string]string) (string, error) {
			return "", errors.New("nope")
		}},
		Capability{Name: "good", Fn: echoExecutor},
	)
	e := New(&fakeLLM{}, reg, Options{})

	st := runGoals(t, e, []Goal{
		{ID: "g1", Capability: "bad", Status: GoalPending},
		{ID: "g2", Capability: "good", DependsOn: []string{"g1"}, Status: GoalPending},
	})

	if st.Goals[1].Status != GoalCompleted {
		t.Errorf("g2 status = %s, want completed after failed dependency", st.Goals[1].Status)
	}
}

func TestSchedulerSkippedDependencyBlocksDependent(t *testing.T) {
	reg, _ := NewRegistry(Capability{Name: "good", Fn: echoExecutor})
	e := New(&fakeLLM{}, reg, Options{})

	st := runGoals(t, e, []Goal{
		{ID: "g1", Capability: "good", DependsOn: []string{"ghost"}, Status: GoalPending},
		{ID: "g2", Capability: "good", DependsOn: []string{"g1"}, Status: GoalPending},
	})

	if st.Goals[0].Status != GoalSkipped {
		t.Errorf("g1 status = %s, want skipped", st.Goals[0].Status)
	}
	if st.Goals[1].Status != GoalSkipped {
		t.Errorf("g2 status = %s, want skipped (no re-evaluation pass)", st.Goals[1].Status)
	}
}

func TestSchedulerInjectsDependencyOutputs(t *testing.T) {
	var seen map[string]string
	reg, _ := NewRegistry(
		Capability{Name: "discover", Fn: func(context.Context, string, map[string]string) (string, error) {
			return "found P001", nil
		}},
		Capability{Name: "check", Fn: func(_ context.Context, _ string, params map[string]string) (string, error) {
			seen = params
			return "ok", nil
		}},
	)
	e := New(&fakeLLM{}, reg, Options{})

	runGoals(t, e, []Goal{
		{ID: "g1", Capability: "discover", Status: GoalPending},
		{ID: "g2", Capability: "check", DependsOn: []string{"g1"}, Params: map[string]string{"zip": "90210"}, Status: GoalPending},
	})

	if seen["dep:g1"] != "found P001" {
		t.Errorf("dependency output not injected, params = %v", seen)
	}
	if seen["zip"] != "90210" {
		t.Errorf("own params lost, params = %v", seen)
	}
}
