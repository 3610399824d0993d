package engine

import (
	"context"
	"log"
)

// Hook receives observability callbacks from the state machine. All methods
// are invoked synchronously; implementations must not mutate the state.
type Hook interface {
	OnTransition(ctx context.Context, st *RunState, from, to string)
	OnGoal(ctx context.Context, st *RunState, goal Goal, result GoalResult)
	OnReflection(ctx context.Context, st *RunState, approved bool)
	OnDone(ctx context.Context, st *RunState)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnTransition(context.Context, *RunState, string, string) {}
func (NopHook) OnGoal(context.Context, *RunState, Goal, GoalResult)     {}
func (NopHook) OnReflection(context.Context, *RunState, bool)           {}
func (NopHook) OnDone(context.Context, *RunState)                       {}

// LoggerHook logs transitions and goal outcomes, used by the CLI in
// verbose mode.
type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnTransition(_ context.Context, st *RunState, from, to string) {
	h.L.Printf("step=%d %s -> %s", st.TotalSteps, from, to)
}

func (h LoggerHook) OnGoal(_ context.Context, _ *RunState, goal Goal, result GoalResult) {
	if result.OK {
		h.L.Printf("goal %s (%s) completed", goal.ID, goal.Capability)
		return
	}
	h.L.Printf("goal %s (%s) %s: %s", goal.ID, goal.Capability, goal.Status, result.Err)
}

func (h LoggerHook) OnReflection(_ context.Context, st *RunState, approved bool) {
	h.L.Printf("reflection %d approved=%v score=%.1f", st.ReflectionCount, approved, st.QualityScore)
}

func (h LoggerHook) OnDone(_ context.Context, st *RunState) {
	h.L.Printf("done mode=%s steps=%d goals=%d degraded=%v",
		st.Mode, st.TotalSteps, len(st.Goals), st.Degraded)
}
