package engine

import (
	"context"
	"fmt"
	"strings"
)

// Dependency outputs are injected into the goal's parameter map under this
// prefix so executors can reference what an upstream goal found without the
// executor signature growing a results argument.
const DepParamPrefix = "dep:"

// stepGoal processes exactly one goal, the one at st.GoalIndex, and
// advances the index unconditionally. Total scheduler iterations are
// therefore bounded by len(st.Goals) regardless of dependency satisfaction.
//
// Dependency satisfaction means the dependency has a recorded result, so a
// failed dependency still unblocks its dependents while a skipped one never
// does: that goal is permanently skipped for this run, with no later
// re-evaluation pass.
func (e *Engine) stepGoal(ctx context.Context, st *RunState) {
	g := &st.Goals[st.GoalIndex]
	st.GoalIndex++

	if unmet := unmetDeps(*g, st.Results); len(unmet) > 0 {
		g.Status = GoalSkipped
		msg := fmt.Sprintf("goal %s skipped: unmet dependencies %s", g.ID, strings.Join(unmet, ", "))
		st.appendTrace(TraceThought, msg)
		e.hook.OnGoal(ctx, st, *g, GoalResult{GoalID: g.ID, Err: "unmet dependency"})
		return
	}

	params := g.Params
	if len(g.DependsOn) > 0 {
		params = make(map[string]string, len(g.Params)+len(g.DependsOn))
		for k, v := range g.Params {
			params[k] = v
		}
		for _, dep := range g.DependsOn {
			params[DepParamPrefix+dep] = st.Results[dep].Output
		}
	}

	out, err := e.registry.Execute(ctx, g.Capability, st.Query, params)
	if err != nil {
		g.Status = GoalFailed
		res := GoalResult{GoalID: g.ID, Err: err.Error()}
		st.Results[g.ID] = res
		st.appendTrace(TraceError, fmt.Sprintf("goal %s failed: %v", g.ID, err))
		e.hook.OnGoal(ctx, st, *g, res)
		return
	}

	g.Status = GoalCompleted
	res := GoalResult{GoalID: g.ID, OK: true, Output: out}
	st.Results[g.ID] = res
	st.appendTrace(TraceAction, fmt.Sprintf("goal %s executed via %s", g.ID, g.Capability))
	e.hook.OnGoal(ctx, st, *g, res)
}

// unmetDeps returns the dependency ids of g that have no recorded result.
// Only completed or failed goals record results, so a skipped dependency
// blocks its dependents for the rest of the run.
func unmetDeps(g Goal, results map[string]GoalResult) []string {
	var unmet []string
	for _, dep := range g.DependsOn {
		if _, ok := results[dep]; !ok {
			unmet = append(unmet, dep)
		}
	}
	return unmet
}
