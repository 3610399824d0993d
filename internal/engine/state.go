// Package engine implements the conversational task-orchestration loop:
// request classification, goal decomposition, dependency-aware execution
// against a capability registry, response synthesis, and a bounded
// self-critique cycle, with session-scoped memory on either side.
package engine

import "time"

// Mode is the processing mode the classifier assigns to a query.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeStandard Mode = "standard"
	ModeComplex  Mode = "complex"
)

// node identifies one state of the orchestration state machine.
type node string

const (
	nodeClassify      node = "classify"
	nodeSimpleRespond node = "simple_respond"
	nodeDecompose     node = "decompose"
	nodeExecuteGoals  node = "execute_goals"
	nodeSynthesize    node = "synthesize"
	nodeReflect       node = "reflect"
	nodeUpdateMemory  node = "update_memory"
	nodeEnd           node = "end"
)

// RunState is the single mutable value threaded through the state machine
// for one invocation. It is owned exclusively by Process for the lifetime of
// one call and never shared across concurrent invocations.
type RunState struct {
	Query     string
	SessionID string

	Mode      Mode
	Goals     []Goal
	GoalIndex int
	Results   map[string]GoalResult

	Trace []TraceEntry

	Draft           string
	ReflectionCount int
	Critiques       []string
	QualityScore    float64

	History       []Turn
	WorkingMemory map[string]string

	FinalResponse string
	TotalSteps    int
	Degraded      bool
	Warning       string
}

func newRunState(query, sessionID string) *RunState {
	return &RunState{
		Query:         query,
		SessionID:     sessionID,
		Mode:          ModeStandard,
		Results:       make(map[string]GoalResult),
		WorkingMemory: make(map[string]string),
	}
}

// appendTrace records one audit entry. Trace step indices are 1-based and
// strictly increasing.
func (st *RunState) appendTrace(kind TraceKind, content string) {
	st.Trace = append(st.Trace, TraceEntry{
		Step:      len(st.Trace) + 1,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	})
}
