package engine

import "time"

// TraceKind classifies one audit entry of the state machine.
type TraceKind string

const (
	TraceAnalysis   TraceKind = "analysis"
	TraceThought    TraceKind = "thought"
	TraceAction     TraceKind = "action"
	TraceReflection TraceKind = "reflection"
	TraceSynthesis  TraceKind = "synthesis"
	TraceResponse   TraceKind = "response"
	TraceError      TraceKind = "error"
)

// TraceEntry is an append-only audit record of one state-machine step.
// Step indices increase monotonically within a run.
type TraceEntry struct {
	Step      int       `json:"step"`
	Kind      TraceKind `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
