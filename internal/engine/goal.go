package engine

// GoalStatus represents the lifecycle of one goal within a run.
type GoalStatus string

const (
	GoalPending   GoalStatus = "pending"
	GoalCompleted GoalStatus = "completed"
	GoalSkipped   GoalStatus = "skipped"
	GoalFailed    GoalStatus = "failed"
)

// Goal is one atomic sub-task produced by the decomposer. IDs are unique
// within a run; goals are mutated only by the scheduler and are never
// persisted across invocations.
type Goal struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Capability  string            `json:"capability"`
	DependsOn   []string          `json:"depends_on,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Status      GoalStatus        `json:"status"`
}

// GoalResult holds the outcome of executing one goal. A result exists only
// for goals whose status is completed or failed; skipped goals record none.
type GoalResult struct {
	GoalID string `json:"goal_id"`
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
	Err    string `json:"error,omitempty"`
}
