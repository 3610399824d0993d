package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxReflections bounds the critique/revise cycle.
	DefaultMaxReflections = 2

	// DefaultHistoryLimit caps the per-session conversation history, in
	// role-tagged turns. Oldest turns are evicted first.
	DefaultHistoryLimit = 20

	// fixedStepOverhead covers the transitions outside the two self-loops
	// (classify, decompose, synthesize, memory update, plus slack). The
	// overall step ceiling is len(goals) + maxReflections + this.
	fixedStepOverhead = 6

	// degradedResponse is returned when a collaborator failure or the step
	// ceiling aborts the run.
	degradedResponse = "I encountered an error processing your request. Please try again."
)

// Result is the value every Process call returns; the caller never receives
// an error. Degraded runs carry the fixed apology text and an error trace
// entry, persistence failures a warning.
type Result struct {
	Query           string                `json:"query"`
	FinalResponse   string                `json:"final_response"`
	Mode            Mode                  `json:"mode"`
	Goals           []Goal                `json:"goals"`
	GoalResults     map[string]GoalResult `json:"goal_results"`
	Critiques       []string              `json:"critiques,omitempty"`
	Trace           []TraceEntry          `json:"trace"`
	TotalSteps      int                   `json:"total_steps"`
	Elapsed         time.Duration         `json:"elapsed"`
	ReflectionCount int                   `json:"reflection_count"`
	QualityScore    float64               `json:"quality_score"`
	Degraded        bool                  `json:"degraded,omitempty"`
	Warning         string                `json:"warning,omitempty"`
}

// Engine is the top-level orchestrator. It is safe for concurrent use: all
// per-invocation state lives in a RunState owned by one Process call, and
// the registry is read-only after construction.
type Engine struct {
	llm            LLMClient
	registry       Registry
	classifier     Classifier
	decomposer     Decomposer
	store          MemoryStore
	hook           Hook
	chatOpts       ChatOptions
	maxReflections int
	historyLimit   int
}

// Options configures optional engine collaborators. Zero values select the
// built-in keyword strategies and defaults.
type Options struct {
	Classifier     Classifier
	Decomposer     Decomposer
	Store          MemoryStore // nil disables persistence
	Hook           Hook
	ChatOptions    ChatOptions
	MaxReflections int
	HistoryLimit   int
}

// New builds an engine around an LLM collaborator and a capability
// registry.
func New(llm LLMClient, registry Registry, opts Options) *Engine {
	e := &Engine{
		llm:            llm,
		registry:       registry,
		classifier:     opts.Classifier,
		decomposer:     opts.Decomposer,
		store:          opts.Store,
		hook:           opts.Hook,
		chatOpts:       opts.ChatOptions,
		maxReflections: opts.MaxReflections,
		historyLimit:   opts.HistoryLimit,
	}
	if e.classifier == nil {
		e.classifier = KeywordClassifier{}
	}
	if e.decomposer == nil {
		e.decomposer = KeywordDecomposer{}
	}
	if e.hook == nil {
		e.hook = NopHook{}
	}
	if e.maxReflections <= 0 {
		e.maxReflections = DefaultMaxReflections
	}
	if e.historyLimit <= 0 {
		e.historyLimit = DefaultHistoryLimit
	}
	return e
}

// Process runs one query through the state machine and always returns a
// well-formed Result. Cancellation and deadlines come from ctx; the engine
// has no internal timeout.
func (e *Engine) Process(ctx context.Context, query, sessionID string) Result {
	start := time.Now()
	st := newRunState(query, sessionID)

	if e.store != nil {
		history, memory, err := e.store.Load(ctx, sessionID)
		if err != nil {
			st.Warning = (&PersistenceError{Op: "load", Err: err}).Error()
		} else {
			st.History = history
			if memory != nil {
				st.WorkingMemory = memory
			}
		}
	}

	ceiling := fixedStepOverhead
	cur := nodeClassify
	for cur != nodeEnd {
		if err := ctx.Err(); err != nil {
			e.degrade(st, fmt.Errorf("cancelled: %w", err))
			break
		}
		if st.TotalSteps >= ceiling {
			e.degrade(st, fmt.Errorf("step ceiling %d exceeded", ceiling))
			break
		}

		next, err := e.transition(ctx, cur, st)
		st.TotalSteps++
		if err != nil {
			e.degrade(st, err)
			next = nodeUpdateMemory
		}
		if cur == nodeDecompose {
			// The goal count is known now; widen the ceiling to cover the
			// two bounded self-loops.
			ceiling = len(st.Goals) + e.maxReflections + fixedStepOverhead
		}
		e.hook.OnTransition(ctx, st, string(cur), string(next))
		cur = next
	}

	e.hook.OnDone(ctx, st)
	return Result{
		Query:           query,
		FinalResponse:   st.FinalResponse,
		Mode:            st.Mode,
		Goals:           st.Goals,
		GoalResults:     st.Results,
		Critiques:       st.Critiques,
		Trace:           st.Trace,
		TotalSteps:      st.TotalSteps,
		Elapsed:         time.Since(start),
		ReflectionCount: st.ReflectionCount,
		QualityScore:    st.QualityScore,
		Degraded:        st.Degraded,
		Warning:         st.Warning,
	}
}

// transition executes one state and names the next. All mutation happens on
// st; the node graph itself is fixed.
func (e *Engine) transition(ctx context.Context, cur node, st *RunState) (node, error) {
	switch cur {
	case nodeClassify:
		st.Mode = e.classifier.Classify(st.Query)
		if st.Mode == ModeSimple {
			// The simple path traces a single response entry.
			return nodeSimpleRespond, nil
		}
		st.appendTrace(TraceAnalysis, fmt.Sprintf("query classified as %s", st.Mode))
		return nodeDecompose, nil

	case nodeSimpleRespond:
		st.FinalResponse = simpleReply(st.Query)
		st.appendTrace(TraceResponse, "simple query; responding directly")
		return nodeUpdateMemory, nil

	case nodeDecompose:
		st.Goals = e.decomposer.Decompose(st.Query, st.Mode)
		st.appendTrace(TraceThought, fmt.Sprintf("decomposed into %d goal(s)", len(st.Goals)))
		return nodeExecuteGoals, nil

	case nodeExecuteGoals:
		if st.GoalIndex >= len(st.Goals) {
			return nodeSynthesize, nil
		}
		e.stepGoal(ctx, st)
		return nodeExecuteGoals, nil

	case nodeSynthesize:
		if err := e.synthesize(ctx, st); err != nil {
			return nodeEnd, err
		}
		return nodeReflect, nil

	case nodeReflect:
		done, err := e.reflectOnce(ctx, st)
		if err != nil {
			return nodeEnd, err
		}
		if done {
			return nodeUpdateMemory, nil
		}
		return nodeReflect, nil

	case nodeUpdateMemory:
		e.updateMemory(ctx, st)
		return nodeEnd, nil

	default:
		return nodeEnd, fmt.Errorf("unknown state %q", cur)
	}
}

// degrade finalizes a run with the fixed apology response after a
// collaborator failure or a safety-bound abort.
func (e *Engine) degrade(st *RunState, err error) {
	st.Degraded = true
	st.FinalResponse = degradedResponse
	st.appendTrace(TraceError, err.Error())
}

// updateMemory appends the exchange to the capped history, folds completed
// memory-worthy goal results into working memory (last-write-wins), and
// saves. Save failures surface as a warning, never drop the response.
func (e *Engine) updateMemory(ctx context.Context, st *RunState) {
	st.History = append(st.History,
		Turn{Role: RoleUser, Content: st.Query},
		Turn{Role: RoleAssistant, Content: st.FinalResponse},
	)
	if over := len(st.History) - e.historyLimit; over > 0 {
		st.History = st.History[over:]
	}

	for _, g := range st.Goals {
		if g.Status != GoalCompleted {
			continue
		}
		if c, ok := e.registry[g.Capability]; ok && c.MemoryKey != "" {
			st.WorkingMemory[c.MemoryKey] = st.Results[g.ID].Output
		}
	}

	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, st.SessionID, st.History, st.WorkingMemory); err != nil {
		st.Warning = (&PersistenceError{Op: "save", Err: err}).Error()
	}
}

// simpleReply answers pleasantries without goals or model calls.
func simpleReply(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case strings.Contains(q, "thank") || strings.HasPrefix(q, "you're welcome"):
		return "You're welcome! Is there anything else I can help you with?"
	case strings.HasPrefix(q, "bye") || strings.HasPrefix(q, "goodbye"):
		return "Goodbye! Come back any time you need a hand with your shopping."
	case q == "ok" || q == "okay":
		return "I understand. How can I assist you further?"
	default:
		return "Hello! I'm your shopping assistant. What can I help you with?"
	}
}

// Summary renders a plain-text report of the run for terminal output.
func (r Result) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 60)
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Query: %s\n", r.Query)
	fmt.Fprintf(&b, "Mode: %s  Steps: %d  Time: %s\n", r.Mode, r.TotalSteps, r.Elapsed.Round(time.Millisecond))

	completed := 0
	for _, g := range r.Goals {
		if g.Status == GoalCompleted {
			completed++
		}
	}
	fmt.Fprintf(&b, "Goals: %d/%d completed  Reflections: %d  Quality: %.1f/5\n",
		completed, len(r.Goals), r.ReflectionCount, r.QualityScore)
	if r.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", r.Warning)
	}

	fmt.Fprintln(&b, "Trace:")
	for _, t := range r.Trace {
		fmt.Fprintf(&b, "  %d. [%s] %s\n", t.Step, t.Kind, t.Content)
	}

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, r.FinalResponse)
	fmt.Fprint(&b, line)
	return b.String()
}
