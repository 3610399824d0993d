package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeLLM scripts the collaborator. The reply function receives the full
// message list of each call.
type fakeLLM struct {
	reply func(messages []ChatMessage) (string, error)
	calls int
}

func (f *fakeLLM) Complete(_ context.Context, messages []ChatMessage, _ ChatOptions) (string, error) {
	f.calls++
	if f.reply == nil {
		return "APPROVED: looks good", nil
	}
	return f.reply(messages)
}

// approveAfterSynthesis drafts on the first call and approves on every
// critique call.
func approveAfterSynthesis(draft string) func([]ChatMessage) (string, error) {
	first := true
	return func([]ChatMessage) (string, error) {
		if first {
			first = false
			return draft, nil
		}
		return "APPROVED: looks good", nil
	}
}

// memStore is an in-memory MemoryStore for tests.
type memStore struct {
	history map[string][]Turn
	memory  map[string]map[string]string
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{
		history: make(map[string][]Turn),
		memory:  make(map[string]map[string]string),
	}
}

func (m *memStore) Load(_ context.Context, id string) ([]Turn, map[string]string, error) {
	return m.history[id], m.memory[id], nil
}

func (m *memStore) Save(_ context.Context, id string, history []Turn, memory map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.history[id] = append([]Turn(nil), history...)
	cp := make(map[string]string, len(memory))
	for k, v := range memory {
		cp[k] = v
	}
	m.memory[id] = cp
	return nil
}

func shopRegistry(t *testing.T) Registry {
	t.Helper()
	mk := func(name string) Capability {
		return Capability{
			Name: name,
			Fn: func(_ context.Context, _ string, params map[string]string) (string, error) {
				return fmt.Sprintf("%s result %v", name, params), nil
			},
		}
	}
	reg, err := NewRegistry(
		mk(CapProductSearch), mk(CapStockCheck), mk(CapReviews),
		mk(CapDeals), mk(CapShipping), mk(CapOrderLookup), mk(CapGeneral),
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestProcessSimpleGreeting(t *testing.T) {
	llm := &fakeLLM{}
	e := New(llm, shopRegistry(t), Options{Store: newMemStore()})

	res := e.Process(context.Background(), "Hello!", "s1")

	if res.Mode != ModeSimple {
		t.Errorf("mode = %s, want simple", res.Mode)
	}
	if len(res.Goals) != 0 {
		t.Errorf("goals = %d, want 0", len(res.Goals))
	}
	if len(res.Trace) != 1 {
		t.Errorf("trace length = %d, want 1", len(res.Trace))
	}
	if !strings.Contains(res.FinalResponse, "Hello") {
		t.Errorf("response = %q, want fixed greeting", res.FinalResponse)
	}
	if llm.calls != 0 {
		t.Errorf("LLM called %d times on the simple path, want 0", llm.calls)
	}
}

func TestProcessComplexPipeline(t *testing.T) {
	llm := &fakeLLM{reply: approveAfterSynthesis("Here is what I found.")}
	e := New(llm, shopRegistry(t), Options{Store: newMemStore()})

	query := "Find me a gaming laptop under $1500, check if it's in stock, and show shipping to 90210"
	res := e.Process(context.Background(), query, "s1")

	if res.Mode != ModeComplex {
		t.Fatalf("mode = %s, want complex", res.Mode)
	}
	if res.Degraded {
		t.Fatalf("run degraded: %v", res.Trace)
	}
	for _, id := range []string{"goal_product", "goal_stock", "goal_shipping"} {
		r, ok := res.GoalResults[id]
		if !ok || !r.OK {
			t.Errorf("goal %s missing from result map or failed: %+v", id, r)
		}
	}
	if res.FinalResponse != "Here is what I found." {
		t.Errorf("final = %q, want synthesized draft", res.FinalResponse)
	}
	if res.QualityScore != approvedQualityScore {
		t.Errorf("quality = %v, want %v", res.QualityScore, approvedQualityScore)
	}
	if res.TotalSteps == 0 || res.Elapsed <= 0 {
		t.Errorf("metrics not populated: steps=%d elapsed=%v", res.TotalSteps, res.Elapsed)
	}
}

func TestProcessSingleRevisionReflection(t *testing.T) {
	// A critique collaborator that always demands improvement: the engine
	// finalizes with the revised text after exactly one loop.
	calls := 0
	llm := &fakeLLM{reply: func([]ChatMessage) (string, error) {
		calls++
		if calls == 1 {
			return "first draft", nil
		}
		return "CRITIQUE: too vague\nIMPROVED_RESPONSE: a much better answer", nil
	}}
	e := New(llm, shopRegistry(t), Options{})

	res := e.Process(context.Background(), "recommend a laptop", "s1")

	if res.ReflectionCount != 1 {
		t.Errorf("reflectionCount = %d, want 1", res.ReflectionCount)
	}
	if res.FinalResponse != "a much better answer" {
		t.Errorf("final = %q, want revised text", res.FinalResponse)
	}
	if len(res.Critiques) != 1 || res.Critiques[0] != "too vague" {
		t.Errorf("critiques = %v, want [too vague]", res.Critiques)
	}
}

func TestProcessSynthesisFailureDegrades(t *testing.T) {
	llm := &fakeLLM{reply: func([]ChatMessage) (string, error) {
		return "", errors.New("model unavailable")
	}}
	e := New(llm, shopRegistry(t), Options{Store: newMemStore()})

	res := e.Process(context.Background(), "recommend a laptop", "s1")

	if !res.Degraded {
		t.Fatal("run not flagged degraded")
	}
	if res.FinalResponse != degradedResponse {
		t.Errorf("final = %q, want fixed apology", res.FinalResponse)
	}
	var sawError bool
	for _, tr := range res.Trace {
		if tr.Kind == TraceError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("no error trace entry recorded")
	}
}

func TestProcessStepCeilingBoundsAdversarialDecomposition(t *testing.T) {
	// A malformed decomposer returning an enormous goal list must not make
	// the outer loop spin past its ceiling.
	reg, _ := NewRegistry(Capability{Name: "x", Fn: echoExecutor})
	huge := make([]Goal, 10000)
	for i := range huge {
		huge[i] = Goal{ID: fmt.Sprintf("g%d", i), Capability: "x", Status: GoalPending}
	}
	e := New(&fakeLLM{}, reg, Options{
		Decomposer: stubDecomposer{goals: huge[:0]}, // empty: ceiling stays at the fixed overhead
	})

	// First the well-formed case: an empty goal list falls through to the
	// no-information response without tripping the ceiling.
	res := e.Process(context.Background(), "anything at all", "s1")
	if res.Degraded {
		t.Fatalf("empty decomposition degraded: %v", res.Trace)
	}
	if res.FinalResponse != noInformationResponse {
		t.Errorf("final = %q, want no-information response", res.FinalResponse)
	}

	// Now the adversarial case: the ceiling accounts for the goal count, so
	// termination is still guaranteed and bounded.
	e = New(&fakeLLM{}, reg, Options{Decomposer: stubDecomposer{goals: huge}})
	res = e.Process(context.Background(), "anything at all", "s1")
	if res.TotalSteps > len(huge)+DefaultMaxReflections+fixedStepOverhead {
		t.Errorf("steps = %d exceeds documented ceiling", res.TotalSteps)
	}
}

type stubDecomposer struct{ goals []Goal }

func (s stubDecomposer) Decompose(string, Mode) []Goal {
	return append([]Goal(nil), s.goals...)
}

func TestProcessHistoryCapFIFO(t *testing.T) {
	// 25 invocations on one session with a cap of 20 turns: only the most
	// recent turns survive, oldest evicted first.
	store := newMemStore()
	e := New(&fakeLLM{}, shopRegistry(t), Options{Store: store, HistoryLimit: 20})

	for i := 1; i <= 25; i++ {
		e.Process(context.Background(), fmt.Sprintf("hello number %d", i), "s1")
	}

	history := store.history["s1"]
	if len(history) != 20 {
		t.Fatalf("history length = %d, want 20", len(history))
	}
	// 25 exchanges = 50 turns; the first surviving turn is the user turn of
	// invocation 16.
	if history[0].Role != RoleUser || history[0].Content != "hello number 16" {
		t.Errorf("oldest turn = %+v, want user turn of invocation 16", history[0])
	}
	last := history[len(history)-1]
	if last.Role != RoleAssistant {
		t.Errorf("newest turn role = %s, want assistant", last.Role)
	}
}

func TestProcessWorkingMemoryLastWriteWins(t *testing.T) {
	store := newMemStore()
	reg, _ := NewRegistry(
		Capability{Name: CapGeneral, MemoryKey: "last_products", Fn: func(_ context.Context, query string, _ map[string]string) (string, error) {
			return "found for " + query, nil
		}},
	)
	llm := &fakeLLM{reply: approveAfterSynthesis("ok")}
	e := New(llm, reg, Options{Store: store})

	e.Process(context.Background(), "show me laptops", "s1")
	llm.reply = approveAfterSynthesis("ok")
	e.Process(context.Background(), "show me monitors", "s1")

	if got := store.memory["s1"]["last_products"]; got != "found for show me monitors" {
		t.Errorf("working memory = %q, want last write", got)
	}
	if len(store.memory["s1"]) != 1 {
		t.Errorf("working memory accumulated history: %v", store.memory["s1"])
	}
}

func TestProcessSaveFailureKeepsResponse(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	e := New(&fakeLLM{}, shopRegistry(t), Options{Store: store})

	res := e.Process(context.Background(), "Hello!", "s1")

	if res.Warning == "" {
		t.Error("persistence failure not surfaced as a warning")
	}
	if res.FinalResponse == "" || res.Degraded {
		t.Errorf("computed response dropped: %+v", res)
	}
}

func TestProcessIsolatesSessions(t *testing.T) {
	store := newMemStore()
	e := New(&fakeLLM{}, shopRegistry(t), Options{Store: store})

	e.Process(context.Background(), "Hello!", "alice")
	e.Process(context.Background(), "Hello!", "bob")
	e.Process(context.Background(), "thanks", "alice")

	if len(store.history["alice"]) != 4 {
		t.Errorf("alice history = %d turns, want 4", len(store.history["alice"]))
	}
	if len(store.history["bob"]) != 2 {
		t.Errorf("bob history = %d turns, want 2", len(store.history["bob"]))
	}
}

func TestResultSummary(t *testing.T) {
	llm := &fakeLLM{}
	e := New(llm, shopRegistry(t), Options{})
	res := e.Process(context.Background(), "Hello!", "s1")

	s := res.Summary()
	for _, want := range []string{"Query: Hello!", "Mode: simple", res.FinalResponse} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() missing %q:\n%s", want, s)
		}
	}
}
