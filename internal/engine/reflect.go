package engine

import (
	"context"
	"fmt"
	"strings"
)

const (
	// approvedQualityScore is the sentinel recorded when the critique pass
	// approves a draft outright.
	approvedQualityScore = 4.5

	reflectionSystemPrompt = "You are a quality reviewer improving customer responses."

	approvedMarker = "APPROVED"
	critiqueMarker = "CRITIQUE:"
	improvedMarker = "IMPROVED_RESPONSE:"
)

// reflectOnce performs one critique/revise iteration and reports whether the
// loop is finished. Iterations are bounded by MaxReflections. A draft that
// receives a critique is replaced by the improved text and the loop stops
// after that single revision; the revised draft is not re-scored. An LLM
// failure degrades the run.
func (e *Engine) reflectOnce(ctx context.Context, st *RunState) (done bool, err error) {
	if st.ReflectionCount >= e.maxReflections {
		st.FinalResponse = st.Draft
		return true, nil
	}

	prompt := fmt.Sprintf(`Critique the following response and suggest improvements if needed.

ORIGINAL QUERY: %s

DRAFT RESPONSE:
%s

Evaluate the response on these criteria (score 1-5 each):
1. Completeness - Does it fully answer the question?
2. Accuracy - Is the information correct?
3. Clarity - Is it easy to understand?
4. Helpfulness - Does it provide actionable information?
5. Tone - Is it professional and friendly?

If the average score is 4 or higher, respond with:
APPROVED: [The response is good]

If improvements are needed, respond with:
CRITIQUE: [Specific issues]
IMPROVED_RESPONSE: [The improved response]`, st.Query, st.Draft)

	verdict, err := e.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: reflectionSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, e.chatOpts)
	if err != nil {
		return true, &ReflectionError{Err: err}
	}

	st.ReflectionCount++

	if strings.Contains(verdict, approvedMarker) {
		st.FinalResponse = st.Draft
		st.QualityScore = approvedQualityScore
		st.appendTrace(TraceReflection, fmt.Sprintf("response approved after reflection %d", st.ReflectionCount))
		e.hook.OnReflection(ctx, st, true)
		return true, nil
	}

	improved := st.Draft
	if i := strings.LastIndex(verdict, improvedMarker); i >= 0 {
		improved = strings.TrimSpace(verdict[i+len(improvedMarker):])
	}
	if i := strings.Index(verdict, critiqueMarker); i >= 0 {
		critique := verdict[i+len(critiqueMarker):]
		if j := strings.Index(critique, improvedMarker); j >= 0 {
			critique = critique[:j]
		}
		st.Critiques = append(st.Critiques, strings.TrimSpace(critique))
	}

	st.Draft = improved
	st.FinalResponse = improved
	st.appendTrace(TraceReflection, fmt.Sprintf("response improved in reflection %d", st.ReflectionCount))
	e.hook.OnReflection(ctx, st, false)
	return true, nil
}
