package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// noInformationResponse is returned without contacting the model when no
// goal produced a result.
const noInformationResponse = "I wasn't able to gather the information you requested. Please try again."

const synthesisSystemPrompt = "You are a helpful shopping assistant providing a final response."

// synthesize merges all goal results into one customer-facing draft. An LLM
// failure here is fatal to the run.
func (e *Engine) synthesize(ctx context.Context, st *RunState) error {
	if len(st.Results) == 0 {
		st.Draft = noInformationResponse
		st.appendTrace(TraceSynthesis, "no goal results; returning fixed response")
		return nil
	}

	gathered := make(map[string]string, len(st.Results))
	for id, res := range st.Results {
		if res.OK {
			gathered[id] = res.Output
		} else {
			gathered[id] = "error: " + res.Err
		}
	}
	encoded, err := json.MarshalIndent(gathered, "", "  ")
	if err != nil {
		return &SynthesisError{Err: err}
	}

	prompt := fmt.Sprintf(`Based on the following information gathered, synthesize a helpful, comprehensive response for the customer.

ORIGINAL QUERY: %s

INFORMATION GATHERED:
%s

Provide a well-structured, customer-friendly response that:
1. Directly addresses the customer's question
2. Includes all relevant details from the gathered information
3. Is organized and easy to read
4. Offers additional helpful suggestions if appropriate

Do NOT mention internal processes, tools, or agents. Respond as if you naturally know this information.`,
		st.Query, encoded)

	draft, err := e.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: synthesisSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, e.chatOpts)
	if err != nil {
		return &SynthesisError{Err: err}
	}

	st.Draft = draft
	st.appendTrace(TraceSynthesis, "synthesized draft from gathered goal results")
	return nil
}
