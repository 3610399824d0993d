package engine

import "fmt"

// CapabilityError wraps a capability executor failure. It is recorded as a
// failed goal result; the run continues.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %q: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// SynthesisError wraps an LLM failure while merging goal results. It is
// fatal to the remainder of the pipeline: the run finishes with a degraded
// apology response.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesis: %v", e.Err) }

func (e *SynthesisError) Unwrap() error { return e.Err }

// ReflectionError wraps an LLM failure during the critique cycle. Like
// SynthesisError it degrades the run.
type ReflectionError struct {
	Err error
}

func (e *ReflectionError) Error() string { return fmt.Sprintf("reflection: %v", e.Err) }

func (e *ReflectionError) Unwrap() error { return e.Err }

// PersistenceError wraps a session-store failure. It surfaces as a warning
// on the Result; the computed response is still returned.
type PersistenceError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
