package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// ExecutorFunc performs one domain lookup or action. Implementations must
// tolerate missing optional parameters; errors are non-fatal to the run.
type ExecutorFunc func(ctx context.Context, query string, params map[string]string) (string, error)

// Capability binds a name the decomposer can target to an executor.
type Capability struct {
	Name        string
	Description string
	// ParamsSchema is an optional JSON schema validated against the goal's
	// parameter map before execution. Empty means no validation.
	ParamsSchema string
	// MemoryKey, when set, makes a completed goal of this capability
	// overwrite that key in the session's working memory (last-write-wins).
	MemoryKey string
	Fn        ExecutorFunc
}

// ValidateParams validates the provided parameters against the capability's
// JSON schema, if one is declared.
func (c Capability) ValidateParams(params map[string]string) error {
	if c.ParamsSchema == "" {
		return nil
	}
	doc := make(map[string]any, len(params))
	for k, v := range params {
		doc[k] = v
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(c.ParamsSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid params for %s: %v", c.Name, msgs)
	}
	return nil
}

// Registry maps capability names to executors. It is built once at startup
// and treated as immutable (read-only) across invocations.
type Registry map[string]Capability

// NewRegistry builds a registry from the given capabilities, rejecting
// duplicates and entries without an executor.
func NewRegistry(caps ...Capability) (Registry, error) {
	r := make(Registry, len(caps))
	for _, c := range caps {
		if c.Name == "" {
			return nil, fmt.Errorf("capability with empty name")
		}
		if c.Fn == nil {
			return nil, fmt.Errorf("capability %q has no executor", c.Name)
		}
		if _, dup := r[c.Name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", c.Name)
		}
		r[c.Name] = c
	}
	return r, nil
}

// Execute resolves and runs the named capability. Unknown names and
// executor failures come back as *CapabilityError.
func (r Registry) Execute(ctx context.Context, name, query string, params map[string]string) (string, error) {
	c, ok := r[name]
	if !ok {
		return "", &CapabilityError{Capability: name, Err: fmt.Errorf("not registered")}
	}
	if err := c.ValidateParams(params); err != nil {
		return "", &CapabilityError{Capability: name, Err: err}
	}
	out, err := c.Fn(ctx, query, params)
	if err != nil {
		return "", &CapabilityError{Capability: name, Err: err}
	}
	return out, nil
}

// Names returns the registered capability names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
