package engine

import (
	"context"
	"errors"
	"testing"
)

func echoExecutor(_ context.Context, query string, _ map[string]string) (string, error) {
	return "echo: " + query, nil
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		caps    []Capability
		wantErr bool
	}{
		{
			name: "valid",
			caps: []Capability{
				{Name: "a", Fn: echoExecutor},
				{Name: "b", Fn: echoExecutor},
			},
		},
		{
			name:    "duplicate name",
			caps:    []Capability{{Name: "a", Fn: echoExecutor}, {Name: "a", Fn: echoExecutor}},
			wantErr: true,
		},
		{
			name:    "missing executor",
			caps:    []Capability{{Name: "a"}},
			wantErr: true,
		},
		{
			name:    "empty name",
			caps:    []Capability{{Fn: echoExecutor}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.caps...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRegistry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryExecute(t *testing.T) {
	reg, err := NewRegistry(
		Capability{Name: "ok", Fn: echoExecutor},
		Capability{Name: "boom", Fn: func(context.Context, string, map[string]string) (string, error) {
			return "", errors.New("backend down")
		}},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	out, err := reg.Execute(context.Background(), "ok", "hi", nil)
	if err != nil || out != "echo: hi" {
		t.Errorf("Execute(ok) = %q, %v", out, err)
	}

	var capErr *CapabilityError
	if _, err := reg.Execute(context.Background(), "boom", "hi", nil); !errors.As(err, &capErr) {
		t.Errorf("Execute(boom) error = %v, want *CapabilityError", err)
	}
	if _, err := reg.Execute(context.Background(), "missing", "hi", nil); !errors.As(err, &capErr) {
		t.Errorf("Execute(missing) error = %v, want *CapabilityError", err)
	}
}

func TestCapabilityValidateParams(t *testing.T) {
	c := Capability{
		Name: "shipping",
		Fn:   echoExecutor,
		ParamsSchema: `{
			"type": "object",
			"properties": {"zip": {"type": "string", "pattern": "^\\d{5}$"}}
		}`,
	}

	if err := c.ValidateParams(map[string]string{"zip": "90210"}); err != nil {
		t.Errorf("valid zip rejected: %v", err)
	}
	if err := c.ValidateParams(nil); err != nil {
		t.Errorf("missing optional params rejected: %v", err)
	}
	if err := c.ValidateParams(map[string]string{"zip": "nope"}); err == nil {
		t.Error("invalid zip accepted")
	}
}
