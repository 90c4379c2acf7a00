package codec

import (
	"context"
	"testing"

	moderu "github.com/reoring/moderu"
)

func TestIdentity_PassthroughAndMismatch(t *testing.T) {
	c := Identity[string]()
	ctx := context.Background()

	got, err := c.DecodeValue(ctx, "hello")
	if err != nil || got != "hello" {
		t.Fatalf("unexpected result: %q, %v", got, err)
	}

	if _, err := c.DecodeValue(ctx, 42); err == nil {
		t.Fatalf("expected invalid_type for mismatched value")
	} else if iss, ok := moderu.AsIssues(err); !ok || iss[0].Code != moderu.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %v", err)
	}

	// explicit null decodes to the zero value
	got, err = c.DecodeValue(ctx, nil)
	if err != nil || got != "" {
		t.Fatalf("unexpected null handling: %q, %v", got, err)
	}

	out, err := c.EncodeValue(ctx, "hello")
	if err != nil || out != "hello" {
		t.Fatalf("unexpected encode: %v, %v", out, err)
	}
}

func TestIdentity_InterfaceElement(t *testing.T) {
	c := Identity[any]()
	ctx := context.Background()
	got, err := c.DecodeValue(ctx, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["k"] != "v" {
		t.Fatalf("unexpected value: %#v", got)
	}
}
