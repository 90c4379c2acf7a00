package moderu_test

import (
	"context"
	"encoding/json"
	"testing"

	moderu "github.com/reoring/moderu"
	js "github.com/reoring/moderu/jsonschema"
)

// pair is a minimal model for exercising the package-level entry points
// without pulling in the dsl package.
type pair struct {
	A string
	B string
}

// pairSchema is a hand-rolled Schema[pair] stub.
type pairSchema struct{}

func (pairSchema) Decode(ctx context.Context, r moderu.Record) (pair, error) {
	a, okA := r["a"].(string)
	b, okB := r["b"].(string)
	if !okA || !okB {
		return pair{}, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected a/b strings"}}
	}
	return pair{A: a, B: b}, nil
}

func (s pairSchema) DecodeWithMeta(ctx context.Context, r moderu.Record) (moderu.Decoded[pair], error) {
	v, err := s.Decode(ctx, r)
	if err != nil {
		return moderu.Decoded[pair]{}, err
	}
	return moderu.Decoded[pair]{Value: v, Presence: moderu.PresenceMap{"/": moderu.PresenceSeen}}, nil
}

func (pairSchema) Encode(ctx context.Context, v pair) (moderu.Record, error) {
	return moderu.Record{"a": v.A, "b": v.B}, nil
}

func (pairSchema) New(over moderu.Fields) (pair, error) { return pair{}, nil }
func (pairSchema) Fields() []moderu.FieldInfo           { return nil }
func (pairSchema) JSONSchema() (*js.Schema, error)      { return &js.Schema{Type: "object"}, nil }

func TestDecodeFrom_Sources(t *testing.T) {
	ctx := context.Background()
	s := pairSchema{}

	v, err := moderu.DecodeFrom[pair](ctx, s, moderu.FromRecord(moderu.Record{"a": "x", "b": "y"}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v != (pair{A: "x", B: "y"}) {
		t.Fatalf("unexpected value: %#v", v)
	}

	v, err = moderu.DecodeFrom[pair](ctx, s, moderu.JSONBytes([]byte(`{"a":"1","b":"2"}`)))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v != (pair{A: "1", B: "2"}) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecodeFrom_SourceErrorShortCircuits(t *testing.T) {
	_, err := moderu.DecodeFrom[pair](context.Background(), pairSchema{}, moderu.JSONBytes([]byte(`{`)))
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != moderu.CodeParseError {
		t.Fatalf("expected parse_error from the source, got %v", err)
	}
}

func TestDecodeFromWithMeta_ReportsPresence(t *testing.T) {
	dm, err := moderu.DecodeFromWithMeta[pair](context.Background(), pairSchema{}, moderu.JSONBytes([]byte(`{"a":"x","b":"y"}`)))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !dm.Presence.Seen("/") {
		t.Fatalf("expected root presence, got %v", dm.Presence)
	}
}

func TestEncodeTo_RendersJSON(t *testing.T) {
	data, err := moderu.EncodeTo[pair](context.Background(), pairSchema{}, pair{A: "x", B: "y"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["a"] != "x" || got["b"] != "y" {
		t.Fatalf("unexpected output: %s", data)
	}
}

func TestFailFast_ContextToggle(t *testing.T) {
	ctx := context.Background()
	if moderu.IsFailFast(ctx) {
		t.Fatalf("expected collect-all by default")
	}
	ctx = moderu.WithFailFast(ctx, true)
	if !moderu.IsFailFast(ctx) {
		t.Fatalf("expected fail-fast after toggle")
	}
	ctx = moderu.WithFailFast(ctx, false)
	if moderu.IsFailFast(ctx) {
		t.Fatalf("expected collect-all after second toggle")
	}
}

// stamped finalizes its own record with a marker key.
type stamped struct{}

func (stamped) FinalizeRecord(r moderu.Record) { r["__marker__"] = "yes" }

func TestApplyFinalize(t *testing.T) {
	r := moderu.Record{}
	moderu.ApplyFinalize(stamped{}, r)
	if r["__marker__"] != "yes" {
		t.Fatalf("expected finalize hook to run, got %#v", r)
	}

	r2 := moderu.Record{}
	moderu.ApplyFinalize(pair{}, r2)
	if len(r2) != 0 {
		t.Fatalf("expected no-op for non-finalizer, got %#v", r2)
	}
}

func TestPresenceMap_Helpers(t *testing.T) {
	p := moderu.PresenceMap{
		"/a": moderu.PresenceSeen,
		"/b": moderu.PresenceSeen | moderu.PresenceWasNull,
	}
	if !p.Seen("/a") || p.WasNull("/a") {
		t.Fatalf("unexpected flags for /a")
	}
	if !p.Seen("/b") || !p.WasNull("/b") {
		t.Fatalf("unexpected flags for /b")
	}
	if p.Seen("/missing") || p.WasNull("/missing") {
		t.Fatalf("expected absent key to report false")
	}
}
