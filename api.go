package moderu

import (
	"context"

	js "github.com/reoring/moderu/jsonschema"
)

// Record is the generic wire form: a string-keyed map whose values come from
// the JSON-ish kernel (nil, bool, string, json.Number/int64/float64, []any,
// map[string]any).
type Record = map[string]any

// Mapper is the bidirectional contract between a typed value and a Record.
// Both Schema and Choice satisfy it, so relation targets accept either.
type Mapper[T any] interface {
	// Decode materializes a typed value from a record.
	Decode(ctx context.Context, r Record) (T, error)
	// Encode produces a record from a typed value. Every declared wire key is
	// written, including keys whose value encodes to nil.
	Encode(ctx context.Context, v T) (Record, error)
}

// Schema is a frozen, ordered field plan for one model type. Schemas are
// built once (see dsl.Model) and are safe for concurrent use.
type Schema[M any] interface {
	Mapper[M]
	// DecodeWithMeta decodes and additionally reports which top-level wire
	// keys were present and which were explicit nulls.
	DecodeWithMeta(ctx context.Context, r Record) (Decoded[M], error)
	// New constructs a model value from named fields only. Unknown names and
	// mismatched value types are reported as Issues.
	New(over Fields) (M, error)
	// Fields exposes the frozen plan in declaration order.
	Fields() []FieldInfo
	// JSONSchema exports a minimal JSON Schema for the wire form.
	JSONSchema() (*js.Schema, error)
}

// Choice selects one schema out of several based on the record itself.
// A mapped implementation dispatching on a discriminator key is provided by
// dsl.Choice; custom selection strategies implement this interface directly.
type Choice[M any] interface {
	Mapper[M]
	// ChooseSchema inspects the record and returns the schema that should
	// decode it. The record is not modified.
	ChooseSchema(r Record) (Schema[M], error)
}

// Fields carries named construction overrides for Schema.New, keyed by the
// declared field name (not the wire key).
type Fields map[string]any

// FieldInfo describes one frozen field descriptor.
type FieldInfo struct {
	Name     string // declared field name
	Key      string // wire key
	Optional bool
	Relation bool
	Sequence bool
}

// RecordFinalizer is an optional capability for model types that amend their
// own encoded record, e.g. to stamp a type tag. The hook runs after the
// encode walk has written every declared key; nested relations finalize
// their own records before the parent embeds them.
type RecordFinalizer interface {
	FinalizeRecord(r Record)
}

// ApplyFinalize invokes the RecordFinalizer hook when v implements it.
func ApplyFinalize[T any](v T, r Record) {
	if f, ok := any(v).(RecordFinalizer); ok {
		f.FinalizeRecord(r)
	}
}

// ctxKeyFailFast toggles first-issue abort for decode walks.
type ctxKeyFailFast struct{}

// WithFailFast returns a context under which decode stops at the first issue
// instead of collecting all of them.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, ctxKeyFailFast{}, enabled)
}

// IsFailFast reports whether decode should stop at the first issue.
func IsFailFast(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyFailFast{}).(bool)
	return v
}

// DecodeFrom materializes a model value from a Source.
func DecodeFrom[M any](ctx context.Context, m Mapper[M], src Source) (M, error) {
	r, err := src.Record()
	if err != nil {
		var zero M
		return zero, err
	}
	return m.Decode(ctx, r)
}

// DecodeFromWithMeta is DecodeFrom plus presence metadata.
func DecodeFromWithMeta[M any](ctx context.Context, s Schema[M], src Source) (Decoded[M], error) {
	r, err := src.Record()
	if err != nil {
		return Decoded[M]{}, err
	}
	return s.DecodeWithMeta(ctx, r)
}

// EncodeTo encodes v and renders the record as JSON via the active driver.
func EncodeTo[M any](ctx context.Context, m Mapper[M], v M) ([]byte, error) {
	r, err := m.Encode(ctx, v)
	if err != nil {
		return nil, err
	}
	return CurrentJSONDriver().EncodeRecord(r)
}
