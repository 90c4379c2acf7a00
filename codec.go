package moderu

import (
	"context"

	js "github.com/reoring/moderu/jsonschema"
)

// Codec converts between a raw wire value inside a Record and a typed member
// value. DecodeValue receives the raw value as it appears in the record
// (possibly nil for explicit nulls); EncodeValue must produce a value from
// the JSON-ish kernel so any driver can render it.
//
// Ready-made codecs live in the codec package; attributes declared without a
// codec use plain type assertion.
type Codec[V any] interface {
	DecodeValue(ctx context.Context, raw any) (V, error)
	EncodeValue(ctx context.Context, v V) (any, error)
}

// SchemaHinter is an optional capability for codecs that can describe their
// wire shape for JSON Schema export.
type SchemaHinter interface {
	SchemaHint() *js.Schema
}
