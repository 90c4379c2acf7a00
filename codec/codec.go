// Package codec provides ready-made value codecs for attribute mapping:
// identity assertion, primitive coercions, bool/int, complex/record and
// RFC3339 time conversions.
package codec

import (
	"context"
	"fmt"

	moderu "github.com/reoring/moderu"
	js "github.com/reoring/moderu/jsonschema"
)

// Identity returns a Codec that passes values through with a plain type
// assertion. An explicit null decodes to the zero value of T.
func Identity[T any]() moderu.Codec[T] { return identityCodec[T]{} }

type identityCodec[T any] struct{}

func (identityCodec[T]) DecodeValue(ctx context.Context, raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: fmt.Sprintf("expected %T", zero)}}
	}
	return v, nil
}

func (identityCodec[T]) EncodeValue(ctx context.Context, v T) (any, error) { return v, nil }

func (identityCodec[T]) SchemaHint() *js.Schema { return &js.Schema{} }
