package codec

import (
	"context"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/internal/engine"
	js "github.com/reoring/moderu/jsonschema"
)

// String asserts the wire value is a string.
func String() moderu.Codec[string] { return stringCodec{} }

type stringCodec struct{}

func (stringCodec) DecodeValue(ctx context.Context, raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected string"}}
	}
	return s, nil
}

func (stringCodec) EncodeValue(ctx context.Context, v string) (any, error) { return v, nil }

func (stringCodec) SchemaHint() *js.Schema { return &js.Schema{Type: "string"} }

// Bool asserts the wire value is a boolean.
func Bool() moderu.Codec[bool] { return boolCodec{} }

type boolCodec struct{}

func (boolCodec) DecodeValue(ctx context.Context, raw any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected boolean"}}
	}
	return b, nil
}

func (boolCodec) EncodeValue(ctx context.Context, v bool) (any, error) { return v, nil }

func (boolCodec) SchemaHint() *js.Schema { return &js.Schema{Type: "boolean"} }

// Int64 coerces the numeric wire forms sources produce (json.Number, int,
// int64, integral float64) into int64.
func Int64() moderu.Codec[int64] { return int64Codec{} }

type int64Codec struct{}

func (int64Codec) DecodeValue(ctx context.Context, raw any) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	n, ok := engine.AsInt64(raw)
	if !ok {
		return 0, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected integer"}}
	}
	return n, nil
}

func (int64Codec) EncodeValue(ctx context.Context, v int64) (any, error) { return v, nil }

func (int64Codec) SchemaHint() *js.Schema { return &js.Schema{Type: "integer"} }

// Float64 coerces the numeric wire forms sources produce into float64.
func Float64() moderu.Codec[float64] { return float64Codec{} }

type float64Codec struct{}

func (float64Codec) DecodeValue(ctx context.Context, raw any) (float64, error) {
	if raw == nil {
		return 0, nil
	}
	f, ok := engine.AsFloat64(raw)
	if !ok {
		return 0, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected number"}}
	}
	return f, nil
}

func (float64Codec) EncodeValue(ctx context.Context, v float64) (any, error) { return v, nil }

func (float64Codec) SchemaHint() *js.Schema { return &js.Schema{Type: "number"} }
