package codec

import (
	"context"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/internal/engine"
	js "github.com/reoring/moderu/jsonschema"
)

// BoolInt maps booleans to 0/1 integers on the wire. Decode accepts any
// integral form (nonzero is true) and passes plain booleans through.
func BoolInt() moderu.Codec[bool] { return boolIntCodec{} }

type boolIntCodec struct{}

func (boolIntCodec) DecodeValue(ctx context.Context, raw any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	n, ok := engine.AsInt64(raw)
	if !ok {
		return false, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected 0/1 integer"}}
	}
	return n != 0, nil
}

func (boolIntCodec) EncodeValue(ctx context.Context, v bool) (any, error) {
	if v {
		return int64(1), nil
	}
	return int64(0), nil
}

func (boolIntCodec) SchemaHint() *js.Schema { return &js.Schema{Type: "integer"} }
