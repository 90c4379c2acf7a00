package codec

import (
	"context"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/internal/engine"
	js "github.com/reoring/moderu/jsonschema"
)

// Complex128 maps complex numbers to {"real": r, "imaginary": i} records on
// the wire.
func Complex128() moderu.Codec[complex128] { return complexCodec{} }

type complexCodec struct{}

func (complexCodec) DecodeValue(ctx context.Context, raw any) (complex128, error) {
	if raw == nil {
		return 0, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return 0, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected object with real/imaginary"}}
	}
	var iss moderu.Issues
	re, ok := engine.AsFloat64(m["real"])
	if !ok {
		iss = moderu.AppendIssues(iss, moderu.Issue{Path: "/real", Code: moderu.CodeInvalidType, Message: "expected number"})
	}
	im, ok := engine.AsFloat64(m["imaginary"])
	if !ok {
		iss = moderu.AppendIssues(iss, moderu.Issue{Path: "/imaginary", Code: moderu.CodeInvalidType, Message: "expected number"})
	}
	if len(iss) > 0 {
		return 0, iss
	}
	return complex(re, im), nil
}

func (complexCodec) EncodeValue(ctx context.Context, v complex128) (any, error) {
	return moderu.Record{"real": real(v), "imaginary": imag(v)}, nil
}

func (complexCodec) SchemaHint() *js.Schema {
	return &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"real":      {Type: "number"},
			"imaginary": {Type: "number"},
		},
		Required: []string{"imaginary", "real"},
	}
}
