package codec

import (
	"context"
	"time"

	moderu "github.com/reoring/moderu"
	js "github.com/reoring/moderu/jsonschema"
)

// TimeRFC3339 maps time.Time to RFC3339 strings: canonical UTC with trailing
// zeros trimmed on encode, RFC3339 and RFC3339Nano accepted on decode.
func TimeRFC3339() moderu.Codec[time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) DecodeValue(ctx context.Context, raw any) (time.Time, error) {
	if raw == nil {
		return time.Time{}, nil
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: "expected RFC3339 string"}}
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return time.Time{}, moderu.Issues{{Path: "/", Code: moderu.CodeParseError, Message: "invalid RFC3339 time", Cause: err}}
	}
	return t, nil
}

func (rfc3339Codec) EncodeValue(ctx context.Context, v time.Time) (any, error) {
	return formatRFC3339Canonical(v), nil
}

func (rfc3339Codec) SchemaHint() *js.Schema {
	return &js.Schema{Type: "string", Format: "date-time"}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
