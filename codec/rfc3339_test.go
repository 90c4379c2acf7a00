package codec

import (
	"context"
	"testing"
	"time"

	moderu "github.com/reoring/moderu"
)

func TestTimeRFC3339_Codec_Basic(t *testing.T) {
	c := TimeRFC3339()
	ctx := context.Background()

	in := "2025-01-01T00:00:00Z"
	got, err := c.DecodeValue(ctx, in)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}

	out, err := c.EncodeValue(ctx, got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %v != %s", out, in)
	}
}

func TestTimeRFC3339_Codec_NanoAndOffset(t *testing.T) {
	c := TimeRFC3339()
	ctx := context.Background()

	got, err := c.DecodeValue(ctx, "2025-01-01T09:00:00.5+09:00")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	// encode normalizes to UTC
	out, err := c.EncodeValue(ctx, got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != "2025-01-01T00:00:00.5Z" {
		t.Fatalf("unexpected canonical form: %v", out)
	}
}

func TestTimeRFC3339_Codec_Errors(t *testing.T) {
	c := TimeRFC3339()
	ctx := context.Background()

	_, err := c.DecodeValue(ctx, 42)
	expectInvalidType(t, err)

	_, err = c.DecodeValue(ctx, "not a timestamp")
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != moderu.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}

func TestTimeRFC3339_Codec_NullToZero(t *testing.T) {
	c := TimeRFC3339()
	got, err := c.DecodeValue(context.Background(), nil)
	if err != nil || !got.IsZero() {
		t.Fatalf("unexpected null handling: %v, %v", got, err)
	}
}
