package moderu_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/codec"
	d "github.com/reoring/moderu/dsl"
)

// ---- Helpers ----

type benchUser struct {
	ID   string
	Name string
	Age  int64
}

type benchRoster struct {
	Users []benchUser
}

func benchUserSchema(tb testing.TB) moderu.Schema[benchUser] {
	tb.Helper()
	s, err := d.Model[benchUser]().
		Field("id", d.AttrOf(func(u *benchUser) *string { return &u.ID }, codec.String())).
		Field("name", d.AttrOf(func(u *benchUser) *string { return &u.Name }, codec.String())).
		Field("age", d.AttrOf(func(u *benchUser) *int64 { return &u.Age }, codec.Int64())).Optional().
		Build()
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	return s
}

func benchRosterSchema(tb testing.TB) moderu.Schema[benchRoster] {
	tb.Helper()
	s, err := d.Model[benchRoster]().
		Field("users", d.Seq(func(r *benchRoster) *[]benchUser { return &r.Users }, benchUserSchema(tb))).
		Build()
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	return s
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice","age":34}`)
}

// generateHugeRosterJSON returns {"users":[{"id":"obj_0","name":"n0","age":0}, ...]}.
func generateHugeRosterJSON(numObjects int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * 48)
	buf.WriteString(`{"users":[`)
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d}`, i, i, i)
	}
	buf.WriteString("]}")
	return buf.Bytes()
}

// ---- Micro benchmarks (small inputs) ----

func Benchmark_DecodeFrom_Object_Small_JSONBytes(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := moderu.JSONBytes(data)
		if _, err := moderu.DecodeFrom(ctx, s, src); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeFrom_Object_Small_JSONReader(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bytes.NewReader(data)
		src := moderu.JSONReader(r)
		if _, err := moderu.DecodeFrom(ctx, s, src); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeFrom_Object_Small_FromRecord(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	rec := moderu.Record{"id": "u_1", "name": "alice", "age": int64(34)}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := moderu.DecodeFrom(ctx, s, moderu.FromRecord(rec)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeFromWithMeta_Object_Small(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := moderu.JSONBytes(data)
		if _, err := moderu.DecodeFromWithMeta(ctx, s, src); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Encode_Object_Small(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	u := benchUser{ID: "u_1", Name: "alice", Age: 34}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Encode(ctx, u); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_EncodeTo_Object_Small(b *testing.B) {
	ctx := context.Background()
	s := benchUserSchema(b)
	u := benchUser{ID: "u_1", Name: "alice", Age: 34}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := moderu.EncodeTo(ctx, s, u); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Macro benchmarks (huge JSON) ----

const hugeObjects = 10000

func Benchmark_DecodeFrom_HugeRoster_JSONBytes(b *testing.B) {
	ctx := context.Background()
	s := benchRosterSchema(b)
	data := generateHugeRosterJSON(hugeObjects)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := moderu.JSONBytes(data)
		if _, err := moderu.DecodeFrom(ctx, s, src); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DecodeFrom_HugeRoster_FailFast(b *testing.B) {
	ctx := moderu.WithFailFast(context.Background(), true)
	s := benchRosterSchema(b)
	data := generateHugeRosterJSON(hugeObjects)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := moderu.JSONBytes(data)
		if _, err := moderu.DecodeFrom(ctx, s, src); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Encode_HugeRoster(b *testing.B) {
	ctx := context.Background()
	s := benchRosterSchema(b)
	data := generateHugeRosterJSON(hugeObjects)
	roster, err := moderu.DecodeFrom(ctx, s, moderu.JSONBytes(data))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Encode(ctx, roster); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Baseline: encoding/json ----

func Benchmark_encodingJSON_Unmarshal_SmallObject(b *testing.B) {
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v map[string]any
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_encodingJSON_Unmarshal_HugeRoster(b *testing.B) {
	data := generateHugeRosterJSON(hugeObjects)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v map[string]any
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_encodingJSON_Decoder_HugeRoster(b *testing.B) {
	data := generateHugeRosterJSON(hugeObjects)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v map[string]any
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&v); err != nil && err != io.EOF {
			b.Fatal(err)
		}
	}
}
