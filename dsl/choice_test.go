package dsl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/codec"
	d "github.com/reoring/moderu/dsl"
	js "github.com/reoring/moderu/jsonschema"
)

// Animal is the classic heterogeneous fixture: two variants discriminated by
// a "__type__" key that each variant stamps back on encode.

type Animal interface{ Noise() string }

type Cow struct {
	Name string
}

func (c Cow) Noise() string                  { return "moo" }
func (c Cow) FinalizeRecord(r moderu.Record) { r["__type__"] = "cow" }

type Sheep struct {
	Name  string
	Wooly bool
}

func (s Sheep) Noise() string                  { return "baa" }
func (s Sheep) FinalizeRecord(r moderu.Record) { r["__type__"] = "sheep" }

// Goat implements Animal but is never registered as a variant.
type Goat struct{}

func (Goat) Noise() string { return "meh" }

var cowSchema = d.Model[Cow]().
	Field("name", d.AttrOf(func(m *Cow) *string { return &m.Name }, codec.String())).
	MustBuild()

var sheepSchema = d.Model[Sheep]().
	Field("name", d.AttrOf(func(m *Sheep) *string { return &m.Name }, codec.String())).
	Field("wooly", d.AttrOf(func(m *Sheep) *bool { return &m.Wooly }, codec.Bool())).Optional().
	MustBuild()

var animalChoice = d.MustChoice[Animal]("__type__",
	d.Variant[Animal]("cow", cowSchema),
	d.Variant[Animal]("sheep", sheepSchema),
)

func TestChoice_Decode_Dispatch(t *testing.T) {
	ctx := context.Background()

	v, err := animalChoice.Decode(ctx, moderu.Record{"__type__": "cow", "name": "bessie"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cow, ok := v.(Cow)
	if !ok || cow.Name != "bessie" {
		t.Fatalf("unexpected value: %#v", v)
	}

	v, err = animalChoice.Decode(ctx, moderu.Record{"__type__": "sheep", "name": "shaun", "wooly": true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	sheep, ok := v.(Sheep)
	if !ok || sheep.Name != "shaun" || !sheep.Wooly {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestChoice_Decode_RecordKeptIntact(t *testing.T) {
	ctx := context.Background()
	r := moderu.Record{"__type__": "cow", "name": "bessie"}
	if _, err := animalChoice.Decode(ctx, r); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r["__type__"] != "cow" {
		t.Fatalf("expected the discriminator to survive dispatch, got %#v", r)
	}
}

func TestChoice_Decode_DiscriminatorMissing(t *testing.T) {
	ctx := context.Background()

	for _, r := range []moderu.Record{
		{"name": "bessie"},
		{"__type__": 1, "name": "bessie"},
	} {
		_, err := animalChoice.Decode(ctx, r)
		iss, ok := moderu.AsIssues(err)
		if !ok || len(iss) != 1 || iss[0].Code != moderu.CodeDiscriminatorMissing || iss[0].Path != "/__type__" {
			t.Fatalf("expected discriminator_missing at /__type__ for %#v, got %v", r, err)
		}
	}
}

func TestChoice_Decode_DiscriminatorUnknown(t *testing.T) {
	ctx := context.Background()
	_, err := animalChoice.Decode(ctx, moderu.Record{"__type__": "goat"})
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != moderu.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown, got %v", err)
	}
	if iss[0].Params["value"] != "goat" || !strings.Contains(iss[0].Hint, "goat") {
		t.Fatalf("expected offending value in hint/params, got %+v", iss[0])
	}
}

func TestChoice_ChooseSchema(t *testing.T) {
	s, err := animalChoice.ChooseSchema(moderu.Record{"__type__": "sheep"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	fields := s.Fields()
	if len(fields) != 2 || fields[1].Name != "wooly" {
		t.Fatalf("expected the sheep plan, got %v", fields)
	}

	// The chosen schema constructs the choice type, not the variant type.
	v, err := s.New(moderu.Fields{"name": "shaun"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v.(Sheep); !ok {
		t.Fatalf("expected a sheep behind the choice type, got %#v", v)
	}
}

func TestChoice_Encode_DispatchesOnDynamicType(t *testing.T) {
	ctx := context.Background()

	r, err := animalChoice.Encode(ctx, Cow{Name: "bessie"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := moderu.Record{"__type__": "cow", "name": "bessie"}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	r, err = animalChoice.Encode(ctx, Sheep{Name: "shaun", Wooly: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want = moderu.Record{"__type__": "sheep", "name": "shaun", "wooly": true}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestChoice_Encode_UnregisteredType(t *testing.T) {
	ctx := context.Background()
	_, err := animalChoice.Encode(ctx, Goat{})
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != moderu.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown for unregistered type, got %v", err)
	}
	if !strings.Contains(iss[0].Hint, "Goat") {
		t.Fatalf("expected the dynamic type in the hint, got %+v", iss[0])
	}
}

func TestChoice_RoundTrip(t *testing.T) {
	ctx := context.Background()
	in := Animal(Sheep{Name: "shaun", Wooly: true})
	r, err := animalChoice.Encode(ctx, in)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	got, err := animalChoice.Decode(ctx, r)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got != in {
		t.Fatalf("round trip mismatch: %#v != %#v", got, in)
	}
}

func TestChoice_VariantNotSatisfyingChoiceType(t *testing.T) {
	ctx := context.Background()
	// Pet does not implement Animal; the mismatch surfaces as an issue.
	c := d.MustChoice[Animal]("__type__",
		d.Variant[Animal]("pet", petSchema),
	)
	_, err := c.Decode(ctx, moderu.Record{"__type__": "pet", "name": "tama"})
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != moderu.CodeInvalidType {
		t.Fatalf("expected invalid_type for non-conforming variant, got %v", err)
	}
}

func TestChoice_BuildErrors(t *testing.T) {
	if _, err := d.Choice[Animal]("", d.Variant[Animal]("cow", cowSchema)); err == nil {
		t.Fatalf("expected error for empty discriminator")
	}
	if _, err := d.Choice[Animal]("__type__"); err == nil {
		t.Fatalf("expected error for zero variants")
	}
	if _, err := d.Choice[Animal]("__type__", d.Variant[Animal]("", cowSchema)); err == nil {
		t.Fatalf("expected error for empty variant tag")
	}

	_, err := d.Choice[Animal]("__type__",
		d.Variant[Animal]("cow", cowSchema),
		d.Variant[Animal]("cow", sheepSchema),
	)
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != moderu.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key for duplicate tags, got %v", err)
	}
}

func TestChoice_HeterogeneousSequence(t *testing.T) {
	ctx := context.Background()

	type Farm struct {
		Name    string
		Animals []Animal
	}
	farmSchema := d.Model[Farm]().
		Field("name", d.AttrOf(func(m *Farm) *string { return &m.Name }, codec.String())).
		Field("animals", d.Seq(func(m *Farm) *[]Animal { return &m.Animals }, animalChoice)).
		MustBuild()

	v, err := farmSchema.Decode(ctx, moderu.Record{
		"name": "green acres",
		"animals": []any{
			map[string]any{"__type__": "sheep", "name": "shaun", "wooly": true},
			map[string]any{"__type__": "cow", "name": "bessie"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Animals) != 2 {
		t.Fatalf("expected 2 animals, got %#v", v.Animals)
	}
	if _, ok := v.Animals[0].(Sheep); !ok {
		t.Fatalf("expected sheep first, got %#v", v.Animals[0])
	}
	if _, ok := v.Animals[1].(Cow); !ok {
		t.Fatalf("expected cow second, got %#v", v.Animals[1])
	}

	r, err := farmSchema.Encode(ctx, v)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	arr, ok := r["animals"].([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("expected encoded array, got %#v", r["animals"])
	}
	first, _ := arr[0].(moderu.Record)
	if first["__type__"] != "sheep" {
		t.Fatalf("expected stamped discriminator, got %#v", arr[0])
	}

	// Unknown tags inside the sequence surface with element-indexed paths.
	_, err = farmSchema.Decode(ctx, moderu.Record{
		"name":    "green acres",
		"animals": []any{map[string]any{"__type__": "goat"}},
	})
	iss, ok := moderu.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/animals/0/__type__" || iss[0].Code != moderu.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown at /animals/0/__type__, got %v", err)
	}
}

func TestChoice_JSONSchema_OneOf(t *testing.T) {
	hinter, ok := animalChoice.(interface {
		JSONSchema() (*js.Schema, error)
	})
	if !ok {
		t.Fatalf("expected the mapped choice to expose JSONSchema")
	}
	out, err := hinter.JSONSchema()
	if err != nil {
		t.Fatalf("jsonschema err: %v", err)
	}
	if len(out.OneOf) != 2 {
		t.Fatalf("expected oneOf with 2 variants, got %#v", out)
	}
	// Registration order puts the cow variant first.
	if out.OneOf[0] == nil || out.OneOf[0].Properties["name"] == nil {
		t.Fatalf("expected variant properties, got %#v", out.OneOf[0])
	}
}
