package dsl

import (
	"context"
	"errors"
	"fmt"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/i18n"
	js "github.com/reoring/moderu/jsonschema"
)

// ChoiceVariant pairs a discriminator tag with a variant schema upcast to
// the choice type. Build one with Variant.
type ChoiceVariant[M any] struct {
	tag    string
	schema moderu.Schema[M]
}

// Variant registers schema under tag. M is typically an interface that V
// implements; a decoded V that does not satisfy M surfaces as an issue, not
// a panic. The call site supplies M and lets V infer:
//
//	dsl.Variant[Animal]("cow", cowSchema)
func Variant[M, V any](tag string, schema moderu.Schema[V]) ChoiceVariant[M] {
	return ChoiceVariant[M]{tag: tag, schema: upcastSchema[M, V]{inner: schema}}
}

// Choice builds a discriminator-mapped choice. Decode reads the
// discriminator key and delegates to the matching variant without removing
// the key from the record; encode dispatches on the dynamic type of the
// value across variants in registration order. The discriminator reaches the
// wire through the variant model's own FinalizeRecord hook.
func Choice[M any](discriminator string, variants ...ChoiceVariant[M]) (moderu.Choice[M], error) {
	var iss moderu.Issues
	if discriminator == "" {
		iss = moderu.AppendIssues(iss, moderu.Issue{Path: "/", Code: moderu.CodeParseError, Message: i18n.T(moderu.CodeParseError, nil), Hint: "discriminator key must not be empty"})
	}
	if len(variants) == 0 {
		iss = moderu.AppendIssues(iss, moderu.Issue{Path: "/", Code: moderu.CodeParseError, Message: i18n.T(moderu.CodeParseError, nil), Hint: "at least one variant required"})
	}
	byTag := make(map[string]moderu.Schema[M], len(variants))
	order := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.tag == "" {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: "/", Code: moderu.CodeParseError, Message: i18n.T(moderu.CodeParseError, nil), Hint: "variant tag must not be empty"})
			continue
		}
		if _, dup := byTag[v.tag]; dup {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(v.tag).Pointer(), Code: moderu.CodeDuplicateKey, Message: i18n.T(moderu.CodeDuplicateKey, nil), Hint: "duplicate variant tag"})
			continue
		}
		byTag[v.tag] = v.schema
		order = append(order, v.tag)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return &mappedChoice[M]{key: discriminator, order: order, byTag: byTag}, nil
}

// MustChoice panics on configuration error.
func MustChoice[M any](discriminator string, variants ...ChoiceVariant[M]) moderu.Choice[M] {
	c, err := Choice[M](discriminator, variants...)
	if err != nil {
		panic(err)
	}
	return c
}

// mappedChoice dispatches records on a discriminator key and values on their
// dynamic type.
type mappedChoice[M any] struct {
	key   string
	order []string
	byTag map[string]moderu.Schema[M]
}

func (c *mappedChoice[M]) ChooseSchema(r moderu.Record) (moderu.Schema[M], error) {
	tag, ok := r[c.key].(string)
	if !ok || tag == "" {
		return nil, moderu.Issues{{Path: moderu.Path().Field(c.key).Pointer(), Code: moderu.CodeDiscriminatorMissing, Message: i18n.T(moderu.CodeDiscriminatorMissing, nil), Hint: "discriminator missing"}}
	}
	s, ok := c.byTag[tag]
	if !ok {
		return nil, moderu.Issues{{Path: moderu.Path().Field(c.key).Pointer(), Code: moderu.CodeDiscriminatorUnknown, Message: i18n.T(moderu.CodeDiscriminatorUnknown, nil), Hint: "unknown variant: '" + tag + "'", Params: map[string]any{"value": tag}}}
	}
	return s, nil
}

func (c *mappedChoice[M]) Decode(ctx context.Context, r moderu.Record) (M, error) {
	s, err := c.ChooseSchema(r)
	if err != nil {
		var zero M
		return zero, err
	}
	// The record is delegated untouched; variant schemas read only their
	// declared keys, so the discriminator survives.
	return s.Decode(ctx, r)
}

func (c *mappedChoice[M]) Encode(ctx context.Context, v M) (moderu.Record, error) {
	for _, tag := range c.order {
		r, err := c.byTag[tag].Encode(ctx, v)
		if err != nil {
			if errors.Is(err, errVariantMismatch) {
				continue
			}
			return nil, err
		}
		return r, nil
	}
	return nil, moderu.Issues{{Path: "/", Code: moderu.CodeDiscriminatorUnknown, Message: i18n.T(moderu.CodeDiscriminatorUnknown, nil), Hint: fmt.Sprintf("no variant for type %T", v)}}
}

func (c *mappedChoice[M]) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{}
	out.OneOf = make([]*js.Schema, 0, len(c.order))
	for _, tag := range c.order {
		vs, err := c.byTag[tag].JSONSchema()
		if err != nil {
			return nil, err
		}
		out.OneOf = append(out.OneOf, vs)
	}
	return out, nil
}

// errVariantMismatch signals that a value's dynamic type belongs to a
// different variant; the choice moves on to the next one.
var errVariantMismatch = errors.New("variant mismatch")

// upcastSchema adapts Schema[V] to Schema[M] via dynamic assertion.
type upcastSchema[M, V any] struct{ inner moderu.Schema[V] }

func (u upcastSchema[M, V]) Decode(ctx context.Context, r moderu.Record) (M, error) {
	v, err := u.inner.Decode(ctx, r)
	if err != nil {
		var zero M
		return zero, err
	}
	return upcastValue[M](v)
}

func (u upcastSchema[M, V]) DecodeWithMeta(ctx context.Context, r moderu.Record) (moderu.Decoded[M], error) {
	dv, err := u.inner.DecodeWithMeta(ctx, r)
	if err != nil {
		return moderu.Decoded[M]{}, err
	}
	m, err := upcastValue[M](dv.Value)
	if err != nil {
		return moderu.Decoded[M]{}, err
	}
	return moderu.Decoded[M]{Value: m, Presence: dv.Presence}, nil
}

func (u upcastSchema[M, V]) Encode(ctx context.Context, v M) (moderu.Record, error) {
	tv, ok := any(v).(V)
	if !ok {
		return nil, errVariantMismatch
	}
	return u.inner.Encode(ctx, tv)
}

func (u upcastSchema[M, V]) New(over moderu.Fields) (M, error) {
	v, err := u.inner.New(over)
	if err != nil {
		var zero M
		return zero, err
	}
	return upcastValue[M](v)
}

func (u upcastSchema[M, V]) Fields() []moderu.FieldInfo      { return u.inner.Fields() }
func (u upcastSchema[M, V]) JSONSchema() (*js.Schema, error) { return u.inner.JSONSchema() }

func upcastValue[M any](v any) (M, error) {
	m, ok := v.(M)
	if !ok {
		var zero M
		return zero, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: fmt.Sprintf("variant value %T does not satisfy the choice type", v)}}
	}
	return m, nil
}
