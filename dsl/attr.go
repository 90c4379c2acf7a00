package dsl

import (
	"context"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/codec"
	"github.com/reoring/moderu/i18n"
	js "github.com/reoring/moderu/jsonschema"
)

// AnyAttr is a type-erased attribute descriptor bound to model M. Construct
// one with Attr/AttrOf (scalars) or Rel/RelPtr/Seq (relations); the builder
// attaches the name, wire key and optionality. Errors returned by unpack and
// pack carry paths relative to the attribute's own value; the schema rebases
// them under the wire key.
type AnyAttr[M any] struct {
	unpack   func(ctx context.Context, m *M, raw any) error
	pack     func(ctx context.Context, m *M) (any, error)
	assign   func(m *M, v any) bool
	hint     func() *js.Schema
	relation bool
	sequence bool
}

// Attr binds a scalar member through plain type assertion. Explicit nulls
// decode to the zero value of V.
func Attr[M, V any](at func(*M) *V) AnyAttr[M] {
	return AttrOf(at, codec.Identity[V]())
}

// AttrOf binds a scalar member through the given codec.
func AttrOf[M, V any](at func(*M) *V, c moderu.Codec[V]) AnyAttr[M] {
	return AnyAttr[M]{
		unpack: func(ctx context.Context, m *M, raw any) error {
			v, err := c.DecodeValue(ctx, raw)
			if err != nil {
				return err
			}
			*at(m) = v
			return nil
		},
		pack: func(ctx context.Context, m *M) (any, error) {
			return c.EncodeValue(ctx, *at(m))
		},
		assign: assignTo(at),
		hint: func() *js.Schema {
			if h, ok := c.(moderu.SchemaHinter); ok {
				return h.SchemaHint()
			}
			return &js.Schema{}
		},
	}
}

// Rel embeds another mapper (schema or choice) under one wire key. Explicit
// nulls decode to the zero value of V; a zero value encodes as a full record.
// For null round-tripping use RelPtr.
func Rel[M, V any](at func(*M) *V, target moderu.Mapper[V]) AnyAttr[M] {
	return AnyAttr[M]{
		relation: true,
		unpack: func(ctx context.Context, m *M, raw any) error {
			if raw == nil {
				var zero V
				*at(m) = zero
				return nil
			}
			rm, ok := raw.(map[string]any)
			if !ok {
				return moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected object"}}
			}
			v, err := target.Decode(ctx, rm)
			if err != nil {
				return err
			}
			*at(m) = v
			return nil
		},
		pack: func(ctx context.Context, m *M) (any, error) {
			return target.Encode(ctx, *at(m))
		},
		assign: assignTo(at),
		hint:   func() *js.Schema { return relHint(target) },
	}
}

// RelPtr is the nullable relation form: a wire null maps to a nil pointer
// and a nil pointer encodes back to null.
func RelPtr[M, V any](at func(*M) **V, target moderu.Mapper[V]) AnyAttr[M] {
	return AnyAttr[M]{
		relation: true,
		unpack: func(ctx context.Context, m *M, raw any) error {
			if raw == nil {
				*at(m) = nil
				return nil
			}
			rm, ok := raw.(map[string]any)
			if !ok {
				return moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected object"}}
			}
			v, err := target.Decode(ctx, rm)
			if err != nil {
				return err
			}
			*at(m) = &v
			return nil
		},
		pack: func(ctx context.Context, m *M) (any, error) {
			p := *at(m)
			if p == nil {
				return nil, nil
			}
			return target.Encode(ctx, *p)
		},
		assign: func(m *M, v any) bool {
			if v == nil {
				*at(m) = nil
				return true
			}
			if tv, ok := v.(*V); ok {
				*at(m) = tv
				return true
			}
			if tv, ok := v.(V); ok {
				*at(m) = &tv
				return true
			}
			return false
		},
		hint: func() *js.Schema { return relHint(target) },
	}
}

// Seq embeds a sequence relation: a []V member maps to an array of records
// with order preserved in both directions. Heterogeneous sequences use an
// interface element type with a Choice target. A nil slice encodes as null,
// an empty slice as [].
func Seq[M, V any](at func(*M) *[]V, target moderu.Mapper[V]) AnyAttr[M] {
	return AnyAttr[M]{
		relation: true,
		sequence: true,
		unpack: func(ctx context.Context, m *M, raw any) error {
			if raw == nil {
				*at(m) = nil
				return nil
			}
			arr, ok := raw.([]any)
			if !ok {
				return moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected array"}}
			}
			out := make([]V, 0, len(arr))
			var iss moderu.Issues
			for i, el := range arr {
				base := moderu.Path().Index(i).Pointer()
				if el == nil {
					var zero V
					out = append(out, zero)
					continue
				}
				rm, ok := el.(map[string]any)
				if !ok {
					iss = moderu.AppendIssues(iss, moderu.Issue{Path: base, Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected object"})
					if moderu.IsFailFast(ctx) {
						return iss
					}
					continue
				}
				v, err := target.Decode(ctx, rm)
				if err != nil {
					iss = append(iss, moderu.RebaseIssues(base, err)...)
					if moderu.IsFailFast(ctx) {
						return iss
					}
					continue
				}
				out = append(out, v)
			}
			if len(iss) > 0 {
				return iss
			}
			*at(m) = out
			return nil
		},
		pack: func(ctx context.Context, m *M) (any, error) {
			sl := *at(m)
			if sl == nil {
				return nil, nil
			}
			out := make([]any, 0, len(sl))
			var iss moderu.Issues
			for i, v := range sl {
				r, err := target.Encode(ctx, v)
				if err != nil {
					iss = append(iss, moderu.RebaseIssues(moderu.Path().Index(i).Pointer(), err)...)
					if moderu.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out = append(out, r)
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		assign: assignTo(at),
		hint: func() *js.Schema {
			return &js.Schema{Type: "array", Items: relHint(target)}
		},
	}
}

// assignTo adapts a typed accessor into the named-construction setter.
// A nil override resets the member to its zero value.
func assignTo[M, V any](at func(*M) *V) func(m *M, v any) bool {
	return func(m *M, v any) bool {
		if v == nil {
			var zero V
			*at(m) = zero
			return true
		}
		tv, ok := v.(V)
		if !ok {
			return false
		}
		*at(m) = tv
		return true
	}
}

// relHint asks a relation target for its wire shape; schemas and mapped
// choices both expose JSONSchema as a capability.
func relHint[V any](target moderu.Mapper[V]) *js.Schema {
	if s, ok := target.(interface{ JSONSchema() (*js.Schema, error) }); ok {
		if out, err := s.JSONSchema(); err == nil && out != nil {
			return out
		}
	}
	return &js.Schema{Type: "object"}
}
