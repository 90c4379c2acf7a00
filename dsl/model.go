package dsl

import (
	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/i18n"
)

// ModelBuilder accumulates field descriptors for model type M in declaration
// order. Fields are required by default; declaration order is frozen at Build
// and determines both the decode walk and which failure is reported first.
type ModelBuilder[M any] struct {
	fields []fieldSpec[M]
	errs   moderu.Issues
}

type fieldSpec[M any] struct {
	name     string
	key      string
	optional bool
	attr     AnyAttr[M]
}

// FieldStep scopes Key/Optional to the most recently declared field and
// forwards the rest of the grammar to the builder.
type FieldStep[M any] struct {
	b   *ModelBuilder[M]
	idx int
}

// Model opens a builder for M.
func Model[M any]() *ModelBuilder[M] { return &ModelBuilder[M]{} }

// Field appends one descriptor. The wire key defaults to name; Key overrides
// it.
func (b *ModelBuilder[M]) Field(name string, a AnyAttr[M]) *FieldStep[M] {
	if name == "" {
		b.errs = moderu.AppendIssues(b.errs, moderu.Issue{Path: "/", Code: moderu.CodeParseError, Message: i18n.T(moderu.CodeParseError, nil), Hint: "field name must not be empty"})
	}
	b.fields = append(b.fields, fieldSpec[M]{name: name, key: name, attr: a})
	return &FieldStep[M]{b: b, idx: len(b.fields) - 1}
}

// Key overrides the wire key for the current field.
func (f *FieldStep[M]) Key(key string) *FieldStep[M] {
	f.b.fields[f.idx].key = key
	return f
}

// Optional marks the current field optional: decode of a record missing the
// key leaves the member at its zero value.
func (f *FieldStep[M]) Optional() *FieldStep[M] {
	f.b.fields[f.idx].optional = true
	return f
}

func (f *FieldStep[M]) Field(name string, a AnyAttr[M]) *FieldStep[M] { return f.b.Field(name, a) }
func (f *FieldStep[M]) Build() (moderu.Schema[M], error)              { return f.b.Build() }
func (f *FieldStep[M]) MustBuild() moderu.Schema[M]                   { return f.b.MustBuild() }

// Build freezes the declaration-ordered plan into an immutable schema.
// Mutating the builder afterwards never affects a built schema.
func (b *ModelBuilder[M]) Build() (moderu.Schema[M], error) {
	iss := append(moderu.Issues{}, b.errs...)
	seenName := map[string]struct{}{}
	seenKey := map[string]struct{}{}
	for _, f := range b.fields {
		if f.name == "" {
			continue
		}
		if _, dup := seenName[f.name]; dup {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(f.name).Pointer(), Code: moderu.CodeDuplicateKey, Message: i18n.T(moderu.CodeDuplicateKey, nil), Hint: "duplicate field name"})
		}
		seenName[f.name] = struct{}{}
		if _, dup := seenKey[f.key]; dup {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(f.key).Pointer(), Code: moderu.CodeDuplicateKey, Message: i18n.T(moderu.CodeDuplicateKey, nil), Hint: "duplicate wire key"})
		}
		seenKey[f.key] = struct{}{}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	fields := make([]fieldSpec[M], len(b.fields))
	copy(fields, b.fields)
	return &modelSchema[M]{fields: fields}, nil
}

// MustBuild panics on configuration error.
func (b *ModelBuilder[M]) MustBuild() moderu.Schema[M] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
