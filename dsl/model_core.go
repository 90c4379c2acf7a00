package dsl

import (
	"context"
	"sort"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/i18n"
	js "github.com/reoring/moderu/jsonschema"
)

// modelSchema is the frozen runtime form produced by ModelBuilder.Build.
// It walks the plan in declaration order on every operation.
type modelSchema[M any] struct {
	fields []fieldSpec[M]
}

func (s *modelSchema[M]) Decode(ctx context.Context, r moderu.Record) (M, error) {
	dm, err := s.DecodeWithMeta(ctx, r)
	return dm.Value, err
}

func (s *modelSchema[M]) DecodeWithMeta(ctx context.Context, r moderu.Record) (moderu.Decoded[M], error) {
	m := new(M)
	pres := moderu.PresenceMap{"/": moderu.PresenceSeen}
	var iss moderu.Issues
	for _, f := range s.fields {
		base := moderu.Path().Field(f.key).Pointer()
		raw, ok := r[f.key]
		if !ok {
			if !f.optional {
				iss = moderu.AppendIssues(iss, moderu.Issue{Path: base, Code: moderu.CodeRequired, Message: i18n.T(moderu.CodeRequired, nil), Hint: "required key missing"})
				if moderu.IsFailFast(ctx) {
					return moderu.Decoded[M]{}, iss
				}
			}
			continue
		}
		p := moderu.PresenceSeen
		if raw == nil {
			p |= moderu.PresenceWasNull
		}
		pres[base] = p
		if err := f.attr.unpack(ctx, m, raw); err != nil {
			iss = append(iss, moderu.RebaseIssues(base, err)...)
			if moderu.IsFailFast(ctx) {
				return moderu.Decoded[M]{}, iss
			}
		}
	}
	if len(iss) > 0 {
		return moderu.Decoded[M]{}, iss
	}
	return moderu.Decoded[M]{Value: *m, Presence: pres}, nil
}

func (s *modelSchema[M]) Encode(ctx context.Context, v M) (moderu.Record, error) {
	m := &v
	out := make(moderu.Record, len(s.fields))
	var iss moderu.Issues
	for _, f := range s.fields {
		val, err := f.attr.pack(ctx, m)
		if err != nil {
			iss = append(iss, moderu.RebaseIssues(moderu.Path().Field(f.key).Pointer(), err)...)
			if moderu.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		// Every declared key is written, nulls included.
		out[f.key] = val
	}
	if len(iss) > 0 {
		return nil, iss
	}
	moderu.ApplyFinalize(v, out)
	return out, nil
}

func (s *modelSchema[M]) New(over moderu.Fields) (M, error) {
	m := new(M)
	var iss moderu.Issues
	known := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		known[f.name] = struct{}{}
		v, ok := over[f.name]
		if !ok {
			continue
		}
		if !f.attr.assign(m, v) {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(f.name).Pointer(), Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "value does not match field type"})
		}
	}
	var unknown []string
	for name := range over {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(name).Pointer(), Code: moderu.CodeUnknownKey, Message: i18n.T(moderu.CodeUnknownKey, nil), Hint: "no such field"})
	}
	if len(iss) > 0 {
		var zero M
		return zero, iss
	}
	return *m, nil
}

func (s *modelSchema[M]) Fields() []moderu.FieldInfo {
	out := make([]moderu.FieldInfo, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, moderu.FieldInfo{
			Name:     f.name,
			Key:      f.key,
			Optional: f.optional,
			Relation: f.attr.relation,
			Sequence: f.attr.sequence,
		})
	}
	return out
}

func (s *modelSchema[M]) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "object", Properties: map[string]*js.Schema{}}
	var required []string
	for _, f := range s.fields {
		out.Properties[f.key] = f.attr.hint()
		if !f.optional {
			required = append(required, f.key)
		}
	}
	sort.Strings(required)
	out.Required = required
	return out, nil
}
