// Package gen renders dsl builder source from the attribute IR.
package gen

import (
	"fmt"
	"go/format"
	"strings"

	ir "github.com/reoring/moderu/internal/ir"
)

// RenderModels emits one file declaring a MustBuild schema variable per
// model ("<Type>Schema" for type "Type"). Relation targets are referenced by
// the same convention, so dependent schemas must be generated into or
// declared in the same package.
func RenderModels(pkg string, models []ir.Model) ([]byte, error) {
	if pkg == "" {
		return nil, fmt.Errorf("gen: package name required")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("gen: no models to render")
	}
	b := &strings.Builder{}
	b.WriteString("// Code generated by moderu; DO NOT EDIT.\n\n")
	fmt.Fprintf(b, "package %s\n\n", pkg)
	writeImports(b, models)
	for _, m := range models {
		if err := writeModel(b, m); err != nil {
			return nil, err
		}
	}
	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("gen: formatting output: %w", err)
	}
	return src, nil
}

func writeImports(b *strings.Builder, models []ir.Model) {
	needCodec := false
	needTime := false
	for _, m := range models {
		for _, a := range m.Attrs {
			if a.Codec != "" {
				needCodec = true
			}
			if strings.Contains(a.GoType, "time.Time") {
				needTime = true
			}
		}
	}
	b.WriteString("import (\n")
	if needTime {
		b.WriteString("\t\"time\"\n\n")
	}
	if needCodec {
		b.WriteString("\t\"github.com/reoring/moderu/codec\"\n")
	}
	b.WriteString("\td \"github.com/reoring/moderu/dsl\"\n")
	b.WriteString(")\n\n")
}

func writeModel(b *strings.Builder, m ir.Model) error {
	if m.TypeName == "" {
		return fmt.Errorf("gen: model without a type name")
	}
	fmt.Fprintf(b, "// %sSchema is the generated schema for %s.\n", m.TypeName, m.TypeName)
	fmt.Fprintf(b, "var %sSchema = d.Model[%s]()", m.TypeName, m.TypeName)
	for _, a := range m.Attrs {
		expr, err := attrExpr(m.TypeName, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, ".\n\tField(%q, %s)", a.Name, expr)
		if a.Key != "" && a.Key != a.Name {
			fmt.Fprintf(b, ".Key(%q)", a.Key)
		}
		if a.Optional {
			b.WriteString(".Optional()")
		}
	}
	b.WriteString(".\n\tMustBuild()\n\n")
	return nil
}

func attrExpr(typeName string, a ir.Attr) (string, error) {
	switch a.Kind {
	case ir.KindScalar:
		at := fmt.Sprintf("func(m *%s) *%s { return &m.%s }", typeName, a.GoType, a.GoField)
		if a.Codec == "" {
			return fmt.Sprintf("d.Attr(%s)", at), nil
		}
		return fmt.Sprintf("d.AttrOf(%s, %s)", at, a.Codec), nil
	case ir.KindRelation:
		if a.Ptr {
			at := fmt.Sprintf("func(m *%s) **%s { return &m.%s }", typeName, a.Elem, a.GoField)
			return fmt.Sprintf("d.RelPtr(%s, %sSchema)", at, a.Elem), nil
		}
		at := fmt.Sprintf("func(m *%s) *%s { return &m.%s }", typeName, a.Elem, a.GoField)
		return fmt.Sprintf("d.Rel(%s, %sSchema)", at, a.Elem), nil
	case ir.KindSequence:
		at := fmt.Sprintf("func(m *%s) *[]%s { return &m.%s }", typeName, a.Elem, a.GoField)
		return fmt.Sprintf("d.Seq(%s, %sSchema)", at, a.Elem), nil
	default:
		return "", fmt.Errorf("gen: %s.%s: unsupported attribute kind %s", typeName, a.GoField, a.Kind)
	}
}
