package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	gen "github.com/reoring/moderu/internal/gen"
	ir "github.com/reoring/moderu/internal/ir"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "generate":
		generateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `moderu CLI

Usage:
  moderu generate -dir ./path/to/pkg -type T1[,T2,...] [-o out.go] [-pkg name]

Notes:
  - Wire keys resolve moderu tag > json tag > snake_case field name.
  - Mark optional fields with moderu:",optional" or a json omitempty option.
  - Relation targets are referenced as <Type>Schema in the generated package.`)
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var dir, typesCSV, out, pkgOverride string
	fs.StringVar(&dir, "dir", ".", "directory of the package that defines the model structs")
	fs.StringVar(&typesCSV, "type", "", "comma-separated struct type names to generate schemas for")
	fs.StringVar(&out, "o", "moderu_gen.go", "output filename (relative to -dir unless absolute)")
	fs.StringVar(&pkgOverride, "pkg", "", "package name override for the generated file")
	_ = fs.Parse(args)
	if typesCSV == "" {
		fs.Usage()
		os.Exit(2)
	}
	types := splitCSV(typesCSV)

	pkgName, structs, err := loadStructs(dir)
	if err != nil {
		fatalf("parsing %s: %v", dir, err)
	}
	if pkgOverride != "" {
		pkgName = pkgOverride
	}

	models := make([]ir.Model, 0, len(types))
	for _, tname := range types {
		st, ok := structs[tname]
		if !ok {
			fatalf("type %q: struct not found in %s", tname, dir)
		}
		m, err := modelFromStruct(tname, st)
		if err != nil {
			fatalf("type %q: %v", tname, err)
		}
		models = append(models, m)
	}

	code, err := gen.RenderModels(pkgName, models)
	if err != nil {
		fatalf("generate: %v", err)
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

// loadStructs parses every non-test file in dir and indexes struct types by
// name.
func loadStructs(dir string) (string, map[string]*ast.StructType, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, 0)
	if err != nil {
		return "", nil, err
	}
	structs := map[string]*ast.StructType{}
	pkgName := ""
	for name, pkg := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		pkgName = name
		for _, f := range pkg.Files {
			ast.Inspect(f, func(n ast.Node) bool {
				ts, ok := n.(*ast.TypeSpec)
				if !ok {
					return true
				}
				if st, ok := ts.Type.(*ast.StructType); ok {
					structs[ts.Name.Name] = st
				}
				return true
			})
		}
	}
	if pkgName == "" {
		return "", nil, fmt.Errorf("no Go package found")
	}
	return pkgName, structs, nil
}

func modelFromStruct(typeName string, st *ast.StructType) (ir.Model, error) {
	m := ir.Model{TypeName: typeName}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded
		}
		goField := field.Names[0].Name
		if !ast.IsExported(goField) {
			continue
		}
		var moderuTag, jsonTag string
		if field.Tag != nil {
			tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
			moderuTag = tag.Get("moderu")
			jsonTag = tag.Get("json")
		}
		if tagName(moderuTag) == "-" || tagName(jsonTag) == "-" {
			continue
		}
		attr, err := attrFromField(goField, field.Type)
		if err != nil {
			return ir.Model{}, err
		}
		attr.Name = snakeCase(goField)
		if k := tagName(moderuTag); k != "" {
			attr.Key = k
		} else if k := tagName(jsonTag); k != "" {
			attr.Key = k
		}
		attr.Optional = tagHasOption(moderuTag, "optional") || tagHasOption(jsonTag, "omitempty")
		m.Attrs = append(m.Attrs, attr)
	}
	if len(m.Attrs) == 0 {
		return ir.Model{}, fmt.Errorf("no mappable fields")
	}
	return m, nil
}

func attrFromField(goField string, expr ast.Expr) (ir.Attr, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "string":
			return ir.Attr{GoField: goField, GoType: "string", Codec: "codec.String()"}, nil
		case "bool":
			return ir.Attr{GoField: goField, GoType: "bool", Codec: "codec.Bool()"}, nil
		case "int64":
			return ir.Attr{GoField: goField, GoType: "int64", Codec: "codec.Int64()"}, nil
		case "float64":
			return ir.Attr{GoField: goField, GoType: "float64", Codec: "codec.Float64()"}, nil
		case "complex128":
			return ir.Attr{GoField: goField, GoType: "complex128", Codec: "codec.Complex128()"}, nil
		case "any":
			return ir.Attr{GoField: goField, GoType: "any"}, nil
		}
		if ast.IsExported(t.Name) {
			return ir.Attr{GoField: goField, Kind: ir.KindRelation, Elem: t.Name}, nil
		}
		return ir.Attr{}, fmt.Errorf("field %s: unsupported type %s (use int64/float64 for numbers)", goField, t.Name)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok && x.Name == "time" && t.Sel.Name == "Time" {
			return ir.Attr{GoField: goField, GoType: "time.Time", Codec: "codec.TimeRFC3339()"}, nil
		}
		return ir.Attr{}, fmt.Errorf("field %s: unsupported selector type", goField)
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok && ast.IsExported(id.Name) {
			return ir.Attr{GoField: goField, Kind: ir.KindRelation, Elem: id.Name, Ptr: true}, nil
		}
		return ir.Attr{}, fmt.Errorf("field %s: unsupported pointer type", goField)
	case *ast.ArrayType:
		if t.Len != nil {
			return ir.Attr{}, fmt.Errorf("field %s: fixed-size arrays are not supported", goField)
		}
		if id, ok := t.Elt.(*ast.Ident); ok && ast.IsExported(id.Name) {
			return ir.Attr{GoField: goField, Kind: ir.KindSequence, Elem: id.Name}, nil
		}
		return ir.Attr{}, fmt.Errorf("field %s: sequence elements must be struct types", goField)
	case *ast.InterfaceType:
		if len(t.Methods.List) == 0 {
			return ir.Attr{GoField: goField, GoType: "any"}, nil
		}
		return ir.Attr{}, fmt.Errorf("field %s: interface fields need a hand-written Choice schema", goField)
	default:
		return ir.Attr{}, fmt.Errorf("field %s: unsupported type", goField)
	}
}

func tagName(tag string) string {
	if tag == "" {
		return ""
	}
	if i := strings.Index(tag, ","); i >= 0 {
		return tag[:i]
	}
	return tag
}

func tagHasOption(tag, opt string) bool {
	parts := strings.Split(tag, ",")
	for _, p := range parts[1:] {
		if p == opt {
			return true
		}
	}
	return false
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "moderu: "+format+"\n", args...)
	os.Exit(1)
}
