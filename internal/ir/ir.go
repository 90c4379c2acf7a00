package ir

// Package ir defines the minimal intermediate representation used by the
// schema generator. This package is internal and not part of the public API.

//go:generate go tool stringer -type=Kind

// Kind classifies how an attribute reaches the wire.
type Kind int

const (
	KindScalar Kind = iota
	KindRelation
	KindSequence
)

// Attr is one generated attribute binding.
type Attr struct {
	GoField  string // struct member name
	GoType   string // accessor value type as rendered (e.g. "int64", "time.Time")
	Name     string // declared field name (snake_case of GoField)
	Key      string // wire key; empty when it equals Name
	Optional bool
	Kind     Kind
	Codec    string // codec constructor expression; empty means identity
	Elem     string // relation target type name (KindRelation/KindSequence)
	Ptr      bool   // KindRelation through a pointer member
}

// Model is one schema to generate.
type Model struct {
	TypeName string
	Attrs    []Attr
}
