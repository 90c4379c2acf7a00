package moderu

// Package moderu provides:
//
// - Declarative mapping between typed models and generic records (Decode/Encode)
// - A stable error model via Issues (JSON Pointer, code, message)
// - Presence metadata through the WithMeta APIs (absent vs explicit null)
// - Pluggable record sources (JSON bytes/reader, YAML, raw records) with a
//   swappable JSON driver
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the builder DSL under dsl/, value codecs under codec/, and the CLI under cmd/moderu.
// - No reflection on runtime paths: models bind members through explicit typed accessors.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := buildSchema()
//	v, err := moderu.DecodeFrom(ctx, s, moderu.JSONBytes(data))
//	dm, err := moderu.DecodeFromWithMeta(ctx, s, moderu.JSONBytes(data))
//
//	rec, err := s.Encode(ctx, v)
//	wire, err := moderu.EncodeTo(ctx, s, v)
