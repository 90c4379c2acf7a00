// Package dsl provides the builder grammar for declaring model schemas:
// Model/Field/Key/Optional assemble ordered attribute plans, Attr/AttrOf
// bind scalar members (optionally through a codec), Rel/RelPtr/Seq embed
// relations, and Choice/Variant build discriminator-mapped polymorphism.
//
// Builders are write-only staging: Build freezes the declaration into an
// immutable schema and reports configuration mistakes as Issues.
package dsl
