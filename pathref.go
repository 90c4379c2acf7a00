package moderu

import "strconv"

// PathRef builds JSON Pointer paths for issue reporting. Refs are immutable;
// Field and Index return extended refs, so a ref can be kept and branched.
type PathRef interface {
	// Field extends the ref with an object key, escaping it per RFC 6901.
	Field(name string) PathRef
	// Index extends the ref with an array index.
	Index(i int) PathRef
	// Pointer renders the ref; the root renders as "/".
	Pointer() string
}

// Path returns the root PathRef.
func Path() PathRef { return pathRef("") }

type pathRef string

func (p pathRef) Field(name string) PathRef {
	return pathRef(string(p) + "/" + EscapeToken(name))
}

func (p pathRef) Index(i int) PathRef {
	return pathRef(string(p) + "/" + strconv.Itoa(i))
}

func (p pathRef) Pointer() string {
	if p == "" {
		return "/"
	}
	return string(p)
}
