package moderu

// Presence records what decode observed for one top-level wire key.
type Presence uint8

const (
	// PresenceSeen marks a key that appeared in the input record.
	PresenceSeen Presence = 1 << iota
	// PresenceWasNull marks a key that appeared with an explicit null.
	PresenceWasNull
)

// PresenceMap maps JSON Pointer paths to observed presence flags. The root
// path "/" is always marked seen; keys absent from the input have no entry,
// which is how callers distinguish absent from explicit null.
type PresenceMap map[string]Presence

// Seen reports whether the path appeared in the input.
func (p PresenceMap) Seen(path string) bool { return p[path]&PresenceSeen != 0 }

// WasNull reports whether the path appeared as an explicit null.
func (p PresenceMap) WasNull(path string) bool { return p[path]&PresenceWasNull != 0 }

// Decoded pairs a decoded value with its presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}
