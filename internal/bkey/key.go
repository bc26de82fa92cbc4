// Package bkey implements the two key kinds a B+tree index can be built
// over: numeric uint32 keys (the primary key of every table) and
// fixed-width NUL-padded byte keys (used by secondary indexes over text
// columns, e.g. users.username).
package bkey

import "bytes"

// Kind distinguishes how a key's bytes are compared.
type Kind uint8

const (
	// Uint32 keys compare numerically. Always 4 bytes wide.
	Uint32 Kind = iota
	// FixedBytes keys compare lexicographically over their full byte
	// width, including NUL padding, so two keys of the same kind must
	// share the same width to be comparable.
	FixedBytes
)

// Key is a single comparable B+tree key.
type Key struct {
	Kind  Kind
	Value uint32 // valid when Kind == Uint32
	Bytes []byte // valid when Kind == FixedBytes; always len == width
}

// NewUint32 builds a numeric key.
func NewUint32(v uint32) Key {
	return Key{Kind: Uint32, Value: v}
}

// NewFixedBytes builds a fixed_bytes key of the given width, truncating or
// NUL-padding src to fit.
func NewFixedBytes(src []byte, width int) Key {
	buf := make([]byte, width)
	n := len(src)
	if n > width {
		n = width
	}
	copy(buf, src[:n])
	return Key{Kind: FixedBytes, Bytes: buf}
}

// Width reports the on-disk byte width of the key.
func (k Key) Width() int {
	if k.Kind == Uint32 {
		return 4
	}
	return len(k.Bytes)
}

// Encode writes the key's on-disk representation (little-endian for
// Uint32) to dst, which must be at least Width() bytes long.
func (k Key) Encode(dst []byte) {
	switch k.Kind {
	case Uint32:
		dst[0] = byte(k.Value)
		dst[1] = byte(k.Value >> 8)
		dst[2] = byte(k.Value >> 16)
		dst[3] = byte(k.Value >> 24)
	case FixedBytes:
		copy(dst, k.Bytes)
	}
}

// Decode reads a key of the given kind and width back out of src.
func Decode(kind Kind, width int, src []byte) Key {
	switch kind {
	case Uint32:
		v := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
		return NewUint32(v)
	default:
		buf := make([]byte, width)
		copy(buf, src[:width])
		return Key{Kind: FixedBytes, Bytes: buf}
	}
}

// Compare returns <0, 0, or >0 as a is less than, equal to, or greater
// than b. Both keys must share the same Kind (and, for FixedBytes, the
// same width) — this is an invariant enforced by schema validation at the
// catalog layer, not re-checked here.
func Compare(a, b Key) int {
	if a.Kind == Uint32 {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	}
	return bytes.Compare(a.Bytes, b.Bytes)
}

// Equal reports whether a and b compare equal.
func Equal(a, b Key) bool { return Compare(a, b) == 0 }
