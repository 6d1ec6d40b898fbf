package object

import (
	"unicode/utf8"

	"vellum/internal/memory"
)

// String is an immutable UTF-8 byte sequence with a precomputed 64-bit
// hash. Length is stored in bytes; character-oriented operations iterate
// UTF-8 code points on demand.
type String struct {
	memory.Refcounted
	bytes []byte
	hash  uint64
}

func (s *String) header() *memory.Refcounted { return &s.Refcounted }
func (s *String) TypeOf() *Type              { return StringType }

func (s *String) Bytes() []byte { return s.bytes }
func (s *String) String() string { return string(s.bytes) }
func (s *String) Len() int       { return len(s.bytes) }
func (s *String) Hash() uint64   { return s.hash }

// RuneCount is the character-oriented length (distinct from byte Len).
func (s *String) RuneCount() int { return utf8.RuneCount(s.bytes) }

// hashBytes computes the precomputed hash using a byte-wise FNV-1a style
// mixing function. The seed is any fixed non-zero constant; what matters
// is that it is consistent and non-zero for non-empty input (§4.4).
func hashBytes(b []byte) uint64 {
	const seed uint64 = 1469598103934665603 // FNV offset basis
	const prime uint64 = 1099511628211
	h := seed
	for _, c := range b {
		h ^= uint64(c)
		h *= prime
	}
	return h
}

func NewString(s string) *String {
	if len(s) == 1 {
		return singleByteStrings[s[0]]
	}
	b := []byte(s)
	return &String{Refcounted: memory.NewRefcounted(int64(32 + len(b))), bytes: b, hash: hashBytes(b)}
}

// Index returns the single-byte character string at byte index i,
// returning the interned singleton for that byte value (§4.5: indexing a
// string yields a singleton for single-byte characters).
func (s *String) Index(i int) (*String, bool) {
	if i < 0 || i >= len(s.bytes) {
		return nil, false
	}
	return singleByteStrings[s.bytes[i]], true
}

func (s *String) Concat(o *String) *String {
	return NewString(string(s.bytes) + string(o.bytes))
}

func (s *String) Equal(o *String) bool {
	if s.hash != o.hash || len(s.bytes) != len(o.bytes) {
		return false
	}
	return string(s.bytes) == string(o.bytes)
}

// Bytes is an immutable byte array with a precomputed hash; single-byte
// values are singletons (§3).
type Bytes struct {
	memory.Refcounted
	data []byte
	hash uint64
}

func (b *Bytes) header() *memory.Refcounted { return &b.Refcounted }
func (b *Bytes) TypeOf() *Type              { return BytesType }
func (b *Bytes) Data() []byte               { return b.data }
func (b *Bytes) Len() int                   { return len(b.data) }
func (b *Bytes) Hash() uint64               { return b.hash }

func NewBytes(data []byte) *Bytes {
	if len(data) == 1 {
		return singleByteBytes[data[0]]
	}
	cp := append([]byte(nil), data...)
	return &Bytes{Refcounted: memory.NewRefcounted(int64(32 + len(cp))), data: cp, hash: hashBytes(cp)}
}
