package object

import "vellum/internal/memory"

// None, True, False, the small-integer singletons, the single-character
// string/byte singletons, and the nan float are all interned: their
// refcount is pinned so decrements are no-ops (§3).

type NoneType struct{ memory.Refcounted }

func (n *NoneType) header() *memory.Refcounted { return &n.Refcounted }
func (n *NoneType) TypeOf() *Type              { return NoneTypeDesc }

type Bool struct {
	memory.Refcounted
	V bool
}

func (b *Bool) header() *memory.Refcounted { return &b.Refcounted }
func (b *Bool) TypeOf() *Type              { return BoolType }

var (
	None  = &NoneType{}
	True  = &Bool{V: true}
	False = &Bool{V: false}

	smallInts         [511]*Integer // [-255,255]
	singleByteStrings [256]*String
	singleByteBytes   [256]*Bytes
	nanSingleton      *Float
)

func BoolOf(v bool) *Bool {
	if v {
		return True
	}
	return False
}

func init() {
	None.Pin()
	True.Pin()
	False.Pin()

	for i := range smallInts {
		n := int64(i) - 255
		v := &Integer{small: n}
		v.Pin()
		smallInts[i] = v
	}
	for b := 0; b < 256; b++ {
		s := &String{bytes: []byte{byte(b)}}
		s.hash = hashBytes(s.bytes)
		s.Pin()
		singleByteStrings[b] = s

		by := &Bytes{data: []byte{byte(b)}}
		by.hash = hashBytes(by.data)
		by.Pin()
		singleByteBytes[b] = by
	}
	nanSingleton = &Float{V: nan()}
	nanSingleton.Pin()
}

func nan() float64 {
	var zero float64
	return zero / zero
}
