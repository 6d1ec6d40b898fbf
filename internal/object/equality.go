package object

import "math"

// Hash computes the default hash for v, honoring the numeric-tower
// invariant that distinct numeric kinds representing the same
// mathematical value hash equal (§4.3), and falling back to the slot
// table for user-defined types.
func Hash(v Value) uint64 {
	switch n := v.(type) {
	case *Integer:
		return HashInt(n)
	case *Float:
		return HashFloat(n)
	case *Complex:
		if n.Im == 0 {
			return HashFloat(NewFloat(n.Re))
		}
		return HashFloat(NewFloat(n.Re)) ^ (HashFloat(NewFloat(n.Im)) << 1)
	case *String:
		return n.Hash()
	case *Bytes:
		return n.Hash()
	case *Bool:
		if n.V {
			return HashInt(NewInt(1))
		}
		return HashInt(NewInt(0))
	case *NoneType:
		return 0xdeadbeef
	}
	if t := v.TypeOf(); t != nil && t.Slots.Hash != nil {
		if res, err := t.Slots.Hash(nil, v, nil); err == nil {
			if i, ok := res.(*Integer); ok {
				return HashInt(i)
			}
		}
	}
	return 0xcafef00d
}

// Eq is the generic equality used by container probing: numeric kinds
// compare across kind via the numeric tower; everything else falls back
// to identity or the eq/cmp slot.
func Eq(a, b Value) bool {
	if an, aok := a.(*Integer); aok {
		if bn, bok := b.(*Integer); bok {
			return an.AsBig().Cmp(bn.AsBig()) == 0
		}
	}
	af, aIsNum := ToFloat64(a)
	bf, bIsNum := ToFloat64(b)
	if aIsNum && bIsNum {
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false // NaN != NaN, preserved per IEEE semantics (§8)
		}
		return af == bf
	}
	_, aIsComplex := a.(*Complex)
	_, bIsComplex := b.(*Complex)
	if aIsComplex || bIsComplex {
		are, aim, aok := ToComplex(a)
		bre, bim, bok := ToComplex(b)
		if !aok || !bok {
			return false
		}
		return are == bre && aim == bim
	}
	switch as := a.(type) {
	case *String:
		if bs, ok := b.(*String); ok {
			return as.Equal(bs)
		}
		return false
	case *Bytes:
		if bs, ok := b.(*Bytes); ok {
			return as.Hash() == bs.Hash() && string(as.Data()) == string(bs.Data())
		}
		return false
	case *Bool:
		if bs, ok := b.(*Bool); ok {
			return as.V == bs.V
		}
		return false
	case *NoneType:
		_, ok := b.(*NoneType)
		return ok
	}
	if t := a.TypeOf(); t != nil && t.Slots.Eq != nil {
		res, err := t.Slots.Eq(nil, a, []Value{b})
		if err == nil {
			if bl, ok := res.(*Bool); ok {
				return bl.V
			}
		}
	}
	return a == b // identity fallback
}
