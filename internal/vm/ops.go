package vm

import (
	"math"

	"vellum/internal/bytecode"
	"vellum/internal/errors"
	"vellum/internal/object"
)

func eqFor(key object.Value) func(object.Value, object.Value) bool {
	return object.Eq
}

// getItem implements GETITEM over every built-in container, falling back
// to the receiver's getitem slot for user types (§3, §4.5).
func getItem(c object.Caller, target, key object.Value) (object.Value, *errors.LangError) {
	switch t := target.(type) {
	case *object.List:
		if sl, ok := key.(*object.Slice); ok {
			return sliceList(t, sl)
		}
		i, lerr := asIndex(key)
		if lerr != nil {
			return nil, lerr
		}
		i = wrapOrErr(i, t.Len())
		if v, ok := t.Get(i); ok {
			return v, nil
		}
		return nil, errors.New(errors.KindKeyError, "list index out of range")
	case *object.Tuple:
		if sl, ok := key.(*object.Slice); ok {
			return sliceTuple(t, sl)
		}
		i, lerr := asIndex(key)
		if lerr != nil {
			return nil, lerr
		}
		i = wrapOrErr(i, t.Len())
		if v, ok := t.Get(i); ok {
			return v, nil
		}
		return nil, errors.New(errors.KindKeyError, "tuple index out of range")
	case *object.String:
		if sl, ok := key.(*object.Slice); ok {
			res, lerr := sl.Resolve(t.Len())
			if lerr != nil {
				return nil, lerr
			}
			return sliceString(t, res), nil
		}
		i, lerr := asIndex(key)
		if lerr != nil {
			return nil, lerr
		}
		i = wrapOrErr(i, t.Len())
		if v, ok := t.Index(i); ok {
			return v, nil
		}
		return nil, errors.New(errors.KindKeyError, "string index out of range")
	case *object.Bytes:
		i, lerr := asIndex(key)
		if lerr != nil {
			return nil, lerr
		}
		i = wrapOrErr(i, t.Len())
		if i < 0 || i >= t.Len() {
			return nil, errors.New(errors.KindKeyError, "bytes index out of range")
		}
		return object.NewInt(int64(t.Data()[i])), nil
	case *object.Dict:
		h := object.Hash(key)
		if v, ok := t.Get(key, h, eqFor(key)); ok {
			return v, nil
		}
		return nil, errors.New(errors.KindKeyError, "key %s not found", object.Repr(key))
	case *object.Set:
		h := object.Hash(key)
		return object.BoolOf(t.Has(key, h, eqFor(key))), nil
	}
	if tp := target.TypeOf(); tp != nil && tp.Slots.GetItem != nil {
		return tp.Slots.GetItem(c, target, []object.Value{key})
	}
	return nil, errors.New(errors.KindTypeError, "%s is not subscriptable", target.TypeOf().Name)
}

func setItem(c object.Caller, target, key, val object.Value) *errors.LangError {
	switch t := target.(type) {
	case *object.List:
		i, lerr := asIndex(key)
		if lerr != nil {
			return lerr
		}
		i = wrapOrErr(i, t.Len())
		if !t.Set(i, val) {
			return errors.New(errors.KindKeyError, "list index out of range")
		}
		return nil
	case *object.Dict:
		h := object.Hash(key)
		t.Set(key, val, h, eqFor(key))
		return nil
	case *object.Set:
		h := object.Hash(key)
		if object.Truthy(val) {
			t.Add(key, h, eqFor(key))
		} else {
			t.Remove(key, h, eqFor(key))
		}
		return nil
	}
	if tp := target.TypeOf(); tp != nil && tp.Slots.SetItem != nil {
		_, lerr := tp.Slots.SetItem(c, target, []object.Value{key, val})
		return lerr
	}
	return errors.New(errors.KindTypeError, "%s does not support item assignment", target.TypeOf().Name)
}

func asIndex(key object.Value) (int, *errors.LangError) {
	i, ok := key.(*object.Integer)
	if !ok {
		return 0, errors.New(errors.KindTypeError, "index must be an int, got %s", key.TypeOf().Name)
	}
	return int(i.AsBig().Int64()), nil
}

func wrapOrErr(i, length int) int {
	if i < 0 {
		return i + length
	}
	return i
}

func sliceList(l *object.List, sl *object.Slice) (object.Value, *errors.LangError) {
	res, lerr := sl.Resolve(l.Len())
	if lerr != nil {
		return nil, lerr
	}
	var out []object.Value
	for i := res.Start; stepInRange(i, res.Stop, res.Step); i += res.Step {
		if v, ok := l.Get(i); ok {
			out = append(out, v)
		}
	}
	return object.NewList(out), nil
}

func sliceTuple(tp *object.Tuple, sl *object.Slice) (object.Value, *errors.LangError) {
	res, lerr := sl.Resolve(tp.Len())
	if lerr != nil {
		return nil, lerr
	}
	var out []object.Value
	for i := res.Start; stepInRange(i, res.Stop, res.Step); i += res.Step {
		if v, ok := tp.Get(i); ok {
			out = append(out, v)
		}
	}
	return object.NewTuple(out), nil
}

func sliceString(s *object.String, res object.Resolved) object.Value {
	var out []byte
	for i := res.Start; stepInRange(i, res.Stop, res.Step); i += res.Step {
		if i >= 0 && i < s.Len() {
			out = append(out, s.Bytes()[i])
		}
	}
	return object.NewString(string(out))
}

func stepInRange(i, stop, step int) bool {
	if step > 0 {
		return i < stop
	}
	return i > stop
}

// binOp dispatches an ADD..NE opcode over the numeric tower, string
// concatenation and comparison (bytes operands get no concatenation here
// and go to the slot fallback), and the generic Eq/slot fallback,
// promoting int -> float -> complex per the numeric tower (§4.3).
func binOp(op bytecode.OpCode, a, b object.Value) (object.Value, *errors.LangError) {
	switch op {
	case bytecode.EQ:
		return object.BoolOf(object.Eq(a, b)), nil
	case bytecode.NE:
		return object.BoolOf(!object.Eq(a, b)), nil
	}

	if as, aok := a.(*object.String); aok {
		if bs, bok := b.(*object.String); bok {
			switch op {
			case bytecode.ADD:
				return as.Concat(bs), nil
			case bytecode.LT:
				return object.BoolOf(as.String() < bs.String()), nil
			case bytecode.LE:
				return object.BoolOf(as.String() <= bs.String()), nil
			case bytecode.GT:
				return object.BoolOf(as.String() > bs.String()), nil
			case bytecode.GE:
				return object.BoolOf(as.String() >= bs.String()), nil
			}
		}
		return nil, errors.New(errors.KindTypeError, "unsupported operand types for %s: str and %s", op, b.TypeOf().Name)
	}

	rank := maxRank(a, b)
	switch rank {
	case 0:
		return intOp(op, a.(*object.Integer), b.(*object.Integer))
	case 1:
		af, _ := object.ToFloat64(a)
		bf, _ := object.ToFloat64(b)
		return floatOp(op, af, bf)
	case 2:
		are, aim, _ := object.ToComplex(a)
		bre, bim, _ := object.ToComplex(b)
		return complexOp(op, are, aim, bre, bim)
	}

	if t := a.TypeOf(); t != nil {
		if fn := slotFor(t, op); fn != nil {
			return fn(nil, a, []object.Value{b})
		}
	}
	return nil, errors.New(errors.KindTypeError, "unsupported operand types for %s: %s and %s", op, a.TypeOf().Name, b.TypeOf().Name)
}

func maxRank(a, b object.Value) int {
	ra, rb := object.NumericRank(a), object.NumericRank(b)
	if ra < 0 || rb < 0 {
		return -1
	}
	if ra > rb {
		return ra
	}
	return rb
}

func slotFor(t *object.Type, op bytecode.OpCode) object.NativeFn {
	switch op {
	case bytecode.ADD:
		return t.Slots.Add
	case bytecode.SUB:
		return t.Slots.Sub
	case bytecode.MUL:
		return t.Slots.Mul
	case bytecode.DIV:
		return t.Slots.Div
	case bytecode.MOD:
		return t.Slots.Mod
	case bytecode.POW:
		return t.Slots.Pow
	case bytecode.LT:
		return t.Slots.Lt
	case bytecode.LE:
		return t.Slots.Le
	case bytecode.GT:
		return t.Slots.Gt
	case bytecode.GE:
		return t.Slots.Ge
	}
	return nil
}

func intOp(op bytecode.OpCode, a, b *object.Integer) (object.Value, *errors.LangError) {
	switch op {
	case bytecode.ADD:
		return object.AddInt(a, b), nil
	case bytecode.SUB:
		return object.SubInt(a, b), nil
	case bytecode.MUL:
		return object.MulInt(a, b), nil
	case bytecode.MOD:
		return object.ModInt(a, b)
	case bytecode.POW:
		return object.PowInt(a, b)
	case bytecode.DIV:
		af, _ := object.ToFloat64(a)
		bf, _ := object.ToFloat64(b)
		return floatOp(bytecode.DIV, af, bf)
	case bytecode.LT:
		return object.BoolOf(a.AsBig().Cmp(b.AsBig()) < 0), nil
	case bytecode.LE:
		return object.BoolOf(a.AsBig().Cmp(b.AsBig()) <= 0), nil
	case bytecode.GT:
		return object.BoolOf(a.AsBig().Cmp(b.AsBig()) > 0), nil
	case bytecode.GE:
		return object.BoolOf(a.AsBig().Cmp(b.AsBig()) >= 0), nil
	}
	return nil, errors.New(errors.KindOpError, "unsupported int operator")
}

func floatOp(op bytecode.OpCode, a, b float64) (object.Value, *errors.LangError) {
	switch op {
	case bytecode.ADD:
		return object.NewFloat(a + b), nil
	case bytecode.SUB:
		return object.NewFloat(a - b), nil
	case bytecode.MUL:
		return object.NewFloat(a * b), nil
	case bytecode.DIV:
		if b == 0 {
			return nil, errors.New(errors.KindMathError, "division by zero")
		}
		return object.NewFloat(a / b), nil
	case bytecode.MOD:
		if b == 0 {
			return nil, errors.New(errors.KindMathError, "modulus by zero")
		}
		m := a - b*float64(int64(a/b))
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return object.NewFloat(m), nil
	case bytecode.POW:
		return object.NewFloat(math.Pow(a, b)), nil
	case bytecode.LT:
		return object.BoolOf(a < b), nil
	case bytecode.LE:
		return object.BoolOf(a <= b), nil
	case bytecode.GT:
		return object.BoolOf(a > b), nil
	case bytecode.GE:
		return object.BoolOf(a >= b), nil
	}
	return nil, errors.New(errors.KindOpError, "unsupported float operator")
}

func complexOp(op bytecode.OpCode, are, aim, bre, bim float64) (object.Value, *errors.LangError) {
	switch op {
	case bytecode.ADD:
		return object.NewComplex(are+bre, aim+bim), nil
	case bytecode.SUB:
		return object.NewComplex(are-bre, aim-bim), nil
	case bytecode.MUL:
		return object.NewComplex(are*bre-aim*bim, are*bim+aim*bre), nil
	case bytecode.DIV:
		denom := bre*bre + bim*bim
		if denom == 0 {
			return nil, errors.New(errors.KindMathError, "division by zero")
		}
		return object.NewComplex((are*bre+aim*bim)/denom, (aim*bre-are*bim)/denom), nil
	}
	return nil, errors.New(errors.KindOpError, "unsupported complex operator")
}
