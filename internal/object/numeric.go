package object

import (
	"math"
	"math/big"

	"github.com/remyoudompheng/bigfft"

	"vellum/internal/errors"
	"vellum/internal/memory"
)

// bigMulThreshold is the operand bit-length above which big-integer
// multiplication is routed through bigfft instead of math/big's default
// Karatsuba path, mirroring math/big's own internal strategy switch but
// made an explicit, swappable policy here per the numeric tower design.
const bigMulThreshold = 2048

// Integer is a tagged union of a machine int64 and an arbitrary-precision
// big.Int; promotion occurs on overflow of any arithmetic operation. Small
// values in [-255,255] are singletons (see singleton.go).
type Integer struct {
	memory.Refcounted
	isBig bool
	small int64
	big   *big.Int
}

func (i *Integer) header() *memory.Refcounted { return &i.Refcounted }
func (i *Integer) TypeOf() *Type              { return IntegerType }

func NewInt(n int64) *Integer {
	if n >= -255 && n <= 255 {
		return smallInts[n+255]
	}
	return &Integer{Refcounted: memory.NewRefcounted(24), small: n}
}

func NewBigInt(b *big.Int) *Integer {
	if b.IsInt64() {
		n := b.Int64()
		if n >= -255 && n <= 255 {
			return smallInts[n+255]
		}
	}
	return &Integer{Refcounted: memory.NewRefcounted(24 + int64(len(b.Bits()))*8), isBig: true, big: new(big.Int).Set(b)}
}

func (i *Integer) AsBig() *big.Int {
	if i.isBig {
		return i.big
	}
	return big.NewInt(i.small)
}

func (i *Integer) IsSmall() bool { return !i.isBig }
func (i *Integer) Small() int64  { return i.small }

// bigMul multiplies two big.Int operands, switching to bigfft above
// bigMulThreshold bits, mirroring math/big's own Karatsuba/FFT crossover
// but exposed here as an explicit policy per the numeric tower design.
func bigMul(a, b *big.Int) *big.Int {
	if a.BitLen() > bigMulThreshold && b.BitLen() > bigMulThreshold {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

// AddInt implements checked 64-bit addition, promoting to big integer on
// overflow.
func AddInt(a, b *Integer) *Integer {
	if !a.isBig && !b.isBig {
		sum := a.small + b.small
		// overflow iff operands share a sign and the result's sign differs
		if (a.small >= 0) == (b.small >= 0) && (sum >= 0) != (a.small >= 0) {
			return NewBigInt(new(big.Int).Add(big.NewInt(a.small), big.NewInt(b.small)))
		}
		return NewInt(sum)
	}
	return NewBigInt(new(big.Int).Add(a.AsBig(), b.AsBig()))
}

func SubInt(a, b *Integer) *Integer {
	if !a.isBig && !b.isBig {
		diff := a.small - b.small
		if (a.small >= 0) != (b.small >= 0) && (diff >= 0) != (a.small >= 0) {
			return NewBigInt(new(big.Int).Sub(big.NewInt(a.small), big.NewInt(b.small)))
		}
		return NewInt(diff)
	}
	return NewBigInt(new(big.Int).Sub(a.AsBig(), b.AsBig()))
}

func MulInt(a, b *Integer) *Integer {
	if !a.isBig && !b.isBig {
		if a.small == 0 || b.small == 0 {
			return NewInt(0)
		}
		prod := a.small * b.small
		if prod/a.small != b.small {
			return NewBigInt(bigMul(big.NewInt(a.small), big.NewInt(b.small)))
		}
		return NewInt(prod)
	}
	return NewBigInt(bigMul(a.AsBig(), b.AsBig()))
}

// ModInt implements Euclidean-like modulus: the result always takes the
// sign of the divisor.
func ModInt(a, b *Integer) (*Integer, *errors.LangError) {
	bb := b.AsBig()
	if bb.Sign() == 0 {
		return nil, errors.New(errors.KindMathError, "modulus by zero")
	}
	r := new(big.Int).Mod(a.AsBig(), bb)
	if r.Sign() != 0 && bb.Sign() < 0 {
		r.Add(r, bb)
	}
	return NewBigInt(r), nil
}

// PowInt implements integer exponentiation by repeated squaring. A
// negative exponent on an integer base returns zero (floor behavior,
// except 0**negative which is a MathError, the integer analogue of
// division by zero).
func PowInt(base, exp *Integer) (*Integer, *errors.LangError) {
	b := base.AsBig()
	e := exp.AsBig()
	if e.Sign() == 0 {
		return NewInt(1), nil
	}
	if e.Sign() < 0 {
		if b.Sign() == 0 {
			return nil, errors.New(errors.KindMathError, "zero to a negative power")
		}
		return NewInt(0), nil
	}
	return NewBigInt(new(big.Int).Exp(b, e, nil)), nil
}

// HashInt: integer values hash to themselves (mod machine word), except
// zero which hashes to the reserved sentinel 1.
func HashInt(i *Integer) uint64 {
	var h uint64
	if i.isBig {
		h = uint64(i.big.Int64()) // truncation is acceptable; exactness isn't required beyond mod word
	} else {
		h = uint64(i.small)
	}
	if h == 0 {
		return 1
	}
	return h
}

// Float is an IEEE 754 double. NaN is a singleton; equality with NaN
// follows IEEE semantics (NaN != NaN).
type Float struct {
	memory.Refcounted
	V float64
}

func (f *Float) header() *memory.Refcounted { return &f.Refcounted }
func (f *Float) TypeOf() *Type              { return FloatType }

func NewFloat(v float64) *Float {
	if math.IsNaN(v) {
		return nanSingleton
	}
	return &Float{Refcounted: memory.NewRefcounted(16), V: v}
}

// HashFloat: floats that are integers hash equal to the equivalent
// integer; NaN hashes to a fixed sentinel pattern distinct from the
// zero-hash-reserved value (Open Question resolution, see DESIGN.md).
const nanHashSentinel uint64 = 0x7ff8000000000001

func HashFloat(f *Float) uint64 {
	if math.IsNaN(f.V) {
		return nanHashSentinel
	}
	if f.V == math.Trunc(f.V) && !math.IsInf(f.V, 0) {
		return HashInt(NewInt(int64(f.V)))
	}
	return math.Float64bits(f.V)
}

// Complex is a pair of doubles; real/imag are exposed as pseudo-attributes
// by the interpreter's getattr policy rather than stored as dict entries.
type Complex struct {
	memory.Refcounted
	Re, Im float64
}

func (c *Complex) header() *memory.Refcounted { return &c.Refcounted }
func (c *Complex) TypeOf() *Type              { return ComplexType }

func NewComplex(re, im float64) *Complex {
	return &Complex{Refcounted: memory.NewRefcounted(24), Re: re, Im: im}
}

// Promotion rank for the numeric tower: integer ⊂ float ⊂ complex.
func NumericRank(v Value) int {
	switch v.(type) {
	case *Integer:
		return 0
	case *Float:
		return 1
	case *Complex:
		return 2
	}
	return -1
}

func ToFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case *Integer:
		if n.isBig {
			f, _ := new(big.Float).SetInt(n.big).Float64()
			return f, true
		}
		return float64(n.small), true
	case *Float:
		return n.V, true
	}
	return 0, false
}

func ToComplex(v Value) (re, im float64, ok bool) {
	if c, isC := v.(*Complex); isC {
		return c.Re, c.Im, true
	}
	f, isF := ToFloat64(v)
	return f, 0, isF
}
