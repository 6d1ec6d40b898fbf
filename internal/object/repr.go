package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Str renders v using its str slot if present, else a built-in default.
// Used by `print`, string concatenation coercion, and the %S format verb.
func Str(v Value) string {
	if t := v.TypeOf(); t != nil && t.Slots.Str != nil {
		if res, err := t.Slots.Str(nil, v, nil); err == nil {
			if s, ok := res.(*String); ok {
				return s.String()
			}
		}
	}
	return defaultRepr(v, false)
}

// Repr renders v's debug representation, used by the %R format verb and
// container element printing (e.g. list-of-strings prints with quotes).
func Repr(v Value) string {
	if t := v.TypeOf(); t != nil && t.Slots.Repr != nil {
		if res, err := t.Slots.Repr(nil, v, nil); err == nil {
			if s, ok := res.(*String); ok {
				return s.String()
			}
		}
	}
	return defaultRepr(v, true)
}

func defaultRepr(v Value, repr bool) string {
	switch o := v.(type) {
	case *NoneType:
		return "none"
	case *Bool:
		if o.V {
			return "true"
		}
		return "false"
	case *Integer:
		return o.AsBig().String()
	case *Float:
		return strconv.FormatFloat(o.V, 'g', -1, 64)
	case *Complex:
		return fmt.Sprintf("(%g+%gi)", o.Re, o.Im)
	case *String:
		if repr {
			return strconv.Quote(o.String())
		}
		return o.String()
	case *Bytes:
		return fmt.Sprintf("b%q", string(o.Data()))
	case *Tuple:
		parts := make([]string, len(o.elems))
		for i, e := range o.elems {
			parts[i] = Repr(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *List:
		parts := make([]string, len(o.elems))
		for i, e := range o.elems {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Dict:
		var parts []string
		o.Iterate(func(k, val Value) {
			parts = append(parts, Repr(k)+": "+Repr(val))
		})
		return "{" + strings.Join(parts, ", ") + "}"
	case *Set:
		var parts []string
		o.Iterate(func(k Value) { parts = append(parts, Repr(k)) })
		return "{" + strings.Join(parts, ", ") + "}"
	case *Range:
		return fmt.Sprintf("range(%d, %d, %d)", o.Start, o.Stop, o.Step)
	case *Slice:
		return fmt.Sprintf("slice(%s, %s, %s)", Repr(o.Start), Repr(o.Stop), Repr(o.Step))
	case *EnumMember:
		return fmt.Sprintf("%s.%s", o.Owner.Name, o.Name)
	case *ErrorValue:
		return fmt.Sprintf("%s(%q)", o.Kind, o.What())
	case *NativeFunction:
		return fmt.Sprintf("<native fn %s>", o.Name)
	case *CompiledFunction:
		return fmt.Sprintf("<fn %s>", o.Name)
	case *PartialFunction:
		return "<bound method>"
	case *Module:
		return fmt.Sprintf("<module %s>", o.Name)
	case *Type:
		return fmt.Sprintf("<type %s>", o.Name)
	case *Instance:
		return fmt.Sprintf("<%s instance>", o.Typ.Name)
	}
	return fmt.Sprintf("<%T>", v)
}

// Truthy coerces v to a truth value using its bool slot if present, else the
// built-in default: none/false/zero/empty are falsy.
func Truthy(v Value) bool {
	if t := v.TypeOf(); t != nil && t.Slots.Bool != nil {
		if res, err := t.Slots.Bool(nil, v, nil); err == nil {
			if b, ok := res.(*Bool); ok {
				return b.V
			}
		}
	}
	switch o := v.(type) {
	case *NoneType:
		return false
	case *Bool:
		return o.V
	case *Integer:
		return o.AsBig().Sign() != 0
	case *Float:
		return o.V != 0
	case *String:
		return len(o.bytes) > 0
	case *Bytes:
		return len(o.data) > 0
	case *Tuple:
		return len(o.elems) > 0
	case *List:
		return len(o.elems) > 0
	case *Dict:
		return o.Len() > 0
	case *Set:
		return o.Len() > 0
	}
	return true
}
