package object

import "vellum/internal/errors"

// attrsOf returns the instance-level attribute dictionary for v, if v
// carries one (Instance, Module, Type itself, ErrorValue).
func attrsOf(v Value) (*Dict, bool) {
	switch o := v.(type) {
	case *Instance:
		return o.Attrs, true
	case *Module:
		return o.Attrs, true
	case *Type:
		return o.Attrs, true
	case *ErrorValue:
		return o.Attrs, true
	}
	return nil, false
}

// GetAttr implements the §4.2 getattr policy: first consult the
// instance's attribute dictionary if it has one, then the type's
// attribute dictionary (producing a bound partial when the entry is
// callable and an instance is present). On miss: AttrError.
//
// Complex's real/imag are the one pseudo-attribute pair in the language
// (§3): not stored in any dict, just read off the Go struct fields, so
// they're handled before the general attrsOf/Lookup path.
func GetAttr(v Value, name string) (Value, *errors.LangError) {
	if c, ok := v.(*Complex); ok {
		switch name {
		case "real":
			return NewFloat(c.Re), nil
		case "imag":
			return NewFloat(c.Im), nil
		}
	}
	if d, ok := attrsOf(v); ok {
		if val, found := d.GetStr(name); found {
			return val, nil
		}
	}
	t := v.TypeOf()
	if val, found := t.Lookup(name); found {
		if isCallable(val) {
			return NewPartial(val, v), nil
		}
		return val, nil
	}
	return nil, errors.New(errors.KindAttrError, "no attribute %q on %s", name, t.Name)
}

func isCallable(v Value) bool {
	switch v.(type) {
	case *NativeFunction, *CompiledFunction, *PartialFunction:
		return true
	}
	return false
}

// SetAttr implements the §4.2 setattr policy: writes to the instance's
// attribute dictionary; if none exists and the type is not user-defined,
// AttrError.
func SetAttr(v Value, name string, val Value) *errors.LangError {
	d, ok := attrsOf(v)
	if !ok {
		return errors.New(errors.KindAttrError, "cannot set attribute %q on %s", name, v.TypeOf().Name)
	}
	d.SetStr(name, val)
	return nil
}
