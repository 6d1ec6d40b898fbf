package object

import (
	"vellum/internal/errors"
	"vellum/internal/memory"
)

// ErrorValue is the script-visible error value: an attribute dictionary
// that always contains "what" (a string), tagged with one of the small
// fixed taxonomy kinds (§3, §7).
type ErrorValue struct {
	memory.Refcounted
	Kind  errors.Kind
	Attrs *Dict
}

func (e *ErrorValue) header() *memory.Refcounted { return &e.Refcounted }

// TypeOf looks up the concrete error type registered for Kind, falling
// back to the root Error type for unrecognized kinds.
func (e *ErrorValue) TypeOf() *Type {
	if t, ok := errorTypes[e.Kind]; ok {
		return t
	}
	return ErrorBaseType
}

func NewErrorValue(kind errors.Kind, what string) *ErrorValue {
	ev := &ErrorValue{Refcounted: memory.NewRefcounted(48), Kind: kind, Attrs: NewDict()}
	ev.Attrs.SetStr("what", NewString(what))
	return ev
}

// What returns the required "what" attribute.
func (e *ErrorValue) What() string {
	if v, ok := e.Attrs.GetStr("what"); ok {
		if s, ok := v.(*String); ok {
			return s.String()
		}
	}
	return ""
}

// ToLangError bridges a script-thrown ErrorValue into the host-side
// exception representation used by the interpreter's unwind path and the
// CLI's unhandled-exception diagnostic.
func (e *ErrorValue) ToLangError() *errors.LangError {
	return &errors.LangError{Kind: e.Kind, What: e.What()}
}

// FromLangError bridges a host-raised LangError (a failed builtin
// operation, e.g. an out-of-range index) into the script-visible value
// that a try/catch block observes.
func FromLangError(le *errors.LangError) *ErrorValue {
	return NewErrorValue(le.Kind, le.What)
}

var errorTypes = map[errors.Kind]*Type{}

func registerErrorType(kind errors.Kind) *Type {
	t := NewType(string(kind), []*Type{ErrorBaseType}, nil)
	errorTypes[kind] = t
	return t
}

// ErrorTypes returns the taxonomy kind -> *Type registry, for installing
// each kind as a script-visible constructor (§3, §6).
func ErrorTypes() map[errors.Kind]*Type {
	return errorTypes
}

// wireErrorConstructor gives t the new/init slots VM.construct needs to
// build a script-thrown error: new(t, ...) produces an *ErrorValue tagged
// with t's own kind, and init(self, ...) sets its required "what"
// attribute from the first constructor argument, if any.
func wireErrorConstructor(t *Type) {
	t.SetAttr("new", NewNativeFunction("new", "new(type, what?)", errorValueNew))
	t.SetAttr("init", NewNativeFunction("init", "init(what?)", errorValueInit))
}

// errorValueNew implements the "new" slot per VM.construct's calling
// convention: args[0] is the type being constructed, the rest are the
// call's own arguments.
func errorValueNew(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	if len(args) == 0 {
		return nil, errors.New(errors.KindInternalError, "error type new() called without a type argument")
	}
	t, ok := args[0].(*Type)
	if !ok {
		return nil, errors.New(errors.KindInternalError, "error type new() called with a non-type receiver")
	}
	return NewErrorValue(errors.Kind(t.Name), ""), nil
}

// errorValueInit implements the "init" slot: self is the *ErrorValue
// errorValueNew just produced, args are the constructor's own arguments
// (not prefixed with the type, unlike new).
func errorValueInit(c Caller, self Value, args []Value) (Value, *errors.LangError) {
	ev, ok := self.(*ErrorValue)
	if !ok {
		return nil, errors.New(errors.KindInternalError, "error type init() called on a non-error receiver")
	}
	if len(args) > 0 {
		ev.Attrs.SetStr("what", NewString(Str(args[0])))
	}
	return None, nil
}
