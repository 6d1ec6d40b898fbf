// Package uuidext is the "uuid" native extension, wrapping
// github.com/google/uuid for the script-visible v4()/parse() (§4.12).
// Thread ids and module instances do not use it.
package uuidext

import (
	"github.com/google/uuid"

	"vellum/internal/errors"
	"vellum/internal/object"
)

// Register installs uuid.v4/parse into m (§4.12).
func Register(m *object.Module) {
	m.Set("v4", object.NewNativeFunction("uuid.v4", "v4()", builtinV4))
	m.Set("parse", object.NewNativeFunction("uuid.parse", "parse(s)", builtinParse))
}

func builtinV4(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 0 {
		return nil, errors.New(errors.KindArgError, "v4() takes no arguments")
	}
	return object.NewString(New().String()), nil
}

func builtinParse(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "parse() takes exactly one argument")
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "parse() argument must be a string")
	}
	id, err := uuid.Parse(s.String())
	if err != nil {
		return nil, errors.Wrap(errors.KindArgError, err, "parsing uuid %q", s.String())
	}
	return object.NewString(id.String()), nil
}

// New mints a fresh random (v4) id; v4() is built on it. Pool.Spawn
// numbers its threads with a plain counter, not with this.
func New() uuid.UUID {
	return uuid.New()
}
