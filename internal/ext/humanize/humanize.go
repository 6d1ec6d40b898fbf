// Package humanize is the "humanize" native extension, wrapping
// github.com/dustin/go-humanize for script-visible byte-count and
// thousands-separator formatting; the allocator's -vvv diagnostic report
// (§4.1) uses the same library directly (see internal/memory).
package humanize

import (
	"github.com/dustin/go-humanize"

	"vellum/internal/errors"
	"vellum/internal/object"
)

// Register installs humanize.bytes/comma into m (§4.12).
func Register(m *object.Module) {
	m.Set("bytes", object.NewNativeFunction("humanize.bytes", "bytes(n)", builtinBytes))
	m.Set("comma", object.NewNativeFunction("humanize.comma", "comma(n)", builtinComma))
}

func toInt64(v object.Value) (int64, bool) {
	i, ok := v.(*object.Integer)
	if !ok {
		return 0, false
	}
	return i.AsBig().Int64(), true
}

func builtinBytes(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "bytes() takes exactly one argument")
	}
	n, ok := toInt64(args[0])
	if !ok {
		return nil, errors.New(errors.KindTypeError, "bytes() argument must be an integer")
	}
	return object.NewString(humanize.Bytes(uint64(n))), nil
}

func builtinComma(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "comma() takes exactly one argument")
	}
	n, ok := toInt64(args[0])
	if !ok {
		return nil, errors.New(errors.KindTypeError, "comma() argument must be an integer")
	}
	return object.NewString(humanize.Comma(n)), nil
}
