package object

import "vellum/internal/errors"

// This file is the type registry: the built-in type descriptors every
// concrete value's TypeOf() resolves to. ValueBaseType is the common root
// so user-defined classes and enumerations share a single MRO terminus.

var (
	TypeType    = NewType("type", nil, nil)
	ValueBaseType = NewType("object", nil, nil)

	NoneTypeDesc = NewType("NoneType", []*Type{ValueBaseType}, nil)
	BoolType     = NewType("bool", []*Type{ValueBaseType}, nil)

	IntegerType = NewType("int", []*Type{ValueBaseType}, nil)
	FloatType   = NewType("float", []*Type{ValueBaseType}, nil)
	ComplexType = NewType("complex", []*Type{ValueBaseType}, nil)

	StringType = NewType("str", []*Type{ValueBaseType}, nil)
	BytesType  = NewType("bytes", []*Type{ValueBaseType}, nil)

	TupleType = NewType("tuple", []*Type{ValueBaseType}, nil)

	ListType         = NewType("list", []*Type{ValueBaseType}, nil)
	ListIteratorType = NewType("list_iterator", []*Type{ValueBaseType}, nil)

	DictType = NewType("dict", []*Type{ValueBaseType}, nil)
	SetType  = NewType("set", []*Type{ValueBaseType}, nil)

	SliceType         = NewType("slice", []*Type{ValueBaseType}, nil)
	RangeType         = NewType("range", []*Type{ValueBaseType}, nil)
	RangeIteratorType = NewType("range_iterator", []*Type{ValueBaseType}, nil)

	ErrorBaseType = NewType("Error", []*Type{ValueBaseType}, nil)

	NativeFunctionType   = NewType("native_function", []*Type{ValueBaseType}, nil)
	CompiledFunctionType = NewType("function", []*Type{ValueBaseType}, nil)
	PartialFunctionType  = NewType("bound_method", []*Type{ValueBaseType}, nil)

	ModuleType = NewType("module", []*Type{ValueBaseType}, nil)
)

// init registers a concrete *Type per taxonomy kind on package
// init, so `catch e: TypeError` style matching (if the language exposes
// it) can compare against a stable type object rather than a string.
func init() {
	errorTypes[errors.KindError] = ErrorBaseType
	wireErrorConstructor(ErrorBaseType)
	for _, k := range []errors.Kind{
		errors.KindSyntaxError, errors.KindMathError, errors.KindSizeError,
		errors.KindKeyError, errors.KindAttrError, errors.KindTypeError,
		errors.KindArgError, errors.KindOpError, errors.KindIOError,
		errors.KindImportError, errors.KindInternalError, errors.KindToDoError,
		errors.KindOutOfIter,
	} {
		wireErrorConstructor(registerErrorType(k))
	}
}
