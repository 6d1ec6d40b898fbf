// Package crypto is the "crypto" native extension: password hashing via
// golang.org/x/crypto/bcrypt and digest functions via
// golang.org/x/crypto/sha3, the two x/crypto packages the example corpus's
// go.mod pulls in (§4.12).
package crypto

import (
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/sha3"

	"vellum/internal/errors"
	"vellum/internal/object"
)

// Register installs crypto.hash/bcrypt_hash/bcrypt_verify into m (§4.12).
func Register(m *object.Module) {
	m.Set("hash", object.NewNativeFunction("crypto.hash", "hash(kind, data)", builtinHash))
	m.Set("bcrypt_hash", object.NewNativeFunction("crypto.bcrypt_hash", "bcrypt_hash(password)", builtinBcryptHash))
	m.Set("bcrypt_verify", object.NewNativeFunction("crypto.bcrypt_verify", "bcrypt_verify(hash, password)", builtinBcryptVerify))
}

func asBytes(v object.Value, what string) ([]byte, *errors.LangError) {
	switch x := v.(type) {
	case *object.String:
		return x.Bytes(), nil
	case *object.Bytes:
		return x.Data(), nil
	}
	return nil, errors.New(errors.KindTypeError, "%s must be a string or bytes value", what)
}

func builtinHash(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "hash() takes exactly 2 arguments")
	}
	kind, ok := args[0].(*object.String)
	if !ok {
		return nil, errors.New(errors.KindTypeError, "kind must be a string")
	}
	data, lerr := asBytes(args[1], "data")
	if lerr != nil {
		return nil, lerr
	}
	switch kind.String() {
	case "sha3-256":
		sum := sha3.Sum256(data)
		return object.NewBytes(sum[:]), nil
	case "sha3-512":
		sum := sha3.Sum512(data)
		return object.NewBytes(sum[:]), nil
	}
	return nil, errors.New(errors.KindArgError, "unknown hash kind %q", kind.String())
}

func builtinBcryptHash(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 1 {
		return nil, errors.New(errors.KindArgError, "bcrypt_hash() takes exactly one argument")
	}
	pw, lerr := asBytes(args[0], "password")
	if lerr != nil {
		return nil, lerr
	}
	hashed, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(errors.KindOpError, err, "hashing password")
	}
	return object.NewString(string(hashed)), nil
}

func builtinBcryptVerify(c object.Caller, self object.Value, args []object.Value) (object.Value, *errors.LangError) {
	if len(args) != 2 {
		return nil, errors.New(errors.KindArgError, "bcrypt_verify() takes exactly 2 arguments")
	}
	hash, lerr := asBytes(args[0], "hash")
	if lerr != nil {
		return nil, lerr
	}
	pw, lerr := asBytes(args[1], "password")
	if lerr != nil {
		return nil, lerr
	}
	return object.BoolOf(bcrypt.CompareHashAndPassword(hash, pw) == nil), nil
}
