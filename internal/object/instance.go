package object

import "vellum/internal/memory"

// Instance is the runtime representation of a value whose type was
// constructed from a user `func-def`-style class declaration: a type
// pointer plus its own attribute dictionary (§4.2: getattr first consults
// the instance's dictionary, then the type's).
type Instance struct {
	memory.Refcounted
	Typ   *Type
	Attrs *Dict
}

func (o *Instance) header() *memory.Refcounted { return &o.Refcounted }
func (o *Instance) TypeOf() *Type              { return o.Typ }

func NewInstance(t *Type) *Instance {
	return &Instance{Refcounted: memory.NewRefcounted(48), Typ: t, Attrs: NewDict()}
}
