package object

import "vellum/internal/memory"

// Module is an attribute dictionary plus a string name; exposes entries as
// attributes (§3).
type Module struct {
	memory.Refcounted
	Name  string
	Attrs *Dict
}

func (m *Module) header() *memory.Refcounted { return &m.Refcounted }
func (m *Module) TypeOf() *Type              { return ModuleType }

func NewModule(name string) *Module {
	return &Module{Refcounted: memory.NewRefcounted(48), Name: name, Attrs: NewDict()}
}

func (m *Module) Set(name string, v Value) { m.Attrs.SetStr(name, v) }
func (m *Module) Get(name string) (Value, bool) { return m.Attrs.GetStr(name) }
