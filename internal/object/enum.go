package object

import "vellum/internal/memory"

// EnumType is a dynamically-created type whose instances each carry a name
// and an integer value; the type holds bidirectional maps name<->value
// (§3). It embeds Type so an enumeration is itself a first-class type
// value, constructible and attribute-lookupable like any other.
type EnumType struct {
	Type
	byName  map[string]*EnumMember
	byValue map[int64]*EnumMember
	order   []*EnumMember // declaration order, for iteration (§4.13)
}

// EnumMember is one instance of an EnumType.
type EnumMember struct {
	memory.Refcounted
	Owner *EnumType
	Name  string
	Value int64
}

func (m *EnumMember) header() *memory.Refcounted { return &m.Refcounted }
func (m *EnumMember) TypeOf() *Type              { return &m.Owner.Type }

// NewEnumType builds an enumeration with the given name->value members,
// assigned in the order given (members is ordered, not a map, so
// declaration order is preserved for iteration per §4.13).
func NewEnumType(name string, members []struct {
	Name  string
	Value int64
}) *EnumType {
	et := &EnumType{
		Type:    *NewType(name, []*Type{ValueBaseType}, nil),
		byName:  map[string]*EnumMember{},
		byValue: map[int64]*EnumMember{},
	}
	for _, m := range members {
		mem := &EnumMember{Refcounted: memory.NewRefcounted(24), Owner: et, Name: m.Name, Value: m.Value}
		et.byName[m.Name] = mem
		et.byValue[m.Value] = mem
		et.order = append(et.order, mem)
	}
	return et
}

func (et *EnumType) ByName(name string) (*EnumMember, bool) {
	m, ok := et.byName[name]
	return m, ok
}

func (et *EnumType) ByValue(v int64) (*EnumMember, bool) {
	m, ok := et.byValue[v]
	return m, ok
}

func (et *EnumType) Members() []*EnumMember { return et.order }
