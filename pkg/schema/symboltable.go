package schema

import "fmt"

// Table is the compiler's symbol table and type/flat arena in one: per
// Design Note 9, cross-references that the source expresses as raw
// pointers become stable TypeID/FlatID indices into two arenas owned here.
// Forward references reserve a slot immediately; the slot's contents are
// overwritten in place once the real declaration arrives, so every TypeID
// handed out earlier keeps pointing at the right Type.
//
// types/flats hold *Type/*Flat rather than Type/Flat directly: a parser
// production that resolves one field's type can itself trigger a forward
// reference for a later field, appending to these arenas mid-walk. Storing
// pointers means that append growing the index slice never invalidates a
// *Type/*Flat a caller is still holding, the way a pointer into a plain
// []Type would be by a reallocating append.
type Table struct {
	types []*Type
	flats []*Flat
	names map[string]TypeID
}

// NewTable builds an empty symbol table pre-loaded with the predefined
// type catalog (C1).
func NewTable() (*Table, error) {
	t := &Table{names: make(map[string]TypeID)}
	if err := registerPresets(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) defineBuiltin(name string, typ Type) {
	id := TypeID(len(t.types))
	t.types = append(t.types, &typ)
	t.names[name] = id
}

// Type dereferences a TypeID. Panics on NoType — callers are expected to
// have checked for NoType themselves, the same way a nil-pointer deref
// would signal a compiler bug in the source.
func (t *Table) Type(id TypeID) *Type {
	return t.types[id]
}

// Flat dereferences a FlatID.
func (t *Table) Flat(id FlatID) *Flat {
	return t.flats[id]
}

// AddType appends a freshly built composite Type (vector/optional/array/
// varray) to the arena and returns its stable id.
func (t *Table) AddType(typ Type) TypeID {
	id := TypeID(len(t.types))
	t.types = append(t.types, &typ)
	return id
}

// Lookup returns the TypeID bound to name and whether name has been
// mentioned at all; the TypeID is meaningless when the bool is false.
func (t *Table) Lookup(name string) (TypeID, bool) {
	id, ok := t.names[name]
	return id, ok
}

// LookupOrPlaceholder resolves name, inserting an undefined placeholder
// Flat+Type on first mention so every later use of the same name sees the
// same TypeID — the "absent → undefined" transition of §4.7.
func (t *Table) LookupOrPlaceholder(name string) TypeID {
	if id, ok := t.names[name]; ok {
		return id
	}
	flatID := FlatID(len(t.flats))
	t.flats = append(t.flats, &Flat{Kind: Undefined, Name: name, Underlying: NoFlat})
	typeID := TypeID(len(t.types))
	t.types = append(t.types, &Type{Kind: Undefined, Flat: flatID})
	t.names[name] = typeID
	return typeID
}

// DefineFlat performs the "undefined → defined" transition: it resolves
// (or reserves) name, then overwrites the placeholder's Flat and Type in
// place with the real kind. Returns an error — a *diag.Error-shaped
// message the caller wraps with its line number — if name was already
// defined (the "second top-level declaration of same name" case in §4.7).
func (t *Table) DefineFlat(name string, kind Kind) (FlatID, TypeID, error) {
	typeID := t.LookupOrPlaceholder(name)
	typ := t.Type(typeID)
	flat := t.Flat(typ.Flat)
	if flat.Kind != Undefined {
		return NoFlat, NoType, fmt.Errorf("duplicate declaration of %q", name)
	}
	flat.Kind = kind
	flat.Name = name
	typ.Kind = kind
	return typ.Flat, typeID, nil
}

// IsUndefinedName reports whether name currently resolves to a placeholder
// that has not received a real declaration.
func (t *Table) IsUndefinedName(name string) bool {
	id, ok := t.names[name]
	if !ok {
		return false
	}
	return t.Type(id).Kind == Undefined
}

// CheckUndefined returns every name still bound to an undefined
// placeholder, for the post-parse "lingering undefined" scan. Placeholder
// Flats are appended to the arena in first-mention order, so walking the
// arena (rather than the unordered names map) gives reproducible
// diagnostics.
func (t *Table) CheckUndefined() []string {
	var names []string
	for _, flat := range t.flats {
		if flat.Kind == Undefined {
			names = append(names, flat.Name)
		}
	}
	return names
}

// NumTypes and NumFlats report arena sizes, mainly for tests and the debug
// action's summary output.
func (t *Table) NumTypes() int { return len(t.types) }
func (t *Table) NumFlats() int { return len(t.flats) }
