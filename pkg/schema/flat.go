package schema

// Variable_part (the spec's own name) tracks a flat's tail-region
// bookkeeping once layout has run: where the tail starts, the bump
// allocator's running cursor during compile-time size estimation, and the
// hard ceiling no message built from this flat may exceed.
type VariablePart struct {
	StartOffset int
	NextOffset  int
	Max         int
}

// DefaultTailMax is the hard ceiling on a flat's tail region unless a
// schema overrides it.
const DefaultTailMax = 4096

// Field is one member of a Flat: a name, a type reference, a stable
// ordinal, an optional enumerator literal, and (after layout) its computed
// offset and size.
type Field struct {
	Name   string
	Type   TypeID
	Index  int
	Value  int64 // enumerator value, or an ordinary field's `= literal` default
	Offset int
	Size   int
	Status Status
}

// Flat is a named aggregate: a record (flat), tagged union (variant),
// enumeration, view, or message. Views and messages carry Underlying, a
// reference to the flat they wrap; ordinary flats and variants leave it at
// NoFlat.
type Flat struct {
	Kind         Kind // FlatKind, VariantKind, EnumerationKind, ViewKind, or MessageKind
	Name         string
	Fields       []Field
	Underlying   FlatID
	Variable     VariablePart
	UsedAsOptional bool
	Packed       bool

	// Set by the layout engine; nil until then.
	Map *ObjectMap

	// FixedSize is the flat's total fixed-part size, populated by layout.
	FixedSize int
	// FixedAlign is the flat's declared alignment (alignof(Flat) in the
	// source; layout rounds FixedSize up to a multiple of this).
	FixedAlign int

	// DeclLine is the schema line this flat's declaration started at, used
	// for diagnostics pointing back at the right definition.
	DeclLine int
}

// LiveFields returns f's fields in declaration order, skipping tombstones
// (deleted/deprecating). Indices are untouched — callers that need an
// ordinal see Field.Index, not its position in this slice.
func (f *Flat) LiveFields() []Field {
	live := make([]Field, 0, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.Status.IsTombstone() {
			continue
		}
		live = append(live, fld)
	}
	return live
}

// FieldByName returns the field named name and whether it exists. Field
// names are unique within one flat (a parser invariant), so the first
// match is the only match.
func (f *Flat) FieldByName(name string) (Field, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// NextIndex returns the ordinal the next appended field (live or
// tombstone) should receive: one past the highest index ever assigned.
func (f *Flat) NextIndex() int {
	max := -1
	for _, fld := range f.Fields {
		if fld.Index > max {
			max = fld.Index
		}
	}
	return max + 1
}

// ObjectMap is a Flat's field-description table, built by the layout
// engine for the reflective view/debug paths that need offset/size/type
// information without recompiling a schema.
type ObjectMap struct {
	Name          string
	DeclaredCount int
	Version       int // total field slots including tombstones
	Fields        []FieldEntry
}

// FieldEntry describes one non-tombstone field's layout, independent of
// any generated accessor.
type FieldEntry struct {
	Index    int
	Offset   int
	Size     int
	Kind     Kind
	Count    int // element count for array-shaped fields, 0 otherwise
	Name     string
	TypeText string
}
