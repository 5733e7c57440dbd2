package schema

// TypeID is a stable index into a Table's type arena. NoType (-1) never
// refers to a real Type.
type TypeID int

const NoType TypeID = -1

// FlatID is a stable index into a Table's flat arena.
type FlatID int

const NoFlat FlatID = -1

// Type is the IR's type descriptor. Per the arena+indices design, the
// union the source keeps inside Type becomes an explicit discriminated set
// of fields: Inner is meaningful only for composite kinds, Flat only for
// flat-shaped kinds, and the scalar/preset fields only for IsScalar kinds.
// Every switch over Kind below is meant to be exhaustive.
type Type struct {
	Kind Kind

	// Scalar/preset/string fields.
	Name  string
	Size  int
	Align int

	// Composite fields (vector, optional, array, varray).
	Inner TypeID
	Count int // array/varray element count; 0 otherwise

	// Flat-shaped fields (flat, view, message, variant, enumeration).
	Flat FlatID
}

// IsUndefined reports whether t never received a real discriminant —
// the hard error the spec requires a post-parse scan to catch.
func (t Type) IsUndefined() bool {
	return t.Kind == Undefined
}
