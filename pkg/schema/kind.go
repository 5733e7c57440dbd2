package schema

// Kind is a Type's discriminant. Composite kinds (Vector, Optional, Array,
// Varray) carry an inner TypeID; Flat/Variant/Enumeration carry a FlatID;
// scalar/string/preset kinds carry their own name/size/align directly on
// the Type. PresetBase and above are never compared by value alone — every
// preset kind is PresetBase+k for some k into the preset catalog.
type Kind int

const (
	Undefined Kind = iota
	Bad
	FlatKind
	ViewKind
	MessageKind
	Char8
	Int8
	Int16
	Int24
	Int32
	Int64
	Uint8
	Uint16
	Uint24
	Uint32
	Uint64
	Float32
	Float64
	StringKind
	VectorKind
	OptionalKind
	ArrayKind
	VarrayKind
	VariantKind
	EnumerationKind
	PresetBase
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Bad:
		return "bad"
	case FlatKind:
		return "flat"
	case ViewKind:
		return "view"
	case MessageKind:
		return "message"
	case Char8:
		return "char"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int24:
		return "int24"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint24:
		return "uint24"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case StringKind:
		return "string"
	case VectorKind:
		return "vector"
	case OptionalKind:
		return "optional"
	case ArrayKind:
		return "array"
	case VarrayKind:
		return "varray"
	case VariantKind:
		return "variant"
	case EnumerationKind:
		return "enumeration"
	default:
		if k >= PresetBase {
			return "preset"
		}
		return "bad-kind"
	}
}

// IsScalar reports whether k is one of the fixed-size built-in scalar
// kinds (not string, not composite, not flat-shaped).
func (k Kind) IsScalar() bool {
	switch k {
	case Char8, Int8, Int16, Int24, Int32, Int64,
		Uint8, Uint16, Uint24, Uint32, Uint64, Float32, Float64:
		return true
	default:
		return k >= PresetBase
	}
}

// IsComposite reports whether k wraps an inner Type.
func (k Kind) IsComposite() bool {
	switch k {
	case VectorKind, OptionalKind, ArrayKind, VarrayKind:
		return true
	default:
		return false
	}
}

// IsFlatShaped reports whether k carries a FlatID rather than scalar fields.
func (k Kind) IsFlatShaped() bool {
	switch k {
	case FlatKind, ViewKind, MessageKind, VariantKind, EnumerationKind:
		return true
	default:
		return false
	}
}

// Status is a Field's lifecycle state. Deleted and Deleting fields carry no
// Type; their Field.Index is retained so readers keep addressing live
// fields by the same ordinal across schema revisions.
type Status int

const (
	Ordinary Status = iota
	Deprecated
	Deleted
	Deprecating
	Deleting
)

func (s Status) String() string {
	switch s {
	case Ordinary:
		return "ordinary"
	case Deprecated:
		return "deprecated"
	case Deleted:
		return "deleted"
	case Deprecating:
		return "deprecating"
	case Deleting:
		return "deleting"
	default:
		return "bad-status"
	}
}

// IsTombstone reports whether a field in this status occupies no layout
// space and has no associated Type — deleted and deprecating fields only
// keep their index reserved.
func (s Status) IsTombstone() bool {
	return s == Deleted || s == Deprecating
}
