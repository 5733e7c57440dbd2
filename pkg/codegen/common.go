// Package codegen holds the direct-accessor (C6), view-accessor (C7),
// variant/optional (C8), and message (C9) emitters. Every emitter renders
// Go source text with strings.Builder, not an AST — the generated package
// never runs through this compiler's own toolchain, so there's nothing to
// gain from go/ast's extra ceremony over text templates a human can read
// back.
//
// Every emitted accessor goes through pkg/flats's byte-offset helpers
// rather than reinterpreting a native Go struct's fields directly. Go has
// no packed-struct attribute, so a literal struct can't stand in for a
// packed flat's layout the way a C++ struct can; routing every access
// through flats.reinterpret/VectorHeader/Optional/Variant helpers — the
// "narrow unsafe module" Design Note 9 calls for — works identically for
// packed and naturally-aligned flats, at the cost of accessors taking a
// buffer and a byte offset instead of dereferencing struct fields.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flatlang/flatc/pkg/layout"
	"github.com/flatlang/flatc/pkg/schema"
)

// goScalarName returns the flats package's or Go's native spelling for a
// scalar/preset Type — the same go_name the embedded preset catalog
// carries.
func goScalarName(table *schema.Table, id schema.TypeID) string {
	return table.Type(id).Name
}

// goTypeName returns the Go type a field of Type id is represented as
// when it needs a spelled-out type (getter return types, struct field doc
// comments, local variables). Composite kinds never appear as a single Go
// type on their own in accessor signatures — they're handled field by
// field by the emitters below — but goTypeName is also used to render the
// element type inside a Span[T]/generic instantiation.
func goTypeName(table *schema.Table, id schema.TypeID) string {
	typ := table.Type(id)
	switch typ.Kind {
	case schema.OptionalKind:
		return "flats.Optional[" + goTypeName(table, typ.Inner) + "]"
	case schema.VectorKind, schema.StringKind:
		return "flats.Span[" + elemGoTypeName(table, typ) + "]"
	case schema.ArrayKind:
		return fmt.Sprintf("[%d]%s", typ.Count, goTypeName(table, typ.Inner))
	case schema.VarrayKind:
		return fixedVectorTypeName(table, id)
	case schema.FlatKind, schema.VariantKind:
		return table.Flat(typ.Flat).Name
	case schema.ViewKind:
		return table.Flat(typ.Flat).Name + "_view"
	case schema.MessageKind:
		return table.Flat(typ.Flat).Name
	default:
		return goScalarName(table, id)
	}
}

// elemGoTypeName returns the element type a Vector<T>/string's Span is
// over: byte for string, the scalar Go type for a scalar vector.
func elemGoTypeName(table *schema.Table, vecType *schema.Type) string {
	if vecType.Kind == schema.StringKind {
		return "byte"
	}
	return goTypeName(table, vecType.Inner)
}

// fixedVectorTypeName returns the generated per-(T,N) struct name for a
// fixed_vector<T,N> field, e.g. FixedVector_int32_4.
func fixedVectorTypeName(table *schema.Table, id schema.TypeID) string {
	typ := table.Type(id)
	return fmt.Sprintf("FixedVector_%s_%d", sanitise(goTypeName(table, typ.Inner)), typ.Count)
}

func sanitise(s string) string {
	s = strings.ReplaceAll(s, "[", "_")
	s = strings.ReplaceAll(s, "]", "")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "*", "p")
	return s
}

// exported capitalises name's first rune so a generated field/method name
// is visible outside the generated package — schema field names are
// lower_snake or mixedCase by convention, accessors need to be exported.
func exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func offsetConst(flat *schema.Flat, field schema.Field) string {
	return fmt.Sprintf("%s_%s_Offset", flat.Name, exported(field.Name))
}

func fmtOffset(n int) string { return strconv.Itoa(n) }

// needsAllocator reports whether any live field of flat transitively
// requires tail allocation — the predicate that decides whether F_direct
// carries an *Allocator at all (§4.4: "allo is omitted iff no field of F
// transitively requires tail allocation").
func needsAllocator(table *schema.Table, flat *schema.Flat) bool {
	for _, fld := range flat.LiveFields() {
		if typeNeedsAllocator(table, fld.Type, map[schema.FlatID]bool{}) {
			return true
		}
	}
	return false
}

func typeNeedsAllocator(table *schema.Table, id schema.TypeID, visiting map[schema.FlatID]bool) bool {
	typ := table.Type(id)
	switch typ.Kind {
	case schema.VectorKind, schema.StringKind:
		return true
	case schema.OptionalKind:
		return typeNeedsAllocator(table, typ.Inner, visiting)
	case schema.ArrayKind, schema.VarrayKind:
		return typeNeedsAllocator(table, typ.Inner, visiting)
	case schema.VariantKind:
		return flatNeedsAllocator(table, typ.Flat, visiting)
	case schema.FlatKind:
		return flatNeedsAllocator(table, typ.Flat, visiting)
	default:
		return false
	}
}

func flatNeedsAllocator(table *schema.Table, id schema.FlatID, visiting map[schema.FlatID]bool) bool {
	if visiting[id] {
		return false // recursive reference already being checked further up the stack
	}
	visiting[id] = true
	for _, fld := range table.Flat(id).LiveFields() {
		if typeNeedsAllocator(table, fld.Type, visiting) {
			return true
		}
	}
	return false
}

// typeText is layout.TypeText re-exported under the codegen package so
// every emitter file can use it without importing pkg/layout directly by
// name at each call site.
func typeText(table *schema.Table, id schema.TypeID) string {
	return layout.TypeText(table, id)
}
