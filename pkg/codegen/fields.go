package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// emitFieldAccessors renders one getter (and, where the field is
// mutable in place, one setter) per live field of flat, as methods on
// receiver recv of type wrapper. offsetExpr returns the Go expression for
// a field's byte offset relative to the wrapper's base — a compile-time
// constant for a direct accessor, a runtime lookup into an offset table
// for a view accessor (§4.6). hasAllocator controls whether tail-growing
// setters (string/vector placement, variant allocation) are emitted at
// all; a view never owns an allocator, so it only gets getters plus
// setters for the slots with no tail behaviour.
//
// Field kinds this covers: scalars, string, vector<scalar>,
// array<scalar>, fixed_vector<scalar>, optional<scalar>, optional<flat>,
// vector/array of flat-shaped elements, and a directly-nested flat/variant
// field (the flat-shaped cases in direct mode only). Anything else falls
// back to a raw-bytes accessor — a composition nested more than one level
// deep (optional<vector<array<T>>> and the like), but also containers of
// strings, fixed_vector of any non-scalar, optional of a non-scalar other
// than a flat,
// enumeration-typed fields, and in a view every flat-shaped field. The
// fallback is still zero-copy, just untyped, since giving every pathological
// nesting its own typed accessor would mean re-deriving the layout
// engine's own recursion inside the emitter.
func emitFieldAccessors(table *schema.Table, flat *schema.Flat, recv, wrapper string, offsetExpr func(schema.Field) string, hasAllocator, isView bool) string {
	var b strings.Builder
	for _, fld := range flat.LiveFields() {
		typ := table.Type(fld.Type)
		off := offsetExpr(fld)
		name := exported(fld.Name)
		switch {
		case typ.Kind.IsScalar():
			emitScalarField(&b, recv, wrapper, name, goScalarName(table, fld.Type), off)
		case typ.Kind == schema.StringKind:
			emitStringField(&b, recv, wrapper, name, off, hasAllocator)
		case typ.Kind == schema.VectorKind && table.Type(typ.Inner).Kind.IsScalar():
			emitVectorField(&b, recv, wrapper, name, goTypeName(table, typ.Inner), off, hasAllocator)
		case typ.Kind == schema.ArrayKind && table.Type(typ.Inner).Kind.IsScalar():
			emitArrayField(&b, recv, wrapper, name, goTypeName(table, typ.Inner), typ.Count, off)
		case typ.Kind == schema.VarrayKind && table.Type(typ.Inner).Kind.IsScalar():
			emitVarrayField(&b, recv, wrapper, name, table, typ, off)
		case typ.Kind == schema.OptionalKind && table.Type(typ.Inner).Kind.IsScalar():
			emitOptionalField(&b, recv, wrapper, name, table, typ, off)
		// A nested flat/variant field, a flat wrapped in optional<>, or a
		// vector/array of flat-shaped elements only gets a typed accessor
		// in direct mode, where its own offset (and, for a container
		// element, its stride) is a compile-time constant an F_direct can
		// be built from directly. A view has no such constant — the
		// nested flat's own fields would need their own offset table,
		// which the view's single m[] doesn't carry — so it falls back to
		// raw bytes there.
		case !isView && (typ.Kind == schema.FlatKind || typ.Kind == schema.VariantKind):
			emitNestedFlatField(&b, recv, wrapper, name, table, typ.Flat, off)
		case !isView && typ.Kind == schema.OptionalKind && isFlatShaped(table, typ.Inner):
			emitOptionalFlatField(&b, recv, wrapper, name, table, typ, off)
		case !isView && typ.Kind == schema.VectorKind && isFlatShaped(table, typ.Inner):
			emitVectorOfFlatField(&b, recv, wrapper, name, table, typ, off)
		case !isView && typ.Kind == schema.ArrayKind && isFlatShaped(table, typ.Inner):
			emitArrayOfFlatField(&b, recv, wrapper, name, table, typ, off)
		default:
			emitRawField(&b, recv, wrapper, name, fld.Size, off)
		}
	}
	return b.String()
}

// isFlatShaped reports whether id names a flat or variant — the two kinds
// whose elements a Span_ref dereferences into a direct-accessor rather
// than a plain value.
func isFlatShaped(table *schema.Table, id schema.TypeID) bool {
	k := table.Type(id).Kind
	return k == schema.FlatKind || k == schema.VariantKind
}

func emitScalarField(b *strings.Builder, recv, wrapper, name, goType, off string) {
	fmt.Fprintf(b, "func (%s %s) %s() %s {\n", recv, wrapper, name, goType)
	fmt.Fprintf(b, "\treturn flats.SpanOver[%s](%s.buf[%s:], 1).Slice()[0]\n", goType, recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) Set%s(v %s) {\n", recv, wrapper, name, goType)
	fmt.Fprintf(b, "\tflats.SpanOver[%s](%s.buf[%s:], 1).Set(0, v)\n", goType, recv, off)
	fmt.Fprintf(b, "}\n\n")
}

func emitStringField(b *strings.Builder, recv, wrapper, name, off string, hasAllocator bool) {
	fmt.Fprintf(b, "func (%s %s) %s() string {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\treturn flats.SpanString(flats.VectorBegin[byte](%s.buf, %s))\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
	if hasAllocator {
		fmt.Fprintf(b, "func (%s %s) Set%s(v string) error {\n", recv, wrapper, name)
		fmt.Fprintf(b, "\treturn flats.VectorPlaceString(%s.buf, %s.allo, %s, v)\n", recv, recv, off)
		fmt.Fprintf(b, "}\n\n")
	}
}

func emitVectorField(b *strings.Builder, recv, wrapper, name, elemGoType, off string, hasAllocator bool) {
	fmt.Fprintf(b, "func (%s %s) %s() flats.Span[%s] {\n", recv, wrapper, name, elemGoType)
	fmt.Fprintf(b, "\treturn flats.VectorBegin[%s](%s.buf, %s)\n", elemGoType, recv, off)
	fmt.Fprintf(b, "}\n\n")
	if hasAllocator {
		fmt.Fprintf(b, "func (%s %s) Alloc%s(n int) error {\n", recv, wrapper, name)
		fmt.Fprintf(b, "\treturn flats.VectorAlloc(%s.buf, %s.allo, %s, int(unsafe.Sizeof(*new(%s))), n)\n", recv, recv, off, elemGoType)
		fmt.Fprintf(b, "}\n\n")
		fmt.Fprintf(b, "func (%s %s) Push%s(v %s) error {\n", recv, wrapper, name, elemGoType)
		fmt.Fprintf(b, "\telemSize := int(unsafe.Sizeof(*new(%s)))\n", elemGoType)
		fmt.Fprintf(b, "\tabs, err := flats.VectorPush(%s.buf, %s.allo, %s, elemSize)\n", recv, recv, off)
		fmt.Fprintf(b, "\tif err != nil {\n\t\treturn err\n\t}\n")
		fmt.Fprintf(b, "\tflats.SpanOver[%s](%s.buf[abs:], 1).Set(0, v)\n", elemGoType, recv)
		fmt.Fprintf(b, "\treturn nil\n}\n\n")
	}
}

func emitArrayField(b *strings.Builder, recv, wrapper, name, elemGoType string, count int, off string) {
	fmt.Fprintf(b, "func (%s %s) %s() flats.Span[%s] {\n", recv, wrapper, name, elemGoType)
	fmt.Fprintf(b, "\treturn flats.SpanOver[%s](%s.buf[%s:], %d)\n", elemGoType, recv, off, count)
	fmt.Fprintf(b, "}\n\n")
}

func emitVarrayField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, typ *schema.Type, off string) {
	elemGoType := goTypeName(table, typ.Inner)
	fmt.Fprintf(b, "func (%s %s) %sUsed() flats.Size {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\treturn flats.SpanOver[flats.Size](%s.buf[%s:], 1).Slice()[0]\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) %s() flats.Span[%s] {\n", recv, wrapper, name, elemGoType)
	fmt.Fprintf(b, "\tarr := flats.SpanOver[%s](%s.buf[%s+%d:], %d).Slice()\n", elemGoType, recv, off, typ.Align, typ.Count)
	fmt.Fprintf(b, "\treturn flats.FixedVectorSpan(arr, %s.%sUsed())\n", recv, name)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) Push%s(v %s) error {\n", recv, wrapper, name, elemGoType)
	fmt.Fprintf(b, "\targ := flats.SpanOver[%s](%s.buf[%s+%d:], %d).Slice()\n", elemGoType, recv, off, typ.Align, typ.Count)
	fmt.Fprintf(b, "\tused := %s.%sUsed()\n", recv, name)
	fmt.Fprintf(b, "\tif err := flats.FixedVectorPush(arg, &used, v); err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(b, "\tflats.SpanOver[flats.Size](%s.buf[%s:], 1).Set(0, used)\n", recv, off)
	fmt.Fprintf(b, "\treturn nil\n}\n\n")
}

func emitOptionalField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, typ *schema.Type, off string) {
	valGoType := goTypeName(table, typ.Inner)
	innerAlign := table.Type(typ.Inner).Align
	fmt.Fprintf(b, "func (%s %s) Has%s() bool {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\treturn flats.DecodeOptionalFlag(%s.buf, %s)\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) %s() (%s, error) {\n", recv, wrapper, name, valGoType)
	fmt.Fprintf(b, "\tvalOff := flats.OptionalValueOffset(%s, %d)\n", off, innerAlign)
	fmt.Fprintf(b, "\treturn flats.OptionalGet[%s](%s.buf, %s, valOff)\n", valGoType, recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) Set%s(v %s) {\n", recv, wrapper, name, valGoType)
	fmt.Fprintf(b, "\tvalOff := flats.OptionalValueOffset(%s, %d)\n", off, innerAlign)
	fmt.Fprintf(b, "\tflats.OptionalSet(%s.buf, %s, valOff, v)\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) Clear%s() {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\tflats.OptionalClear(%s.buf, %s)\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
}

// emitOptionalFlatField renders the Optional_<Flat>_ref accessor §4.5
// describes: a presence flag plus the inner flat's own direct-accessor
// constructed in place at the flag's aligned payload offset.
func emitOptionalFlatField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, typ *schema.Type, off string) {
	innerType := table.Type(typ.Inner)
	child := table.Flat(innerType.Flat)
	childNeedsAllo := flatNeedsAllocator(table, innerType.Flat, map[schema.FlatID]bool{})
	allocArg := ""
	if childNeedsAllo {
		allocArg = fmt.Sprintf(", %s.allo", recv)
	}
	fmt.Fprintf(b, "func (%s %s) Has%s() bool {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\treturn flats.DecodeOptionalFlag(%s.buf, %s)\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) %s() (%s_direct, error) {\n", recv, wrapper, name, child.Name)
	fmt.Fprintf(b, "\tif err := flats.Expect(flats.OptionalHandling, func() bool { return flats.DecodeOptionalFlag(%s.buf, %s) }, flats.OptionalNotPresent); err != nil {\n", recv, off)
	fmt.Fprintf(b, "\t\treturn %s_direct{}, err\n\t}\n", child.Name)
	fmt.Fprintf(b, "\tvalOff := flats.OptionalValueOffset(%s, %d)\n", off, innerType.Align)
	fmt.Fprintf(b, "\treturn New%s_direct(%s.buf, valOff%s), nil\n", child.Name, recv, allocArg)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "// Set%s marks the field present and returns its direct-accessor for\n", name)
	fmt.Fprintf(b, "// in-place construction.\n")
	fmt.Fprintf(b, "func (%s %s) Set%s() %s_direct {\n", recv, wrapper, name, child.Name)
	fmt.Fprintf(b, "\tflats.EncodeOptionalFlag(%s.buf, %s, true)\n", recv, off)
	fmt.Fprintf(b, "\tvalOff := flats.OptionalValueOffset(%s, %d)\n", off, innerType.Align)
	fmt.Fprintf(b, "\treturn New%s_direct(%s.buf, valOff%s)\n", child.Name, recv, allocArg)
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "func (%s %s) Clear%s() {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\tflats.EncodeOptionalFlag(%s.buf, %s, false)\n", recv, off)
	fmt.Fprintf(b, "}\n\n")
}

// emitVectorOfFlatField and emitArrayOfFlatField render a Span_ref<Elem,
// Elem_direct> accessor (§4.4) for a container whose elements are
// flat-shaped: each At(i) call constructs a fresh direct-accessor over
// the element's own slice of the buffer instead of handing back raw bytes.
func emitVectorOfFlatField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, typ *schema.Type, off string) {
	elemType := table.Type(typ.Inner)
	elem := table.Flat(elemType.Flat)
	stride := elem.FixedSize
	allocArg := ""
	if flatNeedsAllocator(table, elemType.Flat, map[schema.FlatID]bool{}) {
		allocArg = fmt.Sprintf(", %s.allo", recv)
	}
	fmt.Fprintf(b, "func (%s %s) %s() flats.SpanRef[%s_direct] {\n", recv, wrapper, name, elem.Name)
	fmt.Fprintf(b, "\treturn flats.VectorRefBegin(%s.buf, %s, %d, func(buf []byte, base int) %s_direct {\n", recv, off, stride, elem.Name)
	fmt.Fprintf(b, "\t\treturn New%s_direct(buf, base%s)\n", elem.Name, allocArg)
	fmt.Fprintf(b, "\t})\n")
	fmt.Fprintf(b, "}\n\n")
}

func emitArrayOfFlatField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, typ *schema.Type, off string) {
	elemType := table.Type(typ.Inner)
	elem := table.Flat(elemType.Flat)
	stride := elem.FixedSize
	allocArg := ""
	if flatNeedsAllocator(table, elemType.Flat, map[schema.FlatID]bool{}) {
		allocArg = fmt.Sprintf(", %s.allo", recv)
	}
	fmt.Fprintf(b, "func (%s %s) %s() flats.SpanRef[%s_direct] {\n", recv, wrapper, name, elem.Name)
	fmt.Fprintf(b, "\treturn flats.SpanRefOver(%s.buf, %s, %d, %d, func(buf []byte, base int) %s_direct {\n", recv, off, stride, typ.Count, elem.Name)
	fmt.Fprintf(b, "\t\treturn New%s_direct(buf, base%s)\n", elem.Name, allocArg)
	fmt.Fprintf(b, "\t})\n")
	fmt.Fprintf(b, "}\n\n")
}

func emitNestedFlatField(b *strings.Builder, recv, wrapper, name string, table *schema.Table, childID schema.FlatID, off string) {
	child := table.Flat(childID)
	fmt.Fprintf(b, "func (%s %s) %s() %s_direct {\n", recv, wrapper, name, child.Name)
	if needsAllocator(table, child) {
		fmt.Fprintf(b, "\treturn New%s_direct(%s.buf, %s, %s.allo)\n", child.Name, recv, off, recv)
	} else {
		fmt.Fprintf(b, "\treturn New%s_direct(%s.buf, %s)\n", child.Name, recv, off)
	}
	fmt.Fprintf(b, "}\n\n")
}

func emitRawField(b *strings.Builder, recv, wrapper, name string, size int, off string) {
	fmt.Fprintf(b, "// %s has a composition this generator does not give a typed accessor to;\n", name)
	fmt.Fprintf(b, "// %sBytes exposes its fixed-part storage directly, still zero-copy.\n", name)
	fmt.Fprintf(b, "func (%s %s) %sBytes() []byte {\n", recv, wrapper, name)
	fmt.Fprintf(b, "\treturn %s.buf[%s : %s+%d]\n", recv, off, off, size)
	fmt.Fprintf(b, "}\n\n")
}
