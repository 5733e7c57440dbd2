package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// emitVariantDirect renders the C8 direct accessor for a variant: one
// {buf, base, allo} wrapper, a Tag() reader, and per alternative a getter
// that asserts the tag before touching the union. A scalar alternative's
// setter writes the payload, then the tag; a string or vector<scalar>
// alternative's setter sets the tag when VariantAllocate reserves its tail
// space, before the payload is placed; array and raw alternatives get no
// setter, only a Mark<Name>Active method that sets the tag. The wrapper
// carries allo only when some alternative needs tail space. Tag values are
// 1 + the alternative's stable
// field index, matching §8's "after v.s(\"abc\"), v().tag() == 2" example
// for a variant whose second-declared alternative is s.
//
// Alternatives needing tail space (string, vector<scalar>) go through
// VariantAllocate the way the runtime contract in pkg/flats/variant.go
// expects: reserve tail space, record the relative offset, then treat
// that tail location as the alternative's own header the same way an
// ordinary vector field would. Every other alternative shape is read and
// written inline inside the union bytes.
func emitVariantDirect(table *schema.Table, flat *schema.Flat) string {
	wrapper := flat.Name + "_direct"
	hasAllo := needsAllocator(table, flat)
	var b strings.Builder

	fmt.Fprintf(&b, "// %s is %s's direct accessor: Tag reports which alternative is\n", wrapper, flat.Name)
	fmt.Fprintf(&b, "// live; each alternative's own getter asserts the tag before reading.\n")
	if hasAllo {
		fmt.Fprintf(&b, "type %s struct {\n\tbuf  []byte\n\tbase int\n\tallo *flats.Allocator\n}\n\n", wrapper)
		fmt.Fprintf(&b, "func New%s(buf []byte, base int, allo *flats.Allocator) %s {\n", wrapper, wrapper)
		fmt.Fprintf(&b, "\treturn %s{buf: buf, base: base, allo: allo}\n}\n\n", wrapper)
	} else {
		fmt.Fprintf(&b, "type %s struct {\n\tbuf  []byte\n\tbase int\n}\n\n", wrapper)
		fmt.Fprintf(&b, "func New%s(buf []byte, base int) %s {\n", wrapper, wrapper)
		fmt.Fprintf(&b, "\treturn %s{buf: buf, base: base}\n}\n\n", wrapper)
	}
	fmt.Fprintf(&b, "func (v %s) Tag() uint8 {\n\treturn flats.DecodeVariantTag(v.buf, v.base)\n}\n\n", wrapper)

	for _, fld := range flat.LiveFields() {
		typ := table.Type(fld.Type)
		tag := fld.Index + 1
		name := exported(fld.Name)
		off := fmt.Sprintf("v.base+%s", offsetConst(flat, fld))

		switch {
		case typ.Kind == schema.StringKind:
			emitVariantStringAlt(&b, wrapper, name, tag)
		case typ.Kind == schema.VectorKind && table.Type(typ.Inner).Kind.IsScalar():
			emitVariantVectorAlt(&b, wrapper, name, goTypeName(table, typ.Inner), tag)
		case typ.Kind.IsScalar():
			emitVariantScalarAlt(&b, wrapper, name, goScalarName(table, fld.Type), off, tag)
		case typ.Kind == schema.ArrayKind && table.Type(typ.Inner).Kind.IsScalar():
			emitVariantArrayAlt(&b, wrapper, name, goTypeName(table, typ.Inner), typ.Count, off, tag)
		default:
			emitVariantRawAlt(&b, wrapper, name, fld.Size, off, tag)
		}
	}
	return b.String()
}

func emitVariantScalarAlt(b *strings.Builder, wrapper, name, goType, off string, tag int) {
	fmt.Fprintf(b, "func (v %s) %s() (%s, error) {\n", wrapper, name, goType)
	fmt.Fprintf(b, "\tvar zero %s\n\tif err := flats.ExpectVariantTag(v.buf, v.base, %d); err != nil {\n\t\treturn zero, err\n\t}\n", goType, tag)
	fmt.Fprintf(b, "\treturn flats.SpanOver[%s](v.buf[%s:], 1).Slice()[0], nil\n}\n\n", goType, off)
	fmt.Fprintf(b, "func (v %s) Set%s(val %s) {\n", wrapper, name, goType)
	fmt.Fprintf(b, "\tflats.SpanOver[%s](v.buf[%s:], 1).Set(0, val)\n", goType, off)
	fmt.Fprintf(b, "\tflats.VariantSetInline(v.buf, v.base, %d)\n}\n\n", tag)
}

func emitVariantArrayAlt(b *strings.Builder, wrapper, name, elemGoType string, count int, off string, tag int) {
	fmt.Fprintf(b, "func (v %s) %s() (flats.Span[%s], error) {\n", wrapper, name, elemGoType)
	fmt.Fprintf(b, "\tif err := flats.ExpectVariantTag(v.buf, v.base, %d); err != nil {\n\t\treturn flats.Span[%s]{}, err\n\t}\n", tag, elemGoType)
	fmt.Fprintf(b, "\treturn flats.SpanOver[%s](v.buf[%s:], %d), nil\n}\n\n", elemGoType, off, count)
	fmt.Fprintf(b, "func (v %s) Mark%sActive() {\n\tflats.VariantSetInline(v.buf, v.base, %d)\n}\n\n", wrapper, name, tag)
}

func emitVariantStringAlt(b *strings.Builder, wrapper, name string, tag int) {
	fmt.Fprintf(b, "func (v %s) %s() (string, error) {\n", wrapper, name)
	fmt.Fprintf(b, "\tif err := flats.ExpectVariantTag(v.buf, v.base, %d); err != nil {\n\t\treturn \"\", err\n\t}\n", tag)
	fmt.Fprintf(b, "\tabs := flats.VariantAllocOffset(v.buf, v.base)\n")
	fmt.Fprintf(b, "\treturn flats.SpanString(flats.VectorBegin[byte](v.buf, abs)), nil\n}\n\n")
	fmt.Fprintf(b, "func (v %s) Set%s(val string) error {\n", wrapper, name)
	fmt.Fprintf(b, "\tabs, err := flats.VariantAllocate(v.buf, v.allo, v.base, %d, flats.VectorHeaderSize)\n", tag)
	fmt.Fprintf(b, "\tif err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(b, "\treturn flats.VectorPlaceString(v.buf, v.allo, abs, val)\n}\n\n")
}

func emitVariantVectorAlt(b *strings.Builder, wrapper, name, elemGoType string, tag int) {
	fmt.Fprintf(b, "func (v %s) %s() (flats.Span[%s], error) {\n", wrapper, name, elemGoType)
	fmt.Fprintf(b, "\tif err := flats.ExpectVariantTag(v.buf, v.base, %d); err != nil {\n\t\treturn flats.Span[%s]{}, err\n\t}\n", tag, elemGoType)
	fmt.Fprintf(b, "\tabs := flats.VariantAllocOffset(v.buf, v.base)\n")
	fmt.Fprintf(b, "\treturn flats.VectorBegin[%s](v.buf, abs), nil\n}\n\n", elemGoType)
	fmt.Fprintf(b, "func (v %s) Alloc%s(n int) (int, error) {\n", wrapper, name)
	fmt.Fprintf(b, "\tabs, err := flats.VariantAllocate(v.buf, v.allo, v.base, %d, flats.VectorHeaderSize)\n", tag)
	fmt.Fprintf(b, "\tif err != nil {\n\t\treturn 0, err\n\t}\n")
	fmt.Fprintf(b, "\tif err := flats.VectorAlloc(v.buf, v.allo, abs, int(unsafe.Sizeof(*new(%s))), n); err != nil {\n\t\treturn 0, err\n\t}\n", elemGoType)
	fmt.Fprintf(b, "\treturn abs, nil\n}\n\n")
}

func emitVariantRawAlt(b *strings.Builder, wrapper, name string, size int, off string, tag int) {
	fmt.Fprintf(b, "// %s's composition has no typed variant accessor; %sBytes exposes\n", name, name)
	fmt.Fprintf(b, "// its union storage directly, still zero-copy.\n")
	fmt.Fprintf(b, "func (v %s) %sBytes() ([]byte, error) {\n", wrapper, name)
	fmt.Fprintf(b, "\tif err := flats.ExpectVariantTag(v.buf, v.base, %d); err != nil {\n\t\treturn nil, err\n\t}\n", tag)
	fmt.Fprintf(b, "\treturn v.buf[%s : %s+%d], nil\n}\n\n", off, off, size)
	fmt.Fprintf(b, "func (v %s) Mark%sActive() {\n\tflats.VariantSetInline(v.buf, v.base, %d)\n}\n\n", wrapper, name, tag)
}
