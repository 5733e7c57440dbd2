package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// EmitLayoutStruct renders the "plain struct describing the in-buffer
// layout" every flat-shaped type gets, grounded on the original's object
// map dump: one field per live member with its computed offset/size as a
// trailing comment, plus exported Go constants for every field's offset
// and the flat's own FixedSize/FixedAlign. The struct itself is never
// instantiated — accessors read buf+offset through pkg/flats, never a
// struct field — it exists purely as the layout's human-readable record,
// matching what the debug action would otherwise have to reconstruct from
// the object map alone.
func EmitLayoutStruct(table *schema.Table, flat *schema.Flat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s mirrors the in-buffer layout of %q (fixed size %d, align %d).\n",
		flat.Name, flat.Name, flat.FixedSize, flat.FixedAlign)
	if flat.Packed {
		fmt.Fprintf(&b, "// Packed: fields are placed back to back with no alignment padding.\n")
	}
	fmt.Fprintf(&b, "type %s struct {\n", flat.Name)
	for _, fld := range flat.LiveFields() {
		fmt.Fprintf(&b, "\t// %s %s // offset %d, size %d\n",
			exported(fld.Name), typeText(table, fld.Type), fld.Offset, fld.Size)
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "const (\n")
	fmt.Fprintf(&b, "\t%s_FixedSize  = %d\n", flat.Name, flat.FixedSize)
	fmt.Fprintf(&b, "\t%s_FixedAlign = %d\n", flat.Name, flat.FixedAlign)
	for _, fld := range flat.LiveFields() {
		fmt.Fprintf(&b, "\t%s = %s\n", offsetConst(flat, fld), fmtOffset(fld.Offset))
	}
	fmt.Fprintf(&b, ")\n\n")
	return b.String()
}
