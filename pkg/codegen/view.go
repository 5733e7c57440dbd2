package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// EmitView renders the C7 view accessor (§4.6): a wrapper over a buffer
// plus an externally supplied offset table m, indexed by each field's
// stable Index rather than its position among live fields — the same
// indirection that lets a reader built against an older schema revision
// keep addressing a field whose ordinal never moved even after fields
// between it and the start were deprecated or deleted. A view never owns
// an allocator: it's a read/write window onto storage someone else placed
// and sized, never the thing growing the tail.
//
// EmitView is used both for a flat-shaped type's generic view (every flat
// gets one, regardless of whether a `view of` declaration mentions it)
// and for a genuine `view of F {...}` declaration, whose Flat already
// carries just the selected subset of F's fields under their original
// indices — the same emission logic covers both.
func EmitView(table *schema.Table, flat *schema.Flat) string {
	if flat.Kind == schema.VariantKind {
		// A variant's tag/union scheme has no meaningful offset-table
		// projection distinct from its direct accessor's own tag check, so
		// views reuse the direct accessor for variants.
		return ""
	}

	wrapper := flat.Name + "_view"
	var b strings.Builder

	fmt.Fprintf(&b, "// %s is %s's view accessor: offsets come from m, supplied by the\n", wrapper, flat.Name)
	fmt.Fprintf(&b, "// caller (typically an Object_map decoded from the message itself),\n")
	fmt.Fprintf(&b, "// indexed by each field's stable declaration ordinal rather than a\n")
	fmt.Fprintf(&b, "// compile-time constant.\n")
	fmt.Fprintf(&b, "type %s struct {\n\tbuf []byte\n\tbase int\n\tm   []int\n}\n\n", wrapper)
	fmt.Fprintf(&b, "func New%s(buf []byte, base int, m []int) %s {\n", wrapper, wrapper)
	fmt.Fprintf(&b, "\treturn %s{buf: buf, base: base, m: m}\n}\n\n", wrapper)

	offsetExpr := func(fld schema.Field) string {
		return fmt.Sprintf("v.base+v.m[%d]", fld.Index)
	}
	b.WriteString(emitFieldAccessors(table, flat, "v", wrapper, offsetExpr, false, true))
	return b.String()
}
