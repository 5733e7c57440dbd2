package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// EmitDirect renders the C6 direct accessor for an ordinary flat: a
// F_direct wrapper around {buf, base, allo} with a getter (and, for
// mutable field shapes, a setter) per live field, every one going through
// pkg/flats rather than touching buf directly. allo is only present when
// needsAllocator reports some field transitively needs tail space (§4.4).
func EmitDirect(table *schema.Table, flat *schema.Flat) string {
	if flat.Kind == schema.VariantKind {
		return emitVariantDirect(table, flat)
	}

	wrapper := flat.Name + "_direct"
	hasAllo := needsAllocator(table, flat)
	var b strings.Builder

	fmt.Fprintf(&b, "// %s is %s's direct accessor: every getter/setter computes its byte\n", wrapper, flat.Name)
	fmt.Fprintf(&b, "// offset at compile time from the constants above.\n")
	fmt.Fprintf(&b, "type %s struct {\n\tbuf  []byte\n\tbase int\n", wrapper)
	if hasAllo {
		fmt.Fprintf(&b, "\tallo *flats.Allocator\n")
	}
	fmt.Fprintf(&b, "}\n\n")

	if hasAllo {
		fmt.Fprintf(&b, "// New%s wraps buf's %s at base, backed by allo for tail-growing fields.\n", wrapper, flat.Name)
		fmt.Fprintf(&b, "func New%s(buf []byte, base int, allo *flats.Allocator) %s {\n", wrapper, wrapper)
		fmt.Fprintf(&b, "\treturn %s{buf: buf, base: base, allo: allo}\n}\n\n", wrapper)
	} else {
		fmt.Fprintf(&b, "// New%s wraps buf's %s at base. %s has no tail-growing field, so the\n", wrapper, flat.Name, flat.Name)
		fmt.Fprintf(&b, "// wrapper holds only buf and base.\n")
		fmt.Fprintf(&b, "func New%s(buf []byte, base int) %s {\n", wrapper, wrapper)
		fmt.Fprintf(&b, "\treturn %s{buf: buf, base: base}\n}\n\n", wrapper)
	}

	offsetExpr := func(fld schema.Field) string {
		return fmt.Sprintf("d.base+%s", offsetConst(flat, fld))
	}
	b.WriteString(emitFieldAccessors(table, flat, "d", wrapper, offsetExpr, hasAllo, false))
	return b.String()
}
