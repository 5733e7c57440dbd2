package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// FormatFlat renders flat the way the original compiler's debug printer
// did: one line of "{ name : type }" per field (or "{ deleted name }" /
// "{ deprecate name }" for a typeless tombstoned field), bracketed by
// "variant" for a variant and "flat" for every other kind. Enumerations
// render as "name:value" pairs
// instead, since they have no types to print.
func FormatFlat(table *schema.Table, flat *schema.Flat) string {
	var b strings.Builder
	if flat.Kind == schema.EnumerationKind {
		fmt.Fprintf(&b, "%s : enum {", flat.Name)
		for _, fld := range flat.Fields {
			fmt.Fprintf(&b, " %s:%d", fld.Name, fld.Value)
		}
		b.WriteString(" }\n")
		return b.String()
	}

	keyword := "flat"
	if flat.Kind == schema.VariantKind {
		keyword = "variant"
	}
	fmt.Fprintf(&b, "%s : %s {\n", flat.Name, keyword)
	for _, fld := range flat.Fields {
		b.WriteString(formatField(table, fld))
	}
	b.WriteString("}\n")
	return b.String()
}

func formatField(table *schema.Table, fld schema.Field) string {
	switch fld.Status {
	case schema.Deleting:
		return fmt.Sprintf("{ delete %s }\n", fld.Name)
	case schema.Deprecating:
		return fmt.Sprintf("{ deprecate %s }\n", fld.Name)
	}
	prefix := ""
	if fld.Status == schema.Deleted {
		prefix = "deleted "
	} else if fld.Status == schema.Deprecated {
		prefix = "deprecated "
	}
	if fld.Type == schema.NoType {
		return fmt.Sprintf("{ %s%s }\n", prefix, fld.Name)
	}
	return fmt.Sprintf("{ %s%s : %s }\n", prefix, fld.Name, typeText(table, fld.Type))
}

// typeText is this package's own copy of the type-to-source-text renderer —
// kept local rather than imported from pkg/layout so the debug printer has
// no dependency on the layout engine, mirroring the original's
// flat_text_printer.cpp standing apart from the layout computation itself.
func typeText(table *schema.Table, id schema.TypeID) string {
	typ := table.Type(id)
	switch typ.Kind {
	case schema.OptionalKind:
		return "optional<" + typeText(table, typ.Inner) + ">"
	case schema.VectorKind:
		return "vector<" + typeText(table, typ.Inner) + ">"
	case schema.VarrayKind:
		return "fixed_vector<" + typeText(table, typ.Inner) + ", " + strconv.Itoa(typ.Count) + ">"
	case schema.ArrayKind:
		return typeText(table, typ.Inner) + "[" + strconv.Itoa(typ.Count) + "]"
	case schema.FlatKind, schema.VariantKind, schema.EnumerationKind, schema.ViewKind, schema.MessageKind:
		return table.Flat(typ.Flat).Name
	default:
		return typ.Name
	}
}
