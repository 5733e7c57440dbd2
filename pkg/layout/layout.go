// Package layout is the layout engine (C5): it walks each flat's fields in
// declaration order and computes per-field offset, size, and the flat's
// total fixed size, under the packed and naturally-aligned disciplines.
package layout

import (
	"strconv"

	"github.com/flatlang/flatc/internal/ir"
	"github.com/flatlang/flatc/pkg/schema"
)

// variantHeaderSize mirrors flats.VariantHeaderSize: a variant's union of
// alternatives starts after this many header bytes (utag, padded, plus the
// relative Offset to an allocating alternative's tail storage). Redeclared
// here rather than imported so the compiler front end has no dependency on
// the runtime contracts package it is generating calls against.
const variantHeaderSize = 4

func alignUp(pos, align int) int {
	if align <= 1 {
		return pos
	}
	if r := pos % align; r != 0 {
		return pos + (align - r)
	}
	return pos
}

// Program lays out every flat and variant in prog, in declaration order.
// Views, messages, and enumerations have no fixed byte layout of their
// own — views read through an externally supplied offset table, messages
// wrap another flat's layout, and enumerations are name/value pairs with
// no accessor — so they're skipped here.
func Program(prog *ir.Program) error {
	for _, id := range prog.Order {
		flat := prog.Table.Flat(id)
		switch flat.Kind {
		case schema.FlatKind, schema.VariantKind:
			if err := Flat(prog.Table, flat); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flat lays out one flat or variant in place, populating each live
// field's Offset/Size, the flat's FixedSize/FixedAlign, its tail
// Variable_part, and its Object_map.
func Flat(table *schema.Table, flat *schema.Flat) error {
	var err error
	if flat.Kind == schema.VariantKind {
		err = layoutVariant(table, flat)
	} else {
		err = layoutOrdinary(table, flat)
	}
	if err != nil {
		return err
	}
	syncFlatType(table, flat)
	return nil
}

// syncFlatType writes flat's freshly computed FixedSize/FixedAlign back
// onto its own Type catalog entry. A field typed directly as another flat
// (nested flat, optional<flat>, vector/array of flat) is laid out by
// reading that Type's Size/Align (layoutOrdinary's typ.Size/typ.Align), so
// without this a flat-shaped field would always measure as 0 bytes —
// every field after it would land at the wrong offset.
func syncFlatType(table *schema.Table, flat *schema.Flat) {
	id, ok := table.Lookup(flat.Name)
	if !ok {
		return
	}
	t := table.Type(id)
	t.Size = flat.FixedSize
	t.Align = flat.FixedAlign
}

// refreshComposedSize recomputes typ's own Size/Align from its current
// Inner type, for the three composite kinds whose size the parser bakes in
// from the inner type's Size/Align at parse time (optional<T>, T[n],
// fixed_vector<T,n>) — see parseOptional/parseType/parseFixedVector.
// That's only correct when the inner type already has its real Size/Align,
// which doesn't hold when the inner is itself a flat: a flat's Type entry
// reads Size 0/Align 0 until its own layout runs, and it may be laid out
// after the composite type was built. Called on every field's Type just
// before that field's own Offset/Size are recorded, after recursing into
// Inner first so a chain like optional<Elem[4]> resolves inside out.
// vector<T>'s Size is the fixed {size,pos} header regardless of T, so
// VectorKind needs no refresh.
func refreshComposedSize(table *schema.Table, typ *schema.Type) {
	switch typ.Kind {
	case schema.OptionalKind:
		inner := table.Type(typ.Inner)
		refreshComposedSize(table, inner)
		typ.Size = inner.Align + inner.Size
		typ.Align = inner.Align
	case schema.ArrayKind:
		inner := table.Type(typ.Inner)
		refreshComposedSize(table, inner)
		typ.Size = typ.Count * inner.Size
		typ.Align = inner.Align
	case schema.VarrayKind:
		inner := table.Type(typ.Inner)
		refreshComposedSize(table, inner)
		usedArea := 2
		if inner.Align > usedArea {
			usedArea = inner.Align
		}
		typ.Size = usedArea + typ.Count*inner.Size
		typ.Align = usedArea
	}
}

// layoutOrdinary implements the five-step walk of §4.3 for a plain flat:
// align (unless packed), record the field's offset, then advance past it.
// Aligning before recording the offset — rather than recording first and
// adjusting after, as the original implementation's field-layout loop
// does — is what makes Testable Property 2 (offset % align(type) == 0)
// hold unconditionally; see DESIGN.md.
func layoutOrdinary(table *schema.Table, flat *schema.Flat) error {
	position := 0
	maxAlign := 1
	var mapFields []schema.FieldEntry

	for i := range flat.Fields {
		fld := &flat.Fields[i]
		if fld.Status.IsTombstone() {
			continue
		}
		typ := table.Type(fld.Type)
		refreshComposedSize(table, typ)
		if typ.Align > maxAlign {
			maxAlign = typ.Align
		}
		if !flat.Packed {
			position = alignUp(position, typ.Align)
		}
		fld.Offset = position
		fld.Size = typ.Size
		mapFields = append(mapFields, fieldEntry(table, fld, typ))
		position += typ.Size
	}
	if !flat.Packed {
		position = alignUp(position, maxAlign)
	}
	finishLayout(flat, position, maxAlign, mapFields)
	return nil
}

// layoutVariant lays out a variant's alternatives as a union: every live
// alternative shares the same offset (just past the utag/pos header),
// padded once to the alignment the strictest alternative needs so every
// alternative's own alignment requirement is satisfied simultaneously —
// re-checking each alternative's alignment individually, the way a literal
// per-field walk would, can't hold the shared offset fixed across
// alternatives of differing alignment. The union's size is the largest
// alternative's size.
func layoutVariant(table *schema.Table, flat *schema.Flat) error {
	altAlign, altSize := 1, 0
	type live struct {
		idx int
		typ *schema.Type
	}
	var lives []live
	for i := range flat.Fields {
		if flat.Fields[i].Status.IsTombstone() {
			continue
		}
		typ := table.Type(flat.Fields[i].Type)
		refreshComposedSize(table, typ)
		if typ.Align > altAlign {
			altAlign = typ.Align
		}
		if typ.Size > altSize {
			altSize = typ.Size
		}
		lives = append(lives, live{idx: i, typ: typ})
	}

	position := variantHeaderSize
	if !flat.Packed {
		position = alignUp(position, altAlign)
	}
	unionOffset := position

	var mapFields []schema.FieldEntry
	for _, lv := range lives {
		fld := &flat.Fields[lv.idx]
		fld.Offset = unionOffset
		fld.Size = lv.typ.Size
		mapFields = append(mapFields, fieldEntry(table, fld, lv.typ))
	}
	position += altSize
	if !flat.Packed {
		position = alignUp(position, altAlign)
	}
	finishLayout(flat, position, altAlign, mapFields)
	return nil
}

func finishLayout(flat *schema.Flat, fixedSize, align int, mapFields []schema.FieldEntry) {
	flat.FixedSize = fixedSize
	flat.FixedAlign = align
	flat.Variable = schema.VariablePart{
		StartOffset: fixedSize,
		NextOffset:  fixedSize,
		Max:         schema.DefaultTailMax,
	}
	flat.Map = &schema.ObjectMap{
		Name:          flat.Name,
		DeclaredCount: len(flat.Fields),
		Version:       flat.NextIndex(),
		Fields:        mapFields,
	}
}

func fieldEntry(table *schema.Table, fld *schema.Field, typ *schema.Type) schema.FieldEntry {
	return schema.FieldEntry{
		Index:    fld.Index,
		Offset:   fld.Offset,
		Size:     fld.Size,
		Kind:     typ.Kind,
		Count:    typ.Count,
		Name:     fld.Name,
		TypeText: TypeText(table, fld.Type),
	}
}

// TypeText renders a Type's schema-facing spelling, used by Object_map
// entries and the debug action. It mirrors the grammar productions that
// could have produced the type, not its Go name.
func TypeText(table *schema.Table, id schema.TypeID) string {
	typ := table.Type(id)
	switch typ.Kind {
	case schema.OptionalKind:
		return "optional<" + TypeText(table, typ.Inner) + ">"
	case schema.VectorKind:
		return "vector<" + TypeText(table, typ.Inner) + ">"
	case schema.VarrayKind:
		return "fixed_vector<" + TypeText(table, typ.Inner) + ", " + strconv.Itoa(typ.Count) + ">"
	case schema.ArrayKind:
		return TypeText(table, typ.Inner) + "[" + strconv.Itoa(typ.Count) + "]"
	case schema.FlatKind, schema.VariantKind, schema.EnumerationKind, schema.ViewKind, schema.MessageKind:
		return table.Flat(typ.Flat).Name
	default:
		return typ.Name
	}
}
