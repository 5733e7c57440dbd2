// Package codegen is the direct-accessor, view-accessor, variant/optional,
// and message emitters (C6–C9): given a laid-out ir.Program, it renders
// the Go source text cmd/flatc writes out for one of the five actions the
// original CLI exposed.
package codegen

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/flatlang/flatc/internal/ir"
	"github.com/flatlang/flatc/pkg/layout"
	"github.com/flatlang/flatc/pkg/schema"
)

// Action is one of the five CLI actions the original parser's main.cpp
// dispatched on. Packed and PackedView both ask for the packed layout
// discipline — in the original, the lambda that decided the packed bool
// had a bare `default: return false` covering every case including these
// two, so packed output never actually activated no matter which action
// was requested. Action.Packed fixes that: Packed/PackedView are the only
// two actions that return true.
type Action int

const (
	ActionDebug Action = iota
	ActionDirect
	ActionView
	ActionPacked
	ActionPackedView
)

func ParseAction(s string) (Action, error) {
	switch s {
	case "debug":
		return ActionDebug, nil
	case "direct":
		return ActionDirect, nil
	case "view":
		return ActionView, nil
	case "packed":
		return ActionPacked, nil
	case "packed_view":
		return ActionPackedView, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Packed reports whether this action's flats should be laid out under the
// packed discipline before codegen runs.
func (a Action) Packed() bool {
	return a == ActionPacked || a == ActionPackedView
}

// WantsView reports whether this action emits a view accessor. View
// actions print only the view wrapper, not the layout struct, which a
// prior direct/packed run is assumed to have emitted (see emitDeclBody).
func (a Action) WantsView() bool {
	return a == ActionView || a == ActionPackedView
}

// WantsDirect reports whether this action emits a direct accessor.
func (a Action) WantsDirect() bool {
	return a == ActionDirect || a == ActionPacked
}

// Generate renders the full output for one action over every flat in
// prog, in declaration order. The caller is responsible for having run
// layout.Program over prog first; Generate itself only flips flat.Packed
// and re-lays-out flats when the requested action's packed-ness disagrees
// with what the program was last laid out under.
func Generate(prog *ir.Program, action Action) (string, error) {
	if action == ActionDebug {
		return generateDebug(prog), nil
	}

	var body strings.Builder
	for _, id := range prog.Order {
		text, err := emitDeclBody(prog, action, id)
		if err != nil {
			return "", err
		}
		body.WriteString(text)
	}

	for _, id := range prog.Order {
		flat := prog.Table.Flat(id)
		if flat.Kind == schema.MessageKind {
			body.WriteString(EmitMessage(prog.Table, flat))
		}
	}

	return renderFile(body.String()), nil
}

// GenerateFiles renders the same source Generate would produce for
// action, but as one file per flat/variant/view/enum/message instead of
// one concatenated stream — the three-arg CLI shape's output-dir fanout
// mode. ActionDebug has no fanout form since the debug dump isn't Go
// source; callers asking for it there get an error. Declaration order
// within a file doesn't matter to the Go compiler, so unlike Generate this
// needs only one pass: a message's body references its wrapped flat's
// `_direct` type by name, not by textual proximity, so it can render
// before, after, or in its own file regardless of where the flat's own
// file lands.
func GenerateFiles(prog *ir.Program, action Action) (map[string]string, error) {
	if action == ActionDebug {
		return nil, fmt.Errorf("flatc: debug has no per-file output; omit the output directory")
	}

	files := make(map[string]string)
	for _, id := range prog.Order {
		flat := prog.Table.Flat(id)
		var text string
		var err error
		if flat.Kind == schema.MessageKind {
			text = EmitMessage(prog.Table, flat)
		} else {
			text, err = emitDeclBody(prog, action, id)
		}
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		files[strings.ToLower(flat.Name)+".go"] = renderFile(text)
	}
	return files, nil
}

// emitDeclBody renders one top-level declaration's worth of source for
// Generate/GenerateFiles, re-laying-out a flat/variant first if the
// requested action's packed-ness disagrees with how it was last laid out.
// Messages are handled by the caller, not here, since Generate wants them
// rendered only after every flat/variant/view has already been visited.
func emitDeclBody(prog *ir.Program, action Action, id schema.FlatID) (string, error) {
	flat := prog.Table.Flat(id)
	var b strings.Builder

	if flat.Kind == schema.EnumerationKind {
		b.WriteString(emitEnum(flat))
		return b.String(), nil
	}
	if flat.Kind == schema.MessageKind {
		return "", nil
	}
	if flat.Kind != schema.FlatKind && flat.Kind != schema.VariantKind && flat.Kind != schema.ViewKind {
		return "", nil
	}

	wantPacked := action.Packed() && flat.Kind != schema.ViewKind
	if flat.Kind != schema.ViewKind && flat.Packed != wantPacked {
		flat.Packed = wantPacked
		if err := layout.Flat(prog.Table, flat); err != nil {
			return "", err
		}
	}
	// Matching the original driver: a view/packed_view run assumes a prior
	// direct/packed run already emitted the struct, so it prints only the
	// view wrapper, not the layout struct again.
	if action.WantsDirect() && flat.Kind != schema.ViewKind {
		b.WriteString(EmitLayoutStruct(prog.Table, flat))
		b.WriteString(EmitDirect(prog.Table, flat))
	}
	if action.WantsView() {
		if v := EmitView(prog.Table, flat); v != "" {
			b.WriteString(v)
		}
	}
	return b.String(), nil
}

// renderFile wraps body in its package clause and import block. unsafe and
// flats are each only imported when body actually uses them — a
// pure-enumeration schema needs neither, and most schemas never need
// unsafe (only the Alloc/Push setters of vector<scalar> fields and
// variant alternatives do) — an
// unconditional import would leave the generated package failing to
// compile on Go's unused-import rule.
func renderFile(body string) string {
	var b strings.Builder
	b.WriteString("// Code generated by the Flats compiler. DO NOT EDIT.\n\n")
	b.WriteString("package flatsgen\n\n")

	needsUnsafe := strings.Contains(body, "unsafe.")
	needsFlats := strings.Contains(body, "flats.")
	switch {
	case needsUnsafe && needsFlats:
		b.WriteString("import (\n\t\"unsafe\"\n\n\t\"github.com/flatlang/flatc/pkg/flats\"\n)\n\n")
	case needsFlats:
		b.WriteString("import \"github.com/flatlang/flatc/pkg/flats\"\n\n")
	case needsUnsafe:
		b.WriteString("import \"unsafe\"\n\n")
	}

	b.WriteString(body)
	return b.String()
}

// emitEnum renders an enumeration's name/value pairs as Go constants — the
// only artifact an EnumerationKind flat gets; §7's emitted-code contract
// is explicit that enumerations have no accessor.
func emitEnum(flat *schema.Flat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "type %s int32\n\n", flat.Name)
	fmt.Fprintf(&b, "const (\n")
	for _, fld := range flat.LiveFields() {
		fmt.Fprintf(&b, "\t%s_%s %s = %d\n", flat.Name, fld.Name, flat.Name, fld.Value)
	}
	fmt.Fprintf(&b, ")\n\n")
	return b.String()
}

// generateDebug renders the `debug` action's output: the schema echoed
// back in its own syntax the way the original's print(Flat&) did, followed
// by a spew dump of the layout engine's object map — the original had no
// equivalent of the second part since its Flat already held live pointers
// a human could inspect in a debugger; Go's doesn't, so the dump stands in.
func generateDebug(prog *ir.Program) string {
	var b strings.Builder
	for _, id := range prog.Order {
		flat := prog.Table.Flat(id)
		b.WriteString(ir.FormatFlat(prog.Table, flat))
		fmt.Fprintf(&b, "--- %s (%s) object map ---\n", flat.Name, flat.Kind)
		if flat.Map != nil {
			b.WriteString(spew.Sdump(flat.Map))
		} else {
			b.WriteString(spew.Sdump(flat))
		}
	}
	return b.String()
}
