// Package ir holds the compiler's intermediate representation: the ordered
// list of top-level declarations a schema produces, plus the debug
// text-printer (print.go) every entry point shares.
package ir

import "github.com/flatlang/flatc/pkg/schema"

// Program is what the parser hands the layout engine and emitters: a
// symbol table owning every Type and Flat, plus the declaration order of
// the schema's top-level flats/variants/enumerations/views/messages. Order
// matters for nothing at runtime, but it makes generated output and debug
// dumps match the schema's own field order instead of arena insertion
// order (which also includes forward-reference placeholders).
type Program struct {
	Table *schema.Table
	Order []schema.FlatID
}

// Flats returns the Flat values named in declaration order.
func (p *Program) Flats() []*schema.Flat {
	out := make([]*schema.Flat, len(p.Order))
	for i, id := range p.Order {
		out[i] = p.Table.Flat(id)
	}
	return out
}
