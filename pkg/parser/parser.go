// Package parser is the schema front end's recursive-descent parser: it
// turns a lexer.Lexer's token stream into an *ir.Program, resolving names
// through a schema.Table as it goes and applying the normalisation rules
// (optional collapsing, array-of-optional vs optional-of-array, rejecting
// vector-of-variant) before the layout engine ever sees the result.
package parser

import (
	"strconv"
	"strings"

	"github.com/flatlang/flatc/internal/diag"
	"github.com/flatlang/flatc/internal/ir"
	"github.com/flatlang/flatc/pkg/lexer"
	"github.com/flatlang/flatc/pkg/schema"
)

// Parser holds one token of lookahead, exactly like the lexer it wraps.
type Parser struct {
	lex   *lexer.Lexer
	file  string
	tok   lexer.Token
	table *schema.Table
	order []schema.FlatID
}

// Parse scans src to EOF (or the sentinel 'end') and returns the resulting
// Program. file is used only for diagnostics.
func Parse(src, file string) (*ir.Program, error) {
	table, err := schema.NewTable()
	if err != nil {
		return nil, err
	}
	return ParseWithTable(src, file, table)
}

// ParseWithTable parses src into table, which the caller may have already
// pre-populated (tests do this to check a single production in isolation).
func ParseWithTable(src, file string, table *schema.Table) (*ir.Program, error) {
	p := &Parser{lex: lexer.New(src), file: file, table: table}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	if lingering := table.CheckUndefined(); len(lingering) > 0 {
		return nil, diag.Newf(file, 0, diag.LingeringUndefined,
			"undefined name(s) never declared: %s", strings.Join(lingering, ", "))
	}
	if err := validateNoContainerOfVariant(table, file); err != nil {
		return nil, err
	}
	return &ir.Program{Table: table, Order: p.order}, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		le := err.(*lexer.Error)
		return diag.New(p.file, le.Line, diag.BadGrammar, le.Msg)
	}
	p.tok = tok
	return nil
}

func (p *Parser) errf(kind, format string, args ...any) error {
	return diag.Newf(p.file, p.tok.Line, kind, format, args...)
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != tt {
		return lexer.Token{}, p.errf(diag.BadGrammar, "expected %s, found %s", tt, p.tok.Type)
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) expectName() (string, error) {
	tok, err := p.expect(lexer.Name)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// parseFile implements `file := decl* 'end'?`.
func (p *Parser) parseFile() error {
	for p.tok.Type != lexer.EOF && p.tok.Type != lexer.KwEnd {
		if err := p.parseDecl(); err != nil {
			return err
		}
		// ';' and ',' are optional terminators between top-level decls too;
		// the lexer never emits them implicitly, so consume one if present.
		if p.tok.Type == lexer.Semi || p.tok.Type == lexer.Comma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseDecl implements `decl := name ':' kind`.
func (p *Parser) parseDecl() error {
	line := p.tok.Line
	name, err := p.expectName()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return err
	}
	return p.parseKind(name, line)
}

func (p *Parser) parseKind(name string, line int) error {
	switch p.tok.Type {
	case lexer.KwFlat:
		return p.parseFlatOrVariant(name, line, schema.FlatKind)
	case lexer.KwVariant:
		return p.parseFlatOrVariant(name, line, schema.VariantKind)
	case lexer.KwEnum:
		return p.parseEnum(name, line)
	case lexer.KwView:
		return p.parseView(name, line)
	case lexer.KwMessage:
		return p.parseMessage(name, line)
	default:
		return p.errf(diag.BadGrammar, "expected 'flat', 'variant', 'enum', 'view', or 'message', found %s", p.tok.Type)
	}
}

func (p *Parser) defineFlat(name string, line int, kind schema.Kind) (schema.FlatID, error) {
	flatID, _, err := p.table.DefineFlat(name, kind)
	if err != nil {
		return schema.NoFlat, diag.New(p.file, line, diag.DuplicateDeclaration, err.Error())
	}
	flat := p.table.Flat(flatID)
	flat.DeclLine = line
	p.order = append(p.order, flatID)
	return flatID, nil
}

func (p *Parser) parseFlatOrVariant(name string, line int, kind schema.Kind) error {
	if err := p.advance(); err != nil { // consume 'flat'/'variant'
		return err
	}
	flatID, err := p.defineFlat(name, line, kind)
	if err != nil {
		return err
	}
	flat := p.table.Flat(flatID)
	return p.parseBody(flat, kind == schema.VariantKind)
}

// parseBody implements `body := '{' field* '}'`.
func (p *Parser) parseBody(flat *schema.Flat, isVariant bool) error {
	if _, err := p.expect(lexer.LBrace); err != nil {
		return err
	}
	for p.tok.Type != lexer.RBrace {
		if err := p.parseField(flat, isVariant); err != nil {
			return err
		}
		if p.tok.Type == lexer.Semi || p.tok.Type == lexer.Comma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return p.advanceRBrace()
}

func (p *Parser) advanceRBrace() error {
	_, err := p.expect(lexer.RBrace)
	return err
}

// parseField implements:
//
//	field := ('deprecate' | 'delete') name | name ':' type ('=' (number | qualified-enumerator))?
func (p *Parser) parseField(flat *schema.Flat, isVariant bool) error {
	line := p.tok.Line
	switch p.tok.Type {
	case lexer.KwDeprecate, lexer.KwDelete:
		status := schema.Deprecating
		if p.tok.Type == lexer.KwDelete {
			status = schema.Deleted
		}
		if err := p.advance(); err != nil {
			return err
		}
		name, err := p.expectName()
		if err != nil {
			return err
		}
		flat.Fields = append(flat.Fields, schema.Field{
			Name: name, Type: schema.NoType, Index: flat.NextIndex(), Status: status,
		})
		return nil
	case lexer.Name:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return err
		}
		if _, err := p.expect(lexer.Colon); err != nil {
			return err
		}
		typeID, err := p.parseType()
		if err != nil {
			return err
		}
		if isVariant && p.table.Type(typeID).Kind == schema.VariantKind {
			return diag.New(p.file, line, diag.UnsupportedComposition, "variant alternatives cannot themselves be variants")
		}
		if _, exists := flat.FieldByName(name); exists {
			return diag.Newf(p.file, line, diag.DuplicateDeclaration, "duplicate field name %q", name)
		}
		field := schema.Field{Name: name, Type: typeID, Index: flat.NextIndex(), Status: schema.Ordinary}
		if p.tok.Type == lexer.Eq {
			if err := p.advance(); err != nil {
				return err
			}
			val, err := p.parseLiteralValue()
			if err != nil {
				return err
			}
			field.Value = val
		}
		flat.Fields = append(flat.Fields, field)
		return nil
	default:
		return p.errf(diag.BadGrammar, "expected a field, found %s", p.tok.Type)
	}
}

func (p *Parser) parseLiteralValue() (int64, error) {
	switch p.tok.Type {
	case lexer.Number:
		n, err := strconv.ParseInt(p.tok.Text, 10, 64)
		if err != nil {
			return 0, p.errf(diag.BadGrammar, "bad integer literal %q", p.tok.Text)
		}
		return n, p.advance()
	case lexer.QualifiedEnumerator:
		text := p.tok.Text
		val, err := p.resolveQualifiedEnumerator(text)
		if err != nil {
			return 0, err
		}
		return val, p.advance()
	default:
		return 0, p.errf(diag.BadGrammar, "expected a number or Enum::Member, found %s", p.tok.Type)
	}
}

func (p *Parser) resolveQualifiedEnumerator(text string) (int64, error) {
	enumName, member, ok := strings.Cut(text, "::")
	if !ok {
		return 0, p.errf(diag.BadGrammar, "malformed qualified enumerator %q", text)
	}
	typeID, ok := p.table.Lookup(enumName)
	if !ok {
		return 0, p.errf(diag.UndefinedName, "undefined enumeration %q", enumName)
	}
	typ := p.table.Type(typeID)
	if typ.Kind != schema.EnumerationKind {
		return 0, p.errf(diag.BadGrammar, "%q is not an enumeration", enumName)
	}
	enumFlat := p.table.Flat(typ.Flat)
	field, ok := enumFlat.FieldByName(member)
	if !ok {
		return 0, p.errf(diag.UndefinedName, "enumeration %q has no member %q", enumName, member)
	}
	return field.Value, nil
}

// parseEnum implements `ebody := '{' enumerator* '}'`, assigning each
// enumerator its predecessor's value plus one when no explicit value is
// given, starting at 0.
func (p *Parser) parseEnum(name string, line int) error {
	if err := p.advance(); err != nil { // consume 'enum'
		return err
	}
	flatID, err := p.defineFlat(name, line, schema.EnumerationKind)
	if err != nil {
		return err
	}
	flat := p.table.Flat(flatID)
	if _, err := p.expect(lexer.LBrace); err != nil {
		return err
	}
	next := int64(0)
	for p.tok.Type != lexer.RBrace {
		mname, err := p.expectName()
		if err != nil {
			return err
		}
		val := next
		if p.tok.Type == lexer.Colon {
			if err := p.advance(); err != nil {
				return err
			}
			tok, err := p.expect(lexer.Number)
			if err != nil {
				return err
			}
			val, err = strconv.ParseInt(tok.Text, 10, 64)
			if err != nil {
				return p.errf(diag.BadGrammar, "bad enumerator value %q", tok.Text)
			}
		}
		if _, exists := flat.FieldByName(mname); exists {
			return diag.Newf(p.file, line, diag.DuplicateDeclaration, "duplicate enumerator %q", mname)
		}
		flat.Fields = append(flat.Fields, schema.Field{
			Name: mname, Type: schema.NoType, Index: flat.NextIndex(), Value: val, Status: schema.Ordinary,
		})
		next = val + 1
		if p.tok.Type == lexer.Semi || p.tok.Type == lexer.Comma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return p.advanceRBrace()
}

// parseView implements `view := 'view' 'of' name body?`.
func (p *Parser) parseView(name string, line int) error {
	if err := p.advance(); err != nil { // consume 'view'
		return err
	}
	if _, err := p.expect(lexer.KwOf); err != nil {
		return err
	}
	baseName, err := p.expectName()
	if err != nil {
		return err
	}
	baseTypeID := p.table.LookupOrPlaceholder(baseName)
	baseFlatID := p.table.Type(baseTypeID).Flat

	flatID, err := p.defineFlat(name, line, schema.ViewKind)
	if err != nil {
		return err
	}
	flat := p.table.Flat(flatID)
	baseFlat := p.table.Flat(baseFlatID)
	flat.Underlying = baseFlatID

	if p.tok.Type != lexer.LBrace {
		// No body: the view copies the base flat's entire field list by
		// reference (same Field values, same indices).
		flat.Fields = append(flat.Fields, baseFlat.Fields...)
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	for p.tok.Type != lexer.RBrace {
		fname, err := p.expectName()
		if err != nil {
			return err
		}
		field, ok := baseFlat.FieldByName(fname)
		if !ok {
			return diag.Newf(p.file, line, diag.UndefinedName, "view selects unknown field %q of %q", fname, baseName)
		}
		flat.Fields = append(flat.Fields, field)
		if p.tok.Type == lexer.Semi || p.tok.Type == lexer.Comma {
			if err := p.advance(); err != nil {
				return err
			}
		}
	}
	return p.advanceRBrace()
}

// parseMessage implements `message := 'message' 'of' name`.
func (p *Parser) parseMessage(name string, line int) error {
	if err := p.advance(); err != nil { // consume 'message'
		return err
	}
	if _, err := p.expect(lexer.KwOf); err != nil {
		return err
	}
	baseName, err := p.expectName()
	if err != nil {
		return err
	}
	baseTypeID := p.table.LookupOrPlaceholder(baseName)
	baseFlatID := p.table.Type(baseTypeID).Flat

	flatID, err := p.defineFlat(name, line, schema.MessageKind)
	if err != nil {
		return err
	}
	p.table.Flat(flatID).Underlying = baseFlatID
	return nil
}

// parseType implements the `type` nonterminal, including the array-suffix
// loop and the optional/vector/fixed_vector normalisation rules.
func (p *Parser) parseType() (schema.TypeID, error) {
	line := p.tok.Line
	var base schema.TypeID

	switch p.tok.Type {
	case lexer.KwOptional:
		id, err := p.parseOptional(line)
		if err != nil {
			return schema.NoType, err
		}
		base = id
	case lexer.KwVector:
		id, err := p.parseVector(line)
		if err != nil {
			return schema.NoType, err
		}
		base = id
	case lexer.KwFixedVector:
		id, err := p.parseFixedVector(line)
		if err != nil {
			return schema.NoType, err
		}
		base = id
	case lexer.KwString:
		if err := p.advance(); err != nil {
			return schema.NoType, err
		}
		id, ok := p.table.Lookup("string")
		if !ok {
			return schema.NoType, p.errf(diag.BadGrammar, "predefined type 'string' is missing from the catalog")
		}
		base = id
	case lexer.Name:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return schema.NoType, err
		}
		base = p.table.LookupOrPlaceholder(name)
	default:
		return schema.NoType, p.errf(diag.BadGrammar, "expected a type, found %s", p.tok.Type)
	}

	for p.tok.Type == lexer.LBracket {
		if err := p.advance(); err != nil {
			return schema.NoType, err
		}
		tok, err := p.expect(lexer.Number)
		if err != nil {
			return schema.NoType, err
		}
		n, err := strconv.Atoi(tok.Text)
		if err != nil || n <= 0 {
			return schema.NoType, p.errf(diag.BadArrayCount, "bad array count %q", tok.Text)
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return schema.NoType, err
		}
		inner := p.table.Type(base)
		base = p.table.AddType(schema.Type{
			Kind:  schema.ArrayKind,
			Inner: base,
			Count: n,
			Size:  n * inner.Size,
			Align: inner.Align,
		})
	}
	return base, nil
}

func (p *Parser) parseOptional(line int) (schema.TypeID, error) {
	if err := p.advance(); err != nil { // consume 'optional'
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.LAngle); err != nil {
		return schema.NoType, err
	}
	inner, err := p.parseType()
	if err != nil {
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.RAngle); err != nil {
		return schema.NoType, err
	}
	innerType := p.table.Type(inner)
	switch innerType.Kind {
	case schema.OptionalKind, schema.VariantKind, schema.VectorKind, schema.StringKind:
		return inner, nil // collapses to the inner type
	}
	if innerType.Kind == schema.FlatKind {
		p.table.Flat(innerType.Flat).UsedAsOptional = true
	}
	return p.table.AddType(schema.Type{
		Kind:  schema.OptionalKind,
		Inner: inner,
		Size:  innerType.Align + innerType.Size,
		Align: innerType.Align,
	}), nil
}

func (p *Parser) parseVector(line int) (schema.TypeID, error) {
	if err := p.advance(); err != nil { // consume 'vector'
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.LAngle); err != nil {
		return schema.NoType, err
	}
	inner, err := p.parseType()
	if err != nil {
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.RAngle); err != nil {
		return schema.NoType, err
	}
	if p.table.Type(inner).Kind == schema.VariantKind {
		return schema.NoType, diag.New(p.file, line, diag.UnsupportedComposition, "vector<variant<...>> is rejected")
	}
	return p.table.AddType(schema.Type{
		Kind:  schema.VectorKind,
		Inner: inner,
		Size:  vectorHeaderSize,
		Align: vectorHeaderAlign,
	}), nil
}

func (p *Parser) parseFixedVector(line int) (schema.TypeID, error) {
	if err := p.advance(); err != nil { // consume 'fixed_vector'
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.LAngle); err != nil {
		return schema.NoType, err
	}
	inner, err := p.parseType()
	if err != nil {
		return schema.NoType, err
	}
	if _, err := p.expect(lexer.Comma); err != nil {
		return schema.NoType, err
	}
	tok, err := p.expect(lexer.Number)
	if err != nil {
		return schema.NoType, err
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil || n <= 0 {
		return schema.NoType, p.errf(diag.BadArrayCount, "bad fixed_vector count %q", tok.Text)
	}
	if _, err := p.expect(lexer.RAngle); err != nil {
		return schema.NoType, err
	}
	innerType := p.table.Type(inner)
	if innerType.Kind == schema.VariantKind {
		return schema.NoType, diag.New(p.file, line, diag.UnsupportedComposition, "fixed_vector<variant<...>> is rejected")
	}
	// Every fixed_vector carries a 2-byte used-count ahead of its [N]T
	// backing array. usedArea rounds that up to the element's own alignment
	// so the array itself starts correctly aligned — for elements aligned
	// stricter than 2 bytes usedArea is the element's align (itself a
	// multiple of 2), otherwise it's just the 2 bytes the counter needs.
	usedArea := 2
	if innerType.Align > usedArea {
		usedArea = innerType.Align
	}
	return p.table.AddType(schema.Type{
		Kind:  schema.VarrayKind,
		Inner: inner,
		Count: n,
		Size:  usedArea + n*innerType.Size,
		Align: usedArea,
	}), nil
}

// vectorHeaderSize/vectorHeaderAlign mirror flats.VectorHeaderSize: every
// vector/string field is a {Size, Offset} header in the fixed part,
// regardless of element type. Duplicated here (rather than imported) to
// keep pkg/parser free of a dependency on the runtime contracts package.
const (
	vectorHeaderSize  = 4
	vectorHeaderAlign = 2
)

// validateNoContainerOfVariant re-checks every vector/fixed_vector Type
// built from a forward reference that was still undefined at the point of
// use — the in-line check in parseVector/parseFixedVector only catches
// variants already defined by then.
func validateNoContainerOfVariant(table *schema.Table, file string) error {
	for id := schema.TypeID(0); int(id) < table.NumTypes(); id++ {
		typ := table.Type(id)
		if typ.Kind != schema.VectorKind && typ.Kind != schema.VarrayKind {
			continue
		}
		if table.Type(typ.Inner).Kind == schema.VariantKind {
			return diag.New(file, 0, diag.UnsupportedComposition, "vector/fixed_vector of variant is rejected")
		}
	}
	return nil
}
