package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatlang/flatc/pkg/schema"
)

func TestParsesPairFlat(t *testing.T) {
	prog, err := Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.Len(t, prog.Order, 1)

	pair := prog.Table.Flat(prog.Order[0])
	assert.Equal(t, "Pair", pair.Name)
	require.Len(t, pair.Fields, 2)
	assert.Equal(t, "x", pair.Fields[0].Name)
	assert.Equal(t, "y", pair.Fields[1].Name)
	assert.Equal(t, schema.Int32, prog.Table.Type(pair.Fields[0].Type).Kind)
}

func TestParsesFlatWithString(t *testing.T) {
	prog, err := Parse("S : flat { n:int32 s:string }", "t")
	require.NoError(t, err)
	s := prog.Table.Flat(prog.Order[0])
	sType := prog.Table.Type(s.Fields[1].Type)
	assert.Equal(t, schema.StringKind, sType.Kind)
}

func TestVariantRoundTripsToStructDiscriminant(t *testing.T) {
	prog, err := Parse("V : variant { i:int32 ; s:string } ; M : flat { v:V }", "t")
	require.NoError(t, err)
	require.Len(t, prog.Order, 2)

	v := prog.Table.Flat(prog.Order[0])
	assert.Equal(t, schema.VariantKind, v.Kind)
	assert.Equal(t, "i", v.Fields[0].Name)
	assert.Equal(t, "s", v.Fields[1].Name)

	m := prog.Table.Flat(prog.Order[1])
	vFieldType := prog.Table.Type(m.Fields[0].Type)
	assert.Equal(t, schema.VariantKind, vFieldType.Kind)
	assert.Equal(t, prog.Order[0], vFieldType.Flat)
}

func TestEnumValuesDefaultAndExplicit(t *testing.T) {
	prog, err := Parse("E : enum { a b:5 c }", "t")
	require.NoError(t, err)
	e := prog.Table.Flat(prog.Order[0])
	require.Len(t, e.Fields, 3)
	assert.EqualValues(t, 0, e.Fields[0].Value)
	assert.EqualValues(t, 5, e.Fields[1].Value)
	assert.EqualValues(t, 6, e.Fields[2].Value)
}

func TestQualifiedEnumeratorResolvesToValue(t *testing.T) {
	prog, err := Parse("E : enum { a b:5 c } ; Other : flat { k:int32 = E::c }", "t")
	require.NoError(t, err)
	other := prog.Table.Flat(prog.Order[1])
	assert.EqualValues(t, 6, other.Fields[0].Value)
}

func TestSickoNestedOptionalVectorArray(t *testing.T) {
	prog, err := Parse("Sicko : flat { z : optional<vector<int32[10]>[20]>[30] }", "t")
	require.NoError(t, err)
	sicko := prog.Table.Flat(prog.Order[0])
	zType := prog.Table.Type(sicko.Fields[0].Type)

	// Outermost [30] suffix always wins: array of 30 optionals, not an
	// optional array (Design Note e).
	require.Equal(t, schema.ArrayKind, zType.Kind)
	assert.Equal(t, 30, zType.Count)

	optType := prog.Table.Type(zType.Inner)
	require.Equal(t, schema.OptionalKind, optType.Kind)

	innerArrayType := prog.Table.Type(optType.Inner)
	require.Equal(t, schema.ArrayKind, innerArrayType.Kind)
	assert.Equal(t, 20, innerArrayType.Count)

	vecType := prog.Table.Type(innerArrayType.Inner)
	require.Equal(t, schema.VectorKind, vecType.Kind)

	elemArrayType := prog.Table.Type(vecType.Inner)
	require.Equal(t, schema.ArrayKind, elemArrayType.Kind)
	assert.Equal(t, 10, elemArrayType.Count)
	assert.Equal(t, schema.Int32, prog.Table.Type(elemArrayType.Inner).Kind)
}

func TestFixedVectorBuf(t *testing.T) {
	prog, err := Parse("Buf : flat { v : fixed_vector<int32, 4> }", "t")
	require.NoError(t, err)
	buf := prog.Table.Flat(prog.Order[0])
	vType := prog.Table.Type(buf.Fields[0].Type)
	assert.Equal(t, schema.VarrayKind, vType.Kind)
	assert.Equal(t, 4, vType.Count)
}

func TestOptionalCollapsing(t *testing.T) {
	prog, err := Parse("S : flat { a:optional<optional<int32>> b:optional<string> c:optional<vector<int32>> }", "t")
	require.NoError(t, err)
	s := prog.Table.Flat(prog.Order[0])

	assert.Equal(t, schema.OptionalKind, prog.Table.Type(s.Fields[0].Type).Kind, "optional<optional<T>> collapses to optional<T>")
	assert.Equal(t, schema.StringKind, prog.Table.Type(s.Fields[1].Type).Kind, "optional<string> collapses to string")
	assert.Equal(t, schema.VectorKind, prog.Table.Type(s.Fields[2].Type).Kind, "optional<vector<T>> collapses to vector<T>")
}

func TestOptionalOfFlatMarksUsedAsOptional(t *testing.T) {
	prog, err := Parse("F : flat { x:int32 } ; G : flat { f:optional<F> }", "t")
	require.NoError(t, err)
	f := prog.Table.Flat(prog.Order[0])
	assert.True(t, f.UsedAsOptional)
}

func TestForwardReferenceResolves(t *testing.T) {
	prog, err := Parse("M : flat { n : Node } ; Node : flat { x:int32 }", "t")
	require.NoError(t, err)
	require.Len(t, prog.Order, 2)

	m := prog.Table.Flat(prog.Order[0])
	nodeFieldType := prog.Table.Type(m.Fields[0].Type)
	assert.Equal(t, schema.FlatKind, nodeFieldType.Kind)
	assert.Equal(t, prog.Order[1], nodeFieldType.Flat)
}

func TestLingeringUndefinedIsAnError(t *testing.T) {
	_, err := Parse("M : flat { n : Ghost }", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestDuplicateDeclarationIsAnError(t *testing.T) {
	_, err := Parse("Pair : flat { x:int32 } ; Pair : flat { y:int32 }", "t")
	require.Error(t, err)
}

func TestVectorOfVariantIsRejected(t *testing.T) {
	_, err := Parse("V : variant { i:int32 } ; S : flat { vs : vector<V> }", "t")
	require.Error(t, err)
}

func TestFixedVectorOfVariantIsRejected(t *testing.T) {
	_, err := Parse("V : variant { i:int32 } ; S : flat { vs : fixed_vector<V, 4> }", "t")
	require.Error(t, err)
}

func TestDeprecateAndDeleteConsumeIndicesWithoutType(t *testing.T) {
	prog, err := Parse("S : flat { a:int32 deprecate b delete c d:int32 }", "t")
	require.NoError(t, err)
	s := prog.Table.Flat(prog.Order[0])
	require.Len(t, s.Fields, 4)
	assert.Equal(t, schema.Deprecating, s.Fields[1].Status)
	assert.Equal(t, schema.NoType, s.Fields[1].Type)
	assert.Equal(t, schema.Deleted, s.Fields[2].Status)
	assert.Equal(t, 3, s.Fields[3].Index)

	live := s.LiveFields()
	require.Len(t, live, 2)
	assert.Equal(t, "a", live[0].Name)
	assert.Equal(t, "d", live[1].Name)
}

func TestViewOfSelectsSubset(t *testing.T) {
	prog, err := Parse("F : flat { a:int32 b:int32 c:int32 } ; V : view of F { c a }", "t")
	require.NoError(t, err)
	v := prog.Table.Flat(prog.Order[1])
	require.Len(t, v.Fields, 2)
	assert.Equal(t, "c", v.Fields[0].Name)
	assert.Equal(t, "a", v.Fields[1].Name)
}

func TestViewOfWithNoBodyCopiesAllFields(t *testing.T) {
	prog, err := Parse("F : flat { a:int32 b:int32 } ; V : view of F", "t")
	require.NoError(t, err)
	v := prog.Table.Flat(prog.Order[1])
	require.Len(t, v.Fields, 2)
}

func TestMessageOfWrapsFlat(t *testing.T) {
	prog, err := Parse("F : flat { a:int32 } ; M : message of F", "t")
	require.NoError(t, err)
	m := prog.Table.Flat(prog.Order[1])
	assert.Equal(t, schema.MessageKind, m.Kind)
	assert.Equal(t, prog.Order[0], m.Underlying)
}
