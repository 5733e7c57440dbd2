package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatlang/flatc/pkg/layout"
	"github.com/flatlang/flatc/pkg/parser"
)

func TestEmitDirectPairGetterSetter(t *testing.T) {
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	pair := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, pair)
	assert.Contains(t, out, "func (d Pair_direct) X() int32")
	assert.Contains(t, out, "func (d Pair_direct) SetX(v int32)")
	assert.Contains(t, out, "func NewPair_direct(buf []byte, base int) Pair_direct")
	assert.NotContains(t, out, "allo", "Pair has no tail-growing field, so no allocator")
}

func TestEmitDirectStringFieldNeedsAllocator(t *testing.T) {
	prog, err := parser.Parse("S : flat { n:int32 s:string }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	s := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, s)
	assert.Contains(t, out, "allo *flats.Allocator")
	assert.Contains(t, out, "func (d S_direct) S() string")
	assert.Contains(t, out, "func (d S_direct) SetS(v string) error")
	assert.Contains(t, out, "flats.VectorPlaceString(d.buf, d.allo,")
}

func TestEmitVariantDirectChecksTagBeforeRead(t *testing.T) {
	prog, err := parser.Parse("V : variant { i:int32 ; s:string }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	v := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, v)
	assert.Contains(t, out, "func (v V_direct) Tag() uint8")
	assert.Contains(t, out, "flats.ExpectVariantTag(v.buf, v.base, 1)")
	assert.Contains(t, out, "flats.ExpectVariantTag(v.buf, v.base, 2)")
	assert.Contains(t, out, "flats.VariantAllocate(v.buf, v.allo, v.base, 2,")
}

func TestEmitViewUsesOffsetTableNotConstants(t *testing.T) {
	prog, err := parser.Parse("F : flat { a:int32 b:int32 c:int32 } ; V : view of F { c a }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	v := prog.Table.Flat(prog.Order[1])

	out := EmitView(prog.Table, v)
	assert.Contains(t, out, "type V_view struct")
	assert.Contains(t, out, "v.base+v.m[2]", "c keeps its original index 2 from F")
	assert.Contains(t, out, "v.base+v.m[0]", "a keeps its original index 0 from F")
	assert.NotContains(t, out, "allo")
}

func TestEmitDirectArrayAndVarrayFields(t *testing.T) {
	prog, err := parser.Parse("F : flat { a:int32[4] b:fixed_vector<int8,6> }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	f := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, f)
	assert.Contains(t, out, "func (d F_direct) A() flats.Span[int32]")
	assert.Contains(t, out, "flats.SpanOver[int32](d.buf[")
	assert.Contains(t, out, "func (d F_direct) BUsed() flats.Size")
	assert.Contains(t, out, "func (d F_direct) B() flats.Span[int8]")
	assert.Contains(t, out, "func (d F_direct) PushB(v int8) error")
	assert.Contains(t, out, "flats.FixedVectorPush(")
}

func TestEmitDirectOptionalField(t *testing.T) {
	prog, err := parser.Parse("F : flat { n:optional<int32> }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	f := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, f)
	assert.Contains(t, out, "func (d F_direct) HasN() bool")
	assert.Contains(t, out, "func (d F_direct) N() (int32, error)")
	assert.Contains(t, out, "func (d F_direct) SetN(v int32)")
	assert.Contains(t, out, "func (d F_direct) ClearN()")
	assert.Contains(t, out, "flats.OptionalValueOffset(")
}

func TestEmitDirectPresetFieldQualifiesFlatsPackage(t *testing.T) {
	prog, err := parser.Parse("F : flat { t:time_point k:int24 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	f := prog.Table.Flat(prog.Order[0])

	out := EmitDirect(prog.Table, f)
	assert.Contains(t, out, "func (d F_direct) T() flats.TimePoint")
	assert.Contains(t, out, "flats.SpanOver[flats.TimePoint](")
	assert.Contains(t, out, "func (d F_direct) K() flats.Int24")
	assert.NotContains(t, out, ") TimePoint", "an unqualified name would not compile in package flatsgen")

	full, err := Generate(prog, ActionDirect)
	require.NoError(t, err)
	assert.Contains(t, full, "import \"github.com/flatlang/flatc/pkg/flats\"", "a preset-only field must still trigger the flats import")
}

func TestEmitDirectNestedFlatFieldDispatchesOnChildAllocator(t *testing.T) {
	prog, err := parser.Parse("Inner : flat { x:int32 } ; WithTail : flat { s:string } ; Outer : flat { a:Inner b:WithTail }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	outer := prog.Table.Flat(prog.Order[2])

	out := EmitDirect(prog.Table, outer)
	assert.Contains(t, out, "func (d Outer_direct) A() Inner_direct")
	assert.Contains(t, out, "return NewInner_direct(d.buf,")
	assert.NotContains(t, out, "NewInner_direct(d.buf, d.base+Outer_A_Offset, d.allo)")
	assert.Contains(t, out, "func (d Outer_direct) B() WithTail_direct")
	assert.Contains(t, out, "return NewWithTail_direct(d.buf,")
}

func TestEmitDirectOptionalFlatFieldDelegatesToChildAccessor(t *testing.T) {
	prog, err := parser.Parse("Inner : flat { x:int32 } ; Outer : flat { n:optional<Inner> }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	outer := prog.Table.Flat(prog.Order[1])

	out := EmitDirect(prog.Table, outer)
	assert.Contains(t, out, "func (d Outer_direct) HasN() bool")
	assert.Contains(t, out, "func (d Outer_direct) N() (Inner_direct, error)")
	assert.Contains(t, out, "flats.OptionalNotPresent")
	assert.Contains(t, out, "func (d Outer_direct) SetN() Inner_direct")
	assert.Contains(t, out, "func (d Outer_direct) ClearN()")
	assert.NotContains(t, out, "NBytes", "optional<flat> must not fall back to the raw accessor")
}

func TestEmitDirectVectorAndArrayOfFlatFields(t *testing.T) {
	prog, err := parser.Parse("Elem : flat { x:int32 } ; F : flat { vs:vector<Elem> as:Elem[3] }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	f := prog.Table.Flat(prog.Order[1])

	out := EmitDirect(prog.Table, f)
	assert.Contains(t, out, "func (d F_direct) Vs() flats.SpanRef[Elem_direct]")
	assert.Contains(t, out, "flats.VectorRefBegin(d.buf,")
	assert.Contains(t, out, "func (d F_direct) As() flats.SpanRef[Elem_direct]")
	assert.Contains(t, out, "flats.SpanRefOver(d.buf,")
	assert.NotContains(t, out, "VsBytes")
	assert.NotContains(t, out, "AsBytes")
}

func TestEmitMessageEnvelopeHasPlacementFactories(t *testing.T) {
	prog, err := parser.Parse("F : flat { a:int32 s:string } ; M : message of F", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	m := prog.Table.Flat(prog.Order[1])

	out := EmitMessage(prog.Table, m)
	assert.Contains(t, out, "func PlaceM(buf []byte, bufSize, tailSize int) (M, error)")
	assert.Contains(t, out, "func PlaceMReader(buf []byte, n int) (M, error)")
	assert.Contains(t, out, "func (m M) Clone(dest []byte) (M, error)")
	assert.Contains(t, out, "func (m M) CurrentSize() int")
	assert.Contains(t, out, "func (m M) CurrentCapacity() flats.Size")
}

func TestEmitMessageOmitsAllocatorWhenBodyNeedsNone(t *testing.T) {
	prog, err := parser.Parse("F : flat { a:int32 b:int32 } ; M : message of F", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	m := prog.Table.Flat(prog.Order[1])

	out := EmitMessage(prog.Table, m)
	assert.Contains(t, out, "type M struct {\n\tbuf []byte\n}")
	assert.NotContains(t, out, "allo", "F needs no allocator, so M must not carry one either")
	assert.NotContains(t, out, "M_AllocatorOffset")
	assert.Contains(t, out, "func (m M) Direct() F_direct {\n\treturn NewF_direct(m.buf, M_BodyOffset)\n}")
	assert.Contains(t, out, "func (m M) CurrentCapacity() flats.Size {\n\treturn 0\n}")
	assert.Contains(t, out, "func PlaceM(buf []byte, bufSize, tailSize int) (M, error)")
	assert.Contains(t, out, "func PlaceMReader(buf []byte, n int) (M, error)")
	assert.NotContains(t, out, "func (m M) Sync()")
}

func TestGenerateDirectActionProducesCompilableLookingSource(t *testing.T) {
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	out, err := Generate(prog, ActionDirect)
	require.NoError(t, err)
	assert.Contains(t, out, "package flatsgen")
	assert.Contains(t, out, "type Pair struct")
	assert.Contains(t, out, "type Pair_direct struct")
	assert.NotContains(t, out, "Pair_view")
}

func TestGenerateViewActionOmitsStruct(t *testing.T) {
	// Mirrors the original driver: a view/packed_view run never re-prints
	// the layout struct, only the view wrapper.
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	out, err := Generate(prog, ActionView)
	require.NoError(t, err)
	assert.Contains(t, out, "type Pair_view struct")
	assert.NotContains(t, out, "type Pair struct")
	assert.NotContains(t, out, "Pair_direct")
}

func TestGeneratePackedActionFlipsLayout(t *testing.T) {
	prog, err := parser.Parse("S : flat { a:int8 b:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))
	s := prog.Table.Flat(prog.Order[0])
	require.Equal(t, 8, s.FixedSize, "naturally aligned by default")

	out, err := Generate(prog, ActionPacked)
	require.NoError(t, err)
	assert.Equal(t, 5, s.FixedSize, "packed action must flip flat.Packed and re-layout — Design Note (d)")
	assert.Contains(t, out, "Packed: fields are placed back to back")
	assert.Contains(t, strings.TrimSpace(out), "package flatsgen")
}

func TestGenerateOmitsUnusedImports(t *testing.T) {
	prog, err := parser.Parse("E : enum { a b c }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	out, err := Generate(prog, ActionDirect)
	require.NoError(t, err)
	assert.NotContains(t, out, "\"unsafe\"", "an enum-only schema never touches unsafe")
	assert.NotContains(t, out, "pkg/flats", "an enum-only schema never touches the runtime package")

	prog2, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog2))
	out2, err := Generate(prog2, ActionDirect)
	require.NoError(t, err)
	assert.Contains(t, out2, "pkg/flats", "scalar accessors still need flats.SpanOver")
	assert.NotContains(t, out2, "\"unsafe\"", "no vector<scalar> field means no unsafe.Sizeof use")
}

func TestGenerateEnumEmitsConstantsOnly(t *testing.T) {
	prog, err := parser.Parse("E : enum { a b:5 c }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	out, err := Generate(prog, ActionDirect)
	require.NoError(t, err)
	assert.Contains(t, out, "E_a E = 0")
	assert.Contains(t, out, "E_b E = 5")
	assert.Contains(t, out, "E_c E = 6")
}

func TestGenerateFilesOneFilePerFlat(t *testing.T) {
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 } ; M : message of Pair", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	files, err := GenerateFiles(prog, ActionDirect)
	require.NoError(t, err)
	require.Contains(t, files, "pair.go")
	require.Contains(t, files, "m.go")
	assert.Contains(t, files["pair.go"], "type Pair_direct struct")
	assert.NotContains(t, files["pair.go"], "func PlaceM(")
	assert.Contains(t, files["m.go"], "func PlaceM(")
	assert.NotContains(t, files["m.go"], "type Pair_direct struct")
	assert.Contains(t, files["pair.go"], "package flatsgen")
}

func TestGenerateFilesRejectsDebug(t *testing.T) {
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	_, err = GenerateFiles(prog, ActionDebug)
	require.Error(t, err)
}

func TestGenerateDebugDumpsEveryFlat(t *testing.T) {
	prog, err := parser.Parse("Pair : flat { x:int32 y:int32 }", "t")
	require.NoError(t, err)
	require.NoError(t, layout.Program(prog))

	out, err := Generate(prog, ActionDebug)
	require.NoError(t, err)
	assert.Contains(t, out, "Pair")
}
