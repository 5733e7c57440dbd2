package flats

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorTailBoundsSafety(t *testing.T) {
	buf := make([]byte, 32)
	a := NewAllocator(buf, 8, 8, 20)

	_, err := a.Allocate(8)
	require.NoError(t, err)
	assert.EqualValues(t, 16, a.Next)

	_, err = a.Allocate(4)
	require.NoError(t, err)
	assert.EqualValues(t, 20, a.Next)

	_, err = a.Allocate(1)
	require.ErrorIs(t, err, ErrTailTooBig)
	assert.EqualValues(t, 20, a.Next, "a failed allocation must not move Next")
}

func TestAllocatorPlaceTruncation(t *testing.T) {
	buf := make([]byte, 16)
	a := NewAllocator(buf, 4, 4, 10)

	_, err := a.Place("toolong")
	require.ErrorIs(t, err, ErrCstringOverflow)
	assert.EqualValues(t, 4, a.Next)

	ref, err := a.Place("ok")
	require.NoError(t, err)
	assert.EqualValues(t, 4, ref.Pos)
	assert.EqualValues(t, 2, ref.Size)
	assert.Equal(t, "ok", string(buf[ref.Pos:int(ref.Pos)+int(ref.Size)]))
}

func TestVectorAllocAndPush(t *testing.T) {
	buf := make([]byte, 64)
	headerOffset := 8
	a := NewAllocator(buf, 12, 12, 64)

	require.NoError(t, VectorAlloc(buf, a, headerOffset, 4, 2))
	s := VectorBegin[int32](buf, headerOffset)
	require.Equal(t, 2, s.Len())
	require.NoError(t, s.Set(0, 10))
	require.NoError(t, s.Set(1, 20))

	room := VectorCanPush(buf, a, headerOffset, 4)
	assert.Greater(t, room, 0)

	off, err := VectorPush(buf, a, headerOffset, 4)
	require.NoError(t, err)
	reinterpret[int32](buf[off : off+4])[0] = 30

	s = VectorBegin[int32](buf, headerOffset)
	require.Equal(t, 3, s.Len())
	v0, _ := s.At(0)
	v1, _ := s.At(1)
	v2, _ := s.At(2)
	assert.EqualValues(t, 10, v0)
	assert.EqualValues(t, 20, v1)
	assert.EqualValues(t, 30, v2)
}

func TestVectorPushRejectsWhenNotLastAllocation(t *testing.T) {
	buf := make([]byte, 64)
	headerOffset := 8
	a := NewAllocator(buf, 12, 12, 64)
	require.NoError(t, VectorAlloc(buf, a, headerOffset, 4, 1))

	_, err := a.Allocate(4) // unrelated allocation now sits after the vector
	require.NoError(t, err)

	_, err = VectorPush(buf, a, headerOffset, 4)
	require.ErrorIs(t, err, ErrFixedArrayOverflow)
}

func TestVectorPlaceString(t *testing.T) {
	buf := make([]byte, 32)
	headerOffset := 4
	a := NewAllocator(buf, 8, 8, 32)

	require.NoError(t, VectorPlaceString(buf, a, headerOffset, "hi"))
	s := VectorBegin[byte](buf, headerOffset)
	assert.Equal(t, "hi", SpanString(s))
	assert.EqualValues(t, 10, a.Next)
}

func TestOptionalRoundTrip(t *testing.T) {
	empty := Optional[int32]{}
	_, err := empty.Access()
	require.ErrorIs(t, err, ErrOptionalNotPresent)

	filled := NewOptional(int32(42))
	v, err := filled.Access()
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestOptionalBufferRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	flagOffset := 0
	valueOffset := OptionalValueOffset(flagOffset, 4)

	_, err := OptionalGet[int32](buf, flagOffset, valueOffset)
	require.ErrorIs(t, err, ErrOptionalNotPresent)

	OptionalSet[int32](buf, flagOffset, valueOffset, 7)
	v, err := OptionalGet[int32](buf, flagOffset, valueOffset)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v)

	OptionalClear(buf, flagOffset)
	_, err = OptionalGet[int32](buf, flagOffset, valueOffset)
	require.ErrorIs(t, err, ErrOptionalNotPresent)
}

func TestVariantRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	base := 0
	union := VariantUnionOffset(base)

	reinterpret[int32](buf[union:union+4])[0] = 99
	VariantSetInline(buf, base, 1)

	require.NoError(t, ExpectVariantTag(buf, base, 1))
	assert.EqualValues(t, 99, reinterpret[int32](buf[union:union+4])[0])

	err := ExpectVariantTag(buf, base, 2)
	require.ErrorIs(t, err, ErrVariantTag)
}

func TestVariantAllocatingAlternative(t *testing.T) {
	buf := make([]byte, 64)
	base := 4
	a := NewAllocator(buf, 20, 20, 64)

	abs, err := VariantAllocate(buf, a, base, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, abs)
	assert.Equal(t, abs, VariantAllocOffset(buf, base))
	require.NoError(t, ExpectVariantTag(buf, base, 2))
}

func TestFixedVectorOverflow(t *testing.T) {
	var arr [4]int32
	var used Size

	for i := 0; i < 4; i++ {
		require.NoError(t, FixedVectorPush(arr[:], &used, int32(i)))
	}
	err := FixedVectorPush(arr[:], &used, int32(99))
	require.ErrorIs(t, err, ErrFixedArrayOverflow)
	assert.EqualValues(t, 4, used)

	s := FixedVectorSpan(arr[:], used)
	assert.Equal(t, 4, s.Len())
}

func TestSpanBoundsChecking(t *testing.T) {
	buf := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	s := SpanOver[int32](buf, 2)

	_, err := s.At(5)
	require.ErrorIs(t, err, ErrBadSpanIndex)

	err = s.Set(5, 1)
	require.ErrorIs(t, err, ErrBadSpanIndex)
}

func TestHandlingModeIsSelectable(t *testing.T) {
	old := SpanIndexHandling
	SpanIndexHandling = Ignoring
	defer func() { SpanIndexHandling = old }()

	buf := []byte{1, 0, 0, 0}
	s := SpanOver[int32](buf, 1)
	_, err := s.At(5)
	require.NoError(t, err, "Ignoring must swallow the failure instead of returning ErrBadSpanIndex")

	buf2 := make([]byte, 16)
	a := NewAllocator(buf2, 4, 4, 10)
	a.SetHandling(Throwing)
	var logged []ErrorCode
	oldLogf := Logf
	Logf = func(code ErrorCode) { logged = append(logged, code) }
	defer func() { Logf = oldLogf }()

	_, err = a.Place("toolong")
	require.ErrorIs(t, err, ErrCstringOverflow)
	assert.Empty(t, logged, "Throwing skips Logf, unlike the Testing default")
}

func TestNarrowRejectsOutOfRange(t *testing.T) {
	_, err := Narrow(1 << 20)
	require.ErrorIs(t, err, ErrNarrowing)

	n, err := Narrow(123)
	require.NoError(t, err)
	assert.EqualValues(t, 123, n)
}

// Property 4: any allocation sequence whose cumulative size exceeds max
// raises tail_too_big and leaves prior allocations untouched.
func TestQuickTailBoundsSafety(t *testing.T) {
	prop := func(sizes []uint8, max uint8) bool {
		if max == 0 {
			max = 1
		}
		buf := make([]byte, 256)
		a := NewAllocator(buf, 0, 0, int(max))
		total := 0
		for _, raw := range sizes {
			n := int(raw % 32)
			before := a.Next
			_, err := a.Allocate(n)
			if total+n > int(max) {
				if err == nil {
					return false
				}
				if a.Next != before {
					return false
				}
			} else {
				if err != nil {
					return false
				}
				total += n
			}
		}
		return true
	}
	require.NoError(t, quick.Check(prop, nil))
}
