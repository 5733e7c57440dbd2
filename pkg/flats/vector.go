package flats

// VectorHeader is the in-buffer representation every Vector<T> and String
// field boils down to: a count and a position relative to the header's own
// offset. Generated accessors read/write this header directly at a field's
// computed offset; this type exists so the handful of operations on it
// (begin/end/alloc/push) live in one place instead of being re-derived by
// every emitter.
type VectorHeader struct {
	Len Size
	Pos Offset
}

// DecodeVectorHeader reads a VectorHeader from buf at byteOffset.
func DecodeVectorHeader(buf []byte, byteOffset int) VectorHeader {
	return VectorHeader{
		Len: Size(int16(buf[byteOffset]) | int16(buf[byteOffset+1])<<8),
		Pos: Offset(int16(buf[byteOffset+2]) | int16(buf[byteOffset+3])<<8),
	}
}

// EncodeVectorHeader writes h to buf at byteOffset.
func EncodeVectorHeader(buf []byte, byteOffset int, h VectorHeader) {
	buf[byteOffset] = byte(h.Len)
	buf[byteOffset+1] = byte(h.Len >> 8)
	buf[byteOffset+2] = byte(h.Pos)
	buf[byteOffset+3] = byte(h.Pos >> 8)
}

// VectorHeaderSize is sizeof(VectorHeader): every Vector<T> and string field
// occupies exactly this many bytes in a flat's fixed part, regardless of T.
const VectorHeaderSize = 4

// vectorElemsOffset returns the absolute byte offset of a vector's elements,
// given the absolute offset of its header.
func vectorElemsOffset(headerOffset int, h VectorHeader) int {
	return headerOffset + int(h.Pos)
}

// VectorBegin returns a Span over the elements of the vector whose header
// lives at headerOffset within buf.
func VectorBegin[T any](buf []byte, headerOffset int) Span[T] {
	h := DecodeVectorHeader(buf, headerOffset)
	if h.Len == 0 {
		return Span[T]{}
	}
	start := vectorElemsOffset(headerOffset, h)
	width := elemWidth[T]()
	return SpanOver[T](buf[start:start+int(h.Len)*width], int(h.Len))
}

// VectorAlloc reserves n uninitialised elements of width elemSize in a's
// tail and writes the resulting header at headerOffset, relative to
// headerOffset itself (the contract: "pos is relative to self").
func VectorAlloc(buf []byte, a *Allocator, headerOffset, elemSize, n int) error {
	abs, err := a.Allocate(n * elemSize)
	if err != nil {
		return err
	}
	EncodeVectorHeader(buf, headerOffset, VectorHeader{
		Len: Size(n),
		Pos: AbsoluteToRelative(abs, headerOffset),
	})
	return nil
}

// VectorPlaceString copies s into a's tail and records the resulting header
// at headerOffset — the string-setter placement path.
func VectorPlaceString(buf []byte, a *Allocator, headerOffset int, s string) error {
	if err := VectorAlloc(buf, a, headerOffset, 1, len(s)); err != nil {
		return err
	}
	h := DecodeVectorHeader(buf, headerOffset)
	copy(buf[vectorElemsOffset(headerOffset, h):], s)
	return nil
}

// VectorCanPush reports how many more elements of width elemSize can be
// appended to the vector at headerOffset without reallocating — which is
// nonzero only when that vector is the tail's last allocated object, per
// the concurrency model's "last object in the tail" rule.
func VectorCanPush(buf []byte, a *Allocator, headerOffset, elemSize int) int {
	h := DecodeVectorHeader(buf, headerOffset)
	end := vectorElemsOffset(headerOffset, h) + int(h.Len)*elemSize
	if end != int(a.Next) {
		return 0
	}
	return (int(a.Max) - end) / elemSize
}

// VectorPush grows the vector at headerOffset by one element, returning the
// absolute byte offset the new element was reserved at. Raises
// FixedArrayOverflow if the vector is not the tail's last allocation, and
// TailTooBig (from Allocate) if the tail has no room.
func VectorPush(buf []byte, a *Allocator, headerOffset, elemSize int) (int, error) {
	h := DecodeVectorHeader(buf, headerOffset)
	end := vectorElemsOffset(headerOffset, h) + int(h.Len)*elemSize
	ok := end == int(a.Next)
	if err := Expect(FixedArrayHandling, func() bool { return ok }, FixedArrayOverflow); err != nil {
		return 0, err
	}
	if _, err := a.Allocate(elemSize); err != nil {
		return 0, err
	}
	h.Len++
	EncodeVectorHeader(buf, headerOffset, h)
	return end, nil
}
