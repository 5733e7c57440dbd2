// Package flats is the runtime contract library every piece of generated
// code depends on: the bump-allocated tail, the in-buffer container types
// (Vector, Optional, Array, Fixed_vector), Span views over them, and the
// shared error taxonomy. None of it parses or generates anything; it only
// gives emitted accessors something to call.
package flats

import (
	"unsafe"
)

// Offset and Size mirror the original runtime's 16-bit measurements: a
// flat or message never needs more than 32767 bytes of fixed part or tail,
// and keeping them narrow is part of the on-wire contract.
type Offset = int16
type Size = int16

// Empty and Default are sentinel argument tags used by generated placement
// setters to disambiguate "construct an absent optional" from "construct a
// zero-valued optional" when a plain value argument would be ambiguous.
type Empty struct{}
type Default struct{}

// Narrow converts x to an Offset/Size, raising Narrowing if x doesn't fit.
func Narrow(x int) (Offset, error) {
	n := Offset(x)
	if err := Expect(NarrowingHandling, func() bool { return int(n) == x }, Narrowing); err != nil {
		return 0, err
	}
	return n, nil
}

// reinterpret views buf as a []T without copying, the same unsafe.Slice
// trick the teacher's UnsafeStrings/UnsafePrimitives options use to alias
// bytes as typed data. The caller guarantees buf is at least n*sizeof(T)
// long and suitably aligned (emitted accessors only ever call this at
// offsets the layout engine already aligned for T).
func reinterpret[T any](buf []byte) []T {
	if len(buf) == 0 {
		return nil
	}
	width := elemWidth[T]()
	n := len(buf) / width
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}

// elemWidth returns sizeof(T) for the generic element type T.
func elemWidth[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Span is a non-owning, bounds-checked view over a run of T inside a
// message buffer. It is what scalar-container getters return: a read/write
// window, never a copy.
type Span[T any] struct {
	data []T
}

// SpanOver builds a Span over the first n elements of buf reinterpreted as T.
func SpanOver[T any](buf []byte, n int) Span[T] {
	s := reinterpret[T](buf)
	if n < len(s) {
		s = s[:n]
	}
	return Span[T]{data: s}
}

func (s Span[T]) Len() int        { return len(s.data) }
func (s Span[T]) IsEmpty() bool   { return len(s.data) == 0 }
func (s Span[T]) IsPresent() bool { return len(s.data) != 0 }
func (s Span[T]) Slice() []T      { return s.data }

// At returns the i'th element, raising BadSpanIndex if i is out of range.
// When SpanIndexHandling lets an out-of-range i through, At returns T's
// zero value and no error.
func (s Span[T]) At(i int) (T, error) {
	var zero T
	if err := Expect(SpanIndexHandling, func() bool { return 0 <= i && i < len(s.data) }, BadSpanIndex); err != nil {
		return zero, err
	}
	if i < 0 || i >= len(s.data) {
		return zero, nil
	}
	return s.data[i], nil
}

// Set writes v at index i, raising BadSpanIndex if i is out of range.
// When SpanIndexHandling lets an out-of-range i through, Set writes nothing.
func (s Span[T]) Set(i int, v T) error {
	if err := Expect(SpanIndexHandling, func() bool { return 0 <= i && i < len(s.data) }, BadSpanIndex); err != nil {
		return err
	}
	if i < 0 || i >= len(s.data) {
		return nil
	}
	s.data[i] = v
	return nil
}

// SpanString renders a char Span as a Go string (stopping at the first NUL,
// matching the original's to_string()).
func SpanString(s Span[byte]) string {
	for i, b := range s.data {
		if b == 0 {
			return string(s.data[:i])
		}
	}
	return string(s.data)
}

// Version records the declared field count of a message's flat at
// generation time, to let readers detect schema drift. Generated
// M.Version() methods read the same int32 straight from the buffer rather
// than through this type.
type Version struct {
	V int32
}

// TailRef is the result of placing a C-string in the tail: where it landed
// and how long it is.
type TailRef struct {
	Pos  Offset
	Size Size
}

// Allocator is the bump allocator backing a message's tail region. Next and
// Max are offsets relative to the start of the message buffer, matching the
// original contract; buf is the message's backing storage and bodyOffset is
// the byte offset, within buf, of the flat's fixed part (the allocator
// always sits immediately before it).
type Allocator struct {
	Next       Offset
	Max        Offset
	buf        []byte
	bodyOffset int

	// Handling governs this allocator's cstring_overflow check (Place).
	// tail_too_big stays hardcoded to Testing regardless of Handling — a
	// tail overrun is the one allocator-level failure the contract never
	// lets an embedder downgrade.
	Handling HandlingMode
}

// NewAllocator builds an allocator over buf whose tail starts at
// startOffset (the end of the flat's fixed part, as an offset into buf)
// and may grow up to maxOffset.
// bodyOffset is the offset of the flat's fixed part within buf.
func NewAllocator(buf []byte, bodyOffset, startOffset, maxOffset int) *Allocator {
	return &Allocator{
		Next:       Offset(startOffset),
		Max:        Offset(maxOffset),
		buf:        buf,
		bodyOffset: bodyOffset,
		Handling:   DefaultHandling,
	}
}

// SetHandling changes the handling mode this allocator's cstring_overflow
// check uses, for embedders that want Place to ignore, log, or terminate
// rather than return an error.
func (a *Allocator) SetHandling(mode HandlingMode) {
	a.Handling = mode
}

// Flat returns the byte offset (within the allocator's buffer) of the start
// of the flat's fixed part — the allocator's "flat()" pointer, expressed as
// an index since Go buffers are sliced rather than pointed into.
func (a *Allocator) Flat() int {
	return a.bodyOffset
}

// Buf returns the allocator's backing buffer.
func (a *Allocator) Buf() []byte {
	return a.buf
}

// Capacity reports the number of bytes still free in the tail.
func (a *Allocator) Capacity() Size {
	return Size(a.Max - a.Next)
}

// Allocate bumps Next by n bytes and returns the pre-bump offset (relative
// to the message start, i.e. usable directly as an index into Buf()).
// Raises TailTooBig if the tail would overflow Max.
func (a *Allocator) Allocate(n int) (int, error) {
	nx := int(a.Next)
	if err := ExpectDefault(func() bool { return nx+n <= int(a.Max) }, TailTooBig); err != nil {
		return 0, err
	}
	a.Next += Offset(n)
	return nx, nil
}

// Place copies a NUL-terminated string into the tail and returns where it
// landed. It never writes past Max; truncation uses cstringCopy's check.
func (a *Allocator) Place(s string) (TailRef, error) {
	pos := a.Next
	n, err := cstringCopy(a.Handling, a.buf[int(pos):int(a.Max)], s)
	if err != nil {
		return TailRef{}, err
	}
	a.Next += Offset(n)
	return TailRef{Pos: pos, Size: Size(n)}, nil
}

func cstringCopy(mode HandlingMode, to []byte, from string) (int, error) {
	if err := Expect(mode, func() bool { return len(from) <= len(to) }, CstringOverflow); err != nil {
		return 0, err
	}
	copy(to, from)
	return len(from), nil
}

// AbsoluteToRelative converts an absolute buffer offset into one relative
// to selfOffset, the way the original computes a Vector's pos from the
// allocator's absolute allocate() result.
func AbsoluteToRelative(absolute, selfOffset int) Offset {
	return Offset(absolute - selfOffset)
}
