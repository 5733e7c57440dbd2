package flats

// SpanRef is a Span over a run of flat-shaped elements: instead of handing
// back the element's raw bytes, At constructs a fresh direct-accessor for
// it on every call. Grounded on flat_types.h's Span_ref<T, TD>, whose
// operator[] does exactly that ("when returning an element of type T, it
// constructs an accessor TD for the element value").
type SpanRef[TD any] struct {
	buf    []byte
	base   int
	stride int
	n      int
	build  func(buf []byte, base int) TD
}

// SpanRefOver builds a SpanRef over n elements of the given stride starting
// at base within buf, each dereferenced through build.
func SpanRefOver[TD any](buf []byte, base, stride, n int, build func([]byte, int) TD) SpanRef[TD] {
	return SpanRef[TD]{buf: buf, base: base, stride: stride, n: n, build: build}
}

func (s SpanRef[TD]) Len() int        { return s.n }
func (s SpanRef[TD]) IsEmpty() bool   { return s.n == 0 }
func (s SpanRef[TD]) IsPresent() bool { return s.n != 0 }

// At constructs the i'th element's direct-accessor, raising BadSpanIndex if
// i is out of range.
func (s SpanRef[TD]) At(i int) (TD, error) {
	var zero TD
	if err := Expect(SpanIndexHandling, func() bool { return 0 <= i && i < s.n }, BadSpanIndex); err != nil {
		return zero, err
	}
	return s.build(s.buf, s.base+i*s.stride), nil
}

// VectorRefBegin is VectorBegin's counterpart for a vector whose elements
// are flat-shaped: it reads the same {size,pos} header but returns a
// SpanRef over the tail elements instead of a plain Span, so At constructs
// each element's own direct-accessor.
func VectorRefBegin[TD any](buf []byte, headerOffset, stride int, build func([]byte, int) TD) SpanRef[TD] {
	h := DecodeVectorHeader(buf, headerOffset)
	if h.Len == 0 {
		return SpanRef[TD]{buf: buf, build: build}
	}
	start := vectorElemsOffset(headerOffset, h)
	return SpanRefOver(buf, start, stride, int(h.Len), build)
}
