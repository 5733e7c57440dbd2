package flats

// Array<T,N> has no Go runtime counterpart of its own: the layout engine
// gives it a fixed size and generated accessors read it in place with
// SpanOver over the field's bytes. ArrayBegin wraps an existing Go slice
// in the same bounds-checked Span every other container exposes.
func ArrayBegin[T any](arr []T) Span[T] {
	return Span[T]{data: arr}
}

// Fixed_vector<T,N> is a [N]T backing array plus a Used counter, both stored
// inline in the flat's fixed part — unlike Vector<T> it never touches the
// tail. Generated accessors read Used and the backing array in place with
// SpanOver over the field's bytes; these helpers operate on a slice of that
// array so N itself never has to appear as a type parameter.

// FixedVectorSpan returns a Span over the first used elements of arr.
func FixedVectorSpan[T any](arr []T, used Size) Span[T] {
	n := int(used)
	if n > len(arr) {
		n = len(arr)
	}
	return Span[T]{data: arr[:n]}
}

// FixedVectorPush appends v to arr, bumping *used. Raises
// FixedArrayOverflow if arr is already full.
func FixedVectorPush[T any](arr []T, used *Size, v T) error {
	i := int(*used)
	if err := Expect(FixedArrayHandling, func() bool { return i < len(arr) }, FixedArrayOverflow); err != nil {
		return err
	}
	arr[i] = v
	*used++
	return nil
}

// FixedVectorSet overwrites the element at i, which must already be in use.
func FixedVectorSet[T any](arr []T, used Size, i int, v T) error {
	if err := Expect(SpanIndexHandling, func() bool { return 0 <= i && i < int(used) }, BadSpanIndex); err != nil {
		return err
	}
	arr[i] = v
	return nil
}

// FixedVectorClear resets used to zero without touching arr's contents.
func FixedVectorClear(used *Size) {
	*used = 0
}
