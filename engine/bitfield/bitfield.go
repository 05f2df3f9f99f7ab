// Package bitfield packs and extracts fixed-width fields of 32- and 64-bit words.
//
// Bit 0 is the least significant bit of a word. A field is described by the
// index of its lowest bit (start) and its width in bits (size). Every packed
// type of the engine is built on these helpers; nothing else shifts raw bits.
package bitfield

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidArgument reports a field description or value that does not fit a word.
var ErrInvalidArgument = errors.New("invalid argument")

// Word is the set of word types fields can be packed into.
type Word interface {
	~uint32 | ~uint64
}

// Field is one (value, size) pair handed to Pack.
type Field[T Word] struct {
	Value T
	Size  int
}

// Width returns the number of bits of T.
func Width[T Word]() int {
	return bits.Len64(uint64(^T(0)))
}

func checkStartSize[T Word](start, size int) {
	w := Width[T]()
	if start < 0 || size < 0 || start > w || size > w || start+size > w {
		panic(fmt.Errorf("%w: start %d size %d outside a %d-bit word", ErrInvalidArgument, start, size, w))
	}
}

// Mask returns a word whose bits start..start+size-1 are set.
// It panics if start and size do not describe a subrange of T.
func Mask[T Word](start, size int) T {
	checkStartSize[T](start, size)
	if size == Width[T]() {
		return ^T(0)
	}
	return ((T(1) << size) - 1) << start
}

// Extract returns the size bits of b starting at start, moved to the low end.
func Extract[T Word](b T, start, size int) T {
	checkStartSize[T](start, size)
	if start == Width[T]() {
		return 0
	}
	return (b >> start) & Mask[T](0, size)
}

// Insert returns b with the field at start..start+size-1 replaced by v.
// It panics if v does not fit in size bits.
func Insert[T Word](b T, start, size int, v T) T {
	m := Mask[T](0, size)
	if v&m != v {
		panic(fmt.Errorf("%w: value %#x does not fit in %d bits", ErrInvalidArgument, uint64(v), size))
	}
	return b&^Mask[T](start, size) | v<<start
}

// Pack concatenates fields, the first one ending up in the least significant bits.
func Pack[T Word](fields ...Field[T]) (T, error) {
	w := Width[T]()
	var out T
	start := 0
	for i, f := range fields {
		if f.Size < 1 || f.Size > w {
			return 0, fmt.Errorf("%w: field %d has size %d", ErrInvalidArgument, i, f.Size)
		}
		if start+f.Size > w {
			return 0, fmt.Errorf("%w: fields need more than %d bits", ErrInvalidArgument, w)
		}
		if f.Value&Mask[T](0, f.Size) != f.Value {
			return 0, fmt.Errorf("%w: field %d value %#x does not fit in %d bits", ErrInvalidArgument, i, uint64(f.Value), f.Size)
		}
		out |= f.Value << start
		start += f.Size
	}
	return out, nil
}

// Pack2 packs v1 into the low s1 bits and v2 into the next s2 bits.
func Pack2[T Word](v1 T, s1 int, v2 T, s2 int) (T, error) {
	return Pack(Field[T]{v1, s1}, Field[T]{v2, s2})
}

// Pack3 packs three fields, v1 lowest.
func Pack3[T Word](v1 T, s1 int, v2 T, s2 int, v3 T, s3 int) (T, error) {
	return Pack(Field[T]{v1, s1}, Field[T]{v2, s2}, Field[T]{v3, s3})
}

// Pack7 packs seven fields, v1 lowest.
func Pack7[T Word](v1 T, s1 int, v2 T, s2 int, v3 T, s3 int, v4 T, s4 int,
	v5 T, s5 int, v6 T, s6 int, v7 T, s7 int) (T, error) {
	return Pack(
		Field[T]{v1, s1}, Field[T]{v2, s2}, Field[T]{v3, s3}, Field[T]{v4, s4},
		Field[T]{v5, s5}, Field[T]{v6, s6}, Field[T]{v7, s7},
	)
}
