package gc

import (
	"fmt"
	"unsafe"
)

// Iter walks the elements of a tracked allocation in both directions.
// Positions are element offsets from base; end is one past the last element.
type Iter[T any] struct {
	base unsafe.Pointer
	cur  int
	end  int
}

func NewIter[T any](base *T, cur, end int) Iter[T] {
	return Iter[T]{base: unsafe.Pointer(base), cur: cur, end: end}
}

func (it *Iter[T]) Next() { it.cur++ }

func (it *Iter[T]) Prev() { it.cur-- }

// Valid reports whether the iterator points at an element.
func (it Iter[T]) Valid() bool {
	return it.base != nil && it.cur >= 0 && it.cur < it.end
}

// Deref returns the current element. It panics outside [begin, end).
func (it Iter[T]) Deref() *T {
	if !it.Valid() {
		panic(fmt.Errorf("%w: offset %d of %d", ErrIterRange, it.cur, it.end))
	}
	var zero T
	return (*T)(unsafe.Add(it.base, uintptr(it.cur)*unsafe.Sizeof(zero)))
}

// Equal compares positions within the same allocation.
func (it Iter[T]) Equal(o Iter[T]) bool {
	return it.base == o.base && it.cur == o.cur
}

func (it Iter[T]) Offset() int { return it.cur }

// Len is the number of elements in the iterated range.
func (it Iter[T]) Len() int { return it.end }
