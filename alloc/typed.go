package alloc

import (
	"sync/atomic"
	"unsafe"
)

// Typed allocates values of T from an Allocator. Memory handed out lives
// outside the Go heap when the allocator is mmap-backed, so T must not hold
// Go pointers the collector needs to see.
//
// Free and FreeArray make a *Typed[T] usable as the deallocator of a
// gc.Registry.
type Typed[T any] struct {
	Alloc Allocator

	scalarFrees atomic.Int64
	arrayFrees  atomic.Int64
}

func NewTyped[T any](al Allocator) *Typed[T] {
	return &Typed[T]{Alloc: al}
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (t *Typed[T]) New() *T {
	return t.NewArray(1)
}

// NewArray returns the first element of n zeroed, contiguous values, or nil
// when n is not positive.
func (t *Typed[T]) NewArray(n int) *T {
	if n <= 0 {
		return nil
	}
	size := sizeOf[T]() * n
	p := t.Alloc.Alloc(size)
	clear(unsafe.Slice((*byte)(p), size))
	return (*T)(p)
}

func (t *Typed[T]) Free(p *T) {
	t.scalarFrees.Add(1)
	t.Alloc.Dealloc(unsafe.Pointer(p))
}

func (t *Typed[T]) FreeArray(p *T, n int) {
	t.arrayFrees.Add(1)
	t.Alloc.Dealloc(unsafe.Pointer(p))
}

// Frees reports how many scalar and array blocks were released.
func (t *Typed[T]) Frees() (scalar, array int64) {
	return t.scalarFrees.Load(), t.arrayFrees.Load()
}

// GoHeap allocates from the Go heap. Freeing only zeroes the memory; the
// runtime reclaims it once nothing refers to it.
type GoHeap[T any] struct {
	scalarFrees atomic.Int64
	arrayFrees  atomic.Int64
}

func (g *GoHeap[T]) New() *T {
	return new(T)
}

// NewArray returns nil when n is not positive.
func (g *GoHeap[T]) NewArray(n int) *T {
	if n <= 0 {
		return nil
	}
	return &make([]T, n)[0]
}

func (g *GoHeap[T]) Free(p *T) {
	g.scalarFrees.Add(1)
	var zero T
	*p = zero
}

func (g *GoHeap[T]) FreeArray(p *T, n int) {
	g.arrayFrees.Add(1)
	clear(unsafe.Slice(p, n))
}

func (g *GoHeap[T]) Frees() (scalar, array int64) {
	return g.scalarFrees.Load(), g.arrayFrees.Load()
}
