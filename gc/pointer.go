package gc

import (
	"fmt"
	"iter"
	"unsafe"
)

// Pointer is a counted reference to an address tracked by a Registry.
//
// The cached fields mirror the record the pointer is attached to and are
// refreshed whenever that record changes. A Pointer is not safe for
// concurrent use by itself; the registry it belongs to is.
type Pointer[T any] struct {
	reg      *Registry[T]
	rec      *Record
	addr     unsafe.Pointer
	isArray  bool
	length   int
	released bool
}

// Null returns an empty pointer. Empty pointers are never recorded.
func (r *Registry[T]) Null() *Pointer[T] {
	return &Pointer[T]{reg: r}
}

// Track starts counting references to addr, which must come from an
// allocation the registry's Deallocator can free. Tracking an address that
// is already tracked adds a reference to the existing record.
func (r *Registry[T]) Track(addr *T) *Pointer[T] {
	p := r.Null()
	if addr == nil {
		return p
	}
	r.arm()
	r.mu.Lock()
	rec := r.attach(unsafe.Pointer(addr))
	p.load(rec)
	refs := rec.Refs
	r.mu.Unlock()
	r.logf("track %p refs %d", p.addr, refs)
	return p
}

func (p *Pointer[T]) load(rec *Record) {
	p.rec = rec
	p.addr = rec.Addr
	p.isArray = rec.IsArray
	p.length = rec.Len
}

func (p *Pointer[T]) clear() {
	p.rec = nil
	p.addr = nil
	p.isArray = false
	p.length = 0
}

func (p *Pointer[T]) Registry() *Registry[T] { return p.reg }

// Clone returns another pointer to the same address.
func (p *Pointer[T]) Clone() (*Pointer[T], error) {
	r := p.reg
	if p.released {
		return nil, fmt.Errorf("clone in %v: %w", r, ErrReleased)
	}
	q := r.Null()
	if p.addr == nil {
		return q, nil
	}
	r.mu.Lock()
	if !r.current(p.rec) {
		r.mu.Unlock()
		return nil, fmt.Errorf("clone %p in %v: %w", p.addr, r, ErrNotTracked)
	}
	p.rec.retain()
	q.load(p.rec)
	r.mu.Unlock()
	return q, nil
}

// Release drops the pointer's reference and, unless the registry was built
// WithoutCollectOnRelease, sweeps the registry. The sweep runs even when
// the pointer was empty, reclaiming garbage left by Reset and Assign.
// Releasing twice is a no-op.
func (p *Pointer[T]) Release() {
	if p == nil || p.reg == nil || p.released {
		return
	}
	r := p.reg
	p.released = true
	r.mu.Lock()
	r.detach(p.rec)
	r.mu.Unlock()
	if p.addr != nil {
		r.logf("release %p", p.addr)
	}
	p.clear()
	if r.opts.collectOnRelease {
		r.Collect()
	}
}

// Reset detaches from the current address and attaches to addr. Nothing is
// collected; the old address waits for the next sweep.
func (p *Pointer[T]) Reset(addr *T) {
	r := p.reg
	if addr != nil {
		r.arm()
	}
	r.mu.Lock()
	if !p.released {
		r.detach(p.rec)
	}
	p.released = false
	if addr == nil {
		p.clear()
	} else {
		p.load(r.attach(unsafe.Pointer(addr)))
	}
	r.mu.Unlock()
}

// Assign makes p refer to src's address and returns p. Both pointers must
// come from the same registry. On error p is unchanged.
func (p *Pointer[T]) Assign(src *Pointer[T]) (*Pointer[T], error) {
	r := p.reg
	if src.reg != r {
		return nil, fmt.Errorf("assign from %v to %v: %w", src.reg, r, ErrForeignRegistry)
	}
	if src.released {
		return nil, fmt.Errorf("assign in %v: %w", r, ErrReleased)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := src.rec
	if src.addr != nil && !r.current(rec) {
		return nil, fmt.Errorf("assign %p in %v: %w", src.addr, r, ErrNotTracked)
	}
	if !p.released {
		r.detach(p.rec)
	}
	p.released = false
	if rec == nil {
		p.clear()
		return p, nil
	}
	rec.retain()
	p.load(rec)
	return p, nil
}

// Addr returns the raw address, nil for an empty pointer.
func (p *Pointer[T]) Addr() *T { return (*T)(p.addr) }

func (p *Pointer[T]) IsNil() bool { return p.addr == nil }

func (p *Pointer[T]) IsArray() bool { return p.isArray }

// Len is the array length, 0 for a scalar.
func (p *Pointer[T]) Len() int { return p.length }

func (p *Pointer[T]) span() int {
	if p.isArray {
		return p.length
	}
	return 1
}

// Deref returns the address of the value. It panics on an empty pointer.
func (p *Pointer[T]) Deref() *T {
	if p.addr == nil {
		panic(fmt.Errorf("deref in %v: %w", p.reg, ErrNilDeref))
	}
	return (*T)(p.addr)
}

func (p *Pointer[T]) Value() T { return *p.Deref() }

// Index returns the i-th element. Like raw pointer indexing it is not
// checked against Len.
func (p *Pointer[T]) Index(i int) *T {
	base := p.Deref()
	return (*T)(unsafe.Add(unsafe.Pointer(base), i*p.reg.elemSize))
}

// Slice views the tracked elements as a slice. Empty pointers yield nil.
func (p *Pointer[T]) Slice() []T {
	if p.addr == nil {
		return nil
	}
	return unsafe.Slice((*T)(p.addr), p.span())
}

// Begin returns an iterator at the first element.
func (p *Pointer[T]) Begin() Iter[T] {
	return NewIter(p.Addr(), 0, p.iterEnd())
}

// End returns an iterator one past the last element.
func (p *Pointer[T]) End() Iter[T] {
	n := p.iterEnd()
	return NewIter(p.Addr(), n, n)
}

func (p *Pointer[T]) iterEnd() int {
	if p.addr == nil {
		return 0
	}
	return p.span()
}

// All yields index and address of every element.
func (p *Pointer[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for it, end := p.Begin(), p.End(); !it.Equal(end); it.Next() {
			if !yield(it.Offset(), it.Deref()) {
				return
			}
		}
	}
}

func (p *Pointer[T]) String() string {
	if p.addr == nil {
		return "gc.Pointer(nil)"
	}
	if p.isArray {
		return fmt.Sprintf("gc.Pointer(%p[%d])", p.addr, p.length)
	}
	return fmt.Sprintf("gc.Pointer(%p)", p.addr)
}
