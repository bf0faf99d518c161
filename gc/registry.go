package gc

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/modern-go/reflect2"
)

// Deallocator frees what the registry no longer references. Free receives
// addresses tracked by a scalar registry, FreeArray those of an array one.
type Deallocator[T any] interface {
	Free(p *T)
	FreeArray(p *T, n int)
}

// DeallocFuncs adapts a pair of functions to Deallocator. Nil funcs are
// skipped.
type DeallocFuncs[T any] struct {
	Scalar func(p *T)
	Array  func(p *T, n int)
}

func (d DeallocFuncs[T]) Free(p *T) {
	if d.Scalar != nil {
		d.Scalar(p)
	}
}

func (d DeallocFuncs[T]) FreeArray(p *T, n int) {
	if d.Array != nil {
		d.Array(p, n)
	}
}

// Registry holds the records of every address tracked for one element type
// and shape. The mutex covers records and seq; it is never held while the
// deallocator runs.
type Registry[T any] struct {
	mu      sync.Mutex
	records map[unsafe.Pointer]*Record
	seq     uint64

	typ      reflect2.Type
	elemSize int
	shape    Shape
	dealloc  Deallocator[T]
	opts     options
	armed    sync.Once

	attached    atomic.Uint64
	freedScalar atomic.Uint64
	freedArray  atomic.Uint64
	sweeps      atomic.Uint64
}

func NewRegistry[T any](shape Shape, dealloc Deallocator[T], opts ...Option) (*Registry[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newRegistry(shape, dealloc, o)
}

func newRegistry[T any](shape Shape, dealloc Deallocator[T], o options) (*Registry[T], error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if dealloc == nil {
		return nil, fmt.Errorf("gc: registry %v needs a deallocator", shape)
	}
	typ := elemType[T]()
	return &Registry[T]{
		records:  make(map[unsafe.Pointer]*Record),
		typ:      typ,
		elemSize: int(typ.Type1().Size()),
		shape:    shape,
		dealloc:  dealloc,
		opts:     o,
	}, nil
}

func elemType[T any]() reflect2.Type {
	return reflect2.TypeOfPtr((*T)(nil)).Elem()
}

func (r *Registry[T]) Shape() Shape { return r.shape }

func (r *Registry[T]) String() string {
	return "registry<" + r.typ.String() + ", " + r.shape.String() + ">"
}

func (r *Registry[T]) logf(format string, args ...interface{}) {
	if r.opts.log != nil {
		r.opts.log.Printf(r.String()+" "+format, args...)
	}
}

// arm registers the teardown hook once per registry.
func (r *Registry[T]) arm() {
	r.armed.Do(func() {
		if r.opts.hooks != nil {
			r.opts.hooks.Register(r.String(), r.Shutdown)
		}
	})
}

func (r *Registry[T]) find(addr unsafe.Pointer) (*Record, bool) {
	rec, ok := r.records[addr]
	return rec, ok
}

// attach bumps the record of addr or inserts a fresh one. Callers hold mu.
func (r *Registry[T]) attach(addr unsafe.Pointer) *Record {
	if rec, ok := r.find(addr); ok {
		rec.retain()
		return rec
	}
	r.seq++
	rec := newRecord(addr, r.shape, r.seq)
	r.records[addr] = rec
	r.attached.Add(1)
	return rec
}

// current reports whether rec is still the record registered for its
// address. A record unlinked by a sweep or Shutdown stays stale even after
// the address is tracked again. Callers hold mu.
func (r *Registry[T]) current(rec *Record) bool {
	if rec == nil {
		return false
	}
	cur, ok := r.find(rec.Addr)
	return ok && cur == rec
}

// detach drops one reference from rec if it is still current. Callers hold
// mu.
func (r *Registry[T]) detach(rec *Record) {
	if r.current(rec) {
		rec.release()
	}
}

// Size is the number of live records.
func (r *Registry[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Refs returns the reference count of p and whether p is tracked.
func (r *Registry[T]) Refs(p *T) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.find(unsafe.Pointer(p))
	if !ok {
		return 0, false
	}
	return rec.Refs, true
}

// Shutdown zeroes every count and collects, releasing all memory the
// registry tracks. Outstanding Pointers become dangling.
func (r *Registry[T]) Shutdown() {
	r.mu.Lock()
	if len(r.records) == 0 {
		r.mu.Unlock()
		return
	}
	for _, rec := range r.records {
		rec.Refs = 0
	}
	n := len(r.records)
	r.mu.Unlock()
	r.logf("shutdown with %d records", n)
	r.Collect()
}
