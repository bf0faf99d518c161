package gc

import (
	"fmt"
	"io"
	"sync"
)

// collectable is the type-erased view of a Registry a Heap keeps.
type collectable interface {
	Collect() bool
	Shutdown()
	Size() int
	Snapshot() RegistrySnapshot
	Dump(w io.Writer)
}

type heapKey struct {
	rtype uintptr
	shape Shape
}

// Heap owns one registry per (element type, shape) pair.
type Heap struct {
	mu    sync.Mutex
	opts  options
	regs  map[heapKey]collectable
	order []collectable
}

// NewHeap returns a heap whose registries are all built with opts.
func NewHeap(opts ...Option) *Heap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Heap{opts: o, regs: make(map[heapKey]collectable)}
}

// RegistryFor returns the registry for T and shape, creating it with dealloc
// on first use. Later calls ignore dealloc.
func RegistryFor[T any](h *Heap, shape Shape, dealloc Deallocator[T]) (*Registry[T], error) {
	key := heapKey{rtype: elemType[T]().RType(), shape: shape}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.regs[key]; ok {
		reg, ok := c.(*Registry[T])
		if !ok {
			return nil, fmt.Errorf("gc: heap holds %T for %v", c, shape)
		}
		return reg, nil
	}
	reg, err := newRegistry(shape, dealloc, h.opts)
	if err != nil {
		return nil, err
	}
	h.regs[key] = reg
	h.order = append(h.order, reg)
	return reg, nil
}

func (h *Heap) registries() []collectable {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]collectable(nil), h.order...)
}

// Collect sweeps every registry and reports whether anything was freed.
func (h *Heap) Collect() bool {
	freed := false
	for _, reg := range h.registries() {
		if reg.Collect() {
			freed = true
		}
	}
	return freed
}

// Shutdown shuts registries down newest first.
func (h *Heap) Shutdown() {
	regs := h.registries()
	for i := len(regs) - 1; i >= 0; i-- {
		regs[i].Shutdown()
	}
}

// Size sums the live records of all registries.
func (h *Heap) Size() int {
	n := 0
	for _, reg := range h.registries() {
		n += reg.Size()
	}
	return n
}

func (h *Heap) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

func (h *Heap) Snapshot() []RegistrySnapshot {
	regs := h.registries()
	snaps := make([]RegistrySnapshot, 0, len(regs))
	for _, reg := range regs {
		snaps = append(snaps, reg.Snapshot())
	}
	return snaps
}

func (h *Heap) Dump(w io.Writer) {
	for _, reg := range h.registries() {
		reg.Dump(w)
	}
}
